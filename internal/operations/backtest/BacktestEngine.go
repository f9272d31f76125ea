package backtest

import (
	"github.com/rs/zerolog/log"

	"CryptoBreakoutBot/internal/models"
	"CryptoBreakoutBot/internal/services/indicators"
	"CryptoBreakoutBot/internal/services/risk"
	"CryptoBreakoutBot/internal/services/stats"
	"CryptoBreakoutBot/internal/services/strategy"
)

// Engine drives the bar-by-bar execution loop: indicators feed the
// strategies, signals arm stop-limit breakout orders, fills go through
// the risk manager, and every bar leaves an event and an equity point.
//
// One engine serves one run. Run consumes a full history at once;
// ProcessBar advances an incremental history one closed bar at a time.
type Engine struct {
	cfg        Config
	indicators *indicators.Engine
	strategies *strategy.StrategyManager
	riskMgr    *risk.RiskManager

	bars  []models.Bar
	set   *indicators.SeriesSet
	state runState
}

func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg:        cfg,
		indicators: indicators.NewEngine(cfg.Indicators),
		strategies: strategy.NewStrategyManager(cfg.Strategy, cfg.LongEnabled, cfg.ShortEnabled),
		riskMgr:    risk.NewRiskManager(cfg.Risk),
		state:      newRunState(),
	}
}

// Run executes the full history and returns the aggregated result.
// An empty history is a valid run with an empty equity curve.
func (e *Engine) Run(bars []models.Bar) (*Result, error) {
	if len(bars) == 0 {
		return e.Result(), nil
	}

	set, err := e.indicators.Compute(bars)
	if err != nil {
		return nil, err
	}
	e.bars = bars
	e.set = set

	for i := range bars {
		e.step(i)
	}

	return e.Result(), nil
}

// ProcessBar advances the engine by the newest bar of history. The
// history must be the same series grown by one closed bar per call;
// earlier bars are only used to recompute the indicator series.
func (e *Engine) ProcessBar(history []models.Bar) (*BarEvent, error) {
	set, err := e.indicators.Compute(history)
	if err != nil {
		return nil, err
	}
	e.bars = history
	e.set = set

	e.step(len(history) - 1)
	return &e.state.events[len(e.state.events)-1], nil
}

// Result snapshots the run outcome from the current state.
func (e *Engine) Result() *Result {
	deposit := e.cfg.Risk.TotalDeposit
	summary := stats.Compute(e.state.tradesPnL, deposit)

	res := &Result{
		InitialBalance: deposit,
		FinalBalance:   summary.FinalBalance,
		Trades:         e.state.trades,
		Events:         e.state.events,
		Equity:         e.state.equity,
		Stats:          summary,
	}
	if deposit > 0 {
		res.ReturnPct = summary.TotalPnL / deposit * 100
	}
	return res
}

// step runs the fixed per-bar sequence: trail the stop, test exits on
// the close, evaluate signals, then manage pending orders. The event
// and equity point are appended on every path.
func (e *Engine) step(i int) {
	bar := e.bars[i]

	e.riskMgr.UpdateTrailingStop(bar.Close, e.set.ATR[i], e.set.SAR[i])

	exitReason := risk.ExitNone
	if r := e.riskMgr.CheckExit(bar.Close); r != risk.ExitNone {
		e.closePosition(i, bar.Close, r)
		exitReason = r
	}

	longSig, shortSig := e.strategies.OnBar(bar, e.set, i)

	if !e.strategies.LongEnabled() && !e.strategies.ShortEnabled() {
		e.record(i, longSig, shortSig, exitReason)
		return
	}

	if !e.riskMgr.Positioned() {
		e.armEntries(i, longSig, shortSig)
	}

	if !e.riskMgr.Positioned() {
		e.processEntry(&e.state.pendingLong, i, bar)
	}
	if !e.riskMgr.Positioned() {
		e.processEntry(&e.state.pendingShort, i, bar)
	}

	if e.riskMgr.Positioned() && !e.riskMgr.FullFilled() {
		e.manageAdd(i, bar, longSig, shortSig)
	}

	e.record(i, longSig, shortSig, exitReason)
}

// armEntries creates new entry orders from this bar's signals. When
// both sides fire at once neither order is created. A fresh long order
// cancels any short-side orders; a short order is only created while
// no long order is armed.
func (e *Engine) armEntries(i int, longSig, shortSig strategy.Signal) {
	if longSig != strategy.SignalNone && shortSig != strategy.SignalNone {
		return
	}

	if longSig != strategy.SignalNone {
		if o := e.newEntryOrder(models.SideLong, i, longSig); o != nil {
			e.state.pendingLong = o
			e.state.pendingShort = nil
			e.state.pendingAddShort = nil
		}
	}
	if shortSig != strategy.SignalNone && e.state.pendingLong == nil {
		if o := e.newEntryOrder(models.SideShort, i, shortSig); o != nil {
			e.state.pendingShort = o
		}
	}
}

// newEntryOrder builds a stop-limit order off the previous bar's
// extreme. On the very first bar there is no reference, so no order.
func (e *Engine) newEntryOrder(side models.Side, i int, sig strategy.Signal) *PendingOrder {
	ref := i - 1
	if ref < 0 {
		return nil
	}

	var stop, limit float64
	if side == models.SideLong {
		stop = e.bars[ref].High
		limit = stop * (1 + e.cfg.LimitOffsetPct/100)
	} else {
		stop = e.bars[ref].Low
		limit = stop * (1 - e.cfg.LimitOffsetPct/100)
	}

	return &PendingOrder{
		Side:         side,
		Stop:         stop,
		Limit:        limit,
		RefIndex:     ref,
		SignalIndex:  i,
		CreatedIndex: i,
		TTL:          e.cfg.PendingTTL,
		Signal:       sig,
	}
}

// processEntry expires or fills one entry order against bar i. Expiry
// is checked before the touch, so an order created on bar c is dead
// from bar c+TTL+1 on. A bar that gaps open beyond the limit leaves
// the order armed.
func (e *Engine) processEntry(p **PendingOrder, i int, bar models.Bar) {
	o := *p
	if o == nil {
		return
	}

	if i-o.CreatedIndex > o.TTL {
		log.Debug().Int("bar", i).Str("side", o.Side.String()).Msg("entry order expired")
		*p = nil
		return
	}

	var fill float64
	if o.Side == models.SideLong {
		if bar.High < o.Stop || bar.Open > o.Limit {
			return
		}
		fill = bar.Open
		if fill < o.Stop {
			fill = o.Stop
		}
		if fill > o.Limit {
			fill = o.Limit
		}
	} else {
		if bar.Low > o.Stop || bar.Open < o.Limit {
			return
		}
		fill = bar.Open
		if fill > o.Stop {
			fill = o.Stop
		}
		if fill < o.Limit {
			fill = o.Limit
		}
	}

	e.fillEntry(o, i, bar, fill)
	*p = nil
}

// fillEntry opens the position at the fill price. Full signals take
// both tranches at once; Partial and Both kinds open only the first.
func (e *Engine) fillEntry(o *PendingOrder, i int, bar models.Bar, price float64) {
	atr := e.strategies.CurrATR()
	if !atr.Usable() {
		return
	}

	e.riskMgr.EnterPartial(o.Side, price, atr.V)
	if !o.Signal.PartialFillOnly() {
		e.riskMgr.AddFull(o.Side, price, atr.V)
	}

	if e.riskMgr.Positioned() {
		e.state.openCtx = &entryContext{Signal: o.Signal, BarIndex: i, Time: bar.Timestamp}
		log.Debug().
			Int("bar", i).
			Str("side", o.Side.String()).
			Float64("price", price).
			Str("signal", o.Signal.String()).
			Msg("entry filled")
	}
}

// manageAdd arms or checks the add-to-full order of the open side. The
// whole branch runs only on bars whose signal is a same-side full kind;
// on other bars an armed order sits untouched, not even aging out. An
// order armed this bar is not checked until the next one.
func (e *Engine) manageAdd(i int, bar models.Bar, longSig, shortSig strategy.Signal) {
	side := e.riskMgr.Side()

	sig := longSig
	p := &e.state.pendingAddLong
	if side == models.SideShort {
		sig = shortSig
		p = &e.state.pendingAddShort
	}

	if !sig.TriggersAdd() || sig.Side() != side {
		return
	}

	if *p == nil {
		*p = e.newAddOrder(side, i, sig)
		return
	}
	e.processAdd(p, i, bar)
}

// newAddOrder builds the second-tranche order off the current bar's
// extreme, so the add only fills on a further breakout.
func (e *Engine) newAddOrder(side models.Side, i int, sig strategy.Signal) *PendingOrder {
	var stop, limit float64
	if side == models.SideLong {
		stop = e.bars[i].High
		limit = stop * (1 + e.cfg.LimitOffsetPct/100)
	} else {
		stop = e.bars[i].Low
		limit = stop * (1 - e.cfg.LimitOffsetPct/100)
	}

	return &PendingOrder{
		Side:         side,
		Stop:         stop,
		Limit:        limit,
		RefIndex:     i,
		SignalIndex:  i,
		CreatedIndex: i,
		TTL:          e.cfg.PendingTTL,
		Signal:       sig,
	}
}

func (e *Engine) processAdd(p **PendingOrder, i int, bar models.Bar) {
	o := *p
	if o == nil {
		return
	}

	if i-o.CreatedIndex > o.TTL {
		*p = nil
		return
	}

	var fill float64
	if o.Side == models.SideLong {
		if bar.High < o.Stop || bar.Open > o.Limit {
			return
		}
		fill = bar.Open
		if fill < o.Stop {
			fill = o.Stop
		}
		if fill > o.Limit {
			fill = o.Limit
		}
	} else {
		if bar.Low > o.Stop || bar.Open < o.Limit {
			return
		}
		fill = bar.Open
		if fill > o.Stop {
			fill = o.Stop
		}
		if fill < o.Limit {
			fill = o.Limit
		}
	}

	atr := e.strategies.CurrATR()
	if atr.Usable() {
		e.riskMgr.AddFull(o.Side, fill, atr.V)
	}
	*p = nil
}

// closePosition settles the position at price and appends the trade.
// The add orders of the dead position are discarded with it.
func (e *Engine) closePosition(i int, price float64, reason risk.ExitReason) {
	side := e.riskMgr.Side()
	entryPrice := e.riskMgr.EntryPrice()
	pnl := e.riskMgr.Exit(price)

	ctx := e.state.openCtx
	if ctx == nil {
		ctx = &entryContext{}
	}

	e.state.nextTradeID++
	tr := Trade{
		ID:            e.state.nextTradeID,
		Side:          side,
		EntryTime:     ctx.Time,
		ExitTime:      e.bars[i].Timestamp,
		EntryPrice:    entryPrice,
		ExitPrice:     price,
		PnL:           pnl,
		ExitReason:    reason,
		BarsHeld:      i - ctx.BarIndex,
		EntrySignal:   ctx.Signal,
		EntryBarIndex: ctx.BarIndex,
		ExitBarIndex:  i,
	}
	if stake := e.riskMgr.Stake(); stake > 0 {
		tr.PnLPct = pnl / stake * 100
	}

	e.state.trades = append(e.state.trades, tr)
	e.state.tradesPnL = append(e.state.tradesPnL, pnl)
	e.state.openCtx = nil
	e.state.pendingAddLong = nil
	e.state.pendingAddShort = nil

	log.Debug().
		Int("bar", i).
		Str("side", side.String()).
		Str("reason", reason.String()).
		Float64("pnl", pnl).
		Msg("position closed")
}

// record appends the bar event and the equity point. Every processed
// bar contributes exactly one of each.
func (e *Engine) record(i int, longSig, shortSig strategy.Signal, exitReason risk.ExitReason) {
	bar := e.bars[i]

	e.state.events = append(e.state.events, BarEvent{
		Index:       i,
		Time:        bar.Timestamp,
		Close:       bar.Close,
		LongSignal:  longSig,
		ShortSignal: shortSig,
		ExitReason:  exitReason,
		Side:        e.riskMgr.Side(),
		Balance:     e.riskMgr.Balance(),
	})

	e.state.equity = append(e.state.equity, EquityPoint{
		Index:  i,
		Time:   bar.Timestamp,
		Equity: e.riskMgr.Balance(),
	})
}
