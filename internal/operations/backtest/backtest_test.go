package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CryptoBreakoutBot/internal/models"
	"CryptoBreakoutBot/internal/services/indicators"
	"CryptoBreakoutBot/internal/services/risk"
	"CryptoBreakoutBot/internal/services/strategy"
)

// fastConfig shortens every indicator period so warm-up fits in a
// dozen bars.
func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.Indicators.MACDFast = 2
	cfg.Indicators.MACDSlow = 3
	cfg.Indicators.MACDSignal = 2
	cfg.Indicators.BBPeriod = 3
	cfg.Indicators.ATRPeriod = 2
	return cfg
}

// noiseBars alternates closes around 100 so ATR is defined early but
// the band filter never confirms a breakout.
func noiseBars(n int) []models.Bar {
	bars := make([]models.Bar, n)
	t0 := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		close := 100.2
		if i%2 == 0 {
			close = 99.8
		}
		bars[i] = models.Bar{
			Ticker:    "TEST",
			Period:    60,
			Timestamp: t0.Add(time.Duration(i) * time.Hour),
			Open:      close - 0.1,
			High:      close + 0.5,
			Low:       close - 0.5,
			Close:     close,
			Volume:    1000,
		}
	}
	return bars
}

// prime loads bars and their indicator series without stepping.
func prime(t *testing.T, e *Engine, bars []models.Bar) {
	t.Helper()
	set, err := e.indicators.Compute(bars)
	require.NoError(t, err)
	e.bars = bars
	e.set = set
}

func longOrder(stop float64, created int) *PendingOrder {
	return &PendingOrder{
		Side:         models.SideLong,
		Stop:         stop,
		Limit:        stop * 1.001,
		RefIndex:     created - 1,
		SignalIndex:  created,
		CreatedIndex: created,
		TTL:          3,
		Signal:       strategy.SignalFullLong,
	}
}

func TestRunEmptyHistory(t *testing.T) {
	e := NewEngine(DefaultConfig())
	res, err := e.Run(nil)
	require.NoError(t, err)

	assert.Empty(t, res.Trades)
	assert.Empty(t, res.Events)
	assert.Empty(t, res.Equity)
	assert.InDelta(t, DefaultConfig().Risk.TotalDeposit, res.FinalBalance, 1e-12)
	assert.Zero(t, res.ReturnPct)
}

func TestRunEquityMatchesBarCount(t *testing.T) {
	bars := noiseBars(50)
	e := NewEngine(fastConfig())
	res, err := e.Run(bars)
	require.NoError(t, err)

	assert.Len(t, res.Equity, 50)
	assert.Len(t, res.Events, 50)
	for i, p := range res.Equity {
		assert.Equal(t, i, p.Index)
	}
}

func TestRunBothSidesDisabled(t *testing.T) {
	cfg := fastConfig()
	cfg.LongEnabled = false
	cfg.ShortEnabled = false

	e := NewEngine(cfg)
	res, err := e.Run(noiseBars(30))
	require.NoError(t, err)

	assert.Len(t, res.Equity, 30)
	assert.Empty(t, res.Trades)
	assert.Nil(t, e.state.pendingLong)
	assert.Nil(t, e.state.pendingShort)
}

// An order armed on bar 5 with a TTL of 3 may fill on bars 5 through 8
// and is discarded on bar 9 before any touch is evaluated.
func TestEntryOrderTTL(t *testing.T) {
	t.Run("expired order does not fill on a touching bar", func(t *testing.T) {
		bars := noiseBars(12)
		bars[9].High = 200 // would fill if the order were alive

		e := NewEngine(fastConfig())
		prime(t, e, bars)
		for i := 0; i <= 8; i++ {
			e.step(i)
		}
		require.False(t, e.riskMgr.Positioned())

		e.state.pendingLong = longOrder(105, 5)
		e.step(9)

		assert.Nil(t, e.state.pendingLong)
		assert.False(t, e.riskMgr.Positioned())
	})

	t.Run("order still fills on its last live bar", func(t *testing.T) {
		bars := noiseBars(12)
		bars[8].Open = 100
		bars[8].High = 200
		bars[8].Close = 106

		e := NewEngine(fastConfig())
		prime(t, e, bars)
		for i := 0; i <= 7; i++ {
			e.step(i)
		}
		e.state.pendingLong = longOrder(105, 5)
		e.step(8)

		assert.Nil(t, e.state.pendingLong)
		assert.True(t, e.riskMgr.Positioned())
	})
}

func TestEntryFillPrice(t *testing.T) {
	t.Run("fill is clamped between stop and limit", func(t *testing.T) {
		bars := noiseBars(10)
		bars[7].Open = 100
		bars[7].High = 110
		bars[7].Close = 106

		e := NewEngine(fastConfig())
		prime(t, e, bars)
		for i := 0; i <= 6; i++ {
			e.step(i)
		}
		e.state.pendingLong = longOrder(105, 6)
		e.step(7)

		require.True(t, e.riskMgr.Positioned())
		assert.InDelta(t, 105.0, e.riskMgr.EntryPrice(), 1e-9)
	})

	t.Run("gap open beyond the limit leaves the order armed", func(t *testing.T) {
		bars := noiseBars(10)
		bars[7].Open = 120 // gaps past stop and limit
		bars[7].High = 125
		bars[7].Close = 121

		e := NewEngine(fastConfig())
		prime(t, e, bars)
		for i := 0; i <= 6; i++ {
			e.step(i)
		}
		e.state.pendingLong = longOrder(105, 6)
		e.step(7)

		assert.False(t, e.riskMgr.Positioned())
		assert.NotNil(t, e.state.pendingLong)
	})

	t.Run("short fill mirrors the clamp", func(t *testing.T) {
		bars := noiseBars(10)
		bars[7].Open = 100
		bars[7].Low = 90
		bars[7].Close = 94

		e := NewEngine(fastConfig())
		prime(t, e, bars)
		for i := 0; i <= 6; i++ {
			e.step(i)
		}
		e.state.pendingShort = &PendingOrder{
			Side:         models.SideShort,
			Stop:         96,
			Limit:        96 * 0.999,
			CreatedIndex: 6,
			TTL:          3,
			Signal:       strategy.SignalFullShort,
		}
		e.step(7)

		require.True(t, e.riskMgr.Positioned())
		assert.Equal(t, models.SideShort, e.riskMgr.Side())
		assert.InDelta(t, 96.0, e.riskMgr.EntryPrice(), 1e-9)
	})
}

// Simultaneous long and short signals on a flat book cancel each other:
// no order is armed for either side.
func TestSimultaneousSignalsArmNothing(t *testing.T) {
	bars := noiseBars(10)
	e := NewEngine(fastConfig())
	prime(t, e, bars)

	e.armEntries(5, strategy.SignalFullLong, strategy.SignalFullShort)
	assert.Nil(t, e.state.pendingLong)
	assert.Nil(t, e.state.pendingShort)
}

func TestArmEntriesUsesPreviousBarExtreme(t *testing.T) {
	bars := noiseBars(10)
	e := NewEngine(fastConfig())
	prime(t, e, bars)

	e.armEntries(5, strategy.SignalFullLong, strategy.SignalNone)
	require.NotNil(t, e.state.pendingLong)
	assert.Equal(t, bars[4].High, e.state.pendingLong.Stop)
	assert.Equal(t, 4, e.state.pendingLong.RefIndex)
	assert.Greater(t, e.state.pendingLong.Limit, e.state.pendingLong.Stop)

	t.Run("no reference bar on the first bar", func(t *testing.T) {
		e := NewEngine(fastConfig())
		prime(t, e, bars)
		e.armEntries(0, strategy.SignalFullLong, strategy.SignalNone)
		assert.Nil(t, e.state.pendingLong)
	})

	t.Run("fresh long order cancels armed short orders", func(t *testing.T) {
		e := NewEngine(fastConfig())
		prime(t, e, bars)
		e.state.pendingShort = &PendingOrder{Side: models.SideShort, CreatedIndex: 3, TTL: 3}
		e.state.pendingAddShort = &PendingOrder{Side: models.SideShort, CreatedIndex: 3, TTL: 3}

		e.armEntries(5, strategy.SignalFullLong, strategy.SignalNone)
		require.NotNil(t, e.state.pendingLong)
		assert.Nil(t, e.state.pendingShort)
		assert.Nil(t, e.state.pendingAddShort)
	})
}

// Full round trip: breakout fill at the stop, take-profit exit, one
// append-only trade with settled balance.
func TestFullTradeLifecycle(t *testing.T) {
	bars := noiseBars(8)
	bars[6].Open = 100
	bars[6].High = 110
	bars[6].Low = 99.5
	bars[6].Close = 109
	bars[7].Open = 118
	bars[7].High = 121
	bars[7].Low = 117
	bars[7].Close = 120

	e := NewEngine(fastConfig())
	prime(t, e, bars)
	for i := 0; i <= 5; i++ {
		e.step(i)
	}
	e.state.pendingLong = longOrder(105, 5)
	e.step(6)
	require.True(t, e.riskMgr.Positioned())
	require.True(t, e.riskMgr.FullFilled()) // FULL signal takes both tranches

	e.step(7)
	require.False(t, e.riskMgr.Positioned())
	require.Len(t, e.state.trades, 1)

	tr := e.state.trades[0]
	assert.Equal(t, 1, tr.ID)
	assert.Equal(t, models.SideLong, tr.Side)
	assert.Equal(t, risk.ExitTP, tr.ExitReason)
	assert.InDelta(t, 105.0, tr.EntryPrice, 1e-9)
	assert.InDelta(t, 120.0, tr.ExitPrice, 1e-9)
	assert.Equal(t, 6, tr.EntryBarIndex)
	assert.Equal(t, 7, tr.ExitBarIndex)
	assert.Equal(t, 1, tr.BarsHeld)
	assert.Equal(t, strategy.SignalFullLong, tr.EntrySignal)
	assert.Greater(t, tr.PnL, 0.0)
	assert.InDelta(t, tr.PnL/e.cfg.Risk.TradeStake*100, tr.PnLPct, 1e-9)

	// realized PnL settled into the balance
	assert.InDelta(t, e.cfg.Risk.TotalDeposit+tr.PnL, e.riskMgr.Balance(), 1e-9)

	// add orders of the dead position are gone
	assert.Nil(t, e.state.pendingAddLong)
	assert.Nil(t, e.state.pendingAddShort)
}

// The add-to-full branch only runs on bars whose signal is a same-side
// full kind. A touching bar without one leaves the armed order alone;
// it does not fill and does not expire.
func TestAddOrderRequiresTriggeringSignal(t *testing.T) {
	bars := noiseBars(12)
	bars[8].High = 200 // would fill the add order if it were checked

	e := NewEngine(fastConfig())
	prime(t, e, bars)
	for i := 0; i <= 7; i++ {
		e.step(i)
	}
	require.False(t, e.riskMgr.Positioned())

	e.riskMgr.EnterPartial(models.SideLong, 100, 2.0)
	require.True(t, e.riskMgr.Positioned())
	require.False(t, e.riskMgr.FullFilled())
	e.state.pendingAddLong = longOrder(105, 7)

	// bar 8 carries no long signal
	e.step(8)
	assert.False(t, e.riskMgr.FullFilled())
	require.NotNil(t, e.state.pendingAddLong)

	// same touching bar with a full-kind signal fills it
	e.manageAdd(8, bars[8], strategy.SignalFullLong, strategy.SignalNone)
	assert.True(t, e.riskMgr.FullFilled())
	assert.Nil(t, e.state.pendingAddLong)
}

// Equity points carry the settled balance only; an open position does
// not mark to market.
func TestEquityPointUsesSettledBalance(t *testing.T) {
	bars := noiseBars(10)
	e := NewEngine(fastConfig())
	prime(t, e, bars)
	for i := 0; i <= 6; i++ {
		e.step(i)
	}
	e.riskMgr.EnterPartial(models.SideLong, 100.5, 2.0)

	e.step(7) // close 100.2, position stays open at a small loss
	require.True(t, e.riskMgr.Positioned())

	last := e.state.equity[len(e.state.equity)-1]
	assert.InDelta(t, e.riskMgr.Balance(), last.Equity, 1e-12)
	assert.InDelta(t, e.cfg.Risk.TotalDeposit, last.Equity, 1e-12)
}

func TestProcessBarIncremental(t *testing.T) {
	bars := noiseBars(20)
	e := NewEngine(fastConfig())

	for n := 1; n <= len(bars); n++ {
		ev, err := e.ProcessBar(bars[:n])
		require.NoError(t, err)
		assert.Equal(t, n-1, ev.Index)
	}
	assert.Len(t, e.state.events, len(bars))
	assert.Len(t, e.state.equity, len(bars))
}

func TestResultAggregation(t *testing.T) {
	e := NewEngine(fastConfig())
	e.state.tradesPnL = []float64{100, -40}
	e.state.trades = []Trade{{ID: 1}, {ID: 2}}

	res := e.Result()
	assert.InDelta(t, 60.0, res.Stats.TotalPnL, 1e-12)
	assert.InDelta(t, e.cfg.Risk.TotalDeposit+60, res.FinalBalance, 1e-12)
	assert.InDelta(t, 60.0/e.cfg.Risk.TotalDeposit*100, res.ReturnPct, 1e-12)
	assert.Len(t, res.Trades, 2)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.LongEnabled)
	assert.True(t, cfg.ShortEnabled)
	assert.Equal(t, 3, cfg.PendingTTL)
	assert.InDelta(t, 0.1, cfg.LimitOffsetPct, 1e-12)
	assert.Equal(t, indicators.DefaultParams(), cfg.Indicators)
}
