package backtest

import (
	"time"

	"CryptoBreakoutBot/internal/models"
	"CryptoBreakoutBot/internal/services/indicators"
	"CryptoBreakoutBot/internal/services/risk"
	"CryptoBreakoutBot/internal/services/stats"
	"CryptoBreakoutBot/internal/services/strategy"
)

// Trade is one finalized round trip. Records are append-only: written
// once when the position fully exits, never mutated afterwards.
type Trade struct {
	ID            int
	Side          models.Side
	EntryTime     time.Time
	ExitTime      time.Time
	EntryPrice    float64
	ExitPrice     float64
	PnL           float64
	PnLPct        float64 // relative to the configured stake
	ExitReason    risk.ExitReason
	BarsHeld      int
	EntrySignal   strategy.Signal
	EntryBarIndex int
	ExitBarIndex  int
}

// PendingOrder is an armed stop-limit breakout order waiting for price
// to take out a reference extreme.
type PendingOrder struct {
	Side         models.Side
	Stop         float64
	Limit        float64
	RefIndex     int // bar whose extreme set the stop
	SignalIndex  int
	CreatedIndex int
	TTL          int // bars the order stays armed
	Signal       strategy.Signal
}

// BarEvent is the per-bar decision trace.
type BarEvent struct {
	Index       int
	Time        time.Time
	Close       float64
	LongSignal  strategy.Signal
	ShortSignal strategy.Signal
	ExitReason  risk.ExitReason
	Side        models.Side
	Balance     float64
}

// EquityPoint marks the ledger balance after a bar closed. Open
// positions do not contribute until their PnL settles on exit.
type EquityPoint struct {
	Index  int
	Time   time.Time
	Equity float64
}

// Config assembles every knob of one run.
type Config struct {
	LongEnabled  bool
	ShortEnabled bool

	PendingTTL     int     // bars an entry/add order stays armed
	LimitOffsetPct float64 // limit distance from the stop, in percent

	Indicators indicators.Params
	Strategy   strategy.Params
	Risk       risk.Params
}

// DefaultConfig returns the production run configuration.
func DefaultConfig() Config {
	return Config{
		LongEnabled:    true,
		ShortEnabled:   true,
		PendingTTL:     3,
		LimitOffsetPct: 0.1,
		Indicators:     indicators.DefaultParams(),
		Strategy:       strategy.DefaultParams(),
		Risk:           risk.DefaultParams(),
	}
}

// Result is the full outcome of one run.
type Result struct {
	InitialBalance float64
	FinalBalance   float64
	ReturnPct      float64

	Trades []Trade
	Events []BarEvent
	Equity []EquityPoint
	Stats  stats.Summary
}

// entryContext pins the metadata of the open position until it exits.
type entryContext struct {
	Signal   strategy.Signal
	BarIndex int
	Time     time.Time
}

// runState is the mutable state of one run. The collections are always
// non-nil; use newRunState.
type runState struct {
	pendingLong     *PendingOrder
	pendingShort    *PendingOrder
	pendingAddLong  *PendingOrder
	pendingAddShort *PendingOrder

	trades    []Trade
	tradesPnL []float64
	events    []BarEvent
	equity    []EquityPoint

	nextTradeID int
	openCtx     *entryContext
}

func newRunState() runState {
	return runState{
		trades:    make([]Trade, 0),
		tradesPnL: make([]float64, 0),
		events:    make([]BarEvent, 0),
		equity:    make([]EquityPoint, 0),
	}
}
