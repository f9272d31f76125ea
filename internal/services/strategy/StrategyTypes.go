package strategy

import (
	"CryptoBreakoutBot/internal/models"
	"CryptoBreakoutBot/internal/services/indicators"
)

// Signal is a strategy verdict for one bar. The kind controls how the
// execution layer fills: Partial opens half the stake, Full opens half
// and immediately adds the second half, Both behaves like Partial on
// entry but still arms an add-to-full order.
type Signal int

const (
	SignalNone Signal = iota
	SignalPartialLong
	SignalFullLong
	SignalBothLong
	SignalPartialShort
	SignalFullShort
	SignalBothShort
)

func (s Signal) String() string {
	switch s {
	case SignalPartialLong:
		return "PARTIAL_LONG"
	case SignalFullLong:
		return "FULL_LONG"
	case SignalBothLong:
		return "BOTH_LONG"
	case SignalPartialShort:
		return "PARTIAL_SHORT"
	case SignalFullShort:
		return "FULL_SHORT"
	case SignalBothShort:
		return "BOTH_SHORT"
	default:
		return "NONE"
	}
}

// Side maps the signal to a position direction.
func (s Signal) Side() models.Side {
	switch s {
	case SignalPartialLong, SignalFullLong, SignalBothLong:
		return models.SideLong
	case SignalPartialShort, SignalFullShort, SignalBothShort:
		return models.SideShort
	default:
		return models.SideNone
	}
}

// PartialFillOnly reports whether an entry fill opens only the first
// tranche. Both kinds enter partially and add later.
func (s Signal) PartialFillOnly() bool {
	switch s {
	case SignalPartialLong, SignalBothLong, SignalPartialShort, SignalBothShort:
		return true
	default:
		return false
	}
}

// TriggersAdd reports whether the signal arms an add-to-full order for
// an already open position of the same side.
func (s Signal) TriggersAdd() bool {
	switch s {
	case SignalFullLong, SignalBothLong, SignalFullShort, SignalBothShort:
		return true
	default:
		return false
	}
}

// Snapshot is the indicator slice a strategy sees on one bar. Band is
// the side's breakout band (upper for long, lower for short) over the
// trailing lookback+1 bars, oldest first; Mid is the matching middle
// band window. The last element of each window belongs to the current
// bar.
type Snapshot struct {
	MACD       indicators.Value
	MACDSignal indicators.Value
	Mid        []indicators.Value
	Band       []indicators.Value
	ATR        indicators.Value
}

// Params tune the latch and band filter shared by both sides.
type Params struct {
	Lookback     int     // band window length minus one
	SlopePct     float64 // min relative band slope over the window
	MinWidthPct  float64 // min (band-mid)/mid on the current bar
	ChannelPos   float64 // min close position inside the half-channel
	MinSignalGap int     // bars to stay quiet after a signal
	LatchBars    int     // bars a MACD cross stays armed
}

// DefaultParams returns the tuned production parameters.
func DefaultParams() Params {
	return Params{
		Lookback:     4,
		SlopePct:     0.004,
		MinWidthPct:  0.01,
		ChannelPos:   0.6,
		MinSignalGap: 8,
		LatchBars:    10,
	}
}
