package strategy

import (
	"CryptoBreakoutBot/internal/models"
	"CryptoBreakoutBot/internal/services/indicators"
)

// LongStrategy emits FULL_LONG when a MACD bullish cross is still
// latched and the upper Bollinger band confirms a rising breakout
// channel. It is stateful: feed it every bar of one history in order.
type LongStrategy struct {
	params Params

	latch           int
	prevMACD        indicators.Value
	lastSignalIndex int

	// CurrATR is the latest valid ATR seen, kept for entry sizing.
	CurrATR indicators.Value
}

func NewLongStrategy(params Params) *LongStrategy {
	return &LongStrategy{
		params:          params,
		lastSignalIndex: -1,
	}
}

// OnBar consumes one bar and returns the signal for it. The latch
// counter advances on every bar, including bars silenced by the
// signal gap.
func (s *LongStrategy) OnBar(bar models.Bar, snap Snapshot, barIndex int) Signal {
	if snap.ATR.Usable() {
		s.CurrATR = snap.ATR
	}

	if s.lastSignalIndex >= 0 && barIndex-s.lastSignalIndex < s.params.MinSignalGap {
		s.updateLatch(snap)
		return SignalNone
	}

	s.updateLatch(snap)

	if s.latch > 0 && s.bandOK(bar, snap) {
		s.lastSignalIndex = barIndex
		return SignalFullLong
	}
	return SignalNone
}

func (s *LongStrategy) updateLatch(snap Snapshot) {
	if !snap.MACD.Valid || !snap.MACDSignal.Valid {
		if s.latch > 0 {
			s.latch--
		}
		if snap.MACD.Valid {
			s.prevMACD = snap.MACD
		}
		return
	}

	if snap.MACD.V < 0 {
		s.latch = 0
	} else if s.prevMACD.Valid && s.prevMACD.V <= 0 &&
		snap.MACD.V > 0 && snap.MACD.V > snap.MACDSignal.V {
		s.latch = s.params.LatchBars
	} else if s.latch > 0 {
		s.latch--
	}

	s.prevMACD = snap.MACD
}

// bandOK checks the breakout channel: a fully defined window, an upper
// band strictly rising with enough slope and width, the close parked in
// the top of the channel, and a bullish candle.
func (s *LongStrategy) bandOK(bar models.Bar, snap Snapshot) bool {
	want := s.params.Lookback + 1
	if len(snap.Band) != want || len(snap.Mid) != want {
		return false
	}
	for i := 0; i < want; i++ {
		if !snap.Band[i].Valid || !snap.Mid[i].Valid {
			return false
		}
	}

	for i := 1; i < want; i++ {
		if snap.Band[i].V <= snap.Band[i-1].V {
			return false
		}
	}

	base := snap.Band[0].V
	upper := snap.Band[want-1].V
	if base <= 0 || (upper-base)/base < s.params.SlopePct {
		return false
	}

	mid := snap.Mid[want-1].V
	if upper <= mid || mid <= 0 || (upper-mid)/mid < s.params.MinWidthPct {
		return false
	}

	close := bar.Close
	if close <= mid || close > upper {
		return false
	}
	if (close-mid)/(upper-mid) < s.params.ChannelPos {
		return false
	}

	return close > bar.Open
}
