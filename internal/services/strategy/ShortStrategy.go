package strategy

import (
	"CryptoBreakoutBot/internal/models"
	"CryptoBreakoutBot/internal/services/indicators"
)

// ShortStrategy mirrors LongStrategy onto the lower band: a MACD
// bearish cross latches, and a falling breakout channel with the close
// pressed into its bottom confirms.
type ShortStrategy struct {
	params Params

	latch           int
	prevMACD        indicators.Value
	lastSignalIndex int

	CurrATR indicators.Value
}

func NewShortStrategy(params Params) *ShortStrategy {
	return &ShortStrategy{
		params:          params,
		lastSignalIndex: -1,
	}
}

func (s *ShortStrategy) OnBar(bar models.Bar, snap Snapshot, barIndex int) Signal {
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
		return SignalFullShort
	}
	return SignalNone
}

func (s *ShortStrategy) updateLatch(snap Snapshot) {
	if !snap.MACD.Valid || !snap.MACDSignal.Valid {
		if s.latch > 0 {
			s.latch--
		}
		if snap.MACD.Valid {
			s.prevMACD = snap.MACD
		}
		return
	}

	if snap.MACD.V > 0 {
		s.latch = 0
	} else if s.prevMACD.Valid && s.prevMACD.V >= 0 &&
		snap.MACD.V < 0 && snap.MACD.V < snap.MACDSignal.V {
		s.latch = s.params.LatchBars
	} else if s.latch > 0 {
		s.latch--
	}

	s.prevMACD = snap.MACD
}

func (s *ShortStrategy) bandOK(bar models.Bar, snap Snapshot) bool {
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
		if snap.Band[i].V >= snap.Band[i-1].V {
			return false
		}
	}

	base := snap.Band[0].V
	lower := snap.Band[want-1].V
	if base <= 0 || (base-lower)/base < s.params.SlopePct {
		return false
	}

	mid := snap.Mid[want-1].V
	if mid <= lower || mid <= 0 || (mid-lower)/mid < s.params.MinWidthPct {
		return false
	}

	close := bar.Close
	if close >= mid || close < lower {
		return false
	}
	if (mid-close)/(mid-lower) < s.params.ChannelPos {
		return false
	}

	return close < bar.Open
}
