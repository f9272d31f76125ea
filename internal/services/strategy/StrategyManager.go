package strategy

import (
	"CryptoBreakoutBot/internal/models"
	"CryptoBreakoutBot/internal/services/indicators"
)

// StrategyManager feeds both side strategies from a precomputed
// indicator set. A disabled side never produces a signal and keeps no
// state.
type StrategyManager struct {
	long  *LongStrategy
	short *ShortStrategy

	lookback int
}

func NewStrategyManager(params Params, longEnabled, shortEnabled bool) *StrategyManager {
	m := &StrategyManager{lookback: params.Lookback}
	if longEnabled {
		m.long = NewLongStrategy(params)
	}
	if shortEnabled {
		m.short = NewShortStrategy(params)
	}
	return m
}

// LongEnabled reports whether the long side is active.
func (m *StrategyManager) LongEnabled() bool { return m.long != nil }

// ShortEnabled reports whether the short side is active.
func (m *StrategyManager) ShortEnabled() bool { return m.short != nil }

// OnBar evaluates both sides for bar i. Disabled sides return
// SignalNone.
func (m *StrategyManager) OnBar(bar models.Bar, set *indicators.SeriesSet, i int) (longSig, shortSig Signal) {
	longSig, shortSig = SignalNone, SignalNone
	if m.long != nil {
		longSig = m.long.OnBar(bar, m.snapshot(set, i, true), i)
	}
	if m.short != nil {
		shortSig = m.short.OnBar(bar, m.snapshot(set, i, false), i)
	}
	return longSig, shortSig
}

// CurrATR returns the latest valid ATR either side has recorded.
func (m *StrategyManager) CurrATR() indicators.Value {
	if m.long != nil && m.long.CurrATR.Valid {
		return m.long.CurrATR
	}
	if m.short != nil {
		return m.short.CurrATR
	}
	return indicators.Undefined
}

// snapshot cuts the trailing band window ending at bar i. Early bars
// get a shorter window, which the band filter rejects.
func (m *StrategyManager) snapshot(set *indicators.SeriesSet, i int, long bool) Snapshot {
	start := i - m.lookback
	if start < 0 {
		start = 0
	}

	band := set.BBUpper
	if !long {
		band = set.BBLower
	}

	return Snapshot{
		MACD:       set.MACD[i],
		MACDSignal: set.MACDSignal[i],
		Mid:        set.BBMid[start : i+1],
		Band:       band[start : i+1],
		ATR:        set.ATR[i],
	}
}
