package indicators

import (
	"fmt"
	"math"

	"CryptoBreakoutBot/internal/models"
)

// Params are the periods every series of a SeriesSet is computed with.
type Params struct {
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	BBPeriod   int
	BBStdMult  float64
	ATRPeriod  int
	SARStep    float64
	SARMax     float64
}

// DefaultParams returns the periods the strategies are tuned for.
func DefaultParams() Params {
	return Params{
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		BBPeriod:   12,
		BBStdMult:  2.0,
		ATRPeriod:  14,
		SARStep:    0.02,
		SARMax:     0.2,
	}
}

// SeriesSet holds every indicator series over one bar history. All
// slices have the same length as the input bars; warm-up entries are
// undefined, never zero.
type SeriesSet struct {
	MACD       []Value
	MACDSignal []Value
	MACDHist   []Value
	BBMid      []Value
	BBUpper    []Value
	BBLower    []Value
	ATR        []Value
	SAR        []Value
}

// Engine computes a full SeriesSet from bar history.
type Engine struct {
	params Params
	macd   *MACDService
	bbands *BBandsService
	atr    *ATRService
	sar    *SARService
}

func NewEngine(params Params) *Engine {
	return &Engine{
		params: params,
		macd:   NewMACDService(),
		bbands: NewBBandsService(),
		atr:    NewATRService(),
		sar:    NewSARService(),
	}
}

// Compute validates the bar history and returns all series. A NaN or
// infinite price anywhere in the history is a hard error: it would
// silently poison every downstream series.
func (e *Engine) Compute(bars []models.Bar) (*SeriesSet, error) {
	n := len(bars)
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)

	for i, b := range bars {
		for _, p := range [4]float64{b.Open, b.High, b.Low, b.Close} {
			if math.IsNaN(p) || math.IsInf(p, 0) {
				return nil, fmt.Errorf("%w: bar %d at %s", ErrNonFinitePrice, i, b.Timestamp)
			}
		}
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
	}

	macd, err := e.macd.Calculate(closes, e.params.MACDFast, e.params.MACDSlow, e.params.MACDSignal)
	if err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}

	bb, err := e.bbands.Calculate(closes, e.params.BBPeriod, e.params.BBStdMult)
	if err != nil {
		return nil, fmt.Errorf("bbands: %w", err)
	}

	atr, err := e.atr.Calculate(highs, lows, closes, e.params.ATRPeriod)
	if err != nil {
		return nil, fmt.Errorf("atr: %w", err)
	}

	sar, err := e.sar.Calculate(highs, lows, e.params.SARStep, e.params.SARMax)
	if err != nil {
		return nil, fmt.Errorf("sar: %w", err)
	}

	return &SeriesSet{
		MACD:       macd.MACD,
		MACDSignal: macd.Signal,
		MACDHist:   macd.Histogram,
		BBMid:      bb.Middle,
		BBUpper:    bb.Upper,
		BBLower:    bb.Lower,
		ATR:        atr,
		SAR:        sar,
	}, nil
}
