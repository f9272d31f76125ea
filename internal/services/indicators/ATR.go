package indicators

import "math"

type ATRService struct{}

func NewATRService() *ATRService {
	return &ATRService{}
}

// Calculate returns the Average True Range with Wilder smoothing.
// True range per bar is max(high-low, |high-prevClose|, |low-prevClose|);
// the first bar uses its own close as prevClose. The value at index
// period-1 is a simple average of the first `period` true ranges, every
// later value is Wilder-smoothed. Leading entries are undefined.
func (s *ATRService) Calculate(highs, lows, closes []float64, period int) ([]Value, error) {
	if len(highs) != len(lows) || len(lows) != len(closes) {
		return nil, ErrSeriesLength
	}
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}

	n := len(closes)
	out := make([]Value, n)
	if n == 0 {
		return out, nil
	}

	trs := make([]float64, n)
	prevClose := closes[0]
	for i := 0; i < n; i++ {
		tr := highs[i] - lows[i]
		if d := math.Abs(highs[i] - prevClose); d > tr {
			tr = d
		}
		if d := math.Abs(lows[i] - prevClose); d > tr {
			tr = d
		}
		trs[i] = tr
		prevClose = closes[i]
	}

	if n < period {
		return out, nil
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += trs[i]
	}
	atr := sum / float64(period)
	out[period-1] = Defined(atr)

	for i := period; i < n; i++ {
		atr = (atr*float64(period-1) + trs[i]) / float64(period)
		out[i] = Defined(atr)
	}

	return out, nil
}
