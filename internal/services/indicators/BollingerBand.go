package indicators

import "math"

type BBandsService struct{}

type BBandsResult struct {
	Middle []Value
	Upper  []Value
	Lower  []Value
}

func NewBBandsService() *BBandsService {
	return &BBandsService{}
}

// Calculate returns middle/upper/lower bands over a trailing window of
// `period` closes using the population standard deviation. The leading
// period-1 entries are undefined.
func (s *BBandsService) Calculate(closes []float64, period int, stdMult float64) (*BBandsResult, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}

	n := len(closes)
	res := &BBandsResult{
		Middle: make([]Value, n),
		Upper:  make([]Value, n),
		Lower:  make([]Value, n),
	}
	if n < period {
		return res, nil
	}

	for i := period - 1; i < n; i++ {
		window := closes[i-period+1 : i+1]

		sum := 0.0
		for _, c := range window {
			sum += c
		}
		mean := sum / float64(period)

		variance := 0.0
		for _, c := range window {
			d := c - mean
			variance += d * d
		}
		std := math.Sqrt(variance / float64(period))

		res.Middle[i] = Defined(mean)
		res.Upper[i] = Defined(mean + stdMult*std)
		res.Lower[i] = Defined(mean - stdMult*std)
	}

	return res, nil
}
