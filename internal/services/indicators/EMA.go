package indicators

// EMAService provides Exponential Moving Average calculations
type EMAService struct{}

// NewEMAService creates a new EMA service instance
func NewEMAService() *EMAService {
	return &EMAService{}
}

// Calculate computes EMA for the entire series. The first defined value
// is the simple average of the first `period` inputs; the leading
// period-1 entries stay undefined. Input shorter than the period yields
// an all-undefined series.
func (s *EMAService) Calculate(values []float64, period int) []Value {
	out := make([]Value, len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	sum := 0.0
	for i := 0; i < period; i++ {
		sum += values[i]
	}
	prev := sum / float64(period)
	out[period-1] = Defined(prev)

	k := s.getMultiplier(period)
	for i := period; i < len(values); i++ {
		prev = values[i]*k + prev*(1-k)
		out[i] = Defined(prev)
	}

	return out
}

// CalculateOne advances an EMA by one input value.
func (s *EMAService) CalculateOne(value, prevEMA float64, period int) float64 {
	k := s.getMultiplier(period)
	return value*k + prevEMA*(1-k)
}

func (s *EMAService) getMultiplier(period int) float64 {
	return 2.0 / float64(period+1)
}
