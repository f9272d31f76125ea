package indicators

type MACDService struct {
	ema *EMAService
}

type MACDResult struct {
	MACD      []Value
	Signal    []Value
	Histogram []Value
}

func NewMACDService() *MACDService {
	return &MACDService{
		ema: NewEMAService(),
	}
}

// Calculate returns MACD line, signal line, and histogram.
// Default periods: fast=12, slow=26, signal=9.
// The signal line is an EMA over the defined portion of the MACD line
// only, so its warm-up starts where the MACD line becomes defined.
func (s *MACDService) Calculate(closes []float64, fast, slow, signal int) (*MACDResult, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, ErrInvalidPeriod
	}

	n := len(closes)
	res := &MACDResult{
		MACD:      make([]Value, n),
		Signal:    make([]Value, n),
		Histogram: make([]Value, n),
	}
	if n < slow {
		return res, nil
	}

	fastEMA := s.ema.Calculate(closes, fast)
	slowEMA := s.ema.Calculate(closes, slow)

	var definedMACD []float64
	for i := 0; i < n; i++ {
		if fastEMA[i].Valid && slowEMA[i].Valid {
			res.MACD[i] = Defined(fastEMA[i].V - slowEMA[i].V)
			definedMACD = append(definedMACD, res.MACD[i].V)
		}
	}

	signalRaw := s.ema.Calculate(definedMACD, signal)

	j := 0
	for i := 0; i < n; i++ {
		if !res.MACD[i].Valid {
			continue
		}
		if signalRaw[j].Valid {
			res.Signal[i] = signalRaw[j]
			res.Histogram[i] = Defined(res.MACD[i].V - signalRaw[j].V)
		}
		j++
	}

	return res, nil
}
