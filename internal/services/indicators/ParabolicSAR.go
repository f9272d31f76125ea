package indicators

type SARService struct{}

func NewSARService() *SARService {
	return &SARService{}
}

// Calculate returns a Parabolic SAR series with Wilder's classic
// parameters (accel step 0.02, cap 0.2 by default). The first bar is
// undefined; the initial trend is guessed from the first two bars.
func (s *SARService) Calculate(highs, lows []float64, accelStep, accelMax float64) ([]Value, error) {
	if len(highs) != len(lows) {
		return nil, ErrSeriesLength
	}
	if accelStep <= 0 || accelMax < accelStep {
		return nil, ErrInvalidPeriod
	}

	n := len(highs)
	out := make([]Value, n)
	if n < 2 {
		return out, nil
	}

	rising := highs[1]+lows[1] >= highs[0]+lows[0]
	var sar, ep float64
	if rising {
		sar = lows[0]
		ep = highs[1]
	} else {
		sar = highs[0]
		ep = lows[1]
	}
	af := accelStep
	out[1] = Defined(sar)

	for i := 2; i < n; i++ {
		sar = sar + af*(ep-sar)

		if rising {
			// SAR may never move inside the prior two bars' range
			if sar > lows[i-1] {
				sar = lows[i-1]
			}
			if sar > lows[i-2] {
				sar = lows[i-2]
			}
			if lows[i] < sar {
				rising = false
				sar = ep
				ep = lows[i]
				af = accelStep
			} else if highs[i] > ep {
				ep = highs[i]
				af += accelStep
				if af > accelMax {
					af = accelMax
				}
			}
		} else {
			if sar < highs[i-1] {
				sar = highs[i-1]
			}
			if sar < highs[i-2] {
				sar = highs[i-2]
			}
			if highs[i] > sar {
				rising = true
				sar = ep
				ep = highs[i]
				af = accelStep
			} else if lows[i] < ep {
				ep = lows[i]
				af += accelStep
				if af > accelMax {
					af = accelMax
				}
			}
		}

		out[i] = Defined(sar)
	}

	return out, nil
}
