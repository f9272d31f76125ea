package stats

import "math"

// Summary aggregates the per-trade PnL series of one run.
type Summary struct {
	TradeCount int
	Wins       int
	Losses     int
	WinRate    float64 // percent

	TotalPnL    float64
	GrossProfit float64
	GrossLoss   float64 // absolute value
	AvgWin      float64
	AvgLoss     float64 // negative or zero

	FinalBalance float64
	MaxDrawdown  float64 // absolute currency units

	ProfitFactor       float64
	RecoveryFactor     float64
	PayoffRatio        float64
	LossRecoveryTrades float64 // losing trades one average win pays back
}

// Compute builds a Summary from closed-trade PnLs in execution order.
// A zero-PnL trade counts as a loss. Ratio metrics degrade to zero
// instead of dividing by zero.
func Compute(pnls []float64, initialBalance float64) Summary {
	s := Summary{FinalBalance: initialBalance}

	var winSum, lossSum float64
	for _, p := range pnls {
		s.TotalPnL += p
		if p > 0 {
			s.Wins++
			winSum += p
		} else {
			s.Losses++
			lossSum += p
		}
	}
	s.TradeCount = len(pnls)
	s.FinalBalance = initialBalance + s.TotalPnL
	s.GrossProfit = winSum
	s.GrossLoss = math.Abs(lossSum)

	if s.TradeCount > 0 {
		s.WinRate = float64(s.Wins) / float64(s.TradeCount) * 100
	}
	if s.Wins > 0 {
		s.AvgWin = winSum / float64(s.Wins)
	}
	if s.Losses > 0 {
		s.AvgLoss = lossSum / float64(s.Losses)
	}

	s.MaxDrawdown = maxDrawdown(pnls, initialBalance)

	if s.GrossLoss > 0 {
		s.ProfitFactor = s.GrossProfit / s.GrossLoss
	}
	if s.MaxDrawdown > 0 {
		s.RecoveryFactor = s.TotalPnL / s.MaxDrawdown
	}
	if s.AvgLoss < 0 {
		s.PayoffRatio = s.AvgWin / math.Abs(s.AvgLoss)
	}
	if s.AvgWin > 0 {
		s.LossRecoveryTrades = math.Abs(s.AvgLoss) / s.AvgWin
	}

	return s
}

// maxDrawdown reconstructs the trade-by-trade equity curve from the
// initial balance and returns the deepest peak-to-trough fall.
func maxDrawdown(pnls []float64, initialBalance float64) float64 {
	equity := initialBalance
	peak := initialBalance
	maxDD := 0.0

	for _, p := range pnls {
		equity += p
		if equity > peak {
			peak = equity
		}
		if dd := peak - equity; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}
