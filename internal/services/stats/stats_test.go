package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	t.Run("mixed trades", func(t *testing.T) {
		s := Compute([]float64{100, -50, 200, -30, 80}, 10000)

		assert.Equal(t, 5, s.TradeCount)
		assert.Equal(t, 3, s.Wins)
		assert.Equal(t, 2, s.Losses)
		assert.InDelta(t, 60.0, s.WinRate, 1e-12)

		assert.InDelta(t, 300.0, s.TotalPnL, 1e-12)
		assert.InDelta(t, 10300.0, s.FinalBalance, 1e-12)
		assert.InDelta(t, 380.0, s.GrossProfit, 1e-12)
		assert.InDelta(t, 80.0, s.GrossLoss, 1e-12)
		assert.InDelta(t, 380.0/3.0, s.AvgWin, 1e-12)
		assert.InDelta(t, -40.0, s.AvgLoss, 1e-12)

		// deepest fall: single -50 after the first peak
		assert.InDelta(t, 50.0, s.MaxDrawdown, 1e-12)
		assert.InDelta(t, 380.0/80.0, s.ProfitFactor, 1e-12)
		assert.InDelta(t, 300.0/50.0, s.RecoveryFactor, 1e-12)
		assert.InDelta(t, (380.0/3.0)/40.0, s.PayoffRatio, 1e-12)
		assert.InDelta(t, 40.0/(380.0/3.0), s.LossRecoveryTrades, 1e-12)
	})

	t.Run("zero pnl counts as loss", func(t *testing.T) {
		s := Compute([]float64{0, 10}, 1000)
		assert.Equal(t, 1, s.Wins)
		assert.Equal(t, 1, s.Losses)
		assert.InDelta(t, 50.0, s.WinRate, 1e-12)
		// zero-sized loss: payoff ratio stays zero
		assert.Zero(t, s.PayoffRatio)
		assert.Zero(t, s.LossRecoveryTrades)
	})

	t.Run("all winners", func(t *testing.T) {
		s := Compute([]float64{10, 20}, 1000)
		assert.Zero(t, s.ProfitFactor)   // no loss to divide by
		assert.Zero(t, s.RecoveryFactor) // no drawdown
		assert.InDelta(t, 100.0, s.WinRate, 1e-12)
	})

	t.Run("all losers", func(t *testing.T) {
		s := Compute([]float64{-10, -20}, 1000)
		assert.InDelta(t, 0.0, s.WinRate, 1e-12)
		assert.InDelta(t, 30.0, s.MaxDrawdown, 1e-12)
		assert.InDelta(t, -1.0, s.RecoveryFactor, 1e-12)
		assert.Zero(t, s.PayoffRatio)
	})

	t.Run("no trades", func(t *testing.T) {
		s := Compute(nil, 5000)
		assert.Zero(t, s.TradeCount)
		assert.Zero(t, s.WinRate)
		assert.InDelta(t, 5000.0, s.FinalBalance, 1e-12)
		assert.Zero(t, s.MaxDrawdown)
	})

	t.Run("drawdown spans multiple trades", func(t *testing.T) {
		s := Compute([]float64{50, -30, -40, 100}, 1000)
		assert.InDelta(t, 70.0, s.MaxDrawdown, 1e-12)
	})
}
