package engine

import (
	"math"

	"volsim/internal/model"
)

// ComputeMetrics summarizes a state trajectory. PnL statistics are over
// per-bar portfolio-value differences; dispersion uses the sample (n-1)
// convention.
func ComputeMetrics(states []model.StateRow) model.RunMetrics {
	if len(states) == 0 {
		return model.RunMetrics{}
	}

	values := make([]float64, len(states))
	for i, s := range states {
		values[i] = s.PortfolioValue.InexactFloat64()
	}

	pnl := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		pnl = append(pnl, values[i]-values[i-1])
	}

	meanPnL, stdPnL := meanStd(pnl)
	sharpe := 0.0
	if stdPnL != 0 {
		sharpe = meanPnL / stdPnL
	}

	var (
		invSum    float64
		maxAbsInv int64
	)
	for _, s := range states {
		invSum += float64(s.Inventory)
		if abs := s.Inventory; abs < 0 {
			if -abs > maxAbsInv {
				maxAbsInv = -abs
			}
		} else if abs > maxAbsInv {
			maxAbsInv = abs
		}
	}
	invMean := invSum / float64(len(states))
	var invSqDiff float64
	for _, s := range states {
		d := float64(s.Inventory) - invMean
		invSqDiff += d * d
	}
	invVariance := 0.0
	if len(states) > 1 {
		invVariance = invSqDiff / float64(len(states)-1)
	}

	return model.RunMetrics{
		TotalPnL:          values[len(values)-1] - values[0],
		MeanPnLPerBar:     meanPnL,
		StdPnLPerBar:      stdPnL,
		SharpeRatio:       sharpe,
		InventoryVariance: invVariance,
		MaxAbsInventory:   maxAbsInv,
		TradeCount:        states[len(states)-1].TradeCount,
	}
}

func meanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean = sum / float64(len(xs))

	if len(xs) < 2 {
		return mean, 0
	}
	var sumSqDiff float64
	for _, x := range xs {
		d := x - mean
		sumSqDiff += d * d
	}
	return mean, math.Sqrt(sumSqDiff / float64(len(xs)-1))
}
