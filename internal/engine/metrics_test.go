package engine

import (
	"math"
	"testing"
	"time"

	"volsim/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func stateRows(portfolio []float64, inventory []int64, trades int64) []model.StateRow {
	base := time.Date(2024, 1, 3, 9, 30, 0, 0, time.UTC)
	states := make([]model.StateRow, len(portfolio))
	for i := range portfolio {
		states[i] = model.StateRow{
			Timestamp:      base.Add(time.Duration(i) * time.Minute),
			PortfolioValue: decimal.NewFromFloat(portfolio[i]),
			Inventory:      inventory[i],
		}
	}
	states[len(states)-1].TradeCount = trades
	return states
}

func TestComputeMetrics(t *testing.T) {
	states := stateRows([]float64{0, 1, 3, 2}, []int64{0, 1, 2, 1}, 3)

	m := ComputeMetrics(states)

	// diffs [1, 2, -1]: mean 2/3, sample variance 7/3
	assert.InDelta(t, 2.0, m.TotalPnL, 1e-12)
	assert.InDelta(t, 2.0/3.0, m.MeanPnLPerBar, 1e-12)
	assert.InDelta(t, math.Sqrt(7.0/3.0), m.StdPnLPerBar, 1e-12)
	assert.InDelta(t, (2.0/3.0)/math.Sqrt(7.0/3.0), m.SharpeRatio, 1e-12)

	// inventory [0, 1, 2, 1]: mean 1, sample variance 2/3
	assert.InDelta(t, 2.0/3.0, m.InventoryVariance, 1e-12)
	assert.Equal(t, int64(2), m.MaxAbsInventory)
	assert.Equal(t, int64(3), m.TradeCount)
}

func TestComputeMetrics_FlatPnLHasZeroSharpe(t *testing.T) {
	states := stateRows([]float64{5, 5, 5}, []int64{0, 0, 0}, 0)

	m := ComputeMetrics(states)
	assert.Zero(t, m.TotalPnL)
	assert.Zero(t, m.StdPnLPerBar)
	assert.Zero(t, m.SharpeRatio)
}

func TestComputeMetrics_ShortInventoryCountsTowardMax(t *testing.T) {
	states := stateRows([]float64{0, 0.1, 0.2}, []int64{0, -3, 1}, 2)

	m := ComputeMetrics(states)
	assert.Equal(t, int64(3), m.MaxAbsInventory)
}

func TestComputeMetrics_DegenerateInputs(t *testing.T) {
	assert.Equal(t, model.RunMetrics{}, ComputeMetrics(nil))

	m := ComputeMetrics(stateRows([]float64{1}, []int64{0}, 0))
	assert.Zero(t, m.TotalPnL)
	assert.Zero(t, m.MeanPnLPerBar)
	assert.Zero(t, m.InventoryVariance)
}
