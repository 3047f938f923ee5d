package engine

import (
	"testing"
	"time"

	"volsim/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func barsFromMids(mids ...float64) []model.Bar {
	base := time.Date(2024, 1, 3, 9, 30, 0, 0, time.UTC)
	bars := make([]model.Bar, len(mids))
	for i, m := range mids {
		mid := decimal.NewFromFloat(m)
		bars[i] = model.Bar{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Bid:       mid.Sub(decimal.NewFromFloat(0.01)),
			Ask:       mid.Add(decimal.NewFromFloat(0.01)),
			Mid:       mid,
		}
	}
	return bars
}

func scalarDelta(d float64) []decimal.Decimal {
	return []decimal.Decimal{decimal.NewFromFloat(d)}
}

func TestSimulator_FillSequence(t *testing.T) {
	// mid moves 100 -> 99.9 -> 100.2 with delta 0.05:
	// step 0 posts (99.95, 100.05); 99.9 <= 99.95 so our bid is hit.
	// step 1 posts (99.85, 99.95); 100.2 >= 99.95 so our ask is lifted.
	bars := barsFromMids(100, 99.9, 100.2)

	states, err := NewSimulator(zap.NewNop()).Run("test", bars, Params{Delta: scalarDelta(0.05)})
	require.NoError(t, err)
	require.Len(t, states, 3)

	assert.True(t, states[0].Bid.Equal(decimal.NewFromFloat(99.95)))
	assert.True(t, states[0].Ask.Equal(decimal.NewFromFloat(100.05)))
	assert.Equal(t, int64(1), states[0].Inventory)
	assert.True(t, states[0].Cash.Equal(decimal.NewFromFloat(-99.95)))
	assert.Equal(t, int64(1), states[0].TradeCount)

	assert.Equal(t, int64(0), states[1].Inventory)
	assert.True(t, states[1].Cash.Equal(decimal.Zero))
	assert.Equal(t, int64(2), states[1].TradeCount)

	// Last bar has no successor: state carries forward unchanged.
	assert.Equal(t, int64(0), states[2].Inventory)
	assert.True(t, states[2].Cash.Equal(decimal.Zero))
	assert.Equal(t, int64(2), states[2].TradeCount)
}

func TestSimulator_PortfolioIdentity(t *testing.T) {
	bars := barsFromMids(100, 99.5, 100.5, 99.8, 100.1, 99.9)

	states, err := NewSimulator(zap.NewNop()).Run("test", bars, Params{Delta: scalarDelta(0.1)})
	require.NoError(t, err)

	for i, s := range states {
		want := s.Cash.Add(s.Mid.Mul(decimal.NewFromInt(s.Inventory)))
		assert.True(t, s.PortfolioValue.Equal(want), "bar %d: %s != %s", i, s.PortfolioValue, want)
	}
}

func TestSimulator_TradeCountMonotone(t *testing.T) {
	bars := barsFromMids(100, 99.5, 100.5, 99.8, 100.1)

	states, err := NewSimulator(zap.NewNop()).Run("test", bars, Params{Delta: scalarDelta(0.05)})
	require.NoError(t, err)

	for i := 1; i < len(states); i++ {
		assert.GreaterOrEqual(t, states[i].TradeCount, states[i-1].TradeCount)
	}
}

func TestSimulator_PerBarDeltaSeries(t *testing.T) {
	bars := barsFromMids(100, 99.9, 100.2)
	deltas := []decimal.Decimal{
		decimal.NewFromFloat(0.02), // 99.9 <= 99.98: bid hit
		decimal.NewFromFloat(0.5),  // 100.2 < 100.4: no fill
		decimal.NewFromFloat(0.05),
	}

	states, err := NewSimulator(zap.NewNop()).Run("test", bars, Params{Delta: deltas})
	require.NoError(t, err)

	assert.Equal(t, int64(1), states[0].TradeCount)
	assert.Equal(t, int64(1), states[1].TradeCount)
	assert.True(t, states[1].Delta.Equal(decimal.NewFromFloat(0.5)))
}

func TestSimulator_LengthMismatchFailsFast(t *testing.T) {
	bars := barsFromMids(100, 99.9, 100.2)
	deltas := []decimal.Decimal{decimal.NewFromFloat(0.05), decimal.NewFromFloat(0.05)}

	states, err := NewSimulator(zap.NewNop()).Run("test", bars, Params{Delta: deltas})
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.Nil(t, states)
}

func TestSimulator_VolSeriesLengthChecked(t *testing.T) {
	bars := barsFromMids(100, 99.9, 100.2)

	_, err := NewSimulator(zap.NewNop()).Run("test", bars, Params{
		Delta: scalarDelta(0.05),
		Vol:   []float64{0.001},
	})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestSimulator_AdverseSelectionRequiresVol(t *testing.T) {
	bars := barsFromMids(100, 99.9)

	_, err := NewSimulator(zap.NewNop()).Run("test", bars, Params{
		Delta:   scalarDelta(0.05),
		AlphaAS: 0.02,
	})
	assert.ErrorIs(t, err, ErrVolRequired)
}

func TestSimulator_AdverseSelectionPenalizesFills(t *testing.T) {
	bars := barsFromMids(100, 99.9, 100.2)
	vol := []float64{0.001, 0.001, 0.001}

	plain, err := NewSimulator(zap.NewNop()).Run("plain", bars, Params{Delta: scalarDelta(0.05), Vol: vol})
	require.NoError(t, err)
	penalized, err := NewSimulator(zap.NewNop()).Run("penalized", bars, Params{
		Delta:   scalarDelta(0.05),
		Vol:     vol,
		AlphaAS: 0.02,
	})
	require.NoError(t, err)

	// Same fills, but each one costs alpha*vol*mid.
	assert.Equal(t, plain[2].TradeCount, penalized[2].TradeCount)
	penalty0 := decimal.NewFromFloat(0.02 * 0.001 * 100)
	wantCash := plain[0].Cash.Sub(penalty0)
	assert.True(t, penalized[0].Cash.Equal(wantCash), "got %s want %s", penalized[0].Cash, wantCash)
	assert.True(t, penalized[2].Cash.LessThan(plain[2].Cash))
}

func TestSimulator_InventorySkewShiftsQuotes(t *testing.T) {
	// Two bid hits in a row build inventory; skew then lowers the quotes.
	bars := barsFromMids(100, 99.9, 99.8, 99.8)

	states, err := NewSimulator(zap.NewNop()).Run("test", bars, Params{
		Delta: scalarDelta(0.05),
		Phi:   decimal.NewFromFloat(0.01),
	})
	require.NoError(t, err)

	// Bar 0: flat book, unskewed quotes.
	assert.True(t, states[0].Bid.Equal(decimal.NewFromFloat(99.95)))
	// Bar 1: inventory 1, quotes shifted down by phi.
	assert.True(t, states[1].Bid.Equal(decimal.NewFromFloat(99.84))) // 99.85 - 0.01
	assert.True(t, states[1].Ask.Equal(decimal.NewFromFloat(99.94))) // 99.95 - 0.01
}

func TestSimulator_SingleBarNeverFills(t *testing.T) {
	bars := barsFromMids(100)

	states, err := NewSimulator(zap.NewNop()).Run("test", bars, Params{Delta: scalarDelta(0.05)})
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, int64(0), states[0].TradeCount)
	assert.True(t, states[0].PortfolioValue.Equal(decimal.Zero))
}
