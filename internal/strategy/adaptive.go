package strategy

import (
	"volsim/internal/model"

	"github.com/shopspring/decimal"
)

// VolAdaptiveSpread widens the quoted half-spread linearly with the
// volatility forecast: delta = k0 + k1*sigma, floored at minSpread.
type VolAdaptiveSpread struct {
	k0        float64
	k1        float64
	minSpread float64
}

func NewVolAdaptiveSpread(k0, k1, minSpread float64) *VolAdaptiveSpread {
	return &VolAdaptiveSpread{k0: k0, k1: k1, minSpread: minSpread}
}

func (s *VolAdaptiveSpread) Name() string {
	return "vol_adaptive"
}

func (s *VolAdaptiveSpread) Deltas(bars []model.Bar, sigma []float64) ([]decimal.Decimal, error) {
	if len(sigma) != len(bars) {
		return nil, ErrLengthMismatch
	}
	return ComputeSpread(sigma, s.k0, s.k1, s.minSpread)
}
