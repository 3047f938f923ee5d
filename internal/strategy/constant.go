package strategy

import (
	"volsim/internal/model"

	"github.com/shopspring/decimal"
)

// ConstantSpread quotes the same half-spread on every bar, the baseline the
// adaptive policies are compared against.
type ConstantSpread struct {
	delta decimal.Decimal
}

func NewConstantSpread(delta float64) *ConstantSpread {
	return &ConstantSpread{delta: decimal.NewFromFloat(delta)}
}

func (s *ConstantSpread) Name() string {
	return "constant"
}

func (s *ConstantSpread) Deltas(bars []model.Bar, _ []float64) ([]decimal.Decimal, error) {
	if s.delta.Sign() <= 0 {
		return nil, ErrInvalidSpread
	}
	out := make([]decimal.Decimal, len(bars))
	for i := range out {
		out[i] = s.delta
	}
	return out, nil
}
