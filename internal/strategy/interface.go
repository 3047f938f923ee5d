package strategy

import (
	"errors"

	"volsim/internal/model"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidSpread reports a half-spread schedule containing a
	// non-positive value, which would cross our own quotes.
	ErrInvalidSpread = errors.New("strategy: half-spread must be positive")

	// ErrLengthMismatch reports a volatility series not aligned with the
	// bar series.
	ErrLengthMismatch = errors.New("strategy: volatility series length does not match bar series")
)

// Policy maps per-bar volatility forecasts to a half-spread schedule, one
// delta per bar.
type Policy interface {
	Name() string
	Deltas(bars []model.Bar, sigma []float64) ([]decimal.Decimal, error)
}

// ComputeSpread builds the vol-adaptive schedule delta_i = k0 + k1*sigma_i,
// floored at minSpread. Any resulting delta <= 0 invalidates the schedule.
func ComputeSpread(sigma []float64, k0, k1, minSpread float64) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(sigma))
	for i, s := range sigma {
		d := k0 + k1*s
		if d < minSpread {
			d = minSpread
		}
		if d <= 0 {
			return nil, ErrInvalidSpread
		}
		out[i] = decimal.NewFromFloat(d)
	}
	return out, nil
}
