package vol

import (
	"errors"
	"math"

	"volsim/internal/model"
)

var ErrInvalidLambda = errors.New("vol: lambda must be in (0, 1)")

// VarianceForecast runs the EWMA recurrence over a realized-variance
// sequence:
//
//	f[0] = rv[0]
//	f[i] = lambda*f[i-1] + (1-lambda)*rv[i]
//
// f[i] is the variance forecast for the bar after i, computable from
// information through bar i only. Output length equals input length.
func VarianceForecast(rv []float64, lambda float64) ([]float64, error) {
	return VarianceForecastFrom(rv, lambda, math.NaN())
}

// VarianceForecastFrom is VarianceForecast with an explicit seed in place of
// rv[0]. A NaN seed means "use rv[0]".
func VarianceForecastFrom(rv []float64, lambda, seed float64) ([]float64, error) {
	if !(lambda > 0 && lambda < 1) {
		return nil, ErrInvalidLambda
	}
	if len(rv) == 0 {
		return nil, nil
	}

	out := make([]float64, len(rv))
	if math.IsNaN(seed) {
		out[0] = rv[0]
	} else {
		out[0] = seed
	}
	for i := 1; i < len(rv); i++ {
		out[i] = lambda*out[i-1] + (1-lambda)*rv[i]
	}
	return out, nil
}

// VolatilityForecast is sqrt of VarianceForecast.
func VolatilityForecast(rv []float64, lambda float64) ([]float64, error) {
	out, err := VarianceForecast(rv, lambda)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = math.Sqrt(out[i])
	}
	return out, nil
}

// ForecastSeries applies VolatilityForecast to a realized-variance point
// series. The recurrence runs over the available points in order; bars with
// no realized variance are simply absent, so a gap carries the previous
// forecast forward rather than breaking the chain.
func ForecastSeries(rv []model.RVPoint, lambda float64) ([]model.RVPoint, error) {
	values := make([]float64, len(rv))
	for i, p := range rv {
		values[i] = p.Value
	}
	forecast, err := VolatilityForecast(values, lambda)
	if err != nil {
		return nil, err
	}
	out := make([]model.RVPoint, len(rv))
	for i, p := range rv {
		out[i] = model.RVPoint{Timestamp: p.Timestamp, Value: forecast[i]}
	}
	return out, nil
}

// AlignToBars maps a forecast point series onto the bar index: each bar takes
// the most recent forecast at or before its bucket start. Bars ahead of the
// first forecast fall back to the series mean.
func AlignToBars(forecast []model.RVPoint, bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	if len(forecast) == 0 {
		return out
	}

	var sum float64
	for _, p := range forecast {
		sum += p.Value
	}
	mean := sum / float64(len(forecast))

	j := -1
	for i, b := range bars {
		for j+1 < len(forecast) && !forecast[j+1].Timestamp.After(b.Timestamp) {
			j++
		}
		if j < 0 {
			out[i] = mean
		} else {
			out[i] = forecast[j].Value
		}
	}
	return out
}
