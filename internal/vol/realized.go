// Package vol implements realized-variance estimation and EWMA volatility
// forecasting over bar-bucketed tick returns.
package vol

import (
	"math"
	"sort"
	"time"

	"volsim/internal/model"
)

// RealizedVariance sums squared tick-level log returns per bar bucket:
//
//	RVAR_t = sum_{i in bucket t} r_i^2
//
// Undefined returns (the first tick of the series) do not contribute.
// Buckets with fewer than minObs contributing returns are excluded, not
// zeroed, so a quiet bar propagates as a gap rather than biasing the
// forecast decay downstream.
func RealizedVariance(ticks []model.Tick, width time.Duration, minObs int) []model.RVPoint {
	if width <= 0 {
		width = time.Minute
	}
	if minObs < 1 {
		minObs = 1
	}

	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, t := range ticks {
		if math.IsNaN(t.LogReturn) {
			continue
		}
		b := t.Timestamp.Truncate(width)
		sums[b] += t.LogReturn * t.LogReturn
		counts[b]++
	}

	out := make([]model.RVPoint, 0, len(sums))
	for b, s := range sums {
		if counts[b] < minObs {
			continue
		}
		out = append(out, model.RVPoint{Timestamp: b, Value: s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

// RealizedVolatility is sqrt of RealizedVariance per bucket.
func RealizedVolatility(ticks []model.Tick, width time.Duration, minObs int) []model.RVPoint {
	rvar := RealizedVariance(ticks, width, minObs)
	out := make([]model.RVPoint, len(rvar))
	for i, p := range rvar {
		out[i] = model.RVPoint{Timestamp: p.Timestamp, Value: math.Sqrt(p.Value)}
	}
	return out
}
