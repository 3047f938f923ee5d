package vol

import (
	"math"
	"time"

	"volsim/internal/model"
)

// PeriodsPerYear converts per-minute variance to annual terms: 252 trading
// days of 390 regular-session minutes.
const PeriodsPerYear = 252 * 390

// RollingRealizedVolatility computes sqrt of the rolling sum of realized
// variance over a trailing time window (t-window, t]. Points whose window
// holds fewer than minPeriods observations are omitted.
func RollingRealizedVolatility(rvar []model.RVPoint, window time.Duration, minPeriods int, annualize bool) []model.RVPoint {
	// A non-positive window would evict every point, its own included.
	if window <= 0 {
		window = time.Minute
	}
	if minPeriods < 1 {
		minPeriods = 1
	}

	out := make([]model.RVPoint, 0, len(rvar))
	start := 0
	var sum float64
	for i, p := range rvar {
		sum += p.Value
		for !rvar[start].Timestamp.After(p.Timestamp.Add(-window)) {
			sum -= rvar[start].Value
			start++
		}
		if i-start+1 < minPeriods {
			continue
		}
		v := math.Sqrt(sum)
		if annualize {
			v *= math.Sqrt(PeriodsPerYear)
		}
		out = append(out, model.RVPoint{Timestamp: p.Timestamp, Value: v})
	}
	return out
}
