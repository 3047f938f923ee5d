package processor

import (
	"math"
	"sort"
	"time"

	"volsim/internal/infrastructure"
	"volsim/internal/model"

	"go.uber.org/zap"
)

// BarAggregator resamples a cleaned tick series into fixed-width time bars.
// Each tick lands in the half-open bucket [start, start+width); the last tick
// in a bucket supplies the bar's quote fields. Empty buckets are omitted.
//
// Buckets are anchored to the UTC epoch via Truncate. For any width that
// divides an hour this coincides with session-open anchoring, since session
// bounds are whole minutes; a width that does not divide an hour would shift
// bucket starts relative to the open.
type BarAggregator struct {
	width  time.Duration
	logger *zap.Logger
}

func NewBarAggregator(width time.Duration, logger *zap.Logger) *BarAggregator {
	if width <= 0 {
		width = time.Minute
	}
	return &BarAggregator{width: width, logger: logger}
}

func (a *BarAggregator) Resample(ticks []model.Tick) []model.Bar {
	last := make(map[time.Time]model.Tick)
	for _, t := range ticks {
		last[t.Timestamp.Truncate(a.width)] = t
	}
	if len(last) == 0 {
		return nil
	}

	buckets := make([]time.Time, 0, len(last))
	for b := range last {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Before(buckets[j]) })

	// Bar returns are recomputed over the bar sequence, not aggregated from
	// tick returns. A bar following a gap takes its return against the last
	// available prior bar.
	bars := make([]model.Bar, 0, len(buckets))
	prevLogMid := math.NaN()
	for _, b := range buckets {
		t := last[b]
		logMid := math.Log(t.Mid.InexactFloat64())
		bars = append(bars, model.Bar{
			Timestamp: b,
			Bid:       t.Bid,
			Ask:       t.Ask,
			BidSize:   t.BidSize,
			AskSize:   t.AskSize,
			Mid:       t.Mid,
			LogReturn: logMid - prevLogMid,
		})
		prevLogMid = logMid
	}

	infrastructure.BarsBuilt.Add(float64(len(bars)))
	a.logger.Info("resampled ticks to bars",
		zap.Int("ticks", len(ticks)),
		zap.Int("bars", len(bars)),
		zap.Duration("width", a.width),
	)
	return bars
}
