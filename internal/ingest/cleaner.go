package ingest

import (
	"math"
	"sort"
	"time"

	"volsim/internal/infrastructure"
	"volsim/internal/model"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var two = decimal.NewFromInt(2)

// Cleaner filters a raw quote series down to usable regular-session ticks and
// derives mid price and log returns. Filters run in a fixed order: session
// window, crossed/locked or non-positive quotes, wide spreads, repeated
// (bid,ask) pairs, then outlier returns. Later filters see only the survivors
// of earlier ones.
type Cleaner struct {
	logger         *zap.Logger
	sessionStart   time.Duration
	sessionEnd     time.Duration
	maxSpreadRatio decimal.Decimal
	maxAbsReturn   float64
}

func NewCleaner(sessionStart, sessionEnd time.Duration, maxSpreadRatio, maxAbsReturn float64, logger *zap.Logger) *Cleaner {
	return &Cleaner{
		logger:         logger,
		sessionStart:   sessionStart,
		sessionEnd:     sessionEnd,
		maxSpreadRatio: decimal.NewFromFloat(maxSpreadRatio),
		maxAbsReturn:   maxAbsReturn,
	}
}

// Clean is a pure filter-and-derive pass. An empty result is valid output;
// the caller decides whether too much was removed.
func (c *Cleaner) Clean(quotes []model.Quote) []model.Tick {
	ordered := make([]model.Quote, len(quotes))
	copy(ordered, quotes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	var (
		survivors []model.Quote
		dropped   = map[string]int{}
	)
	for _, q := range ordered {
		switch {
		case !c.inSession(q.Timestamp):
			dropped["session"]++
		case q.Bid.Sign() <= 0 || q.Ask.Sign() <= 0 || q.Ask.Cmp(q.Bid) <= 0:
			dropped["crossed"]++
		case c.tooWide(q):
			dropped["spread"]++
		case len(survivors) > 0 && sameQuote(q, survivors[len(survivors)-1]):
			dropped["stuffing"]++
		default:
			survivors = append(survivors, q)
		}
	}

	// Returns are computed once over the survivors; rows breaching the cap
	// are removed and keep their already-computed return values.
	ticks := make([]model.Tick, 0, len(survivors))
	prevLogMid := math.NaN()
	for _, q := range survivors {
		mid := q.Bid.Add(q.Ask).Div(two)
		logMid := math.Log(mid.InexactFloat64())
		ret := logMid - prevLogMid
		prevLogMid = logMid

		if !math.IsNaN(ret) && math.Abs(ret) > c.maxAbsReturn {
			dropped["return"]++
			continue
		}
		ticks = append(ticks, model.Tick{
			Timestamp: q.Timestamp,
			Bid:       q.Bid,
			Ask:       q.Ask,
			BidSize:   q.BidSize,
			AskSize:   q.AskSize,
			Mid:       mid,
			LogReturn: ret,
		})
	}

	for filter, n := range dropped {
		infrastructure.QuotesDropped.WithLabelValues(filter).Add(float64(n))
	}
	infrastructure.QuotesKept.Add(float64(len(ticks)))

	c.logger.Info("cleaned quote series",
		zap.Int("in", len(quotes)),
		zap.Int("out", len(ticks)),
		zap.Int("dropped_session", dropped["session"]),
		zap.Int("dropped_crossed", dropped["crossed"]),
		zap.Int("dropped_spread", dropped["spread"]),
		zap.Int("dropped_stuffing", dropped["stuffing"]),
		zap.Int("dropped_return", dropped["return"]),
	)
	return ticks
}

func (c *Cleaner) inSession(ts time.Time) bool {
	midnight := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	tod := ts.Sub(midnight)
	return tod >= c.sessionStart && tod < c.sessionEnd
}

func (c *Cleaner) tooWide(q model.Quote) bool {
	mid := q.Bid.Add(q.Ask).Div(two)
	spread := q.Ask.Sub(q.Bid)
	return spread.Div(mid).Cmp(c.maxSpreadRatio) > 0
}

func sameQuote(q, prev model.Quote) bool {
	return q.Bid.Equal(prev.Bid) && q.Ask.Equal(prev.Ask)
}
