package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is one raw TAQ quote record as parsed from the input file.
type Quote struct {
	Timestamp time.Time       `json:"ts"`
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	BidSize   int64           `json:"bidsiz"`
	AskSize   int64           `json:"asksiz"`
}

// Tick is a cleaned quote with derived mid price and tick-level log return.
// LogReturn is NaN for the first observation of a series.
type Tick struct {
	Timestamp time.Time       `json:"ts" db:"time"`
	Bid       decimal.Decimal `json:"bid" db:"bid"`
	Ask       decimal.Decimal `json:"ask" db:"ask"`
	BidSize   int64           `json:"bidsiz" db:"bidsiz"`
	AskSize   int64           `json:"asksiz" db:"asksiz"`
	Mid       decimal.Decimal `json:"mid" db:"mid"`
	LogReturn float64         `json:"log_return" db:"log_return"`
}

// Bar is a fixed-width resample of the tick series. Timestamp is the bucket
// start; quote fields come from the last tick inside the bucket. LogReturn is
// recomputed over the bar sequence, NaN for the first bar.
type Bar struct {
	Timestamp time.Time       `json:"t" db:"time"`
	Bid       decimal.Decimal `json:"bid" db:"bid"`
	Ask       decimal.Decimal `json:"ask" db:"ask"`
	BidSize   int64           `json:"bidsiz" db:"bidsiz"`
	AskSize   int64           `json:"asksiz" db:"asksiz"`
	Mid       decimal.Decimal `json:"mid" db:"mid"`
	LogReturn float64         `json:"log_return" db:"log_return"`
}

// RVPoint holds realized variance (or a derived volatility measure) for one
// bar bucket.
type RVPoint struct {
	Timestamp time.Time `json:"t"`
	Value     float64   `json:"v"`
}
