package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StateRow is one step of the simulated market-maker ledger, aligned to the
// bar index.
type StateRow struct {
	Timestamp      time.Time       `json:"t" db:"time"`
	Mid            decimal.Decimal `json:"mid" db:"mid"`
	Bid            decimal.Decimal `json:"bid" db:"bid"`
	Ask            decimal.Decimal `json:"ask" db:"ask"`
	Delta          decimal.Decimal `json:"delta" db:"delta"`
	Inventory      int64           `json:"inventory" db:"inventory"`
	Cash           decimal.Decimal `json:"cash" db:"cash"`
	PortfolioValue decimal.Decimal `json:"portfolio_value" db:"portfolio_value"`
	TradeCount     int64           `json:"trade_count" db:"trade_count"`
}

// RunMetrics summarizes a completed simulation run.
type RunMetrics struct {
	TotalPnL          float64 `json:"total_pnl"`
	MeanPnLPerBar     float64 `json:"mean_pnl_per_bar"`
	StdPnLPerBar      float64 `json:"std_pnl_per_bar"`
	SharpeRatio       float64 `json:"sharpe_ratio"`
	InventoryVariance float64 `json:"inventory_variance"`
	MaxAbsInventory   int64   `json:"max_abs_inventory"`
	TradeCount        int64   `json:"n_trades"`
}

// RunReport couples a named simulation run with its full state trajectory
// and summary metrics.
type RunReport struct {
	Name    string     `json:"name"`
	States  []StateRow `json:"states,omitempty"`
	Metrics RunMetrics `json:"metrics"`
}
