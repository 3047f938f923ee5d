package infrastructure

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuotesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotes_dropped_total",
		Help: "Quote rows removed during cleaning, by filter",
	}, []string{"filter"})

	QuotesKept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quotes_kept_total",
		Help: "Quote rows surviving all cleaning filters",
	})

	RowsUnparseable = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rows_unparseable_total",
		Help: "Input rows dropped because they could not be parsed",
	})

	BarsBuilt = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bars_built_total",
		Help: "Time bars produced by the resampler",
	})

	SimFills = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sim_fills_total",
		Help: "Simulated fills, by quote side",
	}, []string{"side"})

	SimRunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "sim_run_duration_seconds",
		Help: "Wall time of a single simulation run",
	}, []string{"strategy"})
)
