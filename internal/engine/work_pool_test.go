package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWorkerPool_RunsAllJobs(t *testing.T) {
	bars := barsFromMids(100, 99.9, 100.2, 99.8)
	pool := NewWorkerPool(4, NewSimulator(zap.NewNop()), bars, zap.NewNop())

	jobs := []Job{
		{Name: "tight", Params: Params{Delta: scalarDelta(0.05)}},
		{Name: "wide", Params: Params{Delta: scalarDelta(1.0)}},
		{Name: "skewed", Params: Params{Delta: scalarDelta(0.05), Phi: decimal.NewFromFloat(0.001)}},
	}

	reports, err := pool.Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	for _, j := range jobs {
		r, ok := reports[j.Name]
		require.True(t, ok, "missing report %q", j.Name)
		assert.Equal(t, j.Name, r.Name)
		assert.Len(t, r.States, len(bars))
	}
	// A one-unit-wide quote never fills on these mids.
	assert.Equal(t, int64(0), reports["wide"].Metrics.TradeCount)
	assert.Greater(t, reports["tight"].Metrics.TradeCount, int64(0))
}

func TestWorkerPool_FirstErrorAborts(t *testing.T) {
	bars := barsFromMids(100, 99.9, 100.2)
	pool := NewWorkerPool(2, NewSimulator(zap.NewNop()), bars, zap.NewNop())

	jobs := []Job{
		{Name: "good", Params: Params{Delta: scalarDelta(0.05)}},
		{Name: "bad", Params: Params{Delta: []decimal.Decimal{decimal.NewFromFloat(0.05), decimal.NewFromFloat(0.05)}}},
	}

	reports, err := pool.Run(context.Background(), jobs)
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.Nil(t, reports)
}

func TestWorkerPool_CancelledContext(t *testing.T) {
	bars := barsFromMids(100, 99.9)
	pool := NewWorkerPool(1, NewSimulator(zap.NewNop()), bars, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pool.Run(ctx, []Job{{Name: "only", Params: Params{Delta: scalarDelta(0.05)}}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkerPool_ClampsWorkerCount(t *testing.T) {
	bars := barsFromMids(100, 99.9)
	pool := NewWorkerPool(0, NewSimulator(zap.NewNop()), bars, zap.NewNop())

	reports, err := pool.Run(context.Background(), []Job{{Name: "only", Params: Params{Delta: scalarDelta(0.05)}}})
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}
