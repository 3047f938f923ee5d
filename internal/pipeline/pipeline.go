// Package pipeline wires the tick-to-simulation chain: load, clean,
// resample, estimate realized variance, forecast, quote, simulate.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"volsim/internal/config"
	"volsim/internal/engine"
	"volsim/internal/ingest"
	"volsim/internal/model"
	"volsim/internal/processor"
	"volsim/internal/strategy"
	"volsim/internal/vol"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNoBars reports a session that cleaned down to too little data to
// simulate.
var ErrNoBars = errors.New("pipeline: fewer than two bars after cleaning")

// Run names, in report order.
const (
	RunBaseline     = "baseline"
	RunVolAdaptive  = "vol_adaptive"
	RunVolInventory = "vol_inventory"
)

// RunParams are the per-request simulation parameters, seeded from config
// and optionally overridden by an API caller.
type RunParams struct {
	Lambda        float64 `json:"lambda"`
	BaselineDelta float64 `json:"baseline_delta"`
	K0            float64 `json:"k0"`
	K1            float64 `json:"k1"`
	MinSpread     float64 `json:"min_spread"`
	Phi           float64 `json:"phi"`
	AlphaAS       float64 `json:"alpha_as"`
}

func ParamsFromConfig(cfg *config.Config) RunParams {
	return RunParams{
		Lambda:        cfg.EWMALambda,
		BaselineDelta: cfg.BaselineDelta,
		K0:            cfg.K0,
		K1:            cfg.K1,
		MinSpread:     cfg.MinSpread,
		Phi:           cfg.Phi,
		AlphaAS:       cfg.AlphaAS,
	}
}

type Pipeline struct {
	cfg    *config.Config
	logger *zap.Logger
}

func New(cfg *config.Config, logger *zap.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, logger: logger}
}

// LoadBars runs the data stages: parse the configured quote file, clean it,
// and resample to bars. The cleaned tick series is returned alongside the
// bars because realized variance needs tick-level returns.
func (p *Pipeline) LoadBars() ([]model.Tick, []model.Bar, error) {
	sessionStart, sessionEnd, err := p.cfg.SessionBounds()
	if err != nil {
		return nil, nil, err
	}

	quotes, err := ingest.NewLoader(p.logger).LoadFile(p.cfg.DataFile)
	if err != nil {
		return nil, nil, err
	}

	cleaner := ingest.NewCleaner(sessionStart, sessionEnd, p.cfg.MaxSpreadRatio, p.cfg.MaxAbsReturn, p.logger)
	ticks := cleaner.Clean(quotes)

	bars := processor.NewBarAggregator(p.cfg.BarWidth, p.logger).Resample(ticks)
	return ticks, bars, nil
}

// Compare runs LoadBars and then the three-strategy simulation.
func (p *Pipeline) Compare(ctx context.Context, rp RunParams) ([]model.RunReport, error) {
	ticks, bars, err := p.LoadBars()
	if err != nil {
		return nil, err
	}
	return p.Simulate(ctx, rp, ticks, bars)
}

// Simulate runs the three quoting strategies over one prepared session and
// returns their reports in a fixed order: baseline, vol-adaptive,
// vol-adaptive with inventory skew. Parameter validation happens before any
// simulation state is created.
func (p *Pipeline) Simulate(ctx context.Context, rp RunParams, ticks []model.Tick, bars []model.Bar) ([]model.RunReport, error) {
	if len(bars) < 2 {
		return nil, ErrNoBars
	}

	rvar := vol.RealizedVariance(ticks, p.cfg.BarWidth, 1)
	forecast, err := vol.ForecastSeries(rvar, rp.Lambda)
	if err != nil {
		return nil, err
	}
	sigma := vol.AlignToBars(forecast, bars)

	if roll := vol.RollingRealizedVolatility(rvar, time.Hour, 1, true); len(roll) > 0 {
		lastRoll := roll[len(roll)-1]
		p.logger.Info("rolling realized volatility",
			zap.Time("as_of", lastRoll.Timestamp),
			zap.Float64("annualized_1h", lastRoll.Value),
		)
	}

	basePolicy, err := strategy.NewPolicy("constant", map[string]interface{}{
		"delta": rp.BaselineDelta,
	})
	if err != nil {
		return nil, fmt.Errorf("baseline policy: %w", err)
	}
	adaptivePolicy, err := strategy.NewPolicy("vol_adaptive", map[string]interface{}{
		"k0":         rp.K0,
		"k1":         rp.K1,
		"min_spread": rp.MinSpread,
	})
	if err != nil {
		return nil, fmt.Errorf("vol-adaptive policy: %w", err)
	}

	baseline, err := basePolicy.Deltas(bars, sigma)
	if err != nil {
		return nil, fmt.Errorf("%s policy: %w", basePolicy.Name(), err)
	}
	adaptive, err := adaptivePolicy.Deltas(bars, sigma)
	if err != nil {
		return nil, fmt.Errorf("%s policy: %w", adaptivePolicy.Name(), err)
	}

	jobs := []engine.Job{
		{Name: RunBaseline, Params: engine.Params{Delta: baseline, Vol: sigma, AlphaAS: rp.AlphaAS}},
		{Name: RunVolAdaptive, Params: engine.Params{Delta: adaptive, Vol: sigma, AlphaAS: rp.AlphaAS}},
		{Name: RunVolInventory, Params: engine.Params{
			Delta:   adaptive,
			Phi:     decimal.NewFromFloat(rp.Phi),
			Vol:     sigma,
			AlphaAS: rp.AlphaAS,
		}},
	}

	pool := engine.NewWorkerPool(len(jobs), engine.NewSimulator(p.logger), bars, p.logger)
	results, err := pool.Run(ctx, jobs)
	if err != nil {
		return nil, err
	}

	reports := make([]model.RunReport, 0, len(jobs))
	for _, j := range jobs {
		reports = append(reports, results[j.Name])
	}
	return reports, nil
}
