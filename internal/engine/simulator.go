package engine

import (
	"errors"
	"time"

	"volsim/internal/infrastructure"
	"volsim/internal/model"
	"volsim/internal/strategy"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrLengthMismatch reports a per-bar delta (or volatility) series whose
	// length differs from the bar series.
	ErrLengthMismatch = errors.New("engine: series length does not match bar series")

	// ErrVolRequired reports an adverse-selection coefficient without the
	// volatility series needed to scale it.
	ErrVolRequired = errors.New("engine: alpha_as > 0 requires a volatility series")
)

// Params control a single simulation run.
type Params struct {
	// Delta is the half-spread schedule: length 1 broadcasts a constant to
	// every bar, otherwise it must align with the bar series.
	Delta []decimal.Decimal

	// Phi shifts both quotes by -Phi*inventory before fill checks.
	Phi decimal.Decimal

	// Vol holds per-bar volatility forecasts; required when AlphaAS > 0.
	Vol []float64

	// AlphaAS scales the per-fill adverse-selection penalty alpha*vol*mid.
	AlphaAS float64
}

// Simulator steps a market-making strategy bar by bar. Quotes posted during
// bar t are checked against bar t+1's mid: if the market moved through a
// quote, that side fills for one unit. At most one trade per side per bar;
// both sides can fill in the same step. No inventory cap is enforced.
type Simulator struct {
	logger *zap.Logger
}

func NewSimulator(logger *zap.Logger) *Simulator {
	return &Simulator{logger: logger}
}

// Run folds the zero state {inventory=0, cash=0} over the bar sequence and
// returns the full trajectory, one row per bar. Validation happens before
// any bar is processed, so a bad parameter never leaks partial state.
func (s *Simulator) Run(name string, bars []model.Bar, p Params) ([]model.StateRow, error) {
	if len(p.Delta) != 1 && len(p.Delta) != len(bars) {
		return nil, ErrLengthMismatch
	}
	if p.Vol != nil && len(p.Vol) != len(bars) {
		return nil, ErrLengthMismatch
	}
	if p.AlphaAS > 0 && p.Vol == nil {
		return nil, ErrVolRequired
	}

	started := time.Now()

	var (
		inventory  int64
		cash       decimal.Decimal
		tradeCount int64
	)
	states := make([]model.StateRow, 0, len(bars))

	for t := range bars {
		mid := bars[t].Mid
		delta := p.Delta[0]
		if len(p.Delta) > 1 {
			delta = p.Delta[t]
		}

		bid, ask := strategy.SkewQuotes(mid.Sub(delta), mid.Add(delta), inventory, p.Phi)

		// The last bar has no successor and cannot fill; it only marks to
		// market.
		if t < len(bars)-1 {
			nextMid := bars[t+1].Mid
			var vol float64
			if p.Vol != nil {
				vol = p.Vol[t]
			}

			if nextMid.Cmp(bid) <= 0 {
				inventory++
				cash = cash.Sub(bid)
				cash = cash.Sub(penaltyAmount(mid, vol, p.AlphaAS))
				tradeCount++
				infrastructure.SimFills.WithLabelValues("bid").Inc()
			}
			if nextMid.Cmp(ask) >= 0 {
				inventory--
				cash = cash.Add(ask)
				cash = cash.Sub(penaltyAmount(mid, vol, p.AlphaAS))
				tradeCount++
				infrastructure.SimFills.WithLabelValues("ask").Inc()
			}
		}

		states = append(states, model.StateRow{
			Timestamp:      bars[t].Timestamp,
			Mid:            mid,
			Bid:            bid,
			Ask:            ask,
			Delta:          delta,
			Inventory:      inventory,
			Cash:           cash,
			PortfolioValue: cash.Add(mid.Mul(decimal.NewFromInt(inventory))),
			TradeCount:     tradeCount,
		})
	}

	infrastructure.SimRunDuration.WithLabelValues(name).Observe(time.Since(started).Seconds())
	s.logger.Info("simulation run complete",
		zap.String("strategy", name),
		zap.Int("bars", len(states)),
		zap.Int64("trades", tradeCount),
		zap.Int64("final_inventory", inventory),
	)
	return states, nil
}

func penaltyAmount(mid decimal.Decimal, vol, alpha float64) decimal.Decimal {
	p := Penalty(mid.InexactFloat64(), vol, alpha)
	if p == 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(p)
}
