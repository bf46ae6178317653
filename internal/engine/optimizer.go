package engine

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/yourorg/ma-backtest-service/internal/model"
)

// DefaultOptimizerWorkers bounds concurrent candidate simulations when the
// caller does not choose a limit
const DefaultOptimizerWorkers = 4

// OptimizeMA grid-searches the inclusive [minMA, maxMA] window range.
// Each candidate run is an independent pure function of the series and
// config, so candidates are evaluated on a bounded worker pool; results
// are only collected once every run has finished, then ranked by total
// return descending, ties broken by lower max drawdown, then smaller
// window.
func OptimizeMA(ctx context.Context, series *model.PriceSeries, base *model.StrategyConfig, minMA, maxMA, workers int) (*model.OptimizeResult, error) {
	if minMA < 2 {
		return nil, fmt.Errorf("%w: minMA must be at least 2, got %d", ErrInvalidConfig, minMA)
	}
	if maxMA < minMA {
		return nil, fmt.Errorf("%w: maxMA %d is below minMA %d", ErrInvalidConfig, maxMA, minMA)
	}
	if workers < 1 {
		workers = DefaultOptimizerWorkers
	}

	// Fail fast on a bad base config instead of from inside a worker
	probe := *base
	probe.MAWindow = minMA
	if err := ValidateConfig(&probe); err != nil {
		return nil, err
	}

	// Windows longer than the series cannot produce a single signal
	if maxMA >= series.Len() {
		maxMA = series.Len() - 1
	}
	if maxMA < minMA {
		return nil, fmt.Errorf("%w: no candidate window in [%d, %d] fits a series of %d observations",
			ErrInsufficientRange, minMA, maxMA, series.Len())
	}

	candidates := make([]model.OptimizeCandidate, maxMA-minMA+1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for window := minMA; window <= maxMA; window++ {
		window := window
		g.Go(func() error {
			cfg := *base
			cfg.MAWindow = window

			result, err := Run(gctx, series, &cfg)
			if err != nil {
				return fmt.Errorf("window %d: %w", window, err)
			}

			summary := result.Summary
			tradeCount := summary.TradeCount
			divisor := tradeCount
			if divisor < 1 {
				divisor = 1
			}

			candidates[window-minMA] = model.OptimizeCandidate{
				MA:          window,
				TotalReturn: summary.TotalReturnPct,
				AvgReturn:   summary.TotalReturnPct / float64(divisor),
				MaxDrawdown: summary.MaxDrawdownPct,
				WinRate:     summary.WinRatePct,
				TradeCount:  tradeCount,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.TotalReturn != b.TotalReturn {
			return a.TotalReturn > b.TotalReturn
		}
		if a.MaxDrawdown != b.MaxDrawdown {
			return a.MaxDrawdown < b.MaxDrawdown
		}
		return a.MA < b.MA
	})
	for i := range candidates {
		candidates[i].Rank = i + 1
	}

	top := candidates
	if len(top) > 3 {
		top = top[:3]
	}

	return &model.OptimizeResult{Top3: top, All: candidates}, nil
}
