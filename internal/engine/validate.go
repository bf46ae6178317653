package engine

import (
	"fmt"

	"github.com/yourorg/ma-backtest-service/internal/model"
)

// ValidateConfig checks a strategy configuration before any simulation
// starts. A config that passes is never partially applied: the simulator
// assumes every field is already consistent.
func ValidateConfig(cfg *model.StrategyConfig) error {
	if cfg.MAWindow < 2 {
		return fmt.Errorf("%w: maWindow must be at least 2, got %d", ErrInvalidConfig, cfg.MAWindow)
	}

	switch cfg.TradeMode {
	case model.TradeModeLongOnly, model.TradeModeShortOnly, model.TradeModeBoth:
	default:
		return fmt.Errorf("%w: unknown tradeMode %q", ErrInvalidConfig, cfg.TradeMode)
	}

	if cfg.InitialCapital <= 0 {
		return fmt.Errorf("%w: initialCapital must be positive, got %f", ErrInvalidConfig, cfg.InitialCapital)
	}
	if cfg.MonthlyContribution < 0 {
		return fmt.Errorf("%w: monthlyContribution must not be negative", ErrInvalidConfig)
	}
	if cfg.PointValue <= 0 {
		return fmt.Errorf("%w: pointValue must be positive, got %f", ErrInvalidConfig, cfg.PointValue)
	}
	if cfg.Fees.BuyFee < 0 || cfg.Fees.SellFee < 0 {
		return fmt.Errorf("%w: fees must not be negative", ErrInvalidConfig)
	}
	if cfg.FixedContracts < 0 {
		return fmt.Errorf("%w: fixedContracts must not be negative", ErrInvalidConfig)
	}
	if cfg.BackwardationRate < 0 {
		return fmt.Errorf("%w: backwardationRate must not be negative", ErrInvalidConfig)
	}

	switch cfg.Leverage.Mode {
	case model.LeverageNone, "":
		if cfg.Leverage.Multiplier != 0 && cfg.Leverage.Multiplier != 1 {
			return fmt.Errorf("%w: leverage multiplier set without a leverage mode", ErrInvalidConfig)
		}
	case model.LeverageFixed, model.LeverageDynamic:
		if cfg.Leverage.Multiplier < 1 {
			return fmt.Errorf("%w: %s leverage multiplier must be at least 1, got %f",
				ErrInvalidConfig, cfg.Leverage.Mode, cfg.Leverage.Multiplier)
		}
	default:
		return fmt.Errorf("%w: unknown leverage mode %q", ErrInvalidConfig, cfg.Leverage.Mode)
	}

	if cfg.Rebalance.Enabled && cfg.Rebalance.PeriodDays < 1 {
		return fmt.Errorf("%w: rebalance periodDays must be at least 1, got %d",
			ErrInvalidConfig, cfg.Rebalance.PeriodDays)
	}

	return nil
}
