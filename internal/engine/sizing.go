package engine

import (
	"github.com/yourorg/ma-backtest-service/internal/model"
)

// FilterSignal applies the trade mode to a raw signal. Suppressed
// directions become Flat rather than the opposite direction, so a
// long-only strategy exits on a short signal instead of reversing.
func FilterSignal(sig Direction, mode model.TradeMode) Direction {
	switch mode {
	case model.TradeModeLongOnly:
		if sig == Short {
			return Flat
		}
	case model.TradeModeShortOnly:
		if sig == Long {
			return Flat
		}
	}
	return sig
}

// EntrySize returns the contract count for a new position at the given
// price. Sizing divides leveraged equity by the per-contract notional
// (price x pointValue); an entry always gets at least one contract when
// equity is positive, matching the minimum sizing unit.
func EntrySize(equity, price float64, cfg *model.StrategyConfig) int {
	if cfg.FixedContracts > 0 {
		return cfg.FixedContracts
	}
	if equity <= 0 {
		return 0
	}
	contracts := sizedContracts(equity, price, cfg)
	if contracts < 1 {
		return 1
	}
	return contracts
}

// RebalanceSize returns the target contract count when resizing an open
// position against current equity. Unlike entry sizing it may shrink to
// zero contracts.
func RebalanceSize(equity, price float64, cfg *model.StrategyConfig) int {
	if cfg.FixedContracts > 0 {
		return cfg.FixedContracts
	}
	contracts := sizedContracts(equity, price, cfg)
	if contracts < 0 {
		return 0
	}
	return contracts
}

func sizedContracts(equity, price float64, cfg *model.StrategyConfig) int {
	notional := price * cfg.PointValue
	if notional <= 0 {
		return 0
	}
	return int(equity * cfg.Leverage.EffectiveMultiplier() / notional)
}
