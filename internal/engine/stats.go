package engine

import (
	"github.com/yourorg/ma-backtest-service/internal/model"
)

// Summarize reduces a trade ledger and equity curve into headline metrics.
// It derives everything from the ledger and curve and never mutates them.
func Summarize(initialCapital float64, trades []model.Trade, curve []model.EquityPoint, period model.DateRange) model.BacktestSummary {
	finalAssets := initialCapital
	maxDrawdown := 0.0
	for _, point := range curve {
		if point.DrawdownPct > maxDrawdown {
			maxDrawdown = point.DrawdownPct
		}
	}
	if len(curve) > 0 {
		finalAssets = curve[len(curve)-1].Equity
	}

	totalReturn := 0.0
	if initialCapital > 0 {
		totalReturn = (finalAssets - initialCapital) / initialCapital * 100
	}

	// Win rate is defined as zero for an empty ledger, not an error
	winRate := 0.0
	if len(trades) > 0 {
		wins := 0
		for _, trade := range trades {
			if trade.PnL > 0 {
				wins++
			}
		}
		winRate = float64(wins) / float64(len(trades)) * 100
	}

	return model.BacktestSummary{
		Period:         period,
		FinalAssets:    finalAssets,
		TotalReturnPct: totalReturn,
		MaxDrawdownPct: maxDrawdown,
		WinRatePct:     winRate,
		TradeCount:     len(trades),
	}
}
