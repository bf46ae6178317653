package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/ma-backtest-service/internal/model"
)

func testSeries(t *testing.T, start time.Time, closes []float64) *model.PriceSeries {
	t.Helper()
	observations := make([]model.Observation, len(closes))
	for i, close := range closes {
		observations[i] = model.Observation{Date: start.AddDate(0, 0, i), Close: close}
	}
	series, err := model.NewPriceSeries(observations)
	require.NoError(t, err)
	return series
}

func risingSeries(t *testing.T, days int) *model.PriceSeries {
	t.Helper()
	closes := make([]float64, days)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	return testSeries(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), closes)
}

func flatSeries(t *testing.T, days int) *model.PriceSeries {
	t.Helper()
	closes := make([]float64, days)
	for i := range closes {
		closes[i] = 100
	}
	return testSeries(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), closes)
}

func baseConfig() *model.StrategyConfig {
	return &model.StrategyConfig{
		MAWindow:       5,
		TradeMode:      model.TradeModeBoth,
		InitialCapital: 1_000_000,
		Leverage:       model.Leverage{Mode: model.LeverageNone},
		PointValue:     50,
	}
}

func TestRunRisingSeriesSingleLongTrade(t *testing.T) {
	series := risingSeries(t, 30)
	cfg := baseConfig()

	result, err := Run(context.Background(), series, cfg)
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]

	// First tradable day after the 5-day warm-up: entry at close 105
	assert.Equal(t, "long", trade.Direction)
	assert.Equal(t, EntryReasonAboveMA, trade.EntryReason)
	assert.Equal(t, ExitReasonPeriodEnd, trade.ExitReason)
	assert.Equal(t, 105.0, trade.EntryPrice)
	assert.Equal(t, 129.0, trade.ExitPrice)
	assert.Equal(t, 190, trade.Contracts)

	// (129 - 105) x 50 x 190, fee-free
	assert.InDelta(t, 228_000, trade.PnL, 1e-6)
	assert.InDelta(t, 1_228_000, result.Summary.FinalAssets, 1e-6)
	assert.InDelta(t, 22.8, result.Summary.TotalReturnPct, 1e-9)
	assert.Equal(t, 1, result.Summary.TradeCount)
	assert.InDelta(t, 100.0, result.Summary.WinRatePct, 1e-9)
	assert.InDelta(t, 0.0, result.Summary.MaxDrawdownPct, 1e-9)
}

func TestRunFlatSeriesNoTrades(t *testing.T) {
	series := flatSeries(t, 50)
	for _, window := range []int{2, 5, 13, 30} {
		cfg := baseConfig()
		cfg.MAWindow = window

		result, err := Run(context.Background(), series, cfg)
		require.NoError(t, err)

		assert.Equal(t, 0, result.Summary.TradeCount, "window %d", window)
		assert.Empty(t, result.Trades, "window %d", window)
		assert.InDelta(t, 0.0, result.Summary.TotalReturnPct, 1e-9)
		assert.InDelta(t, 0.0, result.Summary.MaxDrawdownPct, 1e-9)
		for _, point := range result.EquityCurve {
			assert.InDelta(t, cfg.InitialCapital, point.Equity, 1e-9)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	closes := []float64{100, 102, 99, 101, 104, 98, 96, 103, 108, 105, 99, 94, 101, 107, 110, 102, 97, 104}
	series := testSeries(t, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), closes)
	cfg := baseConfig()
	cfg.MAWindow = 3
	cfg.Fees = model.FeeSchedule{BuyFee: 35, SellFee: 35}

	first, err := Run(context.Background(), series, cfg)
	require.NoError(t, err)
	second, err := Run(context.Background(), series, cfg)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunDrawdownInvariants(t *testing.T) {
	closes := []float64{100, 103, 106, 101, 95, 92, 99, 107, 112, 104, 96, 90, 98, 108, 115, 109}
	series := testSeries(t, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), closes)
	cfg := baseConfig()
	cfg.MAWindow = 3

	result, err := Run(context.Background(), series, cfg)
	require.NoError(t, err)

	peak := 0.0
	for _, point := range result.EquityCurve {
		assert.GreaterOrEqual(t, point.DrawdownPct, 0.0)
		assert.GreaterOrEqual(t, point.PeakEquity, peak, "peak equity must be non-decreasing")
		peak = point.PeakEquity
		if point.Equity == point.PeakEquity {
			assert.InDelta(t, 0.0, point.DrawdownPct, 1e-9, "drawdown must be zero at a new peak")
		}
	}
}

func TestRunLedgerEquityReconciliation(t *testing.T) {
	closes := []float64{100, 100, 100, 100, 100, 110, 120, 90, 80, 110, 120, 95, 85, 112, 118, 104, 93, 89, 121, 110,
		100, 95, 105, 115, 108, 97, 92, 103, 113, 106}
	series := testSeries(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), closes)
	cfg := baseConfig()
	cfg.Fees = model.FeeSchedule{BuyFee: 35, SellFee: 35}
	cfg.MonthlyContribution = 10_000

	result, err := Run(context.Background(), series, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, result.Trades)

	var pnlSum float64
	for _, trade := range result.Trades {
		pnlSum += trade.PnL
	}

	// One month boundary crossed: Jan 15 + 30 days reaches mid-February
	contributions := 1 * cfg.MonthlyContribution
	assert.InDelta(t, result.Summary.FinalAssets-cfg.InitialCapital, pnlSum+contributions, 1e-6)
}

func TestRunTradeModeFiltering(t *testing.T) {
	// Falls below its MA shortly after warm-up and stays there
	closes := []float64{100, 100, 100, 100, 100, 90, 85, 80, 75, 70, 65, 60}
	series := testSeries(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), closes)

	longOnly := baseConfig()
	longOnly.TradeMode = model.TradeModeLongOnly
	result, err := Run(context.Background(), series, longOnly)
	require.NoError(t, err)
	assert.Empty(t, result.Trades, "long-only must treat short signals as flat")

	shortOnly := baseConfig()
	shortOnly.TradeMode = model.TradeModeShortOnly
	result, err = Run(context.Background(), series, shortOnly)
	require.NoError(t, err)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, "short", result.Trades[0].Direction)
	assert.Equal(t, EntryReasonBelowMA, result.Trades[0].EntryReason)
	assert.Positive(t, result.Trades[0].PnL)
}

func TestRunDirectionReversalSameBar(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104, 90, 89, 88, 87, 86}
	series := testSeries(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), closes)
	cfg := baseConfig()
	cfg.MAWindow = 3

	result, err := Run(context.Background(), series, cfg)
	require.NoError(t, err)
	require.Len(t, result.Trades, 2)

	first, second := result.Trades[0], result.Trades[1]
	assert.Equal(t, "long", first.Direction)
	assert.Equal(t, ExitReasonReversal, first.ExitReason)
	assert.Equal(t, "short", second.Direction)
	assert.Equal(t, ExitReasonPeriodEnd, second.ExitReason)

	// The reversal closes and reopens on the same bar
	assert.Equal(t, first.ExitDate, second.EntryDate)
	assert.Equal(t, first.ExitPrice, second.EntryPrice)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
}

func TestRunFeesReducePnL(t *testing.T) {
	series := risingSeries(t, 30)
	cfg := baseConfig()
	cfg.Fees = model.FeeSchedule{BuyFee: 35, SellFee: 35}

	result, err := Run(context.Background(), series, cfg)
	require.NoError(t, err)
	require.Len(t, result.Trades, 1)

	trade := result.Trades[0]
	assert.Equal(t, 190, trade.Contracts)
	assert.InDelta(t, 190*70.0, trade.Fee, 1e-9)
	assert.InDelta(t, 228_000-190*70.0, trade.PnL, 1e-6)
}

func TestRunFixedLeverageScalesContracts(t *testing.T) {
	series := risingSeries(t, 30)
	cfg := baseConfig()
	cfg.Leverage = model.Leverage{Mode: model.LeverageFixed, Multiplier: 2}

	result, err := Run(context.Background(), series, cfg)
	require.NoError(t, err)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, 380, result.Trades[0].Contracts)
}

func TestRunFixedContractsOverride(t *testing.T) {
	series := risingSeries(t, 30)
	cfg := baseConfig()
	cfg.FixedContracts = 3

	result, err := Run(context.Background(), series, cfg)
	require.NoError(t, err)
	require.Len(t, result.Trades, 1)
	assert.Equal(t, 3, result.Trades[0].Contracts)
	// (129 - 105) x 50 x 3
	assert.InDelta(t, 3600, result.Trades[0].PnL, 1e-6)
}

func TestRunRebalanceResizesWithoutExtraTrade(t *testing.T) {
	series := risingSeries(t, 30)
	cfg := baseConfig()
	cfg.Leverage = model.Leverage{Mode: model.LeverageDynamic, Multiplier: 2}
	cfg.Rebalance = model.Rebalance{Enabled: true, PeriodDays: 10}

	result, err := Run(context.Background(), series, cfg)
	require.NoError(t, err)

	// Resizing never produces its own trade record, but the settlement
	// contract count reflects the resize
	require.Len(t, result.Trades, 1)
	assert.NotEqual(t, 380, result.Trades[0].Contracts)

	var pnlSum float64
	for _, trade := range result.Trades {
		pnlSum += trade.PnL
	}
	assert.InDelta(t, result.Summary.FinalAssets-cfg.InitialCapital, pnlSum, 1e-6)
}

func TestRunCancellation(t *testing.T) {
	series := risingSeries(t, 30)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, series, baseConfig())
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunInsufficientData(t *testing.T) {
	series := risingSeries(t, 4)
	cfg := baseConfig()
	cfg.MAWindow = 10

	_, err := Run(context.Background(), series, cfg)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestRunInvalidConfigRejectedBeforeSimulation(t *testing.T) {
	series := risingSeries(t, 30)
	cfg := baseConfig()
	cfg.TradeMode = "sideways"

	_, err := Run(context.Background(), series, cfg)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunMonthlyContributionBeforeSizing(t *testing.T) {
	// Flat through warm-up, first long signal lands right after a month
	// boundary so the contribution is already in equity when sizing
	start := time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC)
	closes := []float64{100, 100, 100, 100, 100, 100, 100, 120, 125}
	series := testSeries(t, start, closes)
	cfg := baseConfig()
	cfg.MonthlyContribution = 50_000

	result, err := Run(context.Background(), series, cfg)
	require.NoError(t, err)
	require.Len(t, result.Trades, 1)

	// floor((1,000,000 + 50,000) / (120 x 50)) = 175; without the
	// contribution sizing would give 166
	assert.Equal(t, 175, result.Trades[0].Contracts)
}
