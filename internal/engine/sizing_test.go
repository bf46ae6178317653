package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourorg/ma-backtest-service/internal/model"
)

func TestFilterSignal(t *testing.T) {
	assert.Equal(t, Flat, FilterSignal(Short, model.TradeModeLongOnly))
	assert.Equal(t, Long, FilterSignal(Long, model.TradeModeLongOnly))
	assert.Equal(t, Flat, FilterSignal(Long, model.TradeModeShortOnly))
	assert.Equal(t, Short, FilterSignal(Short, model.TradeModeShortOnly))
	assert.Equal(t, Long, FilterSignal(Long, model.TradeModeBoth))
	assert.Equal(t, Short, FilterSignal(Short, model.TradeModeBoth))
	assert.Equal(t, Flat, FilterSignal(Flat, model.TradeModeBoth))
}

func TestEntrySize(t *testing.T) {
	cfg := baseConfig()

	// floor(1,000,000 / (100 x 50))
	assert.Equal(t, 200, EntrySize(1_000_000, 100, cfg))

	// An entry that equity cannot fully fund still gets the minimum unit
	assert.Equal(t, 1, EntrySize(1_000, 100, cfg))

	assert.Equal(t, 0, EntrySize(0, 100, cfg))
	assert.Equal(t, 0, EntrySize(-500, 100, cfg))
}

func TestEntrySizeLeverage(t *testing.T) {
	cfg := baseConfig()
	cfg.Leverage = model.Leverage{Mode: model.LeverageFixed, Multiplier: 3}
	assert.Equal(t, 600, EntrySize(1_000_000, 100, cfg))

	cfg.Leverage = model.Leverage{Mode: model.LeverageDynamic, Multiplier: 2}
	assert.Equal(t, 400, EntrySize(1_000_000, 100, cfg))
}

func TestEntrySizeFixedContracts(t *testing.T) {
	cfg := baseConfig()
	cfg.FixedContracts = 7
	assert.Equal(t, 7, EntrySize(1_000_000, 100, cfg))
	assert.Equal(t, 7, EntrySize(1, 100, cfg))
	assert.Equal(t, 7, RebalanceSize(1, 100, cfg))
}

func TestRebalanceSizeMayShrinkToZero(t *testing.T) {
	cfg := baseConfig()
	assert.Equal(t, 0, RebalanceSize(1_000, 100, cfg))
	assert.Equal(t, 200, RebalanceSize(1_000_000, 100, cfg))
	assert.Equal(t, 0, RebalanceSize(-10_000, 100, cfg))
}
