package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovingAverageAlignment(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	series := testSeries(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), closes)

	ma, start, err := MovingAverage(series, 3)
	require.NoError(t, err)

	assert.Equal(t, 2, start)
	assert.Len(t, ma, series.Len())
	assert.InDelta(t, 2.0, ma[2], 1e-9)
	assert.InDelta(t, 5.0, ma[5], 1e-9)
	assert.InDelta(t, 9.0, ma[9], 1e-9)
}

func TestMovingAverageErrors(t *testing.T) {
	series := risingSeries(t, 5)

	_, _, err := MovingAverage(series, 1)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, _, err = MovingAverage(series, 6)
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestSignalAt(t *testing.T) {
	assert.Equal(t, Long, SignalAt(101, 100))
	assert.Equal(t, Short, SignalAt(99, 100))
	assert.Equal(t, Flat, SignalAt(100, 100))
}

func TestSignalsWarmupProducesNoEntries(t *testing.T) {
	series := risingSeries(t, 10)

	signals, err := Signals(series, 4)
	require.NoError(t, err)

	// 10 observations, 4-day window: signals start at index 3
	require.Len(t, signals, 7)
	assert.Equal(t, series.Date(3), signals[0].Date)
	for _, sig := range signals {
		assert.Equal(t, 1, sig.Signal, "rising series must stay long after warm-up")
	}
}

func TestSignalsDeterministic(t *testing.T) {
	closes := []float64{100, 97, 103, 99, 105, 94, 108, 101, 96, 110}
	series := testSeries(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), closes)

	first, err := Signals(series, 3)
	require.NoError(t, err)
	second, err := Signals(series, 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLatestStatus(t *testing.T) {
	series := risingSeries(t, 12)

	status, err := LatestStatus(series, 5, 4)
	require.NoError(t, err)

	assert.Equal(t, series.Date(11), status.LatestDate)
	assert.Equal(t, 111.0, status.LatestPrice)
	assert.InDelta(t, 109.0, status.MAValue, 1e-9)
	assert.InDelta(t, 2.0, status.PriceDiff, 1e-9)
	assert.Equal(t, "long", status.Signal)
	assert.Len(t, status.Recent, 4)
}
