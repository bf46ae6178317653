package engine

import (
	"fmt"

	"github.com/yourorg/ma-backtest-service/internal/model"
)

// Direction is a daily trading signal
type Direction int

const (
	Short Direction = -1
	Flat  Direction = 0
	Long  Direction = 1
)

// String returns the ledger representation of a direction
func (d Direction) String() string {
	switch d {
	case Long:
		return "long"
	case Short:
		return "short"
	default:
		return "flat"
	}
}

// MovingAverage computes the trailing simple moving average of the series
// closes. The returned slice is aligned with the series: ma[i] is the mean
// of closes[i-window+1 .. i], and the first window-1 entries are undefined.
// The second return value is the first index with a defined average.
func MovingAverage(series *model.PriceSeries, window int) ([]float64, int, error) {
	if window < 2 {
		return nil, 0, fmt.Errorf("%w: maWindow must be at least 2, got %d", ErrInvalidConfig, window)
	}
	if series.Len() < window {
		return nil, 0, fmt.Errorf("%w: need at least %d observations, have %d",
			ErrInsufficientData, window, series.Len())
	}

	ma := make([]float64, series.Len())
	var sum float64
	for i := 0; i < series.Len(); i++ {
		sum += series.Close(i)
		if i >= window {
			sum -= series.Close(i - window)
		}
		if i >= window-1 {
			ma[i] = sum / float64(window)
		}
	}
	return ma, window - 1, nil
}

// SignalAt derives the daily signal from a close and its moving average:
// long strictly above, short strictly below. A close exactly on the average
// is Flat: it neither opens a position nor forces an exit.
func SignalAt(close, ma float64) Direction {
	switch {
	case close > ma:
		return Long
	case close < ma:
		return Short
	default:
		return Flat
	}
}

// Signals computes the dated signal history for the series. Indices before
// the warm-up window produce no entry.
func Signals(series *model.PriceSeries, window int) ([]model.DatedSignal, error) {
	ma, start, err := MovingAverage(series, window)
	if err != nil {
		return nil, err
	}

	out := make([]model.DatedSignal, 0, series.Len()-start)
	for i := start; i < series.Len(); i++ {
		out = append(out, model.DatedSignal{
			Date:   series.Date(i),
			Signal: int(SignalAt(series.Close(i), ma[i])),
		})
	}
	return out, nil
}
