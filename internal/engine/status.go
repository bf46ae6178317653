package engine

import (
	"github.com/yourorg/ma-backtest-service/internal/model"
)

// LatestStatus reports the newest close relative to its moving average,
// together with up to recentN trailing daily signals
func LatestStatus(series *model.PriceSeries, window, recentN int) (*model.MarketStatus, error) {
	signals, err := Signals(series, window)
	if err != nil {
		return nil, err
	}

	ma, _, err := MovingAverage(series, window)
	if err != nil {
		return nil, err
	}

	last := series.Len() - 1
	latestClose := series.Close(last)
	latestMA := ma[last]

	if recentN > 0 && len(signals) > recentN {
		signals = signals[len(signals)-recentN:]
	}

	return &model.MarketStatus{
		LatestDate:  series.Date(last),
		LatestPrice: latestClose,
		MAValue:     latestMA,
		PriceDiff:   latestClose - latestMA,
		Signal:      SignalAt(latestClose, latestMA).String(),
		Recent:      signals,
	}, nil
}
