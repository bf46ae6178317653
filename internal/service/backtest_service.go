package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/ma-backtest-service/internal/engine"
	"github.com/yourorg/ma-backtest-service/internal/kafka"
	"github.com/yourorg/ma-backtest-service/internal/model"
)

// recentSignalWindow bounds the trailing signal history reported with the
// market status
const recentSignalWindow = 100

// BacktestService orchestrates the deterministic backtest core over the
// cached price history
type BacktestService struct {
	marketData *MarketDataService
	producer   *kafka.Producer
	workers    int
	logger     *zap.Logger
}

// NewBacktestService creates a new backtest service. The producer may be
// nil when event publishing is disabled.
func NewBacktestService(
	marketData *MarketDataService,
	producer *kafka.Producer,
	workers int,
	logger *zap.Logger,
) *BacktestService {
	return &BacktestService{
		marketData: marketData,
		producer:   producer,
		workers:    workers,
		logger:     logger,
	}
}

// RunBacktest simulates the strategy over the requested date range
func (s *BacktestService) RunBacktest(
	ctx context.Context,
	request *model.BacktestRequest,
) (*model.BacktestResult, error) {
	// Reject a bad config before touching the data path
	if err := engine.ValidateConfig(&request.Config); err != nil {
		return nil, err
	}

	series, err := s.marketData.GetPriceSeries(ctx, request.StartDate, request.EndDate)
	if err != nil {
		return nil, err
	}

	result, err := engine.Run(ctx, series, &request.Config)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Backtest completed",
		zap.Int("ma_window", request.Config.MAWindow),
		zap.String("trade_mode", string(request.Config.TradeMode)),
		zap.Int("trades", result.Summary.TradeCount),
		zap.Float64("total_return_pct", result.Summary.TotalReturnPct))

	s.publishCompleted(request.Config, result.Summary)

	return result, nil
}

// OptimizeMA grid-searches the MA window over the requested date range
func (s *BacktestService) OptimizeMA(
	ctx context.Context,
	request *model.OptimizeRequest,
) (*model.OptimizeResult, error) {
	series, err := s.marketData.GetPriceSeries(ctx, request.StartDate, request.EndDate)
	if err != nil {
		return nil, err
	}

	result, err := engine.OptimizeMA(ctx, series, &request.Config, request.MinMA, request.MaxMA, s.workers)
	if err != nil {
		return nil, err
	}

	s.logger.Info("MA optimization completed",
		zap.Int("min_ma", request.MinMA),
		zap.Int("max_ma", request.MaxMA),
		zap.Int("candidates", len(result.All)))

	return result, nil
}

// MarketStatus reports the latest close relative to its moving average
func (s *BacktestService) MarketStatus(ctx context.Context, maWindow int) (*model.MarketStatus, error) {
	series, err := s.marketData.GetPriceSeries(ctx, nil, nil)
	if err != nil {
		return nil, err
	}

	return engine.LatestStatus(series, maWindow, recentSignalWindow)
}

// publishCompleted emits the completed-run event in the background so event
// delivery never delays the response
func (s *BacktestService) publishCompleted(cfg model.StrategyConfig, summary model.BacktestSummary) {
	if s.producer == nil {
		return
	}

	event := kafka.BacktestCompletedEvent{
		MAWindow:    cfg.MAWindow,
		TradeMode:   cfg.TradeMode,
		Summary:     summary,
		CompletedAt: time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.producer.PublishBacktestCompleted(ctx, event)
	}()
}
