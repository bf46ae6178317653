package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/yourorg/ma-backtest-service/internal/client"
	"github.com/yourorg/ma-backtest-service/internal/engine"
	"github.com/yourorg/ma-backtest-service/internal/model"
	"github.com/yourorg/ma-backtest-service/internal/repository"
)

// MarketDataService serves price history from the Postgres cache, refreshing
// it from the upstream provider when stale
type MarketDataService struct {
	priceRepo   *repository.PriceRepository
	priceClient *client.PriceClient
	cacheTTL    time.Duration
	logger      *zap.Logger
}

// NewMarketDataService creates a new market data service
func NewMarketDataService(
	priceRepo *repository.PriceRepository,
	priceClient *client.PriceClient,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *MarketDataService {
	return &MarketDataService{
		priceRepo:   priceRepo,
		priceClient: priceClient,
		cacheTTL:    cacheTTL,
		logger:      logger,
	}
}

// GetPriceSeries returns the validated price series for the inclusive date
// range. Nil bounds leave the range open on that side.
//
// When the provider is down a stale cache still serves; only an empty cache
// plus a failed download surfaces ErrDataUnavailable.
func (s *MarketDataService) GetPriceSeries(
	ctx context.Context,
	startDate *time.Time,
	endDate *time.Time,
) (*model.PriceSeries, error) {
	refreshed, err := s.priceRepo.LastRefreshed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check cache freshness: %w", err)
	}

	stale := refreshed == nil || time.Since(*refreshed) >= s.cacheTTL
	if stale {
		if err := s.refresh(ctx); err != nil {
			if refreshed == nil {
				return nil, fmt.Errorf("%w: %v", engine.ErrDataUnavailable, err)
			}
			s.logger.Warn("Provider refresh failed, serving stale cache",
				zap.Error(err),
				zap.Time("last_refreshed", *refreshed))
		}
	}

	observations, err := s.priceRepo.GetObservations(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to load cached observations: %w", err)
	}
	if len(observations) == 0 {
		return nil, fmt.Errorf("%w: no observations in requested range", engine.ErrDataUnavailable)
	}

	series, err := model.NewPriceSeries(observations)
	if err != nil {
		return nil, fmt.Errorf("cached series is corrupt: %w", err)
	}
	return series, nil
}

func (s *MarketDataService) refresh(ctx context.Context) error {
	observations, err := s.priceClient.GetDailyHistory(ctx)
	if err != nil {
		return err
	}
	if len(observations) == 0 {
		return fmt.Errorf("provider returned no observations")
	}

	if err := s.priceRepo.UpsertObservations(ctx, observations); err != nil {
		return fmt.Errorf("failed to cache observations: %w", err)
	}

	s.logger.Info("Refreshed price cache", zap.Int("observations", len(observations)))
	return nil
}
