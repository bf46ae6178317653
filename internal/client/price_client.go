package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/yourorg/ma-backtest-service/internal/config"
	"github.com/yourorg/ma-backtest-service/internal/model"
)

// PriceClient fetches daily close history from the Yahoo Finance chart API
type PriceClient struct {
	baseURL        string
	symbol         string
	chartRange     string
	maxElapsedTime time.Duration
	httpClient     *http.Client
	logger         *zap.Logger
}

// NewPriceClient creates a new price history client
func NewPriceClient(cfg config.ProviderConfig, logger *zap.Logger) *PriceClient {
	return &PriceClient{
		baseURL:        cfg.BaseURL,
		symbol:         cfg.Symbol,
		chartRange:     cfg.Range,
		maxElapsedTime: cfg.MaxElapsedTime,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// chartResponse mirrors the subset of the chart API payload we consume
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// GetDailyHistory downloads the full daily close history for the configured
// symbol. Transient failures are retried with exponential backoff up to the
// configured elapsed time.
func (c *PriceClient) GetDailyHistory(ctx context.Context) ([]model.Observation, error) {
	reqURL := fmt.Sprintf("%s/%s?range=%s&interval=1d",
		c.baseURL, url.PathEscape(c.symbol), url.QueryEscape(c.chartRange))

	var observations []model.Observation
	operation := func() error {
		fetched, err := c.fetch(ctx, reqURL)
		if err != nil {
			return err
		}
		observations = fetched
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = c.maxElapsedTime
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		c.logger.Error("Failed to fetch price history",
			zap.Error(err),
			zap.String("symbol", c.symbol))
		return nil, err
	}

	return observations, nil
}

func (c *PriceClient) fetch(ctx context.Context, reqURL string) ([]model.Observation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("User-Agent", "ma-backtest-service/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch price history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("chart API returned status code %d: %s", resp.StatusCode, string(bodyBytes))
		// Client-side errors will not heal on retry
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode chart response: %w", err)
	}

	if payload.Chart.Error != nil {
		return nil, backoff.Permanent(fmt.Errorf("chart API error %s: %s",
			payload.Chart.Error.Code, payload.Chart.Error.Description))
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart API returned no result for %s", c.symbol)
	}

	result := payload.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close
	if len(result.Timestamp) != len(closes) {
		return nil, fmt.Errorf("chart API returned %d timestamps for %d closes",
			len(result.Timestamp), len(closes))
	}

	observations := make([]model.Observation, 0, len(closes))
	for i, ts := range result.Timestamp {
		// Holidays and half-sessions come through as null closes
		if closes[i] == nil || *closes[i] <= 0 {
			continue
		}
		day := time.Unix(ts, 0).UTC()
		observations = append(observations, model.Observation{
			Date:  time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Close: *closes[i],
		})
	}

	c.logger.Debug("Fetched price history",
		zap.String("symbol", c.symbol),
		zap.Int("observations", len(observations)))

	return observations, nil
}
