package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/ma-backtest-service/internal/service"
)

// defaultStatusWindow matches the dashboard's default MA window
const defaultStatusWindow = 13

// MarketDataHandler handles price history HTTP requests
type MarketDataHandler struct {
	marketDataService *service.MarketDataService
	backtestService   *service.BacktestService
	logger            *zap.Logger
}

// NewMarketDataHandler creates a new market data handler
func NewMarketDataHandler(
	marketDataService *service.MarketDataService,
	backtestService *service.BacktestService,
	logger *zap.Logger,
) *MarketDataHandler {
	return &MarketDataHandler{
		marketDataService: marketDataService,
		backtestService:   backtestService,
		logger:            logger,
	}
}

// GetPriceHistory handles retrieving the cached close history for a range
func (h *MarketDataHandler) GetPriceHistory(c *gin.Context) {
	startDate, ok := parseDateQuery(c, "startDate")
	if !ok {
		return
	}
	endDate, ok := parseDateQuery(c, "endDate")
	if !ok {
		return
	}

	series, err := h.marketDataService.GetPriceSeries(c.Request.Context(), startDate, endDate)
	if err != nil {
		h.logger.Error("Failed to get price history", zap.Error(err))
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	first, last, err := series.Period()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     series.Len(),
		"startDate": first.Format("2006-01-02"),
		"endDate":   last.Format("2006-01-02"),
		"data":      series.Observations(),
	})
}

// GetMarketStatus handles reporting the latest signal state
func (h *MarketDataHandler) GetMarketStatus(c *gin.Context) {
	maWindow, err := strconv.Atoi(c.DefaultQuery("maDays", strconv.Itoa(defaultStatusWindow)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maDays parameter"})
		return
	}

	status, err := h.backtestService.MarketStatus(c.Request.Context(), maWindow)
	if err != nil {
		h.logger.Error("Failed to get market status",
			zap.Error(err),
			zap.Int("ma_window", maWindow))
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, status)
}

// parseDateQuery reads an optional YYYY-MM-DD query parameter. It writes
// the error response itself and reports success via the second value.
func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}

	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter, expected YYYY-MM-DD"})
		return nil, false
	}
	return &parsed, true
}
