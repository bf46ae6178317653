package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourorg/ma-backtest-service/internal/engine"
	"github.com/yourorg/ma-backtest-service/internal/model"
	"github.com/yourorg/ma-backtest-service/internal/service"
)

// BacktestHandler handles backtest HTTP requests
type BacktestHandler struct {
	backtestService *service.BacktestService
	logger          *zap.Logger
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(backtestService *service.BacktestService, logger *zap.Logger) *BacktestHandler {
	return &BacktestHandler{
		backtestService: backtestService,
		logger:          logger,
	}
}

// RunBacktest handles running a backtest over the cached price history
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var request model.BacktestRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.backtestService.RunBacktest(c.Request.Context(), &request)
	if err != nil {
		h.logger.Error("Failed to run backtest",
			zap.Error(err),
			zap.Int("ma_window", request.Config.MAWindow))
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// OptimizeMA handles the MA window grid search
func (h *BacktestHandler) OptimizeMA(c *gin.Context) {
	var request model.OptimizeRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.backtestService.OptimizeMA(c.Request.Context(), &request)
	if err != nil {
		h.logger.Error("Failed to optimize MA window",
			zap.Error(err),
			zap.Int("min_ma", request.MinMA),
			zap.Int("max_ma", request.MaxMA))
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// statusFromError maps core errors onto HTTP status codes
func statusFromError(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidConfig),
		errors.Is(err, engine.ErrInsufficientData),
		errors.Is(err, engine.ErrInsufficientRange):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
