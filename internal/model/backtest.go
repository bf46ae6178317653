package model

import (
	"time"
)

// Trade represents a single closed trade in the ledger. Trades are
// append-only and never mutated after the simulator's cursor passes their
// exit date.
type Trade struct {
	ID           int       `json:"id"`
	EntryDate    time.Time `json:"entryDate"`
	ExitDate     time.Time `json:"exitDate"`
	Direction    string    `json:"direction"` // "long" or "short"
	Contracts    int       `json:"contracts"`
	EntryPrice   float64   `json:"entryPrice"`
	ExitPrice    float64   `json:"exitPrice"`
	HoldDays     int       `json:"holdDays"`
	Fee          float64   `json:"fee"`
	PnL          float64   `json:"pnl"`
	ReturnRate   float64   `json:"returnRate"` // pnl / equity at entry, in percent
	CapitalAfter float64   `json:"capitalAfter"`
	EntryReason  string    `json:"entryReason"`
	ExitReason   string    `json:"exitReason"`
}

// EquityPoint is one mark-to-market sample of the equity curve
type EquityPoint struct {
	Date        time.Time `json:"date"`
	Equity      float64   `json:"equity"`
	PeakEquity  float64   `json:"peakEquity"`
	DrawdownPct float64   `json:"drawdownPct"`
}

// BacktestSummary holds the headline metrics of a completed run
type BacktestSummary struct {
	Period         DateRange `json:"period"`
	FinalAssets    float64   `json:"finalAssets"`
	TotalReturnPct float64   `json:"totalReturn"`
	MaxDrawdownPct float64   `json:"maxDrawdown"`
	WinRatePct     float64   `json:"winRate"`
	TradeCount     int       `json:"tradeCount"`
}

// BacktestResult is the full output of one simulation run, derived entirely
// from the trade ledger and equity curve.
type BacktestResult struct {
	Summary     BacktestSummary `json:"summary"`
	Trades      []Trade         `json:"trades"`
	EquityCurve []EquityPoint   `json:"equityCurve"`

	// IndexHistory carries the close price at each equity curve date, for
	// plotting the instrument against the equity curve on a shared axis
	IndexHistory []float64 `json:"indexHistory"`
}

// BacktestRequest represents the input parameters for a backtest
type BacktestRequest struct {
	StartDate *time.Time     `json:"startDate,omitempty"`
	EndDate   *time.Time     `json:"endDate,omitempty"`
	Config    StrategyConfig `json:"config" binding:"required"`
}

// OptimizeRequest represents the input parameters for an MA grid search.
// The base config's maWindow is ignored; each candidate window in the
// inclusive [minMA, maxMA] range is simulated independently.
type OptimizeRequest struct {
	StartDate *time.Time     `json:"startDate,omitempty"`
	EndDate   *time.Time     `json:"endDate,omitempty"`
	MinMA     int            `json:"minMA" binding:"required"`
	MaxMA     int            `json:"maxMA" binding:"required"`
	Config    StrategyConfig `json:"config" binding:"required"`
}

// OptimizeCandidate is one ranked result of the MA grid search
type OptimizeCandidate struct {
	Rank        int     `json:"rank"`
	MA          int     `json:"ma"`
	TotalReturn float64 `json:"totalReturn"`
	AvgReturn   float64 `json:"avgReturn"`
	MaxDrawdown float64 `json:"maxDrawdown"`
	WinRate     float64 `json:"winRate"`
	TradeCount  int     `json:"tradeCount"`
}

// OptimizeResult holds the ranked grid search output
type OptimizeResult struct {
	Top3 []OptimizeCandidate `json:"top3"`
	All  []OptimizeCandidate `json:"allResults"`
}

// MarketStatus describes the latest price relative to its moving average
type MarketStatus struct {
	LatestDate  time.Time     `json:"latestDate"`
	LatestPrice float64       `json:"latestPrice"`
	MAValue     float64       `json:"maValue"`
	PriceDiff   float64       `json:"priceDiff"`
	Signal      string        `json:"signal"` // "long" or "short"
	Recent      []DatedSignal `json:"recent"`
}

// DatedSignal is one historical signal sample
type DatedSignal struct {
	Date   time.Time `json:"date"`
	Signal int       `json:"signal"`
}
