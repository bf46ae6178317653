package model

// TradeMode controls which signal directions may open positions
type TradeMode string

const (
	TradeModeLongOnly  TradeMode = "long-only"
	TradeModeShortOnly TradeMode = "short-only"
	TradeModeBoth      TradeMode = "both"
)

// LeverageKind identifies the leverage mode. Exactly one mode applies to a
// strategy; fixed and dynamic differ only in whether periodic rebalancing
// resizes the open position.
type LeverageKind string

const (
	LeverageNone    LeverageKind = "none"
	LeverageFixed   LeverageKind = "fixed"
	LeverageDynamic LeverageKind = "dynamic"
)

// Leverage is the tagged leverage variant of a strategy configuration
type Leverage struct {
	Mode       LeverageKind `json:"mode"`
	Multiplier float64      `json:"multiplier,omitempty"`
}

// EffectiveMultiplier returns the sizing multiplier for the mode. An
// unset mode sizes at 1x, the same as LeverageNone.
func (l Leverage) EffectiveMultiplier() float64 {
	if l.Mode == LeverageNone || l.Mode == "" {
		return 1
	}
	return l.Multiplier
}

// Rebalance controls periodic resizing of an open position against current
// equity, on a fixed trading-day period independent of trade boundaries.
type Rebalance struct {
	Enabled    bool `json:"enabled"`
	PeriodDays int  `json:"periodDays,omitempty"`
}

// FeeSchedule holds per-contract, per-side fees
type FeeSchedule struct {
	BuyFee  float64 `json:"buyFee"`
	SellFee float64 `json:"sellFee"`
}

// StrategyConfig holds all parameters of a single backtest run. It is
// validated once at the API boundary and read-only afterwards.
type StrategyConfig struct {
	MAWindow            int         `json:"maWindow"`
	TradeMode           TradeMode   `json:"tradeMode"`
	InitialCapital      float64     `json:"initialCapital"`
	MonthlyContribution float64     `json:"monthlyContribution"`
	Leverage            Leverage    `json:"leverage"`
	Rebalance           Rebalance   `json:"rebalance"`
	PointValue          float64     `json:"pointValue"`
	Fees                FeeSchedule `json:"fees"`

	// FixedContracts > 0 sizes every entry at a constant contract count,
	// bypassing equity-based sizing
	FixedContracts int `json:"fixedContracts,omitempty"`

	// BackwardationRate is an annualized carry rate in percent, accrued
	// daily against open position notional. Zero disables it.
	BackwardationRate float64 `json:"backwardationRate,omitempty"`
}
