package engine

import (
	"context"
	"math"
	"time"

	"github.com/yourorg/ma-backtest-service/internal/model"
)

// Entry and exit reasons recorded on the trade ledger
const (
	EntryReasonAboveMA  = "MA crossover: price above MA"
	EntryReasonBelowMA  = "MA crossover: price below MA"
	ExitReasonReversal  = "MA crossover reversal"
	ExitReasonPeriodEnd = "period end"
)

// tradingDaysPerYear converts the annualized backwardation rate into a
// daily accrual
const tradingDaysPerYear = 252

// position is the simulator's single open position. grossPnL accumulates
// the daily mark-to-market increments, which telescopes to
// (exit - entry) x pointValue x contracts while the size is unchanged and
// stays exact across mid-trade resizes.
type position struct {
	direction   Direction
	entryDate   time.Time
	entryPrice  float64
	contracts   int
	entryEquity float64
	grossPnL    float64
	fees        float64
	entryReason string
}

// simulator walks the price series one trading day at a time. Equity is
// marked to market daily against the open position, so the curve reflects
// intraperiod drawdown, not only trade boundaries.
type simulator struct {
	series *model.PriceSeries
	cfg    *model.StrategyConfig
	ma     []float64

	equity float64
	peak   float64
	pos    *position

	trades []model.Trade
	curve  []model.EquityPoint
	index  []float64
}

// Run simulates the strategy over the series. The run is deterministic:
// identical inputs produce an identical ledger and equity curve. The
// context is checked between trading-day steps, each of which leaves the
// simulator in a consistent state.
func Run(ctx context.Context, series *model.PriceSeries, cfg *model.StrategyConfig) (*model.BacktestResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	ma, start, err := MovingAverage(series, cfg.MAWindow)
	if err != nil {
		return nil, err
	}

	sim := &simulator{
		series: series,
		cfg:    cfg,
		ma:     ma,
		equity: cfg.InitialCapital,
		peak:   cfg.InitialCapital,
	}
	return sim.run(ctx, start)
}

func (s *simulator) run(ctx context.Context, start int) (*model.BacktestResult, error) {
	s.record(start)
	lastMonth := s.series.Date(start).Month()

	for i := start + 1; i < s.series.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		date := s.series.Date(i)
		close := s.series.Close(i)

		// Monthly contribution lands before any sizing decision that day
		if s.cfg.MonthlyContribution > 0 && date.Month() != lastMonth {
			s.equity += s.cfg.MonthlyContribution
		}
		lastMonth = date.Month()

		s.markToMarket(i)

		// Rebalance boundary: trading days since account start, not since
		// the last trade
		if s.cfg.Rebalance.Enabled && s.pos != nil {
			if (i-start)%s.cfg.Rebalance.PeriodDays == 0 {
				s.resize(close)
			}
		}

		s.step(SignalAt(close, s.ma[i]), i)

		s.record(i)
	}

	// Force-close whatever is still open at the last available close
	last := s.series.Len() - 1
	if s.pos != nil {
		s.closePosition(last, ExitReasonPeriodEnd)
		s.amendLastPoint()
	}

	first, end, _ := s.series.Period()
	result := &model.BacktestResult{
		Summary:      Summarize(s.cfg.InitialCapital, s.trades, s.curve, model.DateRange{Start: first, End: end}),
		Trades:       s.trades,
		EquityCurve:  s.curve,
		IndexHistory: s.index,
	}
	if result.Trades == nil {
		result.Trades = []model.Trade{}
	}
	return result, nil
}

// step applies the day's raw signal to the position state machine
func (s *simulator) step(raw Direction, i int) {
	sig := FilterSignal(raw, s.cfg.TradeMode)

	if s.pos == nil {
		if sig != Flat {
			s.openPosition(sig, i)
		}
		return
	}

	// Flat equality holds the position; so does an unchanged signal
	if raw == Flat || raw == s.pos.direction {
		return
	}

	s.closePosition(i, ExitReasonReversal)
	if sig == raw {
		// Direction reversal is the only same-bar close+reopen; a
		// direction suppressed by the trade mode just exits
		s.openPosition(sig, i)
	}
}

// markToMarket applies the day's price move, and carry if configured, to
// equity and the open position's accumulated gross PnL
func (s *simulator) markToMarket(i int) {
	if s.pos == nil || s.pos.contracts == 0 {
		return
	}

	move := s.series.Close(i) - s.series.Close(i-1)
	pnl := move * float64(s.pos.direction) * float64(s.pos.contracts) * s.cfg.PointValue
	s.equity += pnl
	s.pos.grossPnL += pnl

	if s.cfg.BackwardationRate > 0 {
		notional := float64(s.pos.contracts) * s.series.Close(i) * s.cfg.PointValue
		s.equity += notional * s.cfg.BackwardationRate / 100 / tradingDaysPerYear
	}
}

func (s *simulator) openPosition(sig Direction, i int) {
	price := s.series.Close(i)
	contracts := EntrySize(s.equity, price, s.cfg)
	if contracts == 0 {
		return
	}

	reason := EntryReasonAboveMA
	if sig == Short {
		reason = EntryReasonBelowMA
	}

	entryFee := s.cfg.Fees.BuyFee * float64(contracts)
	s.equity -= entryFee

	s.pos = &position{
		direction:   sig,
		entryDate:   s.series.Date(i),
		entryPrice:  price,
		contracts:   contracts,
		entryEquity: s.equity + entryFee,
		fees:        entryFee,
		entryReason: reason,
	}
}

func (s *simulator) closePosition(i int, exitReason string) {
	pos := s.pos
	s.pos = nil

	exitFee := s.cfg.Fees.SellFee * float64(pos.contracts)
	s.equity -= exitFee
	pos.fees += exitFee

	exitDate := s.series.Date(i)
	pnl := pos.grossPnL - pos.fees

	returnRate := 0.0
	if pos.entryEquity > 0 {
		returnRate = pnl / pos.entryEquity * 100
	}

	s.trades = append(s.trades, model.Trade{
		ID:           len(s.trades) + 1,
		EntryDate:    pos.entryDate,
		ExitDate:     exitDate,
		Direction:    pos.direction.String(),
		Contracts:    pos.contracts,
		EntryPrice:   pos.entryPrice,
		ExitPrice:    s.series.Close(i),
		HoldDays:     int(exitDate.Sub(pos.entryDate).Hours() / 24),
		Fee:          pos.fees,
		PnL:          pnl,
		ReturnRate:   returnRate,
		CapitalAfter: s.equity,
		EntryReason:  pos.entryReason,
		ExitReason:   exitReason,
	})
}

// resize adjusts the open position's contract count to current equity and
// leverage. Only the size changes; no trade record is produced.
func (s *simulator) resize(price float64) {
	target := RebalanceSize(s.equity, price, s.cfg)
	diff := target - s.pos.contracts
	if diff == 0 {
		return
	}

	fee := math.Abs(float64(diff)) * (s.cfg.Fees.BuyFee + s.cfg.Fees.SellFee)
	s.equity -= fee
	s.pos.fees += fee
	s.pos.contracts = target
}

func (s *simulator) record(i int) {
	if s.equity > s.peak {
		s.peak = s.equity
	}
	drawdown := 0.0
	if s.peak > 0 {
		drawdown = (s.peak - s.equity) / s.peak * 100
	}
	s.curve = append(s.curve, model.EquityPoint{
		Date:        s.series.Date(i),
		Equity:      s.equity,
		PeakEquity:  s.peak,
		DrawdownPct: drawdown,
	})
	s.index = append(s.index, s.series.Close(i))
}

// amendLastPoint refreshes the final curve sample after the period-end
// forced close charged its exit fee
func (s *simulator) amendLastPoint() {
	last := len(s.curve) - 1
	if last < 0 {
		return
	}
	if s.equity > s.peak {
		s.peak = s.equity
	}
	drawdown := 0.0
	if s.peak > 0 {
		drawdown = (s.peak - s.equity) / s.peak * 100
	}
	s.curve[last].Equity = s.equity
	s.curve[last].PeakEquity = s.peak
	s.curve[last].DrawdownPct = drawdown
}
