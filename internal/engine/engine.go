package engine

import (
	"context"
	"fmt"
	"gridtrader/types"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine runs grid backtests against history from a MarketDataProvider.
// It holds no per-run state, so one Engine can serve concurrent runs.
type Engine struct {
	provider        MarketDataProvider
	runConfig       *RunConfig
	reportingConfig *ReportingConfig
	logger          *zap.Logger
	out             io.Writer
	now             func() time.Time
	newID           func() string
}

func NewEngine(provider MarketDataProvider, runConfig *RunConfig, reportingConfig *ReportingConfig, logger *zap.Logger) *Engine {
	return &Engine{
		provider:        provider,
		runConfig:       runConfig,
		reportingConfig: reportingConfig,
		logger:          logger,
		out:             os.Stdout,
		now:             time.Now,
		newID:           uuid.NewString,
	}
}

// Run backtests strategy over the daily candles between start and end
// inclusive. A window without candles fails with ErrDataRange; history fetch
// failures are returned as they are.
func (e *Engine) Run(ctx context.Context, strategy *types.Strategy, start, end time.Time) (*types.BacktestResult, error) {
	period, err := e.lookback(start)
	if err != nil {
		return nil, err
	}
	feed := NewDataFeed(strategy.Symbol, period, e.runConfig.interval, start, end)
	candles, err := feed.GetData(ctx, e.provider)
	if err != nil {
		return nil, err
	}
	if len(candles) == 0 {
		return nil, fmt.Errorf("%s %s to %s: %w",
			strategy.Symbol, start.Format(dateLayout), end.Format(dateLayout), ErrDataRange)
	}

	e.logger.Info("starting backtest",
		zap.String("symbol", strategy.Symbol),
		zap.String("strategy_id", strategy.ID),
		zap.Int("days", len(candles)))

	bt := newBacktester(strategy)
	if e.runConfig.showProgress {
		bar := initProgressBar(len(candles))
		bt.onDay = func() { _ = bar.Add(1) }
	}
	portfolio, err := bt.run(candles)
	if err != nil {
		return nil, err
	}

	result := &types.BacktestResult{
		ID:         e.newID(),
		StrategyID: strategy.ID,
		Strategy:   strategy.Snapshot(),
		Period: types.BacktestPeriod{
			StartDate: types.TruncateDay(start),
			EndDate:   types.TruncateDay(end),
			Days:      len(portfolio.DailyValues()),
		},
		Trades:      portfolio.Trades(),
		DailyValues: portfolio.DailyValues(),
		Metrics:     CalcMetrics(strategy.InvestmentAmount, portfolio),
		CreatedAt:   e.now().UTC(),
	}

	e.logger.Info("backtest finished",
		zap.String("symbol", strategy.Symbol),
		zap.Int("trades", result.Metrics.NumTrades),
		zap.String("final_value", result.Metrics.FinalValue.StringFixed(2)))

	if err := e.report(result); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) report(result *types.BacktestResult) error {
	if e.reportingConfig == nil {
		return nil
	}
	if e.reportingConfig.printSummary {
		printReport(e.out, result)
	}
	if path := e.reportingConfig.tradesFile; path != "" {
		err := writeCSVFile(path, func(w io.Writer) error { return writeTradesCSV(w, result.Trades) })
		if err != nil {
			return fmt.Errorf("trades report: %w", err)
		}
	}
	if path := e.reportingConfig.dailyValuesFile; path != "" {
		err := writeCSVFile(path, func(w io.Writer) error { return writeDailyValuesCSV(w, result.DailyValues) })
		if err != nil {
			return fmt.Errorf("daily values report: %w", err)
		}
	}
	return nil
}

// lookback returns the configured history period, widened to all history when
// it would start after the first day of the backtest window.
func (e *Engine) lookback(start time.Time) (types.Period, error) {
	period := e.runConfig.period
	from, err := period.Start(e.now())
	if err != nil {
		return "", err
	}
	if from.After(types.TruncateDay(start)) {
		e.logger.Warn("history period starts after the backtest window, fetching all history",
			zap.String("period", string(period)),
			zap.String("period_start", from.Format(dateLayout)),
			zap.String("window_start", start.Format(dateLayout)))
		return types.Max, nil
	}
	return period, nil
}
