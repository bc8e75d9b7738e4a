package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type StrategySnapshot struct {
	Symbol           string            `json:"symbol"`
	UpperPrice       decimal.Decimal   `json:"upper_price"`
	LowerPrice       decimal.Decimal   `json:"lower_price"`
	NumGrids         int               `json:"num_grids"`
	InvestmentAmount decimal.Decimal   `json:"investment_amount"`
	GridLevels       []decimal.Decimal `json:"grid_levels"`
}

type BacktestPeriod struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Days      int       `json:"days"`
}

type Metrics struct {
	InitialValue        decimal.Decimal `json:"initial_value"`
	FinalValue          decimal.Decimal `json:"final_value"`
	TotalReturn         decimal.Decimal `json:"total_return"`
	TotalReturnPct      decimal.Decimal `json:"total_return_pct"`
	AnnualizedReturn    decimal.Decimal `json:"annualized_return"`
	AnnualizedReturnPct decimal.Decimal `json:"annualized_return_pct"`
	MaxDrawdown         decimal.Decimal `json:"max_drawdown"`
	MaxDrawdownPct      decimal.Decimal `json:"max_drawdown_pct"`
	SharpeRatio         decimal.Decimal `json:"sharpe_ratio"`
	NumTrades           int             `json:"num_trades"`
	BuyTrades           int             `json:"buy_trades"`
	SellTrades          int             `json:"sell_trades"`
	TradeProfit         decimal.Decimal `json:"trade_profit"`
}

// BacktestResult is the outcome of one backtest run.
// Period.Days always equals len(DailyValues).
type BacktestResult struct {
	ID          string           `json:"id"`
	StrategyID  string           `json:"strategy_id"`
	Strategy    StrategySnapshot `json:"strategy"`
	Period      BacktestPeriod   `json:"backtest_period"`
	Trades      []Trade          `json:"trades"`
	DailyValues []DailySnapshot  `json:"daily_values"`
	Metrics     Metrics          `json:"metrics"`
	CreatedAt   time.Time        `json:"created_at"`
}
