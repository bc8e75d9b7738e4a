package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// StrategyParams are the user supplied inputs of a grid strategy.
type StrategyParams struct {
	Symbol           string          `json:"symbol"`
	UpperPrice       decimal.Decimal `json:"upper_price"`
	LowerPrice       decimal.Decimal `json:"lower_price"`
	NumGrids         int             `json:"num_grids"`
	InvestmentAmount decimal.Decimal `json:"investment_amount"`
}

// GridCell is the interval between two adjacent grid levels.
type GridCell struct {
	Level           int             `json:"level"`
	BuyPrice        decimal.Decimal `json:"buy_price"`
	SellPrice       decimal.Decimal `json:"sell_price"`
	Shares          decimal.Decimal `json:"shares"`
	Allocation      decimal.Decimal `json:"allocation"`
	ProfitPotential decimal.Decimal `json:"profit_potential"`
}

type InitialPosition struct {
	CurrentGrid     int             `json:"current_grid"`
	CashAllocation  decimal.Decimal `json:"cash_allocation"`
	StockAllocation decimal.Decimal `json:"stock_allocation"`
	Shares          decimal.Decimal `json:"shares"`
}

// Strategy is built once and never mutated afterwards.
type Strategy struct {
	ID               string            `json:"id"`
	Symbol           string            `json:"symbol"`
	UpperPrice       decimal.Decimal   `json:"upper_price"`
	LowerPrice       decimal.Decimal   `json:"lower_price"`
	NumGrids         int               `json:"num_grids"`
	InvestmentAmount decimal.Decimal   `json:"investment_amount"`
	GridLevels       []decimal.Decimal `json:"grid_levels"`
	Grids            []GridCell        `json:"grids"`
	InitialPosition  InitialPosition   `json:"initial_position"`
	CurrentGrid      int               `json:"current_grid"`
	CreatedAt        time.Time         `json:"created_at"`
}

// GridAllocation is the capital assigned to every cell.
func (s *Strategy) GridAllocation() decimal.Decimal {
	return s.InvestmentAmount.Div(decimal.NewFromInt(int64(len(s.GridLevels) - 1)))
}

// Snapshot returns the strategy fields recorded on a backtest result.
func (s *Strategy) Snapshot() StrategySnapshot {
	levels := make([]decimal.Decimal, len(s.GridLevels))
	copy(levels, s.GridLevels)
	return StrategySnapshot{
		Symbol:           s.Symbol,
		UpperPrice:       s.UpperPrice,
		LowerPrice:       s.LowerPrice,
		NumGrids:         s.NumGrids,
		InvestmentAmount: s.InvestmentAmount,
		GridLevels:       levels,
	}
}
