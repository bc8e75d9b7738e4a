package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is one simulated fill at a grid level.
type Trade struct {
	Date      time.Time       `json:"date"`
	Side      Side            `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Shares    decimal.Decimal `json:"shares"`
	Amount    decimal.Decimal `json:"amount"`
	GridLevel int             `json:"grid_level"`
}

// DailySnapshot is the end-of-day valuation of a backtest portfolio.
type DailySnapshot struct {
	Date   time.Time       `json:"date"`
	Close  decimal.Decimal `json:"close"`
	Cash   decimal.Decimal `json:"cash"`
	Shares decimal.Decimal `json:"shares"`
	Value  decimal.Decimal `json:"value"`
}
