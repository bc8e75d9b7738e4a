package types

import (
	"github.com/shopspring/decimal"
)

// Order is a single grid order implied by the price moving between cells.
type Order struct {
	Side      Side            `json:"type"`
	Price     decimal.Decimal `json:"price"`
	GridLevel int             `json:"grid_level"`
	Shares    decimal.Decimal `json:"shares"`
}

func NewOrder(side Side, price decimal.Decimal, gridLevel int, shares decimal.Decimal) Order {
	return Order{
		Side:      side,
		Price:     price,
		GridLevel: gridLevel,
		Shares:    shares,
	}
}
