package grid

import (
	"gridtrader/types"

	"github.com/shopspring/decimal"
)

// CalculateInitialPosition splits the investment into cash and stock according
// to the cell the price currently sits in. Every cell below the price is
// considered already bought. levels must hold at least two entries.
func CalculateInitialPosition(price decimal.Decimal, levels []decimal.Decimal, investment decimal.Decimal) types.InitialPosition {
	cell, ok := findCell(price, levels)
	if !ok {
		// Outside the grid: clamp to the nearest cell.
		if price.LessThan(levels[0]) {
			cell = 0
		} else {
			cell = len(levels) - 2
		}
	}

	allocation := cellAllocation(investment, levels)
	stock := allocation.Mul(decimal.NewFromInt(int64(cell)))
	cash := investment.Sub(stock)

	shares := decimal.Zero
	if cell > 0 {
		avgBuyPrice := decimal.Avg(levels[0], levels[1:cell]...)
		shares = stock.Div(avgBuyPrice).Round(pricePrecision)
	}

	return types.InitialPosition{
		CurrentGrid:     cell,
		CashAllocation:  cash.Round(pricePrecision),
		StockAllocation: stock.Round(pricePrecision),
		Shares:          shares,
	}
}
