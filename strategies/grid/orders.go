package grid

import (
	"gridtrader/types"

	"github.com/shopspring/decimal"
)

// GenerateOrders compares the cell the price sits in now with the strategy's
// stored cell and returns the single order that transition implies. Moving up
// sells at the new level, moving down buys at it. Prices outside the grid and
// unchanged cells produce no order.
func GenerateOrders(strategy *types.Strategy, price decimal.Decimal) []types.Order {
	levels := strategy.GridLevels
	cell, ok := findCell(price, levels)
	if !ok {
		return nil
	}

	prev := strategy.CurrentGrid
	switch {
	case cell > prev:
		return []types.Order{
			types.NewOrder(types.SideTypeSell, levels[cell], cell, strategy.Grids[cell-1].Shares),
		}
	case cell < prev:
		return []types.Order{
			types.NewOrder(types.SideTypeBuy, levels[cell], cell, strategy.Grids[cell].Shares),
		}
	}
	return nil
}
