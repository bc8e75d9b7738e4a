package grid

import (
	"context"
	"fmt"
	"gridtrader/types"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PriceSource resolves the latest traded price of a symbol.
type PriceSource interface {
	GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// Builder turns strategy parameters into a fully populated Strategy.
type Builder struct {
	prices PriceSource
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func NewBuilder(prices PriceSource, logger *zap.Logger) *Builder {
	return &Builder{
		prices: prices,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Build computes the grid, its cells and the initial position. A failed price
// lookup is not an error: the midpoint of the grid is used instead.
func (b *Builder) Build(ctx context.Context, params types.StrategyParams) (*types.Strategy, error) {
	if !params.InvestmentAmount.IsPositive() {
		return nil, fmt.Errorf("got %s: %w", params.InvestmentAmount, ErrInvalidInvestment)
	}
	levels, err := CalculateLevels(params.LowerPrice, params.UpperPrice, params.NumGrids)
	if err != nil {
		return nil, err
	}

	symbol := types.NormalizeTicker(params.Symbol)
	price := b.currentPrice(ctx, symbol, params)
	position := CalculateInitialPosition(price, levels, params.InvestmentAmount)

	return &types.Strategy{
		ID:               b.newID(),
		Symbol:           symbol,
		UpperPrice:       params.UpperPrice,
		LowerPrice:       params.LowerPrice,
		NumGrids:         params.NumGrids,
		InvestmentAmount: params.InvestmentAmount,
		GridLevels:       levels,
		Grids:            buildCells(levels, params.InvestmentAmount),
		InitialPosition:  position,
		CurrentGrid:      position.CurrentGrid,
		CreatedAt:        b.now().UTC(),
	}, nil
}

func (b *Builder) currentPrice(ctx context.Context, symbol string, params types.StrategyParams) decimal.Decimal {
	midpoint := params.UpperPrice.Add(params.LowerPrice).Div(decimal.NewFromInt(2))
	if b.prices == nil {
		return midpoint
	}
	price, err := b.prices.GetCurrentPrice(ctx, symbol)
	if err != nil {
		b.logger.Warn("current price lookup failed, using grid midpoint",
			zap.String("symbol", symbol),
			zap.String("midpoint", midpoint.String()),
			zap.Error(err))
		return midpoint
	}
	return price
}

func buildCells(levels []decimal.Decimal, investment decimal.Decimal) []types.GridCell {
	allocation := cellAllocation(investment, levels)
	cells := make([]types.GridCell, 0, len(levels)-1)
	for i := 0; i < len(levels)-1; i++ {
		buy, sell := levels[i], levels[i+1]
		shares := allocation.Div(buy).Round(pricePrecision)
		cells = append(cells, types.GridCell{
			Level:           i,
			BuyPrice:        buy,
			SellPrice:       sell,
			Shares:          shares,
			Allocation:      allocation.Round(pricePrecision),
			ProfitPotential: sell.Sub(buy).Mul(shares).Round(pricePrecision),
		})
	}
	return cells
}
