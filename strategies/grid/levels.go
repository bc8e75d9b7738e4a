package grid

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidRange      = errors.New("upper price must be greater than lower price")
	ErrInvalidGridCount  = errors.New("number of grids must be at least 2")
	ErrInvalidInvestment = errors.New("investment amount must be positive")
)

// pricePrecision is the number of decimal places grid prices and money are rounded to.
const pricePrecision = 2

// CalculateLevels returns count evenly spaced price levels spanning [lower, upper]
// inclusive, rounded to cents.
func CalculateLevels(lower, upper decimal.Decimal, count int) ([]decimal.Decimal, error) {
	if upper.LessThanOrEqual(lower) {
		return nil, fmt.Errorf("lower %s upper %s: %w", lower, upper, ErrInvalidRange)
	}
	if !lower.IsPositive() {
		return nil, fmt.Errorf("lower price %s must be positive: %w", lower, ErrInvalidRange)
	}
	if count < 2 {
		return nil, fmt.Errorf("got %d: %w", count, ErrInvalidGridCount)
	}

	span := upper.Sub(lower)
	steps := decimal.NewFromInt(int64(count - 1))
	levels := make([]decimal.Decimal, count)
	for i := 0; i < count-1; i++ {
		offset := span.Mul(decimal.NewFromInt(int64(i))).Div(steps)
		levels[i] = lower.Add(offset).Round(pricePrecision)
	}
	levels[count-1] = upper.Round(pricePrecision)

	// Cent rounding collapses levels when the spacing is finer than one cent.
	for i := 1; i < count; i++ {
		if !levels[i].GreaterThan(levels[i-1]) {
			return nil, fmt.Errorf("%d grids between %s and %s are closer than one cent: %w",
				count, lower, upper, ErrInvalidGridCount)
		}
	}
	return levels, nil
}

// findCell returns the first cell i with levels[i] <= price <= levels[i+1].
func findCell(price decimal.Decimal, levels []decimal.Decimal) (int, bool) {
	for i := 0; i < len(levels)-1; i++ {
		if levels[i].LessThanOrEqual(price) && price.LessThanOrEqual(levels[i+1]) {
			return i, true
		}
	}
	return 0, false
}

// cellAllocation splits the investment evenly over the cells formed by levels.
func cellAllocation(investment decimal.Decimal, levels []decimal.Decimal) decimal.Decimal {
	return investment.Div(decimal.NewFromInt(int64(len(levels) - 1)))
}
