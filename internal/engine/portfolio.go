package engine

import (
	"gridtrader/types"
	"time"

	"github.com/shopspring/decimal"
)

// costPrecision trims division noise off buy costs (allocation/price*price)
// so a cell allocation always fits into the cash it left behind.
const costPrecision = 10

// Portfolio is the mutable state of a single backtest run. It is never shared
// between runs.
type Portfolio struct {
	cash        decimal.Decimal
	shares      decimal.Decimal
	trades      []types.Trade
	dailyValues []types.DailySnapshot
}

func newPortfolio(initialCash decimal.Decimal) *Portfolio {
	return &Portfolio{
		cash:   initialCash,
		shares: decimal.Zero,
	}
}

func (p *Portfolio) Cash() decimal.Decimal { return p.cash }

func (p *Portfolio) Shares() decimal.Decimal { return p.shares }

func (p *Portfolio) Trades() []types.Trade { return p.trades }

func (p *Portfolio) DailyValues() []types.DailySnapshot { return p.dailyValues }

func (p *Portfolio) value(close decimal.Decimal) decimal.Decimal {
	return p.cash.Add(p.shares.Mul(close))
}

// sell sells up to qty shares at price. It never sells more than is held and
// reports whether a trade happened.
func (p *Portfolio) sell(date time.Time, gridLevel int, price, qty decimal.Decimal) bool {
	qty = decimal.Min(qty, p.shares)
	if !qty.IsPositive() {
		return false
	}
	amount := qty.Mul(price)
	p.cash = p.cash.Add(amount)
	p.shares = p.shares.Sub(qty)
	p.trades = append(p.trades, types.Trade{
		Date:      date,
		Side:      types.SideTypeSell,
		Price:     price,
		Shares:    qty,
		Amount:    amount,
		GridLevel: gridLevel,
	})
	return true
}

// buy buys qty shares at price when the cash covers the cost.
func (p *Portfolio) buy(date time.Time, gridLevel int, price, qty decimal.Decimal) bool {
	cost := qty.Mul(price).Round(costPrecision)
	if cost.GreaterThan(p.cash) {
		return false
	}
	p.cash = p.cash.Sub(cost)
	p.shares = p.shares.Add(qty)
	p.trades = append(p.trades, types.Trade{
		Date:      date,
		Side:      types.SideTypeBuy,
		Price:     price,
		Shares:    qty,
		Amount:    cost,
		GridLevel: gridLevel,
	})
	return true
}

func (p *Portfolio) snapshot(date time.Time, close decimal.Decimal) {
	p.dailyValues = append(p.dailyValues, types.DailySnapshot{
		Date:   date,
		Close:  close,
		Cash:   p.cash,
		Shares: p.shares,
		Value:  p.value(close),
	})
}
