package engine

import (
	"errors"
	"gridtrader/types"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
)

var ErrDataRange = errors.New("no data available for the specified date range")

type backtester struct {
	levels     []decimal.Decimal
	allocation decimal.Decimal
	portfolio  *Portfolio
	onDay      func()
}

func newBacktester(strategy *types.Strategy) *backtester {
	return &backtester{
		levels:     strategy.GridLevels,
		allocation: strategy.GridAllocation(),
		portfolio:  newPortfolio(strategy.InvestmentAmount),
	}
}

// dayStep is one stage of a simulated trading day.
type dayStep func(b *backtester, candle types.Candle)

// daySteps is the order every simulated day runs in. All sells are evaluated
// before any buy and both passes share the same cash and shares, so this order
// decides which trades execute when several levels are touched on one day.
var daySteps = [...]dayStep{
	(*backtester).sellPass,
	(*backtester).buyPass,
	(*backtester).closeDay,
}

// Simulate replays the strategy over candles, which must already be limited to
// the backtest window and sorted by time. Only the low and high of a candle are
// known, so every level inside [low, high] counts as touched exactly once.
func Simulate(strategy *types.Strategy, candles []types.Candle) (*Portfolio, error) {
	return newBacktester(strategy).run(candles)
}

func (b *backtester) run(candles []types.Candle) (*Portfolio, error) {
	if len(candles) == 0 {
		return nil, ErrDataRange
	}
	for _, candle := range candles {
		for _, step := range daySteps {
			step(b, candle)
		}
		if b.onDay != nil {
			b.onDay()
		}
	}
	return b.portfolio, nil
}

// sellPass walks the levels upwards. A touched level i sells the shares one
// cell's allocation bought at level i-1, or whatever is left.
func (b *backtester) sellPass(candle types.Candle) {
	date := candle.Date()
	for i := 1; i < len(b.levels); i++ {
		if !candle.Touches(b.levels[i]) {
			continue
		}
		b.portfolio.sell(date, i, b.levels[i], b.allocation.Div(b.levels[i-1]))
	}
}

// buyPass walks the cells downwards and buys one allocation at every touched
// buy price the remaining cash can pay for.
func (b *backtester) buyPass(candle types.Candle) {
	date := candle.Date()
	for i := len(b.levels) - 1; i >= 1; i-- {
		price := b.levels[i-1]
		if !candle.Touches(price) {
			continue
		}
		b.portfolio.buy(date, i-1, price, b.allocation.Div(price))
	}
}

func (b *backtester) closeDay(candle types.Candle) {
	b.portfolio.snapshot(candle.Date(), candle.Close)
}

func initProgressBar(maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Backtesting in progress..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
