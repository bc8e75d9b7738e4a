package engine

import (
	"context"
	"errors"
	"gridtrader/types"

	"github.com/shopspring/decimal"
)

// ErrMarketData marks failures of an external market data provider.
var ErrMarketData = errors.New("market data unavailable")

// MarketDataProvider supplies price bars and quotes. Implementations wrap
// their failures with ErrMarketData.
type MarketDataProvider interface {
	GetHistory(ctx context.Context, symbol string, period types.Period, interval types.Interval) ([]types.Candle, error)
	GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}
