package marketdata

import (
	"context"
	"fmt"
	"gridtrader/internal/engine"
	"gridtrader/types"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var _ engine.MarketDataProvider = (*AlpacaProvider)(nil)

var intervalToTimeFrame = map[types.Interval]marketdata.TimeFrame{
	types.Day:   marketdata.OneDay,
	types.Week:  marketdata.NewTimeFrame(1, marketdata.Week),
	types.Month: marketdata.NewTimeFrame(1, marketdata.Month),
}

// barsClient is the subset of *marketdata.Client the provider calls.
type barsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
	GetLatestTrade(symbol string, req marketdata.GetLatestTradeRequest) (*marketdata.Trade, error)
}

type AlpacaConfig struct {
	APIKey     string
	APISecret  string
	BaseURL    string
	Feed       string
	MaxRetries uint64
}

// AlpacaProvider serves history and latest prices from the Alpaca market
// data API. Failed requests are retried with exponential backoff.
type AlpacaProvider struct {
	client     barsClient
	feed       marketdata.Feed
	maxRetries uint64
	logger     *zap.Logger
	now        func() time.Time
	newBackOff func() backoff.BackOff
}

func NewAlpacaProvider(cfg AlpacaConfig, logger *zap.Logger) *AlpacaProvider {
	opts := marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
	}
	if cfg.BaseURL != "" {
		opts.BaseURL = cfg.BaseURL
	}
	return newAlpacaProvider(marketdata.NewClient(opts), cfg, logger)
}

func newAlpacaProvider(client barsClient, cfg AlpacaConfig, logger *zap.Logger) *AlpacaProvider {
	return &AlpacaProvider{
		client:     client,
		feed:       marketdata.Feed(cfg.Feed),
		maxRetries: cfg.MaxRetries,
		logger:     logger,
		now:        time.Now,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

func (p *AlpacaProvider) GetHistory(ctx context.Context, symbol string, period types.Period, interval types.Interval) ([]types.Candle, error) {
	timeFrame, ok := intervalToTimeFrame[interval]
	if !ok {
		return nil, fmt.Errorf("interval %q not supported", string(interval))
	}
	now := p.now()
	start, err := period.Start(now)
	if err != nil {
		return nil, err
	}
	ticker := types.NormalizeTicker(symbol)

	var bars []marketdata.Bar
	err = p.retry(ctx, "get bars", ticker, func() error {
		var err error
		bars, err = p.client.GetBars(ticker, marketdata.GetBarsRequest{
			TimeFrame:  timeFrame,
			Adjustment: marketdata.All,
			Start:      start,
			End:        now,
			Feed:       p.feed,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s bars: %w", engine.ErrMarketData, ticker, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s", engine.ErrMarketData, ticker)
	}

	candles := make([]types.Candle, 0, len(bars))
	for _, bar := range bars {
		candles = append(candles, types.Candle{
			Ticker:    ticker,
			Open:      decimal.NewFromFloat(bar.Open),
			High:      decimal.NewFromFloat(bar.High),
			Low:       decimal.NewFromFloat(bar.Low),
			Close:     decimal.NewFromFloat(bar.Close),
			Volume:    decimal.NewFromInt(int64(bar.Volume)),
			Interval:  interval,
			Timestamp: types.TruncateDay(bar.Timestamp),
		})
	}
	return candles, nil
}

func (p *AlpacaProvider) GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	ticker := types.NormalizeTicker(symbol)

	var trade *marketdata.Trade
	err := p.retry(ctx, "get latest trade", ticker, func() error {
		var err error
		trade, err = p.client.GetLatestTrade(ticker, marketdata.GetLatestTradeRequest{Feed: p.feed})
		return err
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s latest trade: %w", engine.ErrMarketData, ticker, err)
	}
	if trade == nil || trade.Price <= 0 {
		return decimal.Zero, fmt.Errorf("%w: no trade for %s", engine.ErrMarketData, ticker)
	}
	return decimal.NewFromFloat(trade.Price), nil
}

func (p *AlpacaProvider) retry(ctx context.Context, op, ticker string, fn func() error) error {
	policy := backoff.WithContext(backoff.WithMaxRetries(p.newBackOff(), p.maxRetries), ctx)
	return backoff.RetryNotify(fn, policy, func(err error, wait time.Duration) {
		p.logger.Warn("alpaca request failed, retrying",
			zap.String("op", op),
			zap.String("symbol", ticker),
			zap.Duration("wait", wait),
			zap.Error(err))
	})
}
