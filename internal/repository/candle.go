package repository

import (
	"context"
	"errors"
	"fmt"
	"gridtrader/internal/engine"
	"gridtrader/types"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var bucketToInterval = map[types.Interval]string{
	types.Day:   "1 day",
	types.Week:  "1 week",
	types.Month: "1 month",
}

func (db *Database) GetCandles(ctx context.Context, assetId int, ticker string, interval types.Interval, start, end time.Time) ([]types.Candle, error) {
	bucket, ok := bucketToInterval[interval]
	if !ok {
		return nil, ErrIntervalNotSupported
	}
	args := getAggregatesParams{
		TimeBucket: bucket,
		AssetID:    int32(assetId),
		Starttime:  start,
		Endtime:    end,
	}
	candles, err := db.candles.GetAggregates(ctx, args)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoCandles
		}
		return nil, err
	}
	if len(candles) == 0 {
		return nil, ErrNoCandles
	}
	return convertCandles(candles, interval, ticker), nil
}

// GetHistory returns the candles of symbol covering period up to now.
func (db *Database) GetHistory(ctx context.Context, symbol string, period types.Period, interval types.Interval) ([]types.Candle, error) {
	now := db.now()
	start, err := period.Start(now)
	if err != nil {
		return nil, err
	}
	asset, err := db.GetAssetByTicker(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrMarketData, err)
	}
	candles, err := db.GetCandles(ctx, asset.Id, asset.Ticker, interval, start, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", engine.ErrMarketData, err)
	}
	return candles, nil
}

// GetCurrentPrice returns the close of the most recent stored candle.
func (db *Database) GetCurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	asset, err := db.GetAssetByTicker(ctx, symbol)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %w", engine.ErrMarketData, err)
	}
	price, err := db.candles.GetLatestClose(ctx, int32(asset.Id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = ErrNoCandles
		}
		return decimal.Zero, fmt.Errorf("%w: %s: %w", engine.ErrMarketData, asset.Ticker, err)
	}
	return price, nil
}

// SaveCandles stores candles for the asset, replacing bars with the same timestamp.
func (db *Database) SaveCandles(ctx context.Context, assetId int, candles []types.Candle) (int64, error) {
	rows := make([]candleRow, 0, len(candles))
	for _, c := range candles {
		rows = append(rows, candleRow{
			AssetID:   int32(assetId),
			Timestamp: c.Timestamp,
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
		})
	}
	n, err := db.candles.UpsertCandles(ctx, rows)
	if err != nil {
		return n, fmt.Errorf("save candles: %w", err)
	}
	return n, nil
}

func convertCandles(candleDAOs []aggregateRow, interval types.Interval, ticker string) []types.Candle {
	var candles []types.Candle
	for _, dao := range candleDAOs {
		candles = append(candles, types.Candle{
			Ticker:    ticker,
			Open:      dao.Open,
			Close:     dao.Close,
			High:      dao.High,
			Low:       dao.Low,
			Volume:    dao.Volume,
			Interval:  interval,
			Timestamp: dao.Bucket.UTC(),
		})
	}
	return candles
}
