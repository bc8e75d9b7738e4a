package marketdata

import (
	"context"
	"fmt"
	"gridtrader/internal/engine"
	"gridtrader/types"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/shopspring/decimal"
)

var _ engine.MarketDataProvider = (*ParquetProvider)(nil)

// BarRecord is the Parquet schema for daily bar data.
type BarRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    int64   `parquet:"volume"`
}

// ParquetProvider serves daily bars stored on disk, one file per symbol at
// <DataDir>/<SYMBOL>.parquet. Weekly and monthly history is resampled from
// the daily bars.
type ParquetProvider struct {
	DataDir string
	now     func() time.Time
}

func NewParquetProvider(dataDir string) *ParquetProvider {
	return &ParquetProvider{DataDir: dataDir, now: time.Now}
}

func (p *ParquetProvider) GetHistory(_ context.Context, symbol string, period types.Period, interval types.Interval) ([]types.Candle, error) {
	now := p.now()
	start, err := period.Start(now)
	if err != nil {
		return nil, err
	}
	ticker := types.NormalizeTicker(symbol)
	records, err := p.readBars(ticker)
	if err != nil {
		return nil, err
	}

	from, to := start.UnixMilli(), now.UnixMilli()
	var daily []types.Candle
	for _, r := range records {
		if r.Timestamp < from || r.Timestamp > to {
			continue
		}
		daily = append(daily, toCandle(ticker, r))
	}
	if len(daily) == 0 {
		return nil, fmt.Errorf("%w: no bars for %s since %s", engine.ErrMarketData, ticker, start.Format(time.DateOnly))
	}
	return resample(daily, interval)
}

// GetCurrentPrice returns the close of the last stored bar.
func (p *ParquetProvider) GetCurrentPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	ticker := types.NormalizeTicker(symbol)
	records, err := p.readBars(ticker)
	if err != nil {
		return decimal.Zero, err
	}
	if len(records) == 0 {
		return decimal.Zero, fmt.Errorf("%w: no bars for %s", engine.ErrMarketData, ticker)
	}
	return decimal.NewFromFloat(records[len(records)-1].Close), nil
}

// WriteBars merges candles into the symbol's file. A bar with the same
// timestamp as a stored one replaces it.
func (p *ParquetProvider) WriteBars(_ context.Context, symbol string, candles []types.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	ticker := types.NormalizeTicker(symbol)
	path := p.barPath(ticker)

	var existing []BarRecord
	if _, err := os.Stat(path); err == nil {
		if existing, err = p.readBars(ticker); err != nil {
			return err
		}
	}

	incoming := make([]BarRecord, 0, len(candles))
	for _, c := range candles {
		incoming = append(incoming, BarRecord{
			Symbol:    ticker,
			Timestamp: c.Timestamp.UnixMilli(),
			Open:      c.Open.InexactFloat64(),
			High:      c.High.InexactFloat64(),
			Low:       c.Low.InexactFloat64(),
			Close:     c.Close.InexactFloat64(),
			Volume:    c.Volume.IntPart(),
		})
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := parquet.WriteFile(path, mergeBarRecords(existing, incoming)); err != nil {
		return fmt.Errorf("writing bars for %s: %w", ticker, err)
	}
	return nil
}

func (p *ParquetProvider) barPath(ticker string) string {
	return filepath.Join(p.DataDir, ticker+".parquet")
}

// readBars returns the symbol's records sorted by timestamp.
func (p *ParquetProvider) readBars(ticker string) ([]BarRecord, error) {
	records, err := parquet.ReadFile[BarRecord](p.barPath(ticker))
	if err != nil {
		return nil, fmt.Errorf("%w: reading bars for %s: %w", engine.ErrMarketData, ticker, err)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Timestamp < records[j].Timestamp })
	return records, nil
}

// mergeBarRecords deduplicates bar records by timestamp, preferring
// new records over existing ones.
func mergeBarRecords(existing, incoming []BarRecord) []BarRecord {
	seen := make(map[int64]BarRecord, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.Timestamp] = r
	}
	for _, r := range incoming {
		seen[r.Timestamp] = r
	}

	merged := make([]BarRecord, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Timestamp < merged[j].Timestamp })
	return merged
}

func toCandle(ticker string, r BarRecord) types.Candle {
	return types.Candle{
		Ticker:    ticker,
		Open:      decimal.NewFromFloat(r.Open),
		High:      decimal.NewFromFloat(r.High),
		Low:       decimal.NewFromFloat(r.Low),
		Close:     decimal.NewFromFloat(r.Close),
		Volume:    decimal.NewFromInt(r.Volume),
		Interval:  types.Day,
		Timestamp: time.UnixMilli(r.Timestamp).UTC(),
	}
}
