package engine

import (
	"context"
	"fmt"
	"gridtrader/types"
	"sort"
	"time"
)

// DataFeed describes the history a backtest needs for one ticker.
type DataFeed struct {
	Ticker   string
	Period   types.Period
	Interval types.Interval
	Start    time.Time
	End      time.Time
}

func NewDataFeed(ticker string, period types.Period, interval types.Interval, start, end time.Time) *DataFeed {
	return &DataFeed{
		Ticker:   ticker,
		Period:   period,
		Interval: interval,
		Start:    start,
		End:      end,
	}
}

// GetData fetches the feed's history and keeps the candles whose calendar date
// lies in [Start, End].
func (df *DataFeed) GetData(ctx context.Context, provider MarketDataProvider) ([]types.Candle, error) {
	candles, err := provider.GetHistory(ctx, df.Ticker, df.Period, df.Interval)
	if err != nil {
		return nil, fmt.Errorf("history for %s: %w", df.Ticker, err)
	}
	return filterCandles(candles, df.Start, df.End), nil
}

func filterCandles(candles []types.Candle, start, end time.Time) []types.Candle {
	first := types.TruncateDay(start)
	last := types.TruncateDay(end)

	var out []types.Candle
	for _, c := range candles {
		day := c.Date()
		if day.Before(first) || day.After(last) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}
