package marketdata

import (
	"fmt"
	"gridtrader/types"
	"time"

	"github.com/shopspring/decimal"
)

// resample folds sorted daily candles into weekly (Monday based) or monthly
// bars stamped with the first day of the bucket.
func resample(daily []types.Candle, interval types.Interval) ([]types.Candle, error) {
	var bucketStart func(time.Time) time.Time
	switch interval {
	case types.Day:
		return daily, nil
	case types.Week:
		bucketStart = func(t time.Time) time.Time {
			day := types.TruncateDay(t)
			offset := (int(day.Weekday()) + 6) % 7
			return day.AddDate(0, 0, -offset)
		}
	case types.Month:
		bucketStart = func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		}
	default:
		return nil, fmt.Errorf("interval %q not supported", string(interval))
	}

	var out []types.Candle
	for _, c := range daily {
		start := bucketStart(c.Timestamp.UTC())
		if n := len(out); n > 0 && out[n-1].Timestamp.Equal(start) {
			bar := &out[n-1]
			bar.High = decimal.Max(bar.High, c.High)
			bar.Low = decimal.Min(bar.Low, c.Low)
			bar.Close = c.Close
			bar.Volume = bar.Volume.Add(c.Volume)
			continue
		}
		c.Timestamp = start
		c.Interval = interval
		out = append(out, c)
	}
	return out, nil
}
