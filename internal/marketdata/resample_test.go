package marketdata

import (
	"gridtrader/types"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestResample(t *testing.T) {
	// Thu 2024-05-30 .. Tue 2024-06-04
	day := func(d int) time.Time { return time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d) }
	daily := []types.Candle{
		dailyCandle(day(0), "10", "12", "9", "11", 1),
		dailyCandle(day(1), "11", "15", "10", "14", 2),
		dailyCandle(day(4), "14", "14", "8", "9", 4),
		dailyCandle(day(5), "9", "13", "9", "12", 8),
	}

	tests := []struct {
		interval types.Interval
		want     []types.Candle
	}{
		{types.Day, daily},
		{types.Week, []types.Candle{
			dailyCandle(time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC), "10", "15", "9", "14", 3),
			dailyCandle(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), "14", "14", "8", "12", 12),
		}},
		{types.Month, []types.Candle{
			dailyCandle(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), "10", "15", "9", "14", 3),
			dailyCandle(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), "14", "14", "8", "12", 12),
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.interval), func(t *testing.T) {
			got, err := resample(daily, tt.interval)
			if err != nil {
				t.Fatalf("resample() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d bars, want %d", len(got), len(tt.want))
			}
			for i, w := range tt.want {
				g := got[i]
				if !g.Timestamp.Equal(w.Timestamp) {
					t.Errorf("bar %d at %v, want %v", i, g.Timestamp, w.Timestamp)
				}
				if !g.Open.Equal(w.Open) || !g.High.Equal(w.High) || !g.Low.Equal(w.Low) || !g.Close.Equal(w.Close) {
					t.Errorf("bar %d = %s/%s/%s/%s, want %s/%s/%s/%s", i, g.Open, g.High, g.Low, g.Close, w.Open, w.High, w.Low, w.Close)
				}
				if !g.Volume.Equal(w.Volume) {
					t.Errorf("bar %d volume = %s, want %s", i, g.Volume, w.Volume)
				}
				if g.Interval != tt.interval {
					t.Errorf("bar %d interval = %s", i, g.Interval)
				}
			}
		})
	}

	if _, err := resample(daily, types.Interval("1h")); err == nil {
		t.Errorf("resample() accepted an unknown interval")
	}
	if !daily[1].High.Equal(decimal.RequireFromString("15")) {
		t.Errorf("resample() modified its input")
	}
}
