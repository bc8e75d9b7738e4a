package engine

import (
	"context"
	"errors"
	"fmt"
	"gridtrader/types"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type mockProvider struct {
	candles []types.Candle
	err     error
}

func (m *mockProvider) GetHistory(_ context.Context, _ string, _ types.Period, _ types.Interval) ([]types.Candle, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.candles, nil
}

func (m *mockProvider) GetCurrentPrice(_ context.Context, _ string) (decimal.Decimal, error) {
	if m.err != nil {
		return decimal.Zero, m.err
	}
	if len(m.candles) == 0 {
		return decimal.Zero, ErrMarketData
	}
	return m.candles[len(m.candles)-1].Close, nil
}

func TestFilterCandles(t *testing.T) {
	late := mockCandle(2, "1", "2", "1.5")
	late.Timestamp = late.Timestamp.Add(20 * time.Hour)
	candles := []types.Candle{
		mockCandle(3, "1", "2", "1.5"),
		late,
		mockCandle(-1, "1", "2", "1.5"),
		mockCandle(0, "1", "2", "1.5"),
		mockCandle(1, "1", "2", "1.5"),
	}

	// The window is given in local time of day; only the calendar date counts.
	start := testDay.Add(15 * time.Hour)
	end := testDay.AddDate(0, 0, 2).Add(time.Hour)
	got := filterCandles(candles, start, end)

	if len(got) != 3 {
		t.Fatalf("got %d candles, want 3", len(got))
	}
	for i, want := range []time.Time{testDay, testDay.AddDate(0, 0, 1), late.Timestamp} {
		if !got[i].Timestamp.Equal(want) {
			t.Errorf("candle[%d] at %v, want %v", i, got[i].Timestamp, want)
		}
	}
}

func TestFilterCandles_EmptyWindow(t *testing.T) {
	candles := []types.Candle{mockCandle(0, "1", "2", "1.5")}
	if got := filterCandles(candles, testDay.AddDate(0, 0, 5), testDay.AddDate(0, 0, 9)); len(got) != 0 {
		t.Errorf("got %d candles outside the window", len(got))
	}
}

func TestDataFeed_GetData(t *testing.T) {
	tests := []struct {
		name     string
		provider *mockProvider
		wantErr  error
		wantLen  int
	}{
		{
			name:     "filters provider history",
			provider: &mockProvider{candles: []types.Candle{mockCandle(0, "1", "2", "1.5"), mockCandle(10, "1", "2", "1.5")}},
			wantLen:  1,
		},
		{
			name:     "wraps provider errors",
			provider: &mockProvider{err: fmt.Errorf("connection reset: %w", ErrMarketData)},
			wantErr:  ErrMarketData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feed := NewDataFeed("AAPL", types.OneYear, types.Day, testDay, testDay.AddDate(0, 0, 5))
			got, err := feed.GetData(context.Background(), tt.provider)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("GetData() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("GetData() error = %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("got %d candles, want %d", len(got), tt.wantLen)
			}
		})
	}
}
