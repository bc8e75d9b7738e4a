package marketdata

import (
	"context"
	"errors"
	"gridtrader/internal/engine"
	"gridtrader/types"
	"testing"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/cenkalti/backoff/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
)

var errRateLimited = errors.New("429 too many requests")

type mockBarsClient struct {
	failures  int
	calls     int
	bars      []marketdata.Bar
	price     float64
	symbols   []string
	lastBars  marketdata.GetBarsRequest
	lastTrade marketdata.GetLatestTradeRequest
}

func (m *mockBarsClient) GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error) {
	m.calls++
	m.symbols = append(m.symbols, symbol)
	m.lastBars = req
	if m.calls <= m.failures {
		return nil, errRateLimited
	}
	return m.bars, nil
}

func (m *mockBarsClient) GetLatestTrade(symbol string, req marketdata.GetLatestTradeRequest) (*marketdata.Trade, error) {
	m.calls++
	m.symbols = append(m.symbols, symbol)
	m.lastTrade = req
	if m.calls <= m.failures {
		return nil, errRateLimited
	}
	return &marketdata.Trade{Price: m.price}, nil
}

var alpacaNow = time.Date(2024, 6, 14, 20, 0, 0, 0, time.UTC)

func newTestAlpaca(t *testing.T, client *mockBarsClient, maxRetries uint64) *AlpacaProvider {
	t.Helper()
	p := newAlpacaProvider(client, AlpacaConfig{Feed: "iex", MaxRetries: maxRetries}, zaptest.NewLogger(t))
	p.now = func() time.Time { return alpacaNow }
	p.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return p
}

func TestAlpacaProvider_GetHistory(t *testing.T) {
	client := &mockBarsClient{
		failures: 2,
		bars: []marketdata.Bar{
			{Timestamp: time.Date(2024, 6, 12, 4, 0, 0, 0, time.UTC), Open: 100, High: 104.5, Low: 98.25, Close: 103, Volume: 1200},
			{Timestamp: time.Date(2024, 6, 13, 4, 0, 0, 0, time.UTC), Open: 103, High: 106, Low: 101.1, Close: 105.75, Volume: 900},
		},
	}
	p := newTestAlpaca(t, client, 3)

	got, err := p.GetHistory(context.Background(), "aapl.us", types.FiveDays, types.Day)
	if err != nil {
		t.Fatalf("GetHistory() error = %v", err)
	}
	if client.calls != 3 {
		t.Errorf("GetBars called %d times, want 3", client.calls)
	}
	for _, s := range client.symbols {
		if s != "AAPL" {
			t.Errorf("requested symbol %q, want AAPL", s)
		}
	}
	if client.lastBars.TimeFrame != marketdata.OneDay || client.lastBars.Feed != "iex" {
		t.Errorf("request = %+v", client.lastBars)
	}
	if !client.lastBars.Start.Equal(alpacaNow.AddDate(0, 0, -5)) || !client.lastBars.End.Equal(alpacaNow) {
		t.Errorf("request window = %v - %v", client.lastBars.Start, client.lastBars.End)
	}

	if len(got) != 2 {
		t.Fatalf("got %d candles, want 2", len(got))
	}
	first := got[0]
	if !first.Timestamp.Equal(time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("timestamp = %v, want midnight UTC of the trading day", first.Timestamp)
	}
	if !first.Low.Equal(decimal.RequireFromString("98.25")) || !first.High.Equal(decimal.RequireFromString("104.5")) {
		t.Errorf("low/high = %s/%s", first.Low, first.High)
	}
	if first.Ticker != "AAPL" || first.Interval != types.Day || !first.Volume.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("candle = %+v", first)
	}
}

func TestAlpacaProvider_GetHistoryErrors(t *testing.T) {
	tests := []struct {
		name     string
		client   *mockBarsClient
		period   types.Period
		interval types.Interval
		wantErr  error
		wantCall int
	}{
		{"retries exhausted", &mockBarsClient{failures: 10}, types.OneYear, types.Day, engine.ErrMarketData, 2},
		{"no bars", &mockBarsClient{}, types.OneYear, types.Day, engine.ErrMarketData, 1},
		{"unsupported interval", &mockBarsClient{}, types.OneYear, types.Interval("1h"), nil, 0},
		{"unsupported period", &mockBarsClient{}, types.Period("3w"), types.Day, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestAlpaca(t, tt.client, 1)
			_, err := p.GetHistory(context.Background(), "AAPL", tt.period, tt.interval)
			if err == nil {
				t.Fatalf("GetHistory() expected an error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("GetHistory() error = %v, want %v", err, tt.wantErr)
			}
			if tt.client.calls != tt.wantCall {
				t.Errorf("GetBars called %d times, want %d", tt.client.calls, tt.wantCall)
			}
		})
	}
}

func TestAlpacaProvider_GetCurrentPrice(t *testing.T) {
	client := &mockBarsClient{failures: 1, price: 187.44}
	p := newTestAlpaca(t, client, 2)

	got, err := p.GetCurrentPrice(context.Background(), "msft.US")
	if err != nil {
		t.Fatalf("GetCurrentPrice() error = %v", err)
	}
	if !got.Equal(decimal.RequireFromString("187.44")) {
		t.Errorf("GetCurrentPrice() = %s, want 187.44", got)
	}
	if client.symbols[len(client.symbols)-1] != "MSFT" || client.lastTrade.Feed != "iex" {
		t.Errorf("request = %v %+v", client.symbols, client.lastTrade)
	}

	empty := newTestAlpaca(t, &mockBarsClient{}, 0)
	if _, err := empty.GetCurrentPrice(context.Background(), "MSFT"); !errors.Is(err, engine.ErrMarketData) {
		t.Errorf("GetCurrentPrice() error = %v, want ErrMarketData", err)
	}
}

func TestAlpacaProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := &mockBarsClient{failures: 10}
	p := newTestAlpaca(t, client, 5)

	if _, err := p.GetHistory(ctx, "AAPL", types.OneYear, types.Day); !errors.Is(err, engine.ErrMarketData) {
		t.Errorf("GetHistory() error = %v", err)
	}
	if client.calls > 1 {
		t.Errorf("retried %d times after cancellation", client.calls)
	}
}
