package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Candle is one OHLCV price bar. Daily candles are stamped at midnight UTC of
// the trading day they describe.
type Candle struct {
	Ticker    string          `json:"ticker"`
	Open      decimal.Decimal `json:"open"`
	Close     decimal.Decimal `json:"close"`
	High      decimal.Decimal `json:"high" `
	Low       decimal.Decimal `json:"low"`
	Volume    decimal.Decimal `json:"volume"`
	Interval  Interval        `json:"interval"`
	Timestamp time.Time       `json:"timestamp"`
}

// Touches reports whether price lies inside the candle's [low, high] range.
func (c Candle) Touches(price decimal.Decimal) bool {
	return c.Low.LessThanOrEqual(price) && price.LessThanOrEqual(c.High)
}

// Date is the candle's calendar day in UTC.
func (c Candle) Date() time.Time {
	return TruncateDay(c.Timestamp)
}

// TruncateDay drops the time of day, keeping the UTC calendar date.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
