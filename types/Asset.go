package types

import (
	"strings"
	"time"
)

type AssetType string

const (
	AssetTypeStock AssetType = "STOCK"
	AssetTypeEtf   AssetType = "ETF"
)

// Asset is a tradable instrument whose daily candles live in the candle store.
type Asset struct {
	Id        int       `json:"id"`
	Ticker    string    `json:"ticker"`
	Name      string    `json:"name"`
	Type      AssetType `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

// NormalizeTicker upper-cases a symbol and drops an exchange suffix such as
// ".US". Symbols are stored and requested in this form everywhere.
func NormalizeTicker(symbol string) string {
	ticker := strings.ToUpper(strings.TrimSpace(symbol))
	if i := strings.LastIndexByte(ticker, '.'); i > 0 && ticker[i+1:] == "US" {
		ticker = ticker[:i]
	}
	return ticker
}
