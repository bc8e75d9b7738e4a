package config

import (
	"fmt"
	"gridtrader/types"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

const (
	ProviderAlpaca   = "alpaca"
	ProviderParquet  = "parquet"
	ProviderPostgres = "postgres"
)

// Config is the top-level configuration of the grid backtester.
type Config struct {
	Database   Database   `yaml:"database"`
	MarketData MarketData `yaml:"market_data"`
	Logging    Logging    `yaml:"logging"`
	Backtest   Backtest   `yaml:"backtest"`
	Sync       Sync       `yaml:"sync"`
}

type Database struct {
	URL     string `yaml:"url" validate:"omitempty,url"`
	Migrate bool   `yaml:"migrate"`
}

// MarketData selects where history and current prices come from.
type MarketData struct {
	Provider string `yaml:"provider" validate:"required,oneof=alpaca parquet postgres"`
	DataDir  string `yaml:"data_dir"`
	Alpaca   Alpaca `yaml:"alpaca"`
}

// Alpaca holds credentials and endpoints for the Alpaca market data API.
type Alpaca struct {
	APIKey     string `yaml:"api_key"`
	APISecret  string `yaml:"api_secret"`
	DataURL    string `yaml:"data_url" validate:"omitempty,url"`
	Feed       string `yaml:"feed" validate:"omitempty,oneof=iex sip otc"`
	MaxRetries uint64 `yaml:"max_retries" validate:"lte=10"`
}

type Logging struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// Backtest describes the strategy to build and the window to replay it over.
// Prices and amounts are kept as strings so they reach decimal unrounded.
type Backtest struct {
	Symbol           string `yaml:"symbol" validate:"required"`
	LowerPrice       string `yaml:"lower_price" validate:"required,numeric"`
	UpperPrice       string `yaml:"upper_price" validate:"required,numeric"`
	NumGrids         int    `yaml:"num_grids" validate:"gte=2"`
	InvestmentAmount string `yaml:"investment_amount" validate:"required,numeric"`
	StartDate        string `yaml:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate          string `yaml:"end_date" validate:"required,datetime=2006-01-02"`
	Period           string `yaml:"period" validate:"oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max"`
	Interval         string `yaml:"interval" validate:"oneof=1d"`
	ShowProgress     bool   `yaml:"show_progress"`
	PrintSummary     bool   `yaml:"print_summary"`
	TradesFile       string `yaml:"trades_file"`
	DailyValuesFile  string `yaml:"daily_values_file"`
	Persist          bool   `yaml:"persist"`
}

// Sync copies Alpaca history into a local store.
type Sync struct {
	Target    string `yaml:"target" validate:"omitempty,oneof=postgres parquet"`
	Period    string `yaml:"period" validate:"omitempty,oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y 10y ytd max"`
	AssetName string `yaml:"asset_name"`
	AssetType string `yaml:"asset_type" validate:"omitempty,oneof=STOCK ETF"`
}

func defaults() *Config {
	return &Config{
		MarketData: MarketData{
			Provider: ProviderAlpaca,
			DataDir:  "data",
			Alpaca: Alpaca{
				Feed:       "iex",
				MaxRetries: 3,
			},
		},
		Logging: Logging{Level: "info"},
		Backtest: Backtest{
			Period:       string(types.Max),
			Interval:     string(types.Day),
			PrintSummary: true,
		},
		Sync: Sync{
			Target:    ProviderParquet,
			Period:    string(types.FiveYears),
			AssetType: string(types.AssetTypeStock),
		},
	}
}

// Load reads the YAML configuration file at the given path on top of the
// defaults, applies environment variable overrides and validates the result.
// A .env file in the working directory is loaded first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}

	if v := os.Getenv("MARKET_DATA_PROVIDER"); v != "" {
		cfg.MarketData.Provider = v
	}

	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.MarketData.DataDir = v
	}

	if v := os.Getenv("ALPACA_API_KEY"); v != "" {
		cfg.MarketData.Alpaca.APIKey = v
	}

	if v := os.Getenv("ALPACA_API_SECRET"); v != "" {
		cfg.MarketData.Alpaca.APISecret = v
	}

	if v := os.Getenv("ALPACA_DATA_URL"); v != "" {
		cfg.MarketData.Alpaca.DataURL = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Standard Alpaca env vars win over the project specific ones.
	if v := os.Getenv("APCA_API_KEY_ID"); v != "" {
		cfg.MarketData.Alpaca.APIKey = v
	}
	if v := os.Getenv("APCA_API_SECRET_KEY"); v != "" {
		cfg.MarketData.Alpaca.APISecret = v
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateConfig, Config{})
	return v
}

// validateConfig checks the rules that span sections.
func validateConfig(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)

	needsAlpaca := cfg.MarketData.Provider == ProviderAlpaca
	if needsAlpaca && cfg.MarketData.Alpaca.APIKey == "" {
		sl.ReportError(cfg.MarketData.Alpaca.APIKey, "api_key", "APIKey", "required_with_alpaca", "")
	}
	if needsAlpaca && cfg.MarketData.Alpaca.APISecret == "" {
		sl.ReportError(cfg.MarketData.Alpaca.APISecret, "api_secret", "APISecret", "required_with_alpaca", "")
	}
	if cfg.MarketData.Provider == ProviderParquet && cfg.MarketData.DataDir == "" {
		sl.ReportError(cfg.MarketData.DataDir, "data_dir", "DataDir", "required_with_parquet", "")
	}
	needsDatabase := cfg.MarketData.Provider == ProviderPostgres || cfg.Backtest.Persist
	if needsDatabase && cfg.Database.URL == "" {
		sl.ReportError(cfg.Database.URL, "url", "URL", "required_with_postgres", "")
	}
}

// Validate checks field formats and cross-section rules, then that the
// backtest values parse.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Backtest.Params(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	start, end, err := c.Backtest.Window()
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("invalid config: end_date %s is before start_date %s", c.Backtest.EndDate, c.Backtest.StartDate)
	}
	return nil
}

// ValidateSync checks what the sync command needs beyond the common rules.
func (c *Config) ValidateSync() error {
	if c.MarketData.Alpaca.APIKey == "" || c.MarketData.Alpaca.APISecret == "" {
		return fmt.Errorf("invalid config: sync needs alpaca credentials")
	}
	if c.Sync.Target == ProviderPostgres && c.Database.URL == "" {
		return fmt.Errorf("invalid config: sync to postgres needs database.url")
	}
	if c.Sync.Target == ProviderParquet && c.MarketData.DataDir == "" {
		return fmt.Errorf("invalid config: sync to parquet needs market_data.data_dir")
	}
	return nil
}

func (b Backtest) Params() (types.StrategyParams, error) {
	lower, err := decimal.NewFromString(b.LowerPrice)
	if err != nil {
		return types.StrategyParams{}, fmt.Errorf("lower_price: %w", err)
	}
	upper, err := decimal.NewFromString(b.UpperPrice)
	if err != nil {
		return types.StrategyParams{}, fmt.Errorf("upper_price: %w", err)
	}
	investment, err := decimal.NewFromString(b.InvestmentAmount)
	if err != nil {
		return types.StrategyParams{}, fmt.Errorf("investment_amount: %w", err)
	}
	return types.StrategyParams{
		Symbol:           b.Symbol,
		LowerPrice:       lower,
		UpperPrice:       upper,
		NumGrids:         b.NumGrids,
		InvestmentAmount: investment,
	}, nil
}

// Window returns the inclusive backtest dates as midnight UTC.
func (b Backtest) Window() (start, end time.Time, err error) {
	start, err = time.Parse(dateLayout, b.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start_date: %w", err)
	}
	end, err = time.Parse(dateLayout, b.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date: %w", err)
	}
	return start, end, nil
}
