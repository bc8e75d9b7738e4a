package main

import (
	"context"
	"flag"
	"fmt"
	"gridtrader/internal/config"
	"gridtrader/internal/engine"
	"gridtrader/internal/logging"
	"gridtrader/internal/marketdata"
	"gridtrader/internal/repository"
	"gridtrader/strategies/grid"
	"gridtrader/types"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "config/gridtrader.yaml", "path to the YAML config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config path] [backtest|sync]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	command := "backtest"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}
	if command != "backtest" && command != "sync" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, command); err != nil {
		log.Printf("%s failed: %v", command, err)
		os.Exit(1)
	}
}

// run owns the logger and signal context so their cleanup happens before main exits.
func run(configPath, command string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if command == "sync" {
		err = runSync(ctx, cfg, logger)
	} else {
		err = runBacktest(ctx, cfg, logger)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
	}
	return err
}

func runBacktest(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var db *repository.Database
	if cfg.MarketData.Provider == config.ProviderPostgres || cfg.Backtest.Persist {
		var err error
		if db, err = openDatabase(ctx, cfg); err != nil {
			return err
		}
		defer db.Close()
	}

	provider, err := newProvider(cfg, db, logger)
	if err != nil {
		return err
	}

	params, err := cfg.Backtest.Params()
	if err != nil {
		return err
	}
	strategy, err := grid.NewBuilder(provider, logger).Build(ctx, params)
	if err != nil {
		return fmt.Errorf("build strategy: %w", err)
	}
	if cfg.Backtest.Persist {
		if err := db.SaveStrategy(ctx, strategy); err != nil {
			return err
		}
	}

	start, end, err := cfg.Backtest.Window()
	if err != nil {
		return err
	}
	period, err := types.ParsePeriod(cfg.Backtest.Period)
	if err != nil {
		return err
	}

	eng := engine.NewEngine(
		provider,
		engine.NewRunConfig(period, types.ConvertInterval[cfg.Backtest.Interval], cfg.Backtest.ShowProgress),
		engine.NewReportingConfig(cfg.Backtest.PrintSummary, cfg.Backtest.TradesFile, cfg.Backtest.DailyValuesFile),
		logger,
	)
	result, err := eng.Run(ctx, strategy, start, end)
	if err != nil {
		return err
	}

	if cfg.Backtest.Persist {
		if err := db.SaveBacktest(ctx, result); err != nil {
			return err
		}
		logger.Info("backtest saved", zap.String("backtest_id", result.ID), zap.String("strategy_id", strategy.ID))
	}
	return nil
}

// runSync copies Alpaca daily history of the backtest symbol into the
// configured local store.
func runSync(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.ValidateSync(); err != nil {
		return err
	}
	period, err := types.ParsePeriod(cfg.Sync.Period)
	if err != nil {
		return err
	}

	source := marketdata.NewAlpacaProvider(alpacaConfig(cfg), logger)
	candles, err := source.GetHistory(ctx, cfg.Backtest.Symbol, period, types.Day)
	if err != nil {
		return err
	}
	ticker := types.NormalizeTicker(cfg.Backtest.Symbol)

	switch cfg.Sync.Target {
	case config.ProviderPostgres:
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		name := cfg.Sync.AssetName
		if name == "" {
			name = ticker
		}
		asset, err := db.SaveAsset(ctx, ticker, name, types.AssetType(cfg.Sync.AssetType))
		if err != nil {
			return err
		}
		n, err := db.SaveCandles(ctx, asset.Id, candles)
		if err != nil {
			return err
		}
		logger.Info("candles synced", zap.String("symbol", ticker), zap.String("target", "postgres"), zap.Int64("rows", n))
	default:
		store := marketdata.NewParquetProvider(cfg.MarketData.DataDir)
		if err := store.WriteBars(ctx, ticker, candles); err != nil {
			return err
		}
		logger.Info("candles synced", zap.String("symbol", ticker), zap.String("target", "parquet"), zap.Int("bars", len(candles)))
	}
	return nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*repository.Database, error) {
	db, err := repository.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if cfg.Database.Migrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

func newProvider(cfg *config.Config, db *repository.Database, logger *zap.Logger) (engine.MarketDataProvider, error) {
	switch cfg.MarketData.Provider {
	case config.ProviderAlpaca:
		return marketdata.NewAlpacaProvider(alpacaConfig(cfg), logger), nil
	case config.ProviderParquet:
		return marketdata.NewParquetProvider(cfg.MarketData.DataDir), nil
	case config.ProviderPostgres:
		return db, nil
	}
	return nil, fmt.Errorf("market data provider %q not supported", cfg.MarketData.Provider)
}

func alpacaConfig(cfg *config.Config) marketdata.AlpacaConfig {
	return marketdata.AlpacaConfig{
		APIKey:     cfg.MarketData.Alpaca.APIKey,
		APISecret:  cfg.MarketData.Alpaca.APISecret,
		BaseURL:    cfg.MarketData.Alpaca.DataURL,
		Feed:       cfg.MarketData.Alpaca.Feed,
		MaxRetries: cfg.MarketData.Alpaca.MaxRetries,
	}
}
