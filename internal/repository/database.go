package repository

import (
	"context"
	"errors"
	"fmt"
	"gridtrader/internal/engine"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Global error declarations.
var (
	ErrIntervalNotSupported = errors.New("timeframe not supported")
	ErrAssetNotFound        = errors.New("not found in datasource")
	ErrNoCandles            = errors.New("no candles found in datasource")
	ErrStrategyNotFound     = errors.New("strategy not found")
	ErrBacktestNotFound     = errors.New("backtest not found")
)

var _ engine.MarketDataProvider = (*Database)(nil)

type assetsRepository interface {
	GetAssetByTicker(ctx context.Context, ticker string) (assetRow, error)
	UpsertAsset(ctx context.Context, arg upsertAssetParams) (assetRow, error)
}

type candlesRepository interface {
	GetAggregates(ctx context.Context, arg getAggregatesParams) ([]aggregateRow, error)
	GetLatestClose(ctx context.Context, assetID int32) (decimal.Decimal, error)
	UpsertCandles(ctx context.Context, rows []candleRow) (int64, error)
}

type strategiesRepository interface {
	InsertStrategy(ctx context.Context, arg insertDocumentParams) error
	GetStrategy(ctx context.Context, id string) ([]byte, error)
	ListStrategies(ctx context.Context) ([][]byte, error)
}

type backtestsRepository interface {
	InsertBacktest(ctx context.Context, arg insertBacktestParams) error
	GetBacktest(ctx context.Context, id string) ([]byte, error)
}

// Database struct that holds the database connection and queries.
type Database struct {
	assets     assetsRepository
	candles    candlesRepository
	strategies strategiesRepository
	backtests  backtestsRepository
	conn       *pgxpool.Pool
	now        func() time.Time
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(ctx context.Context, dbURL string) (*Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	q := newQueries(conn)
	return &Database{
		assets:     q,
		candles:    q,
		strategies: q,
		backtests:  q,
		conn:       conn,
		now:        time.Now,
	}, nil
}

// Migrate creates the tables the repository reads and writes.
func (db *Database) Migrate(ctx context.Context) error {
	if _, err := db.conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}
