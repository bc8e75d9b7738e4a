package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DBTX is the part of *pgxpool.Pool the queries need.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

type queries struct {
	db DBTX
}

func newQueries(db DBTX) *queries {
	return &queries{db: db}
}

type assetRow struct {
	ID        int32     `db:"id"`
	Ticker    string    `db:"ticker"`
	Name      string    `db:"name"`
	Type      string    `db:"type"`
	CreatedAt time.Time `db:"created_at"`
}

type aggregateRow struct {
	Bucket  time.Time       `db:"bucket"`
	AssetID int32           `db:"asset_id"`
	Open    decimal.Decimal `db:"open"`
	High    decimal.Decimal `db:"high"`
	Low     decimal.Decimal `db:"low"`
	Close   decimal.Decimal `db:"close"`
	Volume  decimal.Decimal `db:"volume"`
}

type candleRow struct {
	AssetID   int32
	Timestamp time.Time
	Open      decimal.Decimal
	High      decimal.Decimal
	Low       decimal.Decimal
	Close     decimal.Decimal
	Volume    decimal.Decimal
}

const getAssetByTicker = `
SELECT id, ticker, name, type, created_at
FROM asset
WHERE ticker = $1`

func (q *queries) GetAssetByTicker(ctx context.Context, ticker string) (assetRow, error) {
	rows, err := q.db.Query(ctx, getAssetByTicker, ticker)
	if err != nil {
		return assetRow{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[assetRow])
}

type upsertAssetParams struct {
	Ticker string
	Name   string
	Type   string
}

const upsertAsset = `
INSERT INTO asset (ticker, name, type)
VALUES ($1, $2, $3)
ON CONFLICT (ticker) DO UPDATE SET name = EXCLUDED.name
RETURNING id, ticker, name, type, created_at`

func (q *queries) UpsertAsset(ctx context.Context, arg upsertAssetParams) (assetRow, error) {
	rows, err := q.db.Query(ctx, upsertAsset, arg.Ticker, arg.Name, arg.Type)
	if err != nil {
		return assetRow{}, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[assetRow])
}

type getAggregatesParams struct {
	TimeBucket string
	AssetID    int32
	Starttime  time.Time
	Endtime    time.Time
}

const getAggregates = `
SELECT time_bucket($1::interval, c.timestamp) AS bucket,
       c.asset_id,
       first(c.open, c.timestamp)             AS open,
       max(c.high)                            AS high,
       min(c.low)                             AS low,
       last(c.close, c.timestamp)             AS close,
       sum(c.volume)                          AS volume
FROM candle c
WHERE c.asset_id = $2
  AND c.timestamp >= $3
  AND c.timestamp <= $4
GROUP BY bucket, c.asset_id
ORDER BY bucket`

func (q *queries) GetAggregates(ctx context.Context, arg getAggregatesParams) ([]aggregateRow, error) {
	rows, err := q.db.Query(ctx, getAggregates, arg.TimeBucket, arg.AssetID, arg.Starttime, arg.Endtime)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[aggregateRow])
}

const getLatestClose = `
SELECT close
FROM candle
WHERE asset_id = $1
ORDER BY timestamp DESC
LIMIT 1`

func (q *queries) GetLatestClose(ctx context.Context, assetID int32) (decimal.Decimal, error) {
	var closePrice decimal.Decimal
	err := q.db.QueryRow(ctx, getLatestClose, assetID).Scan(&closePrice)
	return closePrice, err
}

const upsertCandle = `
INSERT INTO candle (asset_id, timestamp, open, high, low, close, volume)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (asset_id, timestamp) DO UPDATE
SET open = EXCLUDED.open, high = EXCLUDED.high, low = EXCLUDED.low,
    close = EXCLUDED.close, volume = EXCLUDED.volume`

func (q *queries) UpsertCandles(ctx context.Context, rows []candleRow) (int64, error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(upsertCandle, r.AssetID, r.Timestamp, r.Open, r.High, r.Low, r.Close, r.Volume)
	}

	results := q.db.SendBatch(ctx, batch)
	var affected int64
	for range rows {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return affected, err
		}
		affected += tag.RowsAffected()
	}
	return affected, results.Close()
}

type insertDocumentParams struct {
	ID        string
	Symbol    string
	Payload   []byte
	CreatedAt time.Time
}

const insertStrategy = `
INSERT INTO strategy (id, symbol, payload, created_at)
VALUES ($1, $2, $3, $4)`

func (q *queries) InsertStrategy(ctx context.Context, arg insertDocumentParams) error {
	_, err := q.db.Exec(ctx, insertStrategy, arg.ID, arg.Symbol, arg.Payload, arg.CreatedAt)
	return err
}

const getStrategy = `SELECT payload FROM strategy WHERE id = $1`

func (q *queries) GetStrategy(ctx context.Context, id string) ([]byte, error) {
	var payload []byte
	err := q.db.QueryRow(ctx, getStrategy, id).Scan(&payload)
	return payload, err
}

const listStrategies = `SELECT payload FROM strategy ORDER BY created_at DESC`

func (q *queries) ListStrategies(ctx context.Context) ([][]byte, error) {
	rows, err := q.db.Query(ctx, listStrategies)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[[]byte])
}

type insertBacktestParams struct {
	ID         string
	StrategyID string
	Payload    []byte
	CreatedAt  time.Time
}

const insertBacktest = `
INSERT INTO backtest (id, strategy_id, payload, created_at)
VALUES ($1, $2, $3, $4)`

func (q *queries) InsertBacktest(ctx context.Context, arg insertBacktestParams) error {
	_, err := q.db.Exec(ctx, insertBacktest, arg.ID, arg.StrategyID, arg.Payload, arg.CreatedAt)
	return err
}

const getBacktest = `SELECT payload FROM backtest WHERE id = $1`

func (q *queries) GetBacktest(ctx context.Context, id string) ([]byte, error) {
	var payload []byte
	err := q.db.QueryRow(ctx, getBacktest, id).Scan(&payload)
	return payload, err
}
