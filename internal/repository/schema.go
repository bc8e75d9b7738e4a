package repository

// Candles are kept in a TimescaleDB hypertable so GetAggregates can bucket
// daily bars into weeks and months.
const schema = `
CREATE EXTENSION IF NOT EXISTS timescaledb;

CREATE TABLE IF NOT EXISTS asset (
    id         SERIAL PRIMARY KEY,
    ticker     TEXT        NOT NULL UNIQUE,
    name       TEXT        NOT NULL,
    type       TEXT        NOT NULL CHECK (type IN ('STOCK', 'ETF')),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS candle (
    asset_id  INTEGER     NOT NULL REFERENCES asset (id),
    timestamp TIMESTAMPTZ NOT NULL,
    open      NUMERIC     NOT NULL,
    high      NUMERIC     NOT NULL,
    low       NUMERIC     NOT NULL,
    close     NUMERIC     NOT NULL,
    volume    NUMERIC     NOT NULL,
    PRIMARY KEY (asset_id, timestamp)
);

SELECT create_hypertable('candle', 'timestamp', if_not_exists => TRUE);

CREATE TABLE IF NOT EXISTS strategy (
    id         TEXT PRIMARY KEY,
    symbol     TEXT        NOT NULL,
    payload    JSONB       NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS backtest (
    id          TEXT PRIMARY KEY,
    strategy_id TEXT        NOT NULL,
    payload     JSONB       NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS backtest_strategy_id_idx ON backtest (strategy_id);
`
