package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"gridtrader/types"

	"github.com/jackc/pgx/v5"
)

// SaveStrategy stores a built strategy under its ID. Strategies are immutable,
// so saving an existing ID fails.
func (db *Database) SaveStrategy(ctx context.Context, strategy *types.Strategy) error {
	payload, err := json.Marshal(strategy)
	if err != nil {
		return fmt.Errorf("encode strategy: %w", err)
	}
	err = db.strategies.InsertStrategy(ctx, insertDocumentParams{
		ID:        strategy.ID,
		Symbol:    strategy.Symbol,
		Payload:   payload,
		CreatedAt: strategy.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("save strategy %s: %w", strategy.ID, err)
	}
	return nil
}

func (db *Database) GetStrategy(ctx context.Context, id string) (*types.Strategy, error) {
	payload, err := db.strategies.GetStrategy(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("strategy %s: %w", id, ErrStrategyNotFound)
		}
		return nil, err
	}
	var strategy types.Strategy
	if err := json.Unmarshal(payload, &strategy); err != nil {
		return nil, fmt.Errorf("decode strategy %s: %w", id, err)
	}
	return &strategy, nil
}

// ListStrategies returns all stored strategies, newest first.
func (db *Database) ListStrategies(ctx context.Context) ([]*types.Strategy, error) {
	payloads, err := db.strategies.ListStrategies(ctx)
	if err != nil {
		return nil, err
	}
	strategies := make([]*types.Strategy, 0, len(payloads))
	for _, payload := range payloads {
		var strategy types.Strategy
		if err := json.Unmarshal(payload, &strategy); err != nil {
			return nil, fmt.Errorf("decode strategy: %w", err)
		}
		strategies = append(strategies, &strategy)
	}
	return strategies, nil
}

func (db *Database) SaveBacktest(ctx context.Context, result *types.BacktestResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode backtest: %w", err)
	}
	err = db.backtests.InsertBacktest(ctx, insertBacktestParams{
		ID:         result.ID,
		StrategyID: result.StrategyID,
		Payload:    payload,
		CreatedAt:  result.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("save backtest %s: %w", result.ID, err)
	}
	return nil
}

func (db *Database) GetBacktest(ctx context.Context, id string) (*types.BacktestResult, error) {
	payload, err := db.backtests.GetBacktest(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("backtest %s: %w", id, ErrBacktestNotFound)
		}
		return nil, err
	}
	var result types.BacktestResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode backtest %s: %w", id, err)
	}
	return &result, nil
}
