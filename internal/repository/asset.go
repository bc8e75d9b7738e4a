package repository

import (
	"context"
	"errors"
	"fmt"
	"gridtrader/types"

	"github.com/jackc/pgx/v5"
)

// GetAssetByTicker retrieves a types.Asset by its ticker.
func (db *Database) GetAssetByTicker(ctx context.Context, ticker string) (*types.Asset, error) {
	asset, err := db.assets.GetAssetByTicker(ctx, types.NormalizeTicker(ticker))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ticker %s %w", ticker, ErrAssetNotFound)
		}
		return nil, err
	}
	return toAsset(asset), nil
}

// SaveAsset inserts the asset or refreshes its name when the ticker exists.
func (db *Database) SaveAsset(ctx context.Context, ticker, name string, assetType types.AssetType) (*types.Asset, error) {
	asset, err := db.assets.UpsertAsset(ctx, upsertAssetParams{
		Ticker: types.NormalizeTicker(ticker),
		Name:   name,
		Type:   string(assetType),
	})
	if err != nil {
		return nil, fmt.Errorf("save asset %s: %w", ticker, err)
	}
	return toAsset(asset), nil
}

func toAsset(row assetRow) *types.Asset {
	return &types.Asset{
		Id:        int(row.ID),
		Ticker:    row.Ticker,
		Name:      row.Name,
		Type:      types.AssetType(row.Type),
		CreatedAt: row.CreatedAt,
	}
}
