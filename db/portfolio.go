package db

import (
	"context"

	"finsight/api/models"
)

const holdingColumns = "id, owner_id, symbol, shares, avg_cost, created_at, updated_at"

func scanHolding(row interface{ Scan(...any) error }) (*models.Holding, error) {
	h := &models.Holding{}
	err := row.Scan(&h.ID, &h.OwnerID, &h.Symbol, &h.Shares, &h.AvgCost, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return h, nil
}

func CreateHolding(ctx context.Context, ownerID, symbol string, shares, avgCost float64) (*models.Holding, error) {
	query := `
		INSERT INTO holdings (owner_id, symbol, shares, avg_cost)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + holdingColumns + `
	`
	return scanHolding(DB.QueryRowContext(ctx, query, ownerID, symbol, shares, avgCost))
}

func ListHoldings(ctx context.Context, ownerID string) ([]models.Holding, error) {
	query := `
		SELECT ` + holdingColumns + `
		FROM holdings
		WHERE owner_id = $1
		ORDER BY symbol
	`
	rows, err := DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	holdings := []models.Holding{}
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, *h)
	}
	return holdings, rows.Err()
}

func UpdateHolding(ctx context.Context, id, ownerID string, shares, avgCost float64) (*models.Holding, error) {
	query := `
		UPDATE holdings
		SET shares = $3, avg_cost = $4, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + holdingColumns + `
	`
	return scanHolding(DB.QueryRowContext(ctx, query, id, ownerID, shares, avgCost))
}

func DeleteHolding(ctx context.Context, id, ownerID string) error {
	res, err := DB.ExecContext(ctx, `
		DELETE FROM holdings
		WHERE id = $1 AND owner_id = $2
	`, id, ownerID)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
