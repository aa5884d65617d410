package db

import (
	"context"
	"time"

	"finsight/api/models"
)

const goalColumns = "id, owner_id, name, target_amount, current_amount, target_date, created_at, updated_at"

func scanGoal(row interface{ Scan(...any) error }) (*models.Goal, error) {
	g := &models.Goal{}
	err := row.Scan(&g.ID, &g.OwnerID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return g, nil
}

func CreateGoal(ctx context.Context, ownerID, name string, target, current float64, targetDate *time.Time) (*models.Goal, error) {
	query := `
		INSERT INTO goals (owner_id, name, target_amount, current_amount, target_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + goalColumns + `
	`
	return scanGoal(DB.QueryRowContext(ctx, query, ownerID, name, target, current, targetDate))
}

// GetGoal filters by owner so a foreign goal is indistinguishable from a
// missing one.
func GetGoal(ctx context.Context, id, ownerID string) (*models.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE id = $1 AND owner_id = $2
	`
	return scanGoal(DB.QueryRowContext(ctx, query, id, ownerID))
}

func ListGoals(ctx context.Context, ownerID string) ([]models.Goal, error) {
	query := `
		SELECT ` + goalColumns + `
		FROM goals
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := DB.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func UpdateGoal(ctx context.Context, id, ownerID, name string, target, current float64, targetDate *time.Time) (*models.Goal, error) {
	query := `
		UPDATE goals
		SET name = $3, target_amount = $4, current_amount = $5, target_date = $6, updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + goalColumns + `
	`
	return scanGoal(DB.QueryRowContext(ctx, query, id, ownerID, name, target, current, targetDate))
}

func DeleteGoal(ctx context.Context, id, ownerID string) error {
	res, err := DB.ExecContext(ctx, `
		DELETE FROM goals
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
