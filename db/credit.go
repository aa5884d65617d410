package db

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"

	"finsight/api/models"
)

// GetCreditProfile loads the user's stored credit snapshot with its accounts.
func GetCreditProfile(ctx context.Context, userID string) (*models.CreditProfile, error) {
	profile := &models.CreditProfile{UserID: userID}
	err := DB.QueryRowContext(ctx, `
		SELECT score, on_time_payments, total_payments
		FROM credit_profiles
		WHERE user_id = $1
	`, userID).Scan(&profile.Score, &profile.OnTimePayments, &profile.TotalPayments)
	if err != nil {
		return nil, translate(err)
	}

	rows, err := DB.QueryContext(ctx, `
		SELECT id, name, balance, credit_limit
		FROM credit_accounts
		WHERE user_id = $1
		ORDER BY name
	`, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	for rows.Next() {
		var a models.CreditAccount
		if err := rows.Scan(&a.ID, &a.Name, &a.Balance, &a.CreditLimit); err != nil {
			return nil, translate(err)
		}
		profile.Accounts = append(profile.Accounts, a)
	}
	return profile, rows.Err()
}

// EnsureCreditProfile returns the stored profile, seeding a deterministic demo
// profile on first access. The seed derives from the user id alone, so the
// same user always sees the same numbers. Profile and accounts are inserted
// in one transaction.
func EnsureCreditProfile(ctx context.Context, userID string) (*models.CreditProfile, error) {
	profile, err := GetCreditProfile(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	seeded := seedCreditProfile(userID)

	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin credit seed tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO credit_profiles (user_id, score, on_time_payments, total_payments)
		VALUES ($1, $2, $3, $4)
	`, userID, seeded.Score, seeded.OnTimePayments, seeded.TotalPayments)
	if err != nil {
		// Lost a race with a concurrent first access; read the winner's row.
		if errors.Is(translate(err), ErrDuplicate) {
			return GetCreditProfile(ctx, userID)
		}
		return nil, translate(err)
	}

	for _, a := range seeded.Accounts {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO credit_accounts (user_id, name, balance, credit_limit)
			VALUES ($1, $2, $3, $4)
		`, userID, a.Name, a.Balance, a.CreditLimit)
		if err != nil {
			return nil, translate(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit credit seed tx: %w", err)
	}
	return GetCreditProfile(ctx, userID)
}

// seedCreditProfile builds the demo snapshot from a stable hash of the user
// id: score in [620, 819], utilization inputs derived from the same hash.
func seedCreditProfile(userID string) models.CreditProfile {
	h := fnv.New64a()
	h.Write([]byte(userID))
	seed := h.Sum64()

	score := 620 + int(seed%200)
	onTime := 20 + int((seed>>8)%16)
	balancePct := 10 + float64((seed>>16)%45)

	limit1 := 5000.0
	limit2 := 12000.0
	return models.CreditProfile{
		UserID:         userID,
		Score:          score,
		OnTimePayments: onTime,
		TotalPayments:  onTime + int((seed>>24)%3),
		Accounts: []models.CreditAccount{
			{Name: "Everyday Card", Balance: limit1 * balancePct / 100, CreditLimit: limit1},
			{Name: "Rewards Card", Balance: limit2 * balancePct / 100, CreditLimit: limit2},
		},
	}
}
