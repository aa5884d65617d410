package db

import (
	"context"
	"fmt"

	"finsight/api/models"
)

func ListTeamMembers(ctx context.Context, orgID string) ([]models.TeamMember, error) {
	query := `
		SELECT u.id, u.name, u.email, m.role, u.is_active, m.created_at, u.last_seen_at
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.organization_id = $1
		ORDER BY m.created_at
	`
	rows, err := DB.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	members := []models.TeamMember{}
	for rows.Next() {
		var m models.TeamMember
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.Role, &m.IsActive, &m.JoinedAt, &m.LastSeenAt); err != nil {
			return nil, translate(err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// AddTeamMember creates the invited account and its membership atomically.
func AddTeamMember(ctx context.Context, orgID, name, email, passwordHash string, role models.Role) (*models.User, error) {
	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin add-member tx: %w", err)
	}
	defer tx.Rollback()

	user := &models.User{}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, requested_role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns+`
	`, name, email, passwordHash, string(role)).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.RequestedRole, &user.IsActive, &user.TokenVersion, &user.LastSeenAt, &user.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO memberships (user_id, organization_id, role)
		VALUES ($1, $2, $3)
	`, user.ID, orgID, role)
	if err != nil {
		return nil, translate(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit add-member tx: %w", err)
	}
	return user, nil
}

func UpdateTeamMemberRole(ctx context.Context, orgID, userID string, role models.Role) error {
	res, err := DB.ExecContext(ctx, `
		UPDATE memberships
		SET role = $3
		WHERE organization_id = $1 AND user_id = $2
	`, orgID, userID, role)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetMemberActivation flips the account's active flag and, on deactivation,
// bumps the token version so outstanding sessions end immediately.
func SetMemberActivation(ctx context.Context, orgID, userID string, active bool) error {
	var query string
	if active {
		query = `
			UPDATE users
			SET is_active = true
			WHERE id = $1 AND id IN (SELECT user_id FROM memberships WHERE organization_id = $2)
		`
	} else {
		query = `
			UPDATE users
			SET is_active = false, token_version = token_version + 1
			WHERE id = $1 AND id IN (SELECT user_id FROM memberships WHERE organization_id = $2)
		`
	}
	res, err := DB.ExecContext(ctx, query, userID, orgID)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func RemoveTeamMember(ctx context.Context, orgID, userID string) error {
	res, err := DB.ExecContext(ctx, `
		DELETE FROM memberships
		WHERE organization_id = $1 AND user_id = $2
	`, orgID, userID)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
