package db

import (
	"context"
	"fmt"

	"finsight/api/models"
)

const userColumns = "id, name, email, password_hash, requested_role, is_active, token_version, last_seen_at, created_at"

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.RequestedRole, &u.IsActive, &u.TokenVersion, &u.LastSeenAt, &u.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`
	return scanUser(DB.QueryRowContext(ctx, query, email))
}

func GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`
	return scanUser(DB.QueryRowContext(ctx, query, id))
}

// AccountState is the live state the auth middleware re-checks on every
// request: the active flag and the current token version.
type AccountState struct {
	IsActive     bool
	TokenVersion int
}

func GetAccountState(ctx context.Context, userID string) (*AccountState, error) {
	query := `
		SELECT is_active, token_version
		FROM users
		WHERE id = $1
	`
	state := &AccountState{}
	if err := DB.QueryRowContext(ctx, query, userID).Scan(&state.IsActive, &state.TokenVersion); err != nil {
		return nil, translate(err)
	}
	return state, nil
}

// CreateUser inserts a standalone account (no organization).
func CreateUser(ctx context.Context, name, email, passwordHash, requestedRole string) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, requested_role)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns + `
	`
	return scanUser(DB.QueryRowContext(ctx, query, name, email, passwordHash, requestedRole))
}

// CreateUserWithOrganization creates the account, its organization, and an
// ADMIN membership in one transaction. Any failure rolls back all three.
func CreateUserWithOrganization(ctx context.Context, name, email, passwordHash, requestedRole, orgName string) (*models.User, *models.Organization, error) {
	tx, err := DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin signup tx: %w", err)
	}
	defer tx.Rollback()

	user := &models.User{}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, requested_role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns+`
	`, name, email, passwordHash, requestedRole).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.RequestedRole, &user.IsActive, &user.TokenVersion, &user.LastSeenAt, &user.CreatedAt)
	if err != nil {
		return nil, nil, translate(err)
	}

	org := &models.Organization{}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO organizations (name)
		VALUES ($1)
		RETURNING id, name, created_at
	`, orgName).Scan(&org.ID, &org.Name, &org.CreatedAt)
	if err != nil {
		return nil, nil, translate(err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO memberships (user_id, organization_id, role)
		VALUES ($1, $2, $3)
	`, user.ID, org.ID, models.RoleAdmin)
	if err != nil {
		return nil, nil, translate(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit signup tx: %w", err)
	}
	return user, org, nil
}

// BumpTokenVersion advances the account's version counter, invalidating every
// previously issued token at once.
func BumpTokenVersion(ctx context.Context, userID string) error {
	res, err := DB.ExecContext(ctx, `
		UPDATE users
		SET token_version = token_version + 1
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("bumping token version for user %s: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func TouchLastSeen(ctx context.Context, userID string) error {
	_, err := DB.ExecContext(ctx, `
		UPDATE users
		SET last_seen_at = now()
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("updating last seen for user %s: %w", userID, err)
	}
	return nil
}

// UpdatePassword replaces the hash and bumps the token version so existing
// sessions die with the old password.
func UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	res, err := DB.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $1, token_version = token_version + 1
		WHERE id = $2
	`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("updating password for user %s: %w", userID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetMembership returns the user's membership, or ErrNotFound when the user
// belongs to no organization.
func GetMembership(ctx context.Context, userID string) (*models.Membership, error) {
	query := `
		SELECT user_id, organization_id, role, created_at
		FROM memberships
		WHERE user_id = $1
	`
	m := &models.Membership{}
	if err := DB.QueryRowContext(ctx, query, userID).Scan(&m.UserID, &m.OrganizationID, &m.Role, &m.CreatedAt); err != nil {
		return nil, translate(err)
	}
	return m, nil
}
