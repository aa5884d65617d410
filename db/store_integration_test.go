//go:build integration

package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finsight/api/models"
)

func requirePostgres(t *testing.T) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, InitDB(dsn))
}

func TestGoalRoundTrip(t *testing.T) {
	requirePostgres(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, "Goal Tester", uuid.NewString()+"@integration.test", "x", "")
	require.NoError(t, err)
	t.Cleanup(func() { DB.Exec("DELETE FROM users WHERE id = $1", user.ID) })

	target := time.Now().Add(90 * 24 * time.Hour).UTC().Truncate(time.Second)
	created, err := CreateGoal(ctx, user.ID, "House deposit", 25000, 4321.50, &target)
	require.NoError(t, err)

	fetched, err := GetGoal(ctx, created.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Equal(t, "House deposit", fetched.Name)
	assert.Equal(t, 25000.0, fetched.TargetAmount)
	assert.Equal(t, 4321.50, fetched.CurrentAmount)
	require.NotNil(t, fetched.TargetDate)
	assert.WithinDuration(t, target, *fetched.TargetDate, time.Second)
}

func TestCreateUserWithOrganizationAtomic(t *testing.T) {
	requirePostgres(t)
	ctx := context.Background()

	email := uuid.NewString() + "@integration.test"
	user, org, err := CreateUserWithOrganization(ctx, "Founder", email, "x", "Investment", "Atomic Org "+uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() {
		DB.Exec("DELETE FROM organizations WHERE id = $1", org.ID)
		DB.Exec("DELETE FROM users WHERE id = $1", user.ID)
	})

	assert.Equal(t, "Investment", user.RequestedRole)

	membership, err := GetMembership(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, org.ID, membership.OrganizationID)
	assert.Equal(t, models.RoleAdmin, membership.Role)

	var members int
	require.NoError(t, DB.QueryRow("SELECT count(*) FROM memberships WHERE user_id = $1", user.ID).Scan(&members))
	assert.Equal(t, 1, members)
}

func TestCreateUserWithOrganizationRollsBackOnMembershipFailure(t *testing.T) {
	requirePostgres(t)
	ctx := context.Background()

	// Break the last statement of the transaction so the earlier inserts
	// must roll back.
	_, err := DB.Exec("ALTER TABLE memberships RENAME TO memberships_hidden")
	require.NoError(t, err)
	defer DB.Exec("ALTER TABLE memberships_hidden RENAME TO memberships")

	email := uuid.NewString() + "@integration.test"
	orgName := "Rollback Org " + uuid.NewString()
	_, _, err = CreateUserWithOrganization(ctx, "Founder", email, "x", "Investment", orgName)
	require.Error(t, err)

	_, err = GetUserByEmail(ctx, email)
	assert.True(t, errors.Is(err, ErrNotFound), "account row must not persist")

	var orgs int
	require.NoError(t, DB.QueryRow("SELECT count(*) FROM organizations WHERE name = $1", orgName).Scan(&orgs))
	assert.Equal(t, 0, orgs, "organization row must not persist")
}
