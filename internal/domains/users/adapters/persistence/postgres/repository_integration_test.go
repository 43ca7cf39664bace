//go:build integration

package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/go-shop-api-server/internal/domains/users/domain"
	"github.com/Apurer/go-shop-api-server/internal/domains/users/ports"
	"github.com/Apurer/go-shop-api-server/internal/platform/migrations"
)

func setupUsersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("shop_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func TestRepository_SaveAndGetByUsername(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	user, err := domain.NewUser(0, "alice", "secret")
	require.NoError(t, err)
	err = user.UpdateProfile("Alice", "Doe", "alice@example.com", "1234")
	require.NoError(t, err)
	err = user.SetRoles([]string{"customer", "admin"})
	require.NoError(t, err)

	saved, err := repo.Save(ctx, user)
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, "alice", saved.Username)

	fetched, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, fetched.ID)
	assert.Equal(t, saved.Email, fetched.Email)
	assert.ElementsMatch(t, []string{"customer", "admin"}, fetched.Roles)
	assert.True(t, fetched.IsAdmin())
}

func TestRepository_UpdateProfileAndActivity(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	user, err := domain.NewUser(0, "alice", "secret")
	require.NoError(t, err)
	saved, err := repo.Save(ctx, user)
	require.NoError(t, err)

	err = saved.UpdateProfile("Alice", "Smith", "alice.smith@example.com", "9876")
	require.NoError(t, err)
	saved.Touch(time.Now())

	updated, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, updated.ID)
	assert.Equal(t, "alice.smith@example.com", updated.Email)
	assert.False(t, updated.LastSeen.IsZero())
}

func TestRepository_ListInactiveSince(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()
	cutoff := time.Now().Add(-30 * 24 * time.Hour)

	idle, err := domain.NewUser(0, "idle", "secret")
	require.NoError(t, err)
	idle.Touch(cutoff.Add(-time.Hour))
	_, err = repo.Save(ctx, idle)
	require.NoError(t, err)

	// Never seen at all counts as inactive.
	fresh, err := domain.NewUser(0, "neverseen", "secret")
	require.NoError(t, err)
	_, err = repo.Save(ctx, fresh)
	require.NoError(t, err)

	active, err := domain.NewUser(0, "active", "secret")
	require.NoError(t, err)
	active.Touch(time.Now())
	_, err = repo.Save(ctx, active)
	require.NoError(t, err)

	inactive, err := repo.ListInactiveSince(ctx, cutoff)
	require.NoError(t, err)
	usernames := make([]string, 0, len(inactive))
	for _, u := range inactive {
		usernames = append(usernames, u.Username)
	}
	assert.ElementsMatch(t, []string{"idle", "neverseen"}, usernames)
}

func TestRepository_ListAndDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		username := fmt.Sprintf("user%d", i)
		user, err := domain.NewUser(0, username, "pw123")
		require.NoError(t, err)
		_, err = repo.Save(ctx, user)
		require.NoError(t, err)
	}

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	err = repo.Delete(ctx, "user2")
	require.NoError(t, err)
	_, err = repo.GetByUsername(ctx, "user2")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	err = repo.Delete(ctx, "user2")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSessionStore_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	store := NewSessionStore(db)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "alice", "token-live", time.Now().Add(time.Hour)))
	require.NoError(t, store.Save(ctx, "bob", "token-stale", time.Now().Add(-time.Hour)))

	username, err := store.Lookup(ctx, "token-live")
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	_, err = store.Lookup(ctx, "token-stale")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	purged, err := store.PurgeExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	require.NoError(t, store.Delete(ctx, "alice"))
	_, err = store.Lookup(ctx, "token-live")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}
