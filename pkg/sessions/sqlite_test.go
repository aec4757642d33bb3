package sessions

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

var issuedAt = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func adminSession(token string, at time.Time) dashboard.Session {
	return dashboard.NewSession(token, dashboard.SessionUser{
		ID:    "user-admin",
		Email: "admin@organizeit.com",
		Name:  "Admin User",
		Role:  dashboard.RoleAdmin,
		Home:  "/admin",
	}, at)
}

func openStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "db", "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteStoreSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	require.NoError(t, store.Save(ctx, adminSession("tok-a", issuedAt)))
	got, err := store.Get(ctx, "tok-a")
	require.NoError(t, err)
	assert.Equal(t, "admin@organizeit.com", got.User.Email)
	assert.True(t, got.CreatedAt.Equal(issuedAt))
	assert.True(t, got.ExpiresAt.Equal(issuedAt.Add(dashboard.SessionTTL)))

	// saving again replaces the row
	require.NoError(t, store.Save(ctx, adminSession("tok-a", issuedAt.Add(time.Hour))))
	got, err = store.Get(ctx, "tok-a")
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(issuedAt.Add(time.Hour)))

	require.NoError(t, store.Delete(ctx, "tok-a"))
	require.NoError(t, store.Delete(ctx, "tok-a"))
	_, err = store.Get(ctx, "tok-a")
	assert.True(t, errors.Is(err, dashboard.ErrNotFound))
}

func TestSQLiteStoreRejectsEmptyToken(t *testing.T) {
	err := openStore(t).Save(context.Background(), adminSession("", issuedAt))
	assert.True(t, errors.Is(err, dashboard.ErrValidation))
}

func TestSQLiteStorePurgeExpired(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	require.NoError(t, store.Save(ctx, adminSession("old", issuedAt.Add(-31*24*time.Hour))))
	require.NoError(t, store.Save(ctx, adminSession("fresh", issuedAt)))

	n, err := store.PurgeExpired(ctx, issuedAt)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sessions.db")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, adminSession("keep", issuedAt)))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	got, err := reopened.Get(ctx, "keep")
	require.NoError(t, err)
	assert.Equal(t, "user-admin", got.User.ID)
}

func TestServiceLoginWithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	svc := dashboard.NewService(dashboard.Options{Sessions: store})
	session, err := svc.Login(ctx, "demo@organizeit.com", "demo123")
	require.NoError(t, err)
	viewer, err := svc.Viewer(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-demo", viewer.UserID)

	require.NoError(t, svc.Logout(ctx, session.Token))
	_, err = svc.Viewer(ctx, session.Token)
	assert.True(t, errors.Is(err, dashboard.ErrUnauthorized))
}
