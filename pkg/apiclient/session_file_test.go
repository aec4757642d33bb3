package apiclient

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

var loginAt = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func demoSession() dashboard.Session {
	return dashboard.NewSession("tok-1", dashboard.SessionUser{
		ID:    "user-demo",
		Email: "demo@organizeit.com",
		Role:  dashboard.RoleUser,
		Home:  "/dashboard",
	}, loginAt)
}

func TestSessionFileRoundTrip(t *testing.T) {
	now := loginAt.Add(24 * time.Hour)
	file := SessionFile{Path: filepath.Join(t.TempDir(), "nested", "session.json"), Now: func() time.Time { return now }}

	require.NoError(t, file.Save(demoSession()))
	info, err := os.Stat(file.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	restored, err := file.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", restored.Token)
	assert.Equal(t, "user-demo", restored.User.ID)
	assert.True(t, restored.CreatedAt.Equal(loginAt))
}

func TestSessionFileExpiredIsRemoved(t *testing.T) {
	now := loginAt.Add(dashboard.SessionTTL)
	file := SessionFile{Path: filepath.Join(t.TempDir(), "session.json"), Now: func() time.Time { return now }}
	require.NoError(t, file.Save(demoSession()))

	_, err := file.Load()
	assert.True(t, errors.Is(err, dashboard.ErrSessionExpired))
	_, statErr := os.Stat(file.Path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestSessionFileMissingAndMalformed(t *testing.T) {
	file := SessionFile{Path: filepath.Join(t.TempDir(), "session.json")}
	_, err := file.Load()
	assert.True(t, errors.Is(err, dashboard.ErrUnauthorized))
	assert.NoError(t, file.Clear())

	require.NoError(t, os.WriteFile(file.Path, []byte(`{"user":{},"timestamp":1}`), 0o600))
	_, err = file.Load()
	assert.True(t, errors.Is(err, dashboard.ErrValidation))
	_, statErr := os.Stat(file.Path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}
