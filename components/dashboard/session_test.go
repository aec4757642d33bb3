package dashboard

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var demoUser = SessionUser{ID: "user-demo", Email: "demo@organizeit.com", Role: RoleUser, Home: "/dashboard"}

func blobAt(t *testing.T, user SessionUser, ts time.Time) []byte {
	t.Helper()
	data, err := json.Marshal(SessionBlob{User: user, Timestamp: ts.UnixMilli(), Token: "tok"})
	require.NoError(t, err)
	return data
}

func TestRestoreSession(t *testing.T) {
	cases := []struct {
		name string
		blob []byte
		err  error
	}{
		{name: "fresh", blob: blobAt(t, demoUser, fixedNow.Add(-time.Hour))},
		{name: "just under ttl", blob: blobAt(t, demoUser, fixedNow.Add(-SessionTTL+time.Second))},
		{name: "exactly ttl", blob: blobAt(t, demoUser, fixedNow.Add(-SessionTTL)), err: ErrSessionExpired},
		{name: "older than ttl", blob: blobAt(t, demoUser, fixedNow.Add(-31*24*time.Hour)), err: ErrSessionExpired},
		{name: "small clock skew", blob: blobAt(t, demoUser, fixedNow.Add(30*time.Second))},
		{name: "future", blob: blobAt(t, demoUser, fixedNow.Add(time.Hour)), err: ErrValidation},
		{name: "invalid user", blob: blobAt(t, SessionUser{ID: "x", Email: "nope"}, fixedNow), err: ErrValidation},
		{name: "missing timestamp", blob: []byte(`{"user":{"id":"user-demo","email":"demo@organizeit.com","role":"user"}}`), err: ErrValidation},
		{name: "garbage", blob: []byte(`{not json`), err: ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session, err := RestoreSession(tc.blob, fixedNow)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, demoUser, session.User)
			assert.Equal(t, "tok", session.Token)
			assert.False(t, session.Expired(fixedNow))
		})
	}
}

func TestEncodeSessionRestores(t *testing.T) {
	session := NewSession("abc", demoUser, fixedNow)
	blob, err := EncodeSession(session)
	require.NoError(t, err)

	restored, err := RestoreSession(blob, fixedNow.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, session.Token, restored.Token)
	assert.True(t, session.ExpiresAt.Equal(restored.ExpiresAt))
}

func TestSessionViewer(t *testing.T) {
	viewer := NewSession("abc", demoUser, fixedNow).Viewer()
	assert.Equal(t, "user-demo", viewer.UserID)
	assert.True(t, viewer.HasRole(RoleUser))
	assert.False(t, viewer.HasRole(RoleAdmin))
	assert.Equal(t, "abc", viewer.Token)
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, Session{}), ErrValidation)
	require.NoError(t, store.Save(ctx, NewSession("abc", demoUser, fixedNow)))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, demoUser, got.User)

	require.NoError(t, store.Delete(ctx, "abc"))
	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDemoAuthenticator(t *testing.T) {
	auth := NewDemoAuthenticator()
	ctx := context.Background()

	user, err := auth.Authenticate(ctx, "admin@organizeit.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, user.Role)
	assert.Equal(t, HomeRoute(RoleAdmin), user.Home)

	_, err = auth.Authenticate(ctx, "admin@organizeit.com", "demo123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Authenticate(ctx, "someone@organizeit.com", "demo123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	for _, email := range []string{"ADMIN@organizeit.com", " admin@organizeit.com", "admin@organizeit.com "} {
		_, err = auth.Authenticate(ctx, email, "admin123")
		assert.ErrorIs(t, err, ErrInvalidCredentials, email)
	}

	assert.Equal(t, "/dashboard", HomeRoute(RoleUser))
	assert.Equal(t, "/dashboard", HomeRoute("guest"))
}

func TestRoleAuthorizer(t *testing.T) {
	authz := RoleAuthorizer{}
	ctx := context.Background()
	open := FeedDefinition{Code: "a"}
	adminOnly := FeedDefinition{Code: "b", Roles: []string{RoleAdmin}}
	finance := FeedDefinition{Code: "c", Roles: []string{"finance"}}

	user := ViewerContext{UserID: "u", Roles: []string{RoleUser}}
	admin := ViewerContext{UserID: "a", Roles: []string{RoleAdmin}}
	fin := ViewerContext{UserID: "f", Roles: []string{"finance"}}

	assert.True(t, authz.CanViewFeed(ctx, user, open))
	assert.False(t, authz.CanViewFeed(ctx, user, adminOnly))
	assert.True(t, authz.CanViewFeed(ctx, admin, adminOnly))
	assert.True(t, authz.CanViewFeed(ctx, admin, finance))
	assert.True(t, authz.CanViewFeed(ctx, fin, finance))
}
