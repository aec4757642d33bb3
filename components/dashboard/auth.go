package dashboard

import (
	"context"
	"crypto/subtle"
)

// Roles assigned to the demo accounts.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Authenticator checks login credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (SessionUser, error)
}

type demoAccount struct {
	password string
	user     SessionUser
}

// DemoAuthenticator accepts the two fixed demo accounts and nothing else.
type DemoAuthenticator struct {
	accounts map[string]demoAccount
}

// NewDemoAuthenticator builds the authenticator with the demo and admin logins.
func NewDemoAuthenticator() *DemoAuthenticator {
	return &DemoAuthenticator{accounts: map[string]demoAccount{
		"demo@organizeit.com": {
			password: "demo123",
			user:     SessionUser{ID: "user-demo", Email: "demo@organizeit.com", Name: "Demo User", Role: RoleUser, Home: "/dashboard"},
		},
		"admin@organizeit.com": {
			password: "admin123",
			user:     SessionUser{ID: "user-admin", Email: "admin@organizeit.com", Name: "Admin User", Role: RoleAdmin, Home: "/admin"},
		},
	}}
}

// Authenticate returns the account for the credential pair or
// ErrInvalidCredentials. Emails match exactly, without case folding.
func (a *DemoAuthenticator) Authenticate(_ context.Context, email, password string) (SessionUser, error) {
	account, ok := a.accounts[email]
	if !ok {
		return SessionUser{}, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(account.password), []byte(password)) != 1 {
		return SessionUser{}, ErrInvalidCredentials
	}
	return account.user, nil
}

// HomeRoute returns the dashboard route for a role.
func HomeRoute(role string) string {
	if role == RoleAdmin {
		return "/admin"
	}
	return "/dashboard"
}

// RoleAuthorizer allows a feed when it has no roles or the viewer holds one of
// them. Admins see everything.
type RoleAuthorizer struct{}

// CanViewFeed implements Authorizer.
func (RoleAuthorizer) CanViewFeed(_ context.Context, viewer ViewerContext, def FeedDefinition) bool {
	if len(def.Roles) == 0 || viewer.HasRole(RoleAdmin) {
		return true
	}
	for _, role := range def.Roles {
		if viewer.HasRole(role) {
			return true
		}
	}
	return false
}

type allowAllAuthorizer struct{}

func (allowAllAuthorizer) CanViewFeed(context.Context, ViewerContext, FeedDefinition) bool {
	return true
}
