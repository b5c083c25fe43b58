package token_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aibanker/go-aibanker/token"
	"github.com/aibanker/go-aibanker/users"
)

const (
	secretStr = "test-secret-1234"
	issuer    = "http://localhost:8000"
	audience  = "aibanker-api"
)

func testUser() *users.User {
	return &users.User{
		ID:    42,
		Email: "dealmaker@bank.com",
		Role:  users.RoleAnalyst,
	}
}

func newManager(now func() time.Time, options ...token.ManagerOption) *token.Manager {
	base := []token.ManagerOption{
		token.WithIssuer(issuer),
		token.WithAudience(audience),
		token.WithNowFunc(now),
	}
	return token.New(token.NewHMACSigner(secretStr), append(base, options...)...)
}

func TestManager_CreateAndIntrospect(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m := newManager(func() time.Time { return now })

	raw, err := m.CreateAccessToken(testUser())
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	intro, err := m.Introspection(raw)
	require.NoError(t, err)
	require.True(t, intro.Active)
	require.Equal(t, int64(42), intro.Sub)
	require.Equal(t, "dealmaker@bank.com", intro.Email)
	require.Equal(t, "analyst", intro.Role)
	require.Equal(t, issuer, *intro.Iss)
	require.Equal(t, audience, *intro.Aud)
	require.Equal(t, now.Add(30*time.Minute).Unix(), *intro.Exp)
	require.NotEmpty(t, intro.Jti)
}

func TestManager_ExpiredTokenIsInactive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	current := now
	m := newManager(func() time.Time { return current }, token.WithAccessTokenExpiry(10*time.Minute))

	raw, err := m.CreateAccessToken(testUser())
	require.NoError(t, err)

	current = now.Add(11 * time.Minute)
	intro, err := m.Introspection(raw)
	require.NoError(t, err)
	require.False(t, intro.Active)
}

func TestManager_EmptyAndMalformedTokens(t *testing.T) {
	m := newManager(time.Now)

	intro, err := m.Introspection("")
	require.NoError(t, err)
	require.False(t, intro.Active)

	intro, err = m.Introspection("not.a.jwt")
	require.NoError(t, err)
	require.False(t, intro.Active)
}

func TestManager_WrongSecretIsInactive(t *testing.T) {
	m := newManager(time.Now)
	raw, err := m.CreateAccessToken(testUser())
	require.NoError(t, err)

	other := token.New(token.NewHMACSigner("different-secret"),
		token.WithIssuer(issuer), token.WithAudience(audience))
	intro, err := other.Introspection(raw)
	require.NoError(t, err)
	require.False(t, intro.Active)
}

func TestManager_Revocation(t *testing.T) {
	m := newManager(time.Now)

	raw, err := m.CreateAccessToken(testUser())
	require.NoError(t, err)

	intro, err := m.Introspection(raw)
	require.NoError(t, err)
	require.True(t, intro.Active)

	require.NoError(t, m.RevokeAccessToken(raw))

	intro, err = m.Introspection(raw)
	require.NoError(t, err)
	require.False(t, intro.Active, "a revoked token must introspect as inactive")

	// Other tokens are untouched.
	other, err := m.CreateAccessToken(testUser())
	require.NoError(t, err)
	intro, err = m.Introspection(other)
	require.NoError(t, err)
	require.True(t, intro.Active)
}
