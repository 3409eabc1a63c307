package service

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-auth-api/internal/core/auth"
	"go-auth-api/internal/domain"
)

type authFixture struct {
	svc     *AuthService
	twoFA   *TwoFactorService
	users   *memUsers
	tokens  *memTokens
	secrets *memSecrets
	jwter   *auth.JWTer
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	users := newMemUsers()
	tokens := newMemTokens()
	secrets := newMemSecrets()
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: 15 * time.Minute}
	twoFA := NewTwoFactorService(secrets, "test")
	svc := NewAuthService(users, tokens, twoFA, jwter, 30*24*time.Hour, zap.NewNop())
	return &authFixture{svc: svc, twoFA: twoFA, users: users, tokens: tokens, secrets: secrets, jwter: jwter}
}

func (f *authFixture) registerActive(t *testing.T, email, password string) *domain.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), email, password, "")
	require.NoError(t, err)
	return u
}

func TestLoginIssuesVerifiableIdentity(t *testing.T) {
	f := newAuthFixture(t)
	u := f.registerActive(t, "alice@example.com", "password123")

	pair, got, err := f.svc.Login(context.Background(), "alice@example.com", "password123", "")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, u.ID, got.ID)

	claims, err := f.jwter.Parse(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UID)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestLoginEmailIsCaseInsensitive(t *testing.T) {
	f := newAuthFixture(t)
	f.registerActive(t, "Bob@Example.COM", "password123")

	_, _, err := f.svc.Login(context.Background(), "bob@example.com", "password123", "")
	require.NoError(t, err)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.registerActive(t, "alice@example.com", "password123")

	_, _, err := f.svc.Login(context.Background(), "alice@example.com", "nope-nope-nope", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	_, _, err := f.svc.Login(context.Background(), "ghost@example.com", "whatever1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginBlockedUserRejectedDespiteCorrectPassword(t *testing.T) {
	f := newAuthFixture(t)
	u := f.registerActive(t, "banned@example.com", "password123")
	u.Status = domain.StatusBlocked
	require.NoError(t, f.users.Update(context.Background(), u))

	_, _, err := f.svc.Login(context.Background(), "banned@example.com", "password123", "")
	assert.ErrorIs(t, err, domain.ErrAccountBlocked)
	assert.Zero(t, f.tokens.activeCount(u.ID))
}

func TestLoginInactiveUserGetsNoTokens(t *testing.T) {
	f := newAuthFixture(t)
	u := f.registerActive(t, "gone@example.com", "password123")
	u.Status = domain.StatusInactive
	require.NoError(t, f.users.Update(context.Background(), u))

	_, _, err := f.svc.Login(context.Background(), "gone@example.com", "password123", "")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginWithTwoFactor(t *testing.T) {
	f := newAuthFixture(t)
	u := f.registerActive(t, "alice@example.com", "password123")

	setup, err := f.twoFA.Setup(context.Background(), u.ID, u.Email)
	require.NoError(t, err)
	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.twoFA.Enable(context.Background(), u.ID, code))

	// no code provided
	_, _, err = f.svc.Login(context.Background(), "alice@example.com", "password123", "")
	assert.ErrorIs(t, err, domain.ErrTwoFactorRequired)

	// wrong code
	_, _, err = f.svc.Login(context.Background(), "alice@example.com", "password123", "000000")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// fresh code passes
	code, err = totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	_, _, err = f.svc.Login(context.Background(), "alice@example.com", "password123", code)
	require.NoError(t, err)
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newAuthFixture(t)
	u := f.registerActive(t, "alice@example.com", "password123")

	pair, _, err := f.svc.Login(context.Background(), "alice@example.com", "password123", "")
	require.NoError(t, err)

	next, err := f.svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	assert.Equal(t, 1, f.tokens.activeCount(u.ID))

	claims, err := f.jwter.Parse(next.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UID)
}

func TestRefreshReuseDetectedRevokesAllSessions(t *testing.T) {
	f := newAuthFixture(t)
	u := f.registerActive(t, "alice@example.com", "password123")

	pair, _, err := f.svc.Login(context.Background(), "alice@example.com", "password123", "")
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)

	// the stale token comes back: reuse
	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenReuseDetected)
	assert.Zero(t, f.tokens.activeCount(u.ID), "reuse must revoke every session of the user")
}

func TestRefreshExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	f.registerActive(t, "alice@example.com", "password123")

	pair, _, err := f.svc.Login(context.Background(), "alice@example.com", "password123", "")
	require.NoError(t, err)

	f.svc.now = func() time.Time { return time.Now().Add(31 * 24 * time.Hour) }
	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRefreshGarbageToken(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = f.svc.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestRefreshBlockedUser(t *testing.T) {
	f := newAuthFixture(t)
	u := f.registerActive(t, "alice@example.com", "password123")

	pair, _, err := f.svc.Login(context.Background(), "alice@example.com", "password123", "")
	require.NoError(t, err)

	u.Status = domain.StatusBlocked
	require.NoError(t, f.users.Update(context.Background(), u))

	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrAccountBlocked)
	assert.Zero(t, f.tokens.activeCount(u.ID))
}

func TestLogoutRevokes(t *testing.T) {
	f := newAuthFixture(t)
	u := f.registerActive(t, "alice@example.com", "password123")

	pair, _, err := f.svc.Login(context.Background(), "alice@example.com", "password123", "")
	require.NoError(t, err)
	require.Equal(t, 1, f.tokens.activeCount(u.ID))

	require.NoError(t, f.svc.Logout(context.Background(), pair.RefreshToken))
	assert.Zero(t, f.tokens.activeCount(u.ID))

	// revoked token is never accepted again
	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	assert.Error(t, err)

	// repeated logout is a no-op
	assert.NoError(t, f.svc.Logout(context.Background(), pair.RefreshToken))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.registerActive(t, "alice@example.com", "password123")

	_, err := f.svc.Register(context.Background(), "ALICE@example.com", "password456", "")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}
