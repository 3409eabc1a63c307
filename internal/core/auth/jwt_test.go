package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-api/internal/domain"
)

func TestIssueParseRoundtrip(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "test", TTL: 5 * time.Minute}

	tok, err := j.Issue("u-123", domain.RoleAdmin)
	require.NoError(t, err)

	claims, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-123", claims.UID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, "test", claims.Issuer)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "test", TTL: 5 * time.Minute}
	other := &JWTer{Secret: []byte("different"), Issuer: "test", TTL: 5 * time.Minute}

	tok, err := j.Issue("u-123", domain.RoleUser)
	require.NoError(t, err)

	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "one", TTL: 5 * time.Minute}
	other := &JWTer{Secret: []byte("s3cret"), Issuer: "two", TTL: 5 * time.Minute}

	tok, err := j.Issue("u-123", domain.RoleUser)
	require.NoError(t, err)

	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	// leeway is 60s, so push expiry well past it
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "test", TTL: -10 * time.Minute}

	tok, err := j.Issue("u-123", domain.RoleUser)
	require.NoError(t, err)

	_, err = j.Parse(tok)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	j := &JWTer{Secret: []byte("s3cret"), Issuer: "test", TTL: 5 * time.Minute}
	_, err := j.Parse("not.a.jwt")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
