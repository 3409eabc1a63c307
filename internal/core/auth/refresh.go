package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// RefreshGenerator mints opaque refresh tokens. The raw value goes to the
// client, only the hash is persisted.
type RefreshGenerator interface {
	New() (raw string, hash string, err error)
}

type DefaultRefreshGenerator struct{}

func (DefaultRefreshGenerator) New() (string, string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate refresh token: %w", err)
	}
	raw := base64.RawURLEncoding.EncodeToString(buf)
	return raw, HashRefreshToken(raw), nil
}

// HashRefreshToken maps a raw token to its stored lookup key.
func HashRefreshToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
