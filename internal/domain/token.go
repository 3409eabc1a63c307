package domain

import (
	"context"
	"time"
)

// RefreshToken stores only the SHA-256 hash of the opaque value handed to
// the client. The raw token never touches the database.
type RefreshToken struct {
	ID         string    `gorm:"primaryKey;size:36"`
	UserID     string    `gorm:"index;size:36;not null"`
	TokenHash  string    `gorm:"uniqueIndex;size:64;not null"`
	IssuedAt   time.Time `gorm:"autoCreateTime"`
	ExpiresAt  time.Time `gorm:"not null"`
	Revoked    bool      `gorm:"not null;default:false"`
	ReplacedBy string    `gorm:"size:36"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

func (t *RefreshToken) ExpiredAt(now time.Time) bool { return !t.ExpiresAt.After(now) }

type RefreshTokenRepository interface {
	Create(ctx context.Context, t *RefreshToken) error
	// FindByHash returns the record regardless of revocation so the caller
	// can detect reuse of an already-rotated token.
	FindByHash(ctx context.Context, hash string) (*RefreshToken, error)
	FindValidByHash(ctx context.Context, hash string, now time.Time) (*RefreshToken, error)
	// Rotate revokes old and inserts next in one transaction. The revoke is
	// a conditional update on the revoked flag; losing the race returns
	// ErrTokenReuseDetected.
	Rotate(ctx context.Context, oldID string, next *RefreshToken) error
	Revoke(ctx context.Context, hash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

type TwoFactorSecret struct {
	UserID    string    `gorm:"primaryKey;size:36"`
	Secret    string    `gorm:"size:64;not null"`
	Enabled   bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (TwoFactorSecret) TableName() string { return "two_factor_secrets" }

type TwoFactorSecretRepository interface {
	Upsert(ctx context.Context, s *TwoFactorSecret) error
	FindByUserID(ctx context.Context, userID string) (*TwoFactorSecret, error)
	SetEnabled(ctx context.Context, userID string, enabled bool) error
	Delete(ctx context.Context, userID string) error
}
