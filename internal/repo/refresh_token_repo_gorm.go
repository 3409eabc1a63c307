package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"go-auth-api/internal/domain"
)

type RefreshTokenRepo struct{ db *gorm.DB }

func NewRefreshTokenRepo(db *gorm.DB) *RefreshTokenRepo { return &RefreshTokenRepo{db: db} }

func (r *RefreshTokenRepo) Create(ctx context.Context, t *domain.RefreshToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *RefreshTokenRepo) FindByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.WithContext(ctx).First(&t, "token_hash = ?", hash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	return &t, err
}

func (r *RefreshTokenRepo) FindValidByHash(ctx context.Context, hash string, now time.Time) (*domain.RefreshToken, error) {
	var t domain.RefreshToken
	err := r.db.WithContext(ctx).
		First(&t, "token_hash = ? AND revoked = ? AND expires_at > ?", hash, false, now).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	return &t, err
}

// Rotate revokes the old record and inserts the replacement in one
// transaction. The revoke is conditional on revoked=false; if another
// rotation got there first the update hits zero rows and the whole
// operation fails with ErrTokenReuseDetected.
func (r *RefreshTokenRepo) Rotate(ctx context.Context, oldID string, next *domain.RefreshToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.RefreshToken{}).
			Where("id = ? AND revoked = ?", oldID, false).
			Updates(map[string]any{"revoked": true, "replaced_by": next.ID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrTokenReuseDetected
		}
		return tx.Create(next).Error
	})
}

func (r *RefreshTokenRepo) Revoke(ctx context.Context, hash string) error {
	return r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("token_hash = ? AND revoked = ?", hash, false).
		Update("revoked", true).Error
}

func (r *RefreshTokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}
