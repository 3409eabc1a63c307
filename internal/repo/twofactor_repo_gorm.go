package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go-auth-api/internal/domain"
)

type TwoFactorRepo struct{ db *gorm.DB }

func NewTwoFactorRepo(db *gorm.DB) *TwoFactorRepo { return &TwoFactorRepo{db: db} }

func (r *TwoFactorRepo) Upsert(ctx context.Context, s *domain.TwoFactorSecret) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"secret", "enabled", "updated_at"}),
	}).Create(s).Error
}

func (r *TwoFactorRepo) FindByUserID(ctx context.Context, userID string) (*domain.TwoFactorSecret, error) {
	var s domain.TwoFactorSecret
	err := r.db.WithContext(ctx).First(&s, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	return &s, err
}

func (r *TwoFactorRepo) SetEnabled(ctx context.Context, userID string, enabled bool) error {
	res := r.db.WithContext(ctx).Model(&domain.TwoFactorSecret{}).
		Where("user_id = ?", userID).
		Update("enabled", enabled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TwoFactorRepo) Delete(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.TwoFactorSecret{}).Error
}
