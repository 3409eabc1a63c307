package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"go-auth-api/internal/core/cache"
	"go-auth-api/internal/domain"
)

const userCacheTTL = 5 * time.Minute

type UserService struct {
	users  domain.UserRepository
	tokens domain.RefreshTokenRepository
	cache  *cache.Cache
	log    *zap.Logger
}

func NewUserService(users domain.UserRepository, tokens domain.RefreshTokenRepository, c *cache.Cache, log *zap.Logger) *UserService {
	return &UserService{users: users, tokens: tokens, cache: c, log: log}
}

type UserPage struct {
	Total int64         `json:"total"`
	Items []domain.User `json:"items"`
}

func (s *UserService) List(ctx context.Context, offset, limit int) (*UserPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	items, total, err := s.users.List(ctx, offset, limit)
	if err != nil {
		return nil, err
	}
	return &UserPage{Total: total, Items: items}, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if s.cache == nil {
		return s.users.FindByID(ctx, id)
	}
	u, err := cache.GetOrLoadJSON[domain.User](s.cache, ctx, userCacheKey(id), userCacheTTL,
		func(ctx context.Context) (*domain.User, error) {
			return s.users.FindByID(ctx, id)
		})
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.users.FindByEmail(ctx, email)
}

type UserUpdate struct {
	Name *string `json:"name"`
}

func (s *UserService) UpdateMe(ctx context.Context, id string, upd UserUpdate) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return u, nil
}

type AdminUserUpdate struct {
	Name   *string        `json:"name"`
	Status *domain.Status `json:"status"`
}

func (s *UserService) AdminUpdate(ctx context.Context, id string, upd AdminUserUpdate) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		u.Name = *upd.Name
	}
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return nil, domain.ErrValidation
		}
		u.Status = *upd.Status
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return u, nil
}

// Deactivate is the self-service "delete my account": the row stays, status
// flips to inactive and the account can be reactivated later.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, domain.StatusInactive)
}

func (s *UserService) SoftDelete(ctx context.Context, id string) error {
	if err := s.setStatus(ctx, id, domain.StatusSoftDeleted); err != nil {
		return err
	}
	return s.users.SoftDelete(ctx, id)
}

func (s *UserService) HardDelete(ctx context.Context, id string) error {
	if err := s.users.HardDelete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Ban blocks the account and revokes every refresh token it holds, so the
// ban takes effect at the next token use rather than the next login.
func (s *UserService) Ban(ctx context.Context, id string) error {
	if err := s.setStatus(ctx, id, domain.StatusBlocked); err != nil {
		return err
	}
	if err := s.tokens.RevokeAllForUser(ctx, id); err != nil {
		s.log.Error("revoke tokens on ban failed", zap.String("user_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *UserService) AssignRole(ctx context.Context, id string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, domain.ErrValidation
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Role = role
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return u, nil
}

func (s *UserService) setStatus(ctx context.Context, id string, st domain.Status) error {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	u.Status = st
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *UserService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, userCacheKey(id)); err != nil {
		s.log.Warn("user cache invalidate failed", zap.String("user_id", id), zap.Error(err))
	}
}

func userCacheKey(id string) string { return "user:" + id }
