package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-auth-api/internal/core/auth"
	"go-auth-api/internal/domain"
	"go-auth-api/pkg/utils"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// AuthService walks a login attempt through credentials → account status →
// two-factor → session issuance. Every gate fails closed: no tokens leave
// the service unless all of them pass.
type AuthService struct {
	users      domain.UserRepository
	tokens     domain.RefreshTokenRepository
	twoFactor  *TwoFactorService
	jwter      *auth.JWTer
	refreshGen auth.RefreshGenerator
	refreshTTL time.Duration
	log        *zap.Logger
	now        func() time.Time

	// dummyHash keeps the unknown-email path doing the same bcrypt work as
	// the known-email path.
	dummyHash string
}

func NewAuthService(
	users domain.UserRepository,
	tokens domain.RefreshTokenRepository,
	twoFactor *TwoFactorService,
	jwter *auth.JWTer,
	refreshTTL time.Duration,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		twoFactor:  twoFactor,
		jwter:      jwter,
		refreshGen: auth.DefaultRefreshGenerator{},
		refreshTTL: refreshTTL,
		log:        log,
		now:        time.Now,
		dummyHash:  utils.HashPassword("dummy"),
	}
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		if at := strings.IndexByte(email, '@'); at > 0 {
			name = email[:at]
		}
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Email:        email,
		Name:         name,
		PasswordHash: utils.HashPassword(password),
		Role:         domain.RoleUser,
		Status:       domain.StatusActive,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, email, password, totpCode string) (*TokenPair, *domain.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		utils.CheckPassword(password, s.dummyHash)
		return nil, nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}

	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, nil, domain.ErrInvalidCredentials
	}

	if u.Status == domain.StatusBlocked {
		return nil, nil, domain.ErrAccountBlocked
	}
	if !u.Status.CanLogin() {
		return nil, nil, domain.ErrInvalidCredentials
	}

	enabled, err := s.twoFactor.Enabled(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	if enabled {
		if strings.TrimSpace(totpCode) == "" {
			return nil, nil, domain.ErrTwoFactorRequired
		}
		ok, err := s.twoFactor.Verify(ctx, u.ID, totpCode)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			return nil, nil, domain.ErrInvalidCredentials
		}
	}

	pair, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	return pair, u, nil
}

func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*TokenPair, error) {
	if rawToken == "" {
		return nil, domain.ErrInvalidToken
	}
	hash := auth.HashRefreshToken(rawToken)

	rec, err := s.tokens.FindByHash(ctx, hash)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}

	if rec.Revoked {
		// A rotated-out token came back: assume theft and kill every
		// session the owner has.
		if err := s.tokens.RevokeAllForUser(ctx, rec.UserID); err != nil {
			s.log.Error("revoke-all after reuse failed", zap.String("user_id", rec.UserID), zap.Error(err))
		}
		return nil, domain.ErrTokenReuseDetected
	}

	now := s.now()
	if rec.ExpiredAt(now) {
		_ = s.tokens.Revoke(ctx, hash)
		return nil, domain.ErrInvalidToken
	}

	u, err := s.users.FindByID(ctx, rec.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		_ = s.tokens.Revoke(ctx, hash)
		return nil, domain.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if u.Status == domain.StatusBlocked {
		_ = s.tokens.RevokeAllForUser(ctx, u.ID)
		return nil, domain.ErrAccountBlocked
	}

	raw, newHash, err := s.refreshGen.New()
	if err != nil {
		return nil, err
	}
	next := &domain.RefreshToken{
		ID:        utils.NewID(),
		UserID:    u.ID,
		TokenHash: newHash,
		ExpiresAt: now.Add(s.refreshTTL),
	}
	if err := s.tokens.Rotate(ctx, rec.ID, next); err != nil {
		if errors.Is(err, domain.ErrTokenReuseDetected) {
			// lost the CAS: a concurrent refresh already consumed this token
			if e := s.tokens.RevokeAllForUser(ctx, u.ID); e != nil {
				s.log.Error("revoke-all after rotate race failed", zap.String("user_id", u.ID), zap.Error(e))
			}
		}
		return nil, err
	}

	access, err := s.jwter.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresIn:    int64(s.jwter.TTL.Seconds()),
	}, nil
}

// Logout revokes the presented refresh token. Unknown or already-revoked
// tokens are a no-op so repeated logouts stay idempotent.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	hash := auth.HashRefreshToken(rawToken)
	if _, err := s.tokens.FindValidByHash(ctx, hash, s.now()); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	return s.tokens.Revoke(ctx, hash)
}

// RevokeAll drops every active session of a user. Used by the ban flow.
func (s *AuthService) RevokeAll(ctx context.Context, userID string) error {
	return s.tokens.RevokeAllForUser(ctx, userID)
}

func (s *AuthService) issueSession(ctx context.Context, u *domain.User) (*TokenPair, error) {
	access, err := s.jwter.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	raw, hash, err := s.refreshGen.New()
	if err != nil {
		return nil, err
	}
	rec := &domain.RefreshToken{
		ID:        utils.NewID(),
		UserID:    u.ID,
		TokenHash: hash,
		ExpiresAt: s.now().Add(s.refreshTTL),
	}
	if err := s.tokens.Create(ctx, rec); err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresIn:    int64(s.jwter.TTL.Seconds()),
	}, nil
}
