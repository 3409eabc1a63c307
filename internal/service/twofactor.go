package service

import (
	"context"
	"errors"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"go-auth-api/internal/domain"
)

// TwoFactorService manages TOTP secrets. A secret is stored disabled on
// setup and flipped to enabled only after the user proves they can produce
// a valid code.
type TwoFactorService struct {
	secrets domain.TwoFactorSecretRepository
	issuer  string
	now     func() time.Time
}

func NewTwoFactorService(secrets domain.TwoFactorSecretRepository, issuer string) *TwoFactorService {
	return &TwoFactorService{secrets: secrets, issuer: issuer, now: time.Now}
}

type TwoFactorSetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
}

func (s *TwoFactorService) Setup(ctx context.Context, userID, accountName string) (*TwoFactorSetup, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: accountName,
	})
	if err != nil {
		return nil, err
	}
	rec := &domain.TwoFactorSecret{
		UserID:  userID,
		Secret:  key.Secret(),
		Enabled: false,
	}
	if err := s.secrets.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	return &TwoFactorSetup{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

// Enable turns the stored secret on after verifying one code.
func (s *TwoFactorService) Enable(ctx context.Context, userID, code string) error {
	rec, err := s.secrets.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.validate(code, rec.Secret) {
		return domain.ErrInvalidCredentials
	}
	return s.secrets.SetEnabled(ctx, userID, true)
}

func (s *TwoFactorService) Disable(ctx context.Context, userID string) error {
	err := s.secrets.Delete(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	return err
}

// Enabled reports whether the user has an active secret.
func (s *TwoFactorService) Enabled(ctx context.Context, userID string) (bool, error) {
	rec, err := s.secrets.FindByUserID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return rec.Enabled, nil
}

// Verify checks a login-time code against the user's enabled secret.
func (s *TwoFactorService) Verify(ctx context.Context, userID, code string) (bool, error) {
	rec, err := s.secrets.FindByUserID(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !rec.Enabled {
		return false, nil
	}
	return s.validate(code, rec.Secret), nil
}

func (s *TwoFactorService) validate(code, secret string) bool {
	ok, err := totp.ValidateCustom(code, secret, s.now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1, // tolerate one step of clock drift either way
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
