package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go-auth-api/internal/domain"
)

// In-memory repositories backing the service tests.

type memUsers struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*domain.User{}} }

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if e.Email == strings.ToLower(u.Email) {
			return domain.ErrEmailTaken
		}
	}
	cp := *u
	cp.Email = strings.ToLower(cp.Email)
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUsers) List(_ context.Context, offset, limit int) ([]domain.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	total := int64(len(out))
	if offset >= len(out) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], total, nil
}

func (m *memUsers) Update(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) SoftDelete(_ context.Context, id string) error {
	return m.HardDelete(context.Background(), id)
}

func (m *memUsers) HardDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type memTokens struct {
	mu     sync.Mutex
	byHash map[string]*domain.RefreshToken
}

func newMemTokens() *memTokens { return &memTokens{byHash: map[string]*domain.RefreshToken{}} }

func (m *memTokens) Create(_ context.Context, t *domain.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.byHash[t.TokenHash] = &cp
	return nil
}

func (m *memTokens) FindByHash(_ context.Context, hash string) (*domain.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byHash[hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTokens) FindValidByHash(_ context.Context, hash string, now time.Time) (*domain.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byHash[hash]
	if !ok || t.Revoked || !t.ExpiresAt.After(now) {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTokens) Rotate(_ context.Context, oldID string, next *domain.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.byHash {
		if t.ID == oldID {
			if t.Revoked {
				return domain.ErrTokenReuseDetected
			}
			t.Revoked = true
			t.ReplacedBy = next.ID
			cp := *next
			m.byHash[next.TokenHash] = &cp
			return nil
		}
	}
	return domain.ErrTokenReuseDetected
}

func (m *memTokens) Revoke(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.byHash[hash]; ok {
		t.Revoked = true
	}
	return nil
}

func (m *memTokens) RevokeAllForUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.byHash {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

func (m *memTokens) activeCount(userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.byHash {
		if t.UserID == userID && !t.Revoked {
			n++
		}
	}
	return n
}

type memSecrets struct {
	mu      sync.Mutex
	secrets map[string]*domain.TwoFactorSecret
}

func newMemSecrets() *memSecrets { return &memSecrets{secrets: map[string]*domain.TwoFactorSecret{}} }

func (m *memSecrets) Upsert(_ context.Context, s *domain.TwoFactorSecret) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.secrets[s.UserID] = &cp
	return nil
}

func (m *memSecrets) FindByUserID(_ context.Context, userID string) (*domain.TwoFactorSecret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.secrets[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSecrets) SetEnabled(_ context.Context, userID string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.secrets[userID]
	if !ok {
		return domain.ErrNotFound
	}
	s.Enabled = enabled
	return nil
}

func (m *memSecrets) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.secrets, userID)
	return nil
}
