package refresh

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/pkg/errors"

	ierrors "github.com/aibanker/go-aibanker/internal/errors"
)

const defaultTokenLength = 32 // 32 bytes = 256 bits

// Manager handles refresh token creation, validation, and rotation
type Manager struct {
	repo        Repo
	tokenLength int
	expiry      time.Duration
	nowFunc     func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenLength(length int) ManagerOption {
	return func(m *Manager) {
		m.tokenLength = length
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

// NewManager creates a new refresh token manager. expiry is the window a
// token remains exchangeable after issue.
func NewManager(repo Repo, expiry time.Duration, options ...ManagerOption) *Manager {
	m := &Manager{
		repo:        repo,
		tokenLength: defaultTokenLength,
		expiry:      expiry,
		nowFunc:     time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Create generates a new refresh token for the user and stores it.
// A user holds at most one refresh token, so any existing token is
// deleted first.
func (m *Manager) Create(ctx context.Context, userID int64) (string, error) {
	if existingToken, err := m.repo.GetByUserID(ctx, userID); err == nil && existingToken != nil {
		if err := m.repo.Delete(ctx, existingToken.Token); err != nil {
			return "", errors.Wrap(err, "[Manager.Create] delete existing refresh token")
		}
	}

	tokenBytes := make([]byte, m.tokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", errors.Wrap(err, "[Manager.Create] rand.Read")
	}

	tokenStr := hex.EncodeToString(tokenBytes)
	if err := m.repo.Upsert(ctx, &StoredRefreshToken{
		Token:  tokenStr,
		UserID: userID,
		Iat:    m.nowFunc(),
	}); err != nil {
		return "", errors.Wrap(err, "[Manager.Create] store refresh token")
	}

	return tokenStr, nil
}

// Exchange validates the presented token, consumes it, and returns the
// owning user ID. Unknown tokens fail with ErrInvalidRefreshToken;
// expired tokens are deleted and fail with ErrRefreshTokenExpired.
// The caller issues the replacement pair (rotation on every use).
func (m *Manager) Exchange(ctx context.Context, token string) (int64, error) {
	rt, err := m.repo.Get(ctx, token)
	if err != nil || rt == nil {
		return 0, ierrors.ErrInvalidRefreshToken
	}

	if m.nowFunc().Sub(rt.Iat) > m.expiry {
		_ = m.repo.Delete(ctx, token)
		return 0, ierrors.ErrRefreshTokenExpired
	}

	if err := m.repo.Delete(ctx, token); err != nil {
		return 0, errors.Wrap(err, "[Manager.Exchange] delete consumed token")
	}
	return rt.UserID, nil
}

// Invalidate removes a refresh token from storage. Unknown tokens are a no-op.
func (m *Manager) Invalidate(ctx context.Context, token string) {
	_ = m.repo.Delete(ctx, token)
}

// InvalidateUser removes the user's refresh token, ending their session
func (m *Manager) InvalidateUser(ctx context.Context, userID int64) {
	if rt, err := m.repo.GetByUserID(ctx, userID); err == nil && rt != nil {
		_ = m.repo.Delete(ctx, rt.Token)
	}
}

// CleanupExpired removes tokens past the expiry window
func (m *Manager) CleanupExpired(ctx context.Context) error {
	return m.repo.DeleteExpired(ctx, m.nowFunc().Add(-m.expiry))
}
