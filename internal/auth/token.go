package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Static errors for err113 compliance.
var (
	ErrEmptyToken = errors.New("token is empty")
)

// TokenManager supplies the bearer token for outgoing requests.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
}

// StaticTokenManager returns the token it was built with. AAP tokens are
// issued by the sign-in resolver, so the client never refreshes them.
type StaticTokenManager struct {
	token string
}

// NewStaticTokenManager creates a token manager for a fixed token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	return &StaticTokenManager{token: token}
}

// GetToken returns the token.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	if m.token == "" {
		return "", ErrEmptyToken
	}

	return m.token, nil
}

// Fingerprint returns a short, non-reversible identifier of a token, safe to
// use in cache keys and logs.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:8])
}
