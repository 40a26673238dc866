package session

import (
	"context"

	"github.com/Aworminator/Project-Tracker/identity"
)

// Manager handles session lifecycle operations, delegating to the
// configured Strategy.
type Manager struct {
	strategy Strategy
}

// NewManager creates a session Manager with the given strategy.
func NewManager(strategy Strategy) *Manager {
	return &Manager{strategy: strategy}
}

// Bind creates a session for the identity.
func (m *Manager) Bind(identityID string) (*Session, error) {
	return m.strategy.Create(identityID)
}

// Validate resolves a presented token to its session.
func (m *Manager) Validate(token string) (*Session, error) {
	return m.strategy.Validate(token)
}

// Clear revokes the session for the token.
func (m *Manager) Clear(token string) error {
	return m.strategy.Delete(token)
}

type contextKey struct{ name string }

var identityKey = contextKey{"identity"}

// WithIdentity attaches the authenticated identity to the request
// context. Each request carries its own binding; nothing is shared
// across requests.
func WithIdentity(ctx context.Context, ident *identity.Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// FromContext returns the identity bound to the request, or nil when
// the request is unauthenticated.
func FromContext(ctx context.Context) *identity.Identity {
	ident, _ := ctx.Value(identityKey).(*identity.Identity)
	return ident
}
