package flow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Aworminator/Project-Tracker/audit"
	"github.com/Aworminator/Project-Tracker/domain"
	"github.com/Aworminator/Project-Tracker/identity"
	"github.com/Aworminator/Project-Tracker/logger"
	"go.uber.org/zap"
)

// Authenticator validates a presented credential and returns the
// authenticated identity. Implemented by LoginFlow and decorated by
// LockoutAuthenticator.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*identity.Identity, error)
}

// LoginFlow authenticates an email/password pair against the store.
type LoginFlow struct {
	store   IdentityStore
	hasher  domain.Hasher
	auditor audit.Recorder
}

// NewLoginFlow creates a login flow. auditor may be nil.
func NewLoginFlow(store IdentityStore, hasher domain.Hasher, auditor audit.Recorder) *LoginFlow {
	return &LoginFlow{store: store, hasher: hasher, auditor: auditor}
}

// Authenticate resolves the identity for the credential.
//
// An unknown email and a wrong password both come back as
// domain.ErrBadCredential; callers render them identically so
// unauthenticated requests cannot probe which accounts exist. A
// suspended account is rejected even when the credential is correct.
func (f *LoginFlow) Authenticate(ctx context.Context, email, password string) (*identity.Identity, error) {
	email = identity.NormalizeEmail(email)

	ident, err := f.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			f.record(ctx, "identity.login.failure", "", "failure", "unknown email")
			return nil, domain.ErrBadCredential
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if !f.hasher.Compare(password, ident.PasswordHash) {
		f.record(ctx, "identity.login.failure", ident.ID, "failure", "bad credential")
		return nil, domain.ErrBadCredential
	}

	if ident.Suspended() {
		f.record(ctx, "identity.login.blocked", ident.ID, "blocked", "account suspended")
		return nil, domain.ErrSuspended
	}

	f.record(ctx, "identity.login.success", ident.ID, "success", "")
	return ident, nil
}

func (f *LoginFlow) record(ctx context.Context, eventType, actorID, status, message string) {
	if f.auditor == nil {
		return
	}
	err := f.auditor.Record(ctx, &audit.Event{
		Type:      eventType,
		ActorID:   actorID,
		Status:    status,
		Message:   message,
		CreatedAt: time.Now(),
	})
	if err != nil && logger.Log != nil {
		logger.Log.Warn("audit record failed", zap.String("type", eventType), zap.Error(err))
	}
}
