// Package flow implements the credential lifecycle: registration,
// login, and the brute-force lockout decorator around login.
//
// Both flows treat the datastore as the sole arbiter of uniqueness and
// state. The email pre-check during registration is an optimization for
// a friendlier error; the unique index on the users table is what
// actually prevents two concurrent registrations from both succeeding.
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

// IdentityStore is the datastore boundary the flows cross.
type IdentityStore interface {
	// FindByEmail looks up an identity by canonical (lowercased) email.
	// Returns domain.ErrNotFound when no row exists.
	FindByEmail(ctx context.Context, email string) (*identity.Identity, error)

	// Create inserts the identity as a single statement. Returns
	// domain.ErrEmailTaken when the unique email constraint rejects it.
	Create(ctx context.Context, ident *identity.Identity) error
}

// RegistrationFlow orchestrates uniqueness checking, credential hashing,
// and identity creation.
type RegistrationFlow struct {
	store     IdentityStore
	hasher    domain.Hasher
	generator domain.IDGenerator
	auditor   audit.Recorder
}

// NewRegistrationFlow creates a registration flow. auditor may be nil.
func NewRegistrationFlow(store IdentityStore, hasher domain.Hasher, gen domain.IDGenerator, auditor audit.Recorder) *RegistrationFlow {
	return &RegistrationFlow{store: store, hasher: hasher, generator: gen, auditor: auditor}
}

// Register creates a new member identity for the email, or reports why
// it cannot. The insert is a single statement carrying every field,
// names included; on datastore failure no partial identity is left
// behind.
func (f *RegistrationFlow) Register(ctx context.Context, email, password, firstName, lastName string) (*identity.Identity, error) {
	email = identity.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	// Checking: a pre-check for a friendlier error. The unique index is
	// the real guarantee; a racing duplicate still fails at insert.
	if _, err := f.store.FindByEmail(ctx, email); err == nil {
		f.record(ctx, "identity.registration.failure", "", "failure", "email taken")
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	// Committing: hash, then one constrained insert.
	hash, err := f.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	now := time.Now()
	ident := &identity.Identity{
		ID:           f.generator(),
		Email:        email,
		PasswordHash: hash,
		Role:         identity.DefaultRole,
		Status:       identity.StatusActive,
		FirstName:    firstName,
		LastName:     lastName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := f.store.Create(ctx, ident); err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			// Lost the race to a concurrent registration.
			f.record(ctx, "identity.registration.failure", "", "failure", "email taken")
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	f.record(ctx, "identity.registration.success", ident.ID, "success", "")
	return ident, nil
}

func (f *RegistrationFlow) record(ctx context.Context, eventType, actorID, status, message string) {
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
