package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Aworminator/Project-Tracker/domain"
	"github.com/Aworminator/Project-Tracker/identity"
)

// ErrLocked is returned while an identifier is locked out after too many
// failed attempts.
var ErrLocked = errors.New("too many failed attempts, try again later")

// LockoutStore tracks login failures and lockouts per identifier.
type LockoutStore interface {
	// RecordFailure increments the failure count for the identifier.
	// ttl defines how long the failure record is kept.
	RecordFailure(ctx context.Context, identifier string, ttl time.Duration) (int, error)

	// ClearFailures resets the failure count for the identifier.
	ClearFailures(ctx context.Context, identifier string) error

	// Lock locks the identifier for the given duration.
	Lock(ctx context.Context, identifier string, duration time.Duration) error

	// IsLocked reports whether the identifier is currently locked and
	// until when.
	IsLocked(ctx context.Context, identifier string) (bool, time.Time, error)
}

// LockoutConfig holds configuration for the lockout decorator.
type LockoutConfig struct {
	// MaxFailures is the number of failures before lockout.
	MaxFailures int

	// LockoutDuration is how long to lock the identifier.
	LockoutDuration time.Duration

	// FailureWindow is how long failures are remembered.
	FailureWindow time.Duration

	// FailOpen allows requests through when the store errors. Default
	// is to deny.
	FailOpen bool
}

// LockoutAuthenticator is a decorator that adds brute-force protection
// to an Authenticator. Only credential failures count toward the
// threshold; a suspended account with a correct password does not.
type LockoutAuthenticator struct {
	next   Authenticator
	store  LockoutStore
	config LockoutConfig
}

// NewLockoutAuthenticator creates a lockout decorator around next.
func NewLockoutAuthenticator(next Authenticator, store LockoutStore, config LockoutConfig) *LockoutAuthenticator {
	if config.MaxFailures == 0 {
		config.MaxFailures = 5
	}
	if config.LockoutDuration == 0 {
		config.LockoutDuration = 15 * time.Minute
	}
	if config.FailureWindow == 0 {
		config.FailureWindow = 15 * time.Minute
	}
	return &LockoutAuthenticator{next: next, store: store, config: config}
}

func (a *LockoutAuthenticator) Authenticate(ctx context.Context, email, password string) (*identity.Identity, error) {
	key := identity.NormalizeEmail(email)

	locked, _, err := a.store.IsLocked(ctx, key)
	if err != nil && !a.config.FailOpen {
		return nil, err
	}
	if locked {
		return nil, ErrLocked
	}

	ident, authErr := a.next.Authenticate(ctx, email, password)
	if authErr == nil {
		_ = a.store.ClearFailures(ctx, key)
		return ident, nil
	}

	if errors.Is(authErr, domain.ErrBadCredential) {
		count, rErr := a.store.RecordFailure(ctx, key, a.config.FailureWindow)
		if rErr == nil && count >= a.config.MaxFailures {
			_ = a.store.Lock(ctx, key, a.config.LockoutDuration)
		}
	}

	return nil, authErr
}

// -- Memory implementation --

type memRecord struct {
	failures    int
	failExp     time.Time
	lockedUntil time.Time
}

// MemoryLockoutStore is an in-process LockoutStore. For multi-instance
// deployments use RedisLockoutStore.
type MemoryLockoutStore struct {
	mu    sync.Mutex
	items map[string]*memRecord
}

func NewMemoryLockoutStore() *MemoryLockoutStore {
	return &MemoryLockoutStore{items: make(map[string]*memRecord)}
}

func (s *MemoryLockoutStore) getRecord(id string) *memRecord {
	if r, ok := s.items[id]; ok {
		return r
	}
	r := &memRecord{}
	s.items[id] = r
	return r
}

func (s *MemoryLockoutStore) RecordFailure(ctx context.Context, identifier string, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.getRecord(identifier)
	now := time.Now()
	if now.After(r.failExp) {
		r.failures = 0
	}
	r.failures++
	r.failExp = now.Add(ttl)
	return r.failures, nil
}

func (s *MemoryLockoutStore) ClearFailures(ctx context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, identifier)
	return nil
}

func (s *MemoryLockoutStore) Lock(ctx context.Context, identifier string, duration time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getRecord(identifier).lockedUntil = time.Now().Add(duration)
	return nil
}

func (s *MemoryLockoutStore) IsLocked(ctx context.Context, identifier string) (bool, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.items[identifier]; ok {
		if time.Now().Before(r.lockedUntil) {
			return true, r.lockedUntil, nil
		}
	}
	return false, time.Time{}, nil
}
