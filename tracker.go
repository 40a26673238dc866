// Package tracker provides convenience constructors wiring the default
// stack together from a single database handle. Applications with
// custom hashing, lockout, or session needs assemble the pieces from
// the sub-packages directly, as cmd/tracker does.
package tracker

import (
	"time"

	"github.com/Aworminator/Project-Tracker/flow"
	"github.com/Aworminator/Project-Tracker/persistence"
	"github.com/Aworminator/Project-Tracker/session"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewDefaultRegistrationFlow creates a RegistrationFlow with bcrypt
// hashing and UUID identifiers.
func NewDefaultRegistrationFlow(db *gorm.DB) *flow.RegistrationFlow {
	repo := persistence.NewRepository(db)
	return flow.NewRegistrationFlow(repo, flow.NewBcryptHasher(0), func() string {
		return uuid.New().String()
	}, repo)
}

// NewDefaultLoginFlow creates a LoginFlow with bcrypt verification and
// in-process brute-force lockout.
func NewDefaultLoginFlow(db *gorm.DB) flow.Authenticator {
	repo := persistence.NewRepository(db)
	login := flow.NewLoginFlow(repo, flow.NewBcryptHasher(0), repo)
	return flow.NewLockoutAuthenticator(login, flow.NewMemoryLockoutStore(), flow.LockoutConfig{})
}

// NewDefaultSessionManager creates a database-backed session manager.
func NewDefaultSessionManager(db *gorm.DB, ttl time.Duration) *session.Manager {
	repo := persistence.NewRepository(db)
	return session.NewManager(session.NewDatabaseStrategy(repo, ttl))
}
