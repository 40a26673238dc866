// Package persistence implements the datastore layer on GORM.
//
// The repository exposes typed methods per table; every statement is
// atomic on its own, and the one multi-row flow (project creation with
// its owner membership) runs inside a transaction. The application
// layer performs no locking and assumes nothing beyond per-statement
// atomicity.
package persistence

import (
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DialectorOpener returns a gorm.Dialector for a given DSN.
type DialectorOpener = func(string) gorm.Dialector

var (
	registryMu sync.RWMutex
	openers    = make(map[string]DialectorOpener)
)

func init() {
	Register("sqlite", sqlite.Open)
	Register("postgres", postgres.Open)
	Register("mysql", mysql.Open)
}

// Register adds a database driver to the registry.
func Register(name string, opener DialectorOpener) {
	registryMu.Lock()
	defer registryMu.Unlock()
	openers[name] = opener
}

// Open connects to the named database type and returns a migrated
// repository. Set migrate to false to skip schema changes (e.g. when a
// migration tool owns the schema).
func Open(dbType, dsn string, migrate bool) (*Repository, error) {
	registryMu.RLock()
	opener, ok := openers[dbType]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("persistence: unknown database type %q", dbType)
	}

	db, err := gorm.Open(opener(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	repo := NewRepository(db)
	if migrate {
		if err := repo.AutoMigrate(); err != nil {
			return nil, err
		}
	}
	return repo, nil
}
