package domain

// IDGenerator is a function that generates a new opaque unique key.
type IDGenerator func() string

// Hasher defines the interface for credential hashing and verification.
// Compare must treat malformed digests as a mismatch, never an error,
// so verification failures are indistinguishable from wrong passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Compare(password, hash string) bool
}
