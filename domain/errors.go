// Package domain defines the contracts shared across Project-Tracker:
// the sentinel error taxonomy and the small interfaces (hashing, ID
// generation) that bind the flows to their collaborators.
//
// The sentinel errors let the transport layer map internal outcomes to
// status codes (e.g. ErrForbidden -> 403) without string matching.
package domain

import "errors"

var (
	// Authentication errors. ErrBadCredential deliberately covers both
	// unknown-email and wrong-password so callers cannot distinguish
	// which accounts exist.
	ErrBadCredential = errors.New("invalid email or password")
	ErrSuspended     = errors.New("account is suspended")
	ErrEmailTaken    = errors.New("email is already registered")

	// Authorization errors.
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("insufficient permissions")

	// Validation errors.
	ErrInvalidRole  = errors.New("invalid role")
	ErrInvalidInput = errors.New("invalid input")

	// Resource errors.
	ErrNotFound            = errors.New("resource not found")
	ErrDuplicateMembership = errors.New("user is already a member of this project")

	// ErrPersistence wraps datastore failures surfaced out of multi-step
	// flows. The underlying cause is attached with %w by the caller.
	ErrPersistence = errors.New("persistence failure")
)
