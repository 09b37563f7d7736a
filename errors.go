package biscuit

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure taxonomy. Match with errors.Is.
var (
	// ErrNotFound means no cookie database exists at the expected or given
	// location. Fatal for that source only.
	ErrNotFound = errors.New("cookie store not found")

	// ErrLocked means a running browser holds the database lock and lock
	// bypass was not requested. Fatal for that source; there is no retry.
	ErrLocked = errors.New("cookie store locked by a running browser")

	// ErrKeyUnavailable means no decryption key could be obtained. Only the
	// encrypted rows of that source are affected.
	ErrKeyUnavailable = errors.New("decryption key unavailable")

	// ErrAuthFailed means an AEAD tag mismatch: a tampered value or an
	// incompatible key. Never treated as an empty value.
	ErrAuthFailed = errors.New("decryption authentication failed")

	// ErrMalformed means a stored value carries a version prefix but not the
	// structure the prefix implies.
	ErrMalformed = errors.New("malformed encrypted value")

	// ErrCorrupt means the database could not be read coherently, e.g. a
	// torn page observed under lock bypass.
	ErrCorrupt = errors.New("cookie store corrupt or unreadable")
)

// SourceError records a failure that made a whole source unusable.
type SourceError struct {
	Browser   Browser
	Profile   string
	StorePath string
	Err       error
}

func (e *SourceError) Error() string {
	where := string(e.Browser)
	if e.Profile != "" {
		where += "/" + e.Profile
	}
	return fmt.Sprintf("%s: %v", where, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// RowError records a failure scoped to a single cookie row. The row is
// skipped; the rest of the source is unaffected.
type RowError struct {
	Browser Browser
	Profile string
	Domain  string
	Name    string
	Err     error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s: cookie %q for %q: %v", e.Browser, e.Name, e.Domain, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
