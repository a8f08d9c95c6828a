// Package errs defines the error taxonomy shared by the bookkeeping
// core. Every failure a caller must branch on is either one of these
// typed errors or a wrapped I/O error; nothing in the core panics
// across a package boundary.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound marks a missing company, account, entry, or collection.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists marks an attempt to create something that exists.
var ErrAlreadyExists = errors.New("already exists")

// ValidationError reports a journal entry that failed one or more
// validation checks. Problems carry enough detail (including computed
// totals) for the caller to self-correct.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid entry: " + strings.Join(e.Problems, "; ")
}

// PeriodLockedError reports a posting dated inside a locked fiscal
// period.
type PeriodLockedError struct {
	Year  int
	Month int
}

func (e *PeriodLockedError) Error() string {
	return fmt.Sprintf("fiscal period %04d-%02d is locked", e.Year, e.Month)
}

// DuplicateCodeError reports an account code that already exists for
// the company.
type DuplicateCodeError struct {
	Code string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("account code %q already exists", e.Code)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
