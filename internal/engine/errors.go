package engine

import (
	"errors"
	"fmt"

	"github.com/Dem-News/demnews/internal/api"
)

// Sentinel failures surfaced to UI consumers. Anything else coming out
// of a mutation is a transport error passed through after rollback, so
// the cached state is already back at its last known-good value and the
// caller never has to undo anything.
var (
	// ErrValidation rejects bad input before any network call.
	ErrValidation = errors.New("engine: invalid input")

	// ErrDomainConflict means the server refused a duplicate verify or
	// flag by the same user. Never retried.
	ErrDomainConflict = errors.New("engine: action already recorded")

	// ErrConflictExhausted means a version conflict survived the single
	// refetch-and-retry cycle. The store holds the refetched server
	// state with no trace of the attempted action.
	ErrConflictExhausted = errors.New("engine: version conflict persisted after retry")
)

// validationErr wraps ErrValidation with detail.
func validationErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// asDomainConflict converts duplicate-action rejections to
// ErrDomainConflict, passing other errors through untouched.
func asDomainConflict(err error) error {
	if api.IsKind(err, api.KindAlreadyVerified) || api.IsKind(err, api.KindAlreadyFlagged) {
		return fmt.Errorf("%w: %v", ErrDomainConflict, err)
	}
	return err
}
