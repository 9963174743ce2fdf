package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies backend failures so callers can branch without
// string matching. The backend reports version conflicts and duplicate
// verify/flag attempts as HTTP 400 with distinguishable error text;
// this is the one place that text is interpreted.
type ErrorKind string

const (
	// KindVersionConflict means the entity changed server-side since
	// the client last observed it. Retryable after a refetch.
	KindVersionConflict ErrorKind = "version_conflict"
	// KindAlreadyVerified means this user already verified the item.
	KindAlreadyVerified ErrorKind = "already_verified"
	// KindAlreadyFlagged means this user already flagged the item.
	KindAlreadyFlagged ErrorKind = "already_flagged"
	// KindNotFound means the entity does not exist server-side.
	KindNotFound ErrorKind = "not_found"
	// KindUnauthorized means the token is missing or expired.
	KindUnauthorized ErrorKind = "unauthorized"
	// KindBadRequest covers remaining 4xx rejections.
	KindBadRequest ErrorKind = "bad_request"
	// KindNetwork covers transport failures and 5xx responses.
	KindNetwork ErrorKind = "network"
)

// Error is a typed backend failure.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Kind, e.Message)
}

// classify maps an HTTP status and error body to an ErrorKind.
func classify(status int, message string) ErrorKind {
	lower := strings.ToLower(message)
	switch {
	case status == 400 && strings.Contains(lower, "version"):
		return KindVersionConflict
	case status == 400 && strings.Contains(lower, "already verified"):
		return KindAlreadyVerified
	case status == 400 && strings.Contains(lower, "already flagged"):
		return KindAlreadyFlagged
	case status == 404:
		return KindNotFound
	case status == 401 || status == 403:
		return KindUnauthorized
	case status >= 400 && status < 500:
		return KindBadRequest
	default:
		return KindNetwork
	}
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// IsVersionConflict reports whether err is a version-conflict rejection.
func IsVersionConflict(err error) bool { return IsKind(err, KindVersionConflict) }
