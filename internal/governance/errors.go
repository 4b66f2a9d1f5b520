package governance

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a governance failure for transport mapping.
type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindInvalidTransition
	KindForbidden
	KindInternal
)

// Error is the failure type returned by the orchestrator. All catalog and
// gate failures are detected before any write, so a non-internal Error
// guarantees stored state is unchanged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func errValidation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func errNotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func errInvalidTransition(format string, args ...any) error {
	return &Error{Kind: KindInvalidTransition, Msg: fmt.Sprintf(format, args...)}
}

func errForbidden(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Msg: fmt.Sprintf(format, args...)}
}

func errInternal(msg string, err error) error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf extracts the failure kind, defaulting to internal for anything that
// did not originate in this package.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindInternal
}

// HTTPStatus maps a governance failure to its transport status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation, KindInvalidTransition:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
