package api

import (
	"errors"
	"fmt"
)

// Failure taxonomy for gateway calls. Callers match with errors.Is;
// the wrapping *Error carries the operation and any server detail.
var (
	// ErrNetworkUnreachable means no response was received at all.
	ErrNetworkUnreachable = errors.New("network unreachable")

	// ErrAuth means the server rejected the credentials or token.
	ErrAuth = errors.New("invalid credentials")

	// ErrConflict means the resource already exists, e.g. a duplicate
	// registration.
	ErrConflict = errors.New("already exists")

	// ErrValidation means a client-side field check failed before any
	// request was made.
	ErrValidation = errors.New("validation failed")

	// ErrServer covers every other non-2xx response, and 2xx responses
	// whose body does not decode into the expected shape.
	ErrServer = errors.New("server error")
)

// Error is the single tagged failure surfaced for a gateway call.
type Error struct {
	// Op is the operation name, e.g. "login" or "create expense".
	Op string

	// Kind is one of the sentinel errors above.
	Kind error

	// StatusCode is the HTTP status, 0 when no response was received.
	StatusCode int

	// Detail is the server-provided message body, truncated.
	Detail string

	// Err is the underlying transport or decode error, if any.
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes both the taxonomy sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// classify maps a non-2xx response to the taxonomy. The Django-style
// backend answers bad login credentials with 400, and duplicate
// registrations with 400 as well, so classification is per operation.
func classify(op string, status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrAuth
	case op == opLogin && status == 400:
		return ErrAuth
	case op == opRegister && (status == 400 || status == 409):
		return ErrConflict
	default:
		return ErrServer
	}
}
