package apiclient

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failed remote call
type Kind int

const (
	KindUnexpected Kind = iota
	KindNetworkUnreachable
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidationFailed
	KindServerError
)

func (k Kind) String() string {
	switch k {
	case KindNetworkUnreachable:
		return "network_unreachable"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidationFailed:
		return "validation_failed"
	case KindServerError:
		return "server_error"
	}
	return "unexpected"
}

// Sentinels matched by errors.Is against any *Error of the same kind
var (
	ErrNetworkUnreachable = errors.New("network unreachable")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrValidationFailed   = errors.New("validation failed")
	ErrServerError        = errors.New("server error")
	ErrUnexpected         = errors.New("unexpected response")
)

var sentinels = map[Kind]error{
	KindNetworkUnreachable: ErrNetworkUnreachable,
	KindUnauthorized:       ErrUnauthorized,
	KindForbidden:          ErrForbidden,
	KindNotFound:           ErrNotFound,
	KindValidationFailed:   ErrValidationFailed,
	KindServerError:        ErrServerError,
	KindUnexpected:         ErrUnexpected,
}

// Default messages shown when the server does not supply one
const (
	MsgNetworkUnreachable = "Unable to connect to the server. Please check your connection."
	MsgUnauthorized       = "Your session has expired. Please log in again."
	MsgForbidden          = "You do not have permission to perform this action."
	MsgNotFound           = "The requested resource was not found."
	MsgServerError        = "The server encountered an error. Please try again later."
	MsgUnexpected         = "An unexpected error occurred."
)

// Error is a failed remote call. Message and Errors come from the server
// verbatim when it sent them.
type Error struct {
	Kind    Kind
	Status  int
	Method  string
	Path    string
	Message string
	Errors  []string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s", e.Method, e.Path, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Errors) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Errors, "; "))
		b.WriteString("]")
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrNotFound) and friends match by kind
func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

// UserMessage is what a caller should display
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	switch e.Kind {
	case KindNetworkUnreachable:
		return MsgNetworkUnreachable
	case KindUnauthorized:
		return MsgUnauthorized
	case KindForbidden:
		return MsgForbidden
	case KindNotFound:
		return MsgNotFound
	case KindServerError:
		return MsgServerError
	}
	return MsgUnexpected
}

// KindOf returns the kind of err, or KindUnexpected when err is not an *Error
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnexpected
}

// MessageOf returns a displayable message for any error
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return MsgUnexpected
}

func kindForStatus(status int) Kind {
	switch {
	case status == 0:
		return KindNetworkUnreachable
	case status == 401:
		return KindUnauthorized
	case status == 403:
		return KindForbidden
	case status == 404:
		return KindNotFound
	case status == 400 || status == 409 || status == 422:
		return KindValidationFailed
	case status >= 500:
		return KindServerError
	}
	return KindUnexpected
}
