package app

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUpstream Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindConfiguration
)

// Error is an application failure with a client-facing message. Err keeps the
// cause for logs and is never rendered.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

func Configuration(detail string) error {
	return &Error{Kind: KindConfiguration, Message: "Server configuration error", Err: errors.New(detail)}
}

func Upstream(err error) error {
	return &Error{Kind: KindUpstream, Message: "Internal server error", Err: err}
}

// KindOf reports the kind of err. Errors that are not *Error count as upstream.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUpstream
}
