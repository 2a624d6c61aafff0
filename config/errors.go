package config

import "fmt"

// ErrorKind tells whether an Error comes from the content of a configuration
// or from reading it.
type ErrorKind int

// Kinds of configuration errors.
const (
	ErrInvalid ErrorKind = iota
	ErrResource
)

// Error reports a configuration that cannot be used to start a simulation.
type Error struct {
	Kind  ErrorKind
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

func invalid(field, msg string) *Error {
	return &Error{Kind: ErrInvalid, Field: field, Msg: msg}
}

func resource(msg string, err error) *Error {
	return &Error{Kind: ErrResource, Msg: msg, Err: err}
}
