package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownDomain indicates a domain label outside the fixed set.
	ErrUnknownDomain = errors.New("axpress: unknown domain")
	// ErrUnknownStep indicates a mission step outside the fixed set.
	ErrUnknownStep = errors.New("axpress: unknown mission step")
)

// RemoteError reports a non-success HTTP status from the backend.
type RemoteError struct {
	Op         string
	Status     int
	StatusText string
}

func (e *RemoteError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("backend returned %d %s", e.Status, e.StatusText)
	}
	return fmt.Sprintf("%s: backend returned %d %s", e.Op, e.Status, e.StatusText)
}

// ParseError reports a response body that does not match the expected shape.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: unexpected response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// PreconditionError reports a derived request made before its download record exists.
type PreconditionError struct {
	Title string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("no stored path for title %q", e.Title)
}
