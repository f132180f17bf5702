package services

import (
	"errors"
	"fmt"

	"github.com/desertthunder/vtx/internal/shared"
)

// ServerError is a non-2xx response. Message is the server's "error" field, or a default for the operation.
type ServerError struct {
	Op      string
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

func (e *ServerError) Unwrap() error {
	return shared.ErrAPIRequest
}

// NetworkError means the request did not complete: it never reached the server, the connection dropped, or the
// response body could not be read or decoded.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return e.Err.Error()
}

func (e *NetworkError) Unwrap() []error {
	return []error{shared.ErrServiceUnavailable, e.Err}
}

// IsServerError reports whether err is (or wraps) a [ServerError].
func IsServerError(err error) bool {
	var se *ServerError
	return errors.As(err, &se)
}

// IsNetworkError reports whether err is (or wraps) a [NetworkError].
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

func networkErr(op string, format string, args ...any) *NetworkError {
	return &NetworkError{Op: op, Err: fmt.Errorf(format, args...)}
}
