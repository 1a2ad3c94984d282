package client

import (
	"errors"
	"fmt"
)

// Error kinds. Validation failures never reach the network; transport errors
// mean the request never completed; ServerError carries the server-supplied
// text for application-level failures. Malformed 2xx responses are tagged with
// schema.ErrMalformed by the decoding layer.
var (
	// ErrValidation is a local precondition failure (missing input, no file).
	ErrValidation = errors.New("validation failed")
	// ErrTransport is a network-level failure; the generic connectivity
	// message shown to the user.
	ErrTransport = errors.New("error connecting to server")
	// ErrBusy rejects a submit while the same control's request is in flight.
	ErrBusy = errors.New("request already in flight")
)

// ServerError is an application error reported by the backend, either through
// a non-2xx status or a failure-indicating body field.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server error (status %d)", e.Status)
}
