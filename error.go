package sio

import (
	"errors"
	"fmt"
)

// This is a wrapper for the errors internal to the server.
//
// If you see this error, this means that the problem is
// neither a network error, nor an error caused by you, but
// the source of the error is the server itself.
type InternalError struct {
	err error
}

func (e InternalError) Error() string {
	return "sio: internal error: " + e.err.Error()
}

func (e InternalError) Unwrap() error {
	return e.err
}

func wrapInternalError(err error) *InternalError {
	return &InternalError{err: err}
}

// Return a ConnectError from a namespace middleware to
// reject the connection with a structured payload.
//
// The client receives Data if it is not nil, the message otherwise.
// Any other error rejects the connection with its message.
type ConnectError struct {
	Message string
	Data    any
}

func NewConnectError(message string, data any) *ConnectError {
	return &ConnectError{Message: message, Data: data}
}

func (e *ConnectError) Error() string {
	return e.Message
}

// Payload of the CONNECT_ERROR packet sent for err.
func connectErrorPayload(err error) any {
	var ce *ConnectError
	if errors.As(err, &ce) && ce.Data != nil {
		return ce.Data
	}
	return err.Error()
}

func recoverToError(r any, context string) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%s: %w", context, err)
	}
	return fmt.Errorf("%s: %v", context, r)
}
