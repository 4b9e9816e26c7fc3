// Package transport is the contract between the Socket.IO server
// and whatever carries its bytes.
//
// A Conn is a bidirectional, message oriented connection.
// One call to Send writes one encoded packet: the header first,
// followed by the binary attachments of the packet, each as its own message.
package transport

import "fmt"

type Reason string

const (
	// The remote end closed the connection.
	ReasonTransportClose Reason = "transport close"
	// The connection was lost or failed.
	ReasonTransportError Reason = "transport error"
	// Conn.Close was called.
	ReasonForcedClose Reason = "forced close"
)

var (
	ErrClosed          = fmt.Errorf("transport: connection is closed")
	ErrProviderClosed  = fmt.Errorf("transport: provider is closed")
	ErrAlreadyAttached = fmt.Errorf("transport: provider is already attached")
	ErrNotAttached     = fmt.Errorf("transport: provider is not attached")
)

type Conn interface {
	// Unique among the open connections of a provider.
	ID() string

	// Write the buffers of a single packet. Safe for concurrent use.
	Send(buffers ...[]byte) error

	// Close the connection. OnClose is called with ReasonForcedClose,
	// unless the connection was already closing for another reason.
	//
	// Close doesn't wait for OnClose and it is safe to call it from
	// within the callbacks.
	Close() error
}

type (
	NewConnCallback func(conn Conn) *Callbacks
	MessageCallback func(data []byte)
	// err can be nil. Always do a nil check.
	CloseCallback func(reason Reason, err error)
)

// OnMessage is never called concurrently for the same connection,
// and it is called in the order the messages were received.
// OnClose is called exactly once, after the last OnMessage.
type Callbacks struct {
	OnMessage MessageCallback
	OnClose   CloseCallback
}

// Fill the missing callbacks with no-ops.
func (c *Callbacks) SetMissing() {
	if c.OnMessage == nil {
		c.OnMessage = func(data []byte) {}
	}
	if c.OnClose == nil {
		c.OnClose = func(reason Reason, err error) {}
	}
}

type Provider interface {
	// Start handing over new connections to onConn.
	// onConn is called before the first message of the connection is read.
	Attach(onConn NewConnCallback) error

	// Stop accepting connections and close the open ones.
	Close() error
}
