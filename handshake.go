package sio

import "time"

type Handshake struct {
	// Date of creation.
	Time time.Time

	// Authentication data sent with the CONNECT packet.
	// nil if the client sent none.
	Auth map[string]any
}
