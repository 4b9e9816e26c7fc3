package sio

import "github.com/karagenc/sio-server/transport"

// Reason a socket was disconnected for.
type Reason string

const (
	ReasonTransportClose Reason = Reason(transport.ReasonTransportClose)
	ReasonTransportError Reason = Reason(transport.ReasonTransportError)
	ReasonForcedClose    Reason = Reason(transport.ReasonForcedClose)
)

const (
	ReasonServerShuttingDown        Reason = "server shutting down"
	ReasonForcedServerClose         Reason = "forced server close"
	ReasonClientNamespaceDisconnect Reason = "client namespace disconnect"
	ReasonServerNamespaceDisconnect Reason = "server namespace disconnect"
	ReasonParseError                Reason = "parse error"
)
