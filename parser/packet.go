package parser

import "fmt"

var errInvalidPacketType = fmt.Errorf("parser: invalid packet type")

type PacketType byte

const (
	PacketTypeConnect PacketType = iota
	PacketTypeDisconnect
	PacketTypeEvent
	PacketTypeAck
	PacketTypeConnectError
	PacketTypeBinaryEvent
	PacketTypeBinaryAck

	packetTypeMax = PacketTypeBinaryAck
)

func (p PacketType) ToChar() byte {
	return byte(p) + '0'
}

func (p *PacketType) FromChar(b byte) error {
	if b < '0' || b > '0'+byte(packetTypeMax) {
		return errInvalidPacketType
	}
	*p = PacketType(b - '0')
	return nil
}

func (p PacketType) String() string {
	switch p {
	case PacketTypeConnect:
		return "CONNECT"
	case PacketTypeDisconnect:
		return "DISCONNECT"
	case PacketTypeEvent:
		return "EVENT"
	case PacketTypeAck:
		return "ACK"
	case PacketTypeConnectError:
		return "CONNECT_ERROR"
	case PacketTypeBinaryEvent:
		return "BINARY_EVENT"
	case PacketTypeBinaryAck:
		return "BINARY_ACK"
	}
	return fmt.Sprintf("PacketType(%d)", byte(p))
}

// Packet is a decoded Socket.IO packet.
//
// Data holds JSON values: nil, bool, float64, string, []any,
// map[string]any and Binary. For EVENT packets Data[0] is the
// event name. CONNECT and CONNECT_ERROR packets carry at most
// one value, DISCONNECT carries none.
//
// Attachments is only populated on decoded binary packets and
// mirrors the buffers the placeholders in Data were resolved from.
type Packet struct {
	Type        PacketType
	Namespace   string
	ID          *uint64
	Data        []any
	Attachments [][]byte
}

func (p *Packet) IsBinary() bool {
	return p.Type == PacketTypeBinaryEvent || p.Type == PacketTypeBinaryAck
}

func (p *Packet) IsEvent() bool {
	return p.Type == PacketTypeEvent || p.Type == PacketTypeBinaryEvent
}

func (p *Packet) IsAck() bool {
	return p.Type == PacketTypeAck || p.Type == PacketTypeBinaryAck
}

// EventName returns Data[0] of an event packet.
func (p *Packet) EventName() (name string, ok bool) {
	if !p.IsEvent() || len(p.Data) == 0 {
		return "", false
	}
	name, ok = p.Data[0].(string)
	return
}

// Args returns the application arguments: Data without
// the event name for events, Data as is for acks.
func (p *Packet) Args() []any {
	if p.IsEvent() {
		if len(p.Data) == 0 {
			return nil
		}
		return p.Data[1:]
	}
	return p.Data
}
