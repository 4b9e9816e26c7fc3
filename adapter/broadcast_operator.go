package adapter

import (
	"fmt"
	"reflect"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/karagenc/sio-server/parser"
)

// BroadcastOperator is an immutable description of a pending
// broadcast. Every modifier returns a new operator; the receiver
// is left untouched, so operators can be shared and reused.
type BroadcastOperator struct {
	nsp             string
	adapter         Adapter
	isEventReserved func(string) bool

	rooms       mapset.Set[Room]
	exceptRooms mapset.Set[Room]
}

func NewBroadcastOperator(nsp string, adapter Adapter, isEventReserved func(eventName string) bool) *BroadcastOperator {
	return &BroadcastOperator{
		nsp:             nsp,
		adapter:         adapter,
		isEventReserved: isEventReserved,
		rooms:           mapset.NewThreadUnsafeSet[Room](),
		exceptRooms:     mapset.NewThreadUnsafeSet[Room](),
	}
}

func (b *BroadcastOperator) clone() *BroadcastOperator {
	n := *b
	n.rooms = b.rooms.Clone()
	n.exceptRooms = b.exceptRooms.Clone()
	return &n
}

// Sets a modifier for a subsequent event emission that the event
// will only be broadcast to clients that have joined the given room.
//
// To emit to multiple rooms, you can call To several times.
// Rooms are unioned: a socket in any of the rooms receives the event once.
func (b *BroadcastOperator) To(room ...Room) *BroadcastOperator {
	n := b.clone()
	n.rooms.Append(room...)
	return n
}

// Alias of To(...)
func (b *BroadcastOperator) In(room ...Room) *BroadcastOperator {
	return b.To(room...)
}

// Sets a modifier for a subsequent event emission that the event
// will only be broadcast to clients that have not joined the given rooms.
//
// Since every socket is in the room named after its ID,
// a socket ID can be passed to exclude that socket.
func (b *BroadcastOperator) Except(room ...Room) *BroadcastOperator {
	n := b.clone()
	n.exceptRooms.Append(room...)
	return n
}

func (b *BroadcastOperator) options() *BroadcastOptions {
	return &BroadcastOptions{
		Rooms:  b.rooms.Clone(),
		Except: b.exceptRooms.Clone(),
	}
}

// Emits an event to all choosen clients.
// If you want to emit a binary data, use parser.Binary instead of []byte.
//
// Acknowledgements are not supported when broadcasting;
// passing a function as the last argument panics.
func (b *BroadcastOperator) Emit(eventName string, v ...any) error {
	if b.isEventReserved != nil && b.isEventReserved(eventName) {
		panic(fmt.Errorf("sio: BroadcastOperator.Emit: attempted to emit a reserved event: `%s`", eventName))
	}
	if len(v) > 0 {
		if f := v[len(v)-1]; f != nil && reflect.TypeOf(f).Kind() == reflect.Func {
			panic(fmt.Errorf("sio: BroadcastOperator.Emit: callbacks are not supported when broadcasting"))
		}
	}

	data := make([]any, 0, len(v)+1)
	data = append(data, eventName)
	data = append(data, v...)

	packet := &parser.Packet{
		Type:      parser.PacketTypeEvent,
		Namespace: b.nsp,
		Data:      data,
	}
	return b.adapter.Broadcast(packet, b.options())
}

// Returns the matching socket instances.
func (b *BroadcastOperator) FetchSockets() []Socket {
	return b.adapter.FetchSockets(b.options())
}

// Makes the matching socket instances join the specified rooms.
func (b *BroadcastOperator) SocketsJoin(room ...Room) {
	b.adapter.AddSockets(b.options(), room...)
}

// Makes the matching socket instances leave the specified rooms.
func (b *BroadcastOperator) SocketsLeave(room ...Room) {
	b.adapter.DelSockets(b.options(), room...)
}

// Makes the matching socket instances disconnect from the namespace.
//
// If value of close is true, closes the underlying connection. Otherwise, it just disconnects the namespace.
func (b *BroadcastOperator) DisconnectSockets(close bool) {
	b.adapter.DisconnectSockets(b.options(), close)
}
