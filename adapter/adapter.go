package adapter

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/karagenc/sio-server/debug"
	"github.com/karagenc/sio-server/parser"
)

type (
	Creator func(socketStore SocketStore, parserCreator parser.Creator, debugger debug.Debugger) Adapter

	// A public ID, sent by the server at the beginning of
	// the Socket.IO session and which can be used for private messaging.
	SocketID string

	Room string
)

var ErrUnknownSocket = fmt.Errorf("adapter: unknown socket")

// Adapter keeps track of room membership of a namespace and
// fans packets out to the sockets of the matching rooms.
//
// Every method is safe for concurrent use.
type Adapter interface {
	// Add a socket to the given rooms. Joining a room twice is a no-op.
	AddAll(sid SocketID, rooms []Room) error
	// Remove a socket from a room. Leaving a room that was not joined is a no-op.
	Delete(sid SocketID, room Room) error
	// Remove a socket from every room it is in.
	DeleteAll(sid SocketID)

	// Encode the packet once and send it to every matching socket.
	// A socket that matches more than one room receives the packet once.
	Broadcast(packet *parser.Packet, opts *BroadcastOptions) error

	// Sockets that are in any of the rooms. All sockets if rooms is empty.
	Sockets(rooms mapset.Set[Room]) (sids mapset.Set[SocketID])
	// Rooms of the socket, in the order they were joined.
	SocketRooms(sid SocketID) (rooms []Room, ok bool)
	// Snapshot of the names of the existing rooms.
	Rooms() mapset.Set[Room]

	FetchSockets(opts *BroadcastOptions) (sockets []Socket)
	AddSockets(opts *BroadcastOptions, rooms ...Room)
	DelSockets(opts *BroadcastOptions, rooms ...Room)
	DisconnectSockets(opts *BroadcastOptions, close bool)

	Close()
}

// SocketStore is the adapter's view of the namespace's sockets.
type SocketStore interface {
	Get(sid SocketID) (so Socket, ok bool)
	GetAll() []Socket
	// Deliver already encoded buffers to a socket.
	SendBuffers(sid SocketID, buffers [][]byte) (ok bool)
}

type Socket interface {
	ID() SocketID

	// Join room(s)
	Join(room ...Room)
	// Leave a room
	Leave(room Room)

	// Disconnect from namespace.
	//
	// If close is true, the other namespaces of the underlying
	// connection are disconnected too, and the connection is closed.
	Disconnect(close bool)
}

type BroadcastOptions struct {
	Rooms  mapset.Set[Room]
	Except mapset.Set[Room]
}

func NewBroadcastOptions() *BroadcastOptions {
	return &BroadcastOptions{
		Rooms:  mapset.NewThreadUnsafeSet[Room](),
		Except: mapset.NewThreadUnsafeSet[Room](),
	}
}
