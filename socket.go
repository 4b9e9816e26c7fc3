package sio

type ServerSocket interface {
	// Socket ID. Also the name of the room the socket is always in.
	ID() SocketID

	// Is the socket (currently) connected?
	IsConnected() bool

	// Retrieves the underlying Server.
	Server() *Server

	// Retrieves the Namespace this socket is connected to.
	Namespace() *Namespace

	// The handshake the socket connected with.
	Handshake() *Handshake

	// Register an event handler. See the documentation of AckFunc
	// for acknowledging the event.
	OnEvent(eventName string, handler any)

	// Register a one-time event handler.
	// The handler will run once and will be removed afterwards.
	OnceEvent(eventName string, handler any)

	// Remove event handlers.
	//
	// If you want to remove all handlers of a particular event,
	// provide the eventName and leave the handler empty.
	OffEvent(eventName string, handler ...any)

	// Remove all event handlers.
	// Including special event handlers: error, disconnecting and disconnect.
	OffAll()

	OnError(f ServerSocketErrorFunc)
	OnceError(f ServerSocketErrorFunc)
	OffError(f ...ServerSocketErrorFunc)

	// Fired when the socket is about to disconnect.
	// Rooms can still be retrieved from within the handler.
	OnDisconnecting(f ServerSocketDisconnectingFunc)
	OnceDisconnecting(f ServerSocketDisconnectingFunc)
	OffDisconnecting(f ...ServerSocketDisconnectingFunc)

	// Fired once the socket is disconnected and has left every room.
	OnDisconnect(f ServerSocketDisconnectFunc)
	OnceDisconnect(f ServerSocketDisconnectFunc)
	OffDisconnect(f ...ServerSocketDisconnectFunc)

	// Emit a message.
	// If you want to emit a binary data, use sio.Binary instead of []byte.
	Emit(eventName string, v ...any)

	// Emit a `message` event.
	Send(v ...any)

	// Join room(s)
	Join(room ...Room)
	// Leave a room
	Leave(room Room)
	// Rooms the socket joined, in join order.
	Rooms() []Room

	// Sets a modifier for a subsequent event emission that the event
	// will only be broadcast to clients that have joined the given room.
	//
	// To emit to multiple rooms, you can call To several times.
	To(room ...Room) *BroadcastOperator

	// Alias of To(...)
	In(room ...Room) *BroadcastOperator

	// Sets a modifier for a subsequent event emission that the event
	// will only be broadcast to clients that have not joined the given rooms.
	Except(room ...Room) *BroadcastOperator

	// Sets a modifier for a subsequent event emission that
	// the event data will only be broadcast to every sockets but the sender.
	Broadcast() *BroadcastOperator

	// Disconnect from namespace.
	//
	// If `close` is true, all namespaces are going to be disconnected (a DISCONNECT packet will be sent),
	// and the underlying connection will be terminated.
	//
	// If `close` is false, only the current namespace will be disconnected (a DISCONNECT packet will be sent),
	// and the underlying connection will be kept open.
	Disconnect(close bool)
}

var _ ServerSocket = (*serverSocket)(nil)
