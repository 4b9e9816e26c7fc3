package sio

import (
	"time"

	"github.com/karagenc/sio-server/adapter"
	"github.com/karagenc/sio-server/internal/sync"
)

type Namespace struct {
	name    string
	server  *Server
	sockets *nspSocketStore
	adapter adapter.Adapter

	middlewareFuncs   []NspMiddlewareFunc
	middlewareFuncsMu sync.RWMutex

	connectionHandlers *handlerStore[NamespaceConnectionFunc]

	debug Debugger
}

func newNamespace(name string, server *Server) *Namespace {
	socketStore := newNspSocketStore()
	debugger := server.debug.WithContext("Namespace " + name)
	nsp := &Namespace{
		name:               name,
		server:             server,
		sockets:            socketStore,
		connectionHandlers: newHandlerStore[NamespaceConnectionFunc](),
		debug:              debugger,
	}
	nsp.adapter = server.adapterCreator(newAdapterSocketStore(socketStore), server.parserCreator, debugger)
	if server.metrics != nil {
		nsp.adapter = &countingAdapter{Adapter: nsp.adapter, nsp: name, metrics: server.metrics}
	}
	return nsp
}

func (n *Namespace) Name() string { return n.name }

func (n *Namespace) Server() *Server { return n.server }

func (n *Namespace) Adapter() Adapter { return n.adapter }

// Connected sockets of the namespace.
func (n *Namespace) Sockets() []ServerSocket {
	_sockets := n.sockets.getAll()
	sockets := make([]ServerSocket, len(_sockets))
	for i := range sockets {
		sockets[i] = _sockets[i]
	}
	return sockets
}

func (n *Namespace) newBroadcastOperator() *BroadcastOperator {
	return adapter.NewBroadcastOperator(n.name, n.adapter, IsEventReserved)
}

// Sets a modifier for a subsequent event emission that the event
// will only be broadcast to clients that have joined the given room.
//
// To emit to multiple rooms, you can call To several times.
// A socket that is in more than one of the rooms receives the event once.
func (n *Namespace) To(room ...Room) *BroadcastOperator {
	return n.newBroadcastOperator().To(room...)
}

// Alias of To(...)
func (n *Namespace) In(room ...Room) *BroadcastOperator {
	return n.newBroadcastOperator().In(room...)
}

// Sets a modifier for a subsequent event emission that the event
// will only be broadcast to clients that have not joined the given rooms.
func (n *Namespace) Except(room ...Room) *BroadcastOperator {
	return n.newBroadcastOperator().Except(room...)
}

// Emits an event to all connected clients of the namespace.
//
// Acknowledgements are not supported: passing a function
// as the last argument panics.
func (n *Namespace) Emit(eventName string, v ...any) error {
	return n.newBroadcastOperator().Emit(eventName, v...)
}

// Emits a `message` event to all connected clients of the namespace.
func (n *Namespace) Send(v ...any) error {
	return n.Emit("message", v...)
}

// Returns the matching socket instances.
func (n *Namespace) FetchSockets() []ServerSocket {
	return toServerSockets(n.newBroadcastOperator().FetchSockets())
}

func toServerSockets(_sockets []adapter.Socket) []ServerSocket {
	sockets := make([]ServerSocket, 0, len(_sockets))
	for _, socket := range _sockets {
		if s, ok := socket.(ServerSocket); ok {
			sockets = append(sockets, s)
		}
	}
	return sockets
}

// Makes the matching socket instances join the specified rooms.
func (n *Namespace) SocketsJoin(room ...Room) {
	n.newBroadcastOperator().SocketsJoin(room...)
}

// Makes the matching socket instances leave the specified rooms.
func (n *Namespace) SocketsLeave(room ...Room) {
	n.newBroadcastOperator().SocketsLeave(room...)
}

// Makes the matching socket instances disconnect.
//
// If value of close is true, closes the underlying connection. Otherwise, it just disconnects the namespace.
func (n *Namespace) DisconnectSockets(close bool) {
	n.newBroadcastOperator().DisconnectSockets(close)
}

// Runs on the goroutine of the connection that sent the CONNECT packet.
func (n *Namespace) add(c *serverConn, auth map[string]any) {
	socket, err := newServerSocket(c, n, &Handshake{
		Time: time.Now(),
		Auth: auth,
	})
	if err != nil {
		n.debug.Log("Socket creation failed", err)
		c.connectError(n.name, err)
		return
	}
	socket.setState(socketStateConnecting)

	err = n.runMiddlewares(socket, socket.handshake)
	if c.isClosed() {
		n.debug.Log("Connection closed during middleware execution, dropping socket", socket.ID())
		socket.setState(socketStateDisconnected)
		return
	}
	if err != nil {
		n.debug.Log("Middleware rejected the connection", socket.ID(), err)
		socket.setState(socketStateDisconnected)
		c.connectError(n.name, err)
		return
	}

	if !c.addSocket(socket) {
		socket.setState(socketStateDisconnected)
		return
	}
	n.sockets.set(socket)
	n.server.metrics.SocketConnected(n.name)
	socket.onConnect()

	n.debug.Log("Socket connected", socket.ID())

	for _, handler := range n.connectionHandlers.getAll() {
		n.callConnectionHandler(handler, socket)
	}
	for _, handler := range n.server.anyConnectionHandlers.getAll() {
		n.callAnyConnectionHandler(handler, socket)
	}
}

func (n *Namespace) callConnectionHandler(handler NamespaceConnectionFunc, socket *serverSocket) {
	defer func() {
		if r := recover(); r != nil {
			socket.onError(recoverToError(r, "sio: connection handler panicked"))
		}
	}()
	handler(socket)
}

func (n *Namespace) callAnyConnectionHandler(handler ServerAnyConnectionFunc, socket *serverSocket) {
	defer func() {
		if r := recover(); r != nil {
			socket.onError(recoverToError(r, "sio: connection handler panicked"))
		}
	}()
	handler(n.name, socket)
}

func (n *Namespace) remove(socket *serverSocket) {
	n.sockets.remove(socket.ID())
}
