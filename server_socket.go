package sio

import (
	"fmt"
	"reflect"

	"github.com/karagenc/sio-server/internal/base64id"
	"github.com/karagenc/sio-server/internal/sync"
	"github.com/karagenc/sio-server/parser"
)

type socketState int

const (
	socketStateNew socketState = iota
	socketStateConnecting
	socketStateConnected
	socketStateDisconnecting
	socketStateDisconnected
)

func (s socketState) String() string {
	switch s {
	case socketStateNew:
		return "new"
	case socketStateConnecting:
		return "connecting"
	case socketStateConnected:
		return "connected"
	case socketStateDisconnecting:
		return "disconnecting"
	case socketStateDisconnected:
		return "disconnected"
	}
	return fmt.Sprintf("socketState(%d)", int(s))
}

type serverSocket struct {
	id        SocketID
	conn      *serverConn
	nsp       *Namespace
	handshake *Handshake

	// Held for reading during room operations, so that
	// no room is joined after the socket left all of them.
	stateMu sync.RWMutex
	state   socketState

	acksMu    sync.Mutex
	acks      map[uint64]*eventHandler
	nextAckID uint64

	eventHandlers         *eventHandlerStore
	errorHandlers         *handlerStore[ServerSocketErrorFunc]
	disconnectingHandlers *handlerStore[ServerSocketDisconnectingFunc]
	disconnectHandlers    *handlerStore[ServerSocketDisconnectFunc]

	debug Debugger
}

func newServerSocket(c *serverConn, nsp *Namespace, handshake *Handshake) (*serverSocket, error) {
	id, err := base64id.Generate(base64id.Size)
	if err != nil {
		return nil, err
	}

	s := &serverSocket{
		id:        SocketID(id),
		conn:      c,
		nsp:       nsp,
		handshake: handshake,

		acks: make(map[uint64]*eventHandler),

		eventHandlers:         newEventHandlerStore(),
		errorHandlers:         newHandlerStore[ServerSocketErrorFunc](),
		disconnectingHandlers: newHandlerStore[ServerSocketDisconnectingFunc](),
		disconnectHandlers:    newHandlerStore[ServerSocketDisconnectFunc](),
	}
	s.debug = nsp.debug.WithContext("Socket " + id)
	return s, nil
}

func (s *serverSocket) ID() SocketID { return s.id }

func (s *serverSocket) Server() *Server { return s.nsp.server }

func (s *serverSocket) Namespace() *Namespace { return s.nsp }

func (s *serverSocket) Handshake() *Handshake { return s.handshake }

func (s *serverSocket) setState(state socketState) {
	s.stateMu.Lock()
	s.state = state
	s.stateMu.Unlock()
}

func (s *serverSocket) getState() socketState {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state
}

func (s *serverSocket) IsConnected() bool {
	return s.getState() == socketStateConnected
}

type sidInfo struct {
	SID string `json:"sid"`
}

func (s *serverSocket) onConnect() {
	// Queued before the socket becomes a broadcast target,
	// so the client sees CONNECT first.
	s.sendControlPacket(parser.PacketTypeConnect, &sidInfo{SID: string(s.id)})

	s.stateMu.Lock()
	// Socket ID is the default room a socket joins to.
	err := s.nsp.adapter.AddAll(s.id, []Room{Room(s.id)})
	if err != nil {
		s.debug.Log("Joining own room failed", err)
	}
	s.state = socketStateConnected
	s.stateMu.Unlock()
}

func (s *serverSocket) onPacket(packet *parser.Packet) {
	switch packet.Type {
	case parser.PacketTypeEvent, parser.PacketTypeBinaryEvent:
		s.onEvent(packet)
	case parser.PacketTypeAck, parser.PacketTypeBinaryAck:
		s.onAck(packet)
	case parser.PacketTypeDisconnect:
		s.debug.Log("Got disconnect packet")
		s.onClose(ReasonClientNamespaceDisconnect)
	default:
		s.debug.Log("Unexpected packet", packet.Type)
	}
}

func (s *serverSocket) onEvent(packet *parser.Packet) {
	if !s.IsConnected() {
		return
	}
	eventName, ok := packet.EventName()
	if !ok {
		s.debug.Log("Event without a name")
		return
	}

	var ack AckFunc
	if packet.ID != nil {
		ack = newAckSender(s, *packet.ID).Send
	}

	s.nsp.server.metrics.EventReceived(s.nsp.name)

	args := packet.Args()
	for _, handler := range s.eventHandlers.getAll(eventName) {
		err := handler.Call(args, ack)
		if err != nil {
			s.onError(fmt.Errorf("sio: event `%s`: %w", eventName, err))
		}
	}
}

func (s *serverSocket) onAck(packet *parser.Packet) {
	if packet.ID == nil {
		s.debug.Log("ACK without an ID")
		return
	}

	s.acksMu.Lock()
	handler, ok := s.acks[*packet.ID]
	if ok {
		delete(s.acks, *packet.ID)
	}
	s.acksMu.Unlock()

	if !ok {
		// Unknown or already acknowledged.
		s.debug.Log("Dropping ACK", *packet.ID)
		return
	}
	s.nsp.server.metrics.AckReceived(s.nsp.name)

	err := handler.Call(packet.Data, nil)
	if err != nil {
		s.onError(fmt.Errorf("sio: acknowledgement %d: %w", *packet.ID, err))
	}
}

func (s *serverSocket) registerAck(handler *eventHandler) (id uint64) {
	s.acksMu.Lock()
	defer s.acksMu.Unlock()
	id = s.nextAckID
	s.nextAckID++
	s.acks[id] = handler
	return
}

// Emit an event to the client.
// If you want to emit a binary data, use sio.Binary instead of []byte.
//
// If the last argument is a function, it is called with the values
// the client acknowledges the event with. The values are converted
// into the parameter types of the function.
//
// Emitting on a disconnected socket is a no-op.
func (s *serverSocket) Emit(eventName string, v ...any) {
	if IsEventReserved(eventName) {
		panic(fmt.Errorf("sio: Emit: attempted to emit a reserved event: `%s`", eventName))
	}

	var ack *eventHandler
	if len(v) > 0 {
		if f := v[len(v)-1]; f != nil && reflect.TypeOf(f).Kind() == reflect.Func {
			var err error
			ack, err = newAckHandler(f)
			if err != nil {
				panic(err)
			}
			v = v[:len(v)-1]
		}
	}

	if !s.IsConnected() {
		return
	}

	data := make([]any, 0, len(v)+1)
	data = append(data, eventName)
	data = append(data, v...)

	packet := &parser.Packet{
		Type:      parser.PacketTypeEvent,
		Namespace: s.nsp.Name(),
		Data:      data,
	}
	if ack != nil {
		id := s.registerAck(ack)
		packet.ID = &id
	}

	err := s.conn.sendPacket(packet)
	if err != nil {
		if packet.ID != nil {
			s.acksMu.Lock()
			delete(s.acks, *packet.ID)
			s.acksMu.Unlock()
		}
		s.onError(wrapInternalError(err))
		return
	}
	s.nsp.server.metrics.EventSent(s.nsp.name)
}

// Emits a `message` event.
func (s *serverSocket) Send(v ...any) {
	s.Emit("message", v...)
}

func (s *serverSocket) sendControlPacket(typ parser.PacketType, v ...any) {
	err := s.conn.sendPacket(&parser.Packet{
		Type:      typ,
		Namespace: s.nsp.Name(),
		Data:      v,
	})
	if err != nil {
		s.debug.Log("Sending control packet failed", typ, err)
	}
}

func (s *serverSocket) sendAckPacket(id uint64, v []any) {
	if !s.IsConnected() {
		return
	}
	err := s.conn.sendPacket(&parser.Packet{
		Type:      parser.PacketTypeAck,
		Namespace: s.nsp.Name(),
		ID:        &id,
		Data:      v,
	})
	if err != nil {
		s.onError(wrapInternalError(err))
	}
}

// Join room(s). Joining a room twice is a no-op.
func (s *serverSocket) Join(room ...Room) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if s.state != socketStateConnected {
		return
	}
	err := s.nsp.adapter.AddAll(s.id, room)
	if err != nil {
		s.debug.Log("Join failed", err)
	}
}

// Leave a room. The room named after the socket ID cannot be left.
func (s *serverSocket) Leave(room Room) {
	if room == Room(s.id) {
		return
	}
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	if s.state != socketStateConnected {
		return
	}
	err := s.nsp.adapter.Delete(s.id, room)
	if err != nil {
		s.debug.Log("Leave failed", err)
	}
}

// Rooms the socket is in, in the order they were joined.
// The first room is always the one named after the socket ID.
func (s *serverSocket) Rooms() []Room {
	rooms, ok := s.nsp.adapter.SocketRooms(s.id)
	if !ok {
		return []Room{}
	}
	return rooms
}

func (s *serverSocket) newBroadcastOperator() *BroadcastOperator {
	return s.nsp.newBroadcastOperator().Except(Room(s.id))
}

// Sets a modifier for a subsequent event emission that the event
// will only be broadcast to clients that have joined the given room,
// except this socket.
//
// To emit to multiple rooms, you can call To several times.
func (s *serverSocket) To(room ...Room) *BroadcastOperator {
	return s.newBroadcastOperator().To(room...)
}

// Alias of To(...)
func (s *serverSocket) In(room ...Room) *BroadcastOperator {
	return s.To(room...)
}

// Sets a modifier for a subsequent event emission that the event
// will only be broadcast to clients that have not joined the given rooms.
// This socket is always excluded.
func (s *serverSocket) Except(room ...Room) *BroadcastOperator {
	return s.newBroadcastOperator().Except(room...)
}

// Sets a modifier for a subsequent event emission that
// the event data will only be broadcast to every sockets but the sender.
func (s *serverSocket) Broadcast() *BroadcastOperator {
	return s.newBroadcastOperator()
}

func (s *serverSocket) onError(err error) {
	s.debug.Log("Error", err)
	for _, handler := range s.errorHandlers.getAll() {
		s.callErrorHandler(handler, err)
	}
}

func (s *serverSocket) callErrorHandler(handler ServerSocketErrorFunc, err error) {
	defer func() {
		if r := recover(); r != nil {
			// There is nowhere left to report this.
			s.debug.Log("Error handler panicked", r)
		}
	}()
	handler(err)
}

// Disconnect from namespace.
//
// If close is true, every socket of the underlying connection is disconnected
// (a DISCONNECT packet is sent to each of them) and the connection is closed.
//
// If close is false, only the current namespace is disconnected
// (a DISCONNECT packet is sent), and the connection is kept open.
//
// Calling Disconnect on a disconnected socket is a no-op.
func (s *serverSocket) Disconnect(close bool) {
	if close {
		if !s.IsConnected() {
			return
		}
		s.conn.disconnectAll()
		s.conn.close(ReasonForcedServerClose)
		return
	}
	s.disconnect(ReasonServerNamespaceDisconnect)
}

// Send a DISCONNECT packet and close the socket.
func (s *serverSocket) disconnect(reason Reason) {
	if !s.beginClose() {
		return
	}
	s.sendControlPacket(parser.PacketTypeDisconnect)
	s.finishClose(reason)
}

// Transitions CONNECTED -> DISCONNECTING -> DISCONNECTED.
// Only the first call has an effect.
func (s *serverSocket) onClose(reason Reason) {
	if s.beginClose() {
		s.finishClose(reason)
	}
}

// Returns false if the socket isn't connected,
// i.e. another close is in progress or already done.
func (s *serverSocket) beginClose() bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if s.state != socketStateConnected {
		return false
	}
	s.state = socketStateDisconnecting
	return true
}

func (s *serverSocket) finishClose(reason Reason) {
	s.debug.Log("Disconnecting", reason)

	// Rooms are still visible from within the disconnecting handlers.
	for _, handler := range s.disconnectingHandlers.getAll() {
		s.callReasonHandler(handler, reason)
	}

	s.stateMu.Lock()
	s.nsp.adapter.DeleteAll(s.id)
	s.nsp.remove(s)
	s.conn.removeSocket(s)
	s.state = socketStateDisconnected
	s.stateMu.Unlock()
	s.nsp.server.metrics.SocketDisconnected(s.nsp.name, string(reason))

	s.acksMu.Lock()
	s.acks = make(map[uint64]*eventHandler)
	s.acksMu.Unlock()

	for _, handler := range s.disconnectHandlers.getAll() {
		s.callReasonHandler(handler, reason)
	}
}

func (s *serverSocket) callReasonHandler(handler func(reason Reason), reason Reason) {
	defer func() {
		if r := recover(); r != nil {
			s.onError(recoverToError(r, "sio: disconnect handler panicked"))
		}
	}()
	handler(reason)
}
