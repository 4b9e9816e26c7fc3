package sio

import (
	"fmt"
	"strconv"
	"time"

	"github.com/karagenc/sio-server/internal/sync"
	"github.com/karagenc/sio-server/parser"
	"github.com/karagenc/sio-server/transport"
)

var errInvalidAuth = fmt.Errorf("sio: invalid auth payload: JSON object expected")

// This struct represents a connection to the server.
// A connection hosts at most one socket per namespace.
//
// The transport never calls onMessage concurrently, so the packets
// of a connection are processed one at a time, in the order they arrived.
type serverConn struct {
	conn        transport.Conn
	packetQueue *packetQueue

	server  *Server
	sockets *connSocketStore

	// Decoding state is only touched from onMessage and onClose.
	parser parser.Parser

	mu           sync.Mutex
	closed       bool
	closeReason  Reason // Set when the server closes the connection.
	connectTimer *time.Timer

	debug Debugger
}

func newServerConn(server *Server, conn transport.Conn) (*serverConn, *transport.Callbacks) {
	c := &serverConn{
		conn:        conn,
		packetQueue: newPacketQueue(),

		server:  server,
		sockets: newConnSocketStore(),

		parser: server.parserCreator(),
	}
	c.debug = server.debug.WithDynamicContext("serverConn "+conn.ID(), func() string {
		return "sockets: " + strconv.Itoa(c.sockets.len())
	})

	callbacks := &transport.Callbacks{
		OnMessage: c.onMessage,
		OnClose:   c.onClose,
	}

	go func() {
		c.packetQueue.pollAndSend(c.conn, c.onSendError)
		// Either the queue was drained after a close,
		// or the connection is already gone.
		c.conn.Close()
	}()

	c.connectTimer = time.AfterFunc(server.connectTimeout, c.onConnectTimeout)
	return c, callbacks
}

func (c *serverConn) ID() string { return c.conn.ID() }

func (c *serverConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed || c.closeReason != ""
}

func (c *serverConn) onConnectTimeout() {
	if c.sockets.len() == 0 {
		c.debug.Log("No namespace joined within the connect timeout, closing")
		c.close(ReasonForcedServerClose)
	}
}

func (c *serverConn) onMessage(data []byte) {
	err := c.parser.Add(data, c.onPacket)
	if err != nil {
		c.debug.Log("Parse error", err)
		if c.server.closeOnParseError {
			c.close(ReasonParseError)
		}
	}
}

func (c *serverConn) onPacket(packet *parser.Packet) {
	if packet.Namespace == "" {
		packet.Namespace = "/"
	}

	if packet.Type == parser.PacketTypeConnect {
		c.connect(packet)
		return
	}

	socket, ok := c.sockets.getByNsp(packet.Namespace)
	if !ok {
		c.debug.Log("No socket on namespace, dropping packet", packet.Namespace, packet.Type)
		return
	}
	socket.onPacket(packet)
}

func (c *serverConn) connect(packet *parser.Packet) {
	if c.isClosed() {
		return
	}
	if _, ok := c.sockets.getByNsp(packet.Namespace); ok {
		c.debug.Log("Already connected to namespace, ignoring CONNECT", packet.Namespace)
		return
	}

	var auth map[string]any
	if len(packet.Data) > 0 && packet.Data[0] != nil {
		var ok bool
		auth, ok = packet.Data[0].(map[string]any)
		if !ok {
			c.connectError(packet.Namespace, errInvalidAuth)
			return
		}
	}

	nsp := c.server.Of(packet.Namespace)
	nsp.add(c, auth)
}

// Returns false if the connection is closed or
// already has a socket on the namespace.
func (c *serverConn) addSocket(socket *serverSocket) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.closeReason != "" {
		return false
	}
	return c.sockets.setIfAbsent(socket)
}

func (c *serverConn) removeSocket(socket *serverSocket) {
	c.sockets.remove(socket)
}

func (c *serverConn) connectError(nsp string, err error) {
	c.server.metrics.ConnectRejected(nsp)
	c.sendPacket(&parser.Packet{
		Type:      parser.PacketTypeConnectError,
		Namespace: nsp,
		Data:      []any{connectErrorPayload(err)},
	})
}

func (c *serverConn) sendPacket(packet *parser.Packet) error {
	buffers, err := c.parser.Encode(packet)
	if err != nil {
		return err
	}
	if !c.sendBuffers(buffers) {
		return transport.ErrClosed
	}
	return nil
}

func (c *serverConn) sendBuffers(buffers [][]byte) (ok bool) {
	return c.packetQueue.add(buffers)
}

func (c *serverConn) onSendError(err error) {
	c.debug.Log("Send failed", err)
	c.mu.Lock()
	if c.closeReason == "" {
		c.closeReason = ReasonTransportError
	}
	c.mu.Unlock()
}

// Disconnect every socket of the connection from its namespace.
// DISCONNECT packets are sent; the connection stays open.
func (c *serverConn) disconnectAll() {
	for _, socket := range c.sockets.getAll() {
		socket.disconnect(ReasonServerNamespaceDisconnect)
	}
}

func (c *serverConn) shutdown() {
	for _, socket := range c.sockets.getAll() {
		socket.disconnect(ReasonServerShuttingDown)
	}
	c.close(ReasonServerShuttingDown)
}

// Close the connection once the queued packets are sent.
// Sockets that are still connected are disconnected with reason.
func (c *serverConn) close(reason Reason) {
	c.mu.Lock()
	if c.closed || c.closeReason != "" {
		c.mu.Unlock()
		return
	}
	c.closeReason = reason
	c.mu.Unlock()

	c.packetQueue.close()
}

func (c *serverConn) onClose(transportReason transport.Reason, err error) {
	c.mu.Lock()
	c.closed = true
	reason := c.closeReason
	if reason == "" {
		reason = Reason(transportReason)
	}
	c.connectTimer.Stop()
	c.mu.Unlock()

	if err != nil {
		c.debug.Log("Connection closed", reason, err)
	} else {
		c.debug.Log("Connection closed", reason)
	}

	c.packetQueue.reset()
	for _, socket := range c.sockets.getAndRemoveAll() {
		socket.onClose(reason)
	}
	c.parser.Reset()

	c.server.onConnClose(c)
}
