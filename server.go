package sio

import (
	"fmt"
	"strings"
	"time"

	"github.com/karagenc/sio-server/adapter"
	"github.com/karagenc/sio-server/internal/sync"
	"github.com/karagenc/sio-server/metrics"
	"github.com/karagenc/sio-server/parser"
	jsonparser "github.com/karagenc/sio-server/parser/json"
	"github.com/karagenc/sio-server/parser/json/serializer/fast"
	"github.com/karagenc/sio-server/transport"
	"go.uber.org/multierr"
)

const (
	DefaultConnectTimeout = 45 * time.Second
	DefaultMaxAttachments = 10
)

var errServerClosed = fmt.Errorf("sio: server is closed")

type ServerConfig struct {
	// Defaults to the JSON parser with the fastest serializer available.
	ParserCreator parser.Creator

	// Defaults to the in-memory adapter.
	AdapterCreator adapter.Creator

	// Duration a connection is allowed to stay open without
	// joining a namespace. Defaults to 45 seconds.
	ConnectTimeout time.Duration

	// Maximum number of binary attachments of a packet.
	// Defaults to DefaultMaxAttachments. A negative value means no limit.
	// Only used by the default parser.
	MaxAttachments int

	// By default a packet that cannot be decoded is dropped and the
	// connection keeps going. If set, the connection is closed instead.
	CloseOnParseError bool

	// Prometheus collectors, created with metrics.New. Optional.
	Metrics *metrics.Metrics

	// For debugging purposes. Leave it nil if it is of no use.
	Debugger Debugger
}

type Server struct {
	parserCreator     parser.Creator
	adapterCreator    adapter.Creator
	connectTimeout    time.Duration
	closeOnParseError bool

	nsps    *nspStore
	conns   *serverConnStore
	metrics *metrics.Metrics

	mu        sync.Mutex
	providers []transport.Provider
	closed    bool
	// Counts the open connections. Add is only called while
	// mu is held and closed is false, so Close can Wait on it.
	connWG sync.WaitGroup

	newNamespaceHandlers  *handlerStore[ServerNewNamespaceFunc]
	anyConnectionHandlers *handlerStore[ServerAnyConnectionFunc]

	debug Debugger
}

func NewServer(config *ServerConfig) *Server {
	if config == nil {
		config = new(ServerConfig)
	}

	server := &Server{
		parserCreator:     config.ParserCreator,
		adapterCreator:    config.AdapterCreator,
		connectTimeout:    config.ConnectTimeout,
		closeOnParseError: config.CloseOnParseError,

		nsps:    newNspStore(),
		conns:   newServerConnStore(),
		metrics: config.Metrics,

		newNamespaceHandlers:  newHandlerStore[ServerNewNamespaceFunc](),
		anyConnectionHandlers: newHandlerStore[ServerAnyConnectionFunc](),
	}

	if server.parserCreator == nil {
		maxAttachments := config.MaxAttachments
		if maxAttachments == 0 {
			maxAttachments = DefaultMaxAttachments
		}
		server.parserCreator = jsonparser.NewCreator(maxAttachments, fast.New())
	}
	if server.adapterCreator == nil {
		server.adapterCreator = adapter.NewInMemoryAdapterCreator()
	}
	if server.connectTimeout == 0 {
		server.connectTimeout = DefaultConnectTimeout
	}

	if config.Debugger != nil {
		server.debug = config.Debugger
	} else {
		server.debug = NewNoopDebugger()
	}
	server.debug = server.debug.WithContext("Server")

	// The default namespace always exists.
	server.Of("/")
	return server
}

// Start accepting the connections of a transport provider.
// A server can be attached to more than one provider.
func (s *Server) Attach(provider transport.Provider) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errServerClosed
	}

	err := provider.Attach(s.onConn)
	if err != nil {
		return err
	}
	s.providers = append(s.providers, provider)
	return nil
}

func (s *Server) onConn(conn transport.Conn) *transport.Callbacks {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.debug.Log("Rejecting connection, server is closed", conn.ID())
		conn.Close()
		return nil
	}
	// Registered before mu is released, so that Close sees every connection it waits for.
	s.connWG.Add(1)
	c, callbacks := newServerConn(s, conn)
	s.conns.set(c)
	s.mu.Unlock()

	s.metrics.ConnOpened()
	s.debug.Log("New connection", c.ID())
	return callbacks
}

func (s *Server) onConnClose(c *serverConn) {
	s.conns.remove(c.ID())
	s.metrics.ConnClosed()
	s.connWG.Done()
}

func normalizeNamespace(name string) string {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return name
}

// Retrieves the namespace with the given name, creating it if it doesn't exist.
// "" and "/" both refer to the default namespace.
func (s *Server) Of(namespace string) *Namespace {
	namespace = normalizeNamespace(namespace)
	nsp, created := s.nsps.getOrCreate(namespace, s)
	if created {
		s.debug.Log("New namespace", namespace)
		for _, handler := range s.newNamespaceHandlers.getAll() {
			handler(nsp)
		}
	}
	return nsp
}

// Register a middleware on the default namespace.
func (s *Server) Use(f NspMiddlewareFunc) {
	s.Of("/").Use(f)
}

func (s *Server) Sockets() []ServerSocket {
	return s.Of("/").Sockets()
}

// Sets a modifier for a subsequent event emission that the event
// will only be broadcast to clients that have joined the given room.
//
// To emit to multiple rooms, you can call To several times.
func (s *Server) To(room ...Room) *BroadcastOperator {
	return s.Of("/").To(room...)
}

// Alias of To(...)
func (s *Server) In(room ...Room) *BroadcastOperator {
	return s.Of("/").In(room...)
}

// Sets a modifier for a subsequent event emission that the event
// will only be broadcast to clients that have not joined the given rooms.
func (s *Server) Except(room ...Room) *BroadcastOperator {
	return s.Of("/").Except(room...)
}

// Emits an event to all connected clients of the default namespace.
func (s *Server) Emit(eventName string, v ...any) error {
	return s.Of("/").Emit(eventName, v...)
}

// Emits a `message` event to all connected clients of the default namespace.
func (s *Server) Send(v ...any) error {
	return s.Of("/").Send(v...)
}

// Returns the matching socket instances of the default namespace.
func (s *Server) FetchSockets() []ServerSocket {
	return s.Of("/").FetchSockets()
}

// Makes the sockets of the default namespace join the specified rooms.
func (s *Server) SocketsJoin(room ...Room) {
	s.Of("/").SocketsJoin(room...)
}

// Makes the sockets of the default namespace leave the specified rooms.
func (s *Server) SocketsLeave(room ...Room) {
	s.Of("/").SocketsLeave(room...)
}

// Makes the sockets of the default namespace disconnect.
func (s *Server) DisconnectSockets(close bool) {
	s.Of("/").DisconnectSockets(close)
}

func (s *Server) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close stops accepting connections, disconnects every socket
// of every namespace and closes their connections once their
// queued packets are written. It returns after every connection
// is closed and every provider is released.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	providers := s.providers
	s.mu.Unlock()

	s.debug.Log("Closing")

	for _, c := range s.conns.getAll() {
		c.shutdown()
	}
	// Providers are closed after the connections,
	// otherwise the queued DISCONNECT packets would be lost.
	s.connWG.Wait()

	var err error
	for _, provider := range providers {
		err = multierr.Append(err, provider.Close())
	}

	for _, nsp := range s.nsps.getAll() {
		nsp.adapter.Close()
	}
	return err
}
