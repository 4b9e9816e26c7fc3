package sio

import (
	"github.com/karagenc/sio-server/adapter"
	"github.com/karagenc/sio-server/internal/sync"
)

type (
	// Sockets of a connection, keyed by namespace.
	connSocketStore struct {
		mu      sync.Mutex
		sockets map[string]*serverSocket
	}

	// We could've used mapset instead of this,
	// but mapset doesn't have an equivalent of the getOrCreate method.
	nspStore struct {
		mu   sync.Mutex
		nsps map[string]*Namespace
	}

	// Connected sockets of a namespace.
	nspSocketStore struct {
		mu      sync.Mutex
		sockets map[SocketID]*serverSocket
	}

	// This is to ensure we have a socket store with a
	// right function signature that matches with adapter's
	// `SocketStore`.
	adapterSocketStore struct {
		store *nspSocketStore
	}

	serverConnStore struct {
		mu    sync.Mutex
		conns map[string]*serverConn
	}
)

func newConnSocketStore() *connSocketStore {
	return &connSocketStore{sockets: make(map[string]*serverSocket)}
}

func newNspStore() *nspStore {
	return &nspStore{nsps: make(map[string]*Namespace)}
}

func newNspSocketStore() *nspSocketStore {
	return &nspSocketStore{sockets: make(map[SocketID]*serverSocket)}
}

func newAdapterSocketStore(store *nspSocketStore) *adapterSocketStore {
	return &adapterSocketStore{store: store}
}

func newServerConnStore() *serverConnStore {
	return &serverConnStore{conns: make(map[string]*serverConn)}
}

func (s *connSocketStore) getByNsp(nsp string) (socket *serverSocket, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	socket, ok = s.sockets[nsp]
	return
}

func (s *connSocketStore) getAll() (sockets []*serverSocket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sockets = make([]*serverSocket, 0, len(s.sockets))
	for _, socket := range s.sockets {
		sockets = append(sockets, socket)
	}
	return
}

func (s *connSocketStore) getAndRemoveAll() (sockets []*serverSocket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sockets = make([]*serverSocket, 0, len(s.sockets))
	for _, socket := range s.sockets {
		sockets = append(sockets, socket)
	}
	s.sockets = make(map[string]*serverSocket)
	return
}

// Returns false if the connection already has a socket on the namespace.
func (s *connSocketStore) setIfAbsent(socket *serverSocket) (ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sockets[socket.nsp.Name()]; exists {
		return false
	}
	s.sockets[socket.nsp.Name()] = socket
	return true
}

// Only removes the socket if it is the one stored for its namespace.
func (s *connSocketStore) remove(socket *serverSocket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stored, ok := s.sockets[socket.nsp.Name()]; ok && stored == socket {
		delete(s.sockets, socket.nsp.Name())
	}
}

func (s *connSocketStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sockets)
}

func (s *nspStore) getOrCreate(name string, server *Server) (nsp *Namespace, created bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nsp, ok := s.nsps[name]
	if !ok {
		nsp = newNamespace(name, server)
		s.nsps[nsp.Name()] = nsp
		created = true
	}
	return
}

func (s *nspStore) get(name string) (nsp *Namespace, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	nsp, ok = s.nsps[name]
	return
}

func (s *nspStore) getAll() (nsps []*Namespace) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nsps = make([]*Namespace, 0, len(s.nsps))
	for _, nsp := range s.nsps {
		nsps = append(nsps, nsp)
	}
	return
}

func (s *nspStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nsps)
}

func (s *nspSocketStore) get(sid SocketID) (socket *serverSocket, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	socket, ok = s.sockets[sid]
	return
}

func (s *nspSocketStore) getAll() []*serverSocket {
	s.mu.Lock()
	defer s.mu.Unlock()

	sockets := make([]*serverSocket, 0, len(s.sockets))
	for _, socket := range s.sockets {
		sockets = append(sockets, socket)
	}
	return sockets
}

func (s *nspSocketStore) set(socket *serverSocket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets[socket.ID()] = socket
}

func (s *nspSocketStore) remove(sid SocketID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sockets, sid)
}

func (s *nspSocketStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sockets)
}

// Queue already encoded buffers on the connection of a socket.
func (s *adapterSocketStore) SendBuffers(sid SocketID, buffers [][]byte) (ok bool) {
	socket, ok := s.store.get(sid)
	if !ok {
		return false
	}
	return socket.conn.sendBuffers(buffers)
}

func (s *adapterSocketStore) Get(sid SocketID) (socket adapter.Socket, ok bool) {
	so, ok := s.store.get(sid)
	if !ok {
		return nil, false
	}
	return so, true
}

func (s *adapterSocketStore) GetAll() []adapter.Socket {
	_sockets := s.store.getAll()
	sockets := make([]adapter.Socket, len(_sockets))
	for i := range sockets {
		sockets[i] = _sockets[i]
	}
	return sockets
}

func (s *serverConnStore) set(c *serverConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c.ID()] = c
}

func (s *serverConnStore) remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, id)
}

func (s *serverConnStore) getAll() (conns []*serverConn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conns = make([]*serverConn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	return
}

func (s *serverConnStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}
