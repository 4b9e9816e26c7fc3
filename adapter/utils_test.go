package adapter

import (
	"github.com/karagenc/sio-server/debug"
	"github.com/karagenc/sio-server/internal/sync"
	jsonparser "github.com/karagenc/sio-server/parser/json"
	"github.com/karagenc/sio-server/parser/json/serializer/stdjson"
)

type testSocketStore struct {
	mu          sync.Mutex
	sockets     map[SocketID]Socket
	sendBuffers func(sid SocketID, buffers [][]byte) (ok bool)
}

func newTestSocketStore() *testSocketStore {
	return &testSocketStore{
		sockets:     make(map[SocketID]Socket),
		sendBuffers: func(sid SocketID, buffers [][]byte) (ok bool) { return true },
	}
}

func (s *testSocketStore) SendBuffers(sid SocketID, buffers [][]byte) (ok bool) {
	if _, ok := s.Get(sid); !ok {
		return false
	}
	return s.sendBuffers(sid, buffers)
}

func (s *testSocketStore) Get(sid SocketID) (so Socket, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	so, ok = s.sockets[sid]
	return
}

func (s *testSocketStore) GetAll() []Socket {
	s.mu.Lock()
	defer s.mu.Unlock()

	sockets := make([]Socket, 0, len(s.sockets))
	for _, so := range s.sockets {
		sockets = append(sockets, so)
	}
	return sockets
}

func (s *testSocketStore) Set(so Socket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sockets[so.ID()] = so
}

func (s *testSocketStore) Remove(sid SocketID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sockets, sid)
}

// testSocket forwards room operations to the adapter,
// the way a real socket does.
type testSocket struct {
	id      SocketID
	adapter Adapter

	Connected bool
}

func (s *testSocket) ID() SocketID { return s.id }

func (s *testSocket) Join(room ...Room) { s.adapter.AddAll(s.id, room) }

func (s *testSocket) Leave(room Room) { s.adapter.Delete(s.id, room) }

func (s *testSocket) Disconnect(close bool) {
	s.Connected = false
	s.adapter.DeleteAll(s.id)
}

func newTestInMemoryAdapter() (*inMemoryAdapter, *testSocketStore) {
	store := newTestSocketStore()
	a := newInMemoryAdapter(store, jsonparser.NewCreator(0, stdjson.New()), debug.NewNoopDebugger())
	return a, store
}

// Registers sockets with the store and joins each to the room named after its ID.
func addTestSockets(a *inMemoryAdapter, store *testSocketStore, sids ...SocketID) map[SocketID]*testSocket {
	sockets := make(map[SocketID]*testSocket, len(sids))
	for _, sid := range sids {
		s := &testSocket{id: sid, adapter: a, Connected: true}
		store.Set(s)
		a.AddAll(sid, []Room{Room(sid)})
		sockets[sid] = s
	}
	return sockets
}
