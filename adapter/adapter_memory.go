package adapter

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/karagenc/sio-server/debug"
	"github.com/karagenc/sio-server/internal/sync"
	"github.com/karagenc/sio-server/parser"
)

// The default, single process adapter.
//
// rooms and sids are inverse indices of each other:
// sid is in rooms[room] if and only if room is in sids[sid].
// A room without members is removed right away.
type inMemoryAdapter struct {
	mu    sync.Mutex
	rooms map[Room]mapset.Set[SocketID]
	sids  map[SocketID][]Room

	sockets SocketStore
	parser  parser.Parser
	debug   debug.Debugger
}

func NewInMemoryAdapterCreator() Creator {
	return func(socketStore SocketStore, parserCreator parser.Creator, debugger debug.Debugger) Adapter {
		return newInMemoryAdapter(socketStore, parserCreator, debugger)
	}
}

func newInMemoryAdapter(socketStore SocketStore, parserCreator parser.Creator, debugger debug.Debugger) *inMemoryAdapter {
	if debugger == nil {
		debugger = debug.NewNoopDebugger()
	}
	return &inMemoryAdapter{
		rooms:   make(map[Room]mapset.Set[SocketID]),
		sids:    make(map[SocketID][]Room),
		sockets: socketStore,
		parser:  parserCreator(),
		debug:   debugger.WithContext("inMemoryAdapter"),
	}
}

func (a *inMemoryAdapter) Close() {}

func (a *inMemoryAdapter) AddAll(sid SocketID, rooms []Room) error {
	if _, ok := a.sockets.Get(sid); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSocket, sid)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, room := range rooms {
		r, ok := a.rooms[room]
		if !ok {
			r = mapset.NewThreadUnsafeSet[SocketID]()
			a.rooms[room] = r
		}
		if r.Contains(sid) {
			continue
		}
		r.Add(sid)
		a.sids[sid] = append(a.sids[sid], room)
	}
	return nil
}

func (a *inMemoryAdapter) Delete(sid SocketID, room Room) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	joined, ok := a.sids[sid]
	if !ok {
		if _, ok := a.sockets.Get(sid); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSocket, sid)
		}
		return nil
	}

	for i, r := range joined {
		if r == room {
			joined = append(joined[:i:i], joined[i+1:]...)
			break
		}
	}
	if len(joined) == 0 {
		delete(a.sids, sid)
	} else {
		a.sids[sid] = joined
	}

	a.delete(sid, room)
	return nil
}

func (a *inMemoryAdapter) delete(sid SocketID, room Room) {
	r, ok := a.rooms[room]
	if ok {
		r.Remove(sid)
		if r.Cardinality() == 0 {
			delete(a.rooms, room)
		}
	}
}

func (a *inMemoryAdapter) DeleteAll(sid SocketID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, room := range a.sids[sid] {
		a.delete(sid, room)
	}
	delete(a.sids, sid)
}

func (a *inMemoryAdapter) Broadcast(packet *parser.Packet, opts *BroadcastOptions) error {
	buffers, err := a.parser.Encode(packet)
	if err != nil {
		return fmt.Errorf("adapter: broadcast: %w", err)
	}

	for _, sid := range a.targets(opts) {
		if !a.sockets.SendBuffers(sid, buffers) {
			a.debug.Log("Broadcast", "socket not found", sid)
		}
	}
	return nil
}

func (a *inMemoryAdapter) Sockets(rooms mapset.Set[Room]) (sids mapset.Set[SocketID]) {
	opts := NewBroadcastOptions()
	if rooms != nil {
		opts.Rooms = rooms
	}
	return mapset.NewSet(a.targets(opts)...)
}

func (a *inMemoryAdapter) SocketRooms(sid SocketID) (rooms []Room, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	joined, ok := a.sids[sid]
	if !ok {
		return nil, false
	}
	rooms = make([]Room, len(joined))
	copy(rooms, joined)
	return rooms, true
}

func (a *inMemoryAdapter) Rooms() mapset.Set[Room] {
	a.mu.Lock()
	defer a.mu.Unlock()

	rooms := mapset.NewSetWithSize[Room](len(a.rooms))
	for room := range a.rooms {
		rooms.Add(room)
	}
	return rooms
}

func (a *inMemoryAdapter) FetchSockets(opts *BroadcastOptions) (sockets []Socket) {
	a.apply(opts, func(socket Socket) {
		sockets = append(sockets, socket)
	})
	return
}

func (a *inMemoryAdapter) AddSockets(opts *BroadcastOptions, rooms ...Room) {
	a.apply(opts, func(socket Socket) {
		socket.Join(rooms...)
	})
}

func (a *inMemoryAdapter) DelSockets(opts *BroadcastOptions, rooms ...Room) {
	a.apply(opts, func(socket Socket) {
		for _, room := range rooms {
			socket.Leave(room)
		}
	})
}

func (a *inMemoryAdapter) DisconnectSockets(opts *BroadcastOptions, close bool) {
	a.apply(opts, func(socket Socket) {
		socket.Disconnect(close)
	})
}

// The callback runs without the lock held,
// so it is free to join, leave or disconnect.
func (a *inMemoryAdapter) apply(opts *BroadcastOptions, callback func(socket Socket)) {
	for _, sid := range a.targets(opts) {
		socket, ok := a.sockets.Get(sid)
		if ok {
			callback(socket)
		}
	}
}

// targets takes a consistent snapshot of the sockets that match opts:
// the union of the members of opts.Rooms (every socket if empty),
// minus the members of opts.Except.
func (a *inMemoryAdapter) targets(opts *BroadcastOptions) []SocketID {
	a.mu.Lock()
	defer a.mu.Unlock()

	except := mapset.NewThreadUnsafeSet[SocketID]()
	if opts.Except != nil {
		opts.Except.Each(func(room Room) bool {
			if r, ok := a.rooms[room]; ok {
				except = except.Union(r)
			}
			return false
		})
	}

	ids := mapset.NewThreadUnsafeSet[SocketID]()
	if opts.Rooms != nil && opts.Rooms.Cardinality() > 0 {
		opts.Rooms.Each(func(room Room) bool {
			if r, ok := a.rooms[room]; ok {
				ids = ids.Union(r)
			}
			return false
		})
	} else {
		for sid := range a.sids {
			ids.Add(sid)
		}
	}

	return ids.Difference(except).ToSlice()
}
