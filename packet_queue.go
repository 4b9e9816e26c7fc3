package sio

import (
	"github.com/karagenc/sio-server/internal/sync"
	"github.com/karagenc/sio-server/transport"
)

// packetQueue holds the encoded packets of a connection
// until the writer goroutine hands them to the transport.
// Adding never blocks, so a slow peer never stalls a broadcast.
type packetQueue struct {
	mu      sync.Mutex
	packets [][][]byte
	closed  bool

	ready chan struct{}
}

func newPacketQueue() *packetQueue {
	return &packetQueue{
		ready: make(chan struct{}, 1),
	}
}

func (pq *packetQueue) signal() {
	select {
	case pq.ready <- struct{}{}:
	default:
	}
}

// Returns false if the queue is closed.
func (pq *packetQueue) add(buffers [][]byte) (ok bool) {
	pq.mu.Lock()
	if pq.closed {
		pq.mu.Unlock()
		return false
	}
	pq.packets = append(pq.packets, buffers)
	pq.mu.Unlock()

	pq.signal()
	return true
}

func (pq *packetQueue) get() (packets [][][]byte, closed bool) {
	pq.mu.Lock()
	defer pq.mu.Unlock()
	packets = pq.packets
	pq.packets = nil
	return packets, pq.closed
}

// Blocks until there are packets to send.
// ok is false once the queue is closed and drained.
func (pq *packetQueue) poll() (packets [][][]byte, ok bool) {
	for {
		packets, closed := pq.get()
		if len(packets) != 0 {
			return packets, true
		}
		if closed {
			return nil, false
		}
		<-pq.ready
	}
}

// Stop accepting packets. Packets already queued are still polled.
func (pq *packetQueue) close() {
	pq.mu.Lock()
	pq.closed = true
	pq.mu.Unlock()
	pq.signal()
}

// Close and drop the queued packets.
func (pq *packetQueue) reset() {
	pq.mu.Lock()
	pq.closed = true
	pq.packets = nil
	pq.mu.Unlock()
	pq.signal()
}

func (pq *packetQueue) len() int {
	pq.mu.Lock()
	defer pq.mu.Unlock()
	return len(pq.packets)
}

// Write the queued packets to conn until the queue is closed.
// onError is called if the transport fails to send,
// after which the remaining packets are dropped.
func (pq *packetQueue) pollAndSend(conn transport.Conn, onError func(err error)) {
	for {
		packets, ok := pq.poll()
		if !ok {
			return
		}
		for _, buffers := range packets {
			err := conn.Send(buffers...)
			if err != nil {
				pq.reset()
				onError(err)
				return
			}
		}
	}
}
