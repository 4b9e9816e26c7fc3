package memory

import (
	"context"
	"io"

	"github.com/karagenc/sio-server/internal/sync"
)

// messageQueue is an unbounded FIFO of messages.
// Pushing never blocks; popping blocks until a message arrives
// or the queue is closed and drained.
type messageQueue struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool

	ready chan struct{}
}

func newMessageQueue() *messageQueue {
	return &messageQueue{
		ready: make(chan struct{}, 1),
	}
}

func (q *messageQueue) push(messages ...[]byte) (ok bool) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	for _, m := range messages {
		c := make([]byte, len(m))
		copy(c, m)
		q.messages = append(q.messages, c)
	}
	q.mu.Unlock()

	q.signal()
	return true
}

func (q *messageQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Returns io.EOF once the queue is closed and every message was popped.
func (q *messageQueue) pop(ctx context.Context) ([]byte, error) {
	for {
		q.mu.Lock()
		if len(q.messages) > 0 {
			m := q.messages[0]
			q.messages[0] = nil
			q.messages = q.messages[1:]
			q.mu.Unlock()
			return m, nil
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return nil, io.EOF
		}

		select {
		case <-q.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// If discard is true, messages waiting in the queue are dropped.
func (q *messageQueue) close(discard bool) {
	q.mu.Lock()
	q.closed = true
	if discard {
		q.messages = nil
	}
	q.mu.Unlock()
	q.signal()
}
