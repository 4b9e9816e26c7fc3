package sio

import "github.com/karagenc/sio-server/internal/sync"

// ackSender makes sure a single ACK is sent for an event,
// no matter how many handlers received the AckFunc or how many times they called it.
type ackSender struct {
	socket *serverSocket
	id     uint64

	mu   sync.Mutex
	sent bool
}

func newAckSender(socket *serverSocket, id uint64) *ackSender {
	return &ackSender{
		socket: socket,
		id:     id,
	}
}

func (a *ackSender) Send(v ...any) {
	a.mu.Lock()
	if a.sent {
		a.mu.Unlock()
		return
	}
	a.sent = true
	a.mu.Unlock()

	a.socket.sendAckPacket(a.id, v)
}
