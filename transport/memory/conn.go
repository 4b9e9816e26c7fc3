package memory

import (
	"context"
	"time"

	"github.com/karagenc/sio-server/internal/sync"
	"github.com/karagenc/sio-server/transport"
)

// serverConn is the end handed to the server.
type serverConn struct {
	id       string
	provider *Provider

	inbound  *messageQueue // client -> server
	outbound *messageQueue // server -> client

	mu     sync.Mutex
	reason transport.Reason
	err    error
	closed bool

	client *ClientConn
}

func newServerConn(id string, provider *Provider) *serverConn {
	c := &serverConn{
		id:       id,
		provider: provider,
		inbound:  newMessageQueue(),
		outbound: newMessageQueue(),
	}
	c.client = &ClientConn{
		c:    c,
		done: make(chan struct{}),
	}
	return c
}

func (c *serverConn) ID() string { return c.id }

func (c *serverConn) Send(buffers ...[]byte) error {
	if !c.outbound.push(buffers...) {
		return transport.ErrClosed
	}
	return nil
}

func (c *serverConn) Close() error {
	c.close(transport.ReasonForcedClose, nil, true)
	return nil
}

// The first close wins. If discard is true, messages that
// the server hasn't read yet are dropped.
func (c *serverConn) close(reason transport.Reason, err error, discard bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.reason = reason
	c.err = err
	c.mu.Unlock()

	c.inbound.close(discard)
	c.outbound.close(false)
}

func (c *serverConn) run(callbacks *transport.Callbacks) {
	defer func() {
		c.provider.remove(c.id)

		c.mu.Lock()
		reason, err := c.reason, c.err
		c.mu.Unlock()

		callbacks.OnClose(reason, err)
		close(c.client.done)
	}()

	for {
		data, err := c.inbound.pop(context.Background())
		if err != nil {
			return
		}
		callbacks.OnMessage(data)
	}
}

// ClientConn is the client end of a connection.
type ClientConn struct {
	c    *serverConn
	done chan struct{}
}

// ID of the connection, the same as seen by the server.
func (cc *ClientConn) ID() string { return cc.c.id }

// Send messages to the server. Messages are received in order.
func (cc *ClientConn) Send(messages ...[]byte) error {
	if !cc.c.inbound.push(messages...) {
		return transport.ErrClosed
	}
	return nil
}

// Receive the next message sent by the server.
// Returns io.EOF once the connection is closed and
// every message sent before the close was received.
func (cc *ClientConn) Receive(ctx context.Context) ([]byte, error) {
	return cc.c.outbound.pop(ctx)
}

// ReceiveTimeout is Receive with a deadline.
func (cc *ClientConn) ReceiveTimeout(timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return cc.Receive(ctx)
}

// Close the connection from the client side.
// Messages already sent are still delivered to the server,
// then the server sees the close with ReasonTransportClose.
func (cc *ClientConn) Close() error {
	cc.c.close(transport.ReasonTransportClose, nil, false)
	return nil
}

// Simulate a broken connection. The server sees ReasonTransportError.
func (cc *ClientConn) CloseWithError(err error) {
	cc.c.close(transport.ReasonTransportError, err, true)
}

// Closed is closed after the server handled the close of the connection.
func (cc *ClientConn) Closed() <-chan struct{} {
	return cc.done
}

// Reason the connection was closed for. Only meaningful after Closed.
func (cc *ClientConn) Reason() (transport.Reason, error) {
	cc.c.mu.Lock()
	defer cc.c.mu.Unlock()
	return cc.c.reason, cc.c.err
}
