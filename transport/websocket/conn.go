package websocket

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/karagenc/sio-server/internal/sync"
	"github.com/karagenc/sio-server/transport"
	"nhooyr.io/websocket"
)

type conn struct {
	id string
	ws *websocket.Conn

	// Cancelled on close, so that a write to a peer
	// that stopped reading doesn't outlive the connection.
	ctx          context.Context
	cancel       context.CancelFunc
	writeTimeout time.Duration

	// A packet is written as consecutive messages.
	// Keep writers from interleaving them.
	writeMu sync.Mutex

	mu     sync.Mutex
	forced bool

	once sync.Once
}

func newConn(ctx context.Context, id string, ws *websocket.Conn, writeTimeout time.Duration) *conn {
	ctx, cancel := context.WithCancel(ctx)
	return &conn{
		id:           id,
		ws:           ws,
		ctx:          ctx,
		cancel:       cancel,
		writeTimeout: writeTimeout,
	}
}

func (c *conn) ID() string { return c.id }

func (c *conn) Send(buffers ...[]byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	for i, buf := range buffers {
		mt := websocket.MessageBinary
		if i == 0 {
			mt = websocket.MessageText
		}
		err := c.write(mt, buf)
		if err != nil {
			return err
		}
	}
	return nil
}

// A write that fails on its context closes the WebSocket connection.
func (c *conn) write(mt websocket.MessageType, buf []byte) error {
	ctx, cancel := context.WithTimeout(c.ctx, c.writeTimeout)
	defer cancel()
	return c.ws.Write(ctx, mt, buf)
}

func (c *conn) Close() error {
	c.close(websocket.StatusNormalClosure)
	return nil
}

func (c *conn) close(status websocket.StatusCode) {
	c.once.Do(func() {
		c.mu.Lock()
		c.forced = true
		c.mu.Unlock()
		c.cancel()

		// Close waits for the close handshake of the peer.
		// It must not block a caller that runs inside a callback.
		go c.ws.Close(status, "")
	})
}

func (c *conn) run(ctx context.Context, callbacks *transport.Callbacks) {
	for {
		_, data, err := c.ws.Read(ctx)
		if err != nil {
			reason, err := c.closeReason(err)
			// Release the underlying connection if the peer went away.
			c.once.Do(func() {
				c.cancel()
				go c.ws.Close(websocket.StatusNormalClosure, "")
			})
			callbacks.OnClose(reason, err)
			return
		}
		callbacks.OnMessage(data)
	}
}

func (c *conn) closeReason(err error) (transport.Reason, error) {
	c.mu.Lock()
	forced := c.forced
	c.mu.Unlock()
	if forced {
		return transport.ReasonForcedClose, nil
	}

	status := websocket.CloseStatus(err)
	if isExpectedClose(status) || (status == -1 && errors.Is(err, io.EOF)) {
		return transport.ReasonTransportClose, nil
	}
	return transport.ReasonTransportError, err
}
