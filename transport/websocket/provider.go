// Package websocket carries Socket.IO packets over WebSocket.
//
// Every buffer of a packet is written as its own WebSocket message:
// the header as a text message, attachments as binary messages.
package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/karagenc/sio-server/internal/base64id"
	"github.com/karagenc/sio-server/internal/sync"
	"github.com/karagenc/sio-server/transport"
	"nhooyr.io/websocket"
)

const DefaultWriteTimeout = 10 * time.Second

type Config struct {
	// Maximum size of a single message in bytes. 0 keeps the default of nhooyr.io/websocket (32 KiB).
	MaxMessageSize int64

	// Maximum duration of writing a single message. A write that takes longer
	// closes the connection. Defaults to DefaultWriteTimeout.
	WriteTimeout time.Duration

	AcceptOptions *websocket.AcceptOptions
}

// Provider is an http.Handler. Mount it on the path
// the clients connect to.
type Provider struct {
	maxMessageSize int64
	writeTimeout   time.Duration
	acceptOptions  *websocket.AcceptOptions

	mu     sync.Mutex
	onConn transport.NewConnCallback
	conns  map[string]*conn
	closed bool
}

var (
	_ transport.Provider = (*Provider)(nil)
	_ http.Handler       = (*Provider)(nil)
)

func NewProvider(config *Config) *Provider {
	if config == nil {
		config = new(Config)
	}
	p := &Provider{
		maxMessageSize: config.MaxMessageSize,
		writeTimeout:   config.WriteTimeout,
		acceptOptions:  config.AcceptOptions,
		conns:          make(map[string]*conn),
	}
	if p.writeTimeout == 0 {
		p.writeTimeout = DefaultWriteTimeout
	}
	return p
}

func (p *Provider) Attach(onConn transport.NewConnCallback) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return transport.ErrProviderClosed
	}
	if p.onConn != nil {
		return transport.ErrAlreadyAttached
	}
	p.onConn = onConn
	return nil
}

func (p *Provider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	onConn := p.onConn
	closed := p.closed
	p.mu.Unlock()

	if closed || onConn == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	ws, err := websocket.Accept(w, r, p.acceptOptions)
	if err != nil {
		// Accept has already written the response.
		return
	}
	if p.maxMessageSize != 0 {
		ws.SetReadLimit(p.maxMessageSize)
	}

	c, err := p.register(r.Context(), ws)
	if err != nil {
		ws.Close(websocket.StatusInternalError, "")
		return
	}
	defer p.remove(c.id)

	callbacks := onConn(c)
	if callbacks == nil {
		callbacks = new(transport.Callbacks)
	}
	callbacks.SetMissing()

	// The handler keeps serving the connection until it is closed.
	c.run(r.Context(), callbacks)
}

func (p *Provider) register(ctx context.Context, ws *websocket.Conn) (*conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, transport.ErrProviderClosed
	}

	id, err := base64id.GenerateUnique(func(id string) bool {
		_, ok := p.conns[id]
		return ok
	})
	if err != nil {
		return nil, err
	}
	c := newConn(ctx, id, ws, p.writeTimeout)
	p.conns[id] = c
	return c, nil
}

func (p *Provider) remove(id string) {
	p.mu.Lock()
	delete(p.conns, id)
	p.mu.Unlock()
}

func (p *Provider) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	conns := make([]*conn, 0, len(p.conns))
	for _, c := range p.conns {
		conns = append(conns, c)
	}
	p.mu.Unlock()

	for _, c := range conns {
		c.close(websocket.StatusGoingAway)
	}
	return nil
}
