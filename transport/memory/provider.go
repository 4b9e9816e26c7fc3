// Package memory is an in-process transport.
// It is used to embed the server and to drive it from tests:
// Dial returns the client end of a new connection.
package memory

import (
	"github.com/karagenc/sio-server/internal/base64id"
	"github.com/karagenc/sio-server/internal/sync"
	"github.com/karagenc/sio-server/transport"
)

type Provider struct {
	mu     sync.Mutex
	onConn transport.NewConnCallback
	conns  map[string]*serverConn
	closed bool
}

var _ transport.Provider = (*Provider)(nil)

func NewProvider() *Provider {
	return &Provider{
		conns: make(map[string]*serverConn),
	}
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

// Dial opens a new connection and hands its server end
// to the attached callback before returning the client end.
func (p *Provider) Dial() (*ClientConn, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, transport.ErrProviderClosed
	}
	onConn := p.onConn
	if onConn == nil {
		p.mu.Unlock()
		return nil, transport.ErrNotAttached
	}
	id, err := base64id.GenerateUnique(func(id string) bool {
		_, ok := p.conns[id]
		return ok
	})
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	c := newServerConn(id, p)
	p.conns[id] = c
	p.mu.Unlock()

	callbacks := onConn(c)
	if callbacks == nil {
		callbacks = new(transport.Callbacks)
	}
	callbacks.SetMissing()

	go c.run(callbacks)
	return c.client, nil
}

func (p *Provider) remove(id string) {
	p.mu.Lock()
	delete(p.conns, id)
	p.mu.Unlock()
}

// Number of open connections.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.conns)
}

func (p *Provider) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	conns := make([]*serverConn, 0, len(p.conns))
	for _, c := range p.conns {
		conns = append(conns, c)
	}
	p.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
	return nil
}
