package memory

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/karagenc/sio-server/internal/sync"
	"github.com/karagenc/sio-server/internal/utils"
	"github.com/karagenc/sio-server/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu       sync.Mutex
	conn     transport.Conn
	messages []string
	reason   transport.Reason
	err      error
	closes   int
	closed   chan struct{}
}

func newRecorder() *recorder {
	return &recorder{closed: make(chan struct{})}
}

func (r *recorder) onConn(conn transport.Conn) *transport.Callbacks {
	r.mu.Lock()
	r.conn = conn
	r.mu.Unlock()
	return &transport.Callbacks{
		OnMessage: func(data []byte) {
			r.mu.Lock()
			r.messages = append(r.messages, string(data))
			r.mu.Unlock()
		},
		OnClose: func(reason transport.Reason, err error) {
			r.mu.Lock()
			r.reason = reason
			r.err = err
			r.closes++
			r.mu.Unlock()
			close(r.closed)
		},
	}
}

func (r *recorder) waitClosed(t *testing.T) {
	t.Helper()
	select {
	case <-r.closed:
	case <-time.After(utils.DefaultTestWaitTimeout):
		t.Fatal("timeout")
	}
}

func TestAttach(t *testing.T) {
	p := NewProvider()
	_, err := p.Dial()
	assert.ErrorIs(t, err, transport.ErrNotAttached)

	require.NoError(t, p.Attach(newRecorder().onConn))
	assert.ErrorIs(t, p.Attach(newRecorder().onConn), transport.ErrAlreadyAttached)

	require.NoError(t, p.Close())
	_, err = p.Dial()
	assert.ErrorIs(t, err, transport.ErrProviderClosed)
}

func TestMessagesInOrder(t *testing.T) {
	p := NewProvider()
	r := newRecorder()
	require.NoError(t, p.Attach(r.onConn))

	cc, err := p.Dial()
	require.NoError(t, err)
	assert.Equal(t, r.conn.ID(), cc.ID())

	var expected []string
	for i := 0; i < 100; i++ {
		m := fmt.Sprintf("m%d", i)
		expected = append(expected, m)
		require.NoError(t, cc.Send([]byte(m)))
	}
	require.NoError(t, cc.Close())
	r.waitClosed(t)

	assert.Equal(t, expected, r.messages)
	assert.Equal(t, transport.ReasonTransportClose, r.reason)
	assert.NoError(t, r.err)
	assert.Equal(t, 1, r.closes)
	assert.Equal(t, 0, p.Len())
}

func TestServerSend(t *testing.T) {
	p := NewProvider()
	r := newRecorder()
	require.NoError(t, p.Attach(r.onConn))

	cc, err := p.Dial()
	require.NoError(t, err)

	require.NoError(t, r.conn.Send([]byte("header"), []byte("attachment")))

	data, err := cc.ReceiveTimeout(utils.DefaultTestWaitTimeout)
	require.NoError(t, err)
	assert.Equal(t, "header", string(data))
	data, err = cc.ReceiveTimeout(utils.DefaultTestWaitTimeout)
	require.NoError(t, err)
	assert.Equal(t, "attachment", string(data))

	_, err = cc.ReceiveTimeout(50 * time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestForcedClose(t *testing.T) {
	p := NewProvider()
	r := newRecorder()
	require.NoError(t, p.Attach(r.onConn))

	cc, err := p.Dial()
	require.NoError(t, err)

	require.NoError(t, r.conn.Send([]byte("last words")))
	require.NoError(t, r.conn.Close())
	require.NoError(t, r.conn.Close())
	r.waitClosed(t)

	assert.Equal(t, transport.ReasonForcedClose, r.reason)
	assert.Equal(t, 1, r.closes)

	// Messages sent before the close are still received.
	data, err := cc.ReceiveTimeout(utils.DefaultTestWaitTimeout)
	require.NoError(t, err)
	assert.Equal(t, "last words", string(data))
	_, err = cc.ReceiveTimeout(utils.DefaultTestWaitTimeout)
	assert.ErrorIs(t, err, io.EOF)

	assert.ErrorIs(t, r.conn.Send([]byte("x")), transport.ErrClosed)
	assert.ErrorIs(t, cc.Send([]byte("x")), transport.ErrClosed)

	<-cc.Closed()
	reason, _ := cc.Reason()
	assert.Equal(t, transport.ReasonForcedClose, reason)
}

func TestCloseWithError(t *testing.T) {
	p := NewProvider()
	r := newRecorder()
	require.NoError(t, p.Attach(r.onConn))

	cc, err := p.Dial()
	require.NoError(t, err)

	cc.CloseWithError(fmt.Errorf("connection reset"))
	r.waitClosed(t)

	assert.Equal(t, transport.ReasonTransportError, r.reason)
	assert.EqualError(t, r.err, "connection reset")
}

func TestCloseFromCallback(t *testing.T) {
	p := NewProvider()
	closed := make(chan transport.Reason, 1)
	require.NoError(t, p.Attach(func(conn transport.Conn) *transport.Callbacks {
		return &transport.Callbacks{
			OnMessage: func(data []byte) {
				conn.Close()
			},
			OnClose: func(reason transport.Reason, err error) {
				closed <- reason
			},
		}
	}))

	cc, err := p.Dial()
	require.NoError(t, err)
	require.NoError(t, cc.Send([]byte("bye")))

	select {
	case reason := <-closed:
		assert.Equal(t, transport.ReasonForcedClose, reason)
	case <-time.After(utils.DefaultTestWaitTimeout):
		t.Fatal("timeout")
	}
}

func TestProviderClose(t *testing.T) {
	p := NewProvider()
	const n = 5
	tw := utils.NewTestWaiter(n)
	require.NoError(t, p.Attach(func(conn transport.Conn) *transport.Callbacks {
		return &transport.Callbacks{
			OnClose: func(reason transport.Reason, err error) {
				assert.Equal(t, transport.ReasonForcedClose, reason)
				tw.Done()
			},
		}
	}))

	for i := 0; i < n; i++ {
		_, err := p.Dial()
		require.NoError(t, err)
	}
	assert.Equal(t, n, p.Len())

	require.NoError(t, p.Close())
	tw.WaitTimeout(t, utils.DefaultTestWaitTimeout)
	assert.Equal(t, 0, p.Len())
}
