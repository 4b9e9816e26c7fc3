package sio

import (
	"context"
	"testing"
	"time"

	"github.com/karagenc/sio-server/internal/utils"
	"github.com/karagenc/sio-server/parser"
	jsonparser "github.com/karagenc/sio-server/parser/json"
	"github.com/karagenc/sio-server/parser/json/serializer/stdjson"
	"github.com/karagenc/sio-server/transport/memory"
	"github.com/stretchr/testify/require"
)

const testNothingTimeout = 100 * time.Millisecond

func newTestServer(t testing.TB, config *ServerConfig) (io *Server, provider *memory.Provider, close func()) {
	io = NewServer(config)
	provider = memory.NewProvider()
	require.NoError(t, io.Attach(provider))
	close = func() {
		err := io.Close()
		require.NoError(t, err)
	}
	return
}

// testClient speaks the packet protocol over a memory connection.
type testClient struct {
	t       testing.TB
	conn    *memory.ClientConn
	parser  parser.Parser
	packets chan *parser.Packet
}

func newTestClient(t testing.TB, provider *memory.Provider) *testClient {
	conn, err := provider.Dial()
	require.NoError(t, err)

	c := &testClient{
		t:       t,
		conn:    conn,
		parser:  jsonparser.NewCreator(0, stdjson.New())(),
		packets: make(chan *parser.Packet, 1024),
	}
	go c.receive()
	return c
}

func (c *testClient) receive() {
	defer close(c.packets)
	for {
		data, err := c.conn.Receive(context.Background())
		if err != nil {
			return
		}
		err = c.parser.Add(data, func(packet *parser.Packet) {
			c.packets <- packet
		})
		if err != nil {
			return
		}
	}
}

func (c *testClient) send(packet *parser.Packet) {
	buffers, err := c.parser.Encode(packet)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.Send(buffers...))
}

func (c *testClient) sendRaw(messages ...string) {
	for _, m := range messages {
		require.NoError(c.t, c.conn.Send([]byte(m)))
	}
}

func (c *testClient) connect(nsp string, auth any) {
	packet := &parser.Packet{
		Type:      parser.PacketTypeConnect,
		Namespace: nsp,
	}
	if auth != nil {
		packet.Data = []any{auth}
	}
	c.send(packet)
}

// Connect and wait for the CONNECT packet of the server. Returns the socket ID.
func (c *testClient) mustConnect(nsp string, auth any) SocketID {
	c.connect(nsp, auth)
	packet := c.expect()
	require.Equal(c.t, parser.PacketTypeConnect, packet.Type)
	require.Equal(c.t, nsp, packet.Namespace)
	require.Len(c.t, packet.Data, 1)
	info, ok := packet.Data[0].(map[string]any)
	require.True(c.t, ok)
	sid, ok := info["sid"].(string)
	require.True(c.t, ok)
	require.NotEmpty(c.t, sid)
	return SocketID(sid)
}

func (c *testClient) emit(nsp string, eventName string, v ...any) {
	c.send(&parser.Packet{
		Type:      parser.PacketTypeEvent,
		Namespace: nsp,
		Data:      append([]any{eventName}, v...),
	})
}

func (c *testClient) emitWithAck(nsp string, id uint64, eventName string, v ...any) {
	c.send(&parser.Packet{
		Type:      parser.PacketTypeEvent,
		Namespace: nsp,
		ID:        &id,
		Data:      append([]any{eventName}, v...),
	})
}

func (c *testClient) ack(nsp string, id uint64, v ...any) {
	c.send(&parser.Packet{
		Type:      parser.PacketTypeAck,
		Namespace: nsp,
		ID:        &id,
		Data:      v,
	})
}

func (c *testClient) disconnect(nsp string) {
	c.send(&parser.Packet{
		Type:      parser.PacketTypeDisconnect,
		Namespace: nsp,
	})
}

func (c *testClient) expect() *parser.Packet {
	select {
	case packet, ok := <-c.packets:
		require.True(c.t, ok, "connection closed")
		return packet
	case <-time.After(utils.DefaultTestWaitTimeout):
		require.FailNow(c.t, "timeout exceeded while waiting for a packet")
		return nil
	}
}

func (c *testClient) expectEvent(nsp string, eventName string) *parser.Packet {
	packet := c.expect()
	require.Equal(c.t, parser.PacketTypeEvent, packet.Type, "packet: %+v", packet)
	require.Equal(c.t, nsp, packet.Namespace)
	name, ok := packet.EventName()
	require.True(c.t, ok)
	require.Equal(c.t, eventName, name)
	return packet
}

func (c *testClient) expectNothing() {
	select {
	case packet, ok := <-c.packets:
		if ok {
			require.FailNow(c.t, "unexpected packet", "%+v", packet)
		}
	case <-time.After(testNothingTimeout):
	}
}

// Wait until the server has handled the close of the connection.
func (c *testClient) expectClosed() {
	select {
	case <-c.conn.Closed():
	case <-time.After(utils.DefaultTestWaitTimeout):
		require.FailNow(c.t, "timeout exceeded while waiting for the connection to close")
	}
}

func (c *testClient) close() {
	c.conn.Close()
}
