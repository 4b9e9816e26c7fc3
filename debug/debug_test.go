package debug

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPrintDebugger(t *testing.T) {
	var buf bytes.Buffer
	d := NewWriterDebugger(&buf)

	d.Log("hello", 1, "two")
	assert.Equal(t, "hello: 1: two\n", buf.String())

	buf.Reset()
	d.WithContext("Namespace /chat").Log("socket joined", "room")
	assert.Equal(t, "Namespace /chat: socket joined: room\n", buf.String())

	buf.Reset()
	state := "connected"
	d.WithDynamicContext("Socket abc", func() string { return state }).Log("emit")
	assert.Equal(t, "Socket abc: connected: emit\n", buf.String())

	buf.Reset()
	d.WithContext("ctx").Log("")
	assert.Equal(t, "ctx\n", buf.String())
}

func TestPrintDebuggerNestedContext(t *testing.T) {
	var buf bytes.Buffer
	server := NewWriterDebugger(&buf).WithContext("Server")
	nsp := server.WithContext("Namespace /chat")
	conn := server.WithDynamicContext("serverConn abc", func() string { return "sockets: 1" })

	nsp.WithContext("Socket xyz").Log("joined", "room")
	assert.Equal(t, "Server: Namespace /chat: Socket xyz: joined: room\n", buf.String())

	buf.Reset()
	conn.Log("closed")
	assert.Equal(t, "Server: serverConn abc: sockets: 1: closed\n", buf.String())

	// The dynamic context isn't inherited.
	buf.Reset()
	conn.WithContext("child").Log("x")
	assert.Equal(t, "Server: serverConn abc: child: x\n", buf.String())

	buf.Reset()
	nsp.Log("created")
	assert.Equal(t, "Server: Namespace /chat: created\n", buf.String())
}

func TestNoopDebugger(t *testing.T) {
	d := NewNoopDebugger()
	d.Log("nothing")
	assert.Equal(t, d, d.WithContext("x"))
	assert.Equal(t, d, d.WithDynamicContext("x", func() string { return "y" }))
}

func TestZapDebugger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	d := NewZapDebugger(zap.New(core))

	d.WithContext("Namespace /chat").Log("socket joined", "room")
	d.WithDynamicContext("serverConn abc", func() string { return "sockets: 2" }).Log("closed")

	entries := logs.AllUntimed()
	if !assert.Len(t, entries, 2) {
		return
	}

	assert.Equal(t, "socket joined", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "Namespace /chat", fields["context"])
	assert.Equal(t, []any{"room"}, fields["values"])

	assert.Equal(t, "closed", entries[1].Message)
	fields = entries[1].ContextMap()
	assert.Equal(t, "serverConn abc", fields["context"])
	assert.Equal(t, "sockets: 2", fields["state"])
	assert.NotContains(t, fields, "values")

	d.WithContext("Server").WithContext("Namespace /chat").Log("nested")
	entries = logs.AllUntimed()
	if assert.Len(t, entries, 3) {
		assert.Equal(t, "Server: Namespace /chat", entries[2].ContextMap()["context"])
	}
}
