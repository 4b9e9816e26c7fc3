package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPacketTypeChar(t *testing.T) {
	for typ := PacketTypeConnect; typ <= packetTypeMax; typ++ {
		var decoded PacketType
		err := decoded.FromChar(typ.ToChar())
		assert.NoError(t, err)
		assert.Equal(t, typ, decoded)
	}

	var typ PacketType
	assert.ErrorIs(t, typ.FromChar('7'), errInvalidPacketType)
	assert.ErrorIs(t, typ.FromChar('a'), errInvalidPacketType)
}

func TestPacketAccessors(t *testing.T) {
	p := &Packet{Type: PacketTypeEvent, Data: []any{"hello", 1.0, "x"}}
	name, ok := p.EventName()
	assert.True(t, ok)
	assert.Equal(t, "hello", name)
	assert.Equal(t, []any{1.0, "x"}, p.Args())

	p = &Packet{Type: PacketTypeAck, Data: []any{"a"}}
	_, ok = p.EventName()
	assert.False(t, ok)
	assert.Equal(t, []any{"a"}, p.Args())
	assert.True(t, p.IsAck())
	assert.False(t, p.IsBinary())
}

func TestHasBinary(t *testing.T) {
	type nested struct {
		Name string
		File Binary
	}

	assert.False(t, HasBinary(nil))
	assert.False(t, HasBinary("abc"))
	assert.False(t, HasBinary([]byte("abc")))
	assert.True(t, HasBinary(Binary("abc")))
	assert.True(t, HasBinary([]any{1.0, map[string]any{"a": Binary("x")}}))
	assert.True(t, HasBinary(&nested{File: Binary("x")}))
	assert.False(t, HasBinary(nested{Name: "n"}))
	assert.True(t, HasBinary([]nested{{File: Binary("x")}}))
}
