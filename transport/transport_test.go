package transport

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallbacks(t *testing.T) {
	callbacks := Callbacks{}
	callbacks.SetMissing()

	v := reflect.ValueOf(callbacks)
	assert.Equal(t, 2, v.NumField(), "a field was added to Callbacks, cover it in SetMissing and in this test")

	assert.NotNil(t, callbacks.OnMessage)
	assert.NotNil(t, callbacks.OnClose)
	assert.NotPanics(t, func() {
		callbacks.OnMessage([]byte("x"))
		callbacks.OnClose(ReasonTransportClose, nil)
	})

	var got []byte
	callbacks = Callbacks{OnMessage: func(data []byte) { got = data }}
	callbacks.SetMissing()
	callbacks.OnMessage([]byte("kept"))
	assert.Equal(t, "kept", string(got))
}
