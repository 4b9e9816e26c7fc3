package sio

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventHandler(t *testing.T) {
	_, err := newEventHandler(nil)
	require.Error(t, err)

	_, err = newEventHandler("not a function")
	require.Error(t, err)

	var nilFunc func()
	_, err = newEventHandler(nilFunc)
	require.Error(t, err)

	h, err := newEventHandler(func(s string, ack AckFunc) {})
	require.NoError(t, err)
	assert.True(t, h.hasAck)
	assert.Len(t, h.inputArgs, 1)

	_, err = newEventHandler(func(ack AckFunc, s string) {})
	require.Error(t, err, "AckFunc must be the last parameter")

	_, err = newAckHandler(func(s string, ack AckFunc) {})
	require.Error(t, err, "acknowledgement callbacks cannot acknowledge")

	h, err = newAckHandler(func(s string, n int) {})
	require.NoError(t, err)
	assert.False(t, h.hasAck)
}

func TestEventHandlerCall(t *testing.T) {
	t.Run("should convert values into parameter types", func(t *testing.T) {
		type user struct {
			Name string   `json:"name"`
			Age  int      `json:"age"`
			Tags []string `json:"tags"`
		}

		var (
			gotUser  user
			gotInt   int
			gotSlice []int
			gotMap   map[string]any
		)
		h, err := newEventHandler(func(u user, i int, s []int, m map[string]any) {
			gotUser = u
			gotInt = i
			gotSlice = s
			gotMap = m
		})
		require.NoError(t, err)

		err = h.Call([]any{
			map[string]any{"name": "alice", "age": float64(30), "tags": []any{"a", "b"}},
			float64(42),
			[]any{float64(1), float64(2)},
			map[string]any{"k": "v"},
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, user{Name: "alice", Age: 30, Tags: []string{"a", "b"}}, gotUser)
		assert.Equal(t, 42, gotInt)
		assert.Equal(t, []int{1, 2}, gotSlice)
		assert.Equal(t, map[string]any{"k": "v"}, gotMap)
	})

	t.Run("should pass zero values for missing arguments and drop extra ones", func(t *testing.T) {
		var (
			gotString = "unset"
			gotInt    = -1
		)
		h, err := newEventHandler(func(s string, i int) {
			gotString = s
			gotInt = i
		})
		require.NoError(t, err)

		require.NoError(t, h.Call([]any{"x"}, nil))
		assert.Equal(t, "x", gotString)
		assert.Equal(t, 0, gotInt)

		require.NoError(t, h.Call([]any{"y", float64(1), "extra", true}, nil))
		assert.Equal(t, "y", gotString)
		assert.Equal(t, 1, gotInt)

		require.NoError(t, h.Call([]any{nil, nil}, nil))
		assert.Equal(t, "", gotString)
	})

	t.Run("should collect the rest of the arguments into a variadic parameter", func(t *testing.T) {
		var (
			gotFirst string
			gotRest  []int
		)
		h, err := newEventHandler(func(first string, rest ...int) {
			gotFirst = first
			gotRest = rest
		})
		require.NoError(t, err)

		require.NoError(t, h.Call([]any{"a", float64(1), float64(2), float64(3)}, nil))
		assert.Equal(t, "a", gotFirst)
		assert.Equal(t, []int{1, 2, 3}, gotRest)
	})

	t.Run("should pass Binary to []byte parameters", func(t *testing.T) {
		var got []byte
		h, err := newEventHandler(func(b []byte) {
			got = b
		})
		require.NoError(t, err)
		require.NoError(t, h.Call([]any{Binary("raw")}, nil))
		assert.Equal(t, []byte("raw"), got)
	})

	t.Run("should return an error on conversion failure", func(t *testing.T) {
		called := false
		h, err := newEventHandler(func(i int) {
			called = true
		})
		require.NoError(t, err)

		err = h.Call([]any{map[string]any{"not": "an int"}}, nil)
		require.Error(t, err)
		assert.False(t, called)
	})

	t.Run("should recover from a panic", func(t *testing.T) {
		h, err := newEventHandler(func() {
			panic(fmt.Errorf("boom"))
		})
		require.NoError(t, err)

		err = h.Call(nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("should hand over the AckFunc", func(t *testing.T) {
		var acked []any
		h, err := newEventHandler(func(s string, ack AckFunc) {
			ack(s, 1)
		})
		require.NoError(t, err)

		err = h.Call([]any{"hello"}, func(v ...any) {
			acked = v
		})
		require.NoError(t, err)
		assert.Equal(t, []any{"hello", 1}, acked)

		// Without an ack ID the AckFunc is a no-op.
		require.NoError(t, h.Call([]any{"hello"}, nil))
	})
}
