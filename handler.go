package sio

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// AckFunc acknowledges an event. Declare it as the last
// parameter of an event handler to receive one.
//
// Only the first call sends the acknowledgement, the rest are ignored.
// If no handler calls it, no acknowledgement is sent.
type AckFunc func(v ...any)

var ackFuncType = reflect.TypeOf((*AckFunc)(nil)).Elem()

// eventHandler calls an arbitrary function with the values of a packet.
// Values are converted into the parameter types of the function with mapstructure,
// so a handler can take an int, a []string or a struct instead of
// float64, []any or map[string]any.
type eventHandler struct {
	rv        reflect.Value
	inputArgs []reflect.Type
	variadic  bool
	hasAck    bool
}

func newEventHandler(v any) (*eventHandler, error) {
	return newHandler(v, true)
}

func newAckHandler(v any) (*eventHandler, error) {
	return newHandler(v, false)
}

func newHandler(v any, allowAck bool) (*eventHandler, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("sio: function expected, got %T", v)
	}
	rt := rv.Type()

	h := &eventHandler{
		rv:       rv,
		variadic: rt.IsVariadic(),
	}

	n := rt.NumIn()
	for i := 0; i < n; i++ {
		in := rt.In(i)
		if in != ackFuncType {
			continue
		}
		if !allowAck {
			return nil, fmt.Errorf("sio: AckFunc cannot be a parameter of an acknowledgement callback")
		}
		if i != n-1 || h.variadic {
			return nil, fmt.Errorf("sio: AckFunc must be the last parameter of the handler")
		}
		h.hasAck = true
		n--
	}

	h.inputArgs = make([]reflect.Type, n)
	for i := range h.inputArgs {
		h.inputArgs[i] = rt.In(i)
	}
	return h, nil
}

// Call the handler with values decoded from a packet.
// Missing values are passed as zero values, extra values are dropped
// unless the handler is variadic.
//
// ack is ignored if the handler doesn't take an AckFunc.
// A panicking handler is reported as an error.
func (h *eventHandler) Call(values []any, ack AckFunc) (err error) {
	args, err := h.convert(values)
	if err != nil {
		return err
	}
	if h.hasAck {
		if ack == nil {
			ack = func(v ...any) {}
		}
		args = append(args, reflect.ValueOf(ack))
	}

	defer func() {
		if r := recover(); r != nil {
			err = recoverToError(r, "sio: handler panicked")
		}
	}()
	h.rv.Call(args)
	return nil
}

func (h *eventHandler) convert(values []any) ([]reflect.Value, error) {
	fixed := h.inputArgs
	var variadicType reflect.Type
	if h.variadic {
		fixed = h.inputArgs[:len(h.inputArgs)-1]
		variadicType = h.inputArgs[len(h.inputArgs)-1].Elem()
	}

	args := make([]reflect.Value, 0, len(h.inputArgs)+1)
	for i, t := range fixed {
		if i >= len(values) {
			args = append(args, reflect.Zero(t))
			continue
		}
		rv, err := convertValue(values[i], t)
		if err != nil {
			return nil, fmt.Errorf("sio: argument %d: %w", i, err)
		}
		args = append(args, rv)
	}

	if h.variadic && len(values) > len(fixed) {
		for i, v := range values[len(fixed):] {
			rv, err := convertValue(v, variadicType)
			if err != nil {
				return nil, fmt.Errorf("sio: argument %d: %w", len(fixed)+i, err)
			}
			args = append(args, rv)
		}
	}
	return args, nil
}

func convertValue(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	ptr := reflect.New(t)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  ptr.Interface(),
		TagName: "json",
	})
	if err != nil {
		return reflect.Value{}, err
	}
	err = decoder.Decode(v)
	if err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}
