package jsonparser

import (
	"fmt"
	"reflect"

	"github.com/fatih/structs"
	"github.com/karagenc/sio-server/parser"
)

var (
	errInvalidPlaceholderNumValue = fmt.Errorf("parser/json: invalid placeholder num value")
	errNonStringMapKey            = fmt.Errorf("parser/json: map with binary values must have string keys")
)

const (
	placeholderKey    = "_placeholder"
	placeholderNumKey = "num"
)

// deconstructor replaces every parser.Binary with a placeholder
// object, collecting the buffers in the order they were encountered.
// The input is never mutated; containers are copied on the way down.
type deconstructor struct {
	buffers [][]byte
}

func newDeconstructor() *deconstructor {
	return new(deconstructor)
}

func (d *deconstructor) deconstruct(v any) (any, error) {
	switch v := v.(type) {
	case nil, bool, string, float64:
		return v, nil
	case parser.Binary:
		if v == nil {
			return nil, nil
		}
		num := len(d.buffers)
		d.buffers = append(d.buffers, []byte(v))
		return map[string]any{
			placeholderKey:    true,
			placeholderNumKey: num,
		}, nil
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			x, err := d.deconstruct(e)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			x, err := d.deconstruct(e)
			if err != nil {
				return nil, err
			}
			out[k] = x
		}
		return out, nil
	}

	if !parser.HasBinary(v) {
		return v, nil
	}
	return d.deconstructReflect(reflect.ValueOf(v))
}

// Only reached for values that contain a Binary somewhere inside.
func (d *deconstructor) deconstructReflect(rv reflect.Value) (any, error) {
	for rv.Kind() == reflect.Interface || rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		s := structs.New(rv.Interface())
		s.TagName = "json"
		return d.deconstruct(s.Map())

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, errNonStringMapKey
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return d.deconstruct(m)

	case reflect.Slice, reflect.Array:
		if rv.Type() == reflect.TypeOf(parser.Binary(nil)) {
			return d.deconstruct(rv.Interface().(parser.Binary))
		}
		sl := make([]any, rv.Len())
		for i := range sl {
			sl[i] = rv.Index(i).Interface()
		}
		return d.deconstruct(sl)
	}
	return rv.Interface(), nil
}

// reconstructor collects the attachments of a binary packet.
type reconstructor struct {
	packet    *parser.Packet
	buffers   [][]byte
	remaining int
}

func (r *reconstructor) addBuffer(buf []byte) (ok bool) {
	r.buffers = append(r.buffers, buf)
	r.remaining--
	return r.remaining == 0
}

func (r *reconstructor) reconstruct() (*parser.Packet, error) {
	data, err := reconstructValue(r.packet.Data, r.buffers)
	if err != nil {
		return nil, err
	}
	r.packet.Data = data.([]any)
	r.packet.Attachments = r.buffers
	return r.packet, nil
}

func reconstructValue(v any, buffers [][]byte) (any, error) {
	switch v := v.(type) {
	case []any:
		for i, e := range v {
			x, err := reconstructValue(e, buffers)
			if err != nil {
				return nil, err
			}
			v[i] = x
		}
		return v, nil
	case map[string]any:
		if num, ok := placeholderNum(v); ok {
			if num < 0 || num >= len(buffers) {
				return nil, errInvalidPlaceholderNumValue
			}
			return parser.Binary(buffers[num]), nil
		}
		for k, e := range v {
			x, err := reconstructValue(e, buffers)
			if err != nil {
				return nil, err
			}
			v[k] = x
		}
		return v, nil
	}
	return v, nil
}

func placeholderNum(m map[string]any) (num int, ok bool) {
	if len(m) != 2 {
		return 0, false
	}
	p, _ := m[placeholderKey].(bool)
	if !p {
		return 0, false
	}
	f, ok := m[placeholderNumKey].(float64)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
