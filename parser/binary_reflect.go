package parser

import "reflect"

var binaryType = reflect.TypeOf(Binary(nil))

func hasBinaryReflect(v any) bool {
	return hasBinaryValue(reflect.ValueOf(v))
}

func hasBinaryValue(rv reflect.Value) bool {
	for rv.Kind() == reflect.Interface || rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}

	if !rv.IsValid() {
		return false
	}
	if rv.Type() == binaryType {
		return !rv.IsNil()
	}

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return false
		}
		for i := 0; i < rv.Len(); i++ {
			if hasBinaryValue(rv.Index(i)) {
				return true
			}
		}
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			if !rv.Type().Field(i).IsExported() {
				continue
			}
			if hasBinaryValue(rv.Field(i)) {
				return true
			}
		}
	case reflect.Map:
		iter := rv.MapRange()
		for iter.Next() {
			if hasBinaryValue(iter.Value()) {
				return true
			}
		}
	}
	return false
}
