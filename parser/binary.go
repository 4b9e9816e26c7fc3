package parser

import "errors"

// Binary is a raw byte buffer sent out-of-band as an attachment.
// Use Binary instead of []byte if you want to emit binary data;
// a plain []byte is JSON (base64) encoded.
type Binary []byte

func (b Binary) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	return nil, errors.New("parser: Binary must be deconstructed before JSON encoding")
}

// HasBinary reports whether v contains a Binary value. v is
// expected to be built out of the JSON value set (see Packet).
// Other Go values are inspected by reflection.
func HasBinary(v any) bool {
	switch v := v.(type) {
	case Binary:
		return v != nil
	case []any:
		for _, e := range v {
			if HasBinary(e) {
				return true
			}
		}
		return false
	case map[string]any:
		for _, e := range v {
			if HasBinary(e) {
				return true
			}
		}
		return false
	case nil, bool, string, float64, int, int64, uint64:
		return false
	}
	return hasBinaryReflect(v)
}
