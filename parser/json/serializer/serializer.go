// Package serializer abstracts the JSON engine used by the JSON parser.
package serializer

type JSONSerializer interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}
