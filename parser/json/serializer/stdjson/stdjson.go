package stdjson

import (
	"encoding/json"

	"github.com/karagenc/sio-server/parser/json/serializer"
)

type stdjsonSerializer struct{}

func (stdjsonSerializer) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

func (stdjsonSerializer) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

func New() serializer.JSONSerializer {
	return stdjsonSerializer{}
}
