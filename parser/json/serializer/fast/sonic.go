//go:build amd64 && (linux || windows || darwin)

package fast

import (
	"github.com/karagenc/sio-server/parser/json/serializer"
	"github.com/karagenc/sio-server/parser/json/serializer/sonic"
)

func New() serializer.JSONSerializer {
	return NewWithConfig(DefaultConfig())
}

func NewWithConfig(config Config) serializer.JSONSerializer {
	return sonic.New(config.SonicConfig)
}

func Type() SerializerType { return SerializerTypeSonic }
