// Package fast picks the fastest JSON engine available on the
// target platform: sonic where it is supported, go-json otherwise.
package fast

import (
	"github.com/bytedance/sonic"
	"github.com/goccy/go-json"
)

type SerializerType int

const (
	SerializerTypeSonic SerializerType = iota
	SerializerTypeGoJSON
)

type Config struct {
	SonicConfig sonic.Config
	GoJSON      GoJSONConfig
}

type GoJSONConfig struct {
	EncodeOptions []json.EncodeOptionFunc
	DecodeOptions []json.DecodeOptionFunc
}

func DefaultConfig() Config {
	return Config{
		SonicConfig: sonic.Config{
			// Decoded strings outlive the packet buffer they came from.
			CopyString:       true,
			CompactMarshaler: true,
			EscapeHTML:       true,
		},
		GoJSON: GoJSONConfig{
			EncodeOptions: []json.EncodeOptionFunc{
				json.UnorderedMap(),
			},
		},
	}
}
