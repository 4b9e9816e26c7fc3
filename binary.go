package sio

import "github.com/karagenc/sio-server/parser"

// Binary data sent as a binary attachment instead of a JSON value.
// Use Binary instead of []byte when emitting. A []byte is encoded as a base64 string.
type Binary = parser.Binary
