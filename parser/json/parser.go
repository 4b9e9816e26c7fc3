package jsonparser

import (
	"github.com/karagenc/sio-server/parser"
	"github.com/karagenc/sio-server/parser/json/serializer"
)

// NewCreator returns a creator of the textual (JSON) Socket.IO parser.
//
// maxAttachments is the maximum number of binary attachments to parse/send.
// If maxAttachments is 0 or negative, there will be no limit set for binary attachments.
func NewCreator(maxAttachments int, json serializer.JSONSerializer) parser.Creator {
	return func() parser.Parser {
		return &Parser{
			maxAttachments: maxAttachments,
			json:           json,
		}
	}
}

type Parser struct {
	r              *reconstructor
	maxAttachments int
	json           serializer.JSONSerializer
}

var _ parser.Parser = (*Parser)(nil)

func (p *Parser) Reset() {
	p.r = nil
}
