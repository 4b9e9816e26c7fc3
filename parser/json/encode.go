package jsonparser

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/karagenc/sio-server/parser"
)

var (
	errMaxAttachmentsExceeded = fmt.Errorf("parser/json: maximum number of attachments exceeded")
	errTooManyValues          = fmt.Errorf("parser/json: CONNECT and CONNECT_ERROR packets carry at most one value")
	errNilPacket              = fmt.Errorf("parser/json: nil packet")
)

func (p *Parser) Encode(packet *parser.Packet) ([][]byte, error) {
	if packet == nil {
		return nil, errNilPacket
	}

	typ := packet.Type
	data := packet.Data
	var attachments [][]byte

	if packet.IsEvent() || packet.IsAck() {
		if parser.HasBinary(data) {
			switch typ {
			case parser.PacketTypeEvent:
				typ = parser.PacketTypeBinaryEvent
			case parser.PacketTypeAck:
				typ = parser.PacketTypeBinaryAck
			}

			d := newDeconstructor()
			v, err := d.deconstruct(data)
			if err != nil {
				return nil, err
			}
			data = v.([]any)
			attachments = d.buffers

			if p.maxAttachments > 0 && len(attachments) > p.maxAttachments {
				return nil, errMaxAttachmentsExceeded
			}
		}
	}

	header, err := p.encodeString(typ, packet.Namespace, packet.ID, len(attachments), data)
	if err != nil {
		return nil, err
	}

	buffers := make([][]byte, 0, 1+len(attachments))
	buffers = append(buffers, header)
	buffers = append(buffers, attachments...)
	return buffers, nil
}

func (p *Parser) encodeString(typ parser.PacketType, nsp string, id *uint64, attachments int, data []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(1 + 4 + len(nsp) + 1 + 20)

	buf.WriteByte(typ.ToChar())

	if typ == parser.PacketTypeBinaryEvent || typ == parser.PacketTypeBinaryAck {
		buf.WriteString(strconv.Itoa(attachments))
		buf.WriteByte('-')
	}

	if nsp != "" && nsp != "/" {
		buf.WriteString(nsp)
		buf.WriteByte(',')
	}

	if id != nil {
		buf.WriteString(strconv.FormatUint(*id, 10))
	}

	var payload any
	switch typ {
	case parser.PacketTypeDisconnect:
		return buf.Bytes(), nil
	case parser.PacketTypeConnect, parser.PacketTypeConnectError:
		if len(data) > 1 {
			return nil, errTooManyValues
		}
		if len(data) == 0 {
			return buf.Bytes(), nil
		}
		payload = data[0]
	default:
		if data == nil {
			data = []any{}
		}
		payload = data
	}

	b, err := p.json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("parser/json: %w", err)
	}
	buf.Write(b)
	return buf.Bytes(), nil
}
