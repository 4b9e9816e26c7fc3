package jsonparser

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/karagenc/sio-server/parser"
)

var (
	errInvalidPacketSize = fmt.Errorf("parser/json: invalid packet size")
	errMalformedPacket   = fmt.Errorf("parser/json: malformed packet")
	errInvalidEventName  = fmt.Errorf("parser/json: event name must be a string")
	errUnexpectedPayload = fmt.Errorf("parser/json: unexpected payload")
)

func (p *Parser) Add(data []byte, finish parser.Finish) error {
	if p.r != nil {
		if !p.r.addBuffer(data) {
			return nil
		}
		r := p.r
		p.r = nil

		packet, err := r.reconstruct()
		if err != nil {
			return err
		}
		finish(packet)
		return nil
	}

	packet, attachments, err := p.decodeHeader(data)
	if err != nil {
		return err
	}

	if p.maxAttachments > 0 && attachments > p.maxAttachments {
		return errMaxAttachmentsExceeded
	}

	if packet.IsBinary() && attachments > 0 {
		// The count is client supplied; buffers grow as attachments arrive.
		p.r = &reconstructor{
			packet:    packet,
			remaining: attachments,
		}
		return nil
	}

	finish(packet)
	return nil
}

// decodeHeader parses: <type>[<attachments>-][<namespace>,][<id>][<json>]
func (p *Parser) decodeHeader(data []byte) (packet *parser.Packet, attachments int, err error) {
	if len(data) < 1 {
		return nil, 0, errInvalidPacketSize
	}

	packet = new(parser.Packet)

	err = packet.Type.FromChar(data[0])
	if err != nil {
		return nil, 0, err
	}
	data = data[1:]

	if packet.IsBinary() {
		i := bytes.IndexByte(data, '-')
		if i == -1 {
			return nil, 0, errMalformedPacket
		}
		n, err := strconv.ParseUint(string(data[:i]), 10, 31)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: attachments: %v", errMalformedPacket, err)
		}
		attachments = int(n)
		data = data[i+1:]
	}

	packet.Namespace = "/"
	if len(data) > 0 && data[0] == '/' {
		i := bytes.IndexByte(data, ',')
		if i == -1 {
			packet.Namespace = string(data)
			data = nil
		} else {
			packet.Namespace = string(data[:i])
			data = data[i+1:]
		}
	}

	i := 0
	for i < len(data) && data[i] >= '0' && data[i] <= '9' {
		i++
	}
	if i > 0 {
		id, err := strconv.ParseUint(string(data[:i]), 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: id: %v", errMalformedPacket, err)
		}
		packet.ID = &id
		data = data[i:]
	}

	err = p.decodePayload(packet, data)
	if err != nil {
		return nil, 0, err
	}
	return packet, attachments, nil
}

func (p *Parser) decodePayload(packet *parser.Packet, payload []byte) error {
	switch packet.Type {
	case parser.PacketTypeDisconnect:
		if len(payload) != 0 {
			return errUnexpectedPayload
		}
		return nil

	case parser.PacketTypeConnect, parser.PacketTypeConnectError:
		if len(payload) == 0 {
			return nil
		}
		var v any
		err := p.json.Unmarshal(payload, &v)
		if err != nil {
			return fmt.Errorf("%w: %v", errMalformedPacket, err)
		}
		packet.Data = []any{v}
		return nil
	}

	// EVENT, ACK and their binary counterparts carry a JSON array.
	if len(payload) == 0 {
		if packet.IsEvent() {
			return errMalformedPacket
		}
		packet.Data = []any{}
		return nil
	}

	var data []any
	err := p.json.Unmarshal(payload, &data)
	if err != nil {
		return fmt.Errorf("%w: %v", errMalformedPacket, err)
	}
	if data == nil {
		return errMalformedPacket
	}

	if packet.IsEvent() {
		if len(data) == 0 {
			return errMalformedPacket
		}
		if _, ok := data[0].(string); !ok {
			return errInvalidEventName
		}
	}
	packet.Data = data
	return nil
}
