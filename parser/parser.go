package parser

const ProtocolVersion = 5

type (
	Creator func() Parser

	// Called once a complete packet (including every binary attachment) was decoded.
	Finish func(packet *Packet)
)

// A Parser is stateful: it keeps partially received binary packets
// between calls to Add. Use one Parser per connection.
type Parser interface {
	// Encode returns the header buffer followed by the binary attachments, if any.
	// Encode doesn't touch the decoding state; it can be called from any goroutine.
	Encode(packet *Packet) (buffers [][]byte, err error)

	// Add feeds a single transport message. finish is called
	// when a packet is complete. An error discards the packet
	// being reconstructed; subsequent calls start afresh.
	Add(data []byte, finish Finish) error

	// Drop any partially received packet.
	Reset()
}
