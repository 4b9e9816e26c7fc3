package sio

import (
	"github.com/karagenc/sio-server/adapter"
	"github.com/karagenc/sio-server/metrics"
	"github.com/karagenc/sio-server/parser"
)

// countingAdapter counts the broadcasts of a namespace.
type countingAdapter struct {
	Adapter
	nsp     string
	metrics *metrics.Metrics
}

func (a *countingAdapter) Broadcast(packet *parser.Packet, opts *adapter.BroadcastOptions) error {
	a.metrics.Broadcast(a.nsp)
	return a.Adapter.Broadcast(packet, opts)
}
