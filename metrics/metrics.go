// Package metrics exposes the server's counters and gauges to Prometheus.
//
// A nil *Metrics is valid and records nothing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespaceLabel = "namespace"

type Metrics struct {
	connections      prometheus.Gauge
	sockets          *prometheus.GaugeVec
	disconnects      *prometheus.CounterVec
	connectRejected  *prometheus.CounterVec
	eventsReceived   *prometheus.CounterVec
	eventsSent       *prometheus.CounterVec
	acksReceived     *prometheus.CounterVec
	broadcastsIssued *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sio",
			Name:      "connections",
			Help:      "Number of open transport connections.",
		}),
		sockets: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sio",
			Name:      "sockets",
			Help:      "Number of connected sockets.",
		}, []string{namespaceLabel}),
		disconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sio",
			Name:      "disconnects_total",
			Help:      "Sockets disconnected, by reason.",
		}, []string{namespaceLabel, "reason"}),
		connectRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sio",
			Name:      "connect_rejected_total",
			Help:      "CONNECT packets answered with CONNECT_ERROR.",
		}, []string{namespaceLabel}),
		eventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sio",
			Name:      "events_received_total",
			Help:      "Events received from clients.",
		}, []string{namespaceLabel}),
		eventsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sio",
			Name:      "events_sent_total",
			Help:      "Events emitted to a single socket.",
		}, []string{namespaceLabel}),
		acksReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sio",
			Name:      "acks_received_total",
			Help:      "Acknowledgements received for emitted events.",
		}, []string{namespaceLabel}),
		broadcastsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sio",
			Name:      "broadcasts_total",
			Help:      "Broadcast emits.",
		}, []string{namespaceLabel}),
	}

	for _, c := range m.collectors() {
		err := reg.Register(c)
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.connections,
		m.sockets,
		m.disconnects,
		m.connectRejected,
		m.eventsReceived,
		m.eventsSent,
		m.acksReceived,
		m.broadcastsIssued,
	}
}

func (m *Metrics) ConnOpened() {
	if m != nil {
		m.connections.Inc()
	}
}

func (m *Metrics) ConnClosed() {
	if m != nil {
		m.connections.Dec()
	}
}

func (m *Metrics) SocketConnected(nsp string) {
	if m != nil {
		m.sockets.WithLabelValues(nsp).Inc()
	}
}

func (m *Metrics) SocketDisconnected(nsp string, reason string) {
	if m != nil {
		m.sockets.WithLabelValues(nsp).Dec()
		m.disconnects.WithLabelValues(nsp, reason).Inc()
	}
}

func (m *Metrics) ConnectRejected(nsp string) {
	if m != nil {
		m.connectRejected.WithLabelValues(nsp).Inc()
	}
}

func (m *Metrics) EventReceived(nsp string) {
	if m != nil {
		m.eventsReceived.WithLabelValues(nsp).Inc()
	}
}

func (m *Metrics) EventSent(nsp string) {
	if m != nil {
		m.eventsSent.WithLabelValues(nsp).Inc()
	}
}

func (m *Metrics) AckReceived(nsp string) {
	if m != nil {
		m.acksReceived.WithLabelValues(nsp).Inc()
	}
}

func (m *Metrics) Broadcast(nsp string) {
	if m != nil {
		m.broadcastsIssued.WithLabelValues(nsp).Inc()
	}
}
