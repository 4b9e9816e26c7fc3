package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.ConnOpened()
	m.ConnOpened()
	m.ConnClosed()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.connections))

	m.SocketConnected("/")
	m.SocketConnected("/")
	m.SocketConnected("/chat")
	m.SocketDisconnected("/", "transport close")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.sockets.WithLabelValues("/")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.sockets.WithLabelValues("/chat")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.disconnects.WithLabelValues("/", "transport close")))

	m.ConnectRejected("/private")
	m.EventReceived("/")
	m.EventSent("/")
	m.EventSent("/")
	m.AckReceived("/")
	m.Broadcast("/chat")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.connectRejected.WithLabelValues("/private")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.eventsReceived.WithLabelValues("/")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.eventsSent.WithLabelValues("/")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.acksReceived.WithLabelValues("/")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.broadcastsIssued.WithLabelValues("/chat")))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Greater(t, count, 0)
}

func TestMetricsRegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ConnOpened()
		m.ConnClosed()
		m.SocketConnected("/")
		m.SocketDisconnected("/", "transport close")
		m.ConnectRejected("/")
		m.EventReceived("/")
		m.EventSent("/")
		m.AckReceived("/")
		m.Broadcast("/")
	})
}
