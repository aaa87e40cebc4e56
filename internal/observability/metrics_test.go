package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistered(t *testing.T) {
	assert.NotNil(t, HTTPRequestDuration)
	assert.NotNil(t, HTTPRequestsTotal)
	assert.NotNil(t, ConnectionsActive)
	assert.NotNil(t, EventsReceived)
	assert.NotNil(t, BroadcastsSent)
	assert.NotNil(t, MessagesPosted)
	assert.NotNil(t, RoomsCreated)
	assert.NotNil(t, ReportsFiled)
	assert.NotNil(t, AdminCommands)
}

func TestLabeledMetricsAcceptExpectedLabels(t *testing.T) {
	// Exercising each labeled metric; a wrong label count panics.
	HTTPRequestDuration.WithLabelValues("GET", "/health", "200").Observe(0.01)
	HTTPRequestsTotal.WithLabelValues("GET", "/health", "200").Inc()
	EventsReceived.WithLabelValues("message").Inc()
	BroadcastsSent.WithLabelValues("global").Inc()
	BroadcastsSent.WithLabelValues("room").Inc()
	BroadcastsSent.WithLabelValues("client").Inc()
	AdminCommands.WithLabelValues("lockall").Inc()
}

func TestConnectionGauge(t *testing.T) {
	ConnectionsActive.Inc()
	ConnectionsActive.Dec()
}
