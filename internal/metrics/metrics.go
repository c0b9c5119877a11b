// Package metrics holds the Prometheus counters for bridged push callbacks.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts callback outcomes. It satisfies relay.Recorder.
type Metrics struct {
	tokens   *prometheus.CounterVec
	messages *prometheus.CounterVec
	gatherer prometheus.Gatherer
}

// New registers the counters on reg. Pass prometheus.NewRegistry() in tests.
func New(reg *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pushbridge_tokens_total",
				Help: "Device token callbacks by outcome",
			},
			[]string{"outcome"},
		),
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pushbridge_messages_total",
				Help: "Push message callbacks by outcome",
			},
			[]string{"outcome"},
		),
		gatherer: reg,
	}
	if err := reg.Register(m.tokens); err != nil {
		return nil, err
	}
	if err := reg.Register(m.messages); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) TokenForwarded() { m.tokens.WithLabelValues("forwarded").Inc() }
func (m *Metrics) TokenRejected()  { m.tokens.WithLabelValues("rejected").Inc() }
func (m *Metrics) MessageHandled() { m.messages.WithLabelValues("handled").Inc() }
func (m *Metrics) MessageIgnored() { m.messages.WithLabelValues("ignored").Inc() }
func (m *Metrics) MessageFailed()  { m.messages.WithLabelValues("failed").Inc() }

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
