// Package metrics exports Prometheus counters for the decode pipeline,
// following the promauto registration style of the donor's prometheus.go.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cwsl/rtlsensor/internal/protocol"
)

// Metrics holds the Prometheus collectors for one pipeline run.
type Metrics struct {
	decodesTotal   *prometheus.CounterVec // by protocol kind
	overflowsTotal prometheus.Counter
	blocksTotal    prometheus.Counter
	envelopeLevel  prometheus.Gauge
}

// New registers and returns a fresh Metrics set.
func New() *Metrics {
	return &Metrics{
		decodesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rtlsensor_decodes_total",
				Help: "Total decoded sensor frames, by protocol.",
			},
			[]string{"protocol"},
		),
		overflowsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rtlsensor_bitpacket_overflows_total",
				Help: "Total bit-packet overflow events (clamped, never fatal).",
			},
		),
		blocksTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "rtlsensor_blocks_processed_total",
				Help: "Total IQ blocks run through the pipeline.",
			},
		),
		envelopeLevel: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "rtlsensor_threshold_level",
				Help: "Configured squared-envelope threshold level.",
			},
		),
	}
}

// Publish implements pipeline.Sink, incrementing the per-protocol decode
// counter for every reading.
func (m *Metrics) Publish(r protocol.Reading) {
	m.decodesTotal.WithLabelValues(r.Kind.String()).Inc()
}

// ObserveBlock records one processed block and its overflow count.
func (m *Metrics) ObserveBlock(overflows int) {
	m.blocksTotal.Inc()
	if overflows > 0 {
		m.overflowsTotal.Add(float64(overflows))
	}
}

// SetLevel records the configured threshold level.
func (m *Metrics) SetLevel(level int32) {
	m.envelopeLevel.Set(float64(level))
}
