// Package metrics exposes Prometheus counters for PDU decoding and dispatch.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks Prometheus metrics for the PDU reader and dispatcher.
//
// All metrics use the "cfdp_" prefix. Methods handle a nil receiver, so a
// nil *Metrics disables collection.
type Metrics struct {
	// PDUsDecoded counts PDUs framed successfully.
	// Labels: pdu_type=[file-directive, file-data]
	PDUsDecoded *prometheus.CounterVec

	// DecodeErrors counts PDUs rejected while framing.
	// Labels: kind=[buffer-too-small, invalid-version, truncated-variable-field, truncated-pdu, too-large, ...]
	DecodeErrors *prometheus.CounterVec

	// PDUsDispatched counts PDUs routed to handlers.
	// Labels: key=[directive name or file-data], result=[success, failure, unhandled]
	PDUsDispatched *prometheus.CounterVec

	// HandlerDuration tracks handler processing time by dispatch key.
	HandlerDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with registerer.
// If registerer is nil, prometheus.DefaultRegisterer is used.
func New(registerer prometheus.Registerer) (*Metrics, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		PDUsDecoded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfdp_pdus_decoded_total",
				Help: "Total PDUs decoded by PDU type",
			},
			[]string{"pdu_type"},
		),
		DecodeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfdp_pdu_decode_errors_total",
				Help: "Total PDUs rejected during decoding by failure kind",
			},
			[]string{"kind"},
		),
		PDUsDispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cfdp_pdus_dispatched_total",
				Help: "Total PDUs dispatched to handlers by key and result",
			},
			[]string{"key", "result"},
		),
		HandlerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cfdp_handler_duration_seconds",
				Help:    "PDU handler processing duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"key"},
		),
	}

	for _, c := range []prometheus.Collector{m.PDUsDecoded, m.DecodeErrors, m.PDUsDispatched, m.HandlerDuration} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordDecoded records a successfully framed PDU.
func (m *Metrics) RecordDecoded(pduType string) {
	if m == nil {
		return
	}
	m.PDUsDecoded.WithLabelValues(pduType).Inc()
}

// RecordDecodeError records a PDU rejected while decoding.
func (m *Metrics) RecordDecodeError(kind string) {
	if m == nil {
		return
	}
	m.DecodeErrors.WithLabelValues(kind).Inc()
}

// RecordDispatch records a dispatch outcome and, for handled PDUs, its duration.
//
// Parameters:
//   - key: dispatch key (directive name or "file-data")
//   - result: success, failure or unhandled
//   - duration: handler processing time, ignored for unhandled PDUs
func (m *Metrics) RecordDispatch(key, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.PDUsDispatched.WithLabelValues(key, result).Inc()
	if result != ResultUnhandled {
		m.HandlerDuration.WithLabelValues(key).Observe(duration.Seconds())
	}
}

// Dispatch results
const (
	ResultSuccess   = "success"
	ResultFailure   = "failure"
	ResultUnhandled = "unhandled"
)
