package datastore

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opPut      = "put"
	opPutMulti = "put_multi"
	opGet      = "get"
	opGetMulti = "get_multi"
	opDelete   = "delete"
	opExists   = "exists"
	opKeys     = "keys"
	opScan     = "scan"
	opDecode   = "decode"
)

type metrics struct {
	operations   *prometheus.CounterVec
	errors       *prometheus.CounterVec
	encodedBytes prometheus.Histogram
}

// newMetrics creates the client collectors and registers them with reg, if set.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)
	return &metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "urine_datastore_operations_total",
			Help: "The number of datastore operations by operation.",
		}, []string{"op"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "urine_datastore_errors_total",
			Help: "The number of failed datastore operations by operation.",
		}, []string{"op"}),
		encodedBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "urine_datastore_encoded_bytes",
			Help:    "The size of encoded values written to the datastore.",
			Buckets: prometheus.ExponentialBuckets(16, 4, 8),
		}),
	}
}

// observe counts op and, unless *err is nil or a miss, its failure.
// It is meant to be deferred with a pointer to the named error result.
func (m *metrics) observe(op string, err *error) {
	m.operations.WithLabelValues(op).Inc()
	if *err != nil && !errors.Is(*err, ErrKeyNotFound) {
		m.errors.WithLabelValues(op).Inc()
	}
}
