package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stakeweave"

// metrics of an engine. They are collected from the start and only exposed
// once registered.
type metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newMetrics() *metrics {
	return &metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_total",
				Help:      "Engine operations by name and result.",
			},
			[]string{"op", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Time spent in engine operations, lock wait included.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"op"},
		),
	}
}

func (m *metrics) register(reg prometheus.Registerer) error {
	if err := reg.Register(m.operations); err != nil {
		return err
	}
	if err := reg.Register(m.duration); err != nil {
		reg.Unregister(m.operations)
		return err
	}
	return nil
}

func (m *metrics) observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "rejected"
	}
	m.operations.WithLabelValues(op, result).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
