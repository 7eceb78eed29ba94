package rpc

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github/chapool/go-safe/internal/safe/contract"
)

type metrics struct {
	reads   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		reads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "safe",
			Subsystem: "rpc",
			Name:      "reads_total",
			Help:      "Read-only contract calls by selector and outcome.",
		}, []string{"selector", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "safe",
			Subsystem: "rpc",
			Name:      "read_duration_seconds",
			Help:      "Latency of read-only contract calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"selector"}),
	}

	if reg == nil {
		return m, nil
	}

	for _, c := range []prometheus.Collector{m.reads, m.latency} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register rpc metrics")
		}
	}

	return m, nil
}

func (m *metrics) observe(sel contract.Selector, started time.Time, err error) {
	m.reads.WithLabelValues(sel.String(), outcome(err)).Inc()
	m.latency.WithLabelValues(sel.String()).Observe(time.Since(started).Seconds())
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, contract.ErrFunctionNotFound):
		return "function_not_found"
	case errors.Is(err, contract.ErrTimeout):
		return "timeout"
	case errors.Is(err, contract.ErrReverted):
		return "reverted"
	case errors.Is(err, contract.ErrDecodeFailed):
		return "decode_failed"
	default:
		return "connection_failed"
	}
}
