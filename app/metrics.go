package app

import (
	"strconv"

	"github.com/iov-one/pkmsig/errors"
	"github.com/iov-one/pkmsig/weave"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	txDurationMetric = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pkmsig",
		Subsystem: "tx",
		Name:      "duration_seconds",
		Help:      "Time spent processing a transaction.",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 1},
	}, []string{"phase", "path"})

	txResultMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pkmsig",
		Subsystem: "tx",
		Name:      "results_total",
		Help:      "Processed transactions by ABCI result code.",
	}, []string{"phase", "path", "code"})
)

const (
	phaseCheck   = "check"
	phaseDeliver = "deliver"
)

// Metrics is a decorator that exposes the processing time and the result
// code of every transaction as prometheus metrics.
type Metrics struct{}

var _ weave.Decorator = Metrics{}

// NewMetrics creates a Metrics decorator
func NewMetrics() Metrics {
	return Metrics{}
}

// Check measures the check phase
func (Metrics) Check(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	path := weave.GetPath(tx)
	t := prometheus.NewTimer(txDurationMetric.WithLabelValues(phaseCheck, path))
	res, err := next.Check(ctx, store, tx)
	t.ObserveDuration()
	observeResult(phaseCheck, path, err)
	return res, err
}

// Deliver measures the deliver phase
func (Metrics) Deliver(ctx weave.Context, store weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	path := weave.GetPath(tx)
	t := prometheus.NewTimer(txDurationMetric.WithLabelValues(phaseDeliver, path))
	res, err := next.Deliver(ctx, store, tx)
	t.ObserveDuration()
	observeResult(phaseDeliver, path, err)
	return res, err
}

func observeResult(phase, path string, err error) {
	code := strconv.FormatUint(uint64(errors.ABCICode(err)), 10)
	txResultMetric.WithLabelValues(phase, path, code).Inc()
}
