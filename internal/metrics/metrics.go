// Package metrics records dispatch runs as Prometheus metrics and writes them in the
// node_exporter textfile collector format.
package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/idelchi/xtsenc/internal/dispatch"
)

const (
	namespace = "xtsenc"
	subsystem = "dispatch"
)

// Recorder is a dispatch.Observer backed by Prometheus collectors.
// All methods are nil-safe: calls on a nil *Recorder are no-ops.
type Recorder struct {
	// UnitsTotal counts transformed data units by direction.
	UnitsTotal *prometheus.CounterVec

	// BytesTotal counts transformed bytes by direction.
	BytesTotal *prometheus.CounterVec

	// RunsTotal counts finished runs by direction and status.
	// Label values for status: "ok", "cancelled", "error".
	RunsTotal *prometheus.CounterVec

	// RunDuration observes the wall time of each run.
	RunDuration *prometheus.HistogramVec

	// UnitBytes observes the length of each unit, which is smaller than the unit size only
	// for the final unit of a buffer.
	UnitBytes prometheus.Histogram

	// Workers is the worker count of the most recent run.
	Workers prometheus.Gauge

	direction dispatch.Direction
}

// NewRecorder creates and registers the dispatch metrics with the given registerer.
// If reg is nil, metrics are created but not registered.
func NewRecorder(reg prometheus.Registerer, direction dispatch.Direction) *Recorder {
	r := &Recorder{
		UnitsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "units_total",
			Help:      "Total number of data units transformed",
		}, []string{"direction"}),
		BytesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "bytes_total",
			Help:      "Total number of bytes transformed",
		}, []string{"direction"}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "runs_total",
			Help:      "Total number of dispatch runs by outcome",
		}, []string{"direction", "status"}),
		RunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "run_duration_seconds",
			Help:      "Duration of dispatch runs",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), //nolint:mnd
		}, []string{"direction"}),
		UnitBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "unit_bytes",
			Help:      "Length of transformed data units",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 10), //nolint:mnd
		}),
		Workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workers",
			Help:      "Number of workers of the most recent run",
		}),
		direction: direction,
	}

	if reg != nil {
		reg.MustRegister(
			r.UnitsTotal,
			r.BytesTotal,
			r.RunsTotal,
			r.RunDuration,
			r.UnitBytes,
			r.Workers,
		)
	}

	return r
}

// UnitDone records one transformed unit.
func (r *Recorder) UnitDone(_ int, claim dispatch.Claim) {
	if r == nil {
		return
	}

	r.UnitsTotal.WithLabelValues(r.direction.String()).Inc()
	r.UnitBytes.Observe(float64(claim.Length))
}

// RunDone records a finished run.
func (r *Recorder) RunDone(summary dispatch.Summary, err error) {
	if r == nil {
		return
	}

	direction := summary.Direction.String()

	r.BytesTotal.WithLabelValues(direction).Add(float64(summary.Bytes))
	r.RunsTotal.WithLabelValues(direction, status(err)).Inc()
	r.RunDuration.WithLabelValues(direction).Observe(summary.Duration.Seconds())
	r.Workers.Set(float64(summary.Workers))
}

// WriteTextfile writes everything gathered by g to path, atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("writing metrics to %q: %w", path, err)
	}

	return nil
}

func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, dispatch.ErrCancelled):
		return "cancelled"
	default:
		return "error"
	}
}
