// Package prom records production metrics in Prometheus collectors.
package prom

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "batchplant"

// Recorder implements ports.ProductionMetrics.
type Recorder struct {
	rowsStarted   prometheus.Counter
	rowsCompleted prometheus.Counter
	rowsRequeued  prometheus.Counter
	runsLogged    prometheus.Counter
	transitions   *prometheus.CounterVec
	discharge     prometheus.Histogram
}

// NewRecorder registers the production collectors on reg, or on the default
// registerer when reg is nil. Collectors registered earlier are reused.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	rowsStarted, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_started_total",
		Help:      "Rows whose discharge has begun.",
	}))
	if err != nil {
		return nil, err
	}
	rowsCompleted, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_completed_total",
		Help:      "Rows completed with a measurement.",
	}))
	if err != nil {
		return nil, err
	}
	rowsRequeued, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_requeued_total",
		Help:      "Interrupted rows returned to pending.",
	}))
	if err != nil {
		return nil, err
	}
	runsLogged, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_logged_total",
		Help:      "Vehicle runs logged.",
	}))
	if err != nil {
		return nil, err
	}
	transitions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "order_status_transitions_total",
		Help:      "Order status changes by target status.",
	}, []string{"to"}))
	if err != nil {
		return nil, err
	}
	discharge, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "row_discharge_seconds",
		Help:      "Time from row start to row completion.",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 300},
	}))
	if err != nil {
		return nil, err
	}

	return &Recorder{
		rowsStarted:   rowsStarted,
		rowsCompleted: rowsCompleted,
		rowsRequeued:  rowsRequeued,
		runsLogged:    runsLogged,
		transitions:   transitions,
		discharge:     discharge,
	}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (r *Recorder) RowStarted() { r.rowsStarted.Inc() }

func (r *Recorder) RowCompleted(discharge time.Duration) {
	r.rowsCompleted.Inc()
	r.discharge.Observe(discharge.Seconds())
}

func (r *Recorder) RowRequeued() { r.rowsRequeued.Inc() }

func (r *Recorder) RunLogged() { r.runsLogged.Inc() }

func (r *Recorder) StatusChanged(to string) { r.transitions.WithLabelValues(to).Inc() }
