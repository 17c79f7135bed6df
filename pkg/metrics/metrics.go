// Package metrics records what a deployment did as Prometheus metrics.
//
// A Recorder owns its own registry so nothing leaks into the global default
// registry. Since dbmgr is a short-lived CLI, the collected values are written
// once at the end of a run in the node-exporter textfile format.
//
// Every method is safe to call on a nil *Recorder, which lets callers skip the
// metrics setup entirely.
//
// Example usage:
//
//	rec := metrics.New()
//	rec.Executed(scripts.PhaseCurrent, 250*time.Millisecond)
//	rec.Skipped(scripts.PhaseCurrent)
//
//	if err := rec.WriteTextfile("/var/lib/node_exporter/dbmgr.prom"); err != nil {
//		return err
//	}
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dbmgr"

// Outcomes recorded under the outcome label.
const (
	OutcomeExecuted = "executed"
	OutcomeSkipped  = "skipped"
	OutcomePlanned  = "planned"
	OutcomeFailed   = "failed"
)

// Recorder collects deployment metrics.
type Recorder struct {
	registry *prometheus.Registry

	scripts  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New returns a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		registry: reg,
		scripts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scripts_total",
			Help:      "Number of scripts considered during deployment, by phase and outcome",
		}, []string{"phase", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "script_duration_seconds",
			Help:      "Time spent executing a single script, including its tracking update",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
	}

	reg.MustRegister(r.scripts, r.duration)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}

	return r.registry
}

// Executed counts a script that ran and observes how long it took.
func (r *Recorder) Executed(phase string, elapsed time.Duration) {
	if r == nil {
		return
	}

	r.scripts.WithLabelValues(phase, OutcomeExecuted).Inc()
	r.duration.WithLabelValues(phase).Observe(elapsed.Seconds())
}

// Skipped counts a script that was already applied.
func (r *Recorder) Skipped(phase string) {
	r.count(phase, OutcomeSkipped)
}

// Planned counts a script a dry run would have executed.
func (r *Recorder) Planned(phase string) {
	r.count(phase, OutcomePlanned)
}

// Failed counts a script that was rolled back.
func (r *Recorder) Failed(phase string) {
	r.count(phase, OutcomeFailed)
}

// Count returns the current value of dbmgr_scripts_total for the labels.
func (r *Recorder) Count(phase, outcome string) float64 {
	if r == nil {
		return 0
	}

	families, err := r.registry.Gather()
	if err != nil {
		return 0
	}

	for _, mf := range families {
		if mf.GetName() != namespace+"_scripts_total" {
			continue
		}

		for _, m := range mf.GetMetric() {
			labels := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}

			if labels["phase"] == phase && labels["outcome"] == outcome {
				return m.GetCounter().GetValue()
			}
		}
	}

	return 0
}

// WriteTextfile writes every collected metric to path in the textfile format.
// An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}

	return errors.Wrapf(prometheus.WriteToTextfile(path, r.registry), "failed to write metrics to %s", path)
}

func (r *Recorder) count(phase, outcome string) {
	if r == nil {
		return
	}

	r.scripts.WithLabelValues(phase, outcome).Inc()
}
