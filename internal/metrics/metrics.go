// Package metrics records export runs as Prometheus metrics. A batch job
// has no scrape endpoint, so the registry is written in the node_exporter
// textfile collector format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/untoldecay/movestories/internal/extractor"
)

const namespace = "movestories"

// Run holds the metrics of a single export
type Run struct {
	registry *prometheus.Registry

	success     prometheus.Gauge
	lastSuccess prometheus.Gauge
	duration    prometheus.Gauge
	stories     prometheus.Gauge
	relations   prometheus.Gauge
	rows        *prometheus.GaugeVec
	entities    *prometheus.GaugeVec
	unknown     *prometheus.GaugeVec
}

func gauge(name, help string) prometheus.Gauge {
	return prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	})
}

func gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, labels)
}

// NewRun creates a registry with every run metric registered
func NewRun() *Run {
	r := &Run{
		registry:    prometheus.NewRegistry(),
		success:     gauge("last_run_success", "Whether the last export succeeded (1) or failed (0)"),
		lastSuccess: gauge("last_success_timestamp_seconds", "Unix time of the last successful export"),
		duration:    gauge("last_run_duration_seconds", "Duration of the last export in seconds"),
		stories:     gauge("stories", "Stories read by the last export"),
		relations:   gauge("relations", "Relations parsed by the last export"),
		rows:        gaugeVec("rows", "Entity rows of the last export by stage", "stage"),
		entities:    gaugeVec("entities", "Unique entity rows of the last export by type", "type"),
		unknown:     gaugeVec("unknown_labels", "Labels outside the known vocabulary by kind", "kind"),
	}
	r.registry.MustRegister(r.success, r.lastSuccess, r.duration, r.stories, r.relations, r.rows, r.entities, r.unknown)
	return r
}

// ObserveSuccess records a completed export
func (r *Run) ObserveSuccess(st extractor.Stats, took time.Duration, now time.Time) {
	r.success.Set(1)
	r.lastSuccess.Set(float64(now.Unix()))
	r.duration.Set(took.Seconds())
	r.stories.Set(float64(st.Records))
	r.relations.Set(float64(st.Relations))
	r.rows.WithLabelValues("extracted").Set(float64(st.RowsExtracted))
	r.rows.WithLabelValues("unique").Set(float64(st.RowsUnique))
	r.rows.WithLabelValues("duplicate").Set(float64(st.Duplicates))
	for t, n := range st.EntityTypes {
		r.entities.WithLabelValues(string(t)).Set(float64(n))
	}
	r.unknown.WithLabelValues("entity").Set(float64(st.UnknownEntities))
	r.unknown.WithLabelValues("relation").Set(float64(st.UnknownRelations))
}

// ObserveFailure records a failed export
func (r *Run) ObserveFailure(took time.Duration) {
	r.success.Set(0)
	r.duration.Set(took.Seconds())
}

// WriteTextfile atomically writes the metrics to path
func (r *Run) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
