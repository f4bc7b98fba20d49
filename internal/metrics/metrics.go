// Package metrics keeps per-process analysis counters in a dedicated Prometheus
// registry and writes them in the node_exporter textfile-collector format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/metaconscious/CodeModificationAnalyzer/schema"
)

// Namespace prefixes every metric name.
const Namespace = "codemod"

// Recorder tracks analyses run by this process.
//
// Metrics:
//   - codemod_analyses_total: analyses by status and error kind
//   - codemod_commits_scanned_total: commits read from the traversed branch
//   - codemod_commits_matched_total: commits that passed the author and date filter
//   - codemod_lines_added_total / codemod_lines_deleted_total: aggregated line changes
//   - codemod_analysis_duration_seconds: wall time per analysis
type Recorder struct {
	registry *prometheus.Registry

	analysesTotal  *prometheus.CounterVec
	commitsScanned prometheus.Counter
	commitsMatched prometheus.Counter
	linesAdded     prometheus.Counter
	linesDeleted   prometheus.Counter
	duration       prometheus.Histogram
}

// NewRecorder creates and registers the analysis metrics. If registry is nil, a fresh
// registry is used so that Go runtime collectors stay out of the textfile.
func NewRecorder(registry *prometheus.Registry) *Recorder {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	r := &Recorder{
		registry: registry,
		analysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "analyses_total",
				Help:      "Total number of analyses run",
			},
			[]string{"status", "kind"},
		),
		commitsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "commits_scanned_total",
			Help:      "Total number of commits read from the analyzed branch",
		}),
		commitsMatched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "commits_matched_total",
			Help:      "Total number of commits matching the author pattern and date window",
		}),
		linesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "lines_added_total",
			Help:      "Total number of lines added by matching commits",
		}),
		linesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "lines_deleted_total",
			Help:      "Total number of lines deleted by matching commits",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of analyses in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 300},
		}),
	}

	registry.MustRegister(
		r.analysesTotal,
		r.commitsScanned,
		r.commitsMatched,
		r.linesAdded,
		r.linesDeleted,
		r.duration,
	)
	return r
}

// CommitScanned counts one traversed commit. It fits core.Options.OnCommit.
func (r *Recorder) CommitScanned() {
	r.commitsScanned.Inc()
}

// ObserveResult records a successful analysis.
func (r *Recorder) ObserveResult(res *schema.AnalysisResult, elapsed time.Duration) {
	r.analysesTotal.WithLabelValues("success", "").Inc()
	r.commitsMatched.Add(float64(res.TotalCommits))
	r.linesAdded.Add(float64(res.LinesAdded))
	r.linesDeleted.Add(float64(res.LinesDeleted))
	r.duration.Observe(elapsed.Seconds())
}

// ObserveError records a failed analysis, labelled with its error kind when known.
func (r *Recorder) ObserveError(err error, elapsed time.Duration) {
	kind := "Error"
	if ae, ok := schema.AsAnalysisError(err); ok {
		kind = string(ae.Kind)
	}
	r.analysesTotal.WithLabelValues("error", kind).Inc()
	r.duration.Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteToTextfile atomically writes every registered metric to path.
func (r *Recorder) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
