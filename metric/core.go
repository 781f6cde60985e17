package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the build-level metrics of the topology pipeline.
type Metrics struct {
	// Build metrics
	BuildsTotal   *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	NodesTotal    *prometheus.CounterVec
	PipesTotal    prometheus.Counter
	PipeMeters    prometheus.Counter
	ErrorsTotal   *prometheus.CounterVec

	// Clustering metrics
	ClustersTotal      prometheus.Counter
	ConsumersClustered prometheus.Counter

	// Checkpoint metrics
	CheckpointRows  *prometheus.CounterVec
	CheckpointBytes prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all build metrics
func NewMetrics() *Metrics {
	return &Metrics{
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sesmg",
				Subsystem: "build",
				Name:      "runs_total",
				Help:      "Total number of network builds by outcome (ok, empty, error)",
			},
			[]string{"status"},
		),

		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sesmg",
				Subsystem: "build",
				Name:      "stage_duration_seconds",
				Help:      "Build stage duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),

		NodesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sesmg",
				Subsystem: "network",
				Name:      "nodes_total",
				Help:      "Total number of network nodes created by kind",
			},
			[]string{"kind"},
		),

		PipesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sesmg",
				Subsystem: "network",
				Name:      "pipes_total",
				Help:      "Total number of pipes created",
			},
		),

		PipeMeters: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sesmg",
				Subsystem: "network",
				Name:      "pipe_meters_total",
				Help:      "Total pipe length created, in projection-plane units",
			},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sesmg",
				Subsystem: "build",
				Name:      "errors_total",
				Help:      "Total number of build errors by class",
			},
			[]string{"class"},
		),

		ClustersTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sesmg",
				Subsystem: "cluster",
				Name:      "groups_total",
				Help:      "Total number of consumer clusters formed",
			},
		),

		ConsumersClustered: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sesmg",
				Subsystem: "cluster",
				Name:      "consumers_merged_total",
				Help:      "Total number of consumers merged away by clustering",
			},
		),

		CheckpointRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sesmg",
				Subsystem: "checkpoint",
				Name:      "rows_total",
				Help:      "Total number of rows written to checkpoints by table",
			},
			[]string{"table"},
		),

		CheckpointBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sesmg",
				Subsystem: "checkpoint",
				Name:      "bytes_total",
				Help:      "Total bytes written to checkpoints",
			},
		),
	}
}

// RecordBuild increments the build counter for an outcome status
func (c *Metrics) RecordBuild(status string) {
	c.BuildsTotal.WithLabelValues(status).Inc()
}

// RecordStageDuration records the duration of one build stage
func (c *Metrics) RecordStageDuration(stage string, duration time.Duration) {
	c.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordNodes adds to the node counter for a node kind
func (c *Metrics) RecordNodes(kind string, count int) {
	c.NodesTotal.WithLabelValues(kind).Add(float64(count))
}

// RecordPipes adds created pipes and their accumulated length
func (c *Metrics) RecordPipes(count int, length float64) {
	c.PipesTotal.Add(float64(count))
	c.PipeMeters.Add(length)
}

// RecordError increments the error counter for a classification
func (c *Metrics) RecordError(class string) {
	c.ErrorsTotal.WithLabelValues(class).Inc()
}

// RecordClusterReduction records one clustering pass
func (c *Metrics) RecordClusterReduction(clusters, merged int) {
	c.ClustersTotal.Add(float64(clusters))
	c.ConsumersClustered.Add(float64(merged))
}

// RecordCheckpointTable records rows written for one checkpoint table
func (c *Metrics) RecordCheckpointTable(table string, rows int) {
	c.CheckpointRows.WithLabelValues(table).Add(float64(rows))
}

// RecordCheckpointBytes adds to the checkpoint byte counter
func (c *Metrics) RecordCheckpointBytes(n int64) {
	c.CheckpointBytes.Add(float64(n))
}
