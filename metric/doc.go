// Package metric provides Prometheus-based metrics collection and an HTTP
// server for observing district-heating network builds.
//
// The package offers a centralized metrics registry managing the core build
// metrics (nodes and pipes created, stage durations, build outcomes,
// clustering reductions, checkpoint volume) plus registration for
// additional collectors. An HTTP server exposes everything in Prometheus
// format for scrape-based monitoring of long batch runs.
//
// # Architecture
//
// The package follows a three-layer design:
//
//  1. Core Metrics: build-level metrics automatically registered (Metrics type)
//  2. Registry: extensible registration for extra collectors (MetricsRegistrar interface)
//  3. HTTP Server: metrics endpoint with a health check (Server type)
//
// # Basic Usage
//
// Setting up metrics collection and the HTTP server:
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//
//	go func() {
//	    if err := server.Start(); err != nil {
//	        log.Printf("metrics server error: %v", err)
//	    }
//	}()
//	defer server.Stop()
//
//	// Record build metrics
//	core := registry.CoreMetrics()
//	core.RecordNodes("forks", 12)
//	core.RecordPipes(17, 2450.5)
//	core.RecordStageDuration("street_chains", elapsed)
//	core.RecordBuild("ok")
//
// The server exposes Prometheus-formatted metrics at
// http://localhost:9090/metrics and a health check at /health.
//
// # Core Metrics
//
// The registry automatically registers metrics tracking:
//
//   - Build outcomes: sesmg_build_runs_total by status (ok, empty, error)
//   - Stage performance: sesmg_build_stage_duration_seconds
//   - Network growth: sesmg_network_nodes_total by kind, sesmg_network_pipes_total,
//     sesmg_network_pipe_meters_total
//   - Failures: sesmg_build_errors_total by error class
//   - Clustering: sesmg_cluster_groups_total, sesmg_cluster_consumers_merged_total
//   - Checkpoints: sesmg_checkpoint_rows_total by table, sesmg_checkpoint_bytes_total
//
// Go runtime and process collectors are registered alongside, so scrapes
// carry memory and GC behavior of large builds without extra wiring.
//
// # Additional Collectors
//
// Components with one-off collectors register them under a unique name:
//
//	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{...})
//	if err := registry.Register("ingest.queue_depth", queueDepth); err != nil {
//	    return err
//	}
//	defer registry.Unregister("ingest.queue_depth")
//
// Duplicate names and collectors already known to Prometheus are rejected
// as invalid, never silently replaced.
package metric
