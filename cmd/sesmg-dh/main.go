// Package main implements the entry point for the SESMG district-heating
// topology builder. It runs a batch pipeline: ingest scenario tables,
// assemble the pipe network (or reuse a checkpoint), optionally reduce
// consumers by cluster, then checkpoint and export the result.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/L4rsG/SESMG/assembler"
	"github.com/L4rsG/SESMG/cluster"
	"github.com/L4rsG/SESMG/config"
	"github.com/L4rsG/SESMG/errors"
	"github.com/L4rsG/SESMG/geometry"
	"github.com/L4rsG/SESMG/metric"
	"github.com/L4rsG/SESMG/network"
	"github.com/L4rsG/SESMG/persist"
	"github.com/L4rsG/SESMG/scenario"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "sesmg-dh"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	// Run application with proper error handling
	if err := run(); err != nil {
		slog.Error("Build failed", "error", err, "class", errors.Classify(err).String(), "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	// Parse and validate CLI flags
	cliCfg, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	// Load and validate configuration
	cfg, err := initializeConfiguration(cliCfg)
	if err != nil {
		return err
	}

	logger := setupLogger(
		pick(cliCfg.LogLevel, cfg.Logging.Level),
		pick(cliCfg.LogFormat, cfg.Logging.Format))
	slog.SetDefault(logger)

	slog.Info("Starting district-heating topology build",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	// Observability: an optional scrape server for long builds
	metrics, stopMetrics := setupMetrics(cfg)
	defer stopMetrics()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	scen, err := loadScenario(cfg)
	if err != nil {
		return err
	}

	store, err := persist.NewStore(cfg.Checkpoint.Dir, logger, metrics)
	if err != nil {
		return err
	}

	graph, rebuilt, err := acquireGraph(ctx, cfg, scen, store, logger, metrics)
	if err != nil {
		return err
	}
	if graph == nil {
		// The scenario opted out of district heating: a valid outcome.
		return nil
	}

	clustered, err := reduceClusters(cfg, graph, logger, metrics)
	if err != nil {
		return err
	}

	if rebuilt || clustered {
		cp, err := store.Save(ctx, graph)
		if err != nil {
			return err
		}
		slog.Info("Checkpoint written", "run_id", cp.RunID, "dir", store.Dir())
	}

	if err := exportGeoJSON(cfg, graph); err != nil {
		return err
	}

	stats := graph.Stats()
	slog.Info("Build pipeline complete",
		"forks", stats.Forks,
		"consumers", stats.Consumers,
		"producers", stats.Producers,
		"pipes", stats.Pipes)

	return nil
}

// initializeCLI parses flags and handles version/help exits
func initializeCLI() (*CLIConfig, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, true, nil
	}

	if cliCfg.ShowHelp {
		printHelp()
		return nil, true, nil
	}

	return cliCfg, false, nil
}

// initializeConfiguration loads and validates configuration
func initializeConfiguration(cliCfg *CLIConfig) (*config.Config, error) {
	cfg, err := loadConfig(cliCfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupMetrics wires the Prometheus registry and scrape server when
// enabled. The returned stop function is safe to call either way.
func setupMetrics(cfg *config.Config) (*metric.Metrics, func()) {
	if !cfg.Metrics.Enabled {
		return nil, func() {}
	}

	registry := metric.NewMetricsRegistry()
	server := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)

	go func() {
		if err := server.Start(); err != nil {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
	slog.Info("Metrics server listening", "address", server.Address())

	return registry.CoreMetrics(), func() {
		if err := server.Stop(); err != nil {
			slog.Warn("Metrics server stop failed", "error", err)
		}
	}
}

// loadScenario reads the input tables. A configured road graph replaces
// the street table so OSM-derived networks can feed the builder without
// spreadsheet editing.
func loadScenario(cfg *config.Config) (*scenario.Scenario, error) {
	scen, err := scenario.LoadCSV(cfg.Scenario.Dir)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}

	if cfg.Scenario.RoadGraph != "" {
		streets, err := scenario.StreetsFromRoadGraph(cfg.Scenario.RoadGraph, cfg.Scenario.StreetPrefix)
		if err != nil {
			return nil, fmt.Errorf("load road graph: %w", err)
		}
		slog.Info("Street table replaced by road graph",
			"path", cfg.Scenario.RoadGraph,
			"streets", len(streets))
		scen.Streets = streets
	}

	return scen, nil
}

// acquireGraph either reloads a checkpoint or runs a fresh build. The
// second return reports whether the graph was rebuilt and needs saving.
// A nil graph with nil error means the scenario produced no network.
func acquireGraph(
	ctx context.Context,
	cfg *config.Config,
	scen *scenario.Scenario,
	store *persist.Store,
	logger *slog.Logger,
	metrics *metric.Metrics,
) (*network.Graph, bool, error) {
	if cfg.Checkpoint.Reuse {
		graph, cp, err := store.Load(ctx)
		switch {
		case err == nil:
			// Checkpoint files are untrusted input: normalize and check
			// before handing the graph downstream.
			if err := graph.Normalize(); err != nil {
				return nil, false, err
			}
			if err := graph.Check(); err != nil {
				return nil, false, err
			}
			slog.Info("Reusing checkpoint", "run_id", cp.RunID, "created_at", cp.CreatedAt)
			return graph, false, nil
		case stderrors.Is(err, errors.ErrCheckpointNotFound):
			slog.Info("No checkpoint to reuse, building from scenario", "dir", store.Dir())
		default:
			return nil, false, err
		}
	}

	transform, ok := geometry.TransformByName(cfg.Projection.Transform)
	if !ok {
		return nil, false, fmt.Errorf("unknown transform %q", cfg.Projection.Transform)
	}

	result, err := assembler.New(transform, logger, metrics).Build(ctx, scen)
	if err != nil {
		return nil, false, err
	}
	if !result.Present() {
		slog.Info("No district-heating network present, nothing to persist")
		return nil, false, nil
	}

	return result.Graph, true, nil
}

// reduceClusters runs the optional consumer reduction. Returns whether
// the graph was modified.
func reduceClusters(cfg *config.Config, graph *network.Graph, logger *slog.Logger, metrics *metric.Metrics) (bool, error) {
	if !cfg.Cluster.Enabled {
		return false, nil
	}

	asg, err := cluster.LoadAssignment(cfg.Cluster.AssignmentFile)
	if err != nil {
		return false, fmt.Errorf("load cluster assignment: %w", err)
	}

	stats, err := cluster.NewReducer(logger, metrics).Reduce(graph, asg)
	if err != nil {
		return false, err
	}

	slog.Info("Consumers clustered",
		"groups", stats.Groups,
		"merged", stats.Merged,
		"total_demand", stats.Demand)
	return stats.Merged > 0, nil
}

// exportGeoJSON writes the map hand-off file when configured.
func exportGeoJSON(cfg *config.Config, graph *network.Graph) error {
	if cfg.Checkpoint.GeoJSON == "" {
		return nil
	}

	f, err := os.Create(cfg.Checkpoint.GeoJSON)
	if err != nil {
		return fmt.Errorf("create geojson file: %w", err)
	}
	if err := persist.ExportGeoJSON(f, graph); err != nil {
		f.Close()
		return fmt.Errorf("export geojson: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close geojson file: %w", err)
	}

	slog.Info("GeoJSON exported", "path", cfg.Checkpoint.GeoJSON)
	return nil
}

// printHelp prints help information
func printHelp() {
	printDetailedHelp()
}

// loadConfig loads configuration from the specified file path
func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()
	cfg, err := loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func pick(override, fallback string) string {
	if override != "" {
		return override
	}
	return fallback
}
