package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/L4rsG/SESMG/geometry"
)

// Config represents the complete application configuration: where the
// scenario comes from, how coordinates are projected, whether clustering
// and checkpoint reuse apply, and the observability settings.
type Config struct {
	Scenario   ScenarioConfig   `json:"scenario"`
	Projection ProjectionConfig `json:"projection"`
	Cluster    ClusterConfig    `json:"cluster"`
	Checkpoint CheckpointConfig `json:"checkpoint"`
	Metrics    MetricsConfig    `json:"metrics"`
	Logging    LoggingConfig    `json:"logging"`
}

// ScenarioConfig locates the input tables. Dir must hold streets.csv,
// buildings.csv, and buses.csv; RoadGraph optionally replaces the street
// table with a road graph file, labeling streets StreetPrefix-1..n.
type ScenarioConfig struct {
	Dir          string `json:"dir"`
	RoadGraph    string `json:"road_graph,omitempty"`
	StreetPrefix string `json:"street_prefix,omitempty"`
}

// ProjectionConfig selects the planar transform used for distance math.
type ProjectionConfig struct {
	Transform string `json:"transform"`
}

// ClusterConfig controls consumer reduction after the build.
type ClusterConfig struct {
	Enabled        bool   `json:"enabled"`
	AssignmentFile string `json:"assignment_file,omitempty"`
}

// CheckpointConfig controls persistence. When Reuse is set and the
// directory holds a checkpoint, the build is skipped and the checkpoint
// loaded instead.
type CheckpointConfig struct {
	Dir     string `json:"dir"`
	Reuse   bool   `json:"reuse"`
	GeoJSON string `json:"geojson,omitempty"`
}

// MetricsConfig controls the Prometheus scrape endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port,omitempty"`
	Path    string `json:"path,omitempty"`
}

// LoggingConfig controls slog output.
type LoggingConfig struct {
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`
}

// Validate checks if the config is valid.
func (c *Config) Validate() error {
	if c.Scenario.Dir == "" {
		return errors.New("scenario.dir is required")
	}
	if c.Scenario.RoadGraph != "" && c.Scenario.StreetPrefix == "" {
		return errors.New("scenario.street_prefix is required when a road graph is used")
	}

	if _, ok := geometry.TransformByName(c.Projection.Transform); !ok {
		return fmt.Errorf("projection.transform %q is not known (use identity or mercator)", c.Projection.Transform)
	}

	if c.Cluster.Enabled {
		if c.Cluster.AssignmentFile == "" {
			return errors.New("cluster.assignment_file is required when clustering is enabled")
		}
		if _, err := os.Stat(c.Cluster.AssignmentFile); err != nil {
			return fmt.Errorf("cluster.assignment_file: %w", err)
		}
	}

	if c.Checkpoint.Dir == "" {
		return errors.New("checkpoint.dir is required")
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port %d is out of range", c.Metrics.Port)
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path %q must start with /", c.Metrics.Path)
		}
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not known (use debug, info, warn, or error)", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format %q is not known (use text or json)", c.Logging.Format)
	}

	return nil
}

// Loader handles configuration loading with layers and overrides.
type Loader struct {
	layers     []string
	validation bool
	envPrefix  string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{
		layers:     []string{},
		validation: false,
		envPrefix:  "SESMG",
	}
}

// AddLayer adds a configuration file layer. Later layers override
// earlier ones.
func (l *Loader) AddLayer(path string) {
	l.layers = append(l.layers, path)
}

// EnableValidation enables or disables configuration validation.
func (l *Loader) EnableValidation(enable bool) {
	l.validation = enable
}

// LoadFile loads configuration from a single file.
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.layers = []string{path}
	return l.Load()
}

// Load loads and merges all configuration layers on top of the defaults,
// then applies environment overrides.
func (l *Loader) Load() (*Config, error) {
	cfg := l.getDefaults()

	for _, path := range l.layers {
		rawConfig, err := l.loadRawJSON(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		cfg = l.mergeFromMap(cfg, rawConfig)
	}

	l.applyEnvOverrides(cfg)

	if l.validation {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// getDefaults returns default configuration.
func (l *Loader) getDefaults() *Config {
	return &Config{
		Scenario: ScenarioConfig{
			StreetPrefix: "street",
		},
		Projection: ProjectionConfig{
			Transform: "mercator",
		},
		Checkpoint: CheckpointConfig{
			Dir: "checkpoint",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// loadRawJSON loads configuration from a JSON file as a map.
func (l *Loader) loadRawJSON(path string) (map[string]any, error) {
	data, err := safeReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := validateJSONDepth(data); err != nil {
		return nil, fmt.Errorf("invalid JSON structure: %w", err)
	}

	var rawConfig map[string]any
	if err := json.Unmarshal(data, &rawConfig); err != nil {
		return nil, err
	}

	return rawConfig, nil
}

// mergeFromMap merges configuration from a raw map, only overriding
// fields present in the map.
func (l *Loader) mergeFromMap(base *Config, override map[string]any) *Config {
	if override == nil {
		return base
	}

	baseJSON, err := json.Marshal(base)
	if err != nil {
		return base
	}

	var baseMap map[string]any
	if err := json.Unmarshal(baseJSON, &baseMap); err != nil {
		return base
	}

	mergedMap := l.deepMergeMaps(baseMap, override)

	mergedJSON, err := json.Marshal(mergedMap)
	if err != nil {
		return base
	}

	var merged Config
	if err := json.Unmarshal(mergedJSON, &merged); err != nil {
		return base
	}

	return &merged
}

// deepMergeMaps recursively merges two maps, with override taking
// precedence.
func (l *Loader) deepMergeMaps(base, override map[string]any) map[string]any {
	result := make(map[string]any)

	for k, v := range base {
		result[k] = v
	}

	for k, v := range override {
		if v == nil {
			continue
		}

		if baseMap, baseOk := base[k].(map[string]any); baseOk {
			if overrideMap, overrideOk := v.(map[string]any); overrideOk {
				result[k] = l.deepMergeMaps(baseMap, overrideMap)
				continue
			}
		}

		result[k] = v
	}

	return result
}

// applyEnvOverrides applies environment variable overrides.
func (l *Loader) applyEnvOverrides(cfg *Config) {
	if val := l.envValue("_SCENARIO_DIR"); val != "" {
		cfg.Scenario.Dir = val
	}
	if val := l.envValue("_SCENARIO_ROAD_GRAPH"); val != "" {
		cfg.Scenario.RoadGraph = val
	}
	if val := l.envValue("_PROJECTION_TRANSFORM"); val != "" {
		cfg.Projection.Transform = val
	}
	if val := l.envValue("_CLUSTER_ASSIGNMENT"); val != "" {
		cfg.Cluster.AssignmentFile = val
	}
	if val := l.envValue("_CHECKPOINT_DIR"); val != "" {
		cfg.Checkpoint.Dir = val
	}
	if val := l.envValue("_METRICS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Metrics.Port = port
		}
	}
	if val := l.envValue("_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := l.envValue("_LOG_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}

// envValue reads one prefixed environment variable, dropping values that
// fail basic hygiene checks.
func (l *Loader) envValue(suffix string) string {
	key := l.envPrefix + suffix
	val := os.Getenv(key)
	if err := validateEnvVar(key, val); err != nil {
		return ""
	}
	return val
}

// SaveToFile saves the configuration to a JSON file.
func (c *Config) SaveToFile(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return safeWriteFile(path, data)
}

// String returns a JSON representation of the config.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
