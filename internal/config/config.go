// Package config manages netsim configuration using koanf/v2.
//
// Supports YAML files, environment variables, and CLI flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// -------------------------------------------------------------------------
// Configuration Structures
// -------------------------------------------------------------------------

// Config holds the complete netsim configuration.
type Config struct {
	Sim     SimConfig     `koanf:"sim"`
	Metrics MetricsConfig `koanf:"metrics"`
	Log     LogConfig     `koanf:"log"`
}

// SimConfig holds the parameters of a single simulation run.
type SimConfig struct {
	// Topology is the path to the topology CSV file.
	Topology string `koanf:"topology"`

	// Workload is the path to the workload CSV file.
	Workload string `koanf:"workload"`

	// Algorithm is the routing protocol variant to run (see
	// router.Names for the registered set). netsim compare ignores it
	// and runs every registered variant.
	Algorithm string `koanf:"algorithm"`

	// Scenario selects the fault-injection scenario: "none",
	// "disruption", or "topology_shift".
	Scenario string `koanf:"scenario"`

	// Ticks is the maximum number of simulated time steps to run
	// before the driver stops regardless of termination state.
	Ticks int `koanf:"ticks"`

	// Hurst is the Hurst parameter fed to the noise oracle (0, 1).
	Hurst float64 `koanf:"hurst"`

	// RateDeviation scales the noise oracle's perturbation of each
	// medium's throughput and drop rate around its nominal value.
	RateDeviation float64 `koanf:"rate_deviation"`

	// Seed is the base random seed. Every stochastic component
	// (noise, loss RNGs, protocol jitter, scenario RNGs) derives its
	// own seed deterministically from this one, so a run is fully
	// reproducible given (Seed, Topology, Workload).
	Seed int64 `koanf:"seed"`

	// QueueCap overrides the default per-router buffer capacity
	// (router.DefaultQueueCap) when positive; 0 keeps the default.
	QueueCap int `koanf:"queue_cap"`

	// Animate is the animation on/off switch, off by default. It is
	// loaded from configuration only; no netsim command reads it, and
	// no animation is rendered.
	Animate bool `koanf:"animate"`
}

// MetricsConfig holds the Prometheus metrics endpoint configuration.
type MetricsConfig struct {
	// Addr is the HTTP listen address for the metrics endpoint (e.g.,
	// ":9100"). Empty disables the endpoint; the stdout report is
	// always printed regardless.
	Addr string `koanf:"addr"`
	// Path is the URL path for the metrics endpoint (e.g., "/metrics").
	Path string `koanf:"path"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `koanf:"level"`
	// Format is the log output format: "json" or "text".
	Format string `koanf:"format"`
}

// -------------------------------------------------------------------------
// Defaults
// -------------------------------------------------------------------------

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Sim: SimConfig{
			Algorithm:     "flooding",
			Scenario:      "none",
			Ticks:         1000,
			Hurst:         0.7,
			RateDeviation: 0.1,
			Seed:          1,
		},
		Metrics: MetricsConfig{
			Addr: "",
			Path: "/metrics",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// -------------------------------------------------------------------------
// Loader
// -------------------------------------------------------------------------

// envPrefix is the environment variable prefix for netsim configuration.
// Variables are named NETSIM_<section>_<key>, e.g., NETSIM_SIM_SEED.
const envPrefix = "NETSIM_"

// Load reads configuration from a YAML file at path, overlays environment
// variable overrides (NETSIM_ prefix), and merges on top of
// DefaultConfig(). Missing fields inherit defaults. An empty path skips
// the file layer entirely, so a run can be fully specified by flags and
// environment alone.
//
// Uses koanf/v2 with file + env providers and YAML parser.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := DefaultConfig()
	if err := loadDefaults(k, defaults); err != nil {
		return nil, fmt.Errorf("load config defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config from %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config from %s: %w", path, err)
	}

	return cfg, nil
}

// envKeyMapper transforms NETSIM_SIM_SEED -> sim.seed and
// NETSIM_SIM_RATE_DEVIATION -> sim.rate_deviation.
// Strips the NETSIM_ prefix, lowercases, and replaces the first _ (the
// section separator) with .
func envKeyMapper(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.Replace(s, "_", ".", 1)
}

// loadDefaults marshals the default config into koanf as the base layer.
func loadDefaults(k *koanf.Koanf, defaults *Config) error {
	defaultMap := map[string]any{
		"sim.algorithm":      defaults.Sim.Algorithm,
		"sim.scenario":       defaults.Sim.Scenario,
		"sim.ticks":          defaults.Sim.Ticks,
		"sim.hurst":          defaults.Sim.Hurst,
		"sim.rate_deviation": defaults.Sim.RateDeviation,
		"sim.seed":           defaults.Sim.Seed,
		"metrics.addr":       defaults.Metrics.Addr,
		"metrics.path":       defaults.Metrics.Path,
		"log.level":          defaults.Log.Level,
		"log.format":         defaults.Log.Format,
	}

	for key, val := range defaultMap {
		if err := k.Set(key, val); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

// -------------------------------------------------------------------------
// Validation
// -------------------------------------------------------------------------

// Validation errors.
var (
	// ErrEmptyTopology indicates no topology file was given.
	ErrEmptyTopology = errors.New("sim.topology must not be empty")

	// ErrEmptyWorkload indicates no workload file was given.
	ErrEmptyWorkload = errors.New("sim.workload must not be empty")

	// ErrEmptyAlgorithm indicates no routing algorithm was named.
	ErrEmptyAlgorithm = errors.New("sim.algorithm must not be empty")

	// ErrInvalidTicks indicates the tick limit is not positive.
	ErrInvalidTicks = errors.New("sim.ticks must be > 0")

	// ErrInvalidHurst indicates the Hurst parameter is out of (0, 1).
	ErrInvalidHurst = errors.New("sim.hurst must be in (0, 1)")

	// ErrInvalidRateDeviation indicates a negative rate-deviation
	// multiplier.
	ErrInvalidRateDeviation = errors.New("sim.rate_deviation must be >= 0")

	// ErrInvalidQueueCap indicates a negative queue-cap override.
	ErrInvalidQueueCap = errors.New("sim.queue_cap must be >= 0")
)

// Validate checks the configuration for logical errors. Returns the
// first validation error encountered. Topology/workload presence is only
// checked by RequireInputs, which netsim run, compare and validate call
// after Validate; unit tests may construct a Config without either.
func Validate(cfg *Config) error {
	if cfg.Sim.Algorithm == "" {
		return ErrEmptyAlgorithm
	}

	if cfg.Sim.Ticks <= 0 {
		return ErrInvalidTicks
	}

	if cfg.Sim.Hurst <= 0 || cfg.Sim.Hurst >= 1 {
		return ErrInvalidHurst
	}

	if cfg.Sim.RateDeviation < 0 {
		return ErrInvalidRateDeviation
	}

	if cfg.Sim.QueueCap < 0 {
		return ErrInvalidQueueCap
	}

	return nil
}

// RequireInputs additionally validates that Topology and Workload are
// both set, for commands that actually execute a simulation rather than
// merely loading configuration.
func RequireInputs(cfg *Config) error {
	if cfg.Sim.Topology == "" {
		return ErrEmptyTopology
	}
	if cfg.Sim.Workload == "" {
		return ErrEmptyWorkload
	}
	return nil
}

// -------------------------------------------------------------------------
// Log Level Parsing
// -------------------------------------------------------------------------

// ParseLogLevel maps a configuration log level string to the corresponding
// slog.Level. Unknown values default to slog.LevelInfo.
//
// Recognized values: "debug", "info", "warn", "error" (case-insensitive).
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
