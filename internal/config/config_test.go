package config_test

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/trevorKirkby/network-routing-simulation/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()

	if cfg.Sim.Algorithm != "flooding" {
		t.Errorf("Sim.Algorithm = %q, want %q", cfg.Sim.Algorithm, "flooding")
	}

	if cfg.Sim.Scenario != "none" {
		t.Errorf("Sim.Scenario = %q, want %q", cfg.Sim.Scenario, "none")
	}

	if cfg.Sim.Ticks != 1000 {
		t.Errorf("Sim.Ticks = %d, want %d", cfg.Sim.Ticks, 1000)
	}

	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics.Path = %q, want %q", cfg.Metrics.Path, "/metrics")
	}

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}

	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "json")
	}

	// Defaults must pass validation.
	if err := config.Validate(cfg); err != nil {
		t.Errorf("DefaultConfig() failed validation: %v", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	t.Parallel()

	yamlContent := `
sim:
  topology: "topo.csv"
  workload: "work.csv"
  algorithm: "aodv"
  scenario: "disruption"
  ticks: 5000
  hurst: 0.6
  rate_deviation: 0.2
  seed: 7
metrics:
  addr: ":9200"
  path: "/custom-metrics"
log:
  level: "debug"
  format: "text"
`

	path := writeTemp(t, yamlContent)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.Sim.Topology != "topo.csv" {
		t.Errorf("Sim.Topology = %q, want %q", cfg.Sim.Topology, "topo.csv")
	}

	if cfg.Sim.Algorithm != "aodv" {
		t.Errorf("Sim.Algorithm = %q, want %q", cfg.Sim.Algorithm, "aodv")
	}

	if cfg.Sim.Scenario != "disruption" {
		t.Errorf("Sim.Scenario = %q, want %q", cfg.Sim.Scenario, "disruption")
	}

	if cfg.Sim.Ticks != 5000 {
		t.Errorf("Sim.Ticks = %d, want %d", cfg.Sim.Ticks, 5000)
	}

	if cfg.Sim.Seed != 7 {
		t.Errorf("Sim.Seed = %d, want %d", cfg.Sim.Seed, 7)
	}

	if cfg.Metrics.Addr != ":9200" {
		t.Errorf("Metrics.Addr = %q, want %q", cfg.Metrics.Addr, ":9200")
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}

	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, "text")
	}
}

func TestLoadMergesDefaults(t *testing.T) {
	t.Parallel()

	// Partial YAML: only override sim.algorithm and log.level.
	// Everything else should inherit from defaults.
	yamlContent := `
sim:
  algorithm: "bgp_lite"
log:
  level: "warn"
`

	path := writeTemp(t, yamlContent)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.Sim.Algorithm != "bgp_lite" {
		t.Errorf("Sim.Algorithm = %q, want %q", cfg.Sim.Algorithm, "bgp_lite")
	}

	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}

	if cfg.Sim.Ticks != 1000 {
		t.Errorf("Sim.Ticks = %d, want default %d", cfg.Sim.Ticks, 1000)
	}

	if cfg.Sim.Scenario != "none" {
		t.Errorf("Sim.Scenario = %q, want default %q", cfg.Sim.Scenario, "none")
	}

	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want default %q", cfg.Log.Format, "json")
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Sim.Algorithm != "flooding" {
		t.Errorf("Sim.Algorithm = %q, want default %q", cfg.Sim.Algorithm, "flooding")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	// Environment variable tests cannot be parallel because they modify
	// process-wide state (os.Setenv).
	t.Setenv("NETSIM_SIM_SEED", "99")
	t.Setenv("NETSIM_SIM_ALGORITHM", "omniscient")

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.Sim.Seed != 99 {
		t.Errorf("Sim.Seed = %d, want %d (from env)", cfg.Sim.Seed, 99)
	}
	if cfg.Sim.Algorithm != "omniscient" {
		t.Errorf("Sim.Algorithm = %q, want %q (from env)", cfg.Sim.Algorithm, "omniscient")
	}
}

func TestLoadEnvOverridesMetrics(t *testing.T) {
	yamlContent := `
metrics:
  addr: ":9100"
  path: "/metrics"
`
	path := writeTemp(t, yamlContent)

	t.Setenv("NETSIM_METRICS_ADDR", ":9200")
	t.Setenv("NETSIM_METRICS_PATH", "/custom")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error: %v", path, err)
	}

	if cfg.Metrics.Addr != ":9200" {
		t.Errorf("Metrics.Addr = %q, want %q (from env)", cfg.Metrics.Addr, ":9200")
	}

	if cfg.Metrics.Path != "/custom" {
		t.Errorf("Metrics.Path = %q, want %q (from env)", cfg.Metrics.Path, "/custom")
	}
}

func TestValidateErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*config.Config)
		wantErr error
	}{
		{
			name: "empty algorithm",
			modify: func(cfg *config.Config) {
				cfg.Sim.Algorithm = ""
			},
			wantErr: config.ErrEmptyAlgorithm,
		},
		{
			name: "zero ticks",
			modify: func(cfg *config.Config) {
				cfg.Sim.Ticks = 0
			},
			wantErr: config.ErrInvalidTicks,
		},
		{
			name: "negative ticks",
			modify: func(cfg *config.Config) {
				cfg.Sim.Ticks = -1
			},
			wantErr: config.ErrInvalidTicks,
		},
		{
			name: "hurst too low",
			modify: func(cfg *config.Config) {
				cfg.Sim.Hurst = 0
			},
			wantErr: config.ErrInvalidHurst,
		},
		{
			name: "hurst too high",
			modify: func(cfg *config.Config) {
				cfg.Sim.Hurst = 1
			},
			wantErr: config.ErrInvalidHurst,
		},
		{
			name: "negative rate deviation",
			modify: func(cfg *config.Config) {
				cfg.Sim.RateDeviation = -0.1
			},
			wantErr: config.ErrInvalidRateDeviation,
		},
		{
			name: "negative queue cap",
			modify: func(cfg *config.Config) {
				cfg.Sim.QueueCap = -5
			},
			wantErr: config.ErrInvalidQueueCap,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.DefaultConfig()
			tt.modify(cfg)

			err := config.Validate(cfg)
			if err == nil {
				t.Fatal("Validate() returned nil, want error")
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequireInputs(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	if err := config.RequireInputs(cfg); !errors.Is(err, config.ErrEmptyTopology) {
		t.Errorf("RequireInputs() error = %v, want %v", err, config.ErrEmptyTopology)
	}

	cfg.Sim.Topology = "topo.csv"
	if err := config.RequireInputs(cfg); !errors.Is(err, config.ErrEmptyWorkload) {
		t.Errorf("RequireInputs() error = %v, want %v", err, config.ErrEmptyWorkload)
	}

	cfg.Sim.Workload = "work.csv"
	if err := config.RequireInputs(cfg); err != nil {
		t.Errorf("RequireInputs() error = %v, want nil", err)
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  slog.Level
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "DEBUG", want: slog.LevelDebug},
		{input: "info", want: slog.LevelInfo},
		{input: "INFO", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "WARN", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "Error", want: slog.LevelError},
		{input: "unknown", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "trace", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got := config.ParseLogLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoadNonexistentFile(t *testing.T) {
	t.Parallel()

	_, err := config.Load("/nonexistent/path/config.yml")
	if err == nil {
		t.Fatal("Load() returned nil error for nonexistent file")
	}
}

// writeTemp creates a temporary YAML file and returns its path.
// The file is automatically cleaned up when the test finishes.
func writeTemp(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "netsim.yml")

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	return path
}
