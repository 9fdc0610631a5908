package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trevorKirkby/network-routing-simulation/internal/config"
	"github.com/trevorKirkby/network-routing-simulation/internal/topology"
)

// simFlags holds the per-command flag destinations that override
// SimConfig/MetricsConfig/LogConfig fields, following the teacher's
// defaults < file < env < flags precedence (internal/config §10.2).
type simFlags struct {
	topology      string
	workload      string
	algorithm     string
	scenario      string
	ticks         int
	hurst         float64
	rateDeviation float64
	seed          int64
	queueCap      int
	metricsAddr   string
	metricsPath   string
	logLevel      string
	logFormat     string
}

// registerSimFlags attaches the simulation flags to cmd. includeAlgorithm
// is false for netsim compare, which runs every registered algorithm and
// has no single one to select.
func registerSimFlags(cmd *cobra.Command, includeAlgorithm bool) *simFlags {
	f := &simFlags{}
	flags := cmd.Flags()

	flags.StringVar(&f.topology, "topology", "", "path to topology CSV file")
	flags.StringVar(&f.workload, "workload", "", "path to workload CSV file")
	if includeAlgorithm {
		flags.StringVar(&f.algorithm, "algorithm", "", "routing algorithm name, or \"list\" to print the registered set")
	}
	flags.StringVar(&f.scenario, "scenario", "", "fault-injection scenario: none, disruption, topology_shift")
	flags.IntVar(&f.ticks, "ticks", 0, "maximum simulated ticks (0 keeps the configured default)")
	flags.Float64Var(&f.hurst, "hurst", 0, "noise oracle Hurst parameter, in (0,1)")
	flags.Float64Var(&f.rateDeviation, "rate-deviation", 0, "noise rate-deviation multiplier")
	flags.Int64Var(&f.seed, "seed", 0, "base random seed")
	flags.IntVar(&f.queueCap, "queue-cap", 0, "router queue capacity override (0 keeps the default)")
	flags.StringVar(&f.metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address (empty disables the endpoint)")
	flags.StringVar(&f.metricsPath, "metrics-path", "", "Prometheus metrics URL path")
	flags.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&f.logFormat, "log-format", "", "log output format: json, text")

	return f
}

// applySimFlags overlays every flag the caller actually set on top of
// cfg, which already reflects defaults < file < environment.
func applySimFlags(cfg *config.Config, flags *cobraFlagSet, f *simFlags) {
	if flags.changed("topology") {
		cfg.Sim.Topology = f.topology
	}
	if flags.changed("workload") {
		cfg.Sim.Workload = f.workload
	}
	if flags.changed("algorithm") {
		cfg.Sim.Algorithm = f.algorithm
	}
	if flags.changed("scenario") {
		cfg.Sim.Scenario = f.scenario
	}
	if flags.changed("ticks") && f.ticks != 0 {
		cfg.Sim.Ticks = f.ticks
	}
	if flags.changed("hurst") {
		cfg.Sim.Hurst = f.hurst
	}
	if flags.changed("rate-deviation") {
		cfg.Sim.RateDeviation = f.rateDeviation
	}
	if flags.changed("seed") {
		cfg.Sim.Seed = f.seed
	}
	if flags.changed("queue-cap") {
		cfg.Sim.QueueCap = f.queueCap
	}
	if flags.changed("metrics-addr") {
		cfg.Metrics.Addr = f.metricsAddr
	}
	if flags.changed("metrics-path") {
		cfg.Metrics.Path = f.metricsPath
	}
	if flags.changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if flags.changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
}

// cobraFlagSet narrows a command's *pflag.FlagSet to the one method
// applySimFlags needs.
type cobraFlagSet struct {
	cmd *cobra.Command
}

func (f *cobraFlagSet) changed(name string) bool {
	return f.cmd.Flags().Changed(name)
}

// loadConfig loads configuration from --config (if set), environment,
// and defaults, then overlays whichever flags the caller actually passed
// on cmd, and validates the result.
func loadConfig(cmd *cobra.Command, f *simFlags) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	applySimFlags(cfg, &cobraFlagSet{cmd: cmd}, f)

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadTopologyAndWorkload opens and parses the files named by cfg.
func loadTopologyAndWorkload(cfg *config.Config) (topology.Topology, []topology.WorkloadEntry, error) {
	topFile, err := os.Open(cfg.Sim.Topology)
	if err != nil {
		return topology.Topology{}, nil, fmt.Errorf("open topology: %w", err)
	}
	defer topFile.Close()

	top, err := topology.LoadTopology(topFile)
	if err != nil {
		return topology.Topology{}, nil, fmt.Errorf("load topology: %w", err)
	}

	wlFile, err := os.Open(cfg.Sim.Workload)
	if err != nil {
		return topology.Topology{}, nil, fmt.Errorf("open workload: %w", err)
	}
	defer wlFile.Close()

	wl, err := topology.LoadWorkload(wlFile)
	if err != nil {
		return topology.Topology{}, nil, fmt.Errorf("load workload: %w", err)
	}

	return top, wl, nil
}
