package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/trevorKirkby/network-routing-simulation/internal/config"
	"github.com/trevorKirkby/network-routing-simulation/internal/router"
	"github.com/trevorKirkby/network-routing-simulation/internal/scenario"
	"github.com/trevorKirkby/network-routing-simulation/internal/sim"
)

func compareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run the same topology and workload under every registered algorithm",
		Args:  cobra.NoArgs,
	}

	flags := registerSimFlags(cmd, false)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return executeCompare(cmd, flags)
	}

	return cmd
}

func executeCompare(cmd *cobra.Command, flags *simFlags) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	if err := config.RequireInputs(cfg); err != nil {
		return err
	}

	logger := newLogger(cfg.Log)

	top, wl, err := loadTopologyAndWorkload(cfg)
	if err != nil {
		return err
	}

	names := router.Names()
	sort.Strings(names)

	results := make([]compareResult, len(names))

	g, gCtx := errgroup.WithContext(cmd.Context())
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			result, runErr := sim.Run(gCtx, sim.Options{
				Topology:      top,
				Workload:      wl,
				Algorithm:     router.Name(name),
				Scenario:      scenario.Name(cfg.Sim.Scenario),
				Ticks:         cfg.Sim.Ticks,
				Hurst:         cfg.Sim.Hurst,
				RateDeviation: cfg.Sim.RateDeviation,
				Seed:          cfg.Sim.Seed,
				QueueCap:      cfg.Sim.QueueCap,
				Logger:        logger,
			})
			if runErr != nil {
				results[i] = compareResult{algorithm: name, err: runErr}
				return nil
			}
			results[i] = compareResult{algorithm: name, ticks: result.Ticks, report: result.Report}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("compare: %w", err)
	}

	return printCompare(cmd.OutOrStdout(), results, outputFormat)
}
