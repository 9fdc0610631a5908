package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trevorKirkby/network-routing-simulation/internal/config"
	"github.com/trevorKirkby/network-routing-simulation/internal/router"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Parse the configured topology and workload without simulating",
		Args:  cobra.NoArgs,
	}

	flags := registerSimFlags(cmd, true)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return executeValidate(cmd, flags)
	}

	return cmd
}

func executeValidate(cmd *cobra.Command, flags *simFlags) error {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return err
	}
	if err := config.RequireInputs(cfg); err != nil {
		return err
	}

	if cfg.Sim.Algorithm != "" {
		known := false
		for _, name := range router.Names() {
			if name == cfg.Sim.Algorithm {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("validate: unknown algorithm %q (known: %v)", cfg.Sim.Algorithm, router.Names())
		}
	}

	top, wl, err := loadTopologyAndWorkload(cfg)
	if err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "valid: %d media, %d edges, %d workload entries\n",
		len(top.Media), len(top.Edges), len(wl))
	return nil
}
