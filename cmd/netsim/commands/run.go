package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/trevorKirkby/network-routing-simulation/internal/config"
	"github.com/trevorKirkby/network-routing-simulation/internal/metrics"
	"github.com/trevorKirkby/network-routing-simulation/internal/router"
	"github.com/trevorKirkby/network-routing-simulation/internal/scenario"
	"github.com/trevorKirkby/network-routing-simulation/internal/sim"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation and print its metrics report",
		Args:  cobra.NoArgs,
	}

	flags := registerSimFlags(cmd, true)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return executeRun(cmd, flags)
	}

	return cmd
}

func executeRun(cmd *cobra.Command, flags *simFlags) error {
	if cmd.Flags().Changed("algorithm") && flags.algorithm == "list" {
		names := router.Names()
		sort.Strings(names)
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, "\n"))
		return nil
	}

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

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	var metricsSrv *http.Server
	if cfg.Metrics.Addr != "" {
		metricsSrv = newMetricsServer(cfg.Metrics, reg)
		g.Go(func() error {
			logger.Info("metrics server listening", slog.String("addr", cfg.Metrics.Addr))
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	var result sim.Result
	g.Go(func() error {
		defer shutdownMetricsServer(metricsSrv, logger)

		var runErr error
		result, runErr = sim.Run(gCtx, sim.Options{
			Topology:      top,
			Workload:      wl,
			Algorithm:     router.Name(cfg.Sim.Algorithm),
			Scenario:      scenario.Name(cfg.Sim.Scenario),
			Ticks:         cfg.Sim.Ticks,
			Hurst:         cfg.Sim.Hurst,
			RateDeviation: cfg.Sim.RateDeviation,
			Seed:          cfg.Sim.Seed,
			QueueCap:      cfg.Sim.QueueCap,
			Collector:     collector,
			Logger:        logger,
		})
		return runErr
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run: %w", err)
	}

	return printReport(cmd.OutOrStdout(), result.Algorithm, result.Ticks, result.Report, outputFormat)
}

func shutdownMetricsServer(srv *http.Server, logger *slog.Logger) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown", slog.String("error", err.Error()))
	}
}
