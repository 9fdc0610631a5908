package commands

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trevorKirkby/network-routing-simulation/internal/config"
)

// shutdownTimeout bounds how long the metrics HTTP server is given to
// drain a scrape in flight once a run finishes.
const shutdownTimeout = 5 * time.Second

// newLogger builds a structured logger per cfg. Logs go to stderr, not
// stdout, so the metrics report (§4.9/§6) stays the only thing a script
// piping netsim's stdout needs to parse.
func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: config.ParseLogLevel(cfg.Level)}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

// newMetricsServer builds (but does not start) the Prometheus scrape
// endpoint for a single run.
func newMetricsServer(cfg config.MetricsConfig, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	path := cfg.Path
	if path == "" {
		path = "/metrics"
	}
	mux.Handle(path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
