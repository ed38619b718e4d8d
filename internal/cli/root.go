// Package cli contains the doceboctl commands
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vaintrub/docebo-go/bulk"
	"github.com/vaintrub/docebo-go/client"
	"github.com/vaintrub/docebo-go/internal/config"
	"github.com/vaintrub/docebo-go/resolver"
)

// BuildInfo describes the running binary
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// skipConfig marks commands that run without platform configuration
const skipConfig = "skip-config"

// app carries the state shared by all commands of one invocation
type app struct {
	info BuildInfo

	cfgFile     string
	envFile     string
	verbose     bool
	colorMode   string
	metricsAddr string

	cfg      *config.Config
	logger   *slog.Logger
	printer  *Printer
	registry *prometheus.Registry
	server   *http.Server
}

// NewRootCommand builds the doceboctl command tree
func NewRootCommand(info BuildInfo) *cobra.Command {
	a := &app{info: info}

	rootCmd := &cobra.Command{
		Use:   "doceboctl",
		Short: "Docebo LMS resolution and bulk enrollment CLI",
		Long: `doceboctl resolves users, courses and learning plans from free-text
identifiers and enrolls or unenrolls users in bulk.

Example usage:
  doceboctl resolve course "Excel Training"          # Find a course by name
  doceboctl resolve lp 277                           # Look up a learning plan by id
  doceboctl enroll course "Excel" a@x.com b@x.com    # Enroll two users
  doceboctl enroll lp "AMN" --file emails.txt        # Enroll users listed in a file
  doceboctl unenroll course 2420 a@x.com             # Remove a user
  doceboctl list users --search smith                # List matching users`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfig] == "true" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.shutdown(cmd.Context())
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is .doceboctl.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", "", "dotenv file with credentials (default is .env if present)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&a.colorMode, "color", "auto", "color output: auto, always, never")
	rootCmd.PersistentFlags().StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	rootCmd.AddCommand(
		newResolveCmd(a),
		newBulkCmd(a, bulk.OpEnroll),
		newBulkCmd(a, bulk.OpUnenroll),
		newListCmd(a),
		newVersionCmd(a),
	)
	return rootCmd
}

// setup loads configuration and sets up logging, output and metrics.
func (a *app) setup(cmd *cobra.Command) error {
	mode, err := ParseColorMode(a.colorMode)
	if err != nil {
		return err
	}

	a.cfg, err = config.Load(a.cfgFile, a.envFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.metricsAddr != "" {
		a.cfg.Metrics.Addr = a.metricsAddr
	}

	a.logger = newLogger(cmd, a.cfg.Logging, a.verbose)
	a.printer = NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), ResolveColors(mode, a.cfg.Output.Colors))
	a.registry = prometheus.NewRegistry()

	a.logger.Debug("configuration loaded",
		"domain", a.cfg.Platform.Domain,
		"batch_size", a.cfg.Bulk.BatchSize,
		"metrics_addr", a.cfg.Metrics.Addr,
	)

	if a.cfg.Metrics.Addr != "" {
		return a.serveMetrics()
	}
	return nil
}

func newLogger(cmd *cobra.Command, cfg config.LoggingConfig, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), opts))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
}

// serveMetrics exposes the registry until shutdown.
func (a *app) serveMetrics() error {
	ln, err := net.Listen("tcp", a.cfg.Metrics.Addr)
	if err != nil {
		return fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{Registry: a.registry}))
	a.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", ln.Addr().String())
	return nil
}

func (a *app) shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return a.server.Shutdown(ctx)
}

// newClient builds a platform client from the loaded configuration.
func (a *app) newClient() (*client.Adapter, error) {
	c := a.cfg.Client
	return client.New(a.cfg.Platform.Domain, client.Credentials{
		ClientID:     a.cfg.Platform.ClientID,
		ClientSecret: a.cfg.Platform.ClientSecret,
		Username:     a.cfg.Platform.Username,
		Password:     a.cfg.Platform.Password,
	},
		client.WithTimeout(c.Timeout),
		client.WithCallTimeout(c.CallTimeout),
		client.WithRetry(c.RetryMax, c.RetryBackoff),
		client.WithRateLimit(c.RateLimit, c.RateBurst),
		client.WithLogger(a.logger),
		client.WithMetrics(a.registry),
	)
}

// newResolver builds a resolver over a fresh client.
func (a *app) newResolver() (*client.Adapter, *resolver.Resolver, error) {
	c, err := a.newClient()
	if err != nil {
		return nil, nil, err
	}
	r, err := resolver.New(c, resolver.WithLogger(a.logger), resolver.WithMetrics(a.registry))
	if err != nil {
		return nil, nil, err
	}
	return c, r, nil
}
