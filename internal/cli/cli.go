package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pfrederiksen/campus-events/internal/api"
	"github.com/pfrederiksen/campus-events/internal/cache"
	"github.com/pfrederiksen/campus-events/internal/config"
	"github.com/pfrederiksen/campus-events/internal/logger"
)

const (
	ExitSuccess  = 0
	ExitError    = 1
	ExitFallback = 2
)

const shutdownTimeout = 10 * time.Second

// exitError carries a non-zero exit code for a command that otherwise succeeded.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "campus-events",
		Short: "Scrape and serve today's UCF campus events",
		Long: `A tool that scrapes the UCF events calendar once per day, caches the result,
and serves it over HTTP or prints it on the command line.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file (defaults apply when empty)")
	cmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newServeCmd(opts), newEventsCmd(opts), newRefreshCmd(opts))
	return cmd
}

// setup loads the config and builds the logger for a command.
func (o *rootOptions) setup(cmd *cobra.Command) (config.Config, *logger.Logger, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return config.Config{}, nil, err
		}
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return config.Config{}, nil, err
	}
	if o.verbose {
		level = logger.LevelDebug
	}
	log := logger.New(level, cmd.ErrOrStderr())
	logger.SetDefault(log)

	log.Debug("Configuration loaded", logger.Fields{
		"config":  o.configPath,
		"url":     cfg.Site.URL,
		"backend": cfg.Cache.Backend,
		"mode":    cfg.Extraction.Mode,
	})
	return cfg, log, nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	var warm bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the events API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			// Root context cancelled on SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg, log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if warm {
				go func() {
					if _, err := a.gate.GetEvents(ctx); err != nil && !errors.Is(err, context.Canceled) {
						log.Error("Failed to warm cache", nil, err)
					}
				}()
			}

			return serve(ctx, cfg.Server.Addr, api.NewServer(api.NewHandler(a.gate, log)), log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&warm, "warm", true, "Populate the cache at startup")
	return cmd
}

// serve runs srv until ctx is cancelled, then shuts it down gracefully.
func serve(ctx context.Context, addr string, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Listening", logger.Fields{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("Shutdown signal received", nil)

	// Stop accepting new requests; wait for in-flight with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func newEventsCmd(opts *rootOptions) *cobra.Command {
	var format, order string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print today's events, scraping only when the cache is stale",
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := ParseFormat(format)
			if err != nil {
				return err
			}
			sortOrder, err := ParseSortOrder(order)
			if err != nil {
				return err
			}

			cfg, log, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			state := a.gate.State()
			snap, err := a.gate.GetSnapshot(cmd.Context())
			if err != nil {
				return fmt.Errorf("getting events: %w", err)
			}

			result := newResult(a.gate, string(state))
			result.Events = sortedEvents(snap.Events, sortOrder, snap.Day())
			result.EventCount = len(result.Events)

			if err := WriteOutput(cmd.OutOrStdout(), result, outFormat, opts.verbose); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or ics")
	cmd.Flags().StringVar(&order, "sort", "none", "Sort order: none, date, title or location")
	return cmd
}

func newRefreshCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Discard the cache and scrape again",
		Long: `Discard the cached events and run the scraper again.
Exits with status 2 when the scrape failed and the fallback list was cached.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outFormat, err := ParseFormat(format)
			if err != nil {
				return err
			}
			if outFormat == FormatICS {
				return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", format)
			}

			cfg, log, err := opts.setup(cmd)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			events, err := a.gate.RefreshEvents(cmd.Context())
			if err != nil {
				return fmt.Errorf("refreshing events: %w", err)
			}

			result := newResult(a.gate, string(a.gate.State()))
			result.Events = events
			result.EventCount = len(events)

			if err := writeRefresh(cmd.OutOrStdout(), result, outFormat); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			if result.Fallback {
				return &exitError{code: ExitFallback, msg: "scrape failed; cached the fallback list"}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	return cmd
}

func writeRefresh(w io.Writer, result *OutputResult, format OutputFormat) error {
	if format == FormatJSON {
		return writeJSON(w, result)
	}
	_, err := fmt.Fprintf(w, "Refreshed %d events (cached on %s).\n", result.EventCount, result.CachedOn)
	return err
}

func newResult(gate *cache.Gate, state string) *OutputResult {
	status := gate.Status()
	result := &OutputResult{
		CheckedAt:   time.Now().UTC(),
		CachedOn:    status.CachedOn,
		CacheStatus: state,
		Fallback:    status.LastRun != nil && status.LastRun.Fallback,
	}
	if status.CachedAt != nil {
		result.CachedAt = *status.CachedAt
	}
	return result
}

// Execute runs the CLI
func Execute() {
	err := NewRootCmd().Execute()
	if err == nil {
		os.Exit(ExitSuccess)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var exit *exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	os.Exit(ExitError)
}
