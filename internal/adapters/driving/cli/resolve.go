package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/stepref/internal/ap242"
	"github.com/custodia-labs/stepref/internal/core/domain"
	"github.com/custodia-labs/stepref/internal/core/ports/driven"
	"github.com/custodia-labs/stepref/internal/core/ports/driving"
	"github.com/custodia-labs/stepref/internal/core/services"
	"github.com/custodia-labs/stepref/internal/decoders/p21"
	"github.com/custodia-labs/stepref/internal/logger"
	"github.com/custodia-labs/stepref/internal/monitor"
	"github.com/custodia-labs/stepref/internal/policies"
	"github.com/custodia-labs/stepref/internal/report"
	"github.com/custodia-labs/stepref/internal/watch"
)

// resolveOptions holds the flags shared by resolve and retry.
type resolveOptions struct {
	format      string
	detail      bool
	watch       bool
	noLinks     bool
	noSave      bool
	metricsFile string
	natsURL     string
	natsSubject string

	// deferMissing overrides the configured policy.defer_missing.
	deferMissing bool
}

var resolveOpts resolveOptions

var resolveCmd = &cobra.Command{
	Use:   "resolve <file>",
	Short: "Resolve the external references of a master document",
	Long: `Loads the master document, then every document file it references,
recursively, until no reference is left to examine.

References the policy defers stay waiting; with --watch stepref keeps
running and retries them as their files appear. Shape linkages between
loaded documents are discovered afterwards unless --no-links is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	addResolveFlags(resolveCmd, &resolveOpts)
	rootCmd.AddCommand(resolveCmd)
}

func addResolveFlags(cmd *cobra.Command, opts *resolveOptions) {
	flags := cmd.Flags()
	flags.StringVarP(&opts.format, "format", "f", "text", "output format: text, json or yaml")
	flags.BoolVar(&opts.detail, "detail", false, "show locations, document types and versions")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "wait for deferred references to appear")
	flags.BoolVar(&opts.noLinks, "no-links", false, "skip linkage discovery")
	flags.BoolVar(&opts.noSave, "no-save", false, "do not record the run")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	flags.StringVar(&opts.natsURL, "nats", "", "publish loading events to this NATS server")
	flags.StringVar(&opts.natsSubject, "nats-subject", monitor.DefaultSubjectPrefix, "subject prefix for NATS events")
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return resolveAndReport(ctx, cmd, args[0], resolveOpts)
}

func resolveAndReport(ctx context.Context, cmd *cobra.Command, path string, opts resolveOptions) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	out, err := reportOptions(cmd, opts.format, opts.detail)
	if err != nil {
		return err
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	run, err := resolve(ctx, cmd, path, settings, opts)
	if err != nil {
		return err
	}
	if err := report.WriteRun(cmd.OutOrStdout(), run, out); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return fmt.Errorf("resolution interrupted: %w", domain.ErrCancelled)
	}
	return nil
}

// resolve runs one resolution of path and records it.
func resolve(
	ctx context.Context,
	cmd *cobra.Command,
	path string,
	settings *domain.ResolverSettings,
	opts resolveOptions,
) (*domain.Run, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, path, err)
	}
	start := domain.LocationFromPath(abs)
	if settings.Policy.Mechanism != "" {
		mech := settings.Policy.Mechanism
		start.Mechanism = &mech
	}

	if opts.deferMissing {
		settings.Policy.DeferMissing = true
	}
	policy, err := policies.FromSettings(*settings)
	if err != nil {
		return nil, err
	}

	monitors := []driven.ActivityMonitor{monitor.LoggingMonitor{}}
	var metrics *monitor.MetricsMonitor
	if opts.metricsFile != "" {
		metrics = monitor.NewMetricsMonitor()
		monitors = append(monitors, metrics)
	}
	if opts.natsURL != "" {
		events, closeEvents, err := monitor.ConnectEventMonitor(opts.natsURL, opts.natsSubject)
		if err != nil {
			return nil, err
		}
		defer closeEvents()
		monitors = append(monitors, events)
	}

	repo := ap242.NewRepository()
	loader, err := services.NewLoader(services.LoaderConfig{
		Repository: repo,
		Decoder:    p21.NewDecoder(repo),
		Schemas:    settings.Decoder.Schemas,
		Start:      start,
		Monitor:    monitor.Multi(monitors...),
		Policy:     policy,
	})
	if err != nil {
		return nil, err
	}

	startedAt := time.Now()
	logger.Section("Resolving " + start.String())
	if err := loader.Decode(ctx); err != nil && !services.IsCancelled(err) {
		return nil, fmt.Errorf("resolution failed: %w", err)
	}

	if ctx.Err() == nil && (opts.watch || settings.Watch.Enabled) {
		if err := awaitDeferred(ctx, cmd, loader, settings.Watch.Debounce); err != nil {
			return nil, err
		}
	}

	var linkages *domain.LinkageSet
	if !opts.noLinks && ctx.Err() == nil {
		linkages, err = services.NewLinkageFinder(loader, repo).FindAll(ctx)
		if err != nil && !services.IsCancelled(err) {
			return nil, fmt.Errorf("linkage discovery failed: %w", err)
		}
	}

	if metrics != nil {
		if err := metrics.WriteTextfile(opts.metricsFile); err != nil {
			logger.Warn("Failed to write metrics: %v", err)
		}
	}

	var recorder driving.RunService = runService
	if opts.noSave || recorder == nil {
		recorder = services.NewRunService(nil, uuid.NewString)
	}
	// An interrupted resolution is still recorded.
	run, err := recorder.Record(context.WithoutCancel(ctx), loader, linkages, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	return run, nil
}

// awaitDeferred watches for deferred files until none remain or ctx ends.
func awaitDeferred(ctx context.Context, cmd *cobra.Command, loader *services.Loader, debounce time.Duration) error {
	if len(loader.Deferred()) == 0 {
		return nil
	}
	w, err := watch.New(loader, debounce)
	if err != nil {
		return err
	}
	defer func() {
		if err := w.Close(); err != nil {
			logger.Debug("Failed to close watcher: %v", err)
		}
	}()
	w.OnRetry = func(paths []string, err error) {
		if err != nil {
			logger.Warn("Retry after %v failed: %v", paths, err)
			return
		}
		cmd.PrintErrf("Retried %d reference(s), %d still waiting\n", len(paths), len(loader.Deferred()))
	}

	cmd.PrintErrf("Waiting for %d deferred reference(s); press Ctrl-C to stop\n", w.Watching())
	if err := w.Run(ctx); err != nil && !services.IsCancelled(err) {
		return fmt.Errorf("watching deferred references: %w", err)
	}
	return nil
}
