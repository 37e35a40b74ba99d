// Command rapm computes APM or RAPM rating tables from possession data.
//
// Configuration comes from defaults, an optional YAML file and RAPM_*
// environment variables; -config, -mode and -season override them.
// With serve.addr set, finished tables stay available over HTTP until the
// process is interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/okian/courtside/internal/adapters/http/api"
	"github.com/okian/courtside/internal/adapters/http/openapi"
	"github.com/okian/courtside/internal/adapters/names"
	"github.com/okian/courtside/internal/adapters/repository"
	"github.com/okian/courtside/internal/adapters/sink"
	"github.com/okian/courtside/internal/adapters/source"
	app "github.com/okian/courtside/internal/app"
	"github.com/okian/courtside/internal/config"
	"github.com/okian/courtside/internal/domain/failure"
	"github.com/okian/courtside/pkg/logger"
	"github.com/okian/courtside/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	pushTimeout       = 10 * time.Second
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type flags struct {
	configPath string
	mode       string
	seasons    string
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags
	fs := flag.NewFlagSet("rapm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "YAML config file (default $"+config.PathEnvVar+")")
	fs.StringVar(&f.mode, "mode", "", "rating mode: player or group")
	fs.StringVar(&f.seasons, "season", "", "comma separated seasons to rate")
	return f, fs.Parse(args)
}

// loadConfig layers flag overrides on top of the loaded configuration.
func loadConfig(ctx context.Context, f flags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(ctx, f.configPath)
	} else {
		cfg, err = config.Load(ctx)
	}
	if err != nil {
		return nil, err
	}
	if f.mode != "" {
		cfg.Mode = f.mode
	}
	if f.seasons != "" {
		cfg.Seasons = nil
		for _, s := range strings.Split(f.seasons, ",") {
			if s = strings.TrimSpace(s); s != "" {
				cfg.Seasons = append(cfg.Seasons, s)
			}
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	cfg, err := loadConfig(ctx, f)
	if err != nil {
		fmt.Fprintln(stderr, "failed to load config:", err)
		return exitUsage
	}

	if err := logger.Init(
		logger.WithFormat(cfg.LogFormat),
		logger.WithLevel(cfg.LogLevel),
		logger.WithOutput(stderr),
	); err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return exitUsage
	}
	log := logger.Get().Named("rapm")

	svc, cleanup, store, err := build(ctx, cfg, stdout)
	if err != nil {
		log.Error(ctx, "setup failed", logger.Error(err))
		return exitFailure
	}
	defer cleanup()

	jobs := app.PlanJobs(cfg.Mode, cfg.Seasons, cfg.PoolSeasons)
	results, runErr := svc.RunBatch(ctx, jobs)
	for _, res := range results {
		if res == nil {
			continue
		}
		log.Info(ctx, "table ready",
			logger.String("table", res.Job.Name),
			logger.Int("rows", res.Table.Len()),
			logger.Float64("alpha", res.Model.Alpha),
		)
	}
	if runErr != nil {
		stage, _ := failure.StageOf(runErr)
		log.Error(ctx, "batch failed", logger.String("stage", string(stage)), logger.Error(runErr))
	}

	if cfg.Metrics.PushURL != "" {
		pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
		if err := metrics.Push(pushCtx, cfg.Metrics.PushURL, cfg.Metrics.Job); err != nil {
			log.Warn(ctx, "metrics push failed", logger.Error(err))
		}
		cancel()
	}

	if store != nil && ctx.Err() == nil {
		if err := serve(ctx, cfg, store, log); err != nil {
			log.Error(ctx, "server failed", logger.Error(err))
			return exitFailure
		}
	}

	if runErr != nil {
		return exitFailure
	}
	return exitOK
}

// build wires the service collaborators cfg asks for. The returned store is
// nil unless tables are to be served.
func build(ctx context.Context, cfg *config.Config, stdout io.Writer) (*app.Service, func(), *repository.SnapshotStore, error) {
	opts, err := app.OptionsFromConfig(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	src, err := source.Open(ctx, cfg.Source)
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() { _ = src.Close() }
	opts = append(opts, app.WithSource(src), app.WithLogger(logger.Get().Named("service")))

	if cfg.NamesPath != "" {
		dir, err := names.Load(cfg.NamesPath)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		opts = append(opts, app.WithLabeler(dir.Label))
	}

	for _, s := range sink.FromConfig(cfg.Output) {
		if fs, ok := s.(*sink.FileSink); ok && cfg.Output.Path == sink.Stdout {
			fs.SetStdout(stdout)
		}
		opts = append(opts, app.WithSink(s))
	}

	var store *repository.SnapshotStore
	if cfg.Serve.Addr != "" {
		store = repository.NewSnapshotStore()
		opts = append(opts, app.WithPublisher(store))
	}
	return app.New(opts...), cleanup, store, nil
}

// serve exposes stored tables until ctx is done.
func serve(ctx context.Context, cfg *config.Config, store *repository.SnapshotStore, log logger.Logger) error {
	mux := http.NewServeMux()
	openapi.Register(mux)
	api.NewServer(store, api.WithMaxLimit(cfg.Serve.MaxLimit)).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Serve.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Serve.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}
