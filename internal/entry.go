// Package internal provides the application initialization and runtime logic
// behind each command.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/docmeta/internal/api"
	"github.com/starford/docmeta/internal/apperr"
	"github.com/starford/docmeta/internal/checksum"
	"github.com/starford/docmeta/internal/history"
	"github.com/starford/docmeta/internal/mcpserver"
	"github.com/starford/docmeta/internal/report"
	"github.com/starford/docmeta/internal/scan"
	"github.com/starford/docmeta/internal/schema"
	"github.com/starford/docmeta/internal/sse"
	"github.com/starford/docmeta/internal/storage"
	"github.com/starford/docmeta/internal/validator"
	"github.com/starford/docmeta/internal/watch"
)

// components are the pieces every command builds from the configuration.
type components struct {
	store     *storage.FS
	validator *validator.Validator
	scanner   *scan.Scanner
}

func newApplication(opts []Option) (*application, error) {
	app := &application{stdout: os.Stdout, stderr: os.Stderr}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// logger installs a structured JSON logger on stderr; stdout carries reports.
func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.stderr, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func (a *application) loadValidator() (*validator.Validator, error) {
	tbl, err := schema.Load(a.config.Schema.Path)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return validator.New(tbl, validator.WithRootSegment(a.config.Docs.RootSegment)), nil
}

// build constructs storage, validator and scanner. A missing root fails
// here, before anything is scanned.
func (a *application) build(logger *slog.Logger) (*components, error) {
	v, err := a.loadValidator()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewFS(a.config.Docs.Root, a.config.Docs.Exclude...)
	if err != nil {
		return nil, err
	}
	s := scan.New(store, v,
		scan.WithWorkers(a.config.Docs.Workers),
		scan.WithLogger(logger),
	)
	return &components{store: store, validator: v, scanner: s}, nil
}

func (a *application) openHistory() (*history.DB, error) {
	db, err := history.Open(a.config.History.Path)
	if err != nil {
		return nil, fmt.Errorf("init history: %w", err)
	}
	return db, nil
}

// Categories returns the category names of the configured table.
func Categories(opts ...Option) ([]string, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	v, err := app.loadValidator()
	if err != nil {
		return nil, err
	}
	return v.Table().Names(), nil
}

// Validate scans the document tree and writes the report to stdout. It
// returns apperr.ErrValidationFailed when any document has errors. When
// record is set, or history is enabled, the run is stored.
func Validate(ctx context.Context, record bool, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	c, err := app.build(logger)
	if err != nil {
		return err
	}

	rep, err := c.scanner.Run(ctx)
	if err != nil {
		return err
	}
	if err := rep.Write(app.stdout, cfg.Report.Format); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if record || cfg.History.Enabled {
		db, err := app.openHistory()
		if err != nil {
			return err
		}
		defer db.Close()
		id, err := db.Record(rep)
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		logger.Info("run recorded", slog.String("id", id), slog.String("path", cfg.History.Path))
	}

	if rep.Failed() {
		return apperr.ErrValidationFailed
	}
	return nil
}

// Template prints the front-matter skeleton for category. With write set, the
// skeleton is also written to target under the document root; an existing
// file is never overwritten.
func Template(category, target string, write bool, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	v, err := app.loadValidator()
	if err != nil {
		return err
	}
	tmpl, err := v.Template(category)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(app.stdout, tmpl); err != nil {
		return err
	}

	if !write {
		return nil
	}
	if target == "" {
		return fmt.Errorf("template: --write needs a file path")
	}
	store, err := storage.NewFS(app.config.Docs.Root, app.config.Docs.Exclude...)
	if err != nil {
		return err
	}
	if store.Exists(target) {
		return fmt.Errorf("template: %s: %w", target, apperr.ErrAlreadyExists)
	}
	if err := store.Write(target, []byte(tmpl)); err != nil {
		return err
	}
	logger.Info("template written", slog.String("path", target), slog.String("category", category))
	return nil
}

// Watch validates the tree once, then revalidates documents as they change
// until ctx is cancelled or a shutdown signal arrives.
func Watch(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	c, err := app.build(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, err := c.scanner.Run(ctx)
	if err != nil {
		return err
	}
	if err := rep.WriteText(app.stdout); err != nil {
		return err
	}

	return watch.Watch(ctx, c.store, c.scanner, logger, func(ev watch.Event) {
		switch ev.Kind {
		case watch.KindRemoved:
			fmt.Fprintf(app.stdout, "removed: %s\n", ev.Path)
		case watch.KindValidated:
			if ev.Result.HasIssues() {
				fmt.Fprint(app.stdout, report.ResultText(*ev.Result))
			} else {
				fmt.Fprintf(app.stdout, "ok: %s (%s)\n", ev.Path, checksum.Short(ev.Result.Checksum))
			}
		}
	})
}

// Serve starts the HTTP API with live revalidation pushed over SSE.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("docs_root", cfg.Docs.Root),
		slog.Bool("history", cfg.History.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := app.build(logger)
	if err != nil {
		return err
	}

	var hist history.Store
	if cfg.History.Enabled {
		db, err := app.openHistory()
		if err != nil {
			return err
		}
		defer db.Close()
		hist = db
	}

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := api.NewService(c.validator, c.scanner, hist)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Revalidate changed documents and push results to SSE clients.
	g.Go(func() error {
		if rep, err := c.scanner.Run(gCtx); err != nil {
			logger.Warn("initial scan failed", slog.String("error", err.Error()))
		} else {
			broker.Seed(rep.Results)
		}
		err := watch.Watch(gCtx, c.store, c.scanner, logger, func(ev watch.Event) {
			switch ev.Kind {
			case watch.KindValidated:
				broker.PublishResult(*ev.Result)
			case watch.KindRemoved:
				broker.PublishRemoved(ev.Path)
			}
		})
		if err != nil {
			logger.Warn("watcher unavailable", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// MCP serves the validator tools over stdio.
func MCP(opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	c, err := app.build(logger)
	if err != nil {
		return err
	}

	logger.Info("MCP server starting", slog.String("docs_root", c.store.Root()))
	return mcpserver.New(c.store, c.validator, c.scanner).ServeStdio()
}
