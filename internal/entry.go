// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/ansuz/internal/analyzer"
	"github.com/starford/ansuz/internal/cache"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/pipeline"
	"github.com/starford/ansuz/internal/server"
	"github.com/starford/ansuz/internal/sitegen"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/storage"
	"github.com/starford/ansuz/internal/suggest"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{mode: "run"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("mode", app.mode),
		slog.String("docs_path", cfg.Docs.Path),
		slog.String("site_url", cfg.Site.URL),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Docs.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	var cacheStore cache.Store
	if cfg.Cache.Path != "" {
		db, err := cache.Open(cfg.Cache.Path)
		if err != nil {
			return fmt.Errorf("init cache: %w", err)
		}
		defer db.Close()
		cacheStore = db
	}

	switch app.mode {
	case "run":
		return app.runAll(ctx, store, cacheStore, logger)
	case "enhance":
		_, err := app.runEnhance(ctx, store, cacheStore, logger)
		return err
	case "analyze":
		return app.runAnalyze(store, logger)
	case "sitemap":
		return app.runSitemap(logger)
	case "robots":
		return app.runRobots(logger)
	case "serve":
		return app.runServe(ctx, store, cacheStore, logger)
	case "mcp":
		return app.runMCP(store, logger)
	default:
		return fmt.Errorf("unknown mode: %q", app.mode)
	}
}

// runAll performs the full optimization pass: robots.txt, sitemap index,
// metadata enhancement and the SEO report.
func (app *application) runAll(ctx context.Context, store storage.Provider, cacheStore cache.Store, logger *slog.Logger) error {
	if app.config.Robots.Enabled {
		if err := app.runRobots(logger); err != nil {
			return err
		}
	}
	if app.config.Sitemap.Enabled {
		if err := app.runSitemap(logger); err != nil {
			return err
		}
	}
	if _, err := app.runEnhance(ctx, store, cacheStore, logger); err != nil {
		return err
	}
	return app.runAnalyze(store, logger)
}

// staticSuggester builds the rule-based fallback from the docs config.
func (app *application) staticSuggester() *suggest.Static {
	cfg := app.config
	return suggest.NewStatic(suggest.StaticOptions{
		Author:            cfg.Site.Author,
		DirectoryKeywords: cfg.Docs.DirectoryKeywords,
		BaseKeywords:      cfg.Docs.BaseKeywords,
		GlossaryDirs:      cfg.Docs.GlossaryDirs,
	})
}

// remoteSuggester builds the LLM client, or nil when disabled or not
// configured. A missing API key downgrades to the static fallback with a
// warning rather than failing the run.
func (app *application) remoteSuggester(logger *slog.Logger) suggest.Suggester {
	cfg := app.config.Suggest
	if !cfg.Enabled || app.noSuggest {
		return nil
	}
	key := cfg.APIKey()
	if key == "" {
		logger.Warn("remote suggester disabled: API key env is empty",
			slog.String("env", cfg.APIKeyEnv))
		return nil
	}
	client, err := suggest.NewClient(suggest.ClientOptions{
		Endpoint:    cfg.Endpoint,
		Model:       cfg.Model,
		APIKey:      key,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		MaxAttempts: cfg.MaxAttempts,
	})
	if err != nil {
		logger.Warn("remote suggester disabled", slog.String("error", err.Error()))
		return nil
	}
	return client
}

func (app *application) runEnhance(ctx context.Context, store storage.Provider, cacheStore cache.Store, logger *slog.Logger) (pipeline.Summary, error) {
	p, err := pipeline.New(store, app.remoteSuggester(logger), app.staticSuggester(), cacheStore, logger, pipeline.Options{
		Preview: app.preview,
		Workers: app.config.App.Workers,
	})
	if err != nil {
		return pipeline.Summary{}, err
	}
	sum, err := p.Run(ctx, app.target)
	if err != nil {
		return pipeline.Summary{}, err
	}
	path, err := pipeline.WriteReport(sum, app.config.Docs.OutputPath)
	if err != nil {
		return pipeline.Summary{}, err
	}
	logger.Info("enhance report written", slog.String("path", path))
	return sum, nil
}

func (app *application) runAnalyze(store storage.Provider, logger *slog.Logger) error {
	docs, err := store.List(app.target)
	if err != nil {
		return fmt.Errorf("analyze: list documents: %w", err)
	}
	a := analyzer.New(app.config.Analyzer)
	for _, doc := range docs {
		data, err := store.Read(doc.Path)
		if err != nil {
			return fmt.Errorf("analyze: read %s: %w", doc.Path, err)
		}
		a.AnalyzeDocument(doc.Path, data)
	}
	report := a.Report()
	if err := report.Save(app.config.Docs.OutputPath); err != nil {
		return err
	}
	logger.Info("analysis finished",
		slog.Int("documents", report.Documents),
		slog.Int("issues", report.TotalIssues),
		slog.String("output", app.config.Docs.OutputPath))
	return nil
}

func (app *application) runSitemap(logger *slog.Logger) error {
	cfg := app.config
	content, err := sitegen.SitemapIndex(cfg.Site.URL, cfg.Site.Locales, time.Now())
	if err != nil {
		return err
	}
	path, err := sitegen.WriteFile(cfg.Docs.StaticPath, "sitemap_index.xml", content)
	if err != nil {
		return err
	}
	logger.Info("sitemap index written", slog.String("path", path))
	return nil
}

func (app *application) runRobots(logger *slog.Logger) error {
	cfg := app.config
	content := sitegen.Robots(cfg.Site.URL, sitegen.RobotsOptions{
		AllowAll:      cfg.Robots.AllowAll,
		DisallowPaths: cfg.Robots.DisallowPaths,
		SitemapPath:   "sitemap_index.xml",
	})
	path, err := sitegen.WriteFile(cfg.Docs.StaticPath, "robots.txt", content)
	if err != nil {
		return err
	}
	logger.Info("robots.txt written", slog.String("path", path))
	return nil
}

func (app *application) runMCP(store storage.Provider, logger *slog.Logger) error {
	srv := mcpserver.New(store, app.remoteSuggester(logger), app.staticSuggester(), app.config.Analyzer)
	logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}

func (app *application) runServe(ctx context.Context, store storage.Provider, cacheStore cache.Store, logger *slog.Logger) error {
	cfg := app.config

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := server.NewService(store, cacheStore, cfg.Analyzer)
	if _, err := svc.Analyze(); err != nil {
		logger.Warn("initial analysis failed", slog.String("error", err.Error()))
	}

	apiRouter := server.NewRouter(svc, cfg.Serve.Auth.AuthEnabled(), cfg.Serve.Auth.Token, broker)

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
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.Serve.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the docs tree and push live updates.
	g.Go(func() error {
		return server.Watch(gCtx, svc, store.Root(), 300*time.Millisecond, logger, func(path string) {
			broker.PublishDocEvent(path)
		})
	})

	g.Go(func() error {
		logger.Info("report server starting", slog.String("address", cfg.Serve.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("context cancelled, initiating shutdown")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server stopped")
	return nil
}
