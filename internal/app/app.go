package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vadimbarashkov/url-shortener/internal/auth"
	"github.com/vadimbarashkov/url-shortener/internal/cache"
	"github.com/vadimbarashkov/url-shortener/internal/config"
	"github.com/vadimbarashkov/url-shortener/internal/database/memory"
	"github.com/vadimbarashkov/url-shortener/internal/metrics"
	"github.com/vadimbarashkov/url-shortener/internal/service"
	"github.com/vadimbarashkov/url-shortener/internal/shortcode"
	"github.com/vadimbarashkov/url-shortener/pkg/postgres"
	"golang.org/x/sync/errgroup"

	myhttp "github.com/vadimbarashkov/url-shortener/internal/api/http"
	pgstore "github.com/vadimbarashkov/url-shortener/internal/database/postgres"
)

func Run(ctx context.Context, cfg *config.Config, logger *httplog.Logger) error {
	const op = "app.Run"

	repo, closeRepo, err := newLinkRepository(ctx, cfg, logger.Logger)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer closeRepo()

	authn, err := auth.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("%s: failed to create authenticator: %w", op, err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	linkSvc := service.NewLinkService(repo, shortcode.NewGenerator(cfg.ShortCodeLength), m)
	texts := service.NewTextProcessor(linkSvc, cfg.BaseURL, logger.Logger, m)
	redirects := service.NewRedirector(linkSvc)

	r := myhttp.NewRouter(logger, linkSvc, texts, redirects, authn, myhttp.WithMetrics(m, reg))

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        r,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		logger.Info("starting server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down server")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}

// newLinkRepository builds the configured store, wrapped in the resolve cache
// when enabled. The returned func releases its resources.
func newLinkRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (service.LinkRepository, func(), error) {
	var (
		repo    service.LinkRepository
		closers []func()
	)

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, links are lost on restart")
		repo = memory.NewLinkRepository()
	default:
		db, err := postgres.New(
			ctx,
			cfg.Postgres.DSN(),
			postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
			postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
			postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
			postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
			postgres.WithConnectRetries(cfg.Postgres.ConnectAttempts, cfg.Postgres.ConnectRetryDelay),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, func() { db.Close() })

		version, err := postgres.RunMigrations(cfg.Postgres.MigrationsPath, cfg.Postgres.DSN())
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		logger.Info("database schema is up to date", slog.Uint64("version", uint64(version)))

		repo = pgstore.NewLinkRepository(db)
	}

	if cfg.Cache.Enabled {
		c, err := cache.New(repo, cache.Options{
			MaxItems: cfg.Cache.MaxItems,
			TTL:      cfg.Cache.TTL,
		})
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to create cache: %w", err)
		}
		closers = append(closers, c.Close)

		repo = c
	}

	return repo, closeAll, nil
}
