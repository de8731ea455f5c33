package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"solar-sizer/calculator"
	"solar-sizer/config"
	"solar-sizer/events"
	httpLayer "solar-sizer/http"
	"solar-sizer/repository"
	"solar-sizer/service"
	"solar-sizer/telemetry"
)

const serviceName = "solar-sizer"

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	level, _ := cfg.Level()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	tables, err := cfg.Tables()
	if err != nil {
		return err
	}
	engine, err := calculator.New(tables)
	if err != nil {
		return err
	}

	appRepo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo.Close()
	log.Info("application store ready", "storage", cfg.Storage)

	var sessionStore repository.SessionStore = repository.NewMemorySessionStore(repository.SessionTTL)
	if cfg.RedisAddr != "" {
		rs := repository.NewRedisSessionStore(cfg.RedisAddr, repository.SessionTTL)
		if err := rs.Ping(ctx); err != nil {
			log.Warn("redis unavailable, keeping sessions in memory", "addr", cfg.RedisAddr, "error", err)
			rs.Close()
		} else {
			defer rs.Close()
			sessionStore = rs
		}
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.NATSURL != "" {
		np, err := events.Connect(cfg.NATSURL)
		if err != nil {
			log.Warn("nats unavailable, application events disabled", "url", cfg.NATSURL, "error", err)
		} else {
			defer np.Close()
			publisher = np
		}
	}

	applicationService := service.NewApplicationService(appRepo, publisher, log)
	recommendationService := service.NewRecommendationService(engine, applicationService, log)

	sessions := httpLayer.NewSessions(sessionStore, log, cfg.SecureCookies)
	rateLimiter := httpLayer.NewRateLimiter(cfg.RatePerMinute, cfg.RateBurst)
	defer rateLimiter.Stop()

	if cfg.AdminPassword == "" {
		log.Warn("no admin password set, admin pages are locked")
	}

	handler := httpLayer.NewServer(httpLayer.ServerConfig{
		Calculator:    httpLayer.NewCalculatorHandler(recommendationService, sessions, log),
		Applications:  httpLayer.NewApplicationHandler(applicationService, sessions, log),
		RateLimiter:   rateLimiter,
		AdminUser:     cfg.AdminUser,
		AdminPassword: cfg.AdminPassword,
		ServiceName:   serviceName,
		Log:           log,
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
		log.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("error during server shutdown", "error", err)
	}

	log.Info("server exited")
	return nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openRepository opens the configured application store. The closer releases
// its database connection, if any.
func openRepository(ctx context.Context, cfg config.Config) (repository.ApplicationRepository, io.Closer, error) {
	switch cfg.Storage {
	case config.StorageCSV:
		r, err := repository.NewApplicationRepositoryCSV(cfg.CSVPath)
		return r, nopCloser{}, err
	case config.StorageSQLite:
		r, err := repository.NewSQLiteApplicationRepository(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	case config.StoragePostgres:
		r, err := repository.NewPostgresApplicationRepository(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil
	default:
		return repository.NewApplicationRepositoryMemory(), nopCloser{}, nil
	}
}
