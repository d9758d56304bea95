// Command quiniela runs the point-of-sale service: the HTTP API, the draw
// scheduler and the configured storage backend.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	redisclient "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/agenciazeta/quiniela/internal/api"
	"github.com/agenciazeta/quiniela/internal/api/httpserver"
	"github.com/agenciazeta/quiniela/internal/app"
	"github.com/agenciazeta/quiniela/internal/app/storage/memory"
	"github.com/agenciazeta/quiniela/internal/app/storage/postgres"
	redisstore "github.com/agenciazeta/quiniela/internal/app/storage/redis"
	"github.com/agenciazeta/quiniela/internal/config"
	"github.com/agenciazeta/quiniela/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}).WithField("component", "main")

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatalf("service exited")
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	stores, cleanup, err := buildStores(cfg, log)
	if err != nil {
		return fmt.Errorf("configure stores: %w", err)
	}
	defer cleanup()

	application, err := app.New(stores, app.Options{
		Draws:            cfg.ScheduleDraws(),
		Lotteries:        cfg.Agency.Lotteries,
		DrawNumberBase:   cfg.Agency.DrawNumberBase,
		PayoutMultiplier: cfg.Agency.PayoutMultiplier,
		TickSpec:         cfg.Agency.TickSpec,
	}, log)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("start application: %w", err)
	}

	router := api.NewRouter(application, log.WithField("component", "api"), api.Options{
		RateLimit: cfg.Server.RateLimit,
		RateBurst: cfg.Server.RateBurst,
	})
	srv := httpserver.New(httpserver.Config{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, log.WithField("component", "httpserver"), router)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http server shutdown failed")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("application stop failed")
	}
	return nil
}

// buildStores selects the persistence backend. The returned cleanup closes
// any underlying connections.
func buildStores(cfg *config.Config, log *logger.Logger) (app.Stores, func(), error) {
	noop := func() {}

	switch cfg.Storage.Backend {
	case "memory":
		mem := memory.New()
		return app.Stores{Tickets: mem, Results: mem}, noop, nil

	case "postgres":
		db, err := openDatabase(cfg.Database)
		if err != nil {
			return app.Stores{}, noop, err
		}
		if cfg.Database.Migrate {
			if err := postgres.Migrate(db); err != nil {
				db.Close()
				return app.Stores{}, noop, fmt.Errorf("run migrations: %w", err)
			}
		}
		store := postgres.New(db)
		log.Info("using postgres storage")
		return app.Stores{Tickets: store, Results: store}, func() { db.Close() }, nil

	case "redis":
		client := redisclient.NewClient(&redisclient.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return app.Stores{}, noop, fmt.Errorf("connect redis: %w", err)
		}
		store := redisstore.New(client)
		log.WithField("addr", cfg.Redis.Addr).Info("using redis storage")
		return app.Stores{Tickets: store, Results: store}, func() { client.Close() }, nil

	default:
		return app.Stores{}, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func openDatabase(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
