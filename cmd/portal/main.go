package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/diplomatch/portal/internal/api"
	"github.com/diplomatch/portal/internal/api/handler"
	"github.com/diplomatch/portal/internal/core/ports"
	"github.com/diplomatch/portal/internal/core/service"
	"github.com/diplomatch/portal/internal/infrastructure/apiclient"
	mongodb "github.com/diplomatch/portal/internal/infrastructure/db/mongo"
	redisdb "github.com/diplomatch/portal/internal/infrastructure/db/redis"
	"github.com/diplomatch/portal/internal/infrastructure/store"
	"github.com/diplomatch/portal/internal/infrastructure/token"
	"github.com/diplomatch/portal/internal/pkg/config"
	"github.com/diplomatch/portal/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

type kvStore interface {
	ports.KeyValueStore
	ports.Pinger
}

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "portal",
	})

	if cfg.IsDevelopment() {
		figure.NewFigure("DiploMatch", "cybermedium", true).Print()
		fmt.Println()
	}

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("portal stopped")
	}
	log.Info().Msg("portal stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	client := apiclient.New(apiclient.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, logger.With(log, "apiclient"))

	nav := handler.NewPendingNavigator()
	session := service.NewSessionService(ctx, client, kv, nav, token.NewInspector(), logger.With(log, "session"))
	guard := service.NewGuard(session, logger.With(log, "guard"),
		service.WithProfileCompletion(cfg.RequireProfile))

	if err := session.RestoreUser(ctx); err != nil {
		log.Warn().Err(err).Msg("persisted session could not be restored")
	}

	e := api.NewRouter(api.Dependencies{
		Session:   session,
		Guard:     guard,
		Navigator: nav,
		Checks:    map[string]ports.Pinger{"store": kv, "api": client},
		Log:       logger.With(log, "http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Backend).Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("echo.Start: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("echo.Shutdown: %w", err)
	}
	return nil
}

// openStore builds the KeyValueStore selected by STORE_BACKEND. The returned
// func releases any connection it holds.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (kvStore, func(), error) {
	noop := func() {}

	switch cfg.Store.Backend {
	case config.BackendMemory:
		return store.NewMemory(), noop, nil

	case config.BackendRedis:
		client, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Warn().Err(err).Msg("redis close")
			}
		}
		return redisdb.NewKVStore(client, cfg.Store.Namespace, cfg.Redis.TTL), closeFn, nil

	case config.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect")
			}
		}
		kv := mongodb.NewKVStore(db, cfg.Store.Namespace)
		if err := kv.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, err
		}
		return kv, closeFn, nil

	default:
		kv, err := store.NewFile(cfg.Store.Path, cfg.Store.Secret)
		if err != nil {
			return nil, nil, err
		}
		return kv, noop, nil
	}
}
