// Command server runs the activity audit manager: it registers the
// listener pipeline, exposes the action ingest and status endpoints, and
// streams accepted events to the configured durable store.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"vigil/internal/activity/manager"
	"vigil/internal/activity/metrics"
	"vigil/internal/activity/ports"
	"vigil/internal/activity/redact"
	"vigil/internal/platform/config"
	"vigil/internal/platform/httpserver"
	"vigil/internal/platform/logger"
	platformredis "vigil/internal/platform/redis"
	"vigil/internal/registry"
	"vigil/internal/settings"
	"vigil/internal/stream/kafka"
	streammemory "vigil/internal/stream/memory"
	"vigil/internal/stream/postgres"
	"vigil/internal/stream/redisstream"
	httptransport "vigil/internal/transport/http"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg := config.FromEnv()
	log := logger.New()
	auditLog := logger.NewAudit()
	activityMetrics := metrics.New()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	settingsProvider := buildSettingsProvider(cfg, redisClient)

	store, cleanup, err := buildEventStore(cfg, redisClient)
	if err != nil {
		return fmt.Errorf("event store: %w", err)
	}
	defer cleanup()

	reg := registry.New(log)
	mgr := manager.New(reg, settingsProvider, store,
		manager.WithLogger(log),
		manager.WithAuditLogger(auditLog),
		manager.WithMetrics(activityMetrics),
		manager.WithSensitiveFields(redact.FieldSet(cfg.RedactedFields)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mgr.Start(ctx); err != nil {
		return fmt.Errorf("start activity manager: %w", err)
	}
	defer mgr.Shutdown(context.Background())

	handler := httptransport.NewHandler(reg, mgr, log)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	log.InfoContext(ctx, "starting vigil",
		"addr", cfg.Addr,
		"stream_backend", cfg.StreamBackend,
	)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// buildSettingsProvider prefers the shared Redis cache; without one the
// settings are pinned from the environment.
func buildSettingsProvider(cfg config.Config, redisClient *platformredis.Client) ports.SettingsProvider {
	if redisClient != nil {
		return settings.NewRedisProvider(redisClient.Client, cfg.SettingsKey)
	}
	return settings.NewMemoryProvider(settings.Settings{
		EnterpriseEdition:      cfg.EnterpriseEdition,
		ActivityListenersUsers: cfg.ListenersUsers,
	})
}

func buildEventStore(cfg config.Config, redisClient *platformredis.Client) (ports.EventStore, func(), error) {
	noop := func() {}
	switch cfg.StreamBackend {
	case "redis":
		if redisClient == nil {
			return nil, noop, errors.New("redis backend selected but VIGIL_REDIS_URL is not set")
		}
		return redisstream.New(redisClient.Client), noop, nil
	case "kafka":
		store, err := kafka.New(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case "postgres":
		db, err := sql.Open("pgx", cfg.Postgres.URL)
		if err != nil {
			return nil, noop, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("ping postgres: %w", err)
		}
		return postgres.New(db), func() { db.Close() }, nil
	case "memory":
		return streammemory.NewStore(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown stream backend %q", cfg.StreamBackend)
	}
}
