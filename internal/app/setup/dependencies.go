package setup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-payments-service/internal/config"
	"github.com/LavaJover/shvark-payments-service/internal/domain"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/cache"
	publisher "github.com/LavaJover/shvark-payments-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/logger"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/metrics"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/migrate"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/notifier"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/postgres/repository"
	"github.com/LavaJover/shvark-payments-service/internal/infrastructure/providers"
	"gorm.io/gorm"
)

type Dependencies struct {
	Config    *config.PaymentsConfig
	Logger    *slog.Logger
	DB        *gorm.DB
	Store     domain.Store
	Publisher domain.EventPublisher
	Cache     domain.ResponseCache
	Metrics   *metrics.PaymentMetrics
	Adapters  *providers.Registry

	closers []io.Closer
}

func InitializeDependencies(ctx context.Context, cfg *config.PaymentsConfig) (*Dependencies, error) {
	log, logCloser, err := logger.New(cfg.LogConfig)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	deps := &Dependencies{
		Config:  cfg,
		Logger:  log,
		Metrics: metrics.NewPaymentMetrics(),
		closers: []io.Closer{logCloser},
	}

	deps.DB = postgres.MustInitDB(cfg)
	if !cfg.PaymentsDB.AutoMigrate {
		if err := migrate.RunMigrations(deps.DB, cfg.PaymentsDB.MigrationsPath, log); err != nil {
			deps.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	deps.Store = repository.NewDefaultStore(deps.DB)

	if deps.Publisher, err = deps.initPublisher(cfg.KafkaService); err != nil {
		deps.Close()
		return nil, fmt.Errorf("event publisher: %w", err)
	}
	if cfg.OrderCallbacks.Enabled {
		callbacks := notifier.NewCallbackPublisher(deps.Publisher, notifier.Options{
			URLs:        cfg.OrderCallbacks.URLs,
			Secret:      cfg.OrderCallbacks.Secret,
			Timeout:     cfg.OrderCallbacks.Timeout,
			MaxAttempts: cfg.OrderCallbacks.MaxAttempts,
		}, log.With("component", "callbacks"))
		deps.Publisher = callbacks
		deps.closers = append(deps.closers, closerFunc(func() error { callbacks.Wait(); return nil }))
	}
	if deps.Cache, err = deps.initCache(ctx, cfg.RedisCache); err != nil {
		deps.Close()
		return nil, fmt.Errorf("response cache: %w", err)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	deps.Adapters = providers.NewDefaultRegistry(client, log, deps.Metrics)

	if err := SeedProviders(ctx, deps.Store, cfg.Providers, log); err != nil {
		deps.Close()
		return nil, fmt.Errorf("provider configs: %w", err)
	}
	return deps, nil
}

func (d *Dependencies) initPublisher(cfg config.KafkaService) (domain.EventPublisher, error) {
	if !cfg.Enabled {
		d.Logger.Info("kafka disabled, payment events are only stored")
		return publisher.NopPublisher{}, nil
	}
	kp, err := publisher.NewKafkaPublisher(publisher.KafkaConfig{
		Brokers:    cfg.Brokers,
		Username:   cfg.Username,
		Password:   cfg.Password,
		Mechanism:  cfg.SASLMechanism,
		TLSEnabled: cfg.TLS,
	})
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, kp)
	return publisher.NewEventPublisher(kp, cfg.EventsTopic, cfg.SecurityTopic, d.Logger), nil
}

func (d *Dependencies) initCache(ctx context.Context, cfg config.RedisCache) (domain.ResponseCache, error) {
	if !cfg.Enabled {
		return cache.NopResponseCache{}, nil
	}
	client, err := cache.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	d.closers = append(d.closers, client)
	return cache.NewRedisResponseCache(client, cfg.TTL), nil
}

// Close releases resources in reverse order of acquisition.
func (d *Dependencies) Close() {
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i].Close(); err != nil && d.Logger != nil {
			d.Logger.Warn("close failed", "error", err)
		}
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
