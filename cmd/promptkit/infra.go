package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/promptkit/db"
	"github.com/dmitrymomot/promptkit/pkg/cache"
	"github.com/dmitrymomot/promptkit/pkg/config"
	"github.com/dmitrymomot/promptkit/pkg/httpserver"
	"github.com/dmitrymomot/promptkit/pkg/logger"
	"github.com/dmitrymomot/promptkit/pkg/metrics"
	"github.com/dmitrymomot/promptkit/pkg/pg"
	"github.com/dmitrymomot/promptkit/pkg/redis"
	"github.com/dmitrymomot/promptkit/svc/billing"
	"github.com/dmitrymomot/promptkit/svc/usage"
)

// infra holds the optional backing services. A nil pool or client means the
// feature falls back to process memory.
type infra struct {
	pgCfg pg.Config
	pool  *pgxpool.Pool
	redis *goredis.Client
	log   *slog.Logger
}

func openInfra(ctx context.Context, log *slog.Logger) (*infra, error) {
	var (
		pgCfg    pg.Config
		redisCfg redis.Config
	)
	if err := errors.Join(config.Load(&pgCfg), config.Load(&redisCfg)); err != nil {
		return nil, err
	}

	in := &infra{pgCfg: pgCfg, log: log}
	if pgCfg.Enabled() {
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return nil, err
		}
		in.pool = pool
	} else {
		log.WarnContext(ctx, "DATABASE_URL not set, using in-memory stores")
	}

	if redisCfg.Enabled() {
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			in.Close()
			return nil, err
		}
		in.redis = client
	}
	return in, nil
}

func (in *infra) Close() {
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			in.log.Error("failed to close redis client", logger.Error(err))
		}
	}
	if in.pool != nil {
		in.pool.Close()
	}
}

// migrate applies the embedded migrations when a database is configured.
func (in *infra) migrate(ctx context.Context) error {
	if in.pool == nil {
		return pg.ErrEmptyConnectionString
	}
	version, err := pg.Migrate(ctx, in.pool, db.Migrations, in.pgCfg, in.log)
	if err != nil {
		return err
	}
	in.log.InfoContext(ctx, "database migrated", "version", version)
	return nil
}

func (in *infra) readyChecks() []httpserver.Check {
	var checks []httpserver.Check
	if in.pool != nil {
		checks = append(checks, httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(in.pool)})
	}
	if in.redis != nil {
		checks = append(checks, httpserver.Check{Name: "redis", Fn: redis.Healthcheck(in.redis)})
	}
	return checks
}

// billingService wires the processor with the durable store, meter and
// entitlement cache that the infra provides.
func (in *infra) billingService(ctx context.Context, m *metrics.Metrics) (*billing.Service, error) {
	var cfg billing.Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}

	var processor billing.Processor
	if p, err := billing.NewStripeProcessor(cfg.SecretKey, cfg.WebhookSecret, nil); err == nil {
		processor = p
	} else {
		in.log.WarnContext(ctx, "STRIPE_SECRET_KEY not set, billing disabled")
	}

	var store billing.Store = billing.NewMemoryStore()
	opts := []billing.ServiceOption{
		billing.WithLogger(in.log),
		billing.WithMetrics(m),
	}
	if in.pool != nil {
		store = billing.NewPGStore(in.pool)
		opts = append(opts, billing.WithMeter(usage.NewPGMeter(in.pool)))
	}
	if in.redis != nil {
		opts = append(opts, billing.WithCache(cache.NewRedisStore(in.redis, "billing:")))
	}

	return billing.NewService(ctx, cfg, processor, store, opts...)
}
