package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/promptkit/modules/api"
	"github.com/dmitrymomot/promptkit/pkg/config"
	"github.com/dmitrymomot/promptkit/pkg/httpserver"
	"github.com/dmitrymomot/promptkit/pkg/logger"
	"github.com/dmitrymomot/promptkit/pkg/metrics"
	"github.com/dmitrymomot/promptkit/pkg/ratelimiter"
	"github.com/dmitrymomot/promptkit/svc/favorites"
	"github.com/dmitrymomot/promptkit/svc/identity"
	"github.com/dmitrymomot/promptkit/svc/optimizer"
)

func newServeCmd(log func() *slog.Logger) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), log(), migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply database migrations before serving")
	return cmd
}

func serve(ctx context.Context, log *slog.Logger, migrate bool) error {
	in, err := openInfra(ctx, log)
	if err != nil {
		return err
	}
	defer in.Close()

	if migrate {
		if err := in.migrate(ctx); err != nil {
			return err
		}
	}

	var (
		apiCfg    api.Config
		serverCfg httpserver.Config
		limitCfg  ratelimiter.Config
		optCfg    optimizer.Config
		idCfg     identity.Config
	)
	if err := errors.Join(
		config.Load(&apiCfg),
		config.Load(&serverCfg),
		config.Load(&limitCfg),
		config.Load(&optCfg),
		config.Load(&idCfg),
	); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	billingSvc, err := in.billingService(ctx, m)
	if err != nil {
		return err
	}

	var completer optimizer.Completer
	if c, err := optimizer.NewChatClient(optCfg); err == nil {
		completer = c
	} else {
		log.WarnContext(ctx, "DEEPSEEK_API_KEY not set, serving mock optimizations")
	}
	optimizerSvc := optimizer.NewService(completer, optimizer.WithLogger(log), optimizer.WithMetrics(m))

	var favoritesStore favorites.Store
	if in.pool != nil {
		favoritesStore = favorites.NewPGStore(in.pool)
	}
	favoritesSvc := favorites.NewService(favoritesStore, favorites.WithLogger(log))

	identitySvc, err := newIdentityService(idCfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = identitySvc.Close() }()
	go logSessionEvents(ctx, identitySvc, log)

	bucket, closeStore, err := newRateLimiter(in, limitCfg)
	if err != nil {
		return err
	}
	defer closeStore()

	router := api.Router(api.Options{
		Config:      apiCfg,
		Optimizer:   optimizerSvc,
		Billing:     billingSvc,
		Favorites:   favoritesSvc,
		Identity:    identitySvc,
		RateLimit:   bucket,
		Metrics:     m,
		Gatherer:    reg,
		ReadyChecks: in.readyChecks(),
		Logger:      log,
	})

	return httpserver.New(serverCfg, httpserver.WithLogger(log)).Run(ctx, router)
}

// newIdentityService leaves out the parts whose credentials are missing:
// without a client the auth proxy endpoints report not configured, without a
// verifier every request is anonymous.
func newIdentityService(cfg identity.Config, log *slog.Logger) (*identity.Service, error) {
	client, err := identity.NewClient(cfg)
	if err != nil && !errors.Is(err, identity.ErrNotConfigured) {
		return nil, err
	}
	verifier, err := identity.NewVerifier(cfg)
	if err != nil && !errors.Is(err, identity.ErrNotConfigured) {
		return nil, err
	}
	if verifier == nil {
		log.Warn("SUPABASE_JWT_SECRET not set, bearer tokens are not verified")
	}
	return identity.NewService(client, verifier, identity.WithLogger(log)), nil
}

func logSessionEvents(ctx context.Context, svc *identity.Service, log *slog.Logger) {
	sub := svc.Subscribe(ctx)
	defer func() { _ = sub.Close() }()
	for ev := range sub.C() {
		log.InfoContext(ctx, "session event",
			slog.String("type", string(ev.Type)), logger.UserID(ev.UserID))
	}
}

func newRateLimiter(in *infra, cfg ratelimiter.Config) (*ratelimiter.Bucket, func(), error) {
	if in.redis != nil {
		bucket, err := ratelimiter.NewBucket(ratelimiter.NewRedisStore(in.redis, "ratelimit:"), cfg)
		return bucket, func() {}, err
	}
	store := ratelimiter.NewMemoryStore()
	bucket, err := ratelimiter.NewBucket(store, cfg)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return bucket, store.Close, nil
}
