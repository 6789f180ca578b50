package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/promptkit/handler"
	"github.com/dmitrymomot/promptkit/pkg/binder"
	"github.com/dmitrymomot/promptkit/pkg/clientip"
	"github.com/dmitrymomot/promptkit/pkg/httpserver"
	"github.com/dmitrymomot/promptkit/pkg/metrics"
	"github.com/dmitrymomot/promptkit/pkg/ratelimiter"
	"github.com/dmitrymomot/promptkit/pkg/requestid"
	"github.com/dmitrymomot/promptkit/svc/billing"
	"github.com/dmitrymomot/promptkit/svc/favorites"
	"github.com/dmitrymomot/promptkit/svc/identity"
	"github.com/dmitrymomot/promptkit/svc/optimizer"
)

const readinessTimeout = 5 * time.Second

// Options wires the services behind the routes. Only Billing may be nil, in
// which case billing routes answer "not configured"; the other services fall
// back to instances without backends.
type Options struct {
	Config    Config
	Optimizer *optimizer.Service
	Billing   *billing.Service
	Favorites *favorites.Service
	Identity  *identity.Service
	// RateLimit guards /optimize per client IP. Nil disables the limit.
	RateLimit *ratelimiter.Bucket
	Metrics   *metrics.Metrics
	// Gatherer backs GET /metrics; the default gatherer when nil.
	Gatherer    prometheus.Gatherer
	ReadyChecks []httpserver.Check
	Logger      *slog.Logger
}

type server struct {
	cfg       Config
	optimizer *optimizer.Service
	billing   *billing.Service
	favorites *favorites.Service
	identity  *identity.Service
	log       *slog.Logger
	errors    handler.ErrorHandler[handler.Context]
}

// Router builds the HTTP interface.
func Router(opts Options) chi.Router {
	s := newServer(opts)
	deny := denyJSON(s.log)

	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		clientip.Middleware,
		requestLogger(s.log),
		recoverer(s.log),
		opts.Metrics.Middleware,
		cors,
		identity.Middleware(s.identity.Verifier(), false, identity.WithDenyHandler(deny)),
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = handler.JSONError(handler.ErrNotFound).Render(w, r)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = handler.JSONError(handler.ErrMethodNotAllowed).Render(w, r)
	})

	r.Get("/health/live", httpserver.HealthCheckHandler(s.log, 0))
	r.Get("/health/ready", httpserver.HealthCheckHandler(s.log, readinessTimeout, opts.ReadyChecks...))
	r.Handle("/metrics", metrics.Handler(opts.Gatherer))

	requireAuth := identity.Require(identity.WithDenyHandler(deny))

	r.Group(func(r chi.Router) {
		if opts.RateLimit != nil {
			r.Use(ratelimiter.Middleware(opts.RateLimit, clientip.Key, ratelimiter.WithDenyHandler(rateLimited(s.log))))
		}
		if s.cfg.RequireAuth {
			r.Use(requireAuth)
		}
		r.Post("/optimize", wrap(s, s.optimize, jsonBody))
	})

	r.Post("/create-checkout-session", wrap(s, s.createCheckoutSession, jsonBody))
	r.Get("/checkout-session", wrap(s, s.getCheckoutSession, query))
	r.Post("/create-portal-session", wrap(s, s.createPortalSession, jsonBody))
	r.Get("/subscription", wrap(s, s.getSubscription, query))
	r.Post("/webhook", wrap(s, s.webhook, rawBody, header))

	r.Route("/favorites", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/", wrap(s, s.listFavorites))
		r.Post("/", wrap(s, s.addFavorite, jsonBody))
		r.Delete("/", wrap(s, s.removeFavoriteByContent, query))
		r.Get("/status", wrap(s, s.favoriteStatus, query))
		r.Patch("/{id}", wrap(s, s.renameFavorite, path, jsonBody))
		r.Delete("/{id}", wrap(s, s.deleteFavorite, path))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", wrap(s, s.signUp, jsonBody))
		r.Post("/signin", wrap(s, s.signIn, jsonBody))
		r.Post("/resend", wrap(s, s.resendVerification, jsonBody))
		r.With(requireAuth).Post("/signout", wrap(s, s.signOut))
		r.With(requireAuth).Get("/session", wrap(s, s.session))
	})

	return r
}

func newServer(opts Options) *server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	cfg := opts.Config
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	s := &server{
		cfg:       cfg,
		optimizer: opts.Optimizer,
		billing:   opts.Billing,
		favorites: opts.Favorites,
		identity:  opts.Identity,
		log:       log,
		errors:    handler.NewErrorHandler[handler.Context](log, classify),
	}
	if s.optimizer == nil {
		s.optimizer = optimizer.NewService(nil, optimizer.WithLogger(log), optimizer.WithMetrics(opts.Metrics))
	}
	if s.favorites == nil {
		s.favorites = favorites.NewService(nil, favorites.WithLogger(log))
	}
	if s.identity == nil {
		s.identity = identity.NewService(nil, nil, identity.WithLogger(log))
	}
	return s
}

var (
	jsonBody handler.Bind = binder.JSON()
	query    handler.Bind = binder.Query()
	header   handler.Bind = binder.Header()
	rawBody  handler.Bind = binder.Raw(binder.DefaultMaxBodySize)
	path     handler.Bind = binder.Path(chi.URLParam)
)

func wrap[R any](s *server, h handler.HandlerFunc[handler.Context, R], binders ...handler.Bind) http.HandlerFunc {
	return handler.Wrap(h,
		handler.WithBinders[handler.Context, R](binders...),
		handler.WithErrorHandler[handler.Context, R](s.errors),
	)
}

func rateLimited(log *slog.Logger) ratelimiter.DenyHandler {
	deny := denyJSON(log)
	return func(w http.ResponseWriter, r *http.Request, _ *ratelimiter.Result, err error) {
		if err != nil {
			deny(w, r, err)
			return
		}
		deny(w, r, handler.ErrTooManyRequests)
	}
}
