package billing

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/promptkit/pkg/cache"
	"github.com/dmitrymomot/promptkit/pkg/metrics"
	"github.com/dmitrymomot/promptkit/svc/usage"
)

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// WithMeter sets the usage meter. Defaults to an in-memory meter.
func WithMeter(m usage.Meter) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.meter = m
		}
	}
}

// WithCache sets the entitlement cache. Without it entitlements are kept
// in process memory. Either way nothing is cached when
// Config.EntitlementTTL is not positive.
func WithCache(c cache.Store) ServiceOption {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithPlanSource overrides the plan table. By default plans come from
// Config.PlansFile or DefaultPlans.
func WithPlanSource(src PlanSource) ServiceOption {
	return func(s *Service) {
		if src != nil {
			s.planSource = src
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
