package optimizer

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"github.com/dmitrymomot/promptkit/pkg/logger"
	"github.com/dmitrymomot/promptkit/pkg/metrics"
)

// Service optimizes prompts, falling back to Mock when the provider fails.
type Service struct {
	completer Completer
	log       *slog.Logger
	metrics   *metrics.Metrics
}

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

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

// NewService creates a Service. A nil completer yields mock results only.
func NewService(completer Completer, opts ...ServiceOption) *Service {
	s := &Service{
		completer: completer,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("optimizer"))
	return s
}

// Configured reports whether a provider is wired.
func (s *Service) Configured() bool {
	return s.completer != nil
}

// Optimize validates the input and returns the optimized prompt. Only
// validation errors are returned; provider failures produce a degraded
// result.
func (s *Service) Optimize(ctx context.Context, prompt, strategy string) (Result, error) {
	st, err := Validate(prompt, strategy)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	res, err := s.fromProvider(ctx, prompt, st)
	if err != nil {
		reason := failureReason(err)
		s.metrics.ObserveProviderFailure(reason)
		if !errors.Is(err, ErrNotConfigured) {
			s.log.WarnContext(ctx, "provider failed, returning template result",
				logger.Strategy(string(st)),
				slog.String("reason", reason),
				logger.Duration(time.Since(start)),
				logger.Error(err),
			)
		}
		res = Mock(prompt, st)
	}

	s.metrics.ObserveOptimization(string(st), res.Degraded)
	return res, nil
}

func (s *Service) fromProvider(ctx context.Context, prompt string, st Strategy) (Result, error) {
	if s.completer == nil {
		return Result{}, ErrNotConfigured
	}
	reply, err := s.completer.Complete(ctx, st.SystemPrompt(), userMessage(prompt))
	if err != nil {
		return Result{}, err
	}
	return parseReply(reply)
}

func failureReason(err error) string {
	var netErr net.Error
	switch {
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrRateLimitExceeded):
		return "rate_limited"
	case errors.Is(err, ErrContextLengthExceeded):
		return "context_length"
	case errors.Is(err, ErrUpstreamStatus):
		return "upstream_status"
	case errors.Is(err, ErrMalformedReply), errors.Is(err, ErrEmptyReply):
		return "malformed_reply"
	default:
		return "transport"
	}
}
