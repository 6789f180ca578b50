package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/promptkit/pkg/broadcast"
	"github.com/dmitrymomot/promptkit/pkg/logger"
)

// SessionEventType names a session change.
type SessionEventType string

const (
	SignedUp  SessionEventType = "signed_up"
	SignedIn  SessionEventType = "signed_in"
	SignedOut SessionEventType = "signed_out"
)

// SessionEvent is published after a successful session change.
type SessionEvent struct {
	Type   SessionEventType `json:"type"`
	UserID string           `json:"userId"`
	Email  string           `json:"email"`
	At     time.Time        `json:"at"`
}

// Service proxies account operations and publishes session changes.
type Service struct {
	client   *Client
	verifier *Verifier
	events   broadcast.Broadcaster[SessionEvent]
	log      *slog.Logger
	now      func() time.Time
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

// WithBroadcaster replaces the in-memory session event broadcaster.
func WithBroadcaster(b broadcast.Broadcaster[SessionEvent]) ServiceOption {
	return func(s *Service) {
		if b != nil {
			s.events = b
		}
	}
}

// WithClock replaces time.Now for event timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a Service. Either dependency may be nil: without a
// client the account operations fail with ErrNotConfigured, without a
// verifier no token is accepted.
func NewService(client *Client, verifier *Verifier, opts ...ServiceOption) *Service {
	s := &Service{
		client:   client,
		verifier: verifier,
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.events == nil {
		s.events = broadcast.NewMemoryBroadcaster[SessionEvent](16)
	}
	s.log = s.log.With(logger.Component("identity"))
	return s
}

// Verifier returns the token verifier, nil when none is configured.
func (s *Service) Verifier() *Verifier {
	return s.verifier
}

// Subscribe streams session events until ctx is done or the subscriber is
// closed.
func (s *Service) Subscribe(ctx context.Context) broadcast.Subscriber[SessionEvent] {
	return s.events.Subscribe(ctx)
}

// Close ends every subscription.
func (s *Service) Close() error {
	return s.events.Close()
}

func (s *Service) SignUp(ctx context.Context, email, password, redirectTo string) (SignUpResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return SignUpResult{}, ErrMissingCredentials
	}
	if s.client == nil {
		return SignUpResult{}, ErrNotConfigured
	}
	res, err := s.client.SignUp(ctx, email, password, redirectTo)
	if err != nil {
		s.logFailure(ctx, "sign_up", err)
		return SignUpResult{}, err
	}
	s.publish(ctx, SignedUp, res.User)
	return res, nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return Session{}, ErrMissingCredentials
	}
	if s.client == nil {
		return Session{}, ErrNotConfigured
	}
	sess, err := s.client.SignIn(ctx, email, password)
	if err != nil {
		s.logFailure(ctx, "sign_in", err)
		return Session{}, err
	}
	s.publish(ctx, SignedIn, sess.User)
	return sess, nil
}

// SignOut revokes the session of the identity stored in ctx.
func (s *Service) SignOut(ctx context.Context) error {
	id, ok := FromContext(ctx)
	token := TokenFromContext(ctx)
	if !ok || token == "" {
		return ErrMissingToken
	}
	if s.client == nil {
		return ErrNotConfigured
	}
	if err := s.client.SignOut(ctx, token); err != nil {
		s.logFailure(ctx, "sign_out", err)
		return err
	}
	s.publish(ctx, SignedOut, User{ID: id.UserID, Email: id.Email})
	return nil
}

func (s *Service) ResendVerification(ctx context.Context, email, redirectTo string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrMissingEmail
	}
	if s.client == nil {
		return ErrNotConfigured
	}
	if err := s.client.ResendVerification(ctx, email, redirectTo); err != nil {
		s.logFailure(ctx, "resend_verification", err)
		return err
	}
	return nil
}

// CurrentUser returns the account of the identity stored in ctx. Without a
// client the verified token claims are returned.
func (s *Service) CurrentUser(ctx context.Context) (User, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return User{}, ErrMissingToken
	}
	if s.client == nil {
		return User{ID: id.UserID, Email: id.Email}, nil
	}
	u, err := s.client.GetUser(ctx, TokenFromContext(ctx))
	if err != nil {
		s.logFailure(ctx, "get_user", err)
		return User{}, err
	}
	return u, nil
}

func (s *Service) publish(ctx context.Context, typ SessionEventType, u User) {
	ev := SessionEvent{Type: typ, UserID: u.ID, Email: u.Email, At: s.now().UTC()}
	if err := s.events.Broadcast(ctx, ev); err != nil && !errors.Is(err, broadcast.ErrClosed) {
		s.log.WarnContext(ctx, "failed to publish session event", logger.Error(err))
	}
}

func (s *Service) logFailure(ctx context.Context, op string, err error) {
	level := slog.LevelError
	if errors.Is(err, ErrUpstream) {
		level = slog.LevelDebug
	}
	s.log.Log(ctx, level, "auth backend call failed", slog.String("op", op), logger.Error(err))
}
