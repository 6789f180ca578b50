package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/promptkit/handler"
	"github.com/dmitrymomot/promptkit/modules/api"
	"github.com/dmitrymomot/promptkit/pkg/logger"
	"github.com/dmitrymomot/promptkit/svc/billing"
	"github.com/dmitrymomot/promptkit/svc/identity"
)

const (
	testSecretKey     = "sk_test_123"
	testWebhookSecret = "whsec_test_123"
	testJWTSecret     = "super-secret-jwt-token-with-at-least-32-characters"
)

type mockProcessor struct {
	mock.Mock
	verifier *billing.StripeProcessor
}

func newMockProcessor(t *testing.T, webhookSecret string) *mockProcessor {
	t.Helper()
	v, err := billing.NewStripeProcessor(testSecretKey, webhookSecret, nil)
	require.NoError(t, err)
	return &mockProcessor{verifier: v}
}

func (m *mockProcessor) CreateCustomer(ctx context.Context, userTag, email string) (billing.Customer, error) {
	args := m.Called(ctx, userTag, email)
	return args.Get(0).(billing.Customer), args.Error(1)
}

func (m *mockProcessor) ListRecentCustomers(ctx context.Context, since time.Time, limit int) ([]billing.Customer, error) {
	args := m.Called(ctx, since, limit)
	return args.Get(0).([]billing.Customer), args.Error(1)
}

func (m *mockProcessor) GetPrice(ctx context.Context, priceID string) (billing.Price, error) {
	args := m.Called(ctx, priceID)
	return args.Get(0).(billing.Price), args.Error(1)
}

func (m *mockProcessor) CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (billing.CheckoutSession, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(billing.CheckoutSession), args.Error(1)
}

func (m *mockProcessor) GetCheckoutSession(ctx context.Context, sessionID string) (json.RawMessage, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *mockProcessor) CreatePortalSession(ctx context.Context, customerID, returnURL string) (billing.PortalSession, error) {
	args := m.Called(ctx, customerID, returnURL)
	return args.Get(0).(billing.PortalSession), args.Error(1)
}

func (m *mockProcessor) ListActiveSubscriptions(ctx context.Context, customerID string, limit int) ([]billing.Subscription, error) {
	args := m.Called(ctx, customerID, limit)
	return args.Get(0).([]billing.Subscription), args.Error(1)
}

func (m *mockProcessor) ConstructEvent(payload []byte, signature string) (billing.Event, error) {
	return m.verifier.ConstructEvent(payload, signature)
}

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

const providerReply = `{"optimizedPrompt":"Write a 500-word blog post about Go generics for intermediate developers.",` +
	`"scores":{"clarity":9,"specificity":8,"effectiveness":9},` +
	`"analysis":{"improvements":"Added audience and length.","issues":["No audience"]},` +
	`"alternatives":[{"prompt":"Explain Go generics with examples.","reason":"Shorter"}]}`

func newBillingService(t *testing.T, proc billing.Processor, store billing.Store) *billing.Service {
	t.Helper()
	if store == nil {
		store = billing.NewMemoryStore()
	}
	svc, err := billing.NewService(context.Background(), billing.Config{LegacyLookup: true}, proc, store,
		billing.WithLogger(logger.Discard()))
	require.NoError(t, err)
	return svc
}

func newIdentityService(t *testing.T) *identity.Service {
	t.Helper()
	v, err := identity.NewVerifier(identity.Config{JWTSecret: testJWTSecret})
	require.NoError(t, err)
	return identity.NewService(nil, v, identity.WithLogger(logger.Discard()))
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": userID + "@example.com",
		"aud":   "authenticated",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func newRouter(opts api.Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	return api.Router(opts)
}

type request struct {
	method  string
	target  string
	body    string
	headers map[string]string
}

func do(t *testing.T, h http.Handler, req request) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if req.body != "" {
		body = strings.NewReader(req.body)
	}
	r := httptest.NewRequest(req.method, req.target, body)
	if req.body != "" {
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorBody {
	t.Helper()
	var body handler.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}
