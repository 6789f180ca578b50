package billing_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/promptkit/svc/billing"
)

const (
	testSecretKey     = "sk_test_123"
	testWebhookSecret = "whsec_test_123"
)

// fakeProcessor records calls and answers from its fields. Webhook
// verification is delegated to a real StripeProcessor.
type fakeProcessor struct {
	mu sync.Mutex

	calls map[string]int

	customers      []billing.Customer
	listCustomerFn func() ([]billing.Customer, error)
	createFn       func(userTag string) (billing.Customer, error)
	prices         map[string]billing.Price
	priceErr       error
	subscriptions  map[string][]billing.Subscription
	subsErr        error
	sessionErr     error
	portalErr      error
	lastCheckout   billing.CheckoutParams
	lastReturnURL  string
	createdTags    []string
	nextCustomerID int

	verifier *billing.StripeProcessor
}

func newFakeProcessor(t *testing.T) *fakeProcessor {
	t.Helper()
	verifier, err := billing.NewStripeProcessor(testSecretKey, testWebhookSecret, nil)
	require.NoError(t, err)
	return &fakeProcessor{
		calls:         make(map[string]int),
		prices:        map[string]billing.Price{},
		subscriptions: map[string][]billing.Subscription{},
		verifier:      verifier,
	}
}

func (f *fakeProcessor) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeProcessor) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeProcessor) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeProcessor) CreateCustomer(_ context.Context, userTag, email string) (billing.Customer, error) {
	f.count("CreateCustomer")
	f.mu.Lock()
	f.createdTags = append(f.createdTags, userTag)
	fn := f.createFn
	f.nextCustomerID++
	id := fmt.Sprintf("cus_%d", f.nextCustomerID)
	f.mu.Unlock()
	if fn != nil {
		return fn(userTag)
	}
	return billing.Customer{ID: id, Email: email, UserID: userTag}, nil
}

func (f *fakeProcessor) ListRecentCustomers(_ context.Context, _ time.Time, limit int) ([]billing.Customer, error) {
	f.count("ListRecentCustomers")
	if f.listCustomerFn != nil {
		return f.listCustomerFn()
	}
	if len(f.customers) > limit {
		return f.customers[:limit], nil
	}
	return f.customers, nil
}

func (f *fakeProcessor) GetPrice(_ context.Context, priceID string) (billing.Price, error) {
	f.count("GetPrice")
	if f.priceErr != nil {
		return billing.Price{}, f.priceErr
	}
	p, ok := f.prices[priceID]
	if !ok {
		return billing.Price{}, fmt.Errorf("%w: no such price: %s", billing.ErrInvalidRequest, priceID)
	}
	return p, nil
}

func (f *fakeProcessor) CreateCheckoutSession(_ context.Context, params billing.CheckoutParams) (billing.CheckoutSession, error) {
	f.count("CreateCheckoutSession")
	f.mu.Lock()
	f.lastCheckout = params
	f.mu.Unlock()
	if f.sessionErr != nil {
		return billing.CheckoutSession{}, f.sessionErr
	}
	return billing.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/c/pay/cs_test_1"}, nil
}

func (f *fakeProcessor) GetCheckoutSession(_ context.Context, sessionID string) (json.RawMessage, error) {
	f.count("GetCheckoutSession")
	return json.RawMessage(fmt.Sprintf(`{"id":%q,"object":"checkout.session"}`, sessionID)), nil
}

func (f *fakeProcessor) CreatePortalSession(_ context.Context, customerID, returnURL string) (billing.PortalSession, error) {
	f.count("CreatePortalSession")
	f.mu.Lock()
	f.lastReturnURL = returnURL
	f.mu.Unlock()
	if f.portalErr != nil {
		return billing.PortalSession{}, f.portalErr
	}
	return billing.PortalSession{URL: "https://billing.stripe.com/p/session/" + customerID}, nil
}

func (f *fakeProcessor) ListActiveSubscriptions(_ context.Context, customerID string, _ int) ([]billing.Subscription, error) {
	f.count("ListActiveSubscriptions")
	if f.subsErr != nil {
		return nil, f.subsErr
	}
	return f.subscriptions[customerID], nil
}

func (f *fakeProcessor) ConstructEvent(payload []byte, signature string) (billing.Event, error) {
	f.count("ConstructEvent")
	return f.verifier.ConstructEvent(payload, signature)
}

var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func newService(t *testing.T, proc billing.Processor, store billing.Store, opts ...billing.ServiceOption) *billing.Service {
	t.Helper()
	cfg := billing.Config{
		LegacyLookup:   true,
		LookupWindow:   30 * 24 * time.Hour,
		LookupLimit:    100,
		EntitlementTTL: time.Minute,
		PriceCacheSize: 16,
		PriceCacheTTL:  time.Hour,
		BaseURL:        "http://localhost:3001",
	}
	opts = append([]billing.ServiceOption{billing.WithClock(func() time.Time { return fixedNow })}, opts...)
	svc, err := billing.NewService(context.Background(), cfg, proc, store, opts...)
	require.NoError(t, err)
	return svc
}
