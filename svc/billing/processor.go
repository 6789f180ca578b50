package billing

import (
	"context"
	"encoding/json"
	"time"
)

// Processor is the payment processor adapter.
type Processor interface {
	// CreateCustomer creates a customer tagged with metadata.userId = userTag.
	CreateCustomer(ctx context.Context, userTag, email string) (Customer, error)
	// ListRecentCustomers returns at most limit customers created at or after since.
	ListRecentCustomers(ctx context.Context, since time.Time, limit int) ([]Customer, error)
	GetPrice(ctx context.Context, priceID string) (Price, error)
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (CheckoutSession, error)
	// GetCheckoutSession returns the processor's JSON for the session verbatim.
	GetCheckoutSession(ctx context.Context, sessionID string) (json.RawMessage, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (PortalSession, error)
	ListActiveSubscriptions(ctx context.Context, customerID string, limit int) ([]Subscription, error)
	// ConstructEvent verifies signature over the unparsed payload and decodes
	// the event.
	ConstructEvent(payload []byte, signature string) (Event, error)
}

// Event is a verified webhook event.
type Event struct {
	ID      string
	Type    string
	Created time.Time
	Payload EventPayload
}

// EventPayload is one of CheckoutCompleted, SubscriptionChanged,
// SubscriptionDeleted, InvoicePaid, InvoiceFailed or Unhandled.
type EventPayload interface {
	eventPayload()
}

// CheckoutCompleted is sent when a customer finishes a checkout session.
type CheckoutCompleted struct {
	SessionID      string
	CustomerID     string
	SubscriptionID string
	UserID         string
	PriceID        string
}

// SubscriptionChanged covers subscription creation and updates.
type SubscriptionChanged struct {
	Subscription Subscription
}

// SubscriptionDeleted is sent when a subscription ends.
type SubscriptionDeleted struct {
	Subscription Subscription
}

// InvoicePaid is sent when a subscription invoice is paid.
type InvoicePaid struct {
	InvoiceID      string
	CustomerID     string
	SubscriptionID string
}

// InvoiceFailed is sent when a subscription invoice payment fails.
type InvoiceFailed struct {
	InvoiceID      string
	CustomerID     string
	SubscriptionID string
}

// Unhandled is any other event type. It is acknowledged and recorded.
type Unhandled struct{}

func (CheckoutCompleted) eventPayload()   {}
func (SubscriptionChanged) eventPayload() {}
func (SubscriptionDeleted) eventPayload() {}
func (InvoicePaid) eventPayload()         {}
func (InvoiceFailed) eventPayload()       {}
func (Unhandled) eventPayload()           {}

// Event types dispatched by the webhook handler.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionCreated = "customer.subscription.created"
	EventSubscriptionUpdated = "customer.subscription.updated"
	EventSubscriptionDeleted = "customer.subscription.deleted"
	EventInvoicePaid         = "invoice.payment_succeeded"
	EventInvoiceFailed       = "invoice.payment_failed"
)
