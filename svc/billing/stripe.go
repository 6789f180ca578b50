package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

const metadataUserID = "userId"

// StripeProcessor implements Processor with stripe-go.
type StripeProcessor struct {
	api           *client.API
	webhookSecret string
}

// NewStripeProcessor creates a processor for secretKey. An empty key returns
// ErrNotConfigured. backends may be nil to use stripe-go defaults.
func NewStripeProcessor(secretKey, webhookSecret string, backends *stripe.Backends) (*StripeProcessor, error) {
	if secretKey == "" {
		return nil, ErrNotConfigured
	}
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeProcessor{api: api, webhookSecret: webhookSecret}, nil
}

func (p *StripeProcessor) CreateCustomer(ctx context.Context, userTag, email string) (Customer, error) {
	params := &stripe.CustomerParams{
		Params:   stripe.Params{Context: ctx},
		Metadata: map[string]string{metadataUserID: userTag},
	}
	if email != "" {
		params.Email = stripe.String(email)
	}
	c, err := p.api.Customers.New(params)
	if err != nil {
		return Customer{}, classifyStripeError(err)
	}
	return toCustomer(c), nil
}

func (p *StripeProcessor) ListRecentCustomers(ctx context.Context, since time.Time, limit int) ([]Customer, error) {
	params := &stripe.CustomerListParams{
		ListParams: stripe.ListParams{
			Context: ctx,
			Limit:   stripe.Int64(int64(min(limit, 100))),
		},
		CreatedRange: &stripe.RangeQueryParams{GreaterThanOrEqual: since.Unix()},
	}

	out := make([]Customer, 0, limit)
	it := p.api.Customers.List(params)
	for len(out) < limit && it.Next() {
		out = append(out, toCustomer(it.Customer()))
	}
	if err := it.Err(); err != nil {
		return nil, classifyStripeError(err)
	}
	return out, nil
}

func (p *StripeProcessor) GetPrice(ctx context.Context, priceID string) (Price, error) {
	pr, err := p.api.Prices.Get(priceID, &stripe.PriceParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return Price{}, classifyStripeError(err)
	}
	return Price{ID: pr.ID, Active: pr.Active}, nil
}

func (p *StripeProcessor) CreateCheckoutSession(ctx context.Context, cp CheckoutParams) (CheckoutSession, error) {
	metadata := map[string]string{metadataUserID: cp.UserID, "priceId": cp.PriceID}
	params := &stripe.CheckoutSessionParams{
		Params:             stripe.Params{Context: ctx},
		Customer:           stripe.String(cp.CustomerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(cp.PriceID), Quantity: stripe.Int64(1)},
		},
		SuccessURL:        stripe.String(cp.SuccessURL),
		CancelURL:         stripe.String(cp.CancelURL),
		ClientReferenceID: stripe.String(cp.UserID),
		Metadata:          metadata,
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{metadataUserID: cp.UserID},
		},
	}
	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return CheckoutSession{}, classifyStripeError(err)
	}
	return CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (p *StripeProcessor) GetCheckoutSession(ctx context.Context, sessionID string) (json.RawMessage, error) {
	s, err := p.api.CheckoutSessions.Get(sessionID, &stripe.CheckoutSessionParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return nil, classifyStripeError(err)
	}
	if s.LastResponse != nil && len(s.LastResponse.RawJSON) > 0 {
		return json.RawMessage(s.LastResponse.RawJSON), nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (p *StripeProcessor) CreatePortalSession(ctx context.Context, customerID, returnURL string) (PortalSession, error) {
	s, err := p.api.BillingPortalSessions.New(&stripe.BillingPortalSessionParams{
		Params:    stripe.Params{Context: ctx},
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	})
	if err != nil {
		return PortalSession{}, classifyStripeError(err)
	}
	return PortalSession{URL: s.URL}, nil
}

func (p *StripeProcessor) ListActiveSubscriptions(ctx context.Context, customerID string, limit int) ([]Subscription, error) {
	params := &stripe.SubscriptionListParams{
		ListParams: stripe.ListParams{
			Context: ctx,
			Limit:   stripe.Int64(int64(limit)),
			Single:  true,
		},
		Customer: stripe.String(customerID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}

	var out []Subscription
	it := p.api.Subscriptions.List(params)
	for it.Next() {
		out = append(out, toSubscription(it.Subscription()))
	}
	if err := it.Err(); err != nil {
		return nil, classifyStripeError(err)
	}
	return out, nil
}

func (p *StripeProcessor) ConstructEvent(payload []byte, signature string) (Event, error) {
	if p.webhookSecret == "" {
		return Event{}, ErrWebhookNotConfigured
	}
	ev, err := webhook.ConstructEventWithOptions(payload, signature, p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return Event{}, errors.Join(ErrInvalidSignature, err)
	}
	return decodeEvent(ev)
}

// decodeEvent turns a verified stripe event into a tagged payload.
func decodeEvent(ev stripe.Event) (Event, error) {
	out := Event{
		ID:      ev.ID,
		Type:    string(ev.Type),
		Created: time.Unix(ev.Created, 0).UTC(),
		Payload: Unhandled{},
	}
	if ev.Data == nil {
		return out, nil
	}
	raw := ev.Data.Raw

	switch out.Type {
	case EventCheckoutCompleted:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(raw, &s); err != nil {
			return out, fmt.Errorf("decode %s: %w", out.Type, err)
		}
		cc := CheckoutCompleted{
			SessionID: s.ID,
			UserID:    s.Metadata[metadataUserID],
			PriceID:   s.Metadata["priceId"],
		}
		if cc.UserID == "" {
			cc.UserID = s.ClientReferenceID
		}
		if s.Customer != nil {
			cc.CustomerID = s.Customer.ID
		}
		if s.Subscription != nil {
			cc.SubscriptionID = s.Subscription.ID
		}
		out.Payload = cc

	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionDeleted:
		var s stripe.Subscription
		if err := json.Unmarshal(raw, &s); err != nil {
			return out, fmt.Errorf("decode %s: %w", out.Type, err)
		}
		sub := toSubscription(&s)
		if out.Type == EventSubscriptionDeleted {
			out.Payload = SubscriptionDeleted{Subscription: sub}
		} else {
			out.Payload = SubscriptionChanged{Subscription: sub}
		}

	case EventInvoicePaid, EventInvoiceFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(raw, &inv); err != nil {
			return out, fmt.Errorf("decode %s: %w", out.Type, err)
		}
		var customerID, subscriptionID string
		if inv.Customer != nil {
			customerID = inv.Customer.ID
		}
		if inv.Subscription != nil {
			subscriptionID = inv.Subscription.ID
		}
		if out.Type == EventInvoicePaid {
			out.Payload = InvoicePaid{InvoiceID: inv.ID, CustomerID: customerID, SubscriptionID: subscriptionID}
		} else {
			out.Payload = InvoiceFailed{InvoiceID: inv.ID, CustomerID: customerID, SubscriptionID: subscriptionID}
		}
	}

	return out, nil
}

func toCustomer(c *stripe.Customer) Customer {
	return Customer{
		ID:      c.ID,
		Email:   c.Email,
		UserID:  c.Metadata[metadataUserID],
		Created: time.Unix(c.Created, 0).UTC(),
	}
}

func toSubscription(s *stripe.Subscription) Subscription {
	sub := Subscription{
		ID:                 s.ID,
		Status:             Status(s.Status),
		UserID:             s.Metadata[metadataUserID],
		Created:            unixTime(s.Created),
		CancelAtPeriodEnd:  s.CancelAtPeriodEnd,
		CurrentPeriodStart: unixTime(s.CurrentPeriodStart),
		CurrentPeriodEnd:   unixTime(s.CurrentPeriodEnd),
	}
	if s.Customer != nil {
		sub.CustomerID = s.Customer.ID
	}
	if s.Items != nil {
		for _, item := range s.Items.Data {
			if item != nil && item.Price != nil {
				sub.PriceID = item.Price.ID
				break
			}
		}
	}
	return sub
}

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

// classifyStripeError marks invalid-request rejections with ErrInvalidRequest.
func classifyStripeError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) && se.Type == stripe.ErrorTypeInvalidRequest {
		return errors.Join(ErrInvalidRequest, err)
	}
	return err
}

// Detail returns the processor's human message carried by err, or the text
// of the underlying cause.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		return se.Msg
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := joined.Unwrap(); len(errs) > 0 {
			return Detail(errs[len(errs)-1])
		}
	}
	return err.Error()
}
