package billing

import "time"

// Customer is a processor customer record.
type Customer struct {
	ID      string
	Email   string
	UserID  string // metadata.userId tag
	Created time.Time
}

// Price is a processor price.
type Price struct {
	ID     string
	Active bool
}

// CheckoutSession is a hosted checkout page.
type CheckoutSession struct {
	ID  string `json:"sessionId"`
	URL string `json:"url"`
}

// PortalSession is a hosted billing portal page.
type PortalSession struct {
	URL string `json:"url"`
}

// Status mirrors processor subscription statuses.
type Status string

const (
	StatusActive            Status = "active"
	StatusTrialing          Status = "trialing"
	StatusPastDue           Status = "past_due"
	StatusCanceled          Status = "canceled"
	StatusUnpaid            Status = "unpaid"
	StatusIncomplete        Status = "incomplete"
	StatusIncompleteExpired Status = "incomplete_expired"
	StatusPaused            Status = "paused"
)

// State collapses Status into what entitlement decisions need.
type State string

const (
	StateNone   State = "none"
	StateActive State = "active"
	StateOther  State = "other"
)

// State maps s onto the entitlement state machine.
func (s Status) State() State {
	switch s {
	case "", StatusCanceled, StatusIncompleteExpired:
		return StateNone
	case StatusActive:
		return StateActive
	default:
		return StateOther
	}
}

// Subscription is the application's view of a processor subscription.
type Subscription struct {
	ID                 string
	CustomerID         string
	UserID             string
	Status             Status
	PriceID            string
	Created            time.Time
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	CancelAtPeriodEnd  bool
	LastPaymentStatus  string
	LastEventAt        time.Time
	UpdatedAt          time.Time
}

// Usage is the quota counter of the current period.
type Usage struct {
	Current int `json:"current"`
	Limit   int `json:"limit"`
}

// SubscriptionView is the JSON shape of a subscription returned to clients.
type SubscriptionView struct {
	ID                 string `json:"id"`
	Status             Status `json:"status"`
	Customer           string `json:"customer"`
	PriceID            string `json:"priceId"`
	Plan               *Plan  `json:"plan"`
	Created            int64  `json:"created"`
	CurrentPeriodStart int64  `json:"currentPeriodStart"`
	CurrentPeriodEnd   int64  `json:"currentPeriodEnd"`
	CancelAtPeriodEnd  bool   `json:"cancelAtPeriodEnd"`
}

// Entitlement answers "what is this user allowed to do right now".
type Entitlement struct {
	Subscription *SubscriptionView `json:"subscription"`
	Usage        Usage             `json:"usage"`
	Customer     *string           `json:"customer"`

	// PeriodStart identifies the usage counter of the current period.
	PeriodStart time.Time `json:"-"`
}

// Remaining returns the optimizations left in the current period.
func (e Entitlement) Remaining() int {
	return max(e.Usage.Limit-e.Usage.Current, 0)
}

// Allowed reports whether an active subscription has quota left.
func (e Entitlement) Allowed() bool {
	return e.Subscription != nil && e.Subscription.Status.State() == StateActive && e.Remaining() > 0
}

// CheckoutRequest holds the inputs of CreateCheckoutSession.
type CheckoutRequest struct {
	PriceID    string
	UserID     string
	Email      string
	SuccessURL string
	CancelURL  string
	// Origin is the caller's base URL, used to derive default redirect URLs.
	Origin string
}

// CheckoutParams is what the processor needs to open a checkout session.
type CheckoutParams struct {
	CustomerID string
	PriceID    string
	UserID     string
	SuccessURL string
	CancelURL  string
}

// PortalRequest holds the inputs of CreatePortalSession.
type PortalRequest struct {
	CustomerID string
	ReturnURL  string
	Origin     string
}

// WebhookResult acknowledges a verified webhook delivery.
type WebhookResult struct {
	Received  bool   `json:"received"`
	Type      string `json:"type"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// BackfillResult reports a customer mapping backfill run.
type BackfillResult struct {
	Scanned int `json:"scanned"`
	Linked  int `json:"linked"`
	Skipped int `json:"skipped"`
}
