package billing

import (
	"context"
	"time"
)

// Queries is the read/write surface shared by Store and its transactions.
type Queries interface {
	// CustomerID returns the customer linked to userID or ErrCustomerNotFound.
	CustomerID(ctx context.Context, userID string) (string, error)
	// UserID returns the user linked to customerID or ErrCustomerNotFound.
	UserID(ctx context.Context, customerID string) (string, error)
	// LinkCustomer stores userID -> customerID unless a mapping exists. It
	// returns the customer id that is stored after the call. A customer that is
	// already linked to another user yields ErrCustomerConflict.
	LinkCustomer(ctx context.Context, userID, customerID string) (string, error)
	// Subscription returns the stored subscription or ErrSubscriptionNotFound.
	Subscription(ctx context.Context, id string) (Subscription, error)
	SaveSubscription(ctx context.Context, sub Subscription) error
	// RecordPayment sets the last payment status of a stored subscription.
	// Unknown subscriptions are ignored.
	RecordPayment(ctx context.Context, subscriptionID, status string, at time.Time) error
}

// Tx is a Queries bound to a webhook transaction.
type Tx interface {
	Queries
}

// Store persists customer mappings, subscription state and processed
// webhook event ids.
type Store interface {
	Queries
	// WithEvent records eventID and runs fn in the same transaction. When the
	// event id was already recorded fn is not called and duplicate is true.
	WithEvent(ctx context.Context, eventID, eventType string, fn func(tx Tx) error) (duplicate bool, err error)
}
