package billing

import "errors"

var (
	ErrMissingPriceID    = errors.New("billing: missing price id")
	ErrMissingUserID     = errors.New("billing: missing user id")
	ErrMissingCustomerID = errors.New("billing: missing customer id")
	ErrMissingSessionID  = errors.New("billing: missing session id")

	ErrNotConfigured        = errors.New("billing: payment processor not configured")
	ErrWebhookNotConfigured = errors.New("billing: webhook secret not configured")

	ErrInvalidPrice           = errors.New("billing: invalid price id")
	ErrCustomerCreationFailed = errors.New("billing: failed to create customer")
	ErrSessionCreationFailed  = errors.New("billing: failed to create checkout session")
	ErrSessionLookupFailed    = errors.New("billing: failed to retrieve checkout session")
	ErrPortalCreationFailed   = errors.New("billing: failed to create portal session")
	ErrLookupFailed           = errors.New("billing: failed to fetch subscription")
	ErrInvalidSignature       = errors.New("billing: webhook signature verification failed")
	ErrWebhookFailed          = errors.New("billing: failed to apply webhook event")
	ErrQuotaExceeded          = errors.New("billing: monthly optimization quota exceeded")

	// ErrInvalidRequest marks processor rejections of the request itself
	// (unknown ids, bad parameters), as opposed to outages.
	ErrInvalidRequest = errors.New("billing: processor rejected request")

	ErrCustomerNotFound     = errors.New("billing: customer mapping not found")
	ErrCustomerConflict     = errors.New("billing: customer already linked to another user")
	ErrSubscriptionNotFound = errors.New("billing: subscription not found")
	ErrStore                = errors.New("billing: store failure")

	ErrFailedToLoadPlans        = errors.New("billing: failed to load plans")
	ErrInvalidPlanConfiguration = errors.New("billing: invalid plan configuration")
)
