package billing

import (
	"context"
	"errors"

	"github.com/dmitrymomot/promptkit/pkg/logger"
)

// Webhook outcomes reported to metrics.
const (
	resultApplied   = "applied"
	resultDuplicate = "duplicate"
	resultStale     = "stale"
	resultIgnored   = "ignored"
	resultFailed    = "failed"
	resultRejected  = "rejected"
)

const (
	paymentSucceeded = "succeeded"
	paymentFailed    = "failed"
)

// HandleWebhook verifies a processor webhook over the unparsed payload and
// applies it. Each event id is applied at most once; redeliveries are
// acknowledged with Duplicate set.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (WebhookResult, error) {
	if s.processor == nil {
		return WebhookResult{}, ErrNotConfigured
	}

	ev, err := s.processor.ConstructEvent(payload, signature)
	switch {
	case errors.Is(err, ErrWebhookNotConfigured):
		return WebhookResult{}, err
	case errors.Is(err, ErrInvalidSignature):
		s.metrics.ObserveWebhook("unknown", resultRejected)
		s.log.WarnContext(ctx, "webhook signature verification failed", logger.Error(err))
		return WebhookResult{}, err
	case err != nil:
		s.metrics.ObserveWebhook("unknown", resultFailed)
		return WebhookResult{}, errors.Join(ErrWebhookFailed, err)
	}

	log := s.log.With(logger.EventID(ev.ID), logger.EventType(ev.Type))

	var (
		affected []string
		result   string
	)
	duplicate, err := s.store.WithEvent(ctx, ev.ID, ev.Type, func(tx Tx) error {
		var err error
		affected, result, err = s.apply(ctx, tx, ev)
		return err
	})
	if err != nil {
		s.metrics.ObserveWebhook(ev.Type, resultFailed)
		log.ErrorContext(ctx, "failed to apply webhook event", logger.Error(err))
		return WebhookResult{}, errors.Join(ErrWebhookFailed, err)
	}
	if duplicate {
		s.metrics.ObserveWebhook(ev.Type, resultDuplicate)
		log.InfoContext(ctx, "duplicate webhook event acknowledged")
		return WebhookResult{Received: true, Type: ev.Type, Duplicate: true}, nil
	}

	for _, userID := range affected {
		s.InvalidateEntitlement(ctx, userID)
	}
	s.metrics.ObserveWebhook(ev.Type, result)
	log.InfoContext(ctx, "webhook event processed", "result", result)

	return WebhookResult{Received: true, Type: ev.Type}, nil
}

// apply runs inside the event transaction. It returns the users whose
// entitlement changed and the outcome label.
func (s *Service) apply(ctx context.Context, tx Tx, ev Event) ([]string, string, error) {
	switch p := ev.Payload.(type) {
	case CheckoutCompleted:
		return s.applyCheckout(ctx, tx, ev, p)
	case SubscriptionChanged:
		return s.applySubscription(ctx, tx, ev, p.Subscription)
	case SubscriptionDeleted:
		sub := p.Subscription
		sub.Status = StatusCanceled
		return s.applySubscription(ctx, tx, ev, sub)
	case InvoicePaid:
		return s.applyPayment(ctx, tx, ev, p.SubscriptionID, paymentSucceeded)
	case InvoiceFailed:
		return s.applyPayment(ctx, tx, ev, p.SubscriptionID, paymentFailed)
	default:
		return nil, resultIgnored, nil
	}
}

func (s *Service) applyCheckout(ctx context.Context, tx Tx, ev Event, p CheckoutCompleted) ([]string, string, error) {
	userID := parseUserTag(p.UserID)
	if userID == "" || p.CustomerID == "" {
		s.log.WarnContext(ctx, "checkout completion without user or customer",
			logger.EventID(ev.ID), logger.CustomerID(p.CustomerID))
		return nil, resultIgnored, nil
	}

	if err := s.link(ctx, tx, userID, p.CustomerID); err != nil {
		return nil, "", err
	}
	if p.SubscriptionID == "" {
		return []string{userID}, resultApplied, nil
	}

	_, err := tx.Subscription(ctx, p.SubscriptionID)
	if err == nil {
		// a subscription event already recorded the authoritative state
		return []string{userID}, resultApplied, nil
	}
	if !errors.Is(err, ErrSubscriptionNotFound) {
		return nil, "", err
	}

	sub := Subscription{
		ID:          p.SubscriptionID,
		CustomerID:  p.CustomerID,
		UserID:      userID,
		Status:      StatusActive,
		PriceID:     p.PriceID,
		Created:     ev.Created,
		LastEventAt: ev.Created,
		UpdatedAt:   s.now().UTC(),
	}
	if err := tx.SaveSubscription(ctx, sub); err != nil {
		return nil, "", err
	}
	return []string{userID}, resultApplied, nil
}

func (s *Service) applySubscription(ctx context.Context, tx Tx, ev Event, sub Subscription) ([]string, string, error) {
	existing, err := tx.Subscription(ctx, sub.ID)
	found := err == nil
	if err != nil && !errors.Is(err, ErrSubscriptionNotFound) {
		return nil, "", err
	}
	if found && existing.LastEventAt.After(ev.Created) {
		s.log.InfoContext(ctx, "stale subscription event skipped",
			logger.EventID(ev.ID), logger.SubscriptionID(sub.ID))
		return nil, resultStale, nil
	}

	userID := parseUserTag(sub.UserID)
	if userID == "" && sub.CustomerID != "" {
		id, err := tx.UserID(ctx, sub.CustomerID)
		if err != nil && !errors.Is(err, ErrCustomerNotFound) {
			return nil, "", err
		}
		userID = id
	}
	if userID == "" && found {
		userID = existing.UserID
	}
	if userID != "" && sub.CustomerID != "" {
		if err := s.link(ctx, tx, userID, sub.CustomerID); err != nil {
			return nil, "", err
		}
	}

	sub.UserID = userID
	sub.LastEventAt = ev.Created
	sub.UpdatedAt = s.now().UTC()
	if found {
		sub.LastPaymentStatus = existing.LastPaymentStatus
		if sub.Created.IsZero() {
			sub.Created = existing.Created
		}
	}
	if err := tx.SaveSubscription(ctx, sub); err != nil {
		return nil, "", err
	}

	if userID == "" {
		s.log.WarnContext(ctx, "subscription stored without a known user",
			logger.EventID(ev.ID), logger.SubscriptionID(sub.ID), logger.CustomerID(sub.CustomerID))
		return nil, resultApplied, nil
	}
	return []string{userID}, resultApplied, nil
}

func (s *Service) applyPayment(ctx context.Context, tx Tx, ev Event, subscriptionID, status string) ([]string, string, error) {
	if subscriptionID == "" {
		return nil, resultIgnored, nil
	}
	sub, err := tx.Subscription(ctx, subscriptionID)
	if errors.Is(err, ErrSubscriptionNotFound) {
		return nil, resultIgnored, nil
	}
	if err != nil {
		return nil, "", err
	}
	if err := tx.RecordPayment(ctx, subscriptionID, status, ev.Created); err != nil {
		return nil, "", err
	}
	if sub.UserID == "" {
		return nil, resultApplied, nil
	}
	return []string{sub.UserID}, resultApplied, nil
}

// link stores userID -> customerID. A customer owned by another user is
// logged and left alone.
func (s *Service) link(ctx context.Context, tx Tx, userID, customerID string) error {
	stored, err := tx.LinkCustomer(ctx, userID, customerID)
	switch {
	case errors.Is(err, ErrCustomerConflict):
		s.log.WarnContext(ctx, "customer already linked to another user",
			logger.UserID(userID), logger.CustomerID(customerID))
		return nil
	case err != nil:
		return err
	case stored != customerID:
		s.log.WarnContext(ctx, "user already linked to another customer",
			logger.UserID(userID), logger.CustomerID(stored))
	}
	return nil
}
