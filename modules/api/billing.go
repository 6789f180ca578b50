package api

import (
	"cmp"
	"errors"

	"github.com/dmitrymomot/promptkit/handler"
	"github.com/dmitrymomot/promptkit/svc/billing"
	"github.com/dmitrymomot/promptkit/svc/identity"
)

type checkoutRequest struct {
	PriceID    string `json:"priceId"`
	UserID     string `json:"userId"`
	Email      string `json:"email"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

func (s *server) createCheckoutSession(ctx handler.Context, req checkoutRequest) handler.Response {
	if s.billing == nil {
		return handler.Fail(billing.ErrNotConfigured)
	}
	if id, ok := identity.FromContext(ctx); ok && req.UserID == "" {
		req.UserID = id.UserID
		req.Email = cmp.Or(req.Email, id.Email)
	}

	session, err := s.billing.CreateCheckoutSession(ctx, billing.CheckoutRequest{
		PriceID:    req.PriceID,
		UserID:     req.UserID,
		Email:      req.Email,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
		Origin:     OriginFromRequest(ctx.Request(), s.cfg.BaseURL),
	})
	switch {
	case errors.Is(err, billing.ErrMissingPriceID), errors.Is(err, billing.ErrMissingUserID):
		return handler.Fail(errCheckoutParams)
	case errors.Is(err, billing.ErrInvalidPrice):
		return handler.Fail(invalidPrice(req.PriceID, err))
	case err != nil:
		return handler.Fail(err)
	}
	return handler.JSON(session)
}

type checkoutSessionQuery struct {
	SessionID string `query:"sessionId"`
}

func (s *server) getCheckoutSession(ctx handler.Context, req checkoutSessionQuery) handler.Response {
	if s.billing == nil {
		return handler.Fail(billing.ErrNotConfigured)
	}
	raw, err := s.billing.GetCheckoutSession(ctx, req.SessionID)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.RawJSON(raw)
}

type portalRequest struct {
	CustomerID string `json:"customerId"`
	ReturnURL  string `json:"returnUrl"`
}

func (s *server) createPortalSession(ctx handler.Context, req portalRequest) handler.Response {
	if s.billing == nil {
		return handler.Fail(billing.ErrNotConfigured)
	}
	session, err := s.billing.CreatePortalSession(ctx, billing.PortalRequest{
		CustomerID: req.CustomerID,
		ReturnURL:  req.ReturnURL,
		Origin:     OriginFromRequest(ctx.Request(), s.cfg.BaseURL),
	})
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(session)
}

type subscriptionQuery struct {
	UserID string `query:"userId"`
}

func (s *server) getSubscription(ctx handler.Context, req subscriptionQuery) handler.Response {
	if s.billing == nil {
		return handler.Fail(billing.ErrNotConfigured)
	}
	if id, ok := identity.FromContext(ctx); ok && req.UserID == "" {
		req.UserID = id.UserID
	}
	ent, err := s.billing.GetSubscription(ctx, req.UserID)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(ent)
}

type webhookRequest struct {
	Payload   []byte `body:"raw"`
	Signature string `header:"Stripe-Signature"`
}

func (s *server) webhook(ctx handler.Context, req webhookRequest) handler.Response {
	if s.billing == nil {
		return handler.Fail(billing.ErrNotConfigured)
	}
	res, err := s.billing.HandleWebhook(ctx, req.Payload, req.Signature)
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(res)
}
