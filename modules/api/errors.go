package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrymomot/promptkit/handler"
	"github.com/dmitrymomot/promptkit/pkg/binder"
	"github.com/dmitrymomot/promptkit/svc/billing"
	"github.com/dmitrymomot/promptkit/svc/favorites"
	"github.com/dmitrymomot/promptkit/svc/identity"
	"github.com/dmitrymomot/promptkit/svc/optimizer"
)

var (
	errCheckoutParams   = handler.NewHTTPError(http.StatusBadRequest, "missing_parameters", "Missing required parameters: priceId or userId")
	errPortalParams     = handler.NewHTTPError(http.StatusBadRequest, "missing_parameters", "Missing required parameter: customerId")
	errSessionIDMissing = handler.NewHTTPError(http.StatusBadRequest, "missing_parameters", "Session ID is required")
	errUserIDMissing    = handler.NewHTTPError(http.StatusBadRequest, "missing_parameters", "User ID is required")
	errQuotaExceeded    = handler.NewHTTPError(http.StatusTooManyRequests, "quota_exceeded", "Monthly optimization quota exceeded. Please upgrade your plan.")
	errOptimizeFailed   = handler.NewHTTPError(http.StatusInternalServerError, "optimization_failed", "Optimization failed")
)

// rule maps every error matching target to an HTTP error. detail, when set,
// appends the cause's text to the message.
type rule struct {
	target  error
	status  int
	tag     string
	message string
	detail  func(err error) string
}

var rules = []rule{
	{target: binder.ErrUnsupportedMediaType, status: http.StatusUnsupportedMediaType, tag: "unsupported_media_type", message: "Content-Type must be application/json"},
	{target: binder.ErrBodyTooLarge, status: http.StatusRequestEntityTooLarge, tag: "body_too_large", message: "Request body is too large"},
	{target: binder.ErrInvalidJSON, status: http.StatusBadRequest, tag: "invalid_json", message: "Request body is not valid JSON"},
	{target: binder.ErrInvalidQuery, status: http.StatusBadRequest, tag: "invalid_query", message: "Invalid query parameters"},

	{target: optimizer.ErrMissingPrompt, status: http.StatusBadRequest, tag: "missing_prompt", message: "Please provide a prompt to optimize"},
	{target: optimizer.ErrPromptTooLong, status: http.StatusBadRequest, tag: "prompt_too_long", message: "Prompt must be less than 2000 characters"},
	{target: optimizer.ErrInvalidStrategy, status: http.StatusBadRequest, tag: "invalid_strategy", message: "Available strategies: comprehensive, clarity, specificity, creativity"},

	{target: billing.ErrMissingPriceID, status: http.StatusBadRequest, tag: "missing_parameters", message: errCheckoutParams.Message},
	{target: billing.ErrMissingUserID, status: http.StatusBadRequest, tag: "missing_parameters", message: errUserIDMissing.Message},
	{target: billing.ErrMissingCustomerID, status: http.StatusBadRequest, tag: "missing_parameters", message: errPortalParams.Message},
	{target: billing.ErrMissingSessionID, status: http.StatusBadRequest, tag: "missing_parameters", message: errSessionIDMissing.Message},
	{target: billing.ErrNotConfigured, status: http.StatusInternalServerError, tag: "not_configured", message: "Please configure STRIPE_SECRET_KEY environment variable"},
	{target: billing.ErrWebhookNotConfigured, status: http.StatusBadRequest, tag: "webhook_not_configured", message: "Missing webhook secret"},
	{target: billing.ErrInvalidSignature, status: http.StatusBadRequest, tag: "invalid_signature", message: "Webhook signature verification failed: ", detail: billing.Detail},
	{target: billing.ErrWebhookFailed, status: http.StatusInternalServerError, tag: "webhook_failed", message: "Failed to process webhook event"},
	{target: billing.ErrCustomerCreationFailed, status: http.StatusInternalServerError, tag: "customer_creation_failed", message: "Failed to create customer: ", detail: billing.Detail},
	{target: billing.ErrSessionCreationFailed, status: http.StatusInternalServerError, tag: "checkout_failed", message: "Failed to create payment session: ", detail: billing.Detail},
	{target: billing.ErrSessionLookupFailed, status: http.StatusInternalServerError, tag: "session_lookup_failed", message: "Failed to retrieve checkout session"},
	{target: billing.ErrPortalCreationFailed, status: http.StatusInternalServerError, tag: "portal_failed", message: "Failed to create customer portal session: ", detail: billing.Detail},
	{target: billing.ErrQuotaExceeded, status: http.StatusTooManyRequests, tag: "quota_exceeded", message: errQuotaExceeded.Message},
	{target: billing.ErrLookupFailed, status: http.StatusInternalServerError, tag: "subscription_lookup_failed", message: "Failed to fetch subscription"},

	{target: favorites.ErrMissingField, status: http.StatusBadRequest, tag: "missing_fields", message: "Missing required fields", detail: fieldList},
	{target: favorites.ErrInvalidID, status: http.StatusBadRequest, tag: "invalid_id", message: "Invalid favorite id"},
	{target: favorites.ErrNotFound, status: http.StatusNotFound, tag: "not_found", message: "Favorite not found"},
	{target: favorites.ErrSchemaNotProvisioned, status: http.StatusServiceUnavailable, tag: "schema_not_provisioned", message: "Favorites are not available. Please run the database migrations."},
	{target: favorites.ErrStore, status: http.StatusInternalServerError, tag: "store_error", message: "Failed to access favorites"},

	{target: identity.ErrMissingCredentials, status: http.StatusBadRequest, tag: "missing_parameters", message: "Email and password are required"},
	{target: identity.ErrMissingEmail, status: http.StatusBadRequest, tag: "missing_parameters", message: "Email is required"},
	{target: identity.ErrMissingToken, status: http.StatusUnauthorized, tag: "unauthorized", message: "Authentication required"},
	{target: identity.ErrInvalidToken, status: http.StatusUnauthorized, tag: "invalid_token", message: "Invalid or expired access token"},
	{target: identity.ErrNotConfigured, status: http.StatusInternalServerError, tag: "not_configured", message: "Please configure SUPABASE_URL and SUPABASE_ANON_KEY environment variables"},
	{target: identity.ErrUpstream, status: http.StatusBadRequest, tag: "auth_rejected", detail: upstreamMessage},
	{target: identity.ErrUnavailable, status: http.StatusBadGateway, tag: "auth_unavailable", message: "Authentication service is unavailable"},
}

// classify is the error table of the whole HTTP surface.
func classify(err error) handler.HTTPError {
	for _, r := range rules {
		if !errors.Is(err, r.target) {
			continue
		}
		msg := r.message
		if r.detail != nil {
			msg += r.detail(err)
		}
		return handler.NewHTTPError(r.status, r.tag, msg)
	}
	return handler.ErrInternal
}

// invalidPrice names the rejected price in the message.
func invalidPrice(priceID string, err error) handler.HTTPError {
	return handler.NewHTTPError(http.StatusBadRequest, "invalid_price", fmt.Sprintf(
		"Price ID %q does not exist. Please check if the price ID in Stripe Dashboard is correct. Error details: %s",
		priceID, billing.Detail(err)))
}

// fieldList returns ": a, b" for "favorites: missing required field: a, b".
func fieldList(err error) string {
	if _, fields, ok := strings.Cut(err.Error(), favorites.ErrMissingField.Error()+": "); ok {
		return ": " + fields
	}
	return ""
}

func upstreamMessage(err error) string {
	var ue *identity.UpstreamError
	if errors.As(err, &ue) {
		return ue.Message
	}
	return "Request rejected by the authentication service"
}
