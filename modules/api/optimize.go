package api

import (
	"context"
	"errors"

	"github.com/dmitrymomot/promptkit/handler"
	"github.com/dmitrymomot/promptkit/pkg/logger"
	"github.com/dmitrymomot/promptkit/svc/billing"
	"github.com/dmitrymomot/promptkit/svc/identity"
	"github.com/dmitrymomot/promptkit/svc/optimizer"
)

type optimizeRequest struct {
	Prompt   string `json:"prompt"`
	Strategy string `json:"strategy"`
}

// optimize validates before any outbound call. Signed-in users are metered
// against their plan, and only results produced by the provider count.
// With quota enforcement the unit is reserved before the provider call and
// released again when the result is degraded.
func (s *server) optimize(ctx handler.Context, req optimizeRequest) handler.Response {
	if _, err := optimizer.Validate(req.Prompt, req.Strategy); err != nil {
		return handler.Fail(err)
	}

	var (
		ent      billing.Entitlement
		metered  bool
		reserved bool
	)
	id, identified := identity.FromContext(ctx)
	if identified && s.billing != nil && s.billing.Configured() {
		e, err := s.billing.GetSubscription(ctx, id.UserID)
		if err != nil {
			s.log.WarnContext(ctx, "entitlement lookup failed, optimizing without metering", logger.Error(err))
		} else if s.cfg.EnforceQuota {
			_, err := s.billing.ReserveUsage(ctx, id.UserID, e)
			if errors.Is(err, billing.ErrQuotaExceeded) {
				return handler.Fail(err)
			}
			if err != nil {
				s.log.WarnContext(ctx, "usage reservation failed, optimizing without metering", logger.Error(err))
			} else {
				ent, metered, reserved = e, true, true
			}
		} else {
			ent, metered = e, true
		}
	}

	res, err := s.optimizer.Optimize(ctx, req.Prompt, req.Strategy)
	if reserved && (err != nil || res.Degraded) {
		if err := s.billing.ReleaseUsage(context.WithoutCancel(ctx), id.UserID, ent); err != nil {
			s.log.ErrorContext(ctx, "failed to release reserved usage", logger.Error(err))
		}
	}
	if err != nil {
		return handler.Fail(err)
	}

	if metered && !reserved && !res.Degraded {
		if _, err := s.billing.RecordUsage(ctx, id.UserID, ent); err != nil {
			s.log.ErrorContext(ctx, "failed to record usage", logger.Error(err))
		}
	}
	return handler.JSON(res)
}
