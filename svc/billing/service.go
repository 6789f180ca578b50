package billing

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/promptkit/pkg/cache"
	"github.com/dmitrymomot/promptkit/pkg/logger"
	"github.com/dmitrymomot/promptkit/pkg/metrics"
	"github.com/dmitrymomot/promptkit/svc/usage"
)

const (
	subscriptionListLimit = 10
	entitlementCacheName  = "entitlement"
	entitlementKeyPrefix  = "billing:subscription:"
)

// Service implements customer resolution, checkout, portal, subscription
// lookup and webhook reconciliation on top of a Processor.
type Service struct {
	cfg        Config
	processor  Processor
	store      Store
	planSource PlanSource
	plans      map[string]Plan
	prices     *cache.LRUCache[string, Price]
	cache      cache.Store
	meter      usage.Meter
	metrics    *metrics.Metrics
	log        *slog.Logger
	now        func() time.Time
}

// NewService creates a Service. processor may be nil, in which case every
// processor-backed operation returns ErrNotConfigured. Panics if store is nil.
func NewService(ctx context.Context, cfg Config, processor Processor, store Store, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		panic("billing: Store is required")
	}
	cfg = cfg.withDefaults()

	s := &Service{
		cfg:       cfg,
		processor: processor,
		store:     store,
		meter:     usage.NewMemoryMeter(),
		log:       slog.Default(),
		now:       time.Now,
	}
	if cfg.PlansFile != "" {
		s.planSource = NewFileSource(cfg.PlansFile)
	} else {
		s.planSource = NewInMemSource(DefaultPlans()...)
	}
	if cfg.EntitlementTTL > 0 {
		s.cache = cache.NewMemoryStore(cfg.EntitlementTTL, 2*cfg.EntitlementTTL)
	}

	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("billing"))

	plans, err := s.planSource.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	if err := validatePlans(plans); err != nil {
		return nil, err
	}
	s.plans = plans
	s.prices = cache.NewLRUCache[string, Price](cfg.PriceCacheSize, cfg.PriceCacheTTL)

	return s, nil
}

// Configured reports whether a payment processor is available.
func (s *Service) Configured() bool {
	return s.processor != nil
}

// Plan returns the plan of priceID.
func (s *Service) Plan(priceID string) (Plan, bool) {
	p, ok := s.plans[priceID]
	return p, ok
}

// ResolveCustomer returns the processor customer of userID, creating and
// linking one when none is known. Concurrent callers for the same user end
// up with the same customer id.
func (s *Service) ResolveCustomer(ctx context.Context, userID, email string) (string, error) {
	if s.processor == nil {
		return "", ErrNotConfigured
	}
	if userID == "" {
		return "", ErrMissingUserID
	}

	customerID, err := s.lookupCustomer(ctx, userID)
	if err == nil {
		return customerID, nil
	}
	if !errors.Is(err, ErrCustomerNotFound) {
		return "", errors.Join(ErrCustomerCreationFailed, err)
	}

	c, err := s.processor.CreateCustomer(ctx, userID, email)
	if err != nil {
		s.log.WarnContext(ctx, "customer creation failed, retrying with unique tag",
			logger.UserID(userID), logger.Error(err))
		tag := fmt.Sprintf("%s_%d", userID, s.now().UnixMilli())
		if c, err = s.processor.CreateCustomer(ctx, tag, email); err != nil {
			return "", errors.Join(ErrCustomerCreationFailed, err)
		}
	}

	stored, err := s.store.LinkCustomer(ctx, userID, c.ID)
	if err != nil {
		return "", errors.Join(ErrCustomerCreationFailed, err)
	}
	if stored != c.ID {
		s.log.InfoContext(ctx, "adopted concurrently stored customer",
			logger.UserID(userID), logger.CustomerID(stored))
	} else {
		s.log.InfoContext(ctx, "customer created", logger.UserID(userID), logger.CustomerID(c.ID))
	}
	return stored, nil
}

// lookupCustomer never creates a customer. It returns ErrCustomerNotFound
// when neither the mapping nor the legacy scan knows userID.
func (s *Service) lookupCustomer(ctx context.Context, userID string) (string, error) {
	customerID, err := s.store.CustomerID(ctx, userID)
	if err == nil || !errors.Is(err, ErrCustomerNotFound) || !s.cfg.LegacyLookup {
		return customerID, err
	}

	since := s.now().Add(-s.cfg.LookupWindow)
	customers, err := s.processor.ListRecentCustomers(ctx, since, s.cfg.LookupLimit)
	if err != nil {
		return "", err
	}
	for _, c := range customers {
		if parseUserTag(c.UserID) != userID {
			continue
		}
		stored, err := s.store.LinkCustomer(ctx, userID, c.ID)
		if err != nil {
			// the scan hit is still usable without a mapping
			s.log.WarnContext(ctx, "failed to persist scanned customer",
				logger.UserID(userID), logger.CustomerID(c.ID), logger.Error(err))
			return c.ID, nil
		}
		return stored, nil
	}
	return "", ErrCustomerNotFound
}

// CreateCheckoutSession opens a subscription checkout for req.PriceID.
func (s *Service) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error) {
	if s.processor == nil {
		return CheckoutSession{}, ErrNotConfigured
	}
	if req.PriceID == "" {
		return CheckoutSession{}, ErrMissingPriceID
	}
	if req.UserID == "" {
		return CheckoutSession{}, ErrMissingUserID
	}

	var customerID string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.validatePrice(gctx, req.PriceID)
	})
	g.Go(func() error {
		id, err := s.ResolveCustomer(gctx, req.UserID, req.Email)
		customerID = id
		return err
	})
	if err := g.Wait(); err != nil {
		s.metrics.ObserveCheckout("failed")
		return CheckoutSession{}, err
	}

	origin := s.origin(req.Origin)
	params := CheckoutParams{
		CustomerID: customerID,
		PriceID:    req.PriceID,
		UserID:     req.UserID,
		SuccessURL: cmp.Or(req.SuccessURL, origin+"/payment-success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  cmp.Or(req.CancelURL, origin+"/pricing"),
	}
	session, err := s.processor.CreateCheckoutSession(ctx, params)
	if err != nil {
		s.metrics.ObserveCheckout("failed")
		return CheckoutSession{}, errors.Join(ErrSessionCreationFailed, err)
	}

	s.metrics.ObserveCheckout("created")
	s.log.InfoContext(ctx, "checkout session created",
		logger.UserID(req.UserID), logger.CustomerID(customerID), logger.PriceID(req.PriceID))
	return session, nil
}

// validatePrice accepts only active prices known to the processor. Good
// prices are remembered for Config.PriceCacheTTL.
func (s *Service) validatePrice(ctx context.Context, priceID string) error {
	if _, ok := s.prices.Get(priceID); ok {
		return nil
	}
	p, err := s.processor.GetPrice(ctx, priceID)
	if err != nil {
		return errors.Join(ErrInvalidPrice, err)
	}
	if !p.Active {
		return errors.Join(ErrInvalidPrice, fmt.Errorf("price %s is not active", priceID))
	}
	s.prices.Put(priceID, p)
	return nil
}

// GetCheckoutSession returns the processor's session JSON unchanged.
func (s *Service) GetCheckoutSession(ctx context.Context, sessionID string) (json.RawMessage, error) {
	if s.processor == nil {
		return nil, ErrNotConfigured
	}
	if sessionID == "" {
		return nil, ErrMissingSessionID
	}
	raw, err := s.processor.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, errors.Join(ErrSessionLookupFailed, err)
	}
	return raw, nil
}

// CreatePortalSession opens the processor's billing portal for a customer.
func (s *Service) CreatePortalSession(ctx context.Context, req PortalRequest) (PortalSession, error) {
	if s.processor == nil {
		return PortalSession{}, ErrNotConfigured
	}
	if req.CustomerID == "" {
		return PortalSession{}, ErrMissingCustomerID
	}
	returnURL := cmp.Or(req.ReturnURL, s.origin(req.Origin)+"/pricing")
	session, err := s.processor.CreatePortalSession(ctx, req.CustomerID, returnURL)
	if err != nil {
		return PortalSession{}, errors.Join(ErrPortalCreationFailed, err)
	}
	return session, nil
}

// snapshot is the cached processor view of a user.
type snapshot struct {
	CustomerID   string        `json:"customerId,omitempty"`
	Subscription *Subscription `json:"subscription,omitempty"`
}

// GetSubscription returns the current entitlement of userID. A user
// without customer or active subscription gets an empty entitlement.
func (s *Service) GetSubscription(ctx context.Context, userID string) (Entitlement, error) {
	if s.processor == nil {
		return Entitlement{}, ErrNotConfigured
	}
	if userID == "" {
		return Entitlement{}, ErrMissingUserID
	}

	snap, err := s.loadSnapshot(ctx, userID)
	if err != nil {
		return Entitlement{}, err
	}
	return s.entitlement(ctx, userID, snap), nil
}

// Entitlement returns the entitlement of userID and whether it allows one
// more optimization.
func (s *Service) Entitlement(ctx context.Context, userID string) (Entitlement, bool, error) {
	ent, err := s.GetSubscription(ctx, userID)
	if err != nil {
		return Entitlement{}, false, err
	}
	return ent, ent.Allowed(), nil
}

// RecordUsage counts one optimization against the period of ent.
func (s *Service) RecordUsage(ctx context.Context, userID string, ent Entitlement) (int, error) {
	return s.meter.Increment(ctx, userID, s.period(ent))
}

// ReserveUsage claims one optimization of ent's period before the work is
// done. The check against the plan quota and the increment happen in one
// meter operation. It returns ErrQuotaExceeded when ent has no active
// subscription or the quota is used up.
func (s *Service) ReserveUsage(ctx context.Context, userID string, ent Entitlement) (int, error) {
	if ent.Subscription == nil || ent.Subscription.Status.State() != StateActive {
		return ent.Usage.Current, ErrQuotaExceeded
	}
	n, err := s.meter.Reserve(ctx, userID, s.period(ent), ent.Usage.Limit)
	if errors.Is(err, usage.ErrLimitReached) {
		return n, errors.Join(ErrQuotaExceeded, err)
	}
	return n, err
}

// ReleaseUsage returns a unit claimed by ReserveUsage, for work that ended
// up not counting.
func (s *Service) ReleaseUsage(ctx context.Context, userID string, ent Entitlement) error {
	return s.meter.Release(ctx, userID, s.period(ent))
}

func (s *Service) period(ent Entitlement) time.Time {
	if ent.PeriodStart.IsZero() {
		return usage.MonthStart(s.now())
	}
	return ent.PeriodStart
}

func (s *Service) cacheEnabled() bool {
	return s.cache != nil && s.cfg.EntitlementTTL > 0
}

func (s *Service) loadSnapshot(ctx context.Context, userID string) (snapshot, error) {
	key := entitlementKeyPrefix + userID
	if s.cacheEnabled() {
		var snap snapshot
		err := cache.GetJSON(ctx, s.cache, key, &snap)
		if err == nil {
			s.metrics.ObserveCacheLookup(entitlementCacheName, true)
			return snap, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WarnContext(ctx, "entitlement cache read failed", logger.UserID(userID), logger.Error(err))
		}
		s.metrics.ObserveCacheLookup(entitlementCacheName, false)
	}

	snap, err := s.fetchSnapshot(ctx, userID)
	if err != nil {
		return snapshot{}, err
	}

	if s.cacheEnabled() {
		if err := cache.SetJSON(ctx, s.cache, key, snap, s.cfg.EntitlementTTL); err != nil {
			s.log.WarnContext(ctx, "entitlement cache write failed", logger.UserID(userID), logger.Error(err))
		}
	}
	return snap, nil
}

func (s *Service) fetchSnapshot(ctx context.Context, userID string) (snapshot, error) {
	customerID, err := s.lookupCustomer(ctx, userID)
	switch {
	case errors.Is(err, ErrCustomerNotFound):
		return snapshot{}, nil
	case errors.Is(err, ErrInvalidRequest):
		s.log.WarnContext(ctx, "processor rejected customer lookup", logger.UserID(userID), logger.Error(err))
		return snapshot{}, nil
	case err != nil:
		return snapshot{}, errors.Join(ErrLookupFailed, err)
	}

	subs, err := s.processor.ListActiveSubscriptions(ctx, customerID, subscriptionListLimit)
	if errors.Is(err, ErrInvalidRequest) {
		s.log.WarnContext(ctx, "processor rejected subscription lookup",
			logger.UserID(userID), logger.CustomerID(customerID), logger.Error(err))
		return snapshot{}, nil
	}
	if err != nil {
		return snapshot{}, errors.Join(ErrLookupFailed, err)
	}

	snap := snapshot{CustomerID: customerID}
	if sub, ok := latestSubscription(subs); ok {
		snap.Subscription = &sub
	}
	return snap, nil
}

func (s *Service) entitlement(ctx context.Context, userID string, snap snapshot) Entitlement {
	ent := Entitlement{PeriodStart: usage.MonthStart(s.now())}
	if snap.CustomerID != "" {
		id := snap.CustomerID
		ent.Customer = &id
	}
	if snap.Subscription == nil {
		return ent
	}

	view := s.view(*snap.Subscription)
	ent.Subscription = &view
	if view.Plan != nil {
		ent.Usage.Limit = view.Plan.MonthlyQuota
	}
	if start := snap.Subscription.CurrentPeriodStart; !start.IsZero() {
		// quotas are monthly even on yearly prices
		ent.PeriodStart = usage.WindowStart(start, s.now())
	}

	current, err := s.meter.Current(ctx, userID, ent.PeriodStart)
	if err != nil {
		s.log.WarnContext(ctx, "usage lookup failed", logger.UserID(userID), logger.Error(err))
		return ent
	}
	ent.Usage.Current = current
	return ent
}

func (s *Service) view(sub Subscription) SubscriptionView {
	v := SubscriptionView{
		ID:                 sub.ID,
		Status:             sub.Status,
		Customer:           sub.CustomerID,
		PriceID:            sub.PriceID,
		Created:            unixSeconds(sub.Created),
		CurrentPeriodStart: unixSeconds(sub.CurrentPeriodStart),
		CurrentPeriodEnd:   unixSeconds(sub.CurrentPeriodEnd),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	}
	if p, ok := s.plans[sub.PriceID]; ok {
		v.Plan = &p
	}
	return v
}

// BackfillCustomers links processor customers created since the given time
// that carry a user tag but have no stored mapping.
func (s *Service) BackfillCustomers(ctx context.Context, since time.Time, limit int) (BackfillResult, error) {
	if s.processor == nil {
		return BackfillResult{}, ErrNotConfigured
	}
	if limit <= 0 {
		limit = s.cfg.LookupLimit
	}

	customers, err := s.processor.ListRecentCustomers(ctx, since, limit)
	if err != nil {
		return BackfillResult{}, errors.Join(ErrLookupFailed, err)
	}

	var res BackfillResult
	for _, c := range customers {
		res.Scanned++
		userID := parseUserTag(c.UserID)
		if userID == "" {
			res.Skipped++
			continue
		}
		if _, err := s.store.CustomerID(ctx, userID); err == nil {
			res.Skipped++
			continue
		} else if !errors.Is(err, ErrCustomerNotFound) {
			return res, err
		}

		stored, err := s.store.LinkCustomer(ctx, userID, c.ID)
		switch {
		case errors.Is(err, ErrCustomerConflict):
			res.Skipped++
		case err != nil:
			return res, err
		case stored == c.ID:
			res.Linked++
			s.log.InfoContext(ctx, "customer mapping backfilled", logger.UserID(userID), logger.CustomerID(c.ID))
		default:
			res.Skipped++
		}
	}
	return res, nil
}

// InvalidateEntitlement drops the cached entitlement of userID.
func (s *Service) InvalidateEntitlement(ctx context.Context, userID string) {
	if s.cache == nil || userID == "" {
		return
	}
	if err := s.cache.Delete(ctx, entitlementKeyPrefix+userID); err != nil {
		s.log.WarnContext(ctx, "entitlement cache invalidation failed", logger.UserID(userID), logger.Error(err))
	}
}

func (s *Service) origin(o string) string {
	o = strings.TrimRight(strings.TrimSpace(o), "/")
	if o == "" {
		return strings.TrimRight(s.cfg.BaseURL, "/")
	}
	if !strings.HasPrefix(o, "http") {
		o = "http://" + o
	}
	return o
}

// latestSubscription picks the most recently created subscription; equal
// creation times are broken by the larger id.
func latestSubscription(subs []Subscription) (Subscription, bool) {
	if len(subs) == 0 {
		return Subscription{}, false
	}
	return slices.MaxFunc(subs, func(a, b Subscription) int {
		if c := a.Created.Compare(b.Created); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	}), true
}

// parseUserTag strips the "_<unix millis>" suffix added by the retry path of
// customer creation.
func parseUserTag(tag string) string {
	i := strings.LastIndexByte(tag, '_')
	if i <= 0 {
		return tag
	}
	suffix := tag[i+1:]
	if len(suffix) < 13 {
		return tag
	}
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return tag
		}
	}
	return tag[:i]
}

func unixSeconds(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
