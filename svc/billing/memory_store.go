package billing

import (
	"context"
	"maps"
	"sync"
	"time"
)

// MemoryStore is an in-process Store. WithEvent holds the store lock for the
// whole transaction and commits only when fn succeeds.
type MemoryStore struct {
	mu    sync.Mutex
	state memoryState
}

type memoryState struct {
	customers     map[string]string // user id -> customer id
	users         map[string]string // customer id -> user id
	subscriptions map[string]Subscription
	events        map[string]string // event id -> type
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memoryState{
		customers:     make(map[string]string),
		users:         make(map[string]string),
		subscriptions: make(map[string]Subscription),
		events:        make(map[string]string),
	}}
}

func (s *MemoryStore) CustomerID(ctx context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CustomerID(ctx, userID)
}

func (s *MemoryStore) UserID(ctx context.Context, customerID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.UserID(ctx, customerID)
}

func (s *MemoryStore) LinkCustomer(ctx context.Context, userID, customerID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LinkCustomer(ctx, userID, customerID)
}

func (s *MemoryStore) Subscription(ctx context.Context, id string) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Subscription(ctx, id)
}

func (s *MemoryStore) SaveSubscription(ctx context.Context, sub Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SaveSubscription(ctx, sub)
}

func (s *MemoryStore) RecordPayment(ctx context.Context, subscriptionID, status string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.RecordPayment(ctx, subscriptionID, status, at)
}

func (s *MemoryStore) WithEvent(ctx context.Context, eventID, eventType string, fn func(tx Tx) error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.events[eventID]; ok {
		return true, nil
	}

	tx := s.state.clone()
	tx.events[eventID] = eventType
	if err := fn(&tx); err != nil {
		return false, err
	}
	s.state = tx
	return false, nil
}

// Events returns the number of recorded webhook events.
func (s *MemoryStore) Events() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.events)
}

func (m memoryState) clone() memoryState {
	return memoryState{
		customers:     maps.Clone(m.customers),
		users:         maps.Clone(m.users),
		subscriptions: maps.Clone(m.subscriptions),
		events:        maps.Clone(m.events),
	}
}

func (m *memoryState) CustomerID(_ context.Context, userID string) (string, error) {
	id, ok := m.customers[userID]
	if !ok {
		return "", ErrCustomerNotFound
	}
	return id, nil
}

func (m *memoryState) UserID(_ context.Context, customerID string) (string, error) {
	id, ok := m.users[customerID]
	if !ok {
		return "", ErrCustomerNotFound
	}
	return id, nil
}

func (m *memoryState) LinkCustomer(_ context.Context, userID, customerID string) (string, error) {
	if existing, ok := m.customers[userID]; ok {
		return existing, nil
	}
	if owner, ok := m.users[customerID]; ok && owner != userID {
		return "", ErrCustomerConflict
	}
	m.customers[userID] = customerID
	m.users[customerID] = userID
	return customerID, nil
}

func (m *memoryState) Subscription(_ context.Context, id string) (Subscription, error) {
	sub, ok := m.subscriptions[id]
	if !ok {
		return Subscription{}, ErrSubscriptionNotFound
	}
	return sub, nil
}

func (m *memoryState) SaveSubscription(_ context.Context, sub Subscription) error {
	m.subscriptions[sub.ID] = sub
	return nil
}

func (m *memoryState) RecordPayment(_ context.Context, subscriptionID, status string, at time.Time) error {
	sub, ok := m.subscriptions[subscriptionID]
	if !ok {
		return nil
	}
	sub.LastPaymentStatus = status
	sub.UpdatedAt = at
	m.subscriptions[subscriptionID] = sub
	return nil
}
