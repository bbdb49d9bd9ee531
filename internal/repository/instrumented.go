package repository

import (
	"context"
	"time"

	"mgacha-dashboard/internal/model"
	"mgacha-dashboard/internal/monitor"
)

// InstrumentedStore wraps a GachaStore with query metrics and an optional per-query timeout.
type InstrumentedStore struct {
	next    GachaStore
	timeout time.Duration
}

// NewInstrumentedStore wraps next. A zero timeout leaves queries unbounded.
func NewInstrumentedStore(next GachaStore, timeout time.Duration) *InstrumentedStore {
	return &InstrumentedStore{next: next, timeout: timeout}
}

func (s *InstrumentedStore) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *InstrumentedStore) TopUsers(ctx context.Context, limit int) ([]model.User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	users, err := s.next.TopUsers(ctx, limit)
	monitor.ObserveQuery("top_users", err)
	return users, err
}

func (s *InstrumentedStore) ListUsers(ctx context.Context) ([]model.User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	users, err := s.next.ListUsers(ctx)
	monitor.ObserveQuery("list_users", err)
	return users, err
}

func (s *InstrumentedStore) FindUserByName(ctx context.Context, name string) (*model.User, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	user, err := s.next.FindUserByName(ctx, name)
	monitor.ObserveQuery("find_user", err)
	return user, err
}

func (s *InstrumentedStore) InventoryByUser(ctx context.Context, userID string) ([]model.InventoryEntry, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	entries, err := s.next.InventoryByUser(ctx, userID)
	monitor.ObserveQuery("inventory", err)
	return entries, err
}

func (s *InstrumentedStore) FindCard(ctx context.Context, cardID string) (*model.Card, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	card, err := s.next.FindCard(ctx, cardID)
	monitor.ObserveQuery("find_card", err)
	return card, err
}

func (s *InstrumentedStore) ListCards(ctx context.Context) ([]model.Card, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	cards, err := s.next.ListCards(ctx)
	monitor.ObserveQuery("list_cards", err)
	return cards, err
}

func (s *InstrumentedStore) LogsByTwitchID(ctx context.Context, twitchID string) ([]model.LogEntry, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	entries, err := s.next.LogsByTwitchID(ctx, twitchID)
	monitor.ObserveQuery("log_history", err)
	return entries, err
}

func (s *InstrumentedStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return s.next.GetStats(ctx)
}

func (s *InstrumentedStore) Ping(ctx context.Context) error {
	return s.next.Ping(ctx)
}

func (s *InstrumentedStore) Close() error {
	return s.next.Close()
}

var _ GachaStore = (*InstrumentedStore)(nil)
