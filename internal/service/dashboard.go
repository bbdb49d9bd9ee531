package service

import (
	"context"
	"fmt"
	"time"

	"mgacha-dashboard/internal/logger"
	"mgacha-dashboard/internal/monitor"
	"mgacha-dashboard/internal/repository"
)

// DashboardService loads per-user snapshots and the user picker list.
type DashboardService struct {
	store      repository.GachaStore
	collection *CollectionService
	history    *HistoryService
	now        func() time.Time
}

// NewDashboardService creates a dashboard service over store.
func NewDashboardService(store repository.GachaStore, historyOffset time.Duration) *DashboardService {
	return &DashboardService{
		store:      store,
		collection: NewCollectionService(store),
		history:    NewHistoryService(store, historyOffset),
		now:        time.Now,
	}
}

// UserNames returns the display names offered by the user picker.
func (s *DashboardService) UserNames(ctx context.Context) ([]string, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(users))
	for _, u := range users {
		names = append(names, u.TwitchName)
	}
	return names, nil
}

// Load reads the user, their collection and their history.
func (s *DashboardService) Load(ctx context.Context, name string) (*Snapshot, error) {
	user, err := s.store.FindUserByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %q", ErrUserNotFound, name)
	}

	coll, err := s.collection.Load(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	hist, err := s.history.Lines(ctx, user.TwitchID)
	if err != nil {
		return nil, err
	}

	monitor.ViewReloads.Inc()
	logger.Log.Debugf("[DashboardService] loaded %s: %d owned, %d history lines",
		name, len(coll.Owned), len(hist.Lines))

	return &Snapshot{
		User:       *user,
		Collection: coll,
		History:    hist,
		LoadedAt:   s.now().UTC(),
	}, nil
}

var _ Loader = (*DashboardService)(nil)
