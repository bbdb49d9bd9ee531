package service

import (
	"context"
	"fmt"
	"time"

	"mgacha-dashboard/internal/cache"
	"mgacha-dashboard/internal/logger"
	"mgacha-dashboard/internal/model"
	"mgacha-dashboard/internal/repository"
)

// LeaderboardService ranks users by distinct cards owned.
type LeaderboardService struct {
	store       repository.GachaStore
	cache       cache.Cache
	ttl         time.Duration
	defaultSize int
}

// NewLeaderboardService creates a leaderboard service. A nil cache disables caching.
func NewLeaderboardService(store repository.GachaStore, c cache.Cache, ttl time.Duration, defaultSize int) *LeaderboardService {
	if defaultSize < 1 {
		defaultSize = 3
	}
	return &LeaderboardService{
		store:       store,
		cache:       c,
		ttl:         ttl,
		defaultSize: defaultSize,
	}
}

// Top returns the n highest-ranked users. n <= 0 selects the configured default.
func (s *LeaderboardService) Top(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	if n <= 0 {
		n = s.defaultSize
	}

	load := func() ([]model.LeaderboardEntry, error) {
		return s.load(ctx, n)
	}
	if s.cache == nil || s.ttl <= 0 {
		return load()
	}

	entries, err := cache.Remember(ctx, s.cache, fmt.Sprintf("leaderboard:top:%d", n), s.ttl, load)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *LeaderboardService) load(ctx context.Context, n int) ([]model.LeaderboardEntry, error) {
	users, err := s.store.TopUsers(ctx, n)
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, model.LeaderboardEntry{
			Rank:        i + 1,
			TwitchName:  u.TwitchName,
			UniqueCards: u.TotalUniqueCards,
		})
	}
	logger.Log.Debugf("[LeaderboardService] loaded top %d (%d users)", n, len(entries))
	return entries, nil
}
