package service

import (
	"context"
	"testing"
	"time"

	"mgacha-dashboard/internal/cache"
)

func TestLeaderboardService_TopCached(t *testing.T) {
	store := aliceStore()
	c := cache.NewMemoryCache(0)
	defer c.Close()
	svc := NewLeaderboardService(store, c, time.Minute, 3)
	ctx := context.Background()

	entries, err := svc.Top(ctx, 0)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[0].TwitchName != "bob" || entries[0].Rank != 1 || entries[0].UniqueCards != 2 {
		t.Errorf("Unexpected leader: %+v", entries[0])
	}

	if _, err := svc.Top(ctx, 3); err != nil {
		t.Fatalf("Top: %v", err)
	}
	if n := store.count("TopUsers"); n != 1 {
		t.Errorf("Expected cached second call, store hit %d times", n)
	}

	top1, _ := svc.Top(ctx, 1)
	if len(top1) != 1 {
		t.Errorf("Expected 1 entry, got %d", len(top1))
	}
}

func TestLeaderboardService_NoCache(t *testing.T) {
	store := aliceStore()
	svc := NewLeaderboardService(store, nil, time.Minute, 2)

	svc.Top(context.Background(), 0)
	svc.Top(context.Background(), 0)
	if n := store.count("TopUsers"); n != 2 {
		t.Errorf("Expected every call to hit the store, got %d", n)
	}
}
