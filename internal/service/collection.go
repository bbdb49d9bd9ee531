package service

import (
	"context"
	"fmt"

	"mgacha-dashboard/internal/logger"
	"mgacha-dashboard/internal/model"
	"mgacha-dashboard/internal/monitor"
	"mgacha-dashboard/internal/repository"
)

// Collection holds both enriched card lists of one user.
type Collection struct {
	// Owned has one view per owned card, in inventory order.
	Owned []model.CardView `json:"owned"`
	// All has one view per card definition, owned or not.
	All []model.CardView `json:"all"`
}

// CollectionService joins inventory entries with card definitions.
type CollectionService struct {
	store repository.GachaStore
}

// NewCollectionService creates a new collection service.
func NewCollectionService(store repository.GachaStore) *CollectionService {
	return &CollectionService{store: store}
}

// Load builds both card lists from a single inventory read.
func (s *CollectionService) Load(ctx context.Context, userID string) (*Collection, error) {
	entries, err := s.store.InventoryByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	owned, err := s.owned(ctx, userID, entries)
	if err != nil {
		return nil, err
	}
	all, err := s.all(ctx, entries)
	if err != nil {
		return nil, err
	}

	return &Collection{Owned: owned, All: all}, nil
}

// Owned returns the cards a user owns with their quantities.
// Entries that reference a missing card are skipped.
func (s *CollectionService) Owned(ctx context.Context, userID string) ([]model.CardView, error) {
	entries, err := s.store.InventoryByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.owned(ctx, userID, entries)
}

// All returns every card definition marked with the user's ownership.
func (s *CollectionService) All(ctx context.Context, userID string) ([]model.CardView, error) {
	entries, err := s.store.InventoryByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.all(ctx, entries)
}

func (s *CollectionService) owned(ctx context.Context, userID string, entries []model.InventoryEntry) ([]model.CardView, error) {
	views := make([]model.CardView, 0, len(entries))
	// Position of each card in views; repeated entries for a card add up.
	index := make(map[string]int, len(entries))
	missing := make(map[string]bool)

	for _, entry := range entries {
		if i, ok := index[entry.CardID]; ok {
			views[i].Quantity += entry.Quantity
			continue
		}
		if missing[entry.CardID] {
			continue
		}

		card, err := s.store.FindCard(ctx, entry.CardID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve card %s: %w", entry.CardID, err)
		}
		if card == nil {
			missing[entry.CardID] = true
			monitor.DroppedReferences.Inc()
			logger.Log.Warnf("[CollectionService] user %s references missing card %s, skipping", userID, entry.CardID)
			continue
		}

		index[entry.CardID] = len(views)
		views = append(views, model.CardView{Card: *card, Quantity: entry.Quantity, Owned: true})
	}

	return views, nil
}

func (s *CollectionService) all(ctx context.Context, entries []model.InventoryEntry) ([]model.CardView, error) {
	cards, err := s.store.ListCards(ctx)
	if err != nil {
		return nil, err
	}

	quantities := make(map[string]int, len(entries))
	for _, entry := range entries {
		quantities[entry.CardID] += entry.Quantity
	}

	views := make([]model.CardView, 0, len(cards))
	for _, card := range cards {
		quantity, owned := quantities[card.ID]
		views = append(views, model.CardView{Card: card, Quantity: quantity, Owned: owned})
	}
	return views, nil
}
