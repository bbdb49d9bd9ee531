package repository

import (
	"context"

	"mgacha-dashboard/internal/model"
)

// GachaStore defines read access to the game's four collections.
// Lookups of a single record return (nil, nil) when the record does not exist.
type GachaStore interface {
	// TopUsers returns up to limit users ordered by unique card count, highest first.
	TopUsers(ctx context.Context, limit int) ([]model.User, error)

	// ListUsers returns every registered user.
	ListUsers(ctx context.Context) ([]model.User, error)

	// FindUserByName finds a user by Twitch display name.
	FindUserByName(ctx context.Context, name string) (*model.User, error)

	// InventoryByUser returns the inventory entries owned by a user.
	InventoryByUser(ctx context.Context, userID string) ([]model.InventoryEntry, error)

	// FindCard finds a card definition by identifier.
	FindCard(ctx context.Context, cardID string) (*model.Card, error)

	// ListCards returns every card definition ordered by card number.
	ListCards(ctx context.Context) ([]model.Card, error)

	// LogsByTwitchID returns a user's action log, newest first.
	LogsByTwitchID(ctx context.Context, twitchID string) ([]model.LogEntry, error)

	// GetStats returns document counts per collection.
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}

// Collection names shared by every backend.
const (
	UsersCollection     = "users"
	InventoryCollection = "inventory"
	CardsCollection     = "cards"
	LogCollection       = "log_history"
)
