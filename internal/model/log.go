package model

import "time"

// Keys of the free-form details payload written by the game engine.
const (
	DetailName      = "name"
	DetailRarity    = "rarity"
	DetailNewCard   = "nova_carta"
	DetailTokensWon = "tokens_ganhos"
)

// LogEntry is an append-only record of a past game action.
type LogEntry struct {
	ID        string                 `json:"id"`
	TwitchID  string                 `json:"twitch_id"`
	Action    string                 `json:"action"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}
