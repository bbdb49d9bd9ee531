package model

// Rarity tiers, highest first.
const (
	RarityLegendary = "legendary"
	RarityEpic      = "epic"
	RarityRare      = "rare"
	RarityCommon    = "common"
)

// RarityTiers lists the closed rarity vocabulary ordered from rarest to most common.
var RarityTiers = []string{RarityLegendary, RarityEpic, RarityRare, RarityCommon}

// Card is an immutable card definition.
type Card struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Rarity   string `json:"rarity"`
	ImageURL string `json:"image_url"`
	Number   int    `json:"number"`
}

// InventoryEntry grants a user Quantity copies of a card.
type InventoryEntry struct {
	UserID   string `json:"user_id"`
	CardID   string `json:"card_id"`
	Quantity int    `json:"quantity"`
}

// CardView is a card definition enriched with the selected user's ownership.
type CardView struct {
	Card
	Quantity int  `json:"quantity"`
	Owned    bool `json:"owned"`
}
