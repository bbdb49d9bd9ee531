package model

// User is a viewer registered by the game engine.
type User struct {
	ID               string `json:"id"`
	TwitchName       string `json:"twitch_name"`
	TwitchID         string `json:"twitch_id"`
	Tokens           int64  `json:"tokens"`
	TotalUniqueCards int64  `json:"total_unique_cards"`
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	TwitchName  string `json:"twitch_name"`
	UniqueCards int64  `json:"unique_cards"`
}
