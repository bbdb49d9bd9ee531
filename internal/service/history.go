package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mgacha-dashboard/internal/model"
	"mgacha-dashboard/internal/repository"
)

// HistoryTimeLayout is the timestamp layout of a history line.
const HistoryTimeLayout = "2006-01-02 15:04:05"

// DefaultHistoryOffset converts stored UTC timestamps to Brasília time (UTC-3, no DST).
const DefaultHistoryOffset = -3 * time.Hour

// History is a user's formatted action log, newest first.
type History struct {
	Lines  []string `json:"lines"`
	Empty  bool     `json:"empty"`
	Notice string   `json:"notice,omitempty"`
}

// HistoryService renders action log entries as display lines.
type HistoryService struct {
	store  repository.GachaStore
	offset time.Duration
}

// NewHistoryService creates a history service that shifts timestamps by offset.
func NewHistoryService(store repository.GachaStore, offset time.Duration) *HistoryService {
	return &HistoryService{store: store, offset: offset}
}

// Lines returns the formatted action log of a Twitch user.
func (s *HistoryService) Lines(ctx context.Context, twitchID string) (*History, error) {
	entries, err := s.store.LogsByTwitchID(ctx, twitchID)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return &History{Lines: []string{}, Empty: true, Notice: NoticeNoRecords}, nil
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, FormatEntry(entry, s.offset))
	}
	return &History{Lines: lines}, nil
}

// FormatEntry renders one log entry:
//
//	2024-01-01 07:00:00 - pull - Slime - common - new - +5 tokens
//
// Missing name, rarity and tokens render as empty or zero; the new/duplicate
// segment appears only when the details carry the flag.
func FormatEntry(entry model.LogEntry, offset time.Duration) string {
	ts := entry.Timestamp.UTC().Add(offset)

	parts := []string{
		ts.Format(HistoryTimeLayout),
		entry.Action,
		detailString(entry.Details, model.DetailName),
		detailString(entry.Details, model.DetailRarity),
	}

	if isNew, ok := detailBool(entry.Details, model.DetailNewCard); ok {
		if isNew {
			parts = append(parts, "new")
		} else {
			parts = append(parts, "duplicate")
		}
	}

	tokens, _ := detailInt(entry.Details, model.DetailTokensWon)
	parts = append(parts, fmt.Sprintf("+%d tokens", tokens))

	return strings.Join(parts, " - ")
}

func detailString(details map[string]interface{}, key string) string {
	switch v := details[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func detailBool(details map[string]interface{}, key string) (bool, bool) {
	v, ok := details[key].(bool)
	return v, ok
}

func detailInt(details map[string]interface{}, key string) (int64, bool) {
	switch v := details[key].(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}
