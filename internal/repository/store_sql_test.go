package repository

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	exec := func(query string, args ...interface{}) {
		t.Helper()
		if _, err := store.db.Exec(query, args...); err != nil {
			t.Fatalf("seed %q: %v", query, err)
		}
	}

	exec(`INSERT INTO users VALUES ('u1', 'alice', '100', 40, 2), ('u2', 'bob', '200', 10, 5), ('u3', 'carol', '300', 0, 1)`)
	exec(`INSERT INTO cards VALUES ('c1', 'Slime', 'common', 'http://img/1', 1), ('c2', 'Dragon', 'legendary', NULL, 2)`)
	exec(`INSERT INTO inventory VALUES (1, 'u1', 'c2', 3), (2, 'u1', 'c1', NULL), (3, 'u2', 'c1', 1)`)

	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	exec(`INSERT INTO log_history VALUES (?, '100', 'pull', ?, ?)`, "l1", base, `{"name":"Slime","nova_carta":true,"tokens_ganhos":5}`)
	exec(`INSERT INTO log_history VALUES (?, '100', 'pull', ?, ?)`, "l2", base.Add(time.Hour), `{"name":"Dragon"}`)
	exec(`INSERT INTO log_history VALUES (?, '100', 'pull', ?, NULL)`, "l3", base.Add(time.Hour))
	exec(`INSERT INTO log_history VALUES (?, '200', 'pull', ?, NULL)`, "l4", base)

	return store
}

func TestSQLStore_TopUsers(t *testing.T) {
	store := newTestStore(t)

	users, err := store.TopUsers(context.Background(), 2)
	if err != nil {
		t.Fatalf("TopUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("Expected 2 users, got %d", len(users))
	}
	if users[0].TwitchName != "bob" || users[1].TwitchName != "alice" {
		t.Errorf("Unexpected order: %s, %s", users[0].TwitchName, users[1].TwitchName)
	}
}

func TestSQLStore_FindUserByName(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user, err := store.FindUserByName(ctx, "alice")
	if err != nil {
		t.Fatalf("FindUserByName: %v", err)
	}
	if user == nil || user.ID != "u1" || user.TwitchID != "100" || user.Tokens != 40 {
		t.Fatalf("Unexpected user: %+v", user)
	}

	missing, err := store.FindUserByName(ctx, "nobody")
	if err != nil {
		t.Fatalf("FindUserByName(missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("Expected nil for missing user, got %+v", missing)
	}
}

func TestSQLStore_InventoryByUser(t *testing.T) {
	store := newTestStore(t)

	entries, err := store.InventoryByUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("InventoryByUser: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0].CardID != "c2" || entries[0].Quantity != 3 {
		t.Errorf("Unexpected first entry: %+v", entries[0])
	}
	if entries[1].Quantity != 1 {
		t.Errorf("Missing quantity should default to 1, got %d", entries[1].Quantity)
	}
}

func TestSQLStore_Cards(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	cards, err := store.ListCards(ctx)
	if err != nil {
		t.Fatalf("ListCards: %v", err)
	}
	if len(cards) != 2 || cards[0].ID != "c1" || cards[1].ImageURL != "" {
		t.Fatalf("Unexpected cards: %+v", cards)
	}

	card, err := store.FindCard(ctx, "c2")
	if err != nil || card == nil || card.Rarity != "legendary" {
		t.Fatalf("FindCard(c2) = %+v, %v", card, err)
	}

	card, err = store.FindCard(ctx, "c9")
	if err != nil || card != nil {
		t.Fatalf("FindCard(c9) = %+v, %v; want nil, nil", card, err)
	}
}

func TestSQLStore_LogsNewestFirst(t *testing.T) {
	store := newTestStore(t)

	logs, err := store.LogsByTwitchID(context.Background(), "100")
	if err != nil {
		t.Fatalf("LogsByTwitchID: %v", err)
	}
	if len(logs) != 3 {
		t.Fatalf("Expected 3 logs, got %d", len(logs))
	}

	// l2 and l3 share a timestamp; the id breaks the tie.
	want := []string{"l3", "l2", "l1"}
	for i, id := range want {
		if logs[i].ID != id {
			t.Errorf("logs[%d].ID = %s, want %s", i, logs[i].ID, id)
		}
	}
	if logs[2].Details["nova_carta"] != true {
		t.Errorf("Expected details to decode, got %+v", logs[2].Details)
	}
	if logs[0].Details != nil {
		t.Errorf("Expected nil details for NULL column, got %+v", logs[0].Details)
	}
}

func TestSQLStore_GetStats(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats["users"] != int64(3) || stats["log_history"] != int64(4) {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestSQLStore_RebindPostgres(t *testing.T) {
	s := &SQLStore{dialect: DialectPostgres}
	got := s.rebind("SELECT * FROM t WHERE a = ? AND b = ?")
	if want := "SELECT * FROM t WHERE a = $1 AND b = $2"; got != want {
		t.Errorf("rebind = %q, want %q", got, want)
	}
}
