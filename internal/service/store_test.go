package service

import (
	"context"
	"sort"
	"sync"

	"mgacha-dashboard/internal/model"
)

// fakeStore is an in-memory GachaStore that counts calls per operation.
type fakeStore struct {
	mu        sync.Mutex
	users     []model.User
	cards     []model.Card
	inventory []model.InventoryEntry
	logs      []model.LogEntry
	calls     map[string]int
	err       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{calls: make(map[string]int)}
}

func (f *fakeStore) hit(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	return f.err
}

func (f *fakeStore) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeStore) TopUsers(ctx context.Context, limit int) ([]model.User, error) {
	if err := f.hit("TopUsers"); err != nil {
		return nil, err
	}
	users := append([]model.User(nil), f.users...)
	sort.SliceStable(users, func(i, j int) bool { return users[i].TotalUniqueCards > users[j].TotalUniqueCards })
	if len(users) > limit {
		users = users[:limit]
	}
	return users, nil
}

func (f *fakeStore) ListUsers(ctx context.Context) ([]model.User, error) {
	if err := f.hit("ListUsers"); err != nil {
		return nil, err
	}
	return append([]model.User(nil), f.users...), nil
}

func (f *fakeStore) FindUserByName(ctx context.Context, name string) (*model.User, error) {
	if err := f.hit("FindUserByName"); err != nil {
		return nil, err
	}
	for _, u := range f.users {
		if u.TwitchName == name {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) InventoryByUser(ctx context.Context, userID string) ([]model.InventoryEntry, error) {
	if err := f.hit("InventoryByUser"); err != nil {
		return nil, err
	}
	var out []model.InventoryEntry
	for _, e := range f.inventory {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) FindCard(ctx context.Context, cardID string) (*model.Card, error) {
	if err := f.hit("FindCard"); err != nil {
		return nil, err
	}
	for _, c := range f.cards {
		if c.ID == cardID {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListCards(ctx context.Context) ([]model.Card, error) {
	if err := f.hit("ListCards"); err != nil {
		return nil, err
	}
	return append([]model.Card(nil), f.cards...), nil
}

func (f *fakeStore) LogsByTwitchID(ctx context.Context, twitchID string) ([]model.LogEntry, error) {
	if err := f.hit("LogsByTwitchID"); err != nil {
		return nil, err
	}
	var out []model.LogEntry
	for _, e := range f.logs {
		if e.TwitchID == twitchID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (f *fakeStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"users": len(f.users)}, f.hit("GetStats")
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.hit("Ping") }
func (f *fakeStore) Close() error                  { return nil }

// aliceStore reproduces the dashboard's reference data set.
func aliceStore() *fakeStore {
	f := newFakeStore()
	f.users = []model.User{
		{ID: "u1", TwitchName: "alice", TwitchID: "100", Tokens: 12, TotalUniqueCards: 1},
		{ID: "u2", TwitchName: "bob", TwitchID: "200", Tokens: 3, TotalUniqueCards: 2},
		{ID: "u3", TwitchName: "carol", TwitchID: "300"},
	}
	f.cards = []model.Card{
		{ID: "card1", Name: "Slime", Rarity: model.RarityCommon, Number: 1},
		{ID: "card2", Name: "Dragon", Rarity: model.RarityLegendary, Number: 2},
	}
	f.inventory = []model.InventoryEntry{
		{UserID: "u1", CardID: "card1", Quantity: 2},
		{UserID: "u2", CardID: "card1", Quantity: 1},
		{UserID: "u2", CardID: "card2", Quantity: 4},
	}
	return f
}
