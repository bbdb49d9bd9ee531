package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mgacha-dashboard/internal/cache"
	"mgacha-dashboard/internal/middleware"
	"mgacha-dashboard/internal/model"
	"mgacha-dashboard/internal/service"

	"github.com/go-chi/chi/v5"
)

// stubStore is a fixed in-memory GachaStore. err fails every call.
type stubStore struct {
	users     []model.User
	cards     []model.Card
	inventory []model.InventoryEntry
	logs      []model.LogEntry
	err       error
}

func (s *stubStore) TopUsers(ctx context.Context, limit int) ([]model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if limit > len(s.users) {
		limit = len(s.users)
	}
	return s.users[:limit], nil
}

func (s *stubStore) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users, s.err
}

func (s *stubStore) FindUserByName(ctx context.Context, name string) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.users {
		if s.users[i].TwitchName == name {
			u := s.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (s *stubStore) InventoryByUser(ctx context.Context, userID string) ([]model.InventoryEntry, error) {
	var out []model.InventoryEntry
	for _, e := range s.inventory {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, s.err
}

func (s *stubStore) FindCard(ctx context.Context, cardID string) (*model.Card, error) {
	for i := range s.cards {
		if s.cards[i].ID == cardID {
			c := s.cards[i]
			return &c, s.err
		}
	}
	return nil, s.err
}

func (s *stubStore) ListCards(ctx context.Context) ([]model.Card, error) {
	return s.cards, s.err
}

func (s *stubStore) LogsByTwitchID(ctx context.Context, twitchID string) ([]model.LogEntry, error) {
	var out []model.LogEntry
	for _, e := range s.logs {
		if e.TwitchID == twitchID {
			out = append(out, e)
		}
	}
	return out, s.err
}

func (s *stubStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"users": len(s.users)}, s.err
}

func (s *stubStore) Ping(ctx context.Context) error { return s.err }
func (s *stubStore) Close() error                  { return nil }

func newStubStore() *stubStore {
	return &stubStore{
		users: []model.User{
			{ID: "u2", TwitchName: "bob", TwitchID: "200", Tokens: 3, TotalUniqueCards: 2},
			{ID: "u1", TwitchName: "alice", TwitchID: "100", Tokens: 12, TotalUniqueCards: 1},
			{ID: "u3", TwitchName: "carol", TwitchID: "300"},
		},
		cards: []model.Card{
			{ID: "card1", Name: "Slime", Rarity: model.RarityCommon, Number: 1},
			{ID: "card2", Name: "Dragon", Rarity: model.RarityLegendary, Number: 2},
		},
		inventory: []model.InventoryEntry{
			{UserID: "u1", CardID: "card1", Quantity: 2},
			{UserID: "u2", CardID: "card1", Quantity: 1},
			{UserID: "u2", CardID: "card2", Quantity: 4},
		},
		logs: []model.LogEntry{
			{
				ID:        "l1",
				TwitchID:  "100",
				Action:    "pull",
				Timestamp: time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC),
				Details: map[string]interface{}{
					model.DetailName:      "Slime",
					model.DetailRarity:    model.RarityCommon,
					model.DetailNewCard:   true,
					model.DetailTokensWon: 5,
				},
			},
		},
	}
}

func newTestRouter(store *stubStore) http.Handler {
	dash := service.NewDashboardService(store, service.DefaultHistoryOffset)
	lb := service.NewLeaderboardService(store, cache.NewMemoryCache(0), time.Minute, 3)
	sessions := service.NewSessionManager(dash)
	h := NewDashboardHandler(dash, lb)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Get("/api/v1/leaderboard", h.Leaderboard)
	r.Get("/api/v1/users", h.Users)
	r.Route("/api/v1/session", func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(sessions))
		r.Post("/select", h.Select)
		r.Get("/view", h.View)
		r.Put("/view", h.UpdateView)
		r.Post("/refresh", h.Refresh)
	})
	return r
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func do(t *testing.T, h http.Handler, method, path, session, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if session != "" {
		req.Header.Set(middleware.SessionHeader, session)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: invalid JSON body %q: %v", method, path, rec.Body.String(), err)
	}
	return rec, env
}

func decodeView(t *testing.T, env envelope) service.DashboardView {
	t.Helper()
	var view service.DashboardView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("Failed to decode view: %v", err)
	}
	return view
}

func TestDashboard_SelectAndView(t *testing.T) {
	h := newTestRouter(newStubStore())

	rec, env := do(t, h, http.MethodPost, "/api/v1/session/select", "", `{"user":"alice"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	session := rec.Header().Get(middleware.SessionHeader)
	if session == "" {
		t.Fatal("Expected a session id in the response header")
	}

	view := decodeView(t, env)
	if view.User != "alice" || view.Tokens != 12 {
		t.Errorf("Unexpected user data: %+v", view)
	}
	if len(view.Cards) != 1 || view.Cards[0].Name != "Slime" || view.Cards[0].Quantity != 2 {
		t.Errorf("Unexpected owned cards: %+v", view.Cards)
	}
	want := "2024-05-01 12:00:00 - pull - Slime - common - new - +5 tokens"
	if len(view.History.Lines) != 1 || view.History.Lines[0] != want {
		t.Errorf("Expected history %q, got %v", want, view.History.Lines)
	}

	// Same session, switch to the full catalogue sorted by rarity.
	rec, env = do(t, h, http.MethodPut, "/api/v1/session/view", session, `{"mode":"all","sort":"Raridade"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(middleware.SessionHeader); got != session {
		t.Errorf("Session id changed from %s to %s", session, got)
	}
	view = decodeView(t, env)
	if len(view.Cards) != 2 || view.Cards[0].Name != "Dragon" || view.Cards[0].Owned {
		t.Errorf("Expected unowned Dragon first, got %+v", view.Cards)
	}

	_, env = do(t, h, http.MethodPut, "/api/v1/session/view", session, `{"filter":"unowned"}`)
	view = decodeView(t, env)
	if len(view.Cards) != 1 || view.Cards[0].ID != "card2" {
		t.Errorf("Expected only the unowned card, got %+v", view.Cards)
	}
}

func TestDashboard_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		store    func() *stubStore
		method   string
		path     string
		body     string
		status   int
		code     string
		contains string
	}{
		{
			name:     "unknown user",
			store:    newStubStore,
			method:   http.MethodPost,
			path:     "/api/v1/session/select",
			body:     `{"user":"mallory"}`,
			status:   http.StatusNotFound,
			code:     "NOT_FOUND",
			contains: service.NoticeUserNotFound,
		},
		{
			name:   "empty user",
			store:  newStubStore,
			method: http.MethodPost,
			path:   "/api/v1/session/select",
			body:   `{"user":"  "}`,
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name:   "view before select",
			store:  newStubStore,
			method: http.MethodGet,
			path:   "/api/v1/session/view",
			status: http.StatusConflict,
			code:   "CONFLICT",
		},
		{
			name:   "refresh before select",
			store:  newStubStore,
			method: http.MethodPost,
			path:   "/api/v1/session/refresh",
			status: http.StatusConflict,
			code:   "CONFLICT",
		},
		{
			name:   "bad sort key",
			store:  newStubStore,
			method: http.MethodPut,
			path:   "/api/v1/session/view",
			body:   `{"sort":"shininess"}`,
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
		{
			name: "store down",
			store: func() *stubStore {
				s := newStubStore()
				s.err = errors.New("connection refused")
				return s
			},
			method: http.MethodPost,
			path:   "/api/v1/session/select",
			body:   `{"user":"alice"}`,
			status: http.StatusServiceUnavailable,
			code:   "SERVICE_UNAVAILABLE",
		},
		{
			name:   "leaderboard limit",
			store:  newStubStore,
			method: http.MethodGet,
			path:   "/api/v1/leaderboard?limit=0",
			status: http.StatusBadRequest,
			code:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(tt.store())
			rec, env := do(t, h, tt.method, tt.path, "", tt.body)

			if rec.Code != tt.status {
				t.Fatalf("Expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if env.Success || env.Error.Code != tt.code {
				t.Errorf("Expected error code %s, got %+v", tt.code, env.Error)
			}
			if tt.contains != "" && !strings.Contains(env.Error.Message, tt.contains) {
				t.Errorf("Expected message containing %q, got %q", tt.contains, env.Error.Message)
			}
		})
	}
}

func TestDashboard_UnknownRarity(t *testing.T) {
	store := newStubStore()
	store.cards = append(store.cards, model.Card{ID: "card3", Name: "Ghost", Rarity: "mythic", Number: 3})
	h := newTestRouter(store)

	rec, _ := do(t, h, http.MethodPost, "/api/v1/session/select", "", `{"user":"alice"}`)
	session := rec.Header().Get(middleware.SessionHeader)

	rec, env := do(t, h, http.MethodPut, "/api/v1/session/view", session, `{"mode":"all","sort":"rarity"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.Error.Code != "UNPROCESSABLE" {
		t.Errorf("Expected UNPROCESSABLE, got %s", env.Error.Code)
	}

	// Number sort still works on the same snapshot.
	rec, env = do(t, h, http.MethodPut, "/api/v1/session/view", session, `{"sort":"number"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 after switching key, got %d", rec.Code)
	}
	if view := decodeView(t, env); len(view.Cards) != 3 {
		t.Errorf("Expected 3 cards, got %d", len(view.Cards))
	}
}

func TestDashboard_LeaderboardAndUsers(t *testing.T) {
	h := newTestRouter(newStubStore())

	rec, env := do(t, h, http.MethodGet, "/api/v1/leaderboard", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var entries []model.LeaderboardEntry
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		t.Fatalf("Failed to decode leaderboard: %v", err)
	}
	if len(entries) != 3 || entries[0].Rank != 1 || entries[0].TwitchName != "bob" {
		t.Errorf("Unexpected leaderboard: %+v", entries)
	}

	_, env = do(t, h, http.MethodGet, "/api/v1/users", "", "")
	var names []string
	if err := json.Unmarshal(env.Data, &names); err != nil {
		t.Fatalf("Failed to decode users: %v", err)
	}
	if strings.Join(names, ",") != "bob,alice,carol" {
		t.Errorf("Unexpected users: %v", names)
	}
}

func TestHealth_ReadyReportsStore(t *testing.T) {
	store := newStubStore()
	h := New(store, "test")

	rec := httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	store.err = errors.New("down")
	rec = httptest.NewRecorder()
	h.Ready(rec, httptest.NewRequest(http.MethodGet, "/api/v1/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %d", rec.Code)
	}
}
