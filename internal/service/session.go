package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"mgacha-dashboard/internal/model"
	"mgacha-dashboard/internal/monitor"
	"mgacha-dashboard/pkg/uid"
)

// Mode selects which card list a session shows.
type Mode string

const (
	// ModeOwned lists only the cards in the user's inventory.
	ModeOwned Mode = "owned"
	// ModeAll lists every card definition with ownership marked.
	ModeAll Mode = "all"
)

// ParseMode resolves a list mode. An empty value means ModeOwned.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeOwned:
		return ModeOwned, nil
	case ModeAll:
		return ModeAll, nil
	}
	return "", fmt.Errorf("%w: mode %q", ErrInvalidParam, s)
}

// Settings are a session's presentation parameters.
type Settings struct {
	Mode   Mode      `json:"mode"`
	Sort   SortState `json:"sort"`
	Filter Filter    `json:"filter"`
}

// ViewUpdate changes presentation parameters. Nil fields are left as they are.
type ViewUpdate struct {
	Mode       *Mode
	Key        *SortKey
	Descending *bool
	Filter     *Filter
}

// DashboardView is the prepared data handed to the presentation layer.
type DashboardView struct {
	User        string           `json:"user"`
	Tokens      int64            `json:"tokens"`
	UniqueCards int64            `json:"unique_cards"`
	Settings    Settings         `json:"settings"`
	Cards       []model.CardView `json:"cards"`
	CardsNotice string           `json:"cards_notice,omitempty"`
	History     *History         `json:"history"`
	LoadedAt    time.Time        `json:"loaded_at"`
}

// Session is one viewer's dashboard context. Its methods are serialised.
type Session struct {
	ID string

	mu       sync.Mutex
	view     *ViewState
	settings Settings

	// Unix nanoseconds of the last Acquire; read by the sweeper without mu.
	lastSeen atomic.Int64
}

func newSession(id string, loader Loader, now time.Time) *Session {
	s := &Session{
		ID:   id,
		view: NewViewState(loader),
		settings: Settings{
			Mode:   ModeOwned,
			Sort:   DefaultSortState(),
			Filter: FilterAll,
		},
	}
	s.lastSeen.Store(now.UnixNano())
	return s
}

// Select changes the selected user. The store is read only when the name differs
// from the cached selection.
func (s *Session) Select(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, reloaded, err := s.view.Select(ctx, name)
	return reloaded, err
}

// Refresh re-reads the selected user from the store.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.view.Refresh(ctx)
	return err
}

// Update applies parameter changes without touching the cached snapshot.
// A new sort key resets the direction before an explicit Descending is applied.
func (s *Session) Update(u ViewUpdate) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Mode != nil {
		s.settings.Mode = *u.Mode
	}
	if u.Key != nil {
		s.settings.Sort.SetKey(*u.Key)
	}
	if u.Descending != nil {
		s.settings.Sort.Descending = *u.Descending
	}
	if u.Filter != nil {
		s.settings.Filter = *u.Filter
	}
	return s.settings
}

// Settings returns the current presentation parameters.
func (s *Session) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// Render filters and sorts the cached card list for display.
func (s *Session) Render() (*DashboardView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	defer func() { monitor.RenderLatency.Observe(time.Since(start).Seconds()) }()

	snap, err := s.view.Current()
	if err != nil {
		return nil, err
	}

	source := snap.Collection.Owned
	if s.settings.Mode == ModeAll {
		source = snap.Collection.All
	}

	cards, err := Apply(source, Params{
		Key:        s.settings.Sort.Key,
		Descending: s.settings.Sort.Descending,
		Filter:     s.settings.Filter,
	})
	if err != nil {
		return nil, err
	}

	view := &DashboardView{
		User:        snap.User.TwitchName,
		Tokens:      snap.User.Tokens,
		UniqueCards: snap.User.TotalUniqueCards,
		Settings:    s.settings,
		Cards:       cards,
		History:     snap.History,
		LoadedAt:    snap.LoadedAt,
	}
	if len(cards) == 0 {
		view.CardsNotice = NoticeNoCards
	}
	return view, nil
}

// Status returns the view-state status and the selected name.
func (s *Session) Status() (ViewStatus, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.Status()
}

// SessionManager owns the live dashboard sessions.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	loader   Loader
	now      func() time.Time
}

// NewSessionManager creates a session manager whose sessions load through loader.
func NewSessionManager(loader Loader) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		loader:   loader,
		now:      time.Now,
	}
}

// Acquire returns the session for id, creating it when unknown. Ids that are not
// UUIDs are replaced by a fresh one. created reports whether a session was made.
func (m *SessionManager) Acquire(id string) (sess *Session, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if sess, ok := m.sessions[id]; ok {
		sess.lastSeen.Store(now.UnixNano())
		return sess, false
	}

	if !uid.IsValid(id) {
		id = uid.New()
	}
	sess = newSession(id, m.loader, now)
	m.sessions[id] = sess
	monitor.ActiveSessions.Set(float64(len(m.sessions)))
	return sess, true
}

// Get returns an existing session.
func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	return sess, ok
}

// Remove drops a session.
func (m *SessionManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	monitor.ActiveSessions.Set(float64(len(m.sessions)))
}

// Sweep removes sessions idle for at least idle and returns how many were removed.
func (m *SessionManager) Sweep(idle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-idle).UnixNano()
	removed := 0
	for id, sess := range m.sessions {
		if sess.lastSeen.Load() <= cutoff {
			delete(m.sessions, id)
			removed++
		}
	}
	monitor.ActiveSessions.Set(float64(len(m.sessions)))
	return removed
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
