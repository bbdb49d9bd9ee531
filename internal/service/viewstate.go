package service

import (
	"context"
	"time"

	"mgacha-dashboard/internal/model"
)

// ViewStatus is the state of a ViewState.
type ViewStatus int

const (
	// Unloaded means no user has been loaded yet, or the last load failed.
	Unloaded ViewStatus = iota
	// Loaded means the snapshot of the selected user is cached.
	Loaded
)

func (s ViewStatus) String() string {
	if s == Loaded {
		return "loaded"
	}
	return "unloaded"
}

// Snapshot is everything the dashboard shows for one user, as read at selection time.
type Snapshot struct {
	User       model.User  `json:"user"`
	Collection *Collection `json:"collection"`
	History    *History    `json:"history"`
	LoadedAt   time.Time   `json:"loaded_at"`
}

// Loader reads a fresh snapshot for a display name.
type Loader interface {
	Load(ctx context.Context, name string) (*Snapshot, error)
}

// ViewState caches at most one snapshot, keyed by the selected display name.
//
//	Unloaded  --Select(y)-->           Loaded(y)   reload
//	Loaded(x) --Select(y), y != x-->   Loaded(y)   reload
//	Loaded(y) --Select(y)-->           Loaded(y)   no-op
//
// A failed load leaves the state Unloaded. ViewState is not safe for concurrent use.
type ViewState struct {
	loader Loader
	status ViewStatus
	name   string
	snap   *Snapshot
}

// NewViewState creates an Unloaded view state.
func NewViewState(loader Loader) *ViewState {
	return &ViewState{loader: loader}
}

// Select makes name the current user, reloading only if the selection changed.
// It reports whether the store was read.
func (v *ViewState) Select(ctx context.Context, name string) (*Snapshot, bool, error) {
	if v.status == Loaded && v.name == name {
		return v.snap, false, nil
	}

	snap, err := v.reload(ctx, name)
	return snap, true, err
}

// Refresh reloads the current user regardless of the cache.
func (v *ViewState) Refresh(ctx context.Context) (*Snapshot, error) {
	if v.name == "" {
		return nil, ErrNoSelection
	}
	return v.reload(ctx, v.name)
}

func (v *ViewState) reload(ctx context.Context, name string) (*Snapshot, error) {
	// Drop the previous user's data before touching the store.
	v.status = Unloaded
	v.snap = nil
	v.name = name

	snap, err := v.loader.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	v.snap = snap
	v.status = Loaded
	return snap, nil
}

// Current returns the cached snapshot, or ErrNoSelection if nothing is loaded.
func (v *ViewState) Current() (*Snapshot, error) {
	if v.status != Loaded {
		return nil, ErrNoSelection
	}
	return v.snap, nil
}

// Status returns the state and the selected name.
func (v *ViewState) Status() (ViewStatus, string) {
	return v.status, v.name
}
