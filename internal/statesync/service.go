// Package statesync keeps an in-memory AppState durable across reloads and
// devices. Every mutation is written synchronously to a local cache; remote
// writes are debounced so only the final state of a burst of edits reaches
// the KV store.
package statesync

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/rstanikk/dopamine/internal/models"
)

// Status is the tri-state sync indicator shown in the UI.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusSynced  Status = "synced"
	StatusError   Status = "error"
)

const (
	// DebounceWindow is the quiet period after the last mutation before the
	// state is pushed remotely. A new mutation inside the window restarts it.
	DebounceWindow = 1500 * time.Millisecond
	// SyncedDisplayWindow is how long the "synced" status is held before
	// falling back to idle.
	SyncedDisplayWindow = 2 * time.Second
)

// Cache is the synchronous local store (the localStorage analog). Load
// returns nil when nothing usable is cached.
type Cache interface {
	Load() (*models.AppState, error)
	Store(state *models.AppState) error
}

// Remote is the cross-device store. Fetch returns nil when nothing is stored.
type Remote interface {
	Fetch(ctx context.Context) (*models.AppState, error)
	Push(ctx context.Context, state *models.AppState) error
}

// Service persists AppState locally on every Save and remotely after a quiet
// window. A nil Remote degrades to local-only mode with no errors surfaced.
type Service struct {
	cache  Cache
	remote Remote
	clock  Clock

	mu          sync.Mutex
	pending     Timer
	pendingGen  uint64
	statusTimer Timer
	status      Status
}

// NewService creates a Service. remote may be nil (local-only mode).
func NewService(cache Cache, remote Remote, clock Clock) *Service {
	if clock == nil {
		clock = RealClock{}
	}
	return &Service{
		cache:  cache,
		remote: remote,
		clock:  clock,
		status: StatusIdle,
	}
}

// Load returns the locally cached state immediately (nil when none) and
// fetches the remote copy in the background. When the remote copy arrives it
// is passed to onRemote: the last full fetch wins, with no conflict merge.
func (s *Service) Load(ctx context.Context, onRemote func(*models.AppState)) *models.AppState {
	cached, err := s.cache.Load()
	if err != nil {
		// A failed parse counts as no prior state.
		log.Printf("statesync: failed to load cache: %v", err)
		cached = nil
	}

	if s.remote != nil && onRemote != nil {
		go func() {
			state, err := s.remote.Fetch(ctx)
			if err != nil {
				log.Printf("statesync: remote fetch failed: %v", err)
				return
			}
			if state != nil {
				onRemote(state)
			}
		}()
	}

	return cached
}

// Save persists state. The local cache is written synchronously every time;
// the remote write is scheduled after DebounceWindow, cancelling any write
// still pending from an earlier mutation. Remote failures set the error
// status but never block local persistence.
func (s *Service) Save(state *models.AppState) {
	if err := s.cache.Store(state); err != nil {
		log.Printf("statesync: failed to write cache: %v", err)
	}

	if s.remote == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != nil {
		s.pending.Stop()
	}
	if s.statusTimer != nil {
		s.statusTimer.Stop()
		s.statusTimer = nil
	}
	s.status = StatusSyncing

	s.pendingGen++
	gen := s.pendingGen
	s.pending = s.clock.AfterFunc(DebounceWindow, func() {
		s.push(state, gen)
	})
}

// push writes state remotely. gen identifies the Save that scheduled this
// push: if a newer Save has restarted the window while the push was in
// flight, the pending slot and the status belong to that newer write and
// must be left alone, or the newer timer could no longer be cancelled.
func (s *Service) push(state *models.AppState, gen uint64) {
	err := s.remote.Push(context.Background(), state)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		log.Printf("statesync: remote push failed: %v", err)
	}
	if gen != s.pendingGen {
		return
	}
	s.pending = nil

	if err != nil {
		s.status = StatusError
		return
	}

	s.status = StatusSynced
	s.statusTimer = s.clock.AfterFunc(SyncedDisplayWindow, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.status == StatusSynced {
			s.status = StatusIdle
		}
	})
}

// Status returns the current sync status.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}
