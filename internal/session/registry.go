// Package session keeps the game sessions of anonymous players, keyed by the
// id stored in their session cookie.
package session

import (
	"context"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"

	"tropicalrevolution/internal/eventlog"
	"tropicalrevolution/internal/game"
	"tropicalrevolution/internal/metrics"
	"tropicalrevolution/internal/persist"
	"tropicalrevolution/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultMaxLoaded = 10000
	DefaultIdleTTL   = 30 * time.Minute
)

type Options struct {
	Store     store.Store
	Rules     game.Rules
	LogLimit  int
	Clock     eventlog.Clock
	NewRoller func(id string) game.Roller

	// MaxLoaded caps the sessions held in memory; the least recently used
	// one is dropped to make room.
	MaxLoaded int

	// IdleTTL is how long an untouched session stays loaded before Sweep
	// drops it.
	IdleTTL time.Duration

	Now    func() time.Time
	Logger *zap.Logger
}

type entry struct {
	s        *game.Session
	lastUsed time.Time
}

// Registry holds the loaded sessions. Dropping one only frees memory: every
// state change is already in the store, so the next Get rebuilds it.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	opts     Options
	logger   *zap.Logger
}

func NewRegistry(opts Options) *Registry {
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if len(opts.Rules.Actions) == 0 {
		opts.Rules = game.DefaultRules()
	}
	if opts.NewRoller == nil {
		opts.NewRoller = func(string) game.Roller { return game.NewTimeSeededRoller() }
	}
	if opts.MaxLoaded <= 0 {
		opts.MaxLoaded = DefaultMaxLoaded
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*entry),
		opts:     opts,
		logger:   opts.Logger.Named("session"),
	}
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id looks like one NewID produced.
func ValidID(id string) bool {
	_, err := uuid.Parse(strings.TrimSpace(id))
	return err == nil
}

// SeededRollers gives each session its own deterministic roller derived
// from seed and the session id, so a run can be replayed per player.
func SeededRollers(seed int64) func(id string) game.Roller {
	return func(id string) game.Roller {
		u, err := uuid.Parse(id)
		if err != nil {
			return game.NewRandRoller(seed)
		}
		return game.NewRandRoller(seed ^ int64(binary.BigEndian.Uint64(u[:8])))
	}
}

// Get returns the session for id, loading its save on first use. The save
// is read without holding the registry lock.
func (r *Registry) Get(ctx context.Context, id string) (*game.Session, error) {
	id = strings.TrimSpace(id)
	if !ValidID(id) {
		return nil, fmt.Errorf("invalid session id %q", id)
	}

	if s, ok := r.touch(id); ok {
		return s, nil
	}

	adapter := persist.NewAdapter(r.opts.Store, persist.Key(id), r.opts.Logger)
	initial, err := adapter.Load(ctx, r.opts.Rules.Start)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	s := game.NewSession(initial, game.Options{
		ID:        id,
		Rules:     r.opts.Rules,
		Roller:    r.opts.NewRoller(id),
		Persister: adapter,
		Log:       eventlog.New(r.opts.LogLimit, r.opts.Clock),
	})

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another request may have loaded it meanwhile.
	if e, ok := r.sessions[id]; ok {
		e.lastUsed = r.opts.Now()
		return e.s, nil
	}
	for len(r.sessions) >= r.opts.MaxLoaded {
		r.evictOldestLocked()
	}
	r.sessions[id] = &entry{s: s, lastUsed: r.opts.Now()}
	metrics.ActiveSessions.Set(float64(len(r.sessions)))
	r.logger.Debug("session loaded", zap.String("session_id", id), zap.Int("year", initial.Year))
	return s, nil
}

func (r *Registry) touch(id string) (*game.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastUsed = r.opts.Now()
	return e.s, true
}

func (r *Registry) evictOldestLocked() {
	var (
		oldestID string
		oldest   time.Time
	)
	for id, e := range r.sessions {
		if oldestID == "" || e.lastUsed.Before(oldest) {
			oldestID, oldest = id, e.lastUsed
		}
	}
	if oldestID == "" {
		return
	}
	delete(r.sessions, oldestID)
	metrics.SessionEvictions.WithLabelValues("capacity").Inc()
}

// Sweep drops sessions idle for longer than IdleTTL and returns how many
// were dropped.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.opts.Now().Add(-r.opts.IdleTTL)
	n := 0
	for id, e := range r.sessions {
		if e.lastUsed.Before(cutoff) {
			delete(r.sessions, id)
			n++
		}
	}
	if n > 0 {
		metrics.SessionEvictions.WithLabelValues("idle").Add(float64(n))
		metrics.ActiveSessions.Set(float64(len(r.sessions)))
	}
	return n
}

// Run sweeps idle sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Debug("idle sessions dropped", zap.Int("count", n), zap.Int("loaded", r.Len()))
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Ping checks the backing store.
func (r *Registry) Ping(ctx context.Context) error {
	return r.opts.Store.Ping(ctx)
}
