// Package persist saves and restores a session's game state in a store slot.
package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tropicalrevolution/internal/game"
	"tropicalrevolution/internal/metrics"
	"tropicalrevolution/internal/store"

	"go.uber.org/zap"
)

// KeyPrefix is the versioned slot name. Bump the suffix when the document
// shape changes incompatibly.
const KeyPrefix = "tropical_revolution_state_v1"

// Key scopes the slot to a session.
func Key(sessionID string) string {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return KeyPrefix
	}
	return KeyPrefix + ":" + sessionID
}

// Adapter implements game.Persister for one slot.
type Adapter struct {
	store  store.Store
	key    string
	logger *zap.Logger
}

var _ game.Persister = (*Adapter)(nil)

func NewAdapter(st store.Store, key string, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		store:  st,
		key:    key,
		logger: logger.Named("persist").With(zap.String("key", key)),
	}
}

func (a *Adapter) Key() string { return a.key }

// Load returns the saved state overlaid on defaults. A missing slot yields
// defaults; a corrupt one is discarded with a warning. Only storage failures
// are returned as errors.
func (a *Adapter) Load(ctx context.Context, defaults game.State) (game.State, error) {
	b, err := a.store.Get(ctx, a.key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return defaults, nil
		}
		metrics.StoreErrors.WithLabelValues("load").Inc()
		return defaults, fmt.Errorf("load %s: %w", a.key, err)
	}

	doc, err := Decode(b)
	if err != nil {
		a.logger.Warn("discarding corrupt save", zap.Error(err), zap.Int("bytes", len(b)))
		return defaults, nil
	}
	return doc.Overlay(defaults), nil
}

func (a *Adapter) Save(ctx context.Context, s game.State) error {
	b, err := Encode(s)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := a.store.Put(ctx, a.key, b); err != nil {
		metrics.StoreErrors.WithLabelValues("save").Inc()
		a.logger.Error("save failed", zap.Error(err))
		return err
	}
	return nil
}

// Clear removes the slot; the next load starts from defaults.
func (a *Adapter) Clear(ctx context.Context) error {
	if err := a.store.Delete(ctx, a.key); err != nil {
		metrics.StoreErrors.WithLabelValues("delete").Inc()
		return err
	}
	return nil
}
