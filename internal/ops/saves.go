// Package ops holds maintenance tasks run by cmd/ops against the save store.
package ops

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"tropicalrevolution/internal/game"
	"tropicalrevolution/internal/persist"
	"tropicalrevolution/internal/session"
	"tropicalrevolution/internal/store"

	"go.uber.org/zap"
)

// ExportSave writes the session's effective state (save overlaid on
// defaults) as indented JSON.
func ExportSave(ctx context.Context, st store.Store, sessionID string, defaults game.State, w io.Writer) error {
	key, err := sessionKey(sessionID)
	if err != nil {
		return err
	}
	s, err := persist.NewAdapter(st, key, nil).Load(ctx, defaults)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// ImportSave reads a state document, keeps its valid fields over defaults and
// stores the result in the session's slot. Unlike a game load, a document that
// is not a JSON object is rejected rather than ignored.
func ImportSave(ctx context.Context, st store.Store, sessionID string, defaults game.State, r io.Reader, logger *zap.Logger) (game.State, error) {
	key, err := sessionKey(sessionID)
	if err != nil {
		return game.State{}, err
	}
	b, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return game.State{}, err
	}
	doc, err := persist.Decode(b)
	if err != nil {
		return game.State{}, fmt.Errorf("import %s: %w", key, err)
	}
	s := doc.Overlay(defaults)
	if err := persist.NewAdapter(st, key, logger).Save(ctx, s); err != nil {
		return game.State{}, err
	}
	return s, nil
}

// ResetSave deletes the session's slot.
func ResetSave(ctx context.Context, st store.Store, sessionID string) error {
	key, err := sessionKey(sessionID)
	if err != nil {
		return err
	}
	return persist.NewAdapter(st, key, nil).Clear(ctx)
}

func sessionKey(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if !session.ValidID(sessionID) {
		return "", fmt.Errorf("invalid session id %q", sessionID)
	}
	return persist.Key(sessionID), nil
}
