package ops

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"tropicalrevolution/internal/game"
	"tropicalrevolution/internal/persist"
	"tropicalrevolution/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSession = "6f0f3a52-7c1e-4b2f-8f5e-3b1d2c4a9e10"

func TestImportExportReset(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	defaults := game.DefaultState()

	imported, err := ImportSave(ctx, st, testSession, defaults,
		strings.NewReader(`{"year":2001,"stats":{"support":"lots","economy":12},"resources":{"budget":99}}`), nil)
	require.NoError(t, err)
	assert.Equal(t, 2001, imported.Year)
	assert.Equal(t, 12, imported.Stats.Economy)
	assert.Equal(t, defaults.Stats.Support, imported.Stats.Support, "invalid field keeps default")
	assert.Equal(t, 99, imported.Resources.Budget)

	var buf bytes.Buffer
	require.NoError(t, ExportSave(ctx, st, testSession, defaults, &buf))
	var exported game.State
	require.NoError(t, json.Unmarshal(buf.Bytes(), &exported))
	assert.Equal(t, imported, exported)

	require.NoError(t, ResetSave(ctx, st, testSession))
	_, err = st.Get(ctx, persist.Key(testSession))
	assert.ErrorIs(t, err, store.ErrNotFound)

	buf.Reset()
	require.NoError(t, ExportSave(ctx, st, testSession, defaults, &buf))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &exported))
	assert.Equal(t, defaults, exported)
}

func TestImportSave_RejectsNonObject(t *testing.T) {
	st := store.NewMemoryStore()
	_, err := ImportSave(context.Background(), st, testSession, game.DefaultState(), strings.NewReader(`[1,2]`), nil)
	require.Error(t, err)

	keys, err := st.Keys(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestInvalidSessionID(t *testing.T) {
	st := store.NewMemoryStore()
	assert.Error(t, ResetSave(context.Background(), st, "not-a-uuid"))
	assert.Error(t, ExportSave(context.Background(), st, "", game.DefaultState(), &bytes.Buffer{}))
}
