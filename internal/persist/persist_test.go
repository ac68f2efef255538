package persist

import (
	"context"
	"errors"
	"testing"

	"tropicalrevolution/internal/game"
	"tropicalrevolution/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct{ *store.MemoryStore }

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errors.New("unreachable") }
func (brokenStore) Put(context.Context, string, []byte) error  { return errors.New("unreachable") }

func TestKey(t *testing.T) {
	assert.Equal(t, "tropical_revolution_state_v1", Key(""))
	assert.Equal(t, "tropical_revolution_state_v1:abc", Key(" abc "))
}

func TestAdapter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter(store.NewMemoryStore(), Key("s1"), nil)

	s := game.DefaultState()
	s.Year = 2001
	s.Audio.Music = false
	s.Stats = game.Stats{Stability: 140, Economy: -5, Support: 0, Military: 100}
	s.Resources.Budget = -700
	require.NoError(t, a.Save(ctx, s))

	fresh := NewAdapter(a.store, Key("s1"), nil)
	got, err := fresh.Load(ctx, game.DefaultState())
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestAdapter_MissingSlotYieldsDefaults(t *testing.T) {
	a := NewAdapter(store.NewMemoryStore(), Key("new"), nil)
	got, err := a.Load(context.Background(), game.DefaultState())
	require.NoError(t, err)
	assert.Equal(t, game.DefaultState(), got)
}

func TestAdapter_CorruptSaveIsDiscarded(t *testing.T) {
	ctx := context.Background()
	for _, payload := range []string{`{"year":`, `[1,2,3]`, `"hello"`, `null`} {
		st := store.NewMemoryStore()
		require.NoError(t, st.Put(ctx, Key("x"), []byte(payload)))

		got, err := NewAdapter(st, Key("x"), nil).Load(ctx, game.DefaultState())
		require.NoError(t, err, payload)
		assert.Equal(t, game.DefaultState(), got, payload)
	}
}

func TestAdapter_PartialSaveOverlaysFieldByField(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Put(ctx, Key("p"), []byte(`{
		"year": 1999,
		"difficulty": "impossible",
		"audio": {"sfx": false},
		"stats": {"economy": 12, "support": "lots"},
		"resources": {"budget": 10},
		"legacy": true
	}`)))

	got, err := NewAdapter(st, Key("p"), nil).Load(ctx, game.DefaultState())
	require.NoError(t, err)

	want := game.DefaultState()
	want.Year = 1999
	want.Audio.SFX = false
	want.Stats.Economy = 12
	want.Resources.Budget = 10
	assert.Equal(t, want, got)
}

func TestAdapter_StoreFailures(t *testing.T) {
	ctx := context.Background()
	a := NewAdapter(brokenStore{store.NewMemoryStore()}, Key("b"), nil)

	got, err := a.Load(ctx, game.DefaultState())
	require.Error(t, err)
	assert.Equal(t, game.DefaultState(), got)

	assert.Error(t, a.Save(ctx, game.DefaultState()))
}

func TestAdapter_Clear(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	a := NewAdapter(st, Key("c"), nil)
	require.NoError(t, a.Save(ctx, game.DefaultState()))
	require.NoError(t, a.Clear(ctx))

	_, err := st.Get(ctx, Key("c"))
	assert.ErrorIs(t, err, store.ErrNotFound)
}
