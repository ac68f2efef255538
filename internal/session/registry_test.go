package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"tropicalrevolution/internal/game"
	"tropicalrevolution/internal/persist"
	"tropicalrevolution/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func fixedRollers(rolls ...float64) func(string) game.Roller {
	return func(string) game.Roller { return game.NewFixedRoller(rolls...) }
}

func TestRegistry_LoadsSaveOnFirstUse(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	id := NewID()

	require.NoError(t, st.Put(ctx, persist.Key(id), []byte(`{"year":1990,"resources":{"budget":42}}`)))

	reg := NewRegistry(Options{Store: st})
	s, err := reg.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1990, s.State().Year)
	assert.Equal(t, 42, s.State().Resources.Budget)
	assert.Equal(t, game.DefaultState().Stats, s.State().Stats)

	again, err := reg.Get(ctx, id)
	require.NoError(t, err)
	assert.Same(t, s, again)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(Options{NewRoller: fixedRollers(0.5)})

	sa, err := reg.Get(ctx, NewID())
	require.NoError(t, err)
	sb, err := reg.Get(ctx, NewID())
	require.NoError(t, err)

	_, err = sa.AdvanceTurn(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1986, sa.State().Year)
	assert.Equal(t, 1985, sb.State().Year)
}

func TestRegistry_SweepDropsIdleAndReloadsFromStore(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	reg := NewRegistry(Options{
		NewRoller: fixedRollers(0.5),
		IdleTTL:   10 * time.Minute,
		Now:       clock.Now,
	})

	played, idle := NewID(), NewID()
	sp, err := reg.Get(ctx, played)
	require.NoError(t, err)
	_, err = sp.AdvanceTurn(ctx)
	require.NoError(t, err)
	_, err = reg.Get(ctx, idle)
	require.NoError(t, err)

	clock.Advance(6 * time.Minute)
	_, err = reg.Get(ctx, played)
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Sweep())

	clock.Advance(6 * time.Minute)
	assert.Equal(t, 1, reg.Sweep(), "only the untouched session is idle")
	assert.Equal(t, 1, reg.Len())

	clock.Advance(11 * time.Minute)
	assert.Equal(t, 1, reg.Sweep())
	assert.Equal(t, 0, reg.Len())

	reloaded, err := reg.Get(ctx, played)
	require.NoError(t, err)
	assert.NotSame(t, sp, reloaded)
	assert.Equal(t, sp.State(), reloaded.State())
	assert.Equal(t, 1986, reloaded.State().Year)

	fresh, err := reg.Get(ctx, idle)
	require.NoError(t, err)
	assert.Equal(t, game.DefaultState(), fresh.State())
}

func TestRegistry_CapacityDropsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	reg := NewRegistry(Options{MaxLoaded: 2, Now: clock.Now})

	a, b, c := NewID(), NewID(), NewID()
	sa, err := reg.Get(ctx, a)
	require.NoError(t, err)
	clock.Advance(time.Second)
	_, err = reg.Get(ctx, b)
	require.NoError(t, err)
	clock.Advance(time.Second)
	again, err := reg.Get(ctx, a)
	require.NoError(t, err)
	require.Same(t, sa, again)
	clock.Advance(time.Second)

	for i := 0; i < 50; i++ {
		_, err = reg.Get(ctx, NewID())
		require.NoError(t, err)
		clock.Advance(time.Second)
		_, err = reg.Get(ctx, a)
		require.NoError(t, err)
	}
	_, err = reg.Get(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	kept, err := reg.Get(ctx, a)
	require.NoError(t, err)
	assert.Same(t, sa, kept, "recently used session stays loaded")
}

type slowStore struct {
	*store.MemoryStore
	slowKey string
	entered chan struct{}
	release chan struct{}
}

func (s slowStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == s.slowKey {
		close(s.entered)
		<-s.release
	}
	return s.MemoryStore.Get(ctx, key)
}

func TestRegistry_LoadDoesNotBlockOtherSessions(t *testing.T) {
	ctx := context.Background()
	slow := NewID()
	st := slowStore{
		MemoryStore: store.NewMemoryStore(),
		slowKey:     persist.Key(slow),
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	reg := NewRegistry(Options{Store: st})

	fast := NewID()
	_, err := reg.Get(ctx, fast)
	require.NoError(t, err)

	loaded := make(chan error, 1)
	go func() {
		_, err := reg.Get(ctx, slow)
		loaded <- err
	}()
	<-st.entered

	done := make(chan error, 1)
	go func() {
		_, err := reg.Get(ctx, fast)
		done <- err
	}()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Get for a loaded session waited on another session's load")
	}

	close(st.release)
	require.NoError(t, <-loaded)
	assert.Equal(t, 2, reg.Len())
}

func TestRegistry_RunStopsWithContext(t *testing.T) {
	reg := NewRegistry(Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reg.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSeededRollers_PerSession(t *testing.T) {
	rollers := SeededRollers(1985)
	a, b := NewID(), NewID()

	first, replay := rollers(a), rollers(a)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first.Roll(), replay.Roll(), "same session, same sequence")
	}

	assert.NotEqual(t, rollers(a).Roll(), rollers(b).Roll())
}

func TestRegistry_RejectsInvalidIDs(t *testing.T) {
	reg := NewRegistry(Options{})
	_, err := reg.Get(context.Background(), "../../etc")
	assert.Error(t, err)
	assert.False(t, ValidID(""))
	assert.True(t, ValidID(NewID()))
	assert.NoError(t, reg.Ping(context.Background()))
}
