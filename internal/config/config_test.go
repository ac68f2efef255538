package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"tropicalrevolution/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesMatchBuiltins(t *testing.T) {
	r := Default().Rules()
	assert.Equal(t, game.DefaultRules(), r)
}

func TestParseOverridesBalance(t *testing.T) {
	cfg, err := Parse([]byte(`
version: "2"
start:
  year: 1990
  difficulty: brutal
  music: false
  stats:
    stability: 40
  resources:
    budget: 500
stats:
  max: 90
events:
  crisis:
    below: 0.1
    delta: -10
  boom:
    text: Tourism surge!
actions:
  crackdown:
    title: Curfew
    cost: 750
log:
  max_entries: 5
`))
	require.NoError(t, err)
	assert.Equal(t, "2", cfg.Version)
	assert.Equal(t, 5, cfg.Log.MaxEntries)
	assert.Equal(t, "data/game-data.json", cfg.Zones.Source)
	assert.Equal(t, "Capital", cfg.Zones.Fallback.Name)

	r := cfg.Rules()
	assert.Equal(t, 1990, r.Start.Year)
	assert.Equal(t, game.DifficultyNormal, r.Start.Difficulty, "unknown difficulty keeps default")
	assert.False(t, r.Start.Audio.Music)
	assert.True(t, r.Start.Audio.SFX)
	assert.Equal(t, 40, r.Start.Stats.Stability)
	assert.Equal(t, 45, r.Start.Stats.Economy)
	assert.Equal(t, 500, r.Start.Resources.Budget)
	assert.Equal(t, 90, r.StatMax)
	assert.Equal(t, 0.1, r.Crisis.Below)
	assert.Equal(t, -10, r.Crisis.Delta)
	assert.Equal(t, 0.20, r.Boom.Below)
	assert.Equal(t, "Tourism surge!", r.Boom.Text)

	cd, ok := r.Action(game.ActionCrackdown)
	require.True(t, ok)
	assert.Equal(t, "Curfew", cd.Title)
	assert.Equal(t, 750, cd.Cost)
}

func TestParseSessionLimits(t *testing.T) {
	cfg, err := Parse([]byte(`
sessions:
  max_loaded: 50
  idle_ttl: 90s
`))
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Sessions.MaxLoaded)
	assert.Equal(t, 90*time.Second, cfg.Sessions.IdleTTL)
	assert.Equal(t, time.Minute, cfg.Sessions.SweepEvery)

	def := Default().Sessions
	assert.Equal(t, 10000, def.MaxLoaded)
	assert.Equal(t, 30*time.Minute, def.IdleTTL)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("start: [unclosed"), 0o644))
	_, err = LoadOrDefault(path)
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("TR_PORT", "8080")
	t.Setenv("TR_STORE", "SQLite")
	t.Setenv("TR_ENV", "prod")

	e, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", e.Addr())
	assert.Equal(t, "sqlite", e.Store)
	assert.True(t, e.IsProduction())
	assert.Equal(t, "data", e.DataDir)

	t.Setenv("TR_STORE", "postgres")
	_, err = LoadEnv()
	assert.Error(t, err)
}
