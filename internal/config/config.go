package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Version   string        `yaml:"version" json:"version"`
	Start     StartConfig   `yaml:"start" json:"start"`
	Stats     StatBounds    `yaml:"stats" json:"stats"`
	Events    EventsConfig  `yaml:"events" json:"events"`
	Actions   ActionsConfig `yaml:"actions" json:"actions"`
	SeededRNG SeededRNG     `yaml:"seeded_rng" json:"seeded_rng"`
	Log       LogConfig     `yaml:"log" json:"log"`
	Sessions  SessionConfig `yaml:"sessions" json:"sessions"`
	Zones     ZonesConfig   `yaml:"zones" json:"zones"`
	Audio     AudioConfig   `yaml:"audio" json:"audio"`
}

type StartConfig struct {
	Year       int            `yaml:"year" json:"year"`
	Difficulty string         `yaml:"difficulty" json:"difficulty"`
	Music      *bool          `yaml:"music" json:"music"`
	SFX        *bool          `yaml:"sfx" json:"sfx"`
	Stats      StartStats     `yaml:"stats" json:"stats"`
	Resources  StartResources `yaml:"resources" json:"resources"`
}

type StartStats struct {
	Stability *int `yaml:"stability" json:"stability"`
	Economy   *int `yaml:"economy" json:"economy"`
	Support   *int `yaml:"support" json:"support"`
	Military  *int `yaml:"military" json:"military"`
}

type StartResources struct {
	Budget     *int `yaml:"budget" json:"budget"`
	Materials  *int `yaml:"materials" json:"materials"`
	Population *int `yaml:"population" json:"population"`
	Energy     *int `yaml:"energy" json:"energy"`
}

type StatBounds struct {
	Min *int `yaml:"min" json:"min"`
	Max *int `yaml:"max" json:"max"`
}

type EventsConfig struct {
	Crisis EventConfig `yaml:"crisis" json:"crisis"`
	Boom   EventConfig `yaml:"boom" json:"boom"`
	Quiet  EventConfig `yaml:"quiet" json:"quiet"`
}

// EventConfig: Below is the exclusive upper bound of the roll range, Delta
// the stat change. Both are left at their defaults when absent.
type EventConfig struct {
	Below *float64 `yaml:"below" json:"below"`
	Delta *int     `yaml:"delta" json:"delta"`
	Text  string   `yaml:"text" json:"text"`
}

type ActionsConfig struct {
	InvestHealth ActionConfig `yaml:"invest_health" json:"invest_health"`
	BuildPlant   ActionConfig `yaml:"build_plant" json:"build_plant"`
	Crackdown    ActionConfig `yaml:"crackdown" json:"crackdown"`
}

type ActionConfig struct {
	Title string `yaml:"title" json:"title"`
	Cost  *int   `yaml:"cost" json:"cost"`
}

type SeededRNG struct {
	Enabled bool  `yaml:"enabled" json:"enabled"`
	Seed    int64 `yaml:"seed" json:"seed"`
}

type LogConfig struct {
	MaxEntries int `yaml:"max_entries" json:"max_entries"`
}

// SessionConfig bounds the sessions held in memory. Saves are unaffected.
type SessionConfig struct {
	MaxLoaded  int           `yaml:"max_loaded" json:"max_loaded"`
	IdleTTL    time.Duration `yaml:"idle_ttl" json:"idle_ttl"`
	SweepEvery time.Duration `yaml:"sweep_every" json:"sweep_every"`
}

type ZonesConfig struct {
	Source   string       `yaml:"source" json:"source"`
	Fallback FallbackZone `yaml:"fallback" json:"fallback"`
}

type FallbackZone struct {
	Name string  `yaml:"name" json:"name"`
	Type string  `yaml:"type" json:"type"`
	X    float64 `yaml:"x" json:"x"`
	Y    float64 `yaml:"y" json:"y"`
	W    float64 `yaml:"w" json:"w"`
	H    float64 `yaml:"h" json:"h"`
}

type AudioConfig struct {
	Base string `yaml:"base" json:"base"`
}

func (l *LogConfig) ApplyDefaults() {
	if l.MaxEntries <= 0 {
		l.MaxEntries = 200
	}
}

func (s *SessionConfig) ApplyDefaults() {
	if s.MaxLoaded <= 0 {
		s.MaxLoaded = 10000
	}
	if s.IdleTTL <= 0 {
		s.IdleTTL = 30 * time.Minute
	}
	if s.SweepEvery <= 0 {
		s.SweepEvery = time.Minute
	}
}

func (z *ZonesConfig) ApplyDefaults() {
	if z.Source == "" {
		z.Source = "data/game-data.json"
	}
	if z.Fallback.Name == "" {
		z.Fallback = FallbackZone{Name: "Capital", Type: "city", X: 45, Y: 40, W: 12, H: 8}
	}
}

func (a *AudioConfig) ApplyDefaults() {
	if a.Base == "" {
		a.Base = "/static/sounds/"
	}
}

func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = "1"
	}
	c.Log.ApplyDefaults()
	c.Sessions.ApplyDefaults()
	c.Zones.ApplyDefaults()
	c.Audio.ApplyDefaults()
}

// Default is the configuration used when no config file exists.
func Default() *Config {
	var c Config
	c.ApplyDefaults()
	return &c
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

// LoadOrDefault is Load, except that a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	c, err := Load(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	return c, err
}

func Parse(b []byte) (*Config, error) {
	var r Config
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	r.ApplyDefaults()
	return &r, nil
}
