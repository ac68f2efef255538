package game

import "tropicalrevolution/internal/audio"

type Difficulty string

// DifficultyNormal is the only difficulty in play; nothing reads it yet.
const DifficultyNormal Difficulty = "normal"

func (d Difficulty) Valid() bool {
	return d == DifficultyNormal
}

// Stats are the governance metrics. They are kept inside [StatMin, StatMax]
// after every turn, but actions may push them outside until the next turn.
type Stats struct {
	Stability int `json:"stability"`
	Economy   int `json:"economy"`
	Support   int `json:"support"`
	Military  int `json:"military"`
}

// Resources are unbounded counters; budget may go negative.
type Resources struct {
	Budget     int `json:"budget"`
	Materials  int `json:"materials"`
	Population int `json:"population"`
	Energy     int `json:"energy"`
}

// State is the full record persisted for one session.
type State struct {
	Year       int               `json:"year"`
	Difficulty Difficulty        `json:"difficulty"`
	Audio      audio.Preferences `json:"audio"`
	Stats      Stats             `json:"stats"`
	Resources  Resources         `json:"resources"`
}

const (
	StartYear = 1985
	StatMin   = 0
	StatMax   = 100
)

func DefaultState() State {
	return State{
		Year:       StartYear,
		Difficulty: DifficultyNormal,
		Audio:      audio.Preferences{Music: true, SFX: true},
		Stats: Stats{
			Stability: 65,
			Economy:   45,
			Support:   70,
			Military:  85,
		},
		Resources: Resources{
			Budget:     15000,
			Materials:  2500,
			Population: 125000,
			Energy:     1200,
		},
	}
}

// Clamp saturates every stat independently into [lo, hi].
func (s Stats) Clamp(lo, hi int) Stats {
	return Stats{
		Stability: clamp(s.Stability, lo, hi),
		Economy:   clamp(s.Economy, lo, hi),
		Support:   clamp(s.Support, lo, hi),
		Military:  clamp(s.Military, lo, hi),
	}
}

// Named lists the stats in display order.
func (s Stats) Named() []NamedStat {
	return []NamedStat{
		{Key: "stability", Label: "Stability", Value: s.Stability},
		{Key: "economy", Label: "Economy", Value: s.Economy},
		{Key: "support", Label: "Support", Value: s.Support},
		{Key: "military", Label: "Military", Value: s.Military},
	}
}

type NamedStat struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
