package game

import (
	"math/rand"
	"sync"
	"time"
)

// Roller draws the turn event roll, uniform in [0,1).
type Roller interface {
	Roll() float64
}

type RandRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandRoller(seed int64) *RandRoller {
	return &RandRoller{rng: rand.New(rand.NewSource(seed))}
}

// NewTimeSeededRoller is used when seeded_rng is off.
func NewTimeSeededRoller() *RandRoller {
	return NewRandRoller(time.Now().UnixNano())
}

func (r *RandRoller) Roll() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// FixedRoller replays the given rolls in a loop. Handy in tests.
type FixedRoller struct {
	mu    sync.Mutex
	rolls []float64
	next  int
}

func NewFixedRoller(rolls ...float64) *FixedRoller {
	if len(rolls) == 0 {
		rolls = []float64{0.5}
	}
	return &FixedRoller{rolls: rolls}
}

func (r *FixedRoller) Roll() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := r.rolls[r.next%len(r.rolls)]
	r.next++
	return v
}
