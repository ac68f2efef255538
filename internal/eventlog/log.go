// Package eventlog keeps the per-session feed of game messages shown to the
// player ("Local economic boom!", "Insufficient funds", ...).
package eventlog

import (
	"sync"
	"time"
)

type Severity string

const (
	SeverityNeutral  Severity = "neutral"
	SeverityPositive Severity = "positive"
	SeverityNegative Severity = "negative"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityNeutral, SeverityPositive, SeverityNegative, SeverityCritical:
		return true
	default:
		return false
	}
}

type Entry struct {
	ID        int       `json:"id"`
	Severity  Severity  `json:"type"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

const DefaultLimit = 200

// Log is an append-only, bounded list of entries. Once the limit is reached
// the oldest entries are dropped; ids keep increasing.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	nextID  int
	limit   int
	clock   Clock
}

func New(limit int, clock Clock) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &Log{
		entries: make([]Entry, 0),
		nextID:  1,
		limit:   limit,
		clock:   clock,
	}
}

func (l *Log) Append(severity Severity, text string) Entry {
	if !severity.Valid() {
		severity = SeverityNeutral
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{
		ID:        l.nextID,
		Severity:  severity,
		Text:      text,
		Timestamp: l.clock.Now(),
	}
	l.nextID++

	l.entries = append(l.entries, e)
	if over := len(l.entries) - l.limit; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
	return e
}

// Since returns the entries with an id greater than afterID, oldest first.
func (l *Log) Since(afterID int) []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, 0)
	for _, e := range l.entries {
		if e.ID > afterID {
			out = append(out, e)
		}
	}
	return out
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// LastID is the id of the newest entry, or 0 when nothing was logged yet.
func (l *Log) LastID() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nextID - 1
}

func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make([]Entry, 0)
}
