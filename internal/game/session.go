package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tropicalrevolution/internal/audio"
	"tropicalrevolution/internal/eventlog"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnknownAction     = errors.New("unknown action")
)

const (
	insufficientFundsText = "Insufficient funds"
	zoneTextPrefix        = "Zone: "
)

// Persister writes the full state after a mutation.
type Persister interface {
	Save(ctx context.Context, s State) error
}

// Outcome is what the presentation needs after an operation: the resulting
// state, the log entries it produced and the cues to play, in order.
type Outcome struct {
	State   State            `json:"state"`
	Entries []eventlog.Entry `json:"entries"`
	Cues    []audio.Cue      `json:"cues"`
	Event   EventKind        `json:"event,omitempty"`
}

type Options struct {
	ID        string
	Rules     Rules
	Roller    Roller
	Persister Persister
	Log       *eventlog.Log
}

// Session owns one GameState. Every operation holds the session lock for the
// whole mutate-then-persist sequence, so a session has one writer at a time.
type Session struct {
	mu        sync.Mutex
	id        string
	state     State
	rules     Rules
	roller    Roller
	persister Persister
	log       *eventlog.Log
}

func NewSession(initial State, opts Options) *Session {
	if opts.Roller == nil {
		opts.Roller = NewTimeSeededRoller()
	}
	if opts.Log == nil {
		opts.Log = eventlog.New(eventlog.DefaultLimit, nil)
	}
	if len(opts.Rules.Actions) == 0 {
		opts.Rules = DefaultRules()
	}
	return &Session{
		id:        opts.ID,
		state:     initial,
		rules:     opts.Rules,
		roller:    opts.Roller,
		persister: opts.Persister,
		log:       opts.Log,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Log() *eventlog.Log { return s.log }

func (s *Session) Actions() []ActionDefinition {
	out := make([]ActionDefinition, len(s.rules.Actions))
	copy(out, s.rules.Actions)
	return out
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ApplyAction runs a budget-gated action. A rejected action logs
// "Insufficient funds", returns ErrInsufficientFunds and leaves the state and
// the store untouched.
func (s *Session) ApplyAction(ctx context.Context, id ActionKind) (Outcome, error) {
	def, ok := s.rules.Action(id)
	if !ok || !id.Known() {
		return Outcome{State: s.State()}, fmt.Errorf("%w: %q", ErrUnknownAction, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out Outcome
	if s.state.Resources.Budget < def.Cost {
		s.appendLocked(&out, eventlog.SeverityNegative, insufficientFundsText)
		out.Cues = append(out.Cues, audio.CueError)
		out.State = s.state
		return out, ErrInsufficientFunds
	}

	next := def.Apply(s.state)
	if err := s.commitLocked(ctx, next); err != nil {
		return Outcome{State: s.state}, err
	}

	s.appendLocked(&out, def.Severity, def.Summary)
	out.Cues = append(out.Cues, audio.CueClick)
	out.State = s.state
	return out, nil
}

// AdvanceTurn moves one year forward, rolls the turn event and clamps stats.
func (s *Session) AdvanceTurn(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, kind := s.rules.Turn(s.state, s.roller.Roll())
	if err := s.commitLocked(ctx, next); err != nil {
		return Outcome{State: s.state}, err
	}

	var out Outcome
	sev, text := s.rules.eventMessage(kind)
	s.appendLocked(&out, sev, text)
	out.Cues = append(out.Cues, audio.CueNextTurn)
	out.Event = kind
	out.State = s.state
	return out, nil
}

func (s *Session) ToggleMusic(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.Audio.Music = !next.Audio.Music
	if err := s.commitLocked(ctx, next); err != nil {
		return Outcome{State: s.state}, err
	}
	return Outcome{State: s.state}, nil
}

func (s *Session) ToggleSFX(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	next.Audio.SFX = !next.Audio.SFX
	if err := s.commitLocked(ctx, next); err != nil {
		return Outcome{State: s.state}, err
	}
	return Outcome{State: s.state}, nil
}

// VisitZone only logs the zone name; map markers are decorative.
func (s *Session) VisitZone(name string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out Outcome
	s.appendLocked(&out, eventlog.SeverityNeutral, zoneTextPrefix+name)
	out.State = s.state
	return out
}

// Reset puts the session back on the configured starting state.
func (s *Session) Reset(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.commitLocked(ctx, s.rules.Start); err != nil {
		return Outcome{State: s.state}, err
	}
	s.log.Clear()
	return Outcome{State: s.state}, nil
}

// commitLocked persists next and only then makes it the session state, so a
// failed write never leaves memory ahead of storage.
func (s *Session) commitLocked(ctx context.Context, next State) error {
	if s.persister != nil {
		if err := s.persister.Save(ctx, next); err != nil {
			return fmt.Errorf("persist state: %w", err)
		}
	}
	s.state = next
	return nil
}

func (s *Session) appendLocked(out *Outcome, sev eventlog.Severity, text string) {
	e := s.log.Append(sev, text)
	out.Entries = append(out.Entries, e)
	if sev == eventlog.SeverityCritical {
		out.Cues = append(out.Cues, audio.CueCrisis)
	} else {
		out.Cues = append(out.Cues, audio.CueEvent)
	}
}
