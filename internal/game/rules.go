package game

import "tropicalrevolution/internal/eventlog"

type EventKind string

const (
	EventCrisis EventKind = "crisis"
	EventBoom   EventKind = "boom"
	EventQuiet  EventKind = "quiet"
)

// EventRule fires when the turn roll is below Below (and not claimed by an
// earlier rule). Delta is added to the rule's stat.
type EventRule struct {
	Below float64
	Delta int
	Text  string
}

// Rules is the balance table a session runs on.
type Rules struct {
	Start     State
	StatMin   int
	StatMax   int
	Crisis    EventRule
	Boom      EventRule
	QuietText string
	Actions   []ActionDefinition
}

func DefaultRules() Rules {
	return Rules{
		Start:   DefaultState(),
		StatMin: StatMin,
		StatMax: StatMax,
		Crisis: EventRule{
			Below: 0.08,
			Delta: -8,
			Text:  "Massive protests! Stability fell.",
		},
		Boom: EventRule{
			Below: 0.20,
			Delta: 3,
			Text:  "Local economic boom!",
		},
		QuietText: "No significant event this turn.",
		Actions:   DefaultActions(),
	}
}

func (r Rules) Action(id ActionKind) (ActionDefinition, bool) {
	for _, a := range r.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return ActionDefinition{}, false
}

// Classify maps a roll in [0,1) onto the turn event.
func (r Rules) Classify(roll float64) EventKind {
	switch {
	case roll < r.Crisis.Below:
		return EventCrisis
	case roll < r.Boom.Below:
		return EventBoom
	default:
		return EventQuiet
	}
}

// Turn is the pure turn step: year+1, event effect, then clamp.
func (r Rules) Turn(s State, roll float64) (State, EventKind) {
	s.Year++

	kind := r.Classify(roll)
	switch kind {
	case EventCrisis:
		s.Stats.Stability += r.Crisis.Delta
	case EventBoom:
		s.Stats.Economy += r.Boom.Delta
	}

	s.Stats = s.Stats.Clamp(r.StatMin, r.StatMax)
	return s, kind
}

func (r Rules) eventMessage(kind EventKind) (eventlog.Severity, string) {
	switch kind {
	case EventCrisis:
		return eventlog.SeverityCritical, r.Crisis.Text
	case EventBoom:
		return eventlog.SeverityPositive, r.Boom.Text
	default:
		return eventlog.SeverityNeutral, r.QuietText
	}
}
