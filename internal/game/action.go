package game

import "tropicalrevolution/internal/eventlog"

type ActionKind string

const (
	ActionInvestHealth ActionKind = "invest_health"
	ActionBuildPlant   ActionKind = "build_plant"
	ActionCrackdown    ActionKind = "crackdown"
)

// ActionDefinition describes one action card. The effect itself is picked
// by ID from the transition table below.
type ActionDefinition struct {
	ID       ActionKind        `json:"id"`
	Title    string            `json:"title"`
	Cost     int               `json:"cost"`
	Severity eventlog.Severity `json:"type"`
	Summary  string            `json:"summary"`
}

type transition func(s State, cost int) State

var transitions = map[ActionKind]transition{
	ActionInvestHealth: investHealth,
	ActionBuildPlant:   buildPlant,
	ActionCrackdown:    crackdown,
}

func investHealth(s State, cost int) State {
	s.Stats.Support += 3
	s.Resources.Budget -= cost
	return s
}

func buildPlant(s State, cost int) State {
	s.Stats.Economy += 4
	s.Resources.Budget -= cost
	s.Resources.Energy += 500
	return s
}

func crackdown(s State, cost int) State {
	s.Stats.Stability += 2
	s.Stats.Support -= 5
	s.Resources.Budget -= cost
	return s
}

// Apply returns the state after the action's effect. It does not check the
// budget and does not clamp stats.
func (d ActionDefinition) Apply(s State) State {
	fn, ok := transitions[d.ID]
	if !ok {
		return s
	}
	return fn(s, d.Cost)
}

func (k ActionKind) Known() bool {
	_, ok := transitions[k]
	return ok
}

func DefaultActions() []ActionDefinition {
	return []ActionDefinition{
		{
			ID:       ActionInvestHealth,
			Title:    "Invest in Health",
			Cost:     2000,
			Severity: eventlog.SeverityPositive,
			Summary:  "Invested in health: support +3",
		},
		{
			ID:       ActionBuildPlant,
			Title:    "Build Power Plant",
			Cost:     3000,
			Severity: eventlog.SeverityPositive,
			Summary:  "Power plant built: economy +4, energy +500",
		},
		{
			ID:       ActionCrackdown,
			Title:    "Local Crackdown",
			Cost:     1000,
			Severity: eventlog.SeverityNegative,
			Summary:  "Crackdown operation: stability +2, support -5",
		},
	}
}
