package config

import (
	"tropicalrevolution/internal/game"
)

// Rules turns the balance section of the config into the table a game
// session runs on. Absent values keep the built-in defaults.
func (c *Config) Rules() game.Rules {
	r := game.DefaultRules()
	if c == nil {
		return r
	}

	st := &r.Start
	if c.Start.Year > 0 {
		st.Year = c.Start.Year
	}
	if d := game.Difficulty(c.Start.Difficulty); d.Valid() {
		st.Difficulty = d
	}
	setBool(&st.Audio.Music, c.Start.Music)
	setBool(&st.Audio.SFX, c.Start.SFX)
	setInt(&st.Stats.Stability, c.Start.Stats.Stability)
	setInt(&st.Stats.Economy, c.Start.Stats.Economy)
	setInt(&st.Stats.Support, c.Start.Stats.Support)
	setInt(&st.Stats.Military, c.Start.Stats.Military)
	setInt(&st.Resources.Budget, c.Start.Resources.Budget)
	setInt(&st.Resources.Materials, c.Start.Resources.Materials)
	setInt(&st.Resources.Population, c.Start.Resources.Population)
	setInt(&st.Resources.Energy, c.Start.Resources.Energy)

	setInt(&r.StatMin, c.Stats.Min)
	setInt(&r.StatMax, c.Stats.Max)
	if r.StatMax < r.StatMin {
		r.StatMin, r.StatMax = game.StatMin, game.StatMax
	}

	applyEvent(&r.Crisis, c.Events.Crisis)
	applyEvent(&r.Boom, c.Events.Boom)
	if c.Events.Quiet.Text != "" {
		r.QuietText = c.Events.Quiet.Text
	}
	if r.Boom.Below < r.Crisis.Below {
		r.Boom.Below = r.Crisis.Below
	}

	for i := range r.Actions {
		var ac ActionConfig
		switch r.Actions[i].ID {
		case game.ActionInvestHealth:
			ac = c.Actions.InvestHealth
		case game.ActionBuildPlant:
			ac = c.Actions.BuildPlant
		case game.ActionCrackdown:
			ac = c.Actions.Crackdown
		}
		if ac.Title != "" {
			r.Actions[i].Title = ac.Title
		}
		if ac.Cost != nil && *ac.Cost >= 0 {
			r.Actions[i].Cost = *ac.Cost
		}
	}
	return r
}

func applyEvent(dst *game.EventRule, src EventConfig) {
	if src.Below != nil && *src.Below >= 0 && *src.Below <= 1 {
		dst.Below = *src.Below
	}
	setInt(&dst.Delta, src.Delta)
	if src.Text != "" {
		dst.Text = src.Text
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
