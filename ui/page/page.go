// Package page renders the game shell. The HUD is filled with the starting
// state on first paint; /static/js/main.js keeps it in sync with the API.
package page

import (
	"context"
	"fmt"
	"io"
	"strings"

	"tropicalrevolution/internal/game"
	"tropicalrevolution/internal/zones"

	"github.com/a-h/templ"
)

// Backgrounds are the selectable map themes.
var Backgrounds = []string{"beach", "jungle", "mountain", "city"}

type GameData struct {
	Title   string
	Start   game.State
	Actions []game.ActionDefinition
	Zones   []zones.Zone
}

func GamePage(d GameData) templ.Component {
	if strings.TrimSpace(d.Title) == "" {
		d.Title = "Tropical Revolution"
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>`)
		p.text(d.Title)
		p.raw(`</title><link rel="stylesheet" href="/static/css/style.css"></head>`)
		p.raw(`<body class="bg-beach"><div class="banana-container" aria-hidden="true"></div><div id="game">`)

		header(p, d)
		p.raw(`<main class="layout">`)
		statsPanel(p, d.Start)
		islandMap(p, d.Zones)
		actionsPanel(p, d.Actions)
		p.raw(`</main>`)
		p.raw(`<section class="log"><h2>Events</h2><ul id="events-log"></ul></section>`)

		p.raw(`</div><audio id="background-music" loop preload="none"></audio>`)
		p.raw(`<script src="/static/js/main.js" defer></script></body></html>`)
		return p.err
	})
}

func header(p *printer, d GameData) {
	v := d.Start.View()
	p.raw(`<header class="hud"><h1>`)
	p.text(d.Title)
	p.raw(`</h1><div class="year">Year <span id="year">`)
	p.text(fmt.Sprint(v.Year))
	p.raw(`</span></div><div class="resources" id="resources">`)
	resource(p, "budget", "Budget", v.Budget)
	resource(p, "materials", "Materials", v.Materials)
	resource(p, "population", "Population", v.Population)
	resource(p, "energy", "Energy", v.Energy)
	p.raw(`</div><div class="controls">`)
	p.raw(`<select id="background-select" aria-label="Map theme">`)
	for _, bg := range Backgrounds {
		p.raw(`<option value="`)
		p.text(bg)
		p.raw(`">`)
		p.text(strings.ToUpper(bg[:1]) + bg[1:])
		p.raw(`</option>`)
	}
	p.raw(`</select>`)
	toggle(p, "music-toggle", "Music", d.Start.Audio.Music)
	toggle(p, "sfx-toggle", "SFX", d.Start.Audio.SFX)
	p.raw(`<button id="next-turn" class="primary">Next turn</button>`)
	p.raw(`</div></header>`)
}

func resource(p *printer, id, label, value string) {
	p.raw(`<span class="resource">`)
	p.text(label)
	p.raw(`: <strong id="`)
	p.text(id)
	p.raw(`">`)
	p.text(value)
	p.raw(`</strong></span>`)
}

func toggle(p *printer, id, label string, on bool) {
	state := "off"
	if on {
		state = "on"
	}
	p.raw(`<button id="`)
	p.text(id)
	p.raw(`" class="toggle" data-on="`)
	p.text(fmt.Sprint(on))
	p.raw(`">`)
	p.text(label + ": " + state)
	p.raw(`</button>`)
}

func statsPanel(p *printer, s game.State) {
	p.raw(`<section class="stats"><h2>Stats</h2>`)
	for _, st := range s.Stats.Named() {
		p.raw(`<div class="stat"><label>`)
		p.text(st.Label)
		p.raw(`</label><div class="bar"><div class="fill" id="`)
		p.text(st.Key + "-bar")
		p.raw(`" style="width:`)
		p.text(fmt.Sprintf("%d%%", st.Value))
		p.raw(`"></div></div><span id="`)
		p.text(st.Key + "-text")
		p.raw(`">`)
		p.text(fmt.Sprint(st.Value))
		p.raw(`</span></div>`)
	}
	p.raw(`</section>`)
}

func islandMap(p *printer, zs []zones.Zone) {
	p.raw(`<section id="island-map" class="map">`)
	for _, z := range zs {
		p.raw(`<button class="zone zone-`)
		p.text(z.Type)
		p.raw(`" data-zone="`)
		p.text(z.Name)
		p.raw(`" style="`)
		p.text(fmt.Sprintf("left:%g%%;top:%g%%;width:%g%%;height:%g%%", z.X, z.Y, z.W, z.H))
		p.raw(`">`)
		p.text(z.Name)
		p.raw(`</button>`)
	}
	p.raw(`</section>`)
}

func actionsPanel(p *printer, defs []game.ActionDefinition) {
	p.raw(`<section id="actions-panel" class="actions"><h2>Actions</h2>`)
	for _, d := range defs {
		p.raw(`<button class="action-card" data-action="`)
		p.text(string(d.ID))
		p.raw(`"><span class="title">`)
		p.text(d.Title)
		p.raw(`</span><span class="cost">`)
		p.text(game.FormatCurrency(d.Cost))
		p.raw(`</span></button>`)
	}
	p.raw(`</section>`)
}

// printer keeps the first write error so the render functions stay linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}
