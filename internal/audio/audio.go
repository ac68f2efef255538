// Package audio maps feedback cues to sound assets served under /static.
package audio

import "strings"

type Cue string

const (
	CueClick    Cue = "click"
	CueNextTurn Cue = "next_turn"
	CueEvent    Cue = "event"
	CueCrisis   Cue = "crisis"
	// CueError is requested on rejected actions but ships without an asset,
	// so it always resolves to nothing.
	CueError Cue = "error"
)

const DefaultBase = "/static/sounds/"

type Preferences struct {
	Music bool `json:"music"`
	SFX   bool `json:"sfx"`
}

type Catalog struct {
	Base  string
	Cues  map[Cue]string
	Music string
}

func DefaultCatalog() Catalog {
	return NewCatalog(DefaultBase)
}

func NewCatalog(base string) Catalog {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultBase
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return Catalog{
		Base: base,
		Cues: map[Cue]string{
			CueClick:    base + "click.mp3",
			CueNextTurn: base + "next_turn.mp3",
			CueEvent:    base + "event.mp3",
			CueCrisis:   base + "crisis.mp3",
		},
		Music: base + "background.mp3",
	}
}

// URL resolves a cue to its asset. Nothing plays when sound effects are off
// or the cue has no asset.
func (c Catalog) URL(cue Cue, prefs Preferences) (string, bool) {
	if !prefs.SFX {
		return "", false
	}
	u, ok := c.Cues[cue]
	return u, ok
}

// Resolve keeps the playable cues, in order.
func (c Catalog) Resolve(cues []Cue, prefs Preferences) []string {
	out := make([]string, 0, len(cues))
	for _, cue := range cues {
		if u, ok := c.URL(cue, prefs); ok {
			out = append(out, u)
		}
	}
	return out
}

func (c Catalog) BackgroundMusic(prefs Preferences) (string, bool) {
	if !prefs.Music || c.Music == "" {
		return "", false
	}
	return c.Music, true
}
