package persist

import (
	"encoding/json"
	"errors"

	"tropicalrevolution/internal/game"
)

// Document is the persisted form read back from storage. Every field is
// optional so that a partial or older save overlays the defaults field by
// field instead of replacing whole sections.
type Document struct {
	Year       *int          `json:"year"`
	Difficulty *string       `json:"difficulty"`
	Audio      *audioDoc     `json:"audio"`
	Stats      *statsDoc     `json:"stats"`
	Resources  *resourcesDoc `json:"resources"`
}

type audioDoc struct {
	Music *bool `json:"music"`
	SFX   *bool `json:"sfx"`
}

type statsDoc struct {
	Stability *int `json:"stability"`
	Economy   *int `json:"economy"`
	Support   *int `json:"support"`
	Military  *int `json:"military"`
}

type resourcesDoc struct {
	Budget     *int `json:"budget"`
	Materials  *int `json:"materials"`
	Population *int `json:"population"`
	Energy     *int `json:"energy"`
}

// Decode parses a stored payload. The payload must be a JSON object;
// individual fields that are missing or of the wrong type are left unset so
// Overlay keeps their defaults.
func Decode(b []byte) (Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(b, &top); err != nil {
		return Document{}, err
	}
	if top == nil {
		return Document{}, errors.New("save is not an object")
	}

	d := Document{
		Year:       field[int](top, "year"),
		Difficulty: field[string](top, "difficulty"),
	}
	if m := object(top, "audio"); m != nil {
		d.Audio = &audioDoc{
			Music: field[bool](m, "music"),
			SFX:   field[bool](m, "sfx"),
		}
	}
	if m := object(top, "stats"); m != nil {
		d.Stats = &statsDoc{
			Stability: field[int](m, "stability"),
			Economy:   field[int](m, "economy"),
			Support:   field[int](m, "support"),
			Military:  field[int](m, "military"),
		}
	}
	if m := object(top, "resources"); m != nil {
		d.Resources = &resourcesDoc{
			Budget:     field[int](m, "budget"),
			Materials:  field[int](m, "materials"),
			Population: field[int](m, "population"),
			Energy:     field[int](m, "energy"),
		}
	}
	return d, nil
}

func field[T any](m map[string]json.RawMessage, key string) *T {
	raw, ok := m[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

func object(m map[string]json.RawMessage, key string) map[string]json.RawMessage {
	raw, ok := m[key]
	if !ok {
		return nil
	}
	var out map[string]json.RawMessage
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// Encode serializes the full state.
func Encode(s game.State) ([]byte, error) {
	return json.Marshal(s)
}

// Overlay copies every present, valid field of d onto base.
func (d Document) Overlay(base game.State) game.State {
	out := base
	if d.Year != nil {
		out.Year = *d.Year
	}
	if d.Difficulty != nil {
		if diff := game.Difficulty(*d.Difficulty); diff.Valid() {
			out.Difficulty = diff
		}
	}
	if a := d.Audio; a != nil {
		setBool(&out.Audio.Music, a.Music)
		setBool(&out.Audio.SFX, a.SFX)
	}
	if st := d.Stats; st != nil {
		setInt(&out.Stats.Stability, st.Stability)
		setInt(&out.Stats.Economy, st.Economy)
		setInt(&out.Stats.Support, st.Support)
		setInt(&out.Stats.Military, st.Military)
	}
	if r := d.Resources; r != nil {
		setInt(&out.Resources.Budget, r.Budget)
		setInt(&out.Resources.Materials, r.Materials)
		setInt(&out.Resources.Population, r.Population)
		setInt(&out.Resources.Energy, r.Energy)
	}
	return out
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
