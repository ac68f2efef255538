package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"tropicalrevolution/internal/audio"
	"tropicalrevolution/internal/eventlog"
	"tropicalrevolution/internal/game"
	"tropicalrevolution/internal/metrics"
	"tropicalrevolution/internal/session"
	"tropicalrevolution/internal/zones"

	"go.uber.org/zap"
)

const SessionCookie = "tr_session"

// Handler serves the game JSON API. Every request is bound to the session
// named by the session cookie; a new session is started when it is missing.
type Handler struct {
	sessions     *session.Registry
	zones        []zones.Zone
	catalog      audio.Catalog
	cookieSecure bool
	logger       *zap.Logger
}

func NewHandler(reg *session.Registry, zs []zones.Zone, catalog audio.Catalog, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		sessions: reg,
		zones:    zs,
		catalog:  catalog,
		logger:   logger.Named("api"),
	}
}

func (h *Handler) SetCookieSecure(secure bool) {
	h.cookieSecure = secure
}

// Register mounts the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux, rr *RouteRegistry) {
	Handle(mux, rr, "GET /api/state", "current state, formatted view and music", "", h.State)
	Handle(mux, rr, "GET /api/actions", "action card catalog", "", h.Actions)
	Handle(mux, rr, "POST /api/actions/{id}", "apply an action card", "", h.ApplyAction)
	Handle(mux, rr, "POST /api/turn", "advance one turn", "", h.AdvanceTurn)
	Handle(mux, rr, "POST /api/audio/music", "toggle background music", "", h.ToggleMusic)
	Handle(mux, rr, "POST /api/audio/sfx", "toggle sound effects", "", h.ToggleSFX)
	Handle(mux, rr, "GET /api/zones", "map zones", "", h.Zones)
	Handle(mux, rr, "POST /api/zones/visit", "log a zone click", `{"name":"Capital"}`, h.VisitZone)
	Handle(mux, rr, "GET /api/log", "log entries after ?since=<id>", "", h.Log)
	Handle(mux, rr, "GET /api/log/summary", "log entry counts by type", "", h.LogSummary)
	Handle(mux, rr, "POST /api/reset", "restart from the starting state", "", h.Reset)
	if rr != nil {
		Handle(mux, rr, "GET /api/routes", "this list", "", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, rr.List())
		})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	return json.NewDecoder(r.Body).Decode(out)
}

type StateResponse struct {
	State     game.State `json:"state"`
	View      game.View  `json:"view"`
	Music     string     `json:"music,omitempty"`
	LastLogID int        `json:"lastLogId"`
}

type OutcomeResponse struct {
	OK bool `json:"ok"`
	StateResponse
	Entries []eventlog.Entry `json:"entries"`
	Sounds  []string         `json:"sounds"`
	Event   game.EventKind   `json:"event,omitempty"`
	Reason  string           `json:"reason,omitempty"`
	Error   string           `json:"error,omitempty"`
}

func (h *Handler) stateResponse(s *game.Session, st game.State) StateResponse {
	music, _ := h.catalog.BackgroundMusic(st.Audio)
	return StateResponse{
		State:     st,
		View:      st.View(),
		Music:     music,
		LastLogID: s.Log().LastID(),
	}
}

func (h *Handler) outcomeResponse(s *game.Session, out game.Outcome) OutcomeResponse {
	entries := out.Entries
	if entries == nil {
		entries = []eventlog.Entry{}
	}
	return OutcomeResponse{
		OK:            true,
		StateResponse: h.stateResponse(s, out.State),
		Entries:       entries,
		Sounds:        h.catalog.Resolve(out.Cues, out.State.Audio),
		Event:         out.Event,
	}
}

// SessionFor returns the caller's session, issuing a cookie for new players.
func (h *Handler) SessionFor(w http.ResponseWriter, r *http.Request) (*game.Session, error) {
	id := ""
	if c, err := r.Cookie(SessionCookie); err == nil && session.ValidID(c.Value) {
		id = c.Value
	}
	if id == "" {
		id = session.NewID()
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.cookieSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   365 * 24 * 60 * 60,
		})
	}
	return h.sessions.Get(r.Context(), id)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*game.Session, bool) {
	s, err := h.SessionFor(w, r)
	if err != nil {
		h.logger.Error("session unavailable", zap.Error(err))
		writeErr(w, http.StatusServiceUnavailable, "session storage unavailable")
		return nil, false
	}
	return s, true
}

// GET /api/state
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.stateResponse(s, s.State()))
}

// GET /api/actions
func (h *Handler) Actions(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	type card struct {
		game.ActionDefinition
		CostLabel string `json:"costLabel"`
	}
	defs := s.Actions()
	out := make([]card, 0, len(defs))
	for _, d := range defs {
		out = append(out, card{ActionDefinition: d, CostLabel: game.FormatCurrency(d.Cost)})
	}
	writeJSON(w, http.StatusOK, map[string]any{"actions": out})
}

// POST /api/actions/{id}
func (h *Handler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	id := game.ActionKind(strings.TrimSpace(r.PathValue("id")))

	out, err := s.ApplyAction(r.Context(), id)
	switch {
	case err == nil:
		metrics.ActionsTotal.WithLabelValues(string(id), "applied").Inc()
		writeJSON(w, http.StatusOK, h.outcomeResponse(s, out))
	case errors.Is(err, game.ErrInsufficientFunds):
		metrics.ActionsTotal.WithLabelValues(string(id), "insufficient_funds").Inc()
		resp := h.outcomeResponse(s, out)
		resp.OK = false
		resp.Reason = "insufficient_funds"
		resp.Error = "not enough budget for this action"
		writeJSON(w, http.StatusPaymentRequired, resp)
	case errors.Is(err, game.ErrUnknownAction):
		writeErr(w, http.StatusNotFound, "unknown action")
	default:
		metrics.ActionsTotal.WithLabelValues(string(id), "failed").Inc()
		h.logger.Error("apply action failed", zap.String("action", string(id)), zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "could not save game")
	}
}

// POST /api/turn
func (h *Handler) AdvanceTurn(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	out, err := s.AdvanceTurn(r.Context())
	if err != nil {
		h.logger.Error("advance turn failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "could not save game")
		return
	}
	metrics.TurnsTotal.WithLabelValues(string(out.Event)).Inc()
	if out.Event == game.EventCrisis {
		h.logger.Info("crisis rolled", zap.String("session_id", s.ID()), zap.Int("year", out.State.Year))
	}
	writeJSON(w, http.StatusOK, h.outcomeResponse(s, out))
}

// POST /api/audio/music
func (h *Handler) ToggleMusic(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, (*game.Session).ToggleMusic)
}

// POST /api/audio/sfx
func (h *Handler) ToggleSFX(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, (*game.Session).ToggleSFX)
}

func (h *Handler) toggle(w http.ResponseWriter, r *http.Request, fn func(*game.Session, context.Context) (game.Outcome, error)) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	out, err := fn(s, r.Context())
	if err != nil {
		h.logger.Error("toggle audio failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "could not save game")
		return
	}
	writeJSON(w, http.StatusOK, h.outcomeResponse(s, out))
}

// GET /api/zones
func (h *Handler) Zones(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, zones.Document{Zones: h.zones})
}

// POST /api/zones/visit
func (h *Handler) VisitZone(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		writeErr(w, http.StatusBadRequest, `missing field "name"`)
		return
	}
	z, found := zones.Find(h.zones, name)
	if !found {
		writeErr(w, http.StatusNotFound, "unknown zone")
		return
	}

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.outcomeResponse(s, s.VisitZone(z.Name)))
}

// GET /api/log?since=<id>
func (h *Handler) Log(w http.ResponseWriter, r *http.Request) {
	since := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("since")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeErr(w, http.StatusBadRequest, "since must be a non-negative integer")
			return
		}
		since = n
	}

	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": s.Log().Since(since),
		"lastId":  s.Log().LastID(),
	})
}

// GET /api/log/summary
func (h *Handler) LogSummary(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Log().Summary())
}

// POST /api/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	out, err := s.Reset(r.Context())
	if err != nil {
		h.logger.Error("reset failed", zap.Error(err))
		writeErr(w, http.StatusInternalServerError, "could not save game")
		return
	}
	writeJSON(w, http.StatusOK, h.outcomeResponse(s, out))
}
