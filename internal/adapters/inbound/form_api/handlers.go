package form_api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/charleschow/xi-predictor/internal/core/display"
	"github.com/charleschow/xi-predictor/internal/core/form"
	"github.com/charleschow/xi-predictor/internal/core/lineup"
	"github.com/charleschow/xi-predictor/internal/core/match"
	"github.com/charleschow/xi-predictor/internal/core/session"
	"github.com/charleschow/xi-predictor/internal/telemetry"
)

const maxRequestBody = 64 << 10

type sessionResponse struct {
	ID      string    `json:"id"`
	Created time.Time `json:"created"`
	Form    form.View `json:"form"`
}

type predictResponse struct {
	Result       match.Result          `json:"result"`
	Presentation *display.Presentation `json:"presentation,omitempty"`
}

type suggestionsResponse struct {
	Slot        int                    `json:"slot"`
	Suggestions []string               `json:"suggestions"`
	State       lineup.SuggestionState `json:"state"`
}

type catalogReloadResponse struct {
	Teams   int `json:"teams"`
	Venues  int `json:"venues"`
	Players int `json:"players"`
}

func (h *Handler) healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"adapter":  "form_api",
		"sessions": h.sessions.Len(),
	})
}

// --- catalog ---

func (h *Handler) getCatalog(w http.ResponseWriter, _ *http.Request) {
	success(w, h.catalog.Current().Snapshot())
}

func (h *Handler) reloadCatalog(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.Reload(r.Context())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "catalog_invalid", err.Error())
		return
	}
	success(w, catalogReloadResponse{
		Teams:   len(c.Teams()),
		Venues:  len(c.Venues()),
		Players: len(c.Players()),
	})
}

// --- sessions ---

func (h *Handler) createSession(w http.ResponseWriter, _ *http.Request) {
	s := h.sessions.Create()
	created(w, sessionResponse{ID: s.ID, Created: s.Created, Form: s.View()})
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	success(w, sessionResponse{ID: s.ID, Created: s.Created, Form: s.View()})
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Delete(chi.URLParam(r, "sessionID")) {
		fail(w, session.ErrNotFound)
		return
	}
	noContent(w)
}

// --- match fields ---

func (h *Handler) setTeam(w http.ResponseWriter, r *http.Request) {
	side, err := parseSide(r)
	if err != nil {
		fail(w, err)
		return
	}
	var req struct {
		Team string `json:"team"`
	}
	if err := decode(w, r, &req); err != nil {
		fail(w, err)
		return
	}
	h.apply(w, r, "set_team", func(f *form.Form) error { return f.SetTeam(side, req.Team) })
}

func (h *Handler) setVenue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Venue string `json:"venue"`
	}
	if err := decode(w, r, &req); err != nil {
		fail(w, err)
		return
	}
	h.apply(w, r, "set_venue", func(f *form.Form) error { return f.SetVenue(req.Venue) })
}

// setToss updates the winner and, when given, the decision. Both are
// checked before either is applied.
func (h *Handler) setToss(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Winner   *string `json:"winner"`
		Decision string  `json:"decision"`
	}
	if err := decode(w, r, &req); err != nil {
		fail(w, err)
		return
	}
	var decision match.Decision
	if req.Decision != "" {
		d, err := match.ParseDecision(req.Decision)
		if err != nil {
			fail(w, badInput{err})
			return
		}
		decision = d
	}
	h.apply(w, r, "set_toss", func(f *form.Form) error {
		if req.Winner != nil {
			if err := f.SetTossWinner(*req.Winner); err != nil {
				return err
			}
		}
		if decision != "" {
			return f.SetTossDecision(decision)
		}
		return nil
	})
}

func (h *Handler) blurAll(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, "blur", func(f *form.Form) error {
		f.BlurAll()
		return nil
	})
}

// --- lineups ---

func (h *Handler) blur(w http.ResponseWriter, r *http.Request) {
	side, err := parseSide(r)
	if err != nil {
		fail(w, err)
		return
	}
	h.apply(w, r, "blur", func(f *form.Form) error {
		f.Lineup(side).Blur()
		return nil
	})
}

func (h *Handler) focus(w http.ResponseWriter, r *http.Request) {
	side, slot, err := parseSlot(r)
	if err != nil {
		fail(w, err)
		return
	}
	h.apply(w, r, "focus", func(f *form.Form) error { return f.Focus(side, slot) })
}

func (h *Handler) setSearch(w http.ResponseWriter, r *http.Request) {
	side, slot, err := parseSlot(r)
	if err != nil {
		fail(w, err)
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(w, r, &req); err != nil {
		fail(w, err)
		return
	}
	h.apply(w, r, "search", func(f *form.Form) error { return f.SetSearch(side, slot, req.Text) })
}

func (h *Handler) assign(w http.ResponseWriter, r *http.Request) {
	side, slot, err := parseSlot(r)
	if err != nil {
		fail(w, err)
		return
	}
	var req struct {
		Player string `json:"player"`
	}
	if err := decode(w, r, &req); err != nil {
		fail(w, err)
		return
	}
	h.apply(w, r, "assign", func(f *form.Form) error { return f.Lineup(side).Assign(slot, req.Player) })
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	side, slot, err := parseSlot(r)
	if err != nil {
		fail(w, err)
		return
	}
	h.apply(w, r, "clear", func(f *form.Form) error { return f.Lineup(side).Clear(slot) })
}

func (h *Handler) setRole(w http.ResponseWriter, r *http.Request) {
	side, slot, err := parseSlot(r)
	if err != nil {
		fail(w, err)
		return
	}
	var req struct {
		Role string `json:"role"`
	}
	if err := decode(w, r, &req); err != nil {
		fail(w, err)
		return
	}
	role, err := lineup.ParseRole(req.Role)
	if err != nil {
		fail(w, badInput{err})
		return
	}
	h.apply(w, r, "set_role", func(f *form.Form) error { return f.Lineup(side).SetRole(slot, role) })
}

func (h *Handler) suggestions(w http.ResponseWriter, r *http.Request) {
	side, slot, err := parseSlot(r)
	if err != nil {
		fail(w, err)
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	list, state, err := s.Suggestions(side, slot)
	if err != nil {
		fail(w, err)
		return
	}
	if list == nil {
		list = []string{}
	}
	success(w, suggestionsResponse{Slot: slot, Suggestions: list, State: state})
}

// --- prediction ---

func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	// A closed tab must not abort a request the form already shows as pending.
	res, err := s.Submit(context.WithoutCancel(r.Context()))
	if err != nil {
		fail(w, err)
		return
	}
	resp := predictResponse{Result: res}
	if p, ok := display.Present(&res); ok {
		resp.Presentation = &p
	}
	success(w, resp)
}

// result answers with data=null when there is nothing to show.
func (h *Handler) result(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	p, ok := display.Present(s.Result())
	if !ok {
		success(w, nil)
		return
	}
	success(w, p)
}

func (h *Handler) resultChart(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	p, ok := display.Present(s.Result())
	if !ok {
		fail(w, errNoResult)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := display.RenderChart(w, p, h.chart); err != nil {
		telemetry.Warnf("form_api: chart for session=%s: %v", s.ID, err)
	}
}

func (h *Handler) recentPredictions(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		fail(w, errHistoryDisabled)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			fail(w, badInput{fmt.Errorf("limit must be 1..500, got %q", v)})
			return
		}
		limit = n
	}
	recs, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		fail(w, err)
		return
	}
	success(w, recs)
}

// --- websocket ---

// watch upgrades to the session's event feed after checking the session
// exists.
func (h *Handler) watch(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	if id == "" {
		fail(w, badInput{errMissingSessionID})
		return
	}
	if _, err := h.sessions.Get(id); err != nil {
		fail(w, err)
		return
	}
	h.feed.HandleWS(w, r)
}

// --- helpers ---

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := h.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		fail(w, err)
		return nil, false
	}
	return s, true
}

// apply runs one form change and answers with the updated form.
func (h *Handler) apply(w http.ResponseWriter, r *http.Request, action string, fn func(*form.Form) error) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	v, err := s.Do(action, fn)
	if err != nil {
		fail(w, err)
		return
	}
	success(w, v)
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(body).Decode(v); err != nil && err != io.EOF {
		return badInput{fmt.Errorf("decode request: %w", err)}
	}
	return nil
}

func parseSide(r *http.Request) (form.Side, error) {
	side, err := form.ParseSide(chi.URLParam(r, "side"))
	if err != nil {
		return 0, badInput{err}
	}
	return side, nil
}

// parseSlot reads the side and the zero-based slot index.
func parseSlot(r *http.Request) (form.Side, int, error) {
	side, err := parseSide(r)
	if err != nil {
		return 0, 0, err
	}
	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		return 0, 0, badInput{fmt.Errorf("slot must be an integer: %w", err)}
	}
	if slot < 0 || slot >= lineup.Size {
		return 0, 0, badInput{fmt.Errorf("%w: %d", lineup.ErrSlotOutOfRange, slot)}
	}
	return side, slot, nil
}
