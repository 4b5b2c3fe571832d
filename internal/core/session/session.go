package session

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charleschow/xi-predictor/internal/adapters/outbound/prediction_http"
	"github.com/charleschow/xi-predictor/internal/core/display"
	"github.com/charleschow/xi-predictor/internal/core/form"
	"github.com/charleschow/xi-predictor/internal/core/lineup"
	"github.com/charleschow/xi-predictor/internal/core/match"
	"github.com/charleschow/xi-predictor/internal/events"
	"github.com/charleschow/xi-predictor/internal/telemetry"
)

type Session struct {
	ID      string
	Created time.Time

	mu        sync.Mutex
	evicted   atomic.Bool
	form      *form.Form
	predictor form.Predictor
	bus       *events.Bus
}

// Do applies one change to the form. Accepted changes publish
// form_updated; rejections publish a notice and leave the form as it was.
func (s *Session) Do(action string, fn func(f *form.Form) error) (form.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	telemetry.Metrics.FormEvents.Inc()
	if err := fn(s.form); err != nil {
		s.notice(err)
		return s.form.View(), err
	}
	v := s.form.View()
	s.publish(events.EventFormUpdated, events.FormUpdatedEvent{Action: action, Form: v})
	return v, nil
}

func (s *Session) View() form.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form.View()
}

// Suggestions lists the current suggestions for a slot together with the
// state that tells "no query" and "no matches" apart.
func (s *Session) Suggestions(side form.Side, slot int) ([]string, lineup.SuggestionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel := s.form.Lineup(side)
	if slot < 0 || slot >= lineup.Size {
		return nil, lineup.NoQuery, lineup.ErrSlotOutOfRange
	}
	return slices.Collect(sel.Suggestions(slot)), sel.SuggestionState(slot), nil
}

// Result is a copy of the last successful prediction, or nil.
func (s *Session) Result() *match.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.form.Result(); r != nil {
		cp := *r
		return &cp
	}
	return nil
}

// Submit validates, calls the predictor with the session unlocked, and
// records the outcome. Only one submit per session can be outstanding.
func (s *Session) Submit(ctx context.Context) (match.Result, error) {
	s.mu.Lock()
	cfg, err := s.form.BeginSubmit()
	if err != nil {
		var ve *form.ValidationError
		if errors.As(err, &ve) {
			telemetry.Metrics.ValidationRejects.Inc()
		}
		s.notice(err)
		s.mu.Unlock()
		return match.Result{}, err
	}
	s.publish(events.EventFormUpdated, events.FormUpdatedEvent{Action: "submit", Form: s.form.View()})
	s.mu.Unlock()

	start := time.Now()
	res, err := s.predictor.Predict(ctx, cfg)
	elapsed := time.Since(start)
	if err == nil {
		res = res.WithTeams(cfg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.CompleteSubmit(res, err)

	if err != nil {
		telemetry.Warnf("session %s: prediction failed after %s: %v", s.ID, elapsed, err)
		failed := events.PredictionFailedEvent{
			Config:    cfg,
			Notice:    form.FailureNotice,
			Error:     err.Error(),
			LatencyMs: elapsed.Milliseconds(),
		}
		var ue *prediction_http.UpstreamError
		if errors.As(err, &ue) {
			failed.StatusCode = ue.StatusCode
		}
		s.publish(events.EventPredictionFailed, failed)
		s.publish(events.EventFormUpdated, events.FormUpdatedEvent{Action: "prediction_failed", Form: s.form.View()})
		return match.Result{}, err
	}

	ready := events.PredictionReadyEvent{Config: cfg, Result: res, LatencyMs: elapsed.Milliseconds()}
	if p, ok := display.Present(&res); ok {
		ready.Winner, ready.WinnerPct = p.Winner, p.WinnerPct
		telemetry.Infof("session %s: %s vs %s -> %s (%s) in %s", s.ID, cfg.Team1, cfg.Team2, p.Winner, p.WinnerPct, elapsed)
	}
	s.publish(events.EventPredictionReady, ready)
	s.publish(events.EventFormUpdated, events.FormUpdatedEvent{Action: "prediction_ready", Form: s.form.View()})
	return res, nil
}

func (s *Session) notice(err error) {
	n := events.NoticeEvent{Reason: "invalid_input", Message: err.Error()}
	var rej lineup.Rejection
	switch {
	case errors.As(err, &rej):
		n.Reason = rej.Reason()
		if _, isValidation := rej.(*form.ValidationError); !isValidation {
			telemetry.Metrics.SelectionRejects.Inc()
		}
	case errors.Is(err, form.ErrSubmitInFlight):
		n.Reason = "submit_in_flight"
	}
	s.publish(events.EventNotice, n)
}

func (s *Session) publish(t events.EventType, payload any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.New(t, s.ID, payload))
}
