package form

import (
	"context"

	"github.com/charleschow/xi-predictor/internal/core/match"
)

// Validate checks the form in a fixed order and stops at the first
// failure. On success it returns the configuration to send.
func (f *Form) Validate() (match.Config, error) {
	switch {
	case f.team1 == "" || f.team2 == "":
		return match.Config{}, newValidationError(CodeTeamsMissing)
	case f.team1 == f.team2:
		return match.Config{}, newValidationError(CodeTeamsIdentical)
	case f.venue == "":
		return match.Config{}, newValidationError(CodeVenueMissing)
	case f.tossWinner == "":
		return match.Config{}, newValidationError(CodeTossWinnerMissing)
	case f.tossWinner != f.team1 && f.tossWinner != f.team2:
		return match.Config{}, newValidationError(CodeTossWinnerInvalid)
	case !f.xi1.Ready() || !f.xi2.Ready():
		return match.Config{}, newValidationError(CodeLineupIncomplete)
	}
	return match.Config{
		Team1: f.team1,
		Team2: f.team2,
		XI1:   f.xi1.Players(),
		XI2:   f.xi2.Players(),
		Venue: f.venue,
		Toss:  match.Toss{Winner: f.tossWinner, Decision: f.decision},
	}, nil
}

// BeginSubmit validates and marks a request as outstanding. Until
// CompleteSubmit is called further submits fail with ErrSubmitInFlight.
func (f *Form) BeginSubmit() (match.Config, error) {
	if f.submitting {
		return match.Config{}, ErrSubmitInFlight
	}
	cfg, err := f.Validate()
	if err != nil {
		return match.Config{}, err
	}
	f.submitting = true
	return cfg, nil
}

// CompleteSubmit records the outcome of the request started by BeginSubmit.
// Any error discards the previous result and sets the generic notice.
func (f *Form) CompleteSubmit(res match.Result, err error) {
	f.submitting = false
	if err != nil {
		f.result = nil
		f.notice = FailureNotice
		f.lastErr = err
		return
	}
	f.result = &res
	f.notice = ""
	f.lastErr = nil
}

// Submit runs one full submit against p. It is the single-caller form of
// BeginSubmit, Predict, CompleteSubmit.
func (f *Form) Submit(ctx context.Context, p Predictor) (match.Result, error) {
	cfg, err := f.BeginSubmit()
	if err != nil {
		return match.Result{}, err
	}
	res, err := p.Predict(ctx, cfg)
	f.CompleteSubmit(res, err)
	if err != nil {
		return match.Result{}, err
	}
	return res, nil
}

func (f *Form) Submitting() bool { return f.submitting }

// Result is the last successful prediction, nil after a failure.
func (f *Form) Result() *match.Result { return f.result }

func (f *Form) Notice() string { return f.notice }

// LastError is the error behind the current notice, for logging only.
func (f *Form) LastError() error { return f.lastErr }
