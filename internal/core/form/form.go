// Package form aggregates the match configuration: both teams, venue, toss
// and the two linked lineup selectors. It validates on submit and hands the
// configuration to a Predictor.
//
// A Form is not safe for concurrent use. BeginSubmit/CompleteSubmit let the
// caller release its lock while the prediction request is outstanding.
package form

import (
	"context"
	"fmt"

	"github.com/charleschow/xi-predictor/internal/core/catalog"
	"github.com/charleschow/xi-predictor/internal/core/lineup"
	"github.com/charleschow/xi-predictor/internal/core/match"
)

type Predictor interface {
	Predict(ctx context.Context, cfg match.Config) (match.Result, error)
}

type Side int

const (
	Team1 Side = 1
	Team2 Side = 2
)

func ParseSide(s string) (Side, error) {
	switch s {
	case "1", "team1":
		return Team1, nil
	case "2", "team2":
		return Team2, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSide, s)
}

func (s Side) String() string {
	if s == Team2 {
		return "team2"
	}
	return "team1"
}

func (s Side) other() Side {
	if s == Team1 {
		return Team2
	}
	return Team1
}

type Form struct {
	catalog *catalog.Catalog

	team1, team2 string
	venue        string
	tossWinner   string
	decision     match.Decision

	xi1, xi2 *lineup.Selector

	submitting bool
	result     *match.Result
	notice     string
	lastErr    error
}

func New(cat *catalog.Catalog) *Form {
	f := &Form{
		catalog:  cat,
		decision: match.DecisionBat,
		xi1:      lineup.New("", cat),
		xi2:      lineup.New("", cat),
	}
	lineup.Link(f.xi1, f.xi2)
	return f
}

func (f *Form) Catalog() *catalog.Catalog { return f.catalog }

func (f *Form) Lineup(side Side) *lineup.Selector {
	if side == Team2 {
		return f.xi2
	}
	return f.xi1
}

func (f *Form) Team(side Side) string {
	if side == Team2 {
		return f.team2
	}
	return f.team1
}

// SetTeam chooses a side's team ("" unselects). A change empties that
// side's lineup and clears the toss winner if it named the replaced team.
func (f *Form) SetTeam(side Side, name string) error {
	if side != Team1 && side != Team2 {
		return ErrUnknownSide
	}
	name = catalog.Canonical(name)
	if name != "" && !f.catalog.HasTeam(name) {
		return fmt.Errorf("%w: %q", ErrUnknownTeam, name)
	}
	prev := f.Team(side)
	if prev == name {
		return nil
	}
	if side == Team1 {
		f.team1 = name
	} else {
		f.team2 = name
	}
	f.Lineup(side).Reset(name)
	if prev != "" && f.tossWinner == prev {
		f.tossWinner = ""
	}
	return nil
}

func (f *Form) Venue() string { return f.venue }

func (f *Form) SetVenue(name string) error {
	name = catalog.Canonical(name)
	if name != "" && !f.catalog.HasVenue(name) {
		return fmt.Errorf("%w: %q", ErrUnknownVenue, name)
	}
	f.venue = name
	return nil
}

func (f *Form) TossWinner() string { return f.tossWinner }

// SetTossWinner accepts "" or one of the currently selected teams.
func (f *Form) SetTossWinner(name string) error {
	name = catalog.Canonical(name)
	if name != "" && name != f.team1 && name != f.team2 {
		return fmt.Errorf("%w: %q", ErrTossWinnerNotPlaying, name)
	}
	f.tossWinner = name
	return nil
}

func (f *Form) TossDecision() match.Decision { return f.decision }

func (f *Form) SetTossDecision(d match.Decision) error {
	if _, err := match.ParseDecision(string(d)); err != nil {
		return err
	}
	f.decision = d
	return nil
}

// Focus focuses a slot on one side and blurs the other side, so a single
// slot is focused across the page.
func (f *Form) Focus(side Side, slot int) error {
	if err := f.Lineup(side).Focus(slot); err != nil {
		return err
	}
	f.Lineup(side.other()).Blur()
	return nil
}

// SetSearch records a keystroke; like Focus it blurs the other side.
func (f *Form) SetSearch(side Side, slot int, text string) error {
	if err := f.Lineup(side).SetSearch(slot, text); err != nil {
		return err
	}
	f.Lineup(side.other()).Blur()
	return nil
}

// BlurAll drops focus on both sides (click or touch outside any slot).
func (f *Form) BlurAll() {
	f.xi1.Blur()
	f.xi2.Blur()
}
