package form

import (
	"github.com/charleschow/xi-predictor/internal/core/lineup"
	"github.com/charleschow/xi-predictor/internal/core/match"
)

type View struct {
	Team1        string         `json:"team1"`
	Team2        string         `json:"team2"`
	Venue        string         `json:"venue"`
	TossWinner   string         `json:"toss_winner"`
	TossDecision match.Decision `json:"toss_decision"`
	XI1          lineup.View    `json:"xi1"`
	XI2          lineup.View    `json:"xi2"`
	Submitting   bool           `json:"submitting"`
	Result       *match.Result  `json:"result,omitempty"`
	Notice       string         `json:"notice,omitempty"`
}

func (f *Form) View() View {
	v := View{
		Team1:        f.team1,
		Team2:        f.team2,
		Venue:        f.venue,
		TossWinner:   f.tossWinner,
		TossDecision: f.decision,
		XI1:          f.xi1.View(),
		XI2:          f.xi2.View(),
		Submitting:   f.submitting,
		Notice:       f.notice,
	}
	if f.result != nil {
		r := *f.result
		v.Result = &r
	}
	return v
}
