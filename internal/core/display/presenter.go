// Package display turns a prediction result into what the user sees: the
// winner, both win probabilities, and an optional HTML chart.
package display

import (
	"fmt"
	"strings"

	"github.com/charleschow/xi-predictor/internal/core/match"
)

const (
	dividerHeavy = "════════════════════════════════════════════════"
	dividerLight = "────────────────────────────────────────────────"
)

type Presentation struct {
	Team1       string  `json:"team1"`
	Team2       string  `json:"team2"`
	Team1Prob   float64 `json:"team1_win_prob"`
	Team2Prob   float64 `json:"team2_win_prob"`
	Winner      string  `json:"winner"`
	WinnerProb  float64 `json:"winner_prob"`
	Team1Pct    string  `json:"team1_pct"`
	Team2Pct    string  `json:"team2_pct"`
	WinnerPct   string  `json:"winner_pct"`
	team1IsBest bool
}

// Present builds the presentation for r. It reports false when there is
// nothing to show: no result, or either probability missing.
//
// Team1 wins only on a strictly greater probability; an exact tie goes to
// team2.
func Present(r *match.Result) (Presentation, bool) {
	if r == nil || r.Team1WinProb == nil || r.Team2WinProb == nil {
		return Presentation{}, false
	}
	p1, p2 := *r.Team1WinProb, *r.Team2WinProb
	p := Presentation{
		Team1:     r.Team1,
		Team2:     r.Team2,
		Team1Prob: p1,
		Team2Prob: p2,
		Team1Pct:  FormatPct(p1),
		Team2Pct:  FormatPct(p2),
	}
	if p1 > p2 {
		p.Winner, p.WinnerProb, p.team1IsBest = r.Team1, p1, true
	} else {
		p.Winner, p.WinnerProb = r.Team2, p2
	}
	p.WinnerPct = FormatPct(p.WinnerProb)
	return p, true
}

// FormatPct renders a probability in [0,1] as a percentage with one decimal.
func FormatPct(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// Text is the plain rendering used in logs and the CLI tools.
func (p Presentation) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", dividerHeavy)
	fmt.Fprintf(&b, "  %s vs %s\n", p.Team1, p.Team2)
	fmt.Fprintf(&b, "%s\n", dividerLight)
	fmt.Fprintf(&b, "    %-28s%s (%s)\n", "Predicted Winner:", p.Winner, p.WinnerPct)
	fmt.Fprintf(&b, "    %-28s%s\n", p.Team1+":", p.Team1Pct)
	fmt.Fprintf(&b, "    %-28s%s\n", p.Team2+":", p.Team2Pct)
	fmt.Fprintf(&b, "%s\n", dividerHeavy)
	return b.String()
}
