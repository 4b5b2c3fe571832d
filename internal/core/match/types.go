// Package match defines the request and response records exchanged with
// the prediction service.
package match

import "fmt"

type Decision string

const (
	DecisionBat   Decision = "bat"
	DecisionField Decision = "field"
)

func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionBat, DecisionField:
		return Decision(s), nil
	}
	return "", fmt.Errorf("unknown toss decision %q (want bat or field)", s)
}

type Toss struct {
	Winner   string   `json:"winner"`
	Decision Decision `json:"decision"`
}

// Config is the match configuration sent to the prediction service.
type Config struct {
	Team1 string   `json:"team1"`
	Team2 string   `json:"team2"`
	XI1   []string `json:"xi1"`
	XI2   []string `json:"xi2"`
	Venue string   `json:"venue"`
	Toss  Toss     `json:"toss"`
}

// Result is the decoded prediction. Probabilities are pointers because the
// service may omit either one; nothing requires them to sum to 1.
type Result struct {
	Team1        string   `json:"team1"`
	Team2        string   `json:"team2"`
	Team1WinProb *float64 `json:"team1_win_prob"`
	Team2WinProb *float64 `json:"team2_win_prob"`
}

// Prob is a helper for building results in code and tests.
func Prob(p float64) *float64 { return &p }

// WithTeams fills team names the service left out of its response from the
// request that produced it.
func (r Result) WithTeams(cfg Config) Result {
	if r.Team1 == "" {
		r.Team1 = cfg.Team1
	}
	if r.Team2 == "" {
		r.Team2 = cfg.Team2
	}
	return r
}
