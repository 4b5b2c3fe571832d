package history

import (
	"encoding/json"

	"github.com/charleschow/xi-predictor/internal/core/match"
)

func fillConfig(r *Record, cfg match.Config) {
	r.Team1, r.Team2 = cfg.Team1, cfg.Team2
	r.Venue = cfg.Venue
	r.TossWinner, r.TossDecision = cfg.Toss.Winner, string(cfg.Toss.Decision)
	if data, err := json.Marshal(cfg); err == nil {
		r.Request = string(data)
	}
}
