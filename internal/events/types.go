package events

import (
	"github.com/charleschow/xi-predictor/internal/core/form"
	"github.com/charleschow/xi-predictor/internal/core/match"
)

// FormUpdatedEvent carries the full form snapshot so a listener can
// re-render without asking for it.
type FormUpdatedEvent struct {
	Action string    `json:"action"` // "set_team", "assign", "focus", ...
	Form   form.View `json:"form"`
}

// NoticeEvent is a user-facing rejection. Reason is the machine code
// ("duplicate_player", "role_conflict", "teams_identical", ...).
type NoticeEvent struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Side    string `json:"side,omitempty"`
	Slot    *int   `json:"slot,omitempty"`
}

type PredictionReadyEvent struct {
	Config    match.Config `json:"config"`
	Result    match.Result `json:"result"`
	Winner    string       `json:"winner,omitempty"`
	WinnerPct string       `json:"winner_pct,omitempty"`
	LatencyMs int64        `json:"latency_ms"`
}

// PredictionFailedEvent keeps the underlying error for history and logs;
// users only see Notice.
type PredictionFailedEvent struct {
	Config     match.Config `json:"config"`
	Notice     string       `json:"notice"`
	Error      string       `json:"error"`
	StatusCode int          `json:"status_code,omitempty"`
	LatencyMs  int64        `json:"latency_ms"`
}
