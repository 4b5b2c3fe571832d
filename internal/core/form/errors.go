package form

import "errors"

var (
	ErrUnknownSide          = errors.New("side must be team1 or team2")
	ErrUnknownTeam          = errors.New("team not in catalog")
	ErrUnknownVenue         = errors.New("venue not in catalog")
	ErrTossWinnerNotPlaying = errors.New("toss winner must be one of the selected teams")
	ErrSubmitInFlight       = errors.New("a prediction request is already in flight")
)

// FailureNotice is shown for every upstream or transport failure.
const FailureNotice = "Prediction failed. Please check your backend connection."

type ValidationCode string

const (
	CodeTeamsMissing      ValidationCode = "teams_missing"
	CodeTeamsIdentical    ValidationCode = "teams_identical"
	CodeVenueMissing      ValidationCode = "venue_missing"
	CodeTossWinnerMissing ValidationCode = "toss_winner_missing"
	CodeTossWinnerInvalid ValidationCode = "toss_winner_invalid"
	CodeLineupIncomplete  ValidationCode = "lineup_incomplete"
)

var validationMessages = map[ValidationCode]string{
	CodeTeamsMissing:      "Please select both teams",
	CodeTeamsIdentical:    "Teams must be different",
	CodeVenueMissing:      "Please select a venue",
	CodeTossWinnerMissing: "Please select toss winner",
	CodeTossWinnerInvalid: "Toss winner must be one of the selected teams",
	CodeLineupIncomplete:  "Please select exactly 11 players for both teams",
}

// ValidationError blocks a submit. The form is left as it was.
type ValidationError struct {
	Code    ValidationCode
	Message string
}

func newValidationError(code ValidationCode) *ValidationError {
	return &ValidationError{Code: code, Message: validationMessages[code]}
}

func (e *ValidationError) Error() string  { return e.Message }
func (e *ValidationError) Reason() string { return string(e.Code) }
