package form_api

import (
	"errors"
	"net/http"

	"github.com/charleschow/xi-predictor/internal/adapters/outbound/prediction_http"
	"github.com/charleschow/xi-predictor/internal/core/form"
	"github.com/charleschow/xi-predictor/internal/core/lineup"
	"github.com/charleschow/xi-predictor/internal/core/session"
)

var (
	errNoResult         = errors.New("no prediction result yet")
	errHistoryDisabled  = errors.New("prediction history is disabled")
	errMissingSessionID = errors.New("missing ?session= query param")
)

// badInput marks request decoding and path parsing failures.
type badInput struct{ err error }

func (e badInput) Error() string { return e.err.Error() }
func (e badInput) Unwrap() error { return e.err }

// classify maps an error to its HTTP status, reason code and the message
// shown to the user. Upstream and transport failures only ever expose the
// generic failure notice.
func classify(err error) (status int, reason, message string) {
	var (
		ve  *form.ValidationError
		dup *lineup.DuplicatePlayerError
		rc  *lineup.RoleConflictError
		ue  *prediction_http.UpstreamError
		te  *prediction_http.TransportError
		bad badInput
	)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, "session_not_found", err.Error()
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity, ve.Reason(), ve.Message
	case errors.As(err, &dup):
		return http.StatusConflict, dup.Reason(), dup.Error()
	case errors.As(err, &rc):
		return http.StatusConflict, rc.Reason(), rc.Error()
	case errors.Is(err, form.ErrSubmitInFlight):
		return http.StatusConflict, "submit_in_flight", err.Error()
	case errors.As(err, &ue):
		return http.StatusBadGateway, "upstream_error", form.FailureNotice
	case errors.As(err, &te):
		return http.StatusBadGateway, "transport_error", form.FailureNotice
	case errors.Is(err, prediction_http.ErrMalformedResponse):
		return http.StatusBadGateway, "upstream_error", form.FailureNotice
	case errors.Is(err, errNoResult):
		return http.StatusNotFound, "no_result", err.Error()
	case errors.Is(err, errHistoryDisabled):
		return http.StatusServiceUnavailable, "history_disabled", err.Error()
	case errors.As(err, &bad),
		errors.Is(err, form.ErrUnknownSide),
		errors.Is(err, form.ErrUnknownTeam),
		errors.Is(err, form.ErrUnknownVenue),
		errors.Is(err, form.ErrTossWinnerNotPlaying),
		errors.Is(err, lineup.ErrSlotOutOfRange),
		errors.Is(err, lineup.ErrUnknownPlayer),
		errors.Is(err, lineup.ErrEmptySlot):
		return http.StatusBadRequest, "invalid_input", err.Error()
	}
	return http.StatusInternalServerError, "internal", err.Error()
}

func fail(w http.ResponseWriter, err error) {
	status, reason, message := classify(err)
	writeError(w, status, reason, message)
}
