package prediction_http

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned when a 2xx body is not a prediction.
var ErrMalformedResponse = errors.New("malformed prediction response")

// UpstreamError is a non-2xx response from the prediction service. Body is
// the response text, which the service uses as error detail.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("prediction service: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("prediction service: status=%d: %s", e.StatusCode, body)
}

// TransportError is a failure before any response was received: dial,
// TLS, timeout or cancellation.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }
