// Package prediction_http is the outbound client for the match prediction
// service: one POST per submit, no retry.
package prediction_http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/charleschow/xi-predictor/internal/core/match"
	"github.com/charleschow/xi-predictor/internal/telemetry"
)

const (
	predictPath = "/predict"
	maxBodySize = 1 << 20
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a client for baseURL. A zero timeout means none; a
// non-positive ratePerSec disables the limiter.
func NewClient(baseURL string, timeout time.Duration, ratePerSec float64) *Client {
	lim := rate.NewLimiter(rate.Inf, 1)
	if ratePerSec > 0 {
		burst := int(ratePerSec)
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(ratePerSec), burst)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: lim,
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// Predict sends cfg and decodes the service's answer. A non-2xx status
// yields *UpstreamError; a failure before the response yields
// *TransportError.
func (c *Client) Predict(ctx context.Context, cfg match.Config) (match.Result, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return match.Result{}, &TransportError{Op: "rate limit wait", Err: err}
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return match.Result{}, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+predictPath, bytes.NewReader(data))
	if err != nil {
		return match.Result{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	telemetry.Metrics.PredictionsSent.Inc()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.Metrics.PredictionErrors.Inc()
		return match.Result{}, &TransportError{Op: "http do", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	elapsed := time.Since(start)
	telemetry.Metrics.PredictLatency.Record(elapsed)
	if err != nil {
		telemetry.Metrics.PredictionErrors.Inc()
		return match.Result{}, &TransportError{Op: "read response", Err: err}
	}

	telemetry.Infof("prediction_http: POST %s -> %d (%s)", predictPath, resp.StatusCode, elapsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		telemetry.Metrics.PredictionErrors.Inc()
		return match.Result{}, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var res match.Result
	if err := json.Unmarshal(body, &res); err != nil {
		telemetry.Metrics.PredictionErrors.Inc()
		return match.Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return res, nil
}

// Ping reports whether the service answers at all; any HTTP status counts.
func (c *Client) Ping(ctx context.Context) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return 0, fmt.Errorf("new request: %w", err)
	}
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &TransportError{Op: "ping", Err: err}
	}
	resp.Body.Close()
	return time.Since(start), nil
}
