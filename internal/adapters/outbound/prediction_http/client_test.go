package prediction_http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/charleschow/xi-predictor/internal/core/match"
)

func sampleConfig() match.Config {
	xi := func(prefix string) []string {
		out := make([]string, 11)
		for i := range out {
			out[i] = prefix + string(rune('A'+i))
		}
		return out
	}
	return match.Config{
		Team1: "Chennai Super Kings",
		Team2: "Mumbai Indians",
		XI1:   xi("csk-"),
		XI2:   xi("mi-"),
		Venue: "Wankhede Stadium, Mumbai",
		Toss:  match.Toss{Winner: "Mumbai Indians", Decision: match.DecisionField},
	}
}

func TestPredictSendsWireFormat(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"team1":"Chennai Super Kings","team2":"Mumbai Indians","team1_win_prob":0.62,"team2_win_prob":0.38}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second, 0)
	res, err := c.Predict(context.Background(), sampleConfig())
	require.NoError(t, err)

	assert.Equal(t, "Chennai Super Kings", res.Team1)
	require.NotNil(t, res.Team1WinProb)
	assert.InDelta(t, 0.62, *res.Team1WinProb, 1e-9)
	assert.InDelta(t, 0.38, *res.Team2WinProb, 1e-9)

	assert.Equal(t, "Mumbai Indians", got["team2"])
	assert.Len(t, got["xi1"], 11)
	assert.Len(t, got["xi2"], 11)
	assert.Equal(t, map[string]any{"winner": "Mumbai Indians", "decision": "field"}, got["toss"])
}

func TestPredictNon2xxIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, 0).Predict(context.Background(), sampleConfig())
	var ue *UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusServiceUnavailable, ue.StatusCode)
	assert.Contains(t, ue.Body, "model not loaded")
	assert.Contains(t, ue.Error(), "status=503")
}

func TestPredictConnectionFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second, 0).Predict(context.Background(), sampleConfig())
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestPredictTimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewClient(srv.URL, 50*time.Millisecond, 0).Predict(context.Background(), sampleConfig())
	var te *TransportError
	assert.ErrorAs(t, err, &te)
}

func TestPredictMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second, 0).Predict(context.Background(), sampleConfig())
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestPredictMissingProbabilityDecodesAsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"team1":"A","team2":"B","team1_win_prob":0.5}`))
	}))
	defer srv.Close()

	res, err := NewClient(srv.URL, time.Second, 0).Predict(context.Background(), sampleConfig())
	require.NoError(t, err)
	assert.NotNil(t, res.Team1WinProb)
	assert.Nil(t, res.Team2WinProb)
}

func TestPredictCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL, time.Second, 1).Predict(ctx, sampleConfig())
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, context.Canceled)
}
