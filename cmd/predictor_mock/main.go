// predictor_mock serves a fake prediction service so the form server can be
// exercised end-to-end without the real model.
//
// POST /predict returns a deterministic probability pair derived from the
// submitted configuration, so the same form always gets the same answer.
// Flags make it misbehave on demand.
//
// Usage:
//
//	go run ./cmd/predictor_mock -addr :8000
//	go run ./cmd/predictor_mock -status 503     # every call fails upstream
//	go run ./cmd/predictor_mock -delay 3s       # slow service, watch submit lock
//	go run ./cmd/predictor_mock -omit team2     # drop a probability from the body
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/charleschow/xi-predictor/internal/core/match"
	"github.com/charleschow/xi-predictor/internal/telemetry"
)

type options struct {
	status int
	delay  time.Duration
	omit   string
	raw    string
}

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	status := flag.Int("status", 0, "respond to every /predict with this status (0 = normal)")
	delay := flag.Duration("delay", 0, "sleep before answering /predict")
	omit := flag.String("omit", "", "omit a probability from the body: team1 or team2")
	raw := flag.String("raw", "", "respond with this literal body instead of JSON")
	logLevel := flag.String("log", "info", "log level")
	flag.Parse()

	telemetry.Init(telemetry.ParseLogLevel(*logLevel))

	opts := options{status: *status, delay: *delay, omit: strings.ToLower(*omit), raw: *raw}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok\n")
	})
	r.Post("/predict", predictHandler(opts))

	fmt.Println("=== Prediction Service Mock ===")
	fmt.Printf("  listening  %s\n", *addr)
	if opts.status != 0 {
		fmt.Printf("  forcing    status=%d\n", opts.status)
	}
	if opts.delay > 0 {
		fmt.Printf("  delaying   %s\n", opts.delay)
	}
	if opts.omit != "" {
		fmt.Printf("  omitting   %s_win_prob\n", opts.omit)
	}
	fmt.Println()

	if err := http.ListenAndServe(*addr, r); err != nil {
		fmt.Fprintf(os.Stderr, "listen: %v\n", err)
		os.Exit(1)
	}
}

func predictHandler(opts options) http.HandlerFunc {
	var served atomic.Int64
	return func(w http.ResponseWriter, r *http.Request) {
		n := served.Add(1)

		var cfg match.Config
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&cfg); err != nil {
			telemetry.Warnf("#%d bad request body: %v", n, err)
			http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}

		if opts.delay > 0 {
			select {
			case <-time.After(opts.delay):
			case <-r.Context().Done():
				telemetry.Infof("#%d client went away during delay", n)
				return
			}
		}

		if opts.status != 0 {
			telemetry.Infof("#%d %s vs %s -> forced status %d", n, cfg.Team1, cfg.Team2, opts.status)
			http.Error(w, fmt.Sprintf("mock configured to fail with %d", opts.status), opts.status)
			return
		}
		if opts.raw != "" {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, opts.raw)
			return
		}

		p1 := team1Probability(cfg)
		res := match.Result{Team1: cfg.Team1, Team2: cfg.Team2}
		if opts.omit != "team1" {
			res.Team1WinProb = match.Prob(p1)
		}
		if opts.omit != "team2" {
			res.Team2WinProb = match.Prob(round4(1 - p1))
		}

		telemetry.Infof("#%d %s vs %s at %s (toss %s, %s) -> %.4f / %.4f",
			n, cfg.Team1, cfg.Team2, cfg.Venue, cfg.Toss.Winner, cfg.Toss.Decision, p1, 1-p1)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(res)
	}
}

// team1Probability hashes the whole configuration into [0.25, 0.75]. The
// toss winner gets a small edge so flipping the toss visibly moves the
// number.
func team1Probability(cfg match.Config) float64 {
	h := fnv.New64a()
	for _, s := range []string{cfg.Team1, cfg.Team2, cfg.Venue} {
		io.WriteString(h, s)
		h.Write([]byte{0})
	}
	for _, p := range cfg.XI1 {
		io.WriteString(h, p)
	}
	h.Write([]byte{1})
	for _, p := range cfg.XI2 {
		io.WriteString(h, p)
	}
	io.WriteString(h, string(cfg.Toss.Decision))

	p := 0.25 + float64(h.Sum64()%5001)/10000
	switch cfg.Toss.Winner {
	case cfg.Team1:
		p += 0.02
	case cfg.Team2:
		p -= 0.02
	}
	return round4(math.Min(0.75, math.Max(0.25, p)))
}

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
