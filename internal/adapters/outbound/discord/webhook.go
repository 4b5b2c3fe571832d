package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charleschow/xi-predictor/internal/core/display"
	"github.com/charleschow/xi-predictor/internal/core/match"
	"github.com/charleschow/xi-predictor/internal/events"
	"github.com/charleschow/xi-predictor/internal/telemetry"
)

type Notifier struct {
	webhookURL string
	httpClient *http.Client
}

func NewNotifier(webhookURL string) *Notifier {
	return &Notifier{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) Enabled() bool { return n.webhookURL != "" }

type Embed struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Color       int     `json:"color,omitempty"`
	Fields      []Field `json:"fields,omitempty"`
	Timestamp   string  `json:"timestamp,omitempty"`
}

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type webhookPayload struct {
	Embeds []Embed `json:"embeds,omitempty"`
}

func (n *Notifier) SendEmbed(ctx context.Context, embed Embed) error {
	if embed.Timestamp == "" {
		embed.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	return n.send(ctx, webhookPayload{Embeds: []Embed{embed}})
}

func (n *Notifier) send(ctx context.Context, payload webhookPayload) error {
	if !n.Enabled() {
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == 429 {
		telemetry.Warnf("discord: rate limited")
		return fmt.Errorf("discord rate limited")
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook: status=%d", resp.StatusCode)
	}

	return nil
}

// --- Convenience methods for common alert types ---

const (
	ColorGreen = 0x2ECC71
	ColorRed   = 0xE74C3C
)

func (n *Notifier) PredictionAlert(ctx context.Context, cfg match.Config, res match.Result) error {
	res = res.WithTeams(cfg)
	p, ok := display.Present(&res)
	if !ok {
		return nil
	}
	return n.SendEmbed(ctx, Embed{
		Title:       fmt.Sprintf("Prediction: %s vs %s", cfg.Team1, cfg.Team2),
		Description: fmt.Sprintf("Predicted winner **%s** (%s)", p.Winner, p.WinnerPct),
		Color:       ColorGreen,
		Fields: []Field{
			{Name: cfg.Team1, Value: p.Team1Pct, Inline: true},
			{Name: cfg.Team2, Value: p.Team2Pct, Inline: true},
			{Name: "Venue", Value: cfg.Venue, Inline: false},
			{Name: "Toss", Value: fmt.Sprintf("%s chose to %s", cfg.Toss.Winner, cfg.Toss.Decision), Inline: false},
		},
	})
}

func (n *Notifier) PredictionFailure(ctx context.Context, cfg match.Config, detail string) error {
	return n.SendEmbed(ctx, Embed{
		Title:       fmt.Sprintf("Prediction failed: %s vs %s", cfg.Team1, cfg.Team2),
		Description: detail,
		Color:       ColorRed,
	})
}

// Subscribe posts prediction outcomes from the bus. Each post runs on its
// own goroutine so the publishing session is never blocked on Discord.
func (n *Notifier) Subscribe(bus *events.Bus) {
	if !n.Enabled() {
		return
	}
	bus.Subscribe(events.EventPredictionReady, func(e events.Event) error {
		pr, ok := e.Payload.(events.PredictionReadyEvent)
		if !ok {
			return nil
		}
		go n.deliver(func(ctx context.Context) error { return n.PredictionAlert(ctx, pr.Config, pr.Result) })
		return nil
	})
	bus.Subscribe(events.EventPredictionFailed, func(e events.Event) error {
		pf, ok := e.Payload.(events.PredictionFailedEvent)
		if !ok {
			return nil
		}
		go n.deliver(func(ctx context.Context) error { return n.PredictionFailure(ctx, pf.Config, pf.Error) })
		return nil
	})
}

func (n *Notifier) deliver(fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		telemetry.Warnf("discord: %v", err)
	}
}
