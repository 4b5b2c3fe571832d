package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charleschow/xi-predictor/internal/adapters/history"
	"github.com/charleschow/xi-predictor/internal/adapters/inbound/form_api"
	"github.com/charleschow/xi-predictor/internal/adapters/outbound/discord"
	"github.com/charleschow/xi-predictor/internal/adapters/outbound/prediction_http"
	"github.com/charleschow/xi-predictor/internal/config"
	"github.com/charleschow/xi-predictor/internal/core/catalog"
	"github.com/charleschow/xi-predictor/internal/core/session"
	"github.com/charleschow/xi-predictor/internal/events"
	"github.com/charleschow/xi-predictor/internal/fanout"
	"github.com/charleschow/xi-predictor/internal/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.ParseLogLevel(cfg.LogLevel))
	telemetry.Infof("Starting form server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := events.NewBus()

	// ── Roster catalog ──────────────────────────────────────────
	source, err := catalog.NewSource(ctx, catalogLoader(cfg.CatalogPath))
	if err != nil {
		telemetry.Errorf("Failed to load catalog: %v", err)
		os.Exit(1)
	}
	cur := source.Current()
	telemetry.Infof("Catalog loaded  teams=%d  venues=%d  players=%d  path=%q",
		len(cur.Teams()), len(cur.Venues()), len(cur.Players()), cfg.CatalogPath)

	// ── Prediction client ───────────────────────────────────────
	predictor := prediction_http.NewClient(cfg.PredictorURL, cfg.PredictorTimeout, cfg.PredictorRate)
	telemetry.Infof("Prediction service at %s  timeout=%s", predictor.BaseURL(), cfg.PredictorTimeout)

	// ── History ─────────────────────────────────────────────────
	var (
		store  *history.Store
		writer *history.Writer
	)
	if cfg.HistoryDSN != "" {
		store, err = history.Open(ctx, cfg.HistoryDSN)
		if err != nil {
			telemetry.Warnf("History store disabled: %v", err)
		} else {
			writer = history.NewWriter(store, bus)
			writer.Start()
		}
	}

	// ── Discord ─────────────────────────────────────────────────
	notifier := discord.NewNotifier(cfg.DiscordWebhookURL)
	notifier.Subscribe(bus)
	if notifier.Enabled() {
		telemetry.Infof("Discord notifications enabled")
	}

	// ── Sessions + API ──────────────────────────────────────────
	sessions := session.NewStore(source, predictor, bus, cfg.SessionMax, cfg.SessionTTL)
	opts := form_api.Options{
		Sessions:    sessions,
		Catalog:     source,
		Feed:        fanout.NewServer(bus),
		CORSOrigins: cfg.CORSOrigins,
	}
	if store != nil {
		opts.History = store
	}
	api := form_api.NewHandler(opts)

	addr := fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.PredictorTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Errorf("HTTP server: %v", err)
			os.Exit(1)
		}
	}()
	telemetry.Infof("Form server listening on %q", addr)

	// ── Shutdown ────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range sigCh {
		if sig == syscall.SIGHUP {
			if _, err := source.Reload(ctx); err != nil {
				telemetry.Warnf("Catalog reload: %v", err)
			}
			continue
		}
		break
	}

	telemetry.Infof("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	if writer != nil {
		writer.Close()
	}
	if store != nil {
		store.Close()
	}

	telemetry.Infof("Shutdown complete  sessions=%d  predictions=%d  errors=%d  rejects=%d  p50=%s  p99=%s",
		telemetry.Metrics.SessionsCreated.Value(),
		telemetry.Metrics.PredictionsSent.Value(),
		telemetry.Metrics.PredictionErrors.Value(),
		telemetry.Metrics.SelectionRejects.Value()+telemetry.Metrics.ValidationRejects.Value(),
		telemetry.Metrics.PredictLatency.P50(),
		telemetry.Metrics.PredictLatency.P99(),
	)
}

// catalogLoader reads the catalog file on every call so SIGHUP and
// POST /api/catalog/reload pick up edits.
func catalogLoader(path string) catalog.Loader {
	return func(_ context.Context) (*catalog.Catalog, error) {
		f, err := config.LoadCatalogFile(path)
		if err != nil {
			return nil, err
		}
		return catalog.New(f.Teams, f.Venues, f.Players)
	}
}
