// inspect_ws follows one form session's live feed and prints every event.
//
// Usage:
//
//	go run ./cmd/inspect_ws -session <id>
//	go run ./cmd/inspect_ws -create            # open a fresh session and watch it
//	go run ./cmd/inspect_ws -session <id> -pretty
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charleschow/xi-predictor/internal/core/display"
	"github.com/charleschow/xi-predictor/internal/events"
	"github.com/charleschow/xi-predictor/internal/fanout"
	"github.com/charleschow/xi-predictor/internal/telemetry"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "form server host:port")
	sessionID := flag.String("session", "", "session id to watch")
	create := flag.Bool("create", false, "create a new session and watch it")
	pretty := flag.Bool("pretty", false, "pretty-print form snapshots")
	flag.Parse()

	telemetry.Init(telemetry.ParseLogLevel("warn"))

	if *create {
		id, err := createSession(*addr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create session: %v\n", err)
			os.Exit(1)
		}
		*sessionID = id
		fmt.Printf("Created session %s\n", id)
	}
	if *sessionID == "" {
		fmt.Fprintln(os.Stderr, "usage: go run ./cmd/inspect_ws -session <id> [-addr localhost:8080] [-pretty] | -create")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	bus := events.NewBus()
	bus.SubscribeAll(func(e events.Event) error {
		printEvent(e, *pretty)
		return nil
	})

	fmt.Printf("Watching %s on %s (ctrl-c to stop)\n\n", *sessionID, *addr)
	fanout.NewClient(*addr, *sessionID, bus).ConnectWithRetry(ctx)
}

func printEvent(e events.Event, pretty bool) {
	ts := e.Timestamp.Local().Format("15:04:05.000")
	switch p := e.Payload.(type) {
	case events.FormUpdatedEvent:
		v := p.Form
		fmt.Printf("[%s] %-18s %s  xi1=%d/11 xi2=%d/11  submitting=%v\n",
			ts, e.Type, p.Action, v.XI1.Selected, v.XI2.Selected, v.Submitting)
		if pretty {
			b, _ := json.MarshalIndent(v, "    ", "  ")
			fmt.Printf("    %s\n", b)
		}
	case events.NoticeEvent:
		where := ""
		if p.Side != "" {
			where = " " + p.Side
			if p.Slot != nil {
				where += fmt.Sprintf("[%d]", *p.Slot)
			}
		}
		fmt.Printf("[%s] %-18s %s%s: %s\n", ts, e.Type, p.Reason, where, p.Message)
	case events.PredictionReadyEvent:
		fmt.Printf("[%s] %-18s %dms\n", ts, e.Type, p.LatencyMs)
		if pres, ok := display.Present(&p.Result); ok {
			fmt.Println(indent(pres.Text()))
		}
	case events.PredictionFailedEvent:
		code := ""
		if p.StatusCode != 0 {
			code = fmt.Sprintf(" status=%d", p.StatusCode)
		}
		fmt.Printf("[%s] %-18s %s%s (%s)\n", ts, e.Type, p.Notice, code, p.Error)
	default:
		fmt.Printf("[%s] %-18s %v\n", ts, e.Type, e.Payload)
	}
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n    ")
}

func createSession(addr string) (string, error) {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Post("http://"+addr+"/api/sessions", "application/json", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	var body struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	return body.Data.ID, nil
}
