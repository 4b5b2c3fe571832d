// Ping the prediction service and the form server to measure latency.
//
// Measures cold-start and keep-alive HTTP round-trips against the prediction
// service base URL and the form server's /health endpoint, and optionally
// ping/pong latency over a session feed WebSocket.
//
// Usage:
//
//	go run ./ping_services                  # default: 20 requests
//	go run ./ping_services -n 50            # 50 requests per endpoint
//	go run ./ping_services --ws             # also test the session feed WebSocket
//	go run ./ping_services --form localhost:9090
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/charleschow/xi-predictor/internal/adapters/outbound/prediction_http"
	"github.com/charleschow/xi-predictor/internal/config"
)

const httpTimeout = 10 * time.Second

func main() {
	n := flag.Int("n", 20, "Number of requests per endpoint")
	ws := flag.Bool("ws", false, "Also measure session feed WebSocket ping/pong latency")
	formAddr := flag.String("form", "", "Form server host:port (default from FORM_HTTP_HOST/FORM_HTTP_PORT)")
	flag.Parse()

	cfg := config.Load()
	if *formAddr == "" {
		*formAddr = formAddress(cfg)
	}

	fmt.Printf("\nPinging services — predictor: %s  |  form server: %s\n", cfg.PredictorURL, *formAddr)

	pingPredictor(cfg, *n)
	pingFormServer(*formAddr, *n, *ws)
	fmt.Println()
}

func pingPredictor(cfg *config.Config, n int) {
	header("PREDICTION SERVICE — " + cfg.PredictorURL)

	client := prediction_http.NewClient(cfg.PredictorURL, httpTimeout, 0)

	fmt.Println("\n  Cold-start request (DNS + TCP + HTTP):")
	if ms, code, err := measureHTTP(cfg.PredictorURL, nil); err != nil {
		fmt.Printf("    FAILED — %v\n", err)
	} else {
		fmt.Printf("    %.1f ms  (HTTP %d)\n", ms, code)
	}

	fmt.Printf("\n  Warm HTTP latency (%d requests, keep-alive):\n", n)
	if _, err := client.Ping(context.Background()); err != nil {
		fmt.Printf("  [!] Warm-up request failed: %v\n", err)
		return
	}
	latencies := make([]float64, 0, n)
	pad := len(fmt.Sprintf("%d", n))
	for i := 1; i <= n; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), httpTimeout)
		d, err := client.Ping(ctx)
		cancel()
		if err != nil {
			fmt.Printf("  [%*d/%d]  FAILED — %v\n", pad, i, n, err)
			continue
		}
		ms := float64(d.Microseconds()) / 1000
		latencies = append(latencies, ms)
		fmt.Printf("  [%*d/%d]  %7.1f ms\n", pad, i, n, ms)
	}
	printStats(latencies, "Prediction service HTTP")
}

func pingFormServer(addr string, n int, doWS bool) {
	healthURL := "http://" + addr + "/health"
	header("FORM SERVER — " + healthURL)

	fmt.Println("\n  Cold-start request (DNS + TCP + HTTP):")
	ms, code, err := measureHTTP(healthURL, nil)
	if err != nil {
		fmt.Printf("    FAILED — %v\n", err)
		return
	}
	fmt.Printf("    %.1f ms  (HTTP %d)\n", ms, code)

	fmt.Printf("\n  Warm HTTP latency (%d requests, keep-alive):\n", n)
	client := &http.Client{Timeout: httpTimeout}
	if _, _, err := measureHTTP(healthURL, client); err != nil {
		fmt.Printf("  [!] Warm-up request failed: %v\n", err)
	} else {
		latencies := make([]float64, 0, n)
		pad := len(fmt.Sprintf("%d", n))
		for i := 1; i <= n; i++ {
			ms, code, err := measureHTTP(healthURL, client)
			if err != nil {
				fmt.Printf("  [%*d/%d]  FAILED — %v\n", pad, i, n, err)
				continue
			}
			latencies = append(latencies, ms)
			fmt.Printf("  [%*d/%d]  %7.1f ms  (HTTP %d)\n", pad, i, n, ms, code)
		}
		printStats(latencies, "Form server HTTP")
	}

	if doWS {
		fmt.Printf("\n  WebSocket ping/pong latency (%d pings):\n", n)
		wsLatencies := measureWSLatency(addr, client, n)
		if len(wsLatencies) > 0 {
			pad := len(fmt.Sprintf("%d", n))
			for i, ms := range wsLatencies {
				fmt.Printf("  [%*d/%d]  %7.1f ms  (WS ping/pong)\n", pad, i+1, n, ms)
			}
			printStats(wsLatencies, "Session feed WebSocket")
		}
	}
}

// formAddress is where a local client reaches the configured form server.
// A wildcard listen host is dialled as localhost.
func formAddress(cfg *config.Config) string {
	host := cfg.HTTPHost
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, strconv.Itoa(cfg.HTTPPort))
}

func header(title string) {
	fmt.Printf("\n%s\n", strings.Repeat("=", 55))
	fmt.Printf("  %s\n", title)
	fmt.Printf("%s\n", strings.Repeat("=", 55))
}

func measureHTTP(url string, client *http.Client) (ms float64, statusCode int, err error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return 0, 0, err
	}
	c := client
	if c == nil {
		c = &http.Client{Timeout: httpTimeout}
	}
	start := time.Now()
	resp, err := c.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	return float64(elapsed.Microseconds()) / 1000, resp.StatusCode, nil
}

// measureWSLatency opens a throwaway session, subscribes to its feed and
// times control-frame ping/pong round trips. The session is deleted after.
func measureWSLatency(addr string, client *http.Client, n int) []float64 {
	id, err := createSession(addr, client)
	if err != nil {
		fmt.Printf("  [!] Create session failed: %v\n", err)
		return nil
	}
	defer deleteSession(addr, client, id)

	wsURL := fmt.Sprintf("ws://%s/ws?session=%s", addr, url.QueryEscape(id))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		fmt.Printf("  [!] WebSocket dial failed: %v\n", err)
		return nil
	}
	defer conn.Close()

	pongCh := make(chan struct{}, 1)
	conn.SetPongHandler(func(string) error {
		select {
		case pongCh <- struct{}{}:
		default:
		}
		return nil
	})

	// control frames are only handled while reading
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	latencies := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		start := time.Now()
		if err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(5*time.Second)); err != nil {
			fmt.Printf("  [!] WS ping failed: %v\n", err)
			break
		}
		select {
		case <-pongCh:
			elapsed := time.Since(start)
			latencies = append(latencies, float64(elapsed.Microseconds())/1000)
		case <-time.After(5 * time.Second):
			fmt.Printf("  [!] WS pong timeout\n")
			return latencies
		}
	}
	return latencies
}

func createSession(addr string, client *http.Client) (string, error) {
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

func deleteSession(addr string, client *http.Client, id string) {
	req, err := http.NewRequest(http.MethodDelete, "http://"+addr+"/api/sessions/"+url.PathEscape(id), nil)
	if err != nil {
		return
	}
	if resp, err := client.Do(req); err == nil {
		resp.Body.Close()
	}
}

func printStats(latencies []float64, label string) {
	if len(latencies) < 2 {
		fmt.Printf("\n  Not enough %s samples for statistics.\n", label)
		return
	}
	sorted := make([]float64, len(latencies))
	copy(sorted, latencies)
	sort.Float64s(sorted)

	mean := 0.0
	for _, v := range latencies {
		mean += v
	}
	mean /= float64(len(latencies))

	variance := 0.0
	for _, v := range latencies {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(latencies) - 1)
	stdev := math.Sqrt(variance)

	median := sorted[len(sorted)/2]
	p95Idx := min(int(float64(len(sorted))*0.95), len(sorted)-1)
	p99Idx := min(int(float64(len(sorted))*0.99), len(sorted)-1)

	fmt.Printf("\n  --- %s Stats (%d requests) ---\n", label, len(latencies))
	fmt.Printf("  Min:    %7.1f ms\n", sorted[0])
	fmt.Printf("  Max:    %7.1f ms\n", sorted[len(sorted)-1])
	fmt.Printf("  Mean:   %7.1f ms\n", mean)
	fmt.Printf("  Median: %7.1f ms\n", median)
	fmt.Printf("  Stdev:  %7.1f ms\n", stdev)
	fmt.Printf("  p95:    %7.1f ms\n", sorted[p95Idx])
	fmt.Printf("  p99:    %7.1f ms\n", sorted[p99Idx])
}
