package history

import (
	"context"
	"sync"
	"time"

	"github.com/charleschow/xi-predictor/internal/events"
	"github.com/charleschow/xi-predictor/internal/telemetry"
)

const writerBuf = 256

// Writer records prediction outcomes from the bus. Bus handlers only
// enqueue; a single goroutine does the inserts so a slow database never
// holds up a session.
type Writer struct {
	rec Recorder
	ch  chan Record
	wg  sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewWriter(rec Recorder, bus *events.Bus) *Writer {
	w := &Writer{
		rec: rec,
		ch:  make(chan Record, writerBuf),
	}
	bus.Subscribe(events.EventPredictionReady, w.onEvent)
	bus.Subscribe(events.EventPredictionFailed, w.onEvent)
	return w
}

// Start runs the insert loop until Close.
func (w *Writer) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for r := range w.ch {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := w.rec.Insert(ctx, r); err != nil {
				telemetry.Metrics.HistoryWriteErrors.Inc()
				telemetry.Warnf("history: %v", err)
			}
			cancel()
		}
	}()
}

// Close stops accepting events and waits for queued records to be written.
func (w *Writer) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.ch)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

func (w *Writer) onEvent(e events.Event) error {
	r, ok := recordFor(e)
	if !ok {
		return nil
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return nil
	}
	select {
	case w.ch <- r:
	default:
		telemetry.Metrics.HistoryWriteErrors.Inc()
		telemetry.Warnf("history: queue full, dropping record for session=%s", e.SessionID)
	}
	return nil
}

func recordFor(e events.Event) (Record, bool) {
	r := Record{SessionID: e.SessionID, CreatedAt: e.Timestamp}
	switch p := e.Payload.(type) {
	case events.PredictionReadyEvent:
		fillConfig(&r, p.Config)
		r.Team1Prob, r.Team2Prob = p.Result.Team1WinProb, p.Result.Team2WinProb
		r.Winner = p.Winner
		r.LatencyMs = p.LatencyMs
	case events.PredictionFailedEvent:
		fillConfig(&r, p.Config)
		r.Error = p.Error
		r.StatusCode = p.StatusCode
		r.LatencyMs = p.LatencyMs
	default:
		return Record{}, false
	}
	return r, true
}
