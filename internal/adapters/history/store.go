// Package history keeps a log of every prediction request and its outcome,
// in SQLite by default or Postgres when given a postgres:// DSN.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/charleschow/xi-predictor/internal/telemetry"
)

// Record is one prediction attempt. Probabilities are nil on failure.
type Record struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"session_id"`
	Team1        string    `json:"team1"`
	Team2        string    `json:"team2"`
	Venue        string    `json:"venue"`
	TossWinner   string    `json:"toss_winner"`
	TossDecision string    `json:"toss_decision"`
	Request      string    `json:"request"`
	Team1Prob    *float64  `json:"team1_win_prob,omitempty"`
	Team2Prob    *float64  `json:"team2_win_prob,omitempty"`
	Winner       string    `json:"winner,omitempty"`
	Error        string    `json:"error,omitempty"`
	StatusCode   int       `json:"status_code,omitempty"`
	LatencyMs    int64     `json:"latency_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

// Recorder is what the rest of the server needs from a history backend.
type Recorder interface {
	Insert(ctx context.Context, r Record) error
	Recent(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Store is a database/sql backed Recorder.
type Store struct {
	db      *sql.DB
	dialect dialect
}

var _ Recorder = (*Store)(nil)

// Open picks the backend from dsn: postgres:// or postgresql:// selects
// Postgres, anything else is a SQLite file path.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if isPostgres(dsn) {
		return openPostgres(ctx, dsn)
	}
	return openSQLite(ctx, dsn)
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func openSQLite(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	s := &Store{db: db, dialect: dialectSQLite}
	rows, err := s.Count(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}
	telemetry.Plainf("history store: opened %s  rows=%d", path, rows)
	return s, nil
}

func openPostgres(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history schema: %w", err)
	}

	telemetry.Plainf("history store: connected to postgres")
	return &Store{db: db, dialect: dialectPostgres}, nil
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS predictions (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id    TEXT    NOT NULL,
	team1         TEXT    NOT NULL,
	team2         TEXT    NOT NULL,
	venue         TEXT    NOT NULL,
	toss_winner   TEXT    NOT NULL,
	toss_decision TEXT    NOT NULL,
	request_json  TEXT    NOT NULL,
	team1_prob    REAL,
	team2_prob    REAL,
	winner        TEXT    NOT NULL DEFAULT '',
	error         TEXT    NOT NULL DEFAULT '',
	status_code   INTEGER NOT NULL DEFAULT 0,
	latency_ms    INTEGER NOT NULL,
	created_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at DESC);`

const postgresSchema = `CREATE TABLE IF NOT EXISTS predictions (
	id            BIGSERIAL PRIMARY KEY,
	session_id    VARCHAR(64)  NOT NULL,
	team1         VARCHAR(200) NOT NULL,
	team2         VARCHAR(200) NOT NULL,
	venue         VARCHAR(300) NOT NULL,
	toss_winner   VARCHAR(200) NOT NULL,
	toss_decision VARCHAR(16)  NOT NULL,
	request_json  TEXT         NOT NULL,
	team1_prob    DOUBLE PRECISION,
	team2_prob    DOUBLE PRECISION,
	winner        VARCHAR(200) NOT NULL DEFAULT '',
	error         TEXT         NOT NULL DEFAULT '',
	status_code   INTEGER      NOT NULL DEFAULT 0,
	latency_ms    BIGINT       NOT NULL,
	created_at    BIGINT       NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at DESC);`

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(q string) string {
	if s.dialect != dialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) Insert(ctx context.Context, r Record) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO predictions (
		session_id, team1, team2, venue, toss_winner, toss_decision, request_json,
		team1_prob, team2_prob, winner, error, status_code, latency_ms, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		r.SessionID, r.Team1, r.Team2, r.Venue, r.TossWinner, r.TossDecision, r.Request,
		nullFloat(r.Team1Prob), nullFloat(r.Team2Prob), r.Winner, r.Error, r.StatusCode,
		r.LatencyMs, r.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT
		id, session_id, team1, team2, venue, toss_winner, toss_decision, request_json,
		team1_prob, team2_prob, winner, error, status_code, latency_ms, created_at
	FROM predictions ORDER BY created_at DESC, id DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r      Record
			p1, p2 sql.NullFloat64
			ms     int64
		)
		if err := rows.Scan(&r.ID, &r.SessionID, &r.Team1, &r.Team2, &r.Venue, &r.TossWinner,
			&r.TossDecision, &r.Request, &p1, &p2, &r.Winner, &r.Error, &r.StatusCode,
			&r.LatencyMs, &ms); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		if p1.Valid {
			r.Team1Prob = &p1.Float64
		}
		if p2.Valid {
			r.Team2Prob = &p2.Float64
		}
		r.CreatedAt = time.UnixMilli(ms).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count is the number of recorded predictions.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM predictions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

func (s *Store) Close() error { return s.db.Close() }

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
