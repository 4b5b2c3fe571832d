// Package session keeps one match form per user session. A session's form
// is only touched under its own mutex, so events for one session are
// applied and published in order.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/charleschow/xi-predictor/internal/core/catalog"
	"github.com/charleschow/xi-predictor/internal/core/form"
	"github.com/charleschow/xi-predictor/internal/events"
	"github.com/charleschow/xi-predictor/internal/telemetry"
)

var ErrNotFound = errors.New("session not found")

// Store holds live sessions in a size-bounded LRU whose entries expire
// after ttl without activity.
type Store struct {
	cache     *expirable.LRU[string, *Session]
	source    *catalog.Source
	predictor form.Predictor
	bus       *events.Bus
}

func NewStore(src *catalog.Source, predictor form.Predictor, bus *events.Bus, max int, ttl time.Duration) *Store {
	onEvict := func(id string, s *Session) {
		// a session that lost a refresh race is evicted twice; count it once
		if !s.evicted.CompareAndSwap(false, true) {
			return
		}
		telemetry.Metrics.SessionsActive.Dec()
		telemetry.Debugf("session: %s evicted", id)
	}
	return &Store{
		cache:     expirable.NewLRU[string, *Session](max, onEvict, ttl),
		source:    src,
		predictor: predictor,
		bus:       bus,
	}
}

// Create starts a session on the current catalog. Later catalog reloads
// do not affect it.
func (st *Store) Create() *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Created:   time.Now().UTC(),
		form:      form.New(st.source.Current()),
		predictor: st.predictor,
		bus:       st.bus,
	}
	st.cache.Add(s.ID, s)
	telemetry.Metrics.SessionsCreated.Inc()
	telemetry.Metrics.SessionsActive.Inc()
	telemetry.Debugf("session: %s created", s.ID)
	return s
}

// Get returns the session and refreshes its expiry. The refresh re-adds the
// entry, so a Delete or expiry landing between the lookup and the re-add is
// undone here rather than reviving the session.
func (st *Store) Get(id string) (*Session, error) {
	s, ok := st.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if !s.evicted.Load() {
		st.cache.Add(id, s)
	}
	if s.evicted.Load() {
		st.cache.Remove(id)
		return nil, ErrNotFound
	}
	return s, nil
}

func (st *Store) Delete(id string) bool {
	return st.cache.Remove(id)
}

func (st *Store) Len() int { return st.cache.Len() }
