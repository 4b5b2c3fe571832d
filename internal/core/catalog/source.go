package catalog

import (
	"context"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/charleschow/xi-predictor/internal/telemetry"
)

// Loader builds a fresh catalog, typically from the configured YAML file.
type Loader func(ctx context.Context) (*Catalog, error)

// Source hands out the current catalog. Reload swaps in a new one for
// sessions created afterwards; catalogs already handed out are never mutated.
type Source struct {
	load    Loader
	current atomic.Pointer[Catalog]
	sfGroup singleflight.Group
}

func NewSource(ctx context.Context, load Loader) (*Source, error) {
	s := &Source{load: load}
	if _, err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Static wraps an already-built catalog. Reload is a no-op returning it.
func Static(c *Catalog) *Source {
	s := &Source{load: func(context.Context) (*Catalog, error) { return c, nil }}
	s.current.Store(c)
	return s
}

func (s *Source) Current() *Catalog { return s.current.Load() }

// Reload runs the loader once for any number of concurrent callers.
// On failure the previous catalog stays in place.
func (s *Source) Reload(ctx context.Context) (*Catalog, error) {
	v, err, shared := s.sfGroup.Do("reload", func() (any, error) {
		c, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		s.current.Store(c)
		telemetry.Infof("catalog: loaded teams=%d venues=%d players=%d",
			len(c.teams), len(c.venues), len(c.players))
		return c, nil
	})
	if err != nil {
		return nil, fmt.Errorf("reload catalog: %w", err)
	}
	if shared {
		telemetry.Debugf("catalog: reload shared with concurrent caller")
	}
	return v.(*Catalog), nil
}
