// Package catalog holds the static roster reference lists: eligible teams,
// venues and players. A Catalog is immutable once built.
package catalog

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
)

var ErrInvalidCatalog = errors.New("invalid catalog")

type Catalog struct {
	teams   []string
	venues  []string
	players []string

	// foldedPlayers[i] is Fold(players[i]), precomputed for search.
	foldedPlayers []string

	teamSet   map[string]struct{}
	venueSet  map[string]struct{}
	playerSet map[string]struct{}
}

// New validates and builds a catalog. Every entry must be non-empty after
// canonicalisation and unique within its list; order is preserved.
func New(teams, venues, players []string) (*Catalog, error) {
	c := &Catalog{}
	var err error
	if c.teams, c.teamSet, err = build("teams", teams); err != nil {
		return nil, err
	}
	if c.venues, c.venueSet, err = build("venues", venues); err != nil {
		return nil, err
	}
	if c.players, c.playerSet, err = build("players", players); err != nil {
		return nil, err
	}
	c.foldedPlayers = make([]string, len(c.players))
	for i, p := range c.players {
		c.foldedPlayers[i] = Fold(p)
	}
	return c, nil
}

func build(kind string, in []string) ([]string, map[string]struct{}, error) {
	if len(in) == 0 {
		return nil, nil, fmt.Errorf("%w: no %s", ErrInvalidCatalog, kind)
	}
	out := make([]string, 0, len(in))
	set := make(map[string]struct{}, len(in))
	for i, raw := range in {
		name := Canonical(raw)
		if name == "" {
			return nil, nil, fmt.Errorf("%w: %s[%d] is empty", ErrInvalidCatalog, kind, i)
		}
		if _, dup := set[name]; dup {
			return nil, nil, fmt.Errorf("%w: duplicate entry %q in %s", ErrInvalidCatalog, name, kind)
		}
		set[name] = struct{}{}
		out = append(out, name)
	}
	return out, set, nil
}

func (c *Catalog) Teams() []string   { return slices.Clone(c.teams) }
func (c *Catalog) Venues() []string  { return slices.Clone(c.venues) }
func (c *Catalog) Players() []string { return slices.Clone(c.players) }

func (c *Catalog) HasTeam(name string) bool   { return has(c.teamSet, name) }
func (c *Catalog) HasVenue(name string) bool  { return has(c.venueSet, name) }
func (c *Catalog) HasPlayer(name string) bool { return has(c.playerSet, name) }

func has(set map[string]struct{}, name string) bool {
	_, ok := set[name]
	return ok
}

// MatchPlayers yields players in catalog order whose folded name contains
// the folded query. An empty query yields every player. The sequence is
// lazy and can be ranged over any number of times.
func (c *Catalog) MatchPlayers(query string) iter.Seq[string] {
	q := Fold(query)
	return func(yield func(string) bool) {
		for i, folded := range c.foldedPlayers {
			if q != "" && !strings.Contains(folded, q) {
				continue
			}
			if !yield(c.players[i]) {
				return
			}
		}
	}
}

// Snapshot is the JSON form served to clients.
type Snapshot struct {
	Teams   []string `json:"teams"`
	Venues  []string `json:"venues"`
	Players []string `json:"players"`
}

func (c *Catalog) Snapshot() Snapshot {
	return Snapshot{Teams: c.Teams(), Venues: c.Venues(), Players: c.Players()}
}
