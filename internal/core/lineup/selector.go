// Package lineup implements the per-team playing XI selector: eleven ordered
// slots, an autocomplete over the roster, and optional role tags.
//
// A Selector is not safe for concurrent use; the owning form serialises
// access the way a UI event loop would.
package lineup

import (
	"errors"
	"fmt"
	"iter"

	"github.com/charleschow/xi-predictor/internal/core/catalog"
)

const (
	Size           = 11
	MaxSuggestions = 20

	noFocus = -1
)

type Selector struct {
	team   string
	roster *catalog.Catalog

	slots  [Size]string
	roles  [Size]Role
	search [Size]string
	focus  int

	// opponent is read for cross-team exclusion; nil disables it.
	opponent *Selector
}

func New(team string, roster *catalog.Catalog) *Selector {
	return &Selector{team: team, roster: roster, focus: noFocus}
}

// Link enables cross-team exclusion between two selectors.
func Link(a, b *Selector) {
	a.opponent = b
	b.opponent = a
}

func (s *Selector) Team() string { return s.team }

// Reset empties every slot, role and query and sets the owning team.
func (s *Selector) Reset(team string) {
	s.team = team
	s.slots = [Size]string{}
	s.roles = [Size]Role{}
	s.search = [Size]string{}
	s.focus = noFocus
}

// Assign puts player into slot. On success the slot's query and the
// focus are cleared. Re-assigning a slot's current player is a no-op.
func (s *Selector) Assign(slot int, player string) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	player = catalog.Canonical(player)
	if !s.roster.HasPlayer(player) {
		return fmt.Errorf("%w: %q", ErrUnknownPlayer, player)
	}
	if err := CheckAssign(s.slots[:], s.opponentSlots(), slot, player); err != nil {
		var dup *DuplicatePlayerError
		if errors.As(err, &dup) && dup.Opponent {
			dup.Team = s.opponent.team
		}
		return err
	}

	if s.slots[slot] != player {
		// a role tag belongs to the player it was given to
		s.roles[slot] = RoleNone
	}
	s.slots[slot] = player
	s.search[slot] = ""
	s.focus = noFocus
	return nil
}

// Clear empties slot and drops its role.
func (s *Selector) Clear(slot int) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	s.slots[slot] = ""
	s.roles[slot] = RoleNone
	return nil
}

// SetRole tags slot with role, or removes the tag with RoleNone.
// Captain and Wicket-Keeper are held by at most one slot; a conflict leaves
// the lineup unchanged.
func (s *Selector) SetRole(slot int, role Role) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	if role != RoleNone && s.slots[slot] == "" {
		return fmt.Errorf("%w: %d", ErrEmptySlot, slot)
	}
	if err := CheckRole(s.slots[:], s.roles[:], slot, role); err != nil {
		return err
	}
	s.roles[slot] = role
	return nil
}

// Focus moves the focus to slot. Focusing an assigned slot clears its
// query so the next keystroke starts a fresh search.
func (s *Selector) Focus(slot int) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	s.focus = slot
	if s.slots[slot] != "" {
		s.search[slot] = ""
	}
	return nil
}

// Blur drops the focus (blur, click-outside or touch-outside).
func (s *Selector) Blur() { s.focus = noFocus }

func (s *Selector) Focused() (int, bool) {
	return s.focus, s.focus != noFocus
}

// SetSearch records a keystroke in slot's input, which also focuses it.
func (s *Selector) SetSearch(slot int, text string) error {
	if err := checkSlot(slot); err != nil {
		return err
	}
	s.search[slot] = text
	s.focus = slot
	return nil
}

func (s *Selector) Search(slot int) string {
	if checkSlot(slot) != nil {
		return ""
	}
	return s.search[slot]
}

func (s *Selector) Player(slot int) string {
	if checkSlot(slot) != nil {
		return ""
	}
	return s.slots[slot]
}

func (s *Selector) Role(slot int) Role {
	if checkSlot(slot) != nil {
		return RoleNone
	}
	return s.roles[slot]
}

// XI returns all eleven slots in order; empty slots are "".
func (s *Selector) XI() []string {
	out := make([]string, Size)
	copy(out, s.slots[:])
	return out
}

// Players returns the filled slots in slot order.
func (s *Selector) Players() []string {
	out := make([]string, 0, Size)
	for _, p := range s.slots {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Selector) CompletionCount() int {
	n := 0
	for _, p := range s.slots {
		if p != "" {
			n++
		}
	}
	return n
}

func (s *Selector) Ready() bool { return s.CompletionCount() == Size }

// Suggestions yields up to MaxSuggestions roster players, in catalog order,
// that are in neither lineup and contain slot's query case-insensitively.
// The sequence reads the selector state each time it is ranged over.
func (s *Selector) Suggestions(slot int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if checkSlot(slot) != nil {
			return
		}
		n := 0
		for p := range s.roster.MatchPlayers(s.search[slot]) {
			if s.holds(p) || (s.opponent != nil && s.opponent.holds(p)) {
				continue
			}
			if n == MaxSuggestions || !yield(p) {
				return
			}
			n++
		}
	}
}

type SuggestionState int

const (
	NoQuery SuggestionState = iota
	Matches
	NoMatches
)

func (st SuggestionState) String() string {
	switch st {
	case Matches:
		return "matches"
	case NoMatches:
		return "no_matches"
	default:
		return "no_query"
	}
}

func (st SuggestionState) MarshalText() ([]byte, error) { return []byte(st.String()), nil }

func (st *SuggestionState) UnmarshalText(b []byte) error {
	switch string(b) {
	case "matches":
		*st = Matches
	case "no_matches":
		*st = NoMatches
	case "no_query", "":
		*st = NoQuery
	default:
		return fmt.Errorf("unknown suggestion state %q", b)
	}
	return nil
}

// SuggestionState tells an empty list caused by the query ("no matches")
// apart from an empty list with no query typed.
func (s *Selector) SuggestionState(slot int) SuggestionState {
	for range s.Suggestions(slot) {
		return Matches
	}
	if s.Search(slot) == "" {
		return NoQuery
	}
	return NoMatches
}

// DropdownOpen is derived from focus, query and results, never stored.
// A typed query with no results keeps it open for the "no players found"
// notice.
func (s *Selector) DropdownOpen(slot int) bool {
	if checkSlot(slot) != nil || s.focus != slot {
		return false
	}
	if s.search[slot] != "" {
		return true
	}
	return s.slots[slot] == "" && s.SuggestionState(slot) == Matches
}

func (s *Selector) holds(player string) bool {
	for _, p := range s.slots {
		if p == player {
			return true
		}
	}
	return false
}

func (s *Selector) opponentSlots() []string {
	if s.opponent == nil {
		return nil
	}
	return s.opponent.slots[:]
}
