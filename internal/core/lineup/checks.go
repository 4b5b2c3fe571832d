package lineup

import (
	"errors"
	"fmt"
)

var (
	ErrSlotOutOfRange = errors.New("slot index out of range")
	ErrUnknownPlayer  = errors.New("player not in roster")
	ErrEmptySlot      = errors.New("slot has no player")
)

// Rejection is a widget-level constraint violation shown to the user as a
// notice. Reason is a stable machine-readable code.
type Rejection interface {
	error
	Reason() string
}

// DuplicatePlayerError means the player already holds a slot, either in the
// same lineup or (Opponent) in the other team's lineup.
type DuplicatePlayerError struct {
	Player   string
	Slot     int
	Opponent bool
	Team     string
}

func (e *DuplicatePlayerError) Error() string {
	if e.Opponent {
		return fmt.Sprintf("%s is already selected for %s", e.Player, e.Team)
	}
	return fmt.Sprintf("Player already selected: %s is in slot %d", e.Player, e.Slot+1)
}

func (e *DuplicatePlayerError) Reason() string { return "duplicate_player" }

// RoleConflictError means an exclusive role is held by another slot.
type RoleConflictError struct {
	Role   Role
	Slot   int
	Holder string
}

func (e *RoleConflictError) Error() string {
	return fmt.Sprintf("%s is already the %s", e.Holder, e.Role)
}

func (e *RoleConflictError) Reason() string { return "role_conflict" }

// CheckAssign reports whether player may go into slot. own and opponent are
// the current slot contents of the two lineups; opponent is nil when
// cross-team exclusion is off.
func CheckAssign(own, opponent []string, slot int, player string) error {
	for i, p := range own {
		if i != slot && p == player {
			return &DuplicatePlayerError{Player: player, Slot: i}
		}
	}
	for i, p := range opponent {
		if p == player {
			return &DuplicatePlayerError{Player: player, Slot: i, Opponent: true}
		}
	}
	return nil
}

// CheckRole reports whether role may be set on slot given the current
// role assignment. Clearing (RoleNone) and non-exclusive roles always pass.
func CheckRole(players []string, roles []Role, slot int, role Role) error {
	if !role.Exclusive() {
		return nil
	}
	for i, r := range roles {
		if i != slot && r == role {
			return &RoleConflictError{Role: role, Slot: i, Holder: players[i]}
		}
	}
	return nil
}

func checkSlot(slot int) error {
	if slot < 0 || slot >= Size {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	return nil
}
