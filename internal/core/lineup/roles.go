package lineup

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleNone         Role = ""
	RoleBatter       Role = "Batter"
	RoleBowler       Role = "Bowler"
	RoleAllRounder   Role = "All-Rounder"
	RoleWicketKeeper Role = "Wicket-Keeper"
	RoleCaptain      Role = "Captain"
)

// Roles lists the assignable tags in display order.
var Roles = []Role{RoleBatter, RoleBowler, RoleAllRounder, RoleWicketKeeper, RoleCaptain}

// ParseRole accepts a role name in any case. The empty string means no role.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RoleNone, nil
	}
	for _, r := range Roles {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}
	return RoleNone, fmt.Errorf("unknown role %q", s)
}

// Exclusive roles may be held by at most one slot per lineup.
func (r Role) Exclusive() bool {
	return r == RoleCaptain || r == RoleWicketKeeper
}
