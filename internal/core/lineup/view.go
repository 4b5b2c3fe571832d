package lineup

import "slices"

type SlotView struct {
	Index        int             `json:"index"`
	Player       string          `json:"player,omitempty"`
	Role         Role            `json:"role,omitempty"`
	Search       string          `json:"search,omitempty"`
	DropdownOpen bool            `json:"dropdown_open"`
	Suggestions  []string        `json:"suggestions,omitempty"`
	State        SuggestionState `json:"suggestion_state,omitempty"`
}

type View struct {
	Team     string     `json:"team"`
	Slots    []SlotView `json:"slots"`
	Focused  *int       `json:"focused"`
	Selected int        `json:"selected"`
	Ready    bool       `json:"ready"`
}

// View snapshots the selector for rendering. Suggestions are only listed
// for the slot whose dropdown is open.
func (s *Selector) View() View {
	v := View{
		Team:     s.team,
		Slots:    make([]SlotView, Size),
		Selected: s.CompletionCount(),
	}
	v.Ready = v.Selected == Size
	if slot, ok := s.Focused(); ok {
		v.Focused = &slot
	}
	for i := range Size {
		sv := SlotView{
			Index:  i,
			Player: s.slots[i],
			Role:   s.roles[i],
			Search: s.search[i],
		}
		if s.DropdownOpen(i) {
			sv.DropdownOpen = true
			sv.Suggestions = slices.Collect(s.Suggestions(i))
			sv.State = s.SuggestionState(i)
		}
		v.Slots[i] = sv
	}
	return v
}
