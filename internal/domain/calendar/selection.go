package calendar

import "staybook/internal/domain/shared/calendardate"

type SelectionState string

const (
	SelectionEmpty    SelectionState = "empty"
	SelectionPartial  SelectionState = "partial"
	SelectionComplete SelectionState = "complete"
)

// Selection is the date-picker state owned by the calling view.
type Selection struct {
	Start calendardate.Date `json:"start,omitzero"`
	End   calendardate.Date `json:"end,omitzero"`
}

func (s Selection) State() SelectionState {
	switch {
	case !s.Start.Valid():
		return SelectionEmpty
	case !s.End.Valid() || !s.End.After(s.Start):
		return SelectionPartial
	default:
		return SelectionComplete
	}
}

// Click advances the selection. Disabled or invalid days leave it unchanged.
func (s Selection) Click(d calendardate.Date, disabled bool) Selection {
	if disabled || !d.Valid() {
		return s
	}
	switch s.State() {
	case SelectionPartial:
		if d.After(s.Start) {
			return Selection{Start: s.Start, End: d}
		}
		return Selection{Start: d}
	default:
		return Selection{Start: d}
	}
}

func (s Selection) contains(d calendardate.Date) bool {
	return s.State() == SelectionComplete && d.Between(s.Start, s.End)
}
