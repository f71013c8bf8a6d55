package entities

// SelectionState is the shared selected-place cursor; "" means none.
type SelectionState struct {
	SelectedID string `json:"selected_id,omitempty"`
}

// IsNone reports whether no place is selected.
func (s SelectionState) IsNone() bool {
	return s.SelectedID == ""
}
