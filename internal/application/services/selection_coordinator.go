package services

import (
	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
)

// SelectionSource tells the coordinator where a selection came from.
type SelectionSource string

const (
	SelectionSourceList  SelectionSource = "list"
	SelectionSourceMap   SelectionSource = "map"
	SelectionSourceRoute SelectionSource = "route"
)

// SelectionCoordinator is the single source of truth for the selected place.
// Entering a selection switches to the place's page when needed, expands the
// list entry, focuses the marker and scrolls the entry into view.
//
// A list click on the already selected place toggles the entry's expansion
// while the map overlay stays open; the two views may disagree after that.
type SelectionCoordinator struct {
	pager   *PaginationController
	adapter *MapAdapter
	list    providers.ListView

	selectedID string
	expandedID string
}

// NewSelectionCoordinator wires the coordinator to the pager and the adapter.
func NewSelectionCoordinator(pager *PaginationController, adapter *MapAdapter, list providers.ListView) *SelectionCoordinator {
	c := &SelectionCoordinator{
		pager:   pager,
		adapter: adapter,
		list:    list,
	}
	pager.OnPageChange(func(entities.Page) {
		c.Clear()
	})
	adapter.OnMarkerSelected(func(placeID string) {
		c.Select(placeID, SelectionSourceMap)
	})
	adapter.OnOverlayDismissed(func(string) {
		c.Clear()
	})
	return c
}

// State returns the current selection.
func (c *SelectionCoordinator) State() entities.SelectionState {
	return entities.SelectionState{SelectedID: c.selectedID}
}

// SelectedID returns the selected place, or "".
func (c *SelectionCoordinator) SelectedID() string {
	return c.selectedID
}

// ExpandedID returns the expanded list entry, or "".
func (c *SelectionCoordinator) ExpandedID() string {
	return c.expandedID
}

// Select makes placeID the selected place. Unknown ids are ignored and false
// is returned.
func (c *SelectionCoordinator) Select(placeID string, source SelectionSource) bool {
	idx := c.pager.IndexOf(placeID)
	if idx < 0 {
		return false
	}

	if page := PageOfIndex(idx, c.pager.PageSize()); page != c.pager.CurrentPage() {
		c.pager.SetPage(page)
	}

	reselect := c.selectedID == placeID
	c.selectedID = placeID

	if source == SelectionSourceList && reselect {
		if c.expandedID == placeID {
			c.setExpanded("")
		} else {
			c.setExpanded(placeID)
		}
	} else {
		c.setExpanded(placeID)
	}

	c.adapter.Focus(placeID)
	if c.list != nil {
		c.list.ScrollIntoView(placeID)
	}
	return true
}

// Clear drops the selection, collapses the list entry and closes the overlay.
func (c *SelectionCoordinator) Clear() {
	c.selectedID = ""
	c.setExpanded("")
	c.adapter.ClearFocus()
}

func (c *SelectionCoordinator) setExpanded(placeID string) {
	if c.expandedID == placeID {
		return
	}
	if c.expandedID != "" && c.list != nil {
		c.list.SetExpanded(c.expandedID, false)
	}
	c.expandedID = placeID
	if placeID != "" && c.list != nil {
		c.list.SetExpanded(placeID, true)
	}
}
