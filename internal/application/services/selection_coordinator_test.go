package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/wayfinder/internal/domain/entities"
)

type selectionFixture struct {
	pager       *PaginationController
	adapter     *MapAdapter
	widget      *fakeWidget
	list        *fakeList
	coordinator *SelectionCoordinator
}

func newSelectionFixture(t *testing.T, records []entities.PlaceRecord) *selectionFixture {
	t.Helper()
	f := &selectionFixture{
		pager:  NewPaginationController(10),
		widget: newFakeWidget(true),
		list:   newFakeList(),
	}
	f.adapter = NewMapAdapter(f.widget, NewEventLoop(), time.Hour)
	projector := NewMarkerProjector()
	f.pager.OnPageChange(func(p entities.Page) {
		f.list.ShowPage(p)
		f.adapter.SetMarkers(projector.Project(p.Records))
	})
	f.coordinator = NewSelectionCoordinator(f.pager, f.adapter, f.list)
	f.adapter.Initialize("map")
	f.pager.SetRecords(records)
	return f
}

func TestSelect_SwitchesToPageOfPlace(t *testing.T) {
	f := newSelectionFixture(t, places(23))

	require.True(t, f.coordinator.Select("p21", SelectionSourceList))

	assert.Equal(t, 3, f.pager.CurrentPage())
	assert.Equal(t, 3, f.adapter.MarkerCount())
	assert.Equal(t, "p21", f.coordinator.SelectedID())
	assert.Equal(t, entities.SelectionState{SelectedID: "p21"}, f.coordinator.State())
	assert.Equal(t, "p21", f.adapter.OpenOverlayID())
	assert.True(t, f.list.expanded["p21"])
	assert.Equal(t, []string{"p21"}, f.list.scrolled)
	assert.Equal(t, 3, f.list.lastPage().Number)
}

func TestSelect_IndexTwentyFiveLandsOnPageThree(t *testing.T) {
	f := newSelectionFixture(t, places(30))

	require.True(t, f.coordinator.Select("p25", SelectionSourceRoute))

	assert.Equal(t, 3, f.pager.CurrentPage())
	assert.True(t, f.adapter.HasMarker("p25"))
	assert.Equal(t, "p25", f.adapter.OpenOverlayID())
}

func TestSelect_UnknownPlaceIgnored(t *testing.T) {
	f := newSelectionFixture(t, places(5))

	assert.False(t, f.coordinator.Select("missing", SelectionSourceList))
	assert.Empty(t, f.coordinator.SelectedID())
}

func TestSelect_ListPlaceWithoutCoordinates(t *testing.T) {
	records := []entities.PlaceRecord{place("a", 37.1, 127.1), listOnlyPlace("b")}
	f := newSelectionFixture(t, records)

	require.True(t, f.coordinator.Select("b", SelectionSourceList))

	assert.Equal(t, "b", f.coordinator.SelectedID())
	assert.True(t, f.list.expanded["b"])
	assert.Empty(t, f.adapter.OpenOverlayID())
}

func TestSelect_ListReselectTogglesExpansionOnly(t *testing.T) {
	f := newSelectionFixture(t, places(5))

	f.coordinator.Select("p1", SelectionSourceList)
	f.coordinator.Select("p1", SelectionSourceList)

	assert.Equal(t, "p1", f.coordinator.SelectedID())
	assert.Empty(t, f.coordinator.ExpandedID())
	assert.False(t, f.list.expanded["p1"])
	assert.Equal(t, "p1", f.adapter.OpenOverlayID(), "overlay stays open")

	f.coordinator.Select("p1", SelectionSourceList)
	assert.Equal(t, "p1", f.coordinator.ExpandedID())
}

func TestSelect_SwitchingPlaceCollapsesPrevious(t *testing.T) {
	f := newSelectionFixture(t, places(5))

	f.coordinator.Select("p1", SelectionSourceList)
	f.coordinator.Select("p2", SelectionSourceList)

	assert.False(t, f.list.expanded["p1"])
	assert.True(t, f.list.expanded["p2"])
	assert.Equal(t, "p2", f.adapter.OpenOverlayID())
}

func TestSelect_MarkerClickSelectsAndSecondClickDismisses(t *testing.T) {
	f := newSelectionFixture(t, places(5))

	f.adapter.HandleMarkerClick("p3")
	assert.Equal(t, "p3", f.coordinator.SelectedID())
	assert.True(t, f.list.expanded["p3"])
	assert.Equal(t, []string{"p3"}, f.list.scrolled)

	f.adapter.HandleMarkerClick("p3")
	assert.Empty(t, f.coordinator.SelectedID())
	assert.False(t, f.list.expanded["p3"])
	assert.Empty(t, f.adapter.OpenOverlayID())
}

func TestClear_OnPageChange(t *testing.T) {
	f := newSelectionFixture(t, places(23))
	f.coordinator.Select("p2", SelectionSourceList)

	f.pager.SetPage(2)

	assert.Equal(t, entities.SelectionState{}, f.coordinator.State())
	assert.Empty(t, f.adapter.OpenOverlayID())
	assert.False(t, f.list.expanded["p2"])
}
