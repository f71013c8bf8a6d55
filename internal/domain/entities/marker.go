package entities

// MarkerDescriptor describes one pin for a place on the visible page.
type MarkerDescriptor struct {
	PlaceID  string      `json:"place_id"`
	Position Coordinates `json:"position"`
	Label    string      `json:"label"`
	Icon     string      `json:"icon"`
	// Index is the record's position in the visible page. Records without
	// coordinates are skipped, so it is not the marker slice index.
	Index int `json:"index"`
}

// Bounds is the smallest box enclosing a set of coordinates.
type Bounds struct {
	SouthWest Coordinates `json:"south_west"`
	NorthEast Coordinates `json:"north_east"`
}

// BoundsOf returns the bounding box of the descriptors. ok is false for an empty set.
func BoundsOf(markers []MarkerDescriptor) (b Bounds, ok bool) {
	for i, m := range markers {
		p := m.Position
		if i == 0 {
			b = Bounds{SouthWest: p, NorthEast: p}
			continue
		}
		b.SouthWest.Lat = min(b.SouthWest.Lat, p.Lat)
		b.SouthWest.Lng = min(b.SouthWest.Lng, p.Lng)
		b.NorthEast.Lat = max(b.NorthEast.Lat, p.Lat)
		b.NorthEast.Lng = max(b.NorthEast.Lng, p.Lng)
	}
	return b, len(markers) > 0
}
