package entities

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// PlaceRecord is the canonical representation of a point of interest.
// Records are built by the place normalizer and never mutated afterwards.
type PlaceRecord struct {
	ID                string       `json:"id"`
	DisplayName       string       `json:"display_name"`
	Address           string       `json:"address,omitempty"`
	AddressLocalized  string       `json:"address_localized,omitempty"`
	Phone             string       `json:"phone,omitempty"`
	Category          string       `json:"category,omitempty"`
	CategoryLocalized string       `json:"category_localized,omitempty"`
	ExternalURL       string       `json:"external_url,omitempty"`
	CategoryGroupCode string       `json:"category_group_code,omitempty"`
	Coordinates       *Coordinates `json:"coordinates,omitempty"`
}

// Mappable reports whether the record can be projected onto the map.
func (p PlaceRecord) Mappable() bool {
	return p.Coordinates != nil
}

// Coordinates represents a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LngLat formats the position the way the directions provider expects it.
func (c Coordinates) LngLat() string {
	return strconv.FormatFloat(c.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

// FlexibleNumber holds a coordinate that upstream may send either as a JSON
// number or as a numeric string. The raw text is kept and parsed on demand.
type FlexibleNumber struct {
	Raw     string
	Present bool
}

// UnmarshalJSON accepts numbers, strings and null.
func (n *FlexibleNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = FlexibleNumber{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid coordinate string: %w", err)
		}
		*n = FlexibleNumber{Raw: s, Present: true}
		return nil
	}
	*n = FlexibleNumber{Raw: string(data), Present: true}
	return nil
}

// MarshalJSON writes the raw value back as a string.
func (n FlexibleNumber) MarshalJSON() ([]byte, error) {
	if !n.Present {
		return []byte("null"), nil
	}
	return json.Marshal(n.Raw)
}

// NewFlexibleNumber wraps a float as a present value.
func NewFlexibleNumber(v float64) FlexibleNumber {
	return FlexibleNumber{Raw: strconv.FormatFloat(v, 'f', -1, 64), Present: true}
}

// KeywordPlaceDocument is a single document from the Kakao Local keyword search API.
type KeywordPlaceDocument struct {
	ID                string         `json:"id"`
	PlaceName         string         `json:"place_name"`
	CategoryName      string         `json:"category_name"`
	CategoryGroupCode string         `json:"category_group_code"`
	CategoryGroupName string         `json:"category_group_name"`
	Phone             string         `json:"phone"`
	AddressName       string         `json:"address_name"`
	RoadAddressName   string         `json:"road_address_name"`
	PlaceURL          string         `json:"place_url"`
	Distance          string         `json:"distance,omitempty"`
	X                 FlexibleNumber `json:"x"`
	Y                 FlexibleNumber `json:"y"`
}

// SavedPlacePayload is a saved place as returned by the GraphQL backend.
type SavedPlacePayload struct {
	ID                string         `json:"id"`
	PlaceID           string         `json:"placeId"`
	PlaceName         string         `json:"placeName"`
	AddressName       string         `json:"addressName"`
	AddressNameEn     string         `json:"addressNameEn"`
	Phone             string         `json:"phone"`
	CategoryName      string         `json:"categoryName"`
	CategoryNameEn    string         `json:"categoryNameEn"`
	CategoryGroupCode string         `json:"categoryGroupCode"`
	PlaceURL          string         `json:"placeUrl"`
	Latitude          FlexibleNumber `json:"latitude"`
	Longitude         FlexibleNumber `json:"longitude"`
}

// PlaceCategory is the wizard category a user picks.
type PlaceCategory string

const (
	PlaceCategoryFood   PlaceCategory = "food"
	PlaceCategorySights PlaceCategory = "sights"
)
