package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/zatekoja/wayfinder/internal/domain/entities"
)

// PlaceNormalizer converts upstream place payloads into PlaceRecords.
// Missing optional fields become empty strings; unusable coordinates leave
// the record list-only.
type PlaceNormalizer struct{}

// NewPlaceNormalizer creates a new normalizer
func NewPlaceNormalizer() *PlaceNormalizer {
	return &PlaceNormalizer{}
}

// NormalizeKeywordDocument normalizes a keyword search document.
func (n *PlaceNormalizer) NormalizeKeywordDocument(doc entities.KeywordPlaceDocument) entities.PlaceRecord {
	address := strings.TrimSpace(doc.RoadAddressName)
	if address == "" {
		address = strings.TrimSpace(doc.AddressName)
	}
	return entities.PlaceRecord{
		ID:                strings.TrimSpace(doc.ID),
		DisplayName:       strings.TrimSpace(doc.PlaceName),
		Address:           address,
		Phone:             strings.TrimSpace(doc.Phone),
		Category:          strings.TrimSpace(doc.CategoryName),
		ExternalURL:       strings.TrimSpace(doc.PlaceURL),
		CategoryGroupCode: strings.TrimSpace(doc.CategoryGroupCode),
		Coordinates:       coerceCoordinates(doc.Y, doc.X),
	}
}

// NormalizeSavedPlace normalizes a saved place from the backend.
func (n *PlaceNormalizer) NormalizeSavedPlace(p entities.SavedPlacePayload) entities.PlaceRecord {
	id := strings.TrimSpace(p.PlaceID)
	if id == "" {
		id = strings.TrimSpace(p.ID)
	}
	return entities.PlaceRecord{
		ID:                id,
		DisplayName:       strings.TrimSpace(p.PlaceName),
		Address:           strings.TrimSpace(p.AddressName),
		AddressLocalized:  strings.TrimSpace(p.AddressNameEn),
		Phone:             strings.TrimSpace(p.Phone),
		Category:          strings.TrimSpace(p.CategoryName),
		CategoryLocalized: strings.TrimSpace(p.CategoryNameEn),
		ExternalURL:       strings.TrimSpace(p.PlaceURL),
		CategoryGroupCode: strings.TrimSpace(p.CategoryGroupCode),
		Coordinates:       coerceCoordinates(p.Latitude, p.Longitude),
	}
}

// NormalizePayload detects the payload shape and normalizes it. Only
// malformed JSON is an error.
func (n *PlaceNormalizer) NormalizePayload(raw json.RawMessage) (entities.PlaceRecord, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return entities.PlaceRecord{}, fmt.Errorf("invalid place payload: %w", err)
	}

	if _, ok := probe["place_name"]; ok {
		var doc entities.KeywordPlaceDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return entities.PlaceRecord{}, fmt.Errorf("invalid keyword place payload: %w", err)
		}
		return n.NormalizeKeywordDocument(doc), nil
	}

	var saved entities.SavedPlacePayload
	if err := json.Unmarshal(raw, &saved); err != nil {
		return entities.PlaceRecord{}, fmt.Errorf("invalid saved place payload: %w", err)
	}
	return n.NormalizeSavedPlace(saved), nil
}

// NormalizeKeywordDocuments normalizes a batch, keeping order.
func (n *PlaceNormalizer) NormalizeKeywordDocuments(docs []entities.KeywordPlaceDocument) []entities.PlaceRecord {
	records := make([]entities.PlaceRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, n.NormalizeKeywordDocument(doc))
	}
	return records
}

// NormalizeSavedPlaces normalizes a batch, keeping order.
func (n *PlaceNormalizer) NormalizeSavedPlaces(places []entities.SavedPlacePayload) []entities.PlaceRecord {
	records := make([]entities.PlaceRecord, 0, len(places))
	for _, p := range places {
		records = append(records, n.NormalizeSavedPlace(p))
	}
	return records
}

func coerceCoordinates(lat, lng entities.FlexibleNumber) *entities.Coordinates {
	latVal, ok := coerceNumber(lat)
	if !ok {
		return nil
	}
	lngVal, ok := coerceNumber(lng)
	if !ok {
		return nil
	}
	return &entities.Coordinates{Lat: latVal, Lng: lngVal}
}

func coerceNumber(n entities.FlexibleNumber) (float64, bool) {
	if !n.Present {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(n.Raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
