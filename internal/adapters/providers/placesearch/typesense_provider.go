package placesearch

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"
	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
	tsclient "github.com/zatekoja/wayfinder/internal/infrastructure/clients/typesense"
)

// TypesensePlaceSearchProvider searches a curated place index in Typesense.
// Documents are stored in the keyword search shape so both providers
// normalize the same way.
type TypesensePlaceSearchProvider struct {
	client   *tsclient.Client
	pageSize int
}

var _ providers.PlaceSearchProvider = (*TypesensePlaceSearchProvider)(nil)

// NewTypesensePlaceSearchProvider creates a new Typesense-backed provider
func NewTypesensePlaceSearchProvider(client *tsclient.Client) *TypesensePlaceSearchProvider {
	return &TypesensePlaceSearchProvider{client: client, pageSize: defaultPageSize}
}

// SearchKeyword returns one page of matching places
func (p *TypesensePlaceSearchProvider) SearchKeyword(ctx context.Context, keyword, cursor string) (*providers.KeywordSearchPage, error) {
	page := 1
	if cursor != "" {
		parsed, err := strconv.Atoi(cursor)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("invalid cursor %q", cursor)
		}
		page = parsed
	}

	params := &api.SearchCollectionParams{
		Q:       pointer.String(keyword),
		QueryBy: pointer.String("place_name,category_name,address_name,road_address_name"),
		Page:    pointer.Int(page),
		PerPage: pointer.Int(p.pageSize),
	}

	result, err := p.client.Client().Collection(tsclient.PlacesCollection).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search places: %w", err)
	}

	out := &providers.KeywordSearchPage{}
	if result.Hits != nil {
		for _, hit := range *result.Hits {
			if hit.Document == nil {
				continue
			}
			out.Documents = append(out.Documents, documentFromHit(*hit.Document))
		}
	}
	if result.Found != nil {
		out.TotalCount = *result.Found
	}
	if page*p.pageSize < out.TotalCount && len(out.Documents) > 0 {
		out.NextCursor = strconv.Itoa(page + 1)
	}
	return out, nil
}

// IndexPlace stores a normalized place in the index. Places without
// coordinates are indexed without a location.
func (p *TypesensePlaceSearchProvider) IndexPlace(ctx context.Context, place entities.PlaceRecord) error {
	document := map[string]interface{}{
		"id":                  place.ID,
		"place_name":          place.DisplayName,
		"category_name":       place.Category,
		"category_group_code": place.CategoryGroupCode,
		"address_name":        place.Address,
		"phone":               place.Phone,
		"place_url":           place.ExternalURL,
		"indexed_at":          time.Now().Unix(),
	}
	if place.Coordinates != nil {
		document["location"] = []float64{place.Coordinates.Lat, place.Coordinates.Lng}
	}
	if err := p.client.UpsertPlace(ctx, document); err != nil {
		return fmt.Errorf("failed to index place %s: %w", place.ID, err)
	}
	return nil
}

func documentFromHit(doc map[string]interface{}) entities.KeywordPlaceDocument {
	out := entities.KeywordPlaceDocument{
		ID:                stringField(doc, "id"),
		PlaceName:         stringField(doc, "place_name"),
		CategoryName:      stringField(doc, "category_name"),
		CategoryGroupCode: stringField(doc, "category_group_code"),
		Phone:             stringField(doc, "phone"),
		AddressName:       stringField(doc, "address_name"),
		RoadAddressName:   stringField(doc, "road_address_name"),
		PlaceURL:          stringField(doc, "place_url"),
	}
	if loc, ok := doc["location"].([]interface{}); ok && len(loc) == 2 {
		if lat, ok := loc[0].(float64); ok {
			out.Y = entities.NewFlexibleNumber(lat)
		}
		if lng, ok := loc[1].(float64); ok {
			out.X = entities.NewFlexibleNumber(lng)
		}
	}
	return out
}

func stringField(doc map[string]interface{}, key string) string {
	if v, ok := doc[key].(string); ok {
		return v
	}
	return ""
}
