package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
	"github.com/zatekoja/wayfinder/internal/domain/repositories"
	"github.com/zatekoja/wayfinder/internal/infrastructure/clients/graphqlapi"
)

var savedPlacesOperation = graphqlapi.MustParse(`
query SavedPlaces($categoryId: ID!) {
  savedPlaces(categoryId: $categoryId) {
    id
    placeId
    placeName
    addressName
    addressNameEn
    phone
    categoryName
    categoryNameEn
    categoryGroupCode
    placeUrl
    latitude
    longitude
  }
}`)

var translateOperation = graphqlapi.MustParse(`
query Translate($texts: [String!]!, $targetLang: String!) {
  translate(texts: $texts, targetLang: $targetLang)
}`)

// GraphQLBackend serves saved places and translations from the GraphQL backend.
type GraphQLBackend struct {
	client graphqlapi.Client
}

var (
	_ repositories.SavedPlaceRepository = (*GraphQLBackend)(nil)
	_ providers.TranslationProvider     = (*GraphQLBackend)(nil)
)

func NewGraphQLBackend(client graphqlapi.Client) *GraphQLBackend {
	return &GraphQLBackend{client: client}
}

// ListByCategory returns the raw saved places of one category.
func (b *GraphQLBackend) ListByCategory(ctx context.Context, token, categoryID string) ([]entities.SavedPlacePayload, error) {
	if strings.TrimSpace(categoryID) == "" {
		return nil, fmt.Errorf("category id is required")
	}
	var out struct {
		SavedPlaces []entities.SavedPlacePayload `json:"savedPlaces"`
	}
	vars := map[string]interface{}{"categoryId": categoryID}
	if err := b.client.Do(ctx, savedPlacesOperation, vars, token, &out); err != nil {
		return nil, fmt.Errorf("failed to load saved places: %w", err)
	}
	return out.SavedPlaces, nil
}

// Translate returns translations in the same order as texts.
func (b *GraphQLBackend) Translate(ctx context.Context, texts []string, targetLang string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	var out struct {
		Translate []string `json:"translate"`
	}
	vars := map[string]interface{}{"texts": texts, "targetLang": targetLang}
	if err := b.client.Do(ctx, translateOperation, vars, "", &out); err != nil {
		return nil, fmt.Errorf("failed to translate: %w", err)
	}
	if len(out.Translate) != len(texts) {
		return nil, fmt.Errorf("translation count mismatch: sent %d, got %d", len(texts), len(out.Translate))
	}
	return out.Translate, nil
}
