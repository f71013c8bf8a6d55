package providers

import (
	"context"

	"github.com/zatekoja/wayfinder/internal/domain/entities"
)

// KeywordSearchPage is one page of keyword search results.
type KeywordSearchPage struct {
	Documents []entities.KeywordPlaceDocument
	// NextCursor is the continuation cursor for the following page, or
	// empty when the provider has no more results.
	NextCursor string
	TotalCount int
}

// PlaceSearchProvider searches places by keyword, one provider page at a time.
type PlaceSearchProvider interface {
	// SearchKeyword returns the page identified by cursor ("" for the first page).
	SearchKeyword(ctx context.Context, keyword, cursor string) (*KeywordSearchPage, error)
}
