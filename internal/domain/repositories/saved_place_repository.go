package repositories

import (
	"context"

	"github.com/zatekoja/wayfinder/internal/domain/entities"
)

// SavedPlaceRepository reads the places a user saved into personal categories.
type SavedPlaceRepository interface {
	// ListByCategory returns the raw saved places of one category.
	ListByCategory(ctx context.Context, token, categoryID string) ([]entities.SavedPlacePayload, error)
}
