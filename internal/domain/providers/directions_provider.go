package providers

import (
	"context"

	"github.com/zatekoja/wayfinder/internal/domain/entities"
)

// DirectionsProvider computes a route between two positions.
//
// A provider-reported failure (no route, endpoints too close, ...) is returned
// as *entities.RouteFailure. Any other error is a transport failure.
type DirectionsProvider interface {
	Directions(ctx context.Context, origin, destination entities.Coordinates) (*entities.RouteResult, error)
}
