package directions

import (
	"context"
	"math"

	"github.com/zatekoja/wayfinder/internal/domain/entities"
	"github.com/zatekoja/wayfinder/internal/domain/providers"
)

const (
	earthRadiusMeters     = 6371000.0
	mockDrivingSpeedMps   = 30 * 1000.0 / 3600.0
	mockMinimumSeparation = 5.0
)

// MockDirectionsProvider returns a straight-line route for local development
type MockDirectionsProvider struct{}

// NewMockDirectionsProvider creates a new mock directions provider
func NewMockDirectionsProvider() providers.DirectionsProvider {
	return &MockDirectionsProvider{}
}

// Directions returns a two-point route with haversine distance and a fixed
// average driving speed. Endpoints within 5 meters fail with code 104.
func (m *MockDirectionsProvider) Directions(ctx context.Context, origin, destination entities.Coordinates) (*entities.RouteResult, error) {
	distance := haversineMeters(origin, destination)
	if distance < mockMinimumSeparation {
		return nil, &entities.RouteFailure{Code: 104}
	}
	return &entities.RouteResult{
		Path: []entities.Coordinates{origin, destination},
		Summary: entities.RouteInfo{
			DistanceMeters:  int(math.Round(distance)),
			DurationSeconds: int(math.Round(distance / mockDrivingSpeedMps)),
		},
	}, nil
}

func haversineMeters(from, to entities.Coordinates) float64 {
	lat1 := from.Lat * math.Pi / 180
	lat2 := to.Lat * math.Pi / 180
	deltaLat := (to.Lat - from.Lat) * math.Pi / 180
	deltaLng := (to.Lng - from.Lng) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}
