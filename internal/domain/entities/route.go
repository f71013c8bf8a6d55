package entities

import (
	"fmt"
	"math"
)

// averageWalkingMetersPerMinute is the walking speed used for estimates.
const averageWalkingMetersPerMinute = 80.0

// RouteInfo is the summary of a computed route.
type RouteInfo struct {
	DurationSeconds int `json:"duration_seconds"`
	DistanceMeters  int `json:"distance_meters"`
}

// WalkingMinutes is an approximate walking time at a fixed average speed.
func (r RouteInfo) WalkingMinutes() int {
	return int(math.Round(float64(r.DistanceMeters) / averageWalkingMetersPerMinute))
}

// DrivingMinutes is the provider duration in whole minutes.
func (r RouteInfo) DrivingMinutes() int {
	return int(math.Round(float64(r.DurationSeconds) / 60))
}

// DrivingDistance formats the distance in kilometers with one decimal.
func (r RouteInfo) DrivingDistance() string {
	return fmt.Sprintf("%.1fkm", float64(r.DistanceMeters)/1000)
}

// RouteResult is a decoded route from the directions provider.
type RouteResult struct {
	Path    []Coordinates `json:"path"`
	Summary RouteInfo     `json:"summary"`
}

// RouteFailure is returned when the provider answers with a non-zero result code.
type RouteFailure struct {
	Code    int
	Message string
}

func (e *RouteFailure) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("route failure %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("route failure %d", e.Code)
}

// RoutePair is the origin/destination selection with its computed route or error.
// RouteInfo and ErrorMessage are never both set.
type RoutePair struct {
	Origin       *PlaceRecord `json:"origin,omitempty"`
	Destination  *PlaceRecord `json:"destination,omitempty"`
	RouteInfo    *RouteInfo   `json:"route_info,omitempty"`
	ErrorMessage string       `json:"error_message,omitempty"`
}

// Complete reports whether both endpoints are set.
func (r RoutePair) Complete() bool {
	return r.Origin != nil && r.Destination != nil
}

// RouteSummaryView is what the UI shows next to the route.
type RouteSummaryView struct {
	WalkingMinutes  int    `json:"walking_minutes"`
	DrivingMinutes  int    `json:"driving_minutes"`
	DrivingDistance string `json:"driving_distance"`
}

// Summary derives the display values, or nil when there is no route.
func (r RoutePair) Summary() *RouteSummaryView {
	if r.RouteInfo == nil {
		return nil
	}
	return &RouteSummaryView{
		WalkingMinutes:  r.RouteInfo.WalkingMinutes(),
		DrivingMinutes:  r.RouteInfo.DrivingMinutes(),
		DrivingDistance: r.RouteInfo.DrivingDistance(),
	}
}
