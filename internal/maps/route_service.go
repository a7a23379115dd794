package maps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"googlemaps.github.io/maps"
)

var (
	ErrNoRoute         = errors.New("no route found")
	ErrMissingEndpoint = errors.New("origin and destination are required")
)

// RouteEstimate is the driving time and distance for a transfer.
type RouteEstimate struct {
	Duration       time.Duration `json:"-"`
	DurationMin    int           `json:"durationMinutes"`
	DistanceMeters int           `json:"distanceMeters"`
	DistanceText   string        `json:"distanceText"`
}

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client *maps.Client
}

func NewRouteService(client *maps.Client) *RouteService {
	return &RouteService{client: client}
}

// Estimate returns the driving duration and distance from origin to destination.
func (s *RouteService) Estimate(ctx context.Context, origin, destination string) (RouteEstimate, error) {
	origin, destination = strings.TrimSpace(origin), strings.TrimSpace(destination)
	if origin == "" || destination == "" {
		return RouteEstimate{}, ErrMissingEndpoint
	}
	if s == nil || s.client == nil {
		return RouteEstimate{}, ErrNotConfigured
	}

	routes, _, err := s.client.Directions(ctx, &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
		Language:    Language,
		Region:      Region,
	})
	if err != nil {
		return RouteEstimate{}, fmt.Errorf("maps api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return RouteEstimate{}, ErrNoRoute
	}

	leg := routes[0].Legs[0]
	return RouteEstimate{
		Duration:       leg.Duration,
		DurationMin:    int(leg.Duration.Round(time.Minute) / time.Minute),
		DistanceMeters: leg.Distance.Meters,
		DistanceText:   leg.Distance.HumanReadable,
	}, nil
}
