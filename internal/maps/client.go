// README: Shared Google Maps client construction and regional defaults.
package maps

import (
	"errors"
	"fmt"

	"googlemaps.github.io/maps"
)

const (
	Language = "es"
	Region   = "cl"
)

var ErrNotConfigured = errors.New("maps api key not configured")

// NewClient builds a Maps client. baseURL overrides the API host and is only
// set by tests.
func NewClient(apiKey, baseURL string) (*maps.Client, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	opts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(baseURL))
	}
	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return client, nil
}
