package maps

import (
	"context"
	"fmt"
	"strings"

	"googlemaps.github.io/maps"
)

const maxSuggestions = 5

// Suggestion is one address autocomplete entry.
type Suggestion struct {
	PlaceID       string `json:"placeId"`
	Description   string `json:"description"`
	MainText      string `json:"mainText,omitempty"`
	SecondaryText string `json:"secondaryText,omitempty"`
}

// PlacesService handles interactions with Google Places API.
type PlacesService struct {
	client *maps.Client
}

func NewPlacesService(client *maps.Client) *PlacesService {
	return &PlacesService{client: client}
}

// Autocomplete returns up to five address suggestions restricted to Chile.
// Blank input returns no suggestions without calling the API.
func (s *PlacesService) Autocomplete(ctx context.Context, input string) ([]Suggestion, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return []Suggestion{}, nil
	}
	if s == nil || s.client == nil {
		return nil, ErrNotConfigured
	}

	resp, err := s.client.PlaceAutocomplete(ctx, &maps.PlaceAutocompleteRequest{
		Input:      input,
		Language:   Language,
		Components: map[maps.Component][]string{maps.ComponentCountry: {Region}},
	})
	if err != nil {
		return nil, fmt.Errorf("places api error: %w", err)
	}

	out := make([]Suggestion, 0, maxSuggestions)
	for _, p := range resp.Predictions {
		out = append(out, Suggestion{
			PlaceID:       p.PlaceID,
			Description:   p.Description,
			MainText:      p.StructuredFormatting.MainText,
			SecondaryText: p.StructuredFormatting.SecondaryText,
		})
		if len(out) >= maxSuggestions {
			break
		}
	}
	return out, nil
}
