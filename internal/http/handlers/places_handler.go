// README: Address autocomplete and route estimate handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shuttle/internal/maps"
)

type PlacesHandler struct {
	places *maps.PlacesService
	routes *maps.RouteService
}

// NewPlacesHandler accepts nil services; requests then answer 503.
func NewPlacesHandler(places *maps.PlacesService, routes *maps.RouteService) *PlacesHandler {
	return &PlacesHandler{places: places, routes: routes}
}

func (h *PlacesHandler) Autocomplete(c *gin.Context) {
	suggestions, err := h.places.Autocomplete(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeMapsError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *PlacesHandler) RouteEstimate(c *gin.Context) {
	est, err := h.routes.Estimate(c.Request.Context(), c.Query("origin"), c.Query("destination"))
	if err != nil {
		writeMapsError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, est)
}
