// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shuttle/internal/maps"
	"shuttle/internal/modules/pricing"
	"shuttle/internal/modules/promotion"
	"shuttle/internal/modules/reservation"
	"shuttle/internal/modules/tariff"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts the canonical 36-character uuid form the reservation service generates.
func isValidID(v string) bool {
	return len(v) == 36 && uuid.Validate(v) == nil
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeInternal records err on the gin context so the request log carries it.
func writeInternal(c *gin.Context, err error) {
	_ = c.Error(err)
	writeError(c, http.StatusInternalServerError, "internal error")
}

func writeQuoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pricing.ErrInvalidSchedule), errors.Is(err, pricing.ErrPriceOutOfRange):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, tariff.ErrNotFound):
		writeError(c, http.StatusNotFound, tariff.ErrNotFound.Error())
	case errors.Is(err, tariff.ErrBadRequest):
		writeError(c, http.StatusBadRequest, "destination is required")
	default:
		writeInternal(c, err)
	}
}

func writeTariffError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, tariff.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, tariff.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeInternal(c, err)
	}
}

func writePromotionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, promotion.ErrBadRequest), errors.Is(err, promotion.ErrExpired):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, promotion.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeInternal(c, err)
	}
}

func writeReservationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reservation.ErrBadRequest), errors.Is(err, reservation.ErrInvalidPromotion):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, reservation.ErrNotFound), errors.Is(err, reservation.ErrUnknownDestination):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, reservation.ErrInvalidState), errors.Is(err, reservation.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeInternal(c, err)
	}
}

func writeMapsError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, maps.ErrMissingEndpoint):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, maps.ErrNoRoute):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, maps.ErrNotConfigured):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusBadGateway, "maps provider error")
	}
}
