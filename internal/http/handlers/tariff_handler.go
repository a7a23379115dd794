// README: Tariff catalogue handlers (public reads, admin writes).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shuttle/internal/modules/tariff"
)

type TariffHandler struct {
	tariffs *tariff.Service
}

func NewTariffHandler(svc *tariff.Service) *TariffHandler {
	return &TariffHandler{tariffs: svc}
}

func (h *TariffHandler) List(c *gin.Context) {
	list, err := h.tariffs.List(c.Request.Context())
	if err != nil {
		writeTariffError(c, err)
		return
	}
	if list == nil {
		list = []tariff.Tariff{}
	}
	writeJSON(c, http.StatusOK, gin.H{"tariffs": list})
}

func (h *TariffHandler) Get(c *gin.Context) {
	t, err := h.tariffs.Get(c.Request.Context(), c.Param("destination"))
	if err != nil {
		writeTariffError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}

type upsertTariffReq struct {
	Label     string `json:"label"`
	BasePrice int64  `json:"base_price"`
	Currency  string `json:"currency"`
}

func (h *TariffHandler) Upsert(c *gin.Context) {
	var req upsertTariffReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	t, err := h.tariffs.Upsert(c.Request.Context(), tariff.UpsertCommand{
		Destination: c.Param("destination"),
		Label:       req.Label,
		BasePrice:   req.BasePrice,
		Currency:    req.Currency,
	})
	if err != nil {
		writeTariffError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}

func (h *TariffHandler) Deactivate(c *gin.Context) {
	if err := h.tariffs.Deactivate(c.Request.Context(), c.Param("destination")); err != nil {
		writeTariffError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
