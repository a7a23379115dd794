// README: Payment option and promotion handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"shuttle/internal/modules/promotion"
)

type PaymentHandler struct {
	promotions *promotion.Service
	now        func() time.Time
}

func NewPaymentHandler(svc *promotion.Service) *PaymentHandler {
	return &PaymentHandler{promotions: svc, now: time.Now}
}

type paymentOptionsReq struct {
	Total     int64  `json:"total"`
	PromoCode string `json:"promo_code"`
}

func (h *PaymentHandler) Options(c *gin.Context) {
	var req paymentOptionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	options, err := h.promotions.Options(c.Request.Context(), req.Total, req.PromoCode, h.now())
	if err != nil {
		writePromotionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"options": options})
}

type upsertPromotionReq struct {
	Description string          `json:"description"`
	Percentage  decimal.Decimal `json:"percentage"`
	ValidFrom   *time.Time      `json:"valid_from"`
	ValidUntil  *time.Time      `json:"valid_until"`
	Active      *bool           `json:"active"`
}

type promotionResp struct {
	Code        string     `json:"code"`
	Description string     `json:"description"`
	Percentage  string     `json:"percentage"`
	ValidFrom   time.Time  `json:"valid_from"`
	ValidUntil  *time.Time `json:"valid_until,omitempty"`
	Active      bool       `json:"active"`
}

func (h *PaymentHandler) UpsertPromotion(c *gin.Context) {
	var req upsertPromotionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	from := h.now()
	if req.ValidFrom != nil {
		from = *req.ValidFrom
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	p, err := h.promotions.Upsert(c.Request.Context(), promotion.UpsertCommand{
		Code:        c.Param("code"),
		Description: req.Description,
		Percentage:  req.Percentage,
		ValidFrom:   from,
		ValidUntil:  req.ValidUntil,
		Active:      active,
	})
	if err != nil {
		writePromotionError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, promotionResp{
		Code:        p.Code,
		Description: p.Description,
		Percentage:  p.Percentage.String(),
		ValidFrom:   p.ValidFrom,
		ValidUntil:  p.ValidUntil,
		Active:      p.Active,
	})
}
