// README: Fare quote handlers (quote and rule table).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shuttle/internal/logging"
	"shuttle/internal/metrics"
	"shuttle/internal/modules/pricing"
)

type QuoteHandler struct {
	pricing *pricing.Service
	fares   pricing.BaseFareLookup
	// fallbackToBase answers an unquotable schedule with the unadjusted base price.
	fallbackToBase bool
	logger         *zap.Logger
}

func NewQuoteHandler(svc *pricing.Service, fares pricing.BaseFareLookup, fallbackToBase bool, logger *zap.Logger) *QuoteHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuoteHandler{pricing: svc, fares: fares, fallbackToBase: fallbackToBase, logger: logger}
}

type quoteReq struct {
	BasePrice   *int64 `json:"base_price"`
	Destination string `json:"destination"`
	TravelDate  string `json:"travel_date"`
	TravelTime  string `json:"travel_time"`
}

type quoteResp struct {
	pricing.QuoteView
	Fallback bool `json:"fallback,omitempty"`
}

func (h *QuoteHandler) Create(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.TravelDate == "" {
		writeError(c, http.StatusBadRequest, "travel_date is required")
		return
	}

	ctx := c.Request.Context()
	label := req.Destination
	var base int64
	switch {
	case req.BasePrice != nil:
		if *req.BasePrice < 0 {
			writeError(c, http.StatusBadRequest, "base_price must not be negative")
			return
		}
		base = *req.BasePrice
	case h.fares == nil:
		writeError(c, http.StatusBadRequest, "base_price is required")
		return
	default:
		l, price, err := h.fares.BaseFare(ctx, req.Destination)
		if err != nil {
			writeQuoteError(c, err)
			return
		}
		label, base = l, price
	}

	res, err := h.pricing.Quote(ctx, pricing.QuoteRequest{
		BasePrice:        base,
		DestinationLabel: label,
		TravelDate:       req.TravelDate,
		TravelTime:       req.TravelTime,
	})
	if errors.Is(err, pricing.ErrInvalidSchedule) && h.fallbackToBase {
		metrics.FareQuotesTotal.WithLabelValues("fallback").Inc()
		logging.FromContext(ctx, h.logger).Warn("quote fell back to base price",
			zap.String("destination", label),
			zap.Int64("base_price", base),
			zap.Error(err))
		writeJSON(c, http.StatusOK, quoteResp{
			QuoteView: pricing.QuoteResult{BasePrice: base, FinalPrice: base}.View(),
			Fallback:  true,
		})
		return
	}
	if err != nil {
		writeQuoteError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, quoteResp{QuoteView: res.View()})
}

func (h *QuoteHandler) Rules(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"rules": h.pricing.Rules().Describe()})
}
