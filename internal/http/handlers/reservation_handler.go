// README: Reservation handlers for create/get/list/cancel and admin transitions.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpmiddleware "shuttle/internal/http/middleware"
	"shuttle/internal/modules/pricing"
	"shuttle/internal/modules/promotion"
	"shuttle/internal/modules/reservation"
	"shuttle/internal/types"
)

type ReservationHandler struct {
	reservations *reservation.Service
}

func NewReservationHandler(svc *reservation.Service) *ReservationHandler {
	return &ReservationHandler{reservations: svc}
}

type createReservationReq struct {
	PassengerName string `json:"passenger_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	TravelDate    string `json:"travel_date"`
	TravelTime    string `json:"travel_time"`
	Passengers    int    `json:"passengers"`
	PromoCode     string `json:"promo_code"`
	PaymentOption string `json:"payment_option"`
}

type reservationResp struct {
	ID            types.ID                 `json:"id"`
	Status        reservation.Status       `json:"status"`
	PassengerName string                   `json:"passenger_name"`
	Email         string                   `json:"email"`
	Origin        string                   `json:"origin"`
	Destination   string                   `json:"destination"`
	TravelDate    string                   `json:"travel_date"`
	TravelTime    string                   `json:"travel_time,omitempty"`
	Passengers    int                      `json:"passengers"`
	BasePrice     int64                    `json:"base_price"`
	FinalPrice    int64                    `json:"final_price"`
	Adjustments   []pricing.AdjustmentView `json:"applied_adjustments"`
	PromoCode     string                   `json:"promo_code,omitempty"`
	PaymentOption string                   `json:"payment_option"`
	AmountDue     types.Money              `json:"amount_due"`
	CancelReason  *string                  `json:"cancel_reason,omitempty"`
}

func toReservationResp(r *reservation.Reservation) reservationResp {
	adjustments := r.Quote.Adjustments
	if adjustments == nil {
		adjustments = []pricing.AdjustmentView{}
	}
	return reservationResp{
		ID:            r.ID,
		Status:        r.Status,
		PassengerName: r.PassengerName,
		Email:         r.Email,
		Origin:        r.Origin,
		Destination:   r.Destination,
		TravelDate:    r.TravelDate,
		TravelTime:    r.TravelTime,
		Passengers:    r.Passengers,
		BasePrice:     r.Quote.BasePrice,
		FinalPrice:    r.Quote.FinalPrice,
		Adjustments:   adjustments,
		PromoCode:     r.PromoCode,
		PaymentOption: string(r.PaymentOption),
		AmountDue:     r.AmountDue,
		CancelReason:  r.CancelReason,
	}
}

func (h *ReservationHandler) Create(c *gin.Context) {
	var req createReservationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	r, err := h.reservations.Create(c.Request.Context(), reservation.CreateCommand{
		PassengerName: req.PassengerName,
		Email:         req.Email,
		Phone:         req.Phone,
		Origin:        req.Origin,
		Destination:   req.Destination,
		TravelDate:    req.TravelDate,
		TravelTime:    req.TravelTime,
		Passengers:    req.Passengers,
		PromoCode:     req.PromoCode,
		PaymentOption: promotion.OptionKind(req.PaymentOption),
	})
	if err != nil {
		writeReservationError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, toReservationResp(r))
}

func (h *ReservationHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid reservation id")
		return
	}
	r, err := h.reservations.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeReservationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toReservationResp(r))
}

func (h *ReservationHandler) List(c *gin.Context) {
	list, err := h.reservations.ListByEmail(c.Request.Context(), c.Query("email"))
	if err != nil {
		writeReservationError(c, err)
		return
	}
	out := make([]reservationResp, 0, len(list))
	for _, r := range list {
		out = append(out, toReservationResp(r))
	}
	writeJSON(c, http.StatusOK, gin.H{"reservations": out})
}

type cancelReservationReq struct {
	Reason string `json:"reason"`
}

func (h *ReservationHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid reservation id")
		return
	}
	var req cancelReservationReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	err := h.reservations.Cancel(c.Request.Context(), reservation.CancelCommand{
		ReservationID: types.ID(id),
		ActorType:     "passenger",
		Reason:        req.Reason,
	})
	if err != nil {
		writeReservationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": reservation.StatusCancelled})
}

func (h *ReservationHandler) Confirm(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid reservation id")
		return
	}
	err := h.reservations.Confirm(c.Request.Context(), reservation.ConfirmCommand{
		ReservationID: types.ID(id),
		ActorID:       types.ID(httpmiddleware.CallerUID(c)),
	})
	if err != nil {
		writeReservationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": reservation.StatusConfirmed})
}

func (h *ReservationHandler) Complete(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid reservation id")
		return
	}
	err := h.reservations.Complete(c.Request.Context(), reservation.CompleteCommand{
		ReservationID: types.ID(id),
		ActorID:       types.ID(httpmiddleware.CallerUID(c)),
	})
	if err != nil {
		writeReservationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": reservation.StatusCompleted})
}
