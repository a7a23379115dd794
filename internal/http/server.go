// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"shuttle/internal/http/handlers"
	"shuttle/internal/http/middleware"
	"shuttle/internal/infra"
	"shuttle/internal/maps"
	"shuttle/internal/modules/pricing"
	"shuttle/internal/modules/promotion"
	"shuttle/internal/modules/reservation"
	"shuttle/internal/modules/tariff"
)

type ServerDeps struct {
	Pricing      *pricing.Service
	Tariffs      *tariff.Service
	Promotions   *promotion.Service
	Reservations *reservation.Service
	Places       *maps.PlacesService
	Routes       *maps.RouteService
	Verifier     infra.TokenVerifier
	Logger       *zap.Logger
	// FallbackToBase is the quote endpoint's policy for unquotable schedules.
	FallbackToBase bool
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Server{deps: deps}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(s.deps.Logger), middleware.Recovery(s.deps.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var fares pricing.BaseFareLookup
	if s.deps.Tariffs != nil {
		fares = s.deps.Tariffs
	}
	quotes := handlers.NewQuoteHandler(s.deps.Pricing, fares, s.deps.FallbackToBase, s.deps.Logger)
	tariffs := handlers.NewTariffHandler(s.deps.Tariffs)
	payments := handlers.NewPaymentHandler(s.deps.Promotions)
	reservations := handlers.NewReservationHandler(s.deps.Reservations)
	places := handlers.NewPlacesHandler(s.deps.Places, s.deps.Routes)

	api := r.Group("/api")
	api.POST("/quotes", quotes.Create)
	api.GET("/fare-rules", quotes.Rules)
	api.GET("/tariffs", tariffs.List)
	api.GET("/tariffs/:destination", tariffs.Get)
	api.POST("/payment-options", payments.Options)
	api.POST("/reservations", reservations.Create)
	api.GET("/reservations/:id", reservations.Get)
	api.POST("/reservations/:id/cancel", reservations.Cancel)
	api.GET("/places/autocomplete", places.Autocomplete)
	api.GET("/routes/estimate", places.RouteEstimate)

	admin := api.Group("/admin",
		middleware.Auth(s.deps.Verifier, s.deps.Logger),
		middleware.RequireRole(middleware.RoleAdmin))
	admin.PUT("/tariffs/:destination", tariffs.Upsert)
	admin.DELETE("/tariffs/:destination", tariffs.Deactivate)
	admin.PUT("/promotions/:code", payments.UpsertPromotion)
	admin.GET("/reservations", reservations.List)
	admin.POST("/reservations/:id/confirm", reservations.Confirm)
	admin.POST("/reservations/:id/complete", reservations.Complete)

	return r
}
