// README: Entry point; loads config, wires services and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shuttle/internal/config"
	httptransport "shuttle/internal/http"
	"shuttle/internal/infra"
	"shuttle/internal/logging"
	"shuttle/internal/maps"
	"shuttle/internal/modules/pricing"
	"shuttle/internal/modules/promotion"
	"shuttle/internal/modules/reservation"
	"shuttle/internal/modules/tariff"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		logger.Warn("SHUTTLE_FIREBASE_PROJECT_ID not set; admin API will reject all requests")
	}
	verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		return fmt.Errorf("firebase init: %w", err)
	}

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	loc, _ := cfg.Location()
	deposit, _ := cfg.DepositFraction()

	tariffSvc := tariff.NewService(tariff.NewStore(dbPool), tariff.NewCache(redisClient, cfg.Tariff.CacheTTL), logger)

	engine, err := pricing.NewEngine(pricing.DefaultRuleSet(), pricing.SystemClock{Location: loc})
	if err != nil {
		return err
	}
	pricingSvc := pricing.NewService(engine, tariffSvc, logger)

	promotionSvc := promotion.NewService(promotion.NewStore(dbPool), deposit, logger)
	reservationSvc := reservation.NewService(reservation.NewStore(dbPool), pricingSvc, promotionSvc, logger)

	var (
		places *maps.PlacesService
		routes *maps.RouteService
	)
	mapsClient, err := maps.NewClient(cfg.Maps.APIKey, "")
	switch {
	case errors.Is(err, maps.ErrNotConfigured):
		logger.Warn("SHUTTLE_MAPS_API_KEY not set; autocomplete disabled")
	case err != nil:
		return err
	default:
		places = maps.NewPlacesService(mapsClient)
		routes = maps.NewRouteService(mapsClient)
	}

	gin.SetMode(gin.ReleaseMode)
	handler := httptransport.NewServer(httptransport.ServerDeps{
		Pricing:        pricingSvc,
		Tariffs:        tariffSvc,
		Promotions:     promotionSvc,
		Reservations:   reservationSvc,
		Places:         places,
		Routes:         routes,
		Verifier:       verifier,
		Logger:         logger,
		FallbackToBase: cfg.Pricing.FallbackToBase,
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if ttl := cfg.Reservation.PendingTTL; ttl > 0 {
		go reservationSvc.RunExpiryMonitor(ctx, cfg.Reservation.ExpiryInterval, ttl)
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("addr", cfg.HTTP.Addr),
			zap.String("timezone", loc.String()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return server.Shutdown(shutdownCtx)
}
