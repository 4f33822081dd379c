// File: roombooking/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"roombooking/config"
	reservationRepo "roombooking/database/repository/reservation"
	userRepoPkg "roombooking/database/repository/user"
	"roombooking/handlers"
	"roombooking/models"
	"roombooking/routes"
	"roombooking/services/cache"
	"roombooking/services/gateway"
	"roombooking/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Cache backend.
	var (
		availabilityCache cache.AvailabilityCache = cache.NewMemoryCache()
		redisClient       *redis.Client
	)
	if strings.EqualFold(cfg.CacheBackend, "redis") {
		client, err := utils.GetCacheClient()
		if err != nil {
			logger.Warn("main: redis cache unavailable, using memory cache", zap.Error(err))
		} else {
			redisClient = client
			availabilityCache = cache.NewRedisCache(client, logger)
			defer client.Close()
		}
	}

	username, password := cfg.APIUsername, cfg.APIPassword
	baseURL := cfg.APIBaseURL

	// Optional local API simulator.
	var srv *http.Server
	if cfg.SimulatorEnabled {
		if username == "" {
			username, password = "demo", "demo"
		}
		users := userRepoPkg.NewMemoryUserRepo()
		if _, err := userRepoPkg.Seed(users, username, password); err != nil {
			logger.Sugar().Fatalf("main: failed to seed simulator user: %v", err)
		}
		reservations := reservationRepo.NewMemoryReservationRepo(reservationRepo.SeedRoomTypes(), models.HourlySlots(9, 17))

		if config.IsProduction() {
			gin.SetMode(gin.ReleaseMode)
		}
		handlerBundle := handlers.NewHandlerBundle(users, reservations, cfg.SessionTTL())
		router := routes.NewSimulatorRouter(handlerBundle, routes.Options{
			AllowedOrigins:    cfg.SimulatorAllowedOrigins,
			MaxRequestsPerMin: cfg.SimulatorMaxRequestsPerMin,
		})
		utils.StartHealthMonitor(ctx, redisClient, time.Minute)

		srv = &http.Server{Addr: cfg.SimulatorAddr, Handler: router}
		logger.Sugar().Infof("Starting simulator on %s...", srv.Addr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Sugar().Fatalf("main: simulator failed to start: %v", err)
			}
		}()
		if strings.HasPrefix(cfg.SimulatorAddr, ":") {
			baseURL = "http://127.0.0.1" + cfg.SimulatorAddr
		} else {
			baseURL = "http://" + cfg.SimulatorAddr
		}
	}

	gw, err := gateway.NewDefaultGateway(baseURL, gateway.Options{
		Timeout:    cfg.HTTPTimeout(),
		RatePerSec: cfg.MaxRequestsPerSec,
		Burst:      cfg.RequestBurst,
		CSRFCookie: cfg.CSRFCookieName,
		CSRFHeader: cfg.CSRFHeaderName,
		Logger:     logger,
	})
	if err != nil {
		logger.Sugar().Fatalf("main: %v", err)
	}
	if username != "" {
		if err := login(ctx, gw, username, password); err != nil {
			logger.Warn("main: login failed, requests will need a session", zap.String("username", username), zap.Error(err))
		}
	}

	console := handlers.NewConsole(handlers.ConsoleOptions{
		In:       os.Stdin,
		Out:      os.Stdout,
		API:      gw,
		Cache:    availabilityCache,
		Debounce: cfg.Debounce(),
		LoginURL: cfg.LoginURL,
		Logger:   logger,
	})
	done := make(chan error, 1)
	go func() { done <- console.Run(ctx) }()

	select {
	case <-ctx.Done():
		logger.Sugar().Info("main: shutting down...")
	case err := <-done:
		if err != nil {
			logger.Warn("main: console stopped", zap.Error(err))
		}
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Sugar().Errorf("main: simulator forced to shutdown: %v", err)
		}
	}
	logger.Sugar().Info("main: stopped gracefully")
}

// login retries briefly while the simulator starts listening.
func login(ctx context.Context, gw *gateway.DefaultGateway, username, password string) error {
	var err error
	for attempt := 0; attempt < 5; attempt++ {
		if err = gw.Login(ctx, username, password); err == nil || gateway.StatusOf(err) != 0 {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(200 * time.Millisecond):
		}
	}
	return err
}
