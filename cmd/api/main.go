package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/loftgolf/booking-platform/internal/api/router"
	"github.com/loftgolf/booking-platform/internal/booking"
	"github.com/loftgolf/booking-platform/internal/cards"
	appconfig "github.com/loftgolf/booking-platform/internal/config"
	"github.com/loftgolf/booking-platform/internal/http/handlers"
	httpmiddleware "github.com/loftgolf/booking-platform/internal/http/middleware"
	"github.com/loftgolf/booking-platform/internal/observability/metrics"
	"github.com/loftgolf/booking-platform/internal/uschedule"
	"github.com/loftgolf/booking-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting loftgolf booking platform API",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if cfg.USAlias == "" || cfg.USAppKey == "" {
		logger.Error("USCHEDULE_ALIAS and USCHEDULE_APP_KEY are required")
		os.Exit(1)
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	vendorMetrics := metrics.NewVendorMetrics(registry)
	bookingMetrics := metrics.NewBookingMetrics(registry)

	// Vendor client and authenticator
	usClient := uschedule.NewClient(uschedule.Config{
		BaseURL: cfg.USProductionHost,
		Alias:   cfg.USAlias,
		AppKey:  cfg.USAppKey,
		Timeout: cfg.USTimeout,
	}, logger, uschedule.WithMetrics(vendorMetrics))
	authenticator := uschedule.NewAuthenticator(cfg.Hosts(), usClient, logger)

	// Booking sessions
	manager := booking.NewManager(usClient, logger, bookingMetrics, cfg.SessionIdleTimeout)
	sessions := handlers.NewSessionRegistry()

	// Card vault (optional: requires Redis)
	var cardsHandler *handlers.CardsHandler
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		cardStore := cards.NewRedisStore(redisClient, cfg.CardVaultTTL)
		cardsHandler = handlers.NewCardsHandler(cardStore, logger)
		logger.Info("card vault enabled", "addr", cfg.RedisAddr)
	} else {
		logger.Warn("REDIS_ADDR not set, card vault disabled")
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authenticator, manager, sessions, logger)
	wizardHandler := handlers.NewWizardHandler(manager, sessions, logger)
	appointmentsHandler := handlers.NewAppointmentsHandler(manager, sessions, usClient, logger)
	customerHandler := handlers.NewCustomerHandler(usClient, logger)

	// Auth endpoints get a small per-IP budget.
	authLimiter := httpmiddleware.NewRateLimiter(1, cfg.AuthRateLimitBurst)
	stop := make(chan struct{})
	authLimiter.StartSweeper(5*time.Minute, stop)

	r := router.New(&router.Config{
		Logger:             logger,
		Sessions:           sessions,
		Auth:               authHandler,
		Wizard:             wizardHandler,
		Appointments:       appointmentsHandler,
		Customer:           customerHandler,
		Cards:              cardsHandler,
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AuthRateLimit:      authLimiter,
	})

	// Evict idle booking sessions in the background.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				manager.Sweep()
			case <-stop:
				return
			}
		}
	}()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
