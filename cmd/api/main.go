package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/vitalhub/portal-api/config"
	"github.com/vitalhub/portal-api/internal/assistant"
	"github.com/vitalhub/portal-api/internal/assistant/aiclient"
	"github.com/vitalhub/portal-api/internal/handler"
	assessmentHandler "github.com/vitalhub/portal-api/internal/handler/assessment"
	chatHandler "github.com/vitalhub/portal-api/internal/handler/chat"
	"github.com/vitalhub/portal-api/internal/middleware"
	"github.com/vitalhub/portal-api/internal/repository/postgres"
	"github.com/vitalhub/portal-api/internal/router"
	"github.com/vitalhub/portal-api/internal/rules"
	"github.com/vitalhub/portal-api/internal/service/escalation"
	"github.com/vitalhub/portal-api/internal/service/patientdata"
	"github.com/vitalhub/portal-api/internal/session"
	"github.com/vitalhub/portal-api/pkg/circuitbreaker"
	"github.com/vitalhub/portal-api/pkg/logger"
	"github.com/vitalhub/portal-api/pkg/messaging"
	redisbroker "github.com/vitalhub/portal-api/pkg/messaging/redis"
	"github.com/vitalhub/portal-api/pkg/metrics"
	"github.com/vitalhub/portal-api/pkg/security"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	zl := appLogger.Zerolog()

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("portal", "engine")

	// Patient data read path with encrypted snapshot cache
	var encryptor security.Encryptor
	if cfg.Cache.EncryptionKey != "" {
		encryptor, err = security.NewAESEncryptor([]byte(cfg.Cache.EncryptionKey))
		if err != nil {
			log.Fatal().Err(err).Msg("invalid cache encryption key")
		}
	}
	patientDataRepo := postgres.NewPatientDataRepository(db)
	dataSvc := patientdata.NewService(patientDataRepo, cfg.Cache.TTL, cfg.Cache.CleanupInterval, encryptor, m, zl)

	// Emergency escalation fan-out. The broker is best effort: the portal
	// still answers turns when Redis is down.
	var broker messaging.Broker
	if cfg.Redis.URL != "" {
		broker, err = redisbroker.NewRedisBroker(redisbroker.Config{URL: cfg.Redis.URL}, &zl)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, emergency events will not be published")
		}
	}
	escalationSvc := escalation.NewService(broker, cfg.Escalation, m, zl)

	// AI orchestration with local rule-engine fallback
	aiClient := aiclient.NewHTTPClient(aiclient.Config{
		Endpoint:          cfg.AI.Endpoint,
		APIKey:            cfg.AI.APIKey,
		Model:             cfg.AI.Model,
		Timeout:           cfg.AI.Timeout,
		RequestsPerSecond: cfg.AI.RequestsPerSecond,
	})
	breaker := circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
		Name:        "ai-service",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
	})
	responder := assistant.NewResponder(aiClient, rules.NewEngine(), breaker, assistant.Config{
		MaxRetries:     cfg.AI.MaxRetries,
		BackoffBase:    cfg.AI.BackoffBase,
		AttemptTimeout: cfg.AI.Timeout,
	}, m, zl)
	controller := session.NewController(responder)

	// Handlers
	h := handler.NewHandler(db)
	chatH := chatHandler.NewHandler(dataSvc, controller, escalationSvc, zl)
	assessmentH := assessmentHandler.NewHandler(dataSvc, escalationSvc, m, zl)

	// Router
	rateLimit := rate.Limit(0)
	if cfg.RateLimit.Enabled {
		rateLimit = rate.Limit(cfg.RateLimit.RequestsPerSecond)
	}
	r := router.NewRouter(chatH, assessmentH, h, router.Config{
		RateLimit:     rateLimit,
		RateBurst:     cfg.RateLimit.Burst,
		CORSConfig:    middleware.DefaultCORSConfig(),
		MetricsPrefix: "portal_api",
	})
	r.Setup()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        r.Engine(),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// Start server
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	if broker != nil {
		if err := broker.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close broker")
		}
	}

	log.Info().Msg("server exited properly")
}
