package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"axisride/internal/app"
	"axisride/internal/config"
	"axisride/internal/handler"
	internalRedis "axisride/internal/redis"
	"axisride/internal/repository/postgres"
	"axisride/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Initialize the event publisher.
	var events service.EventPublisher = service.NopPublisher{}
	if cfg.Kafka.Enabled {
		publisher := service.NewKafkaPublisher(cfg.Kafka.Brokers)
		defer publisher.Close()
		events = publisher
		log.Printf("Kafka enabled: brokers=%v", cfg.Kafka.Brokers)
	}

	// Wire dependencies.
	server, err := wireServer(db, redisClient, nrApp, events, cfg)
	if err != nil {
		log.Fatalf("failed to wire server: %v", err)
	}

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, events service.EventPublisher, cfg *config.Config) (*http.Server, error) {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	otpStore := internalRedis.NewOTPStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	userRepo := postgres.NewUserRepository(db)
	profileRepo := postgres.NewDriverProfileRepository(db)
	subscriptionRepo := postgres.NewSubscriptionRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	reservationRepo := postgres.NewReservationRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	disputeRepo := postgres.NewDisputeRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	groupRepo := postgres.NewGroupRepository(db)

	// Initialize external adapters. The mock gateway and sender stand in
	// until the aggregator integration lands.
	gateway := service.NewMockGateway()
	otpSender := service.NewMockOTPSender()

	tokens, err := service.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	// Initialize services.
	identityService := service.NewIdentityService(userRepo, otpStore, otpSender, tokens, events)
	profileService := service.NewDriverProfileService(profileRepo, cacheStore)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, gateway)
	tripService := service.NewTripCatalogService(tripRepo, profileRepo, subscriptionService, cacheStore)
	reservationStore := service.NewTxReservationStore(db)
	engine := service.NewReservationEngine(reservationStore, tripRepo, reservationRepo, subscriptionService, cacheStore, events)
	escrowService := service.NewEscrowService(paymentRepo, engine, gateway, lockStore, events)
	disputeService := service.NewDisputeService(disputeRepo, reservationRepo, tripRepo, escrowService)
	reviewService := service.NewReviewService(reviewRepo, reservationRepo, tripRepo, profileRepo, cacheStore)
	groupService := service.NewGroupService(groupRepo, subscriptionService)

	// Initialize handlers.
	authHandler := handler.NewAuthHandler(identityService)
	driverHandler := handler.NewDriverHandler(profileService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	tripHandler := handler.NewTripHandler(tripService, engine)
	reservationHandler := handler.NewReservationHandler(engine)
	paymentHandler := handler.NewPaymentHandler(escrowService)
	disputeHandler := handler.NewDisputeHandler(disputeService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	groupHandler := handler.NewGroupHandler(groupService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		AuthHandler:         authHandler,
		DriverHandler:       driverHandler,
		SubscriptionHandler: subscriptionHandler,
		TripHandler:         tripHandler,
		ReservationHandler:  reservationHandler,
		PaymentHandler:      paymentHandler,
		DisputeHandler:      disputeHandler,
		ReviewHandler:       reviewHandler,
		GroupHandler:        groupHandler,
		TokenResolver:       identityService,
		RedisClient:         redisClient,
		NewRelicApp:         nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}
