package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"axisride/internal/domain"
	"axisride/internal/handler"
	"axisride/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler         *handler.AuthHandler
	DriverHandler       *handler.DriverHandler
	SubscriptionHandler *handler.SubscriptionHandler
	TripHandler         *handler.TripHandler
	ReservationHandler  *handler.ReservationHandler
	PaymentHandler      *handler.PaymentHandler
	DisputeHandler      *handler.DisputeHandler
	ReviewHandler       *handler.ReviewHandler
	GroupHandler        *handler.GroupHandler
	TokenResolver       middleware.TokenResolver
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.Idempotency(deps.RedisClient))

	authed := middleware.AuthMiddleware(deps.TokenResolver)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Auth routes (unauthenticated).
		auth := v1.Group("/auth")
		{
			auth.POST("/register", deps.AuthHandler.Register)
			auth.POST("/register/verify", deps.AuthHandler.VerifyRegistration)
			auth.POST("/login", deps.AuthHandler.RequestLogin)
			auth.POST("/login/verify", deps.AuthHandler.VerifyLogin)
		}

		// User routes.
		users := v1.Group("/users", authed)
		{
			users.GET("/me", deps.AuthHandler.Me)
		}

		// Driver routes. Profile and rating reads are public.
		drivers := v1.Group("/drivers")
		{
			drivers.PUT("/me/profile", authed, deps.DriverHandler.SubmitProfile)
			drivers.GET("/:id/profile", deps.DriverHandler.GetProfile)
			drivers.GET("/:id/rating", deps.DriverHandler.GetRating)
			drivers.GET("/:id/reviews", deps.ReviewHandler.ListDriverReviews)
		}

		// Subscription routes.
		subscriptions := v1.Group("/subscriptions", authed)
		{
			subscriptions.POST("", deps.SubscriptionHandler.Subscribe)
			subscriptions.POST("/trial", deps.SubscriptionHandler.StartTrial)
			subscriptions.GET("/me", deps.SubscriptionHandler.GetStatus)
		}

		// Trip routes. Search and detail are public.
		trips := v1.Group("/trips")
		{
			trips.GET("", deps.TripHandler.SearchTrips)
			trips.GET("/:id", deps.TripHandler.GetTrip)
			trips.POST("", authed, deps.TripHandler.PublishTrip)
			trips.POST("/:id/cancel", authed, deps.TripHandler.CancelTrip)
			trips.POST("/:id/complete", authed, deps.TripHandler.CompleteTrip)
			trips.GET("/:id/reservations", authed, deps.TripHandler.ListTripReservations)
		}

		// Reservation routes.
		reservations := v1.Group("/reservations", authed)
		{
			reservations.POST("", deps.ReservationHandler.CreateReservation)
			reservations.GET("", deps.ReservationHandler.ListReservations)
			reservations.GET("/:id", deps.ReservationHandler.GetReservation)
			reservations.POST("/:id/validate", deps.ReservationHandler.ValidateBoarding)
			reservations.POST("/:id/cancel", deps.ReservationHandler.CancelReservation)
			reservations.GET("/:id/payments", deps.PaymentHandler.ListReservationPayments)
			reservations.GET("/:id/review", deps.ReviewHandler.GetReservationReview)
		}

		// Payment routes.
		payments := v1.Group("/payments", authed)
		{
			payments.POST("", deps.PaymentHandler.InitiatePayment)
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
		}

		// Dispute routes.
		disputes := v1.Group("/disputes", authed)
		{
			disputes.POST("", deps.DisputeHandler.OpenDispute)
			disputes.GET("/:id", deps.DisputeHandler.GetDispute)
		}

		// Review routes.
		reviews := v1.Group("/reviews", authed)
		{
			reviews.POST("", deps.ReviewHandler.SubmitReview)
		}

		// Travel group routes.
		groups := v1.Group("/groups", authed)
		{
			groups.POST("", deps.GroupHandler.CreateGroup)
			groups.GET("", deps.GroupHandler.ListGroups)
			groups.GET("/:id", deps.GroupHandler.GetGroup)
			groups.POST("/:id/join", deps.GroupHandler.JoinGroup)
			groups.GET("/:id/members", deps.GroupHandler.ListGroupMembers)
		}

		// Admin routes.
		admin := v1.Group("/admin", authed, adminOnly)
		{
			admin.POST("/users/:id/suspend", deps.AuthHandler.SuspendUser)
			admin.POST("/users/:id/reinstate", deps.AuthHandler.ReinstateUser)
			admin.POST("/drivers/:id/verify", deps.DriverHandler.VerifyDriver)
			admin.GET("/payments", deps.PaymentHandler.ListPayments)
			admin.POST("/reservations/:id/escrow/release", deps.PaymentHandler.ReleaseEscrow)
			admin.POST("/reservations/:id/escrow/refund", deps.PaymentHandler.RefundEscrow)
			admin.GET("/disputes", deps.DisputeHandler.ListDisputes)
			admin.POST("/disputes/:id/resolve", deps.DisputeHandler.ResolveDispute)
		}
	}

	return router
}
