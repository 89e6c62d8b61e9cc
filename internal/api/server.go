package api

import (
	"fmt"
	"net/http"

	"railbook/internal/cache"
	"railbook/internal/config"
	"railbook/internal/database"
	"railbook/internal/external"
	"railbook/internal/handlers"
	"railbook/internal/logger"
	"railbook/internal/messaging"
	"railbook/internal/metrics"
	"railbook/internal/middleware"
	"railbook/internal/repository"
	"railbook/internal/search"
	"railbook/internal/service"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP API process: database, messaging, caches and the
// gin router wired together.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
	repos    *repository.Repositories
}

func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// the API keeps serving without NATS; events are just skipped
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Get().Warn("NATS unavailable, events disabled", "error", err)
		natsClient = nil
	}

	valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
	if err != nil {
		logger.Get().Warn("Valkey unavailable, caching disabled", "error", err)
		valkeyClient = nil
	}

	routeIndex, err := search.NewRouteIndex(config.LoadElasticsearchConfig())
	if err != nil {
		logger.Get().Warn("Elasticsearch unavailable, route search falls back to SQL", "error", err)
		routeIndex = nil
	}

	paymentClient := external.NewPaymentClient(cfg.Payment)

	store := repository.NewStore(db)
	repos := repository.NewRepositories(db)
	services := service.NewServices(store, repos, natsClient, paymentClient, valkeyClient, routeIndex,
		service.Options{RACCapacity: cfg.RACCapacity})

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services, s.valkey)

	api := s.router.Group("/api")
	api.Use(middleware.BasicAuth(s.repos.Users, s.valkey))
	{
		bookings := api.Group("/bookings")
		{
			bookings.POST("", h.CreateBooking)
			bookings.GET("", h.ListBookings)
			bookings.GET("/all", h.ListAllBookings)
			bookings.GET("/:id", h.GetBooking)
			bookings.PATCH("/cancel", h.CancelBooking)
		}

		trains := api.Group("/trains")
		{
			trains.GET("", h.ListTrains)
			trains.GET("/:id/seats", h.ListTrainSeats)
			trains.GET("/:id/routes", h.ListTrainRoutes)
			trains.GET("/:id/availability", h.GetTrainAvailability)
		}

		routes := api.Group("/routes")
		{
			routes.GET("/search", h.SearchRoutes)
		}

		queues := api.Group("/queues")
		{
			queues.GET("/rac", h.ListRAC)
			queues.GET("/waitlist", h.ListWaitlist)
		}

		payments := api.Group("/payments")
		{
			payments.GET("/success", h.NotifyPaymentCompleted)
			payments.GET("/fail", h.NotifyPaymentFailed)
			payments.GET("/status", h.GetPaymentStatus)
			payments.POST("/notifications", h.OnPaymentUpdates)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

func (s *Server) healthCheck(c *gin.Context) {
	dbHealth := s.db.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if dbHealth.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   dbHealth.Status,
		"service":  "railbook-api",
		"version":  "1.0.0",
		"database": dbHealth,
	})
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes the outbound connections.
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			logger.Get().Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
