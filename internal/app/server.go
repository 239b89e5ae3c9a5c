// File: internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"rent_a_ride_backend/internal/auth"
	"rent_a_ride_backend/internal/booking"
	"rent_a_ride_backend/internal/common"
	"rent_a_ride_backend/internal/config"
	"rent_a_ride_backend/internal/jobs"
	"rent_a_ride_backend/internal/middleware"
	"rent_a_ride_backend/internal/payment"
	platformES "rent_a_ride_backend/internal/platform/elasticsearch"
	"rent_a_ride_backend/internal/shared"
	"rent_a_ride_backend/internal/user"
	"rent_a_ride_backend/internal/vehicle"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server struct holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config

	// Exposed for startup tasks in cmd/server.
	AppLogger *zap.Logger
	ESClient  *platformES.ESClientWrapper
	DB        *gorm.DB

	// Handlers
	userHandler    *user.Handler
	authHandler    *auth.Handler
	vehicleHandler *vehicle.Handler
	bookingHandler *booking.Handler
	paymentHandler *payment.Handler

	// Jobs
	bookingExpiryJob *jobs.BookingExpiryJob

	// Middleware instances
	authMW      gin.HandlerFunc
	adminRoleMW gin.HandlerFunc
}

// NewServer creates a new instance of our application server.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	userHandler *user.Handler,
	authHandler *auth.Handler,
	vehicleHandler *vehicle.Handler,
	bookingHandler *booking.Handler,
	paymentHandler *payment.Handler,
	bookingExpiryJob *jobs.BookingExpiryJob,
	db *gorm.DB,
	esClient *platformES.ESClientWrapper,
	tokenService shared.TokenService,
	blocklist auth.TokenBlocklistService,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(tokenService, blocklist, logger.Named("AuthMiddleware"))
	adminRoleMW := middleware.RoleAuthMiddleware(common.RoleAdmin)

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Rent A Ride API is healthy!"})
	})

	v1 := router.Group("/api/v1")

	authHandler.RegisterRoutes(v1, authMW)
	userHandler.RegisterRoutes(v1, authMW)
	vehicleHandler.RegisterRoutes(v1, authMW, adminRoleMW)
	bookingHandler.RegisterRoutes(v1, authMW, adminRoleMW)
	paymentHandler.RegisterRoutes(v1, authMW)

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:       httpServer,
		router:           router,
		cfg:              cfg,
		AppLogger:        logger,
		ESClient:         esClient,
		DB:               db,
		userHandler:      userHandler,
		authHandler:      authHandler,
		vehicleHandler:   vehicleHandler,
		bookingHandler:   bookingHandler,
		paymentHandler:   paymentHandler,
		bookingExpiryJob: bookingExpiryJob,
		authMW:           authMW,
		adminRoleMW:      adminRoleMW,
	}, nil
}

// Start brings up the background jobs and the HTTP listener. Blocks until
// the listener stops.
func (s *Server) Start() error {
	if s.bookingExpiryJob != nil {
		if err := s.bookingExpiryJob.SetupAndStart(); err != nil {
			s.AppLogger.Error("Failed to setup and start booking expiry job", zap.Error(err))
		}
	} else {
		s.AppLogger.Info("Booking expiry job is not configured, skipping start.")
	}

	s.AppLogger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.AppLogger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.AppLogger.Info("HTTP Server stopped")
	return nil
}

// Shutdown stops the job scheduler and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.AppLogger.Info("Attempting graceful server shutdown...")
	if s.bookingExpiryJob != nil {
		s.bookingExpiryJob.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
