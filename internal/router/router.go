package router

import (
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"

	"dineqr_backend/internal/cache"
	"dineqr_backend/internal/handlers"
	"dineqr_backend/internal/middleware"
	"dineqr_backend/internal/repositories"
	"dineqr_backend/internal/services"
)

// Options carries the runtime knobs the service layer needs.
type Options struct {
	SessionTTL         time.Duration
	AllowAnyTransition bool
}

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB, sessionCache cache.SessionCache, opts Options) {
	// Initialize Repositories
	authRepo := repositories.NewAuthRepository(db)
	restaurantRepo := repositories.NewRestaurantRepository(db)
	tableRepo := repositories.NewTableRepository(db)
	sessionRepo := repositories.NewSessionRepository(db)
	menuRepo := repositories.NewMenuRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	specialRepo := repositories.NewSpecialRepository(db)
	analyticsRepo := repositories.NewAnalyticsRepository(db)

	// Initialize Services
	authzService := services.NewAuthzService(authRepo)
	authService := services.NewAuthService(authRepo, restaurantRepo, authzService, db)
	restaurantService := services.NewRestaurantService(restaurantRepo, authRepo, authzService, db)
	tableService := services.NewTableService(tableRepo, restaurantRepo, authzService, db)
	sessionService := services.NewSessionService(sessionRepo, tableRepo, restaurantRepo, sessionCache, db, opts.SessionTTL)
	menuService := services.NewMenuService(menuRepo, authzService, db)
	specialService := services.NewSpecialService(specialRepo, authzService, db)
	orderService := services.NewOrderService(orderRepo, menuRepo, tableRepo, restaurantRepo, specialRepo, authzService, db, opts.AllowAnyTransition)
	paymentService := services.NewPaymentService(paymentRepo, orderRepo, restaurantRepo, authzService, db)
	analyticsService := services.NewAnalyticsService(analyticsRepo, authzService)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(authService)
	restaurantHandler := handlers.NewRestaurantHandler(restaurantService)
	staffHandler := handlers.NewStaffHandler(authService)
	tableHandler := handlers.NewTableHandler(tableService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	menuHandler := handlers.NewMenuHandler(menuService, specialService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	specialHandler := handlers.NewSpecialHandler(specialService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	apiV1 := engine.Group("/api/v1")

	// Public routes: onboarding, login and everything behind a scanned QR
	// code. Guest routes authenticate with X-Session-Token, not JWT.
	SetupPublicAuthRoutes(apiV1, authHandler, restaurantHandler)
	SetupPublicMenuRoutes(apiV1, menuHandler, tableHandler)
	SetupGuestRoutes(apiV1, sessionHandler, orderHandler, paymentHandler, sessionService)

	// Staff routes require a valid JWT.
	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware(authzService))
	{
		SetupAuthenticatedAuthRoutes(authenticated.Group("/auth"), authHandler)
		SetupRestaurantRoutes(authenticated, restaurantHandler, staffHandler)
		SetupTableRoutes(authenticated, tableHandler)
		SetupMenuRoutes(authenticated, menuHandler)
		SetupOrderRoutes(authenticated, orderHandler)
		SetupPaymentRoutes(authenticated, paymentHandler)
		SetupSpecialRoutes(authenticated, specialHandler)
		SetupAnalyticsRoutes(authenticated, analyticsHandler)
	}
}
