package router

import (
	"github.com/gin-gonic/gin"

	"dineqr_backend/internal/handlers"
	"dineqr_backend/internal/middleware"
	"dineqr_backend/internal/models"
	"dineqr_backend/internal/services"
)

// SetupPublicAuthRoutes sets up login, token refresh and restaurant
// onboarding. All of these are reachable without credentials.
func SetupPublicAuthRoutes(apiGroup *gin.RouterGroup, authHandler *handlers.AuthHandler, restaurantHandler *handlers.RestaurantHandler) {
	authRoutes := apiGroup.Group("/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/refresh-token", authHandler.Refresh)
	}
	apiGroup.POST("/restaurants", restaurantHandler.Onboard)
}

// SetupAuthenticatedAuthRoutes sets up the JWT-protected auth routes.
func SetupAuthenticatedAuthRoutes(group *gin.RouterGroup, authHandler *handlers.AuthHandler) {
	group.GET("/me", authHandler.Profile)
}

// SetupPublicMenuRoutes sets up the unauthenticated reads used by the guest
// web client: QR resolution and the menu itself.
func SetupPublicMenuRoutes(apiGroup *gin.RouterGroup, menuHandler *handlers.MenuHandler, tableHandler *handlers.TableHandler) {
	apiGroup.GET("/public/tables/qr/:code", tableHandler.ResolveQR)
	apiGroup.GET("/public/restaurants/:id/menu", menuHandler.PublicMenu)
}

// SetupGuestRoutes sets up the guest-facing session and ordering routes.
// Everything except session creation requires a valid X-Session-Token.
func SetupGuestRoutes(apiGroup *gin.RouterGroup, sessionHandler *handlers.SessionHandler, orderHandler *handlers.OrderHandler, paymentHandler *handlers.PaymentHandler, sessionService services.SessionService) {
	public := apiGroup.Group("/public")
	public.POST("/sessions", sessionHandler.Start)

	guest := public.Group("")
	guest.Use(middleware.GuestSessionMiddleware(sessionService))
	{
		guest.GET("/sessions/me", sessionHandler.Current)
		guest.PATCH("/sessions/me", sessionHandler.Update)
		guest.DELETE("/sessions/me", sessionHandler.End)

		guest.POST("/orders", orderHandler.CreateGuestOrder)
		guest.GET("/orders/:id", orderHandler.TrackGuestOrder)
		guest.POST("/orders/:id/payment-intent", paymentHandler.CreateIntent)
	}
}

// SetupRestaurantRoutes sets up restaurant and staff management.
func SetupRestaurantRoutes(authenticatedGroup *gin.RouterGroup, restaurantHandler *handlers.RestaurantHandler, staffHandler *handlers.StaffHandler) {
	restaurantRoutes := authenticatedGroup.Group("/restaurants")
	{
		restaurantRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleAdmin), restaurantHandler.List)
		restaurantRoutes.GET("/:id", restaurantHandler.Get)
		restaurantRoutes.PATCH("/:id", restaurantHandler.Update)

		restaurantRoutes.POST("/:id/staff", staffHandler.Register)
		restaurantRoutes.GET("/:id/staff", staffHandler.List)
	}

	staffRoutes := authenticatedGroup.Group("/staff")
	{
		staffRoutes.PATCH("/:id", staffHandler.Update)
		staffRoutes.DELETE("/:id", staffHandler.Deactivate)
	}
}

// SetupTableRoutes sets up the table management routes.
func SetupTableRoutes(authenticatedGroup *gin.RouterGroup, tableHandler *handlers.TableHandler) {
	authenticatedGroup.POST("/restaurants/:id/tables", tableHandler.Create)
	authenticatedGroup.GET("/restaurants/:id/tables", tableHandler.List)

	tableRoutes := authenticatedGroup.Group("/tables")
	{
		tableRoutes.GET("/:id", tableHandler.Get)
		tableRoutes.PATCH("/:id", tableHandler.Update)
		tableRoutes.DELETE("/:id", tableHandler.Delete)
		tableRoutes.GET("/:id/qrcode", tableHandler.QRCode)
	}
}

// SetupMenuRoutes sets up the catalog management routes.
func SetupMenuRoutes(authenticatedGroup *gin.RouterGroup, menuHandler *handlers.MenuHandler) {
	authenticatedGroup.POST("/restaurants/:id/menu/categories", menuHandler.CreateCategory)
	authenticatedGroup.GET("/restaurants/:id/menu/categories", menuHandler.ListCategories)
	authenticatedGroup.POST("/restaurants/:id/menu/items", menuHandler.CreateItem)
	authenticatedGroup.GET("/restaurants/:id/menu/items", menuHandler.ListItems)

	categoryRoutes := authenticatedGroup.Group("/menu/categories")
	{
		categoryRoutes.PATCH("/:id", menuHandler.UpdateCategory)
		categoryRoutes.DELETE("/:id", menuHandler.DeleteCategory)
	}

	itemRoutes := authenticatedGroup.Group("/menu/items")
	{
		itemRoutes.GET("/:id", menuHandler.GetItem)
		itemRoutes.PATCH("/:id", menuHandler.UpdateItem)
		itemRoutes.DELETE("/:id", menuHandler.DeleteItem)

		itemRoutes.POST("/:id/options", menuHandler.CreateOption)
		itemRoutes.PATCH("/:id/options/:optionId", menuHandler.UpdateOption)
		itemRoutes.DELETE("/:id/options/:optionId", menuHandler.DeleteOption)
	}
}

// SetupOrderRoutes sets up the staff order routes.
func SetupOrderRoutes(authenticatedGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler) {
	authenticatedGroup.POST("/restaurants/:id/orders", orderHandler.CreateStaffOrder)
	authenticatedGroup.GET("/restaurants/:id/orders", orderHandler.List)
	authenticatedGroup.GET("/restaurants/:id/orders/unreconciled", orderHandler.ListUnreconciled)

	orderRoutes := authenticatedGroup.Group("/orders")
	{
		orderRoutes.GET("/:id", orderHandler.Get)
		orderRoutes.PATCH("/:id/status", orderHandler.UpdateStatus)
	}
}

// SetupPaymentRoutes sets up payment recording and gateway configuration.
func SetupPaymentRoutes(authenticatedGroup *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	orderPaymentRoutes := authenticatedGroup.Group("/orders/:id")
	{
		orderPaymentRoutes.POST("/payments", paymentHandler.Record)
		orderPaymentRoutes.GET("/payments", paymentHandler.ListTransactions)
		orderPaymentRoutes.PATCH("/payment-status", paymentHandler.UpdateStatus)
	}

	gatewayRoutes := authenticatedGroup.Group("/restaurants/:id/gateways")
	gatewayRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleOwner, models.RoleManager))
	{
		gatewayRoutes.POST("", paymentHandler.ConfigureGateway)
		gatewayRoutes.GET("", paymentHandler.ListGateways)
	}
}

// SetupSpecialRoutes sets up daily special management.
func SetupSpecialRoutes(authenticatedGroup *gin.RouterGroup, specialHandler *handlers.SpecialHandler) {
	authenticatedGroup.POST("/restaurants/:id/specials", specialHandler.Create)
	authenticatedGroup.GET("/restaurants/:id/specials", specialHandler.List)

	specialRoutes := authenticatedGroup.Group("/specials")
	{
		specialRoutes.PATCH("/:id", specialHandler.Update)
		specialRoutes.DELETE("/:id", specialHandler.Deactivate)
	}
}

// SetupAnalyticsRoutes sets up the analytics reads.
func SetupAnalyticsRoutes(authenticatedGroup *gin.RouterGroup, analyticsHandler *handlers.AnalyticsHandler) {
	analyticsRoutes := authenticatedGroup.Group("/restaurants/:id/analytics")
	analyticsRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleOwner, models.RoleManager))
	{
		analyticsRoutes.GET("/sales", analyticsHandler.Sales)
		analyticsRoutes.GET("/menu", analyticsHandler.Menu)
	}
}
