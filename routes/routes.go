package routes

import (
	"net/http"
	"time"

	"repairdesk/handlers"
	"repairdesk/middleware"
	"repairdesk/models"
	"repairdesk/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterRequestRoutes registers the service request lifecycle endpoints.
func RegisterRequestRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/requests")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.Users))

		userOnly := middleware.RequireRole(models.RoleUser)
		shopOnly := middleware.RequireRole(models.RoleService)

		api.POST("", userOnly, hb.Requests.CreateHandler)
		api.GET("/user", userOnly, hb.Requests.ListForUserHandler)
		api.GET("/shop", shopOnly, hb.Requests.ListForShopHandler)
		api.GET("/:id", hb.Requests.GetHandler)
		api.POST("/:id/update", shopOnly, hb.Requests.UpdateStatusHandler)
		api.POST("/:id/complete", shopOnly, hb.Requests.CompleteHandler)
		api.POST("/:id/payment", userOnly, hb.Requests.RecordPaymentHandler)
		api.POST("/:id/payment-intent", userOnly, hb.Requests.PaymentIntentHandler)
	}
}

// RegisterAnalyticsRoutes registers shop reporting.
func RegisterAnalyticsRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/analytics")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.Users), middleware.RequireRole(models.RoleService))
		api.GET("/service", hb.Analytics.ShopAnalyticsHandler)
	}
}

// RegisterUserRoutes registers notification and device endpoints for any signed-in account.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/user")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.Users))
		api.GET("/notifications", hb.Notifications.ListHandler)
		api.GET("/notifications/unread", hb.Notifications.UnreadCountHandler)
		api.POST("/notifications/read", hb.Notifications.MarkReadHandler)
		api.PUT("/fcm-token", hb.Notifications.RegisterTokenHandler)
	}
}

// RegisterChatRoutes registers the shop/customer messaging endpoints.
func RegisterChatRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	chat := r.Group("/api/chat")
	{
		chat.Use(middleware.JWTAuthMiddleware(hb.Users))
		chat.POST("/read/:shopId/:userId", hb.Chat.MarkReadHandler)
		chat.POST("/:shopId", middleware.RequireRole(models.RoleUser), hb.Chat.SendToShopHandler)
		chat.GET("/:shopId", middleware.RequireRole(models.RoleUser), hb.Chat.OwnThreadHandler)
		chat.GET("/:shopId/:userId", hb.Chat.ThreadHandler)
		chat.POST("/:shopId/:userId", middleware.RequireRole(models.RoleService, models.RoleAdmin), hb.Chat.SendToUserHandler)
	}

	shop := r.Group("/api/shop")
	{
		shop.Use(middleware.JWTAuthMiddleware(hb.Users), middleware.RequireRole(models.RoleService))
		shop.GET("/conversations", hb.Chat.ConversationsHandler)
		shop.GET("/unread-count", hb.Chat.UnreadCountHandler)
	}
}

// RegisterWarrantyRoutes registers warranty registration and lookup for customers and admins.
func RegisterWarrantyRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api")
	{
		api.Use(middleware.JWTAuthMiddleware(hb.Users), middleware.RequireRole(models.RoleUser, models.RoleAdmin))
		api.POST("/warranty", hb.Warranties.RegisterHandler)
		api.GET("/warranty/:modelNumber", hb.Warranties.ByModelNumberHandler)
		api.GET("/warranties", hb.Warranties.ListHandler)
		api.GET("/warranties/:id", hb.Warranties.GetHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	admin := r.Group("/api/admin")
	{
		admin.Use(middleware.JWTAuthMiddleware(hb.Users), middleware.RequireRole(models.RoleAdmin))
		admin.GET("/transactions", hb.Admin.TransactionsHandler)
	}
}

// RegisterHealthRoute exposes the latest Mongo and Redis probe results.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		status := utils.GetHealthStatus()
		code := http.StatusOK
		if !status.Mongo {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterRequestRoutes(r, hb)
	RegisterAnalyticsRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterChatRoutes(r, hb)
	RegisterWarrantyRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
