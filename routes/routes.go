package routes

import (
	"net/http"

	"github.com/nivedh-m/VendorSphere/config"
	"github.com/nivedh-m/VendorSphere/controllers"
	"github.com/nivedh-m/VendorSphere/gateways"
	"github.com/nivedh-m/VendorSphere/middleware"
	"github.com/nivedh-m/VendorSphere/payments"
	"github.com/nivedh-m/VendorSphere/repositories"
	"github.com/nivedh-m/VendorSphere/utils"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter initializes and returns the Gin router with all routes
func SetupRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()

	router.Use(utils.LoggerMiddleware())
	router.Use(utils.RecoveryMiddleware())
	router.Use(utils.CORSMiddleware())
	router.Use(utils.RequestIDMiddleware())
	router.Use(utils.SecurityHeadersMiddleware())

	// Session middleware backs guest carts
	store := cookie.NewStore([]byte(cfg.JWTSecret))
	store.Options(sessions.Options{
		MaxAge:   60 * 60 * 24, // 1 day
		Path:     "/",
		Secure:   cfg.Env == "production",
		HttpOnly: true,
	})
	router.Use(sessions.Sessions("vendorsphere", store))

	wirePayments(cfg)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/v1")
	{
		initAuthRoutes(api)
		initCatalogRoutes(api)
		initCartRoutes(api)
		initOrderRoutes(api)
		initPaymentRoutes(api)
		initAdminRoutes(api)
	}

	return router
}

// wirePayments builds the payment core and hands it to the controllers.
func wirePayments(cfg *config.Config) {
	stripe := gateways.NewStripeGateway(cfg.Stripe)
	registry := gateways.NewRegistry(
		stripe,
		gateways.NewPayFastGateway(cfg.PayFast, cfg.BaseURL),
		gateways.NewPayTodayGateway(cfg.PayToday, cfg.BaseURL),
		gateways.NewDOPGateway(cfg.DOP, cfg.BaseURL),
	)

	orders := repositories.NewOrderRepository(config.DB)
	txns := repositories.NewTransactionRepository(config.DB)
	buyers := repositories.NewBuyerDirectory(config.DB)

	controllers.StripeIntents = stripe
	controllers.OrderRepo = orders
	controllers.TxnRepo = txns
	controllers.Orchestrator = payments.NewOrchestrator(registry, orders, txns, buyers)
	controllers.Ingestor = payments.NewIngestor(registry, orders, txns)
}

func initAuthRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.GET("/me", middleware.AuthMiddleware(), controllers.Me)
	}
}

func initCatalogRoutes(api *gin.RouterGroup) {
	products := api.Group("/products")
	{
		products.GET("", controllers.ListProducts)
		products.GET("/:id", controllers.GetProduct)
		products.POST("", middleware.AuthMiddleware(), middleware.VendorMiddleware(), controllers.CreateProduct)
		products.PUT("/:id", middleware.AuthMiddleware(), middleware.VendorMiddleware(), controllers.UpdateProduct)
		products.GET("/:id/reviews", controllers.ListProductReviews)
	}

	api.POST("/reviews", middleware.AuthMiddleware(), controllers.CreateReview)
	api.GET("/categories", controllers.ListCategories)
	api.GET("/vendors", controllers.ListVendors)
}

func initCartRoutes(api *gin.RouterGroup) {
	cart := api.Group("/cart")
	// Carts work for guests too; a valid token just binds the cart to the user.
	cart.Use(middleware.OptionalAuthMiddleware())
	{
		cart.GET("", controllers.GetCart)
		cart.POST("/items", controllers.AddCartItem)
		cart.DELETE("/items/:id", controllers.RemoveCartItem)
	}
}

func initOrderRoutes(api *gin.RouterGroup) {
	orders := api.Group("/orders")
	orders.Use(middleware.AuthMiddleware())
	{
		orders.POST("", controllers.CreateOrder)
		orders.GET("", controllers.ListOrders)
		orders.GET("/:id", controllers.GetOrder)
		orders.POST("/:id/cancel", controllers.CancelOrder)
	}
}

func initPaymentRoutes(api *gin.RouterGroup) {
	pay := api.Group("/payments")
	{
		// Webhooks authenticate themselves by signature, never by session.
		pay.POST("/webhook/:provider", controllers.HandlePaymentWebhook)
		pay.POST("/intents", middleware.AuthMiddleware(), controllers.CreatePaymentIntent)
		pay.POST("/:gateway", middleware.AuthMiddleware(), controllers.ProcessPayment)
	}
}

func initAdminRoutes(api *gin.RouterGroup) {
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/categories", controllers.CreateCategory)
		admin.POST("/products/:id/approve", controllers.AdminApproveProduct)
		admin.POST("/vendors/:id/approve", controllers.AdminApproveVendor)
		admin.PUT("/orders/:id/status", controllers.AdminUpdateOrderStatus)
		admin.POST("/orders/:id/refund", controllers.AdminCompleteRefund)
	}
}
