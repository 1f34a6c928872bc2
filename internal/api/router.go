package api

import (
	"net/http"
	"time"

	"storefront-backend/database"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// Cache policies for the static file trees
const (
	imagesCacheControl = "public, max-age=0, s-maxage=3600, must-revalidate"
	dataCacheControl   = "public, max-age=0, s-maxage=60, must-revalidate"
)

// Services bundles everything the handlers depend on
type Services struct {
	Store     database.TableStore
	Cache     *services.TableCache
	Config    *services.ConfigService
	Catalog   *services.CatalogService
	Pricing   *services.PricingService
	Carts     *services.CartService
	Orders    *services.OrderService
	Admin     *services.AdminOrderService
	Editor    *services.EditorService
	Dashboard *services.DashboardService
}

// NewServices wires the service graph over a table store and a client
// state store.
func NewServices(store database.TableStore, kv database.KVStore, cacheTTL time.Duration, clearCartOnRelayFailure bool) *Services {
	cache := services.NewTableCache(store, cacheTTL)
	config := services.NewConfigService(cache)
	catalog := services.NewCatalogService(cache)
	pricing := services.NewPricingService(catalog, config)
	carts := services.NewCartService(kv, catalog, pricing)
	admin := services.NewAdminOrderService(store)

	return &Services{
		Store:     store,
		Cache:     cache,
		Config:    config,
		Catalog:   catalog,
		Pricing:   pricing,
		Carts:     carts,
		Orders:    services.NewOrderService(kv, carts, pricing, config, clearCartOnRelayFailure),
		Admin:     admin,
		Editor:    services.NewEditorService(store),
		Dashboard: services.NewDashboardService(catalog, admin, config),
	}
}

// RouterConfig holds what the router needs beyond the services
type RouterConfig struct {
	DataDir        string
	ImagesDir      string
	Security       *middleware.SecurityConfig
	WriteRateLimit int
	RequestLogging bool
}

// SetupRouter registers every route on a new gin engine
func SetupRouter(svc *Services, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.RequestLogging {
		router.Use(middleware.RequestLogger())
	}
	router.Use(middleware.SecurityMiddleware(cfg.Security))
	router.Use(middleware.InputValidationMiddleware())

	if cfg.ImagesDir != "" {
		images := router.Group("/images", middleware.CacheControl(imagesCacheControl))
		images.StaticFS("/", gin.Dir(cfg.ImagesDir, false))
	}
	if cfg.DataDir != "" {
		data := router.Group("/data", middleware.CacheControl(dataCacheControl))
		data.StaticFS("/", gin.Dir(cfg.DataDir, false))
	}

	writeLimit := cfg.WriteRateLimit
	if writeLimit <= 0 {
		writeLimit = 60
	}

	fileHandlers := NewFileHandlers(svc.Editor, svc.Admin)
	storefrontHandlers := NewStorefrontHandlers(svc.Catalog, svc.Pricing, svc.Config)
	cartHandlers := NewCartHandlers(svc.Carts, svc.Orders)
	adminHandlers := NewAdminHandlers(svc.Editor, svc.Dashboard)

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/health", fileHandlers.Health)

		// File API
		files := apiGroup.Group("", middleware.WriteRateLimitMiddleware(writeLimit))
		{
			files.POST("/save-csv", fileHandlers.SaveCSV)
			files.POST("/add-order", fileHandlers.AddOrder)
			files.GET("/orders", fileHandlers.GetOrders)
			files.POST("/update-order-status", fileHandlers.UpdateOrderStatus)
			files.DELETE("/delete-order", fileHandlers.DeleteOrder)
			files.POST("/orders/parse", fileHandlers.ParseOrder)
		}

		// Storefront
		apiGroup.GET("/config", storefrontHandlers.GetConfig)
		apiGroup.GET("/products", storefrontHandlers.ListProducts)
		apiGroup.GET("/products/featured", storefrontHandlers.FeaturedProducts)
		apiGroup.GET("/products/:id", storefrontHandlers.GetProduct)
		apiGroup.GET("/search", storefrontHandlers.Search)
		apiGroup.GET("/categories", storefrontHandlers.ListCategories)
		apiGroup.GET("/categories/:id/breadcrumb", storefrontHandlers.Breadcrumb)
		apiGroup.GET("/shipping", storefrontHandlers.ShippingOptions)
		apiGroup.GET("/seo", storefrontHandlers.GetSEO)

		// Cart and checkout
		carts := apiGroup.Group("/carts")
		{
			carts.POST("", cartHandlers.CreateCart)
			carts.GET("/:id", cartHandlers.GetCart)
			carts.DELETE("/:id", cartHandlers.ClearCart)
			carts.POST("/:id/items", cartHandlers.AddItem)
			carts.PUT("/:id/items", cartHandlers.UpdateItem)
			carts.DELETE("/:id/items", cartHandlers.RemoveItem)
			carts.POST("/:id/discount", cartHandlers.ApplyDiscount)
			carts.DELETE("/:id/discount", cartHandlers.RemoveDiscount)
			carts.PUT("/:id/shipping", cartHandlers.SelectShipping)
			carts.POST("/:id/checkout", cartHandlers.Checkout)
		}
		apiGroup.GET("/users/:id/id", cartHandlers.GetUserID)
		apiGroup.GET("/users/:id/local-orders", cartHandlers.LocalOrders)
		apiGroup.GET("/relay/qr", cartHandlers.RelayQRCode)
		apiGroup.POST("/relay/qr", cartHandlers.RelayQRCode)

		// Admin portal
		admin := apiGroup.Group("/admin", middleware.WriteRateLimitMiddleware(writeLimit))
		{
			admin.GET("/dashboard", adminHandlers.Dashboard)
			admin.GET("/orders", fileHandlers.ListOrders)
			admin.POST("/orders", fileHandlers.ImportOrder)
			admin.GET("/tables", adminHandlers.ListTables)
			admin.GET("/tables/:table", adminHandlers.GetTable)
			admin.POST("/tables/:table/new", adminHandlers.NewRow)
			admin.PUT("/tables/:table/rows", adminHandlers.SaveRow)
			admin.DELETE("/tables/:table/rows/:id", adminHandlers.DeleteRow)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "Route not found",
		})
	})

	return router
}

// WithCORS wraps the router for browser clients. An empty origin list
// allows every origin.
func WithCORS(handler http.Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", "Origin", "X-Requested-With", "X-Client-Key"},
		MaxAge:         86400,
	}).Handler(handler)
}
