package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"storefront-backend/config"
	"storefront-backend/database"
	"storefront-backend/internal/api"
	"storefront-backend/internal/middleware"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}
	log.Printf("⚙️ %s", cfg)

	// Data files
	store, err := database.NewFileStore(cfg.DataDir, cfg.BackupDir, database.NewSanitizer(cfg.ShopURL, cfg.APIURL))
	if err != nil {
		log.Fatal("Failed to open data directory:", err)
	}
	log.Printf("📂 Data directory: %s (backups in %s)", cfg.DataDir, cfg.BackupDir)

	// Client state store
	ctx := context.Background()
	kv, err := database.OpenKV(ctx, cfg.KVBackend, cfg.KVDatabaseURL, cfg.RedisURL, cfg.RedisPassword)
	if err != nil {
		log.Fatal("Failed to open key-value store:", err)
	}
	defer kv.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	svc := api.NewServices(store, kv, cfg.CatalogCacheTTL, cfg.ClearCartOnRelayFailure)
	router := api.SetupRouter(svc, api.RouterConfig{
		DataDir:   cfg.DataDir,
		ImagesDir: cfg.ImagesDir,
		Security: &middleware.SecurityConfig{
			MaxRequestSize:    cfg.MaxRequestSize,
			RateLimitRequests: cfg.RateLimitRequests,
			RateLimitWindow:   cfg.RateWindow(),
		},
		RequestLogging: true,
	})

	origins := cfg.AllowedOrigins
	if cfg.AllowAllOrigins {
		origins = nil
	} else {
		log.Printf("🔒 CORS: allowed origins %v", origins)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.WithCORS(router, origins),
		// Add timeouts for better stability
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("🚀 Storefront API server starting on port %s (%s)", cfg.Port, cfg.Environment)
		log.Printf("  - http://localhost:%s/api/health", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start:", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	// Create a deadline to wait for
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("✅ Server shutdown complete")
}
