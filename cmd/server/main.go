package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/transform-studio/internal/builder"
	"github.com/localnerve/transform-studio/internal/config"
	"github.com/localnerve/transform-studio/internal/database"
	"github.com/localnerve/transform-studio/internal/handlers"
	"github.com/localnerve/transform-studio/internal/middleware"
	"github.com/localnerve/transform-studio/internal/platform"
	"github.com/localnerve/transform-studio/internal/services"
	"github.com/localnerve/transform-studio/internal/storage"
	"gorm.io/gorm"

	_ "github.com/localnerve/transform-studio/docs/api" // Swagger docs
)

// @title Transform Studio API
// @version 1.0.0
// @description Local data service for composing and inspecting identity platform transforms
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/transform-studio
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3001
// @BasePath /api
// @schemes http

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Pick the store
	var store storage.Store
	var db *gorm.DB
	switch cfg.StoreType {
	case config.StoreMemory:
		store = storage.NewMemoryStore()
		log.Printf("Using in-memory store, nothing will persist")
	default:
		db, err = database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close(db)

		// Run auto-migrations
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		store = storage.NewGormStore(db)
	}

	catalog, err := builder.DefaultCatalog()
	if err != nil {
		log.Fatalf("Failed to load template catalog: %v", err)
	}
	exporter, err := services.NewExporter()
	if err != nil {
		log.Fatalf("Failed to compile transform schema: %v", err)
	}
	if cfg.PlatformAccessToken == "" {
		log.Printf("PLATFORM_ACCESS_TOKEN is not set, platform transforms are unavailable")
	}
	client := platform.NewClient(cfg.PlatformURLTemplate, platform.StaticToken(cfg.PlatformAccessToken), cfg.PlatformTimeout, cfg.PlatformRPS)

	tenants := services.NewTenantService(store)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("transform_studio")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	handlers.Mount(api, handlers.Set{
		Notation:   &handlers.NotationHandler{Catalog: catalog},
		Tenants:    &handlers.TenantHandler{Tenants: tenants},
		Transforms: &handlers.TransformHandler{Transforms: services.NewTransformService(store, tenants, client)},
		Projects:   &handlers.ProjectHandler{Projects: services.NewProjectService(store, catalog), Exporter: exporter},
		Health:     &handlers.HealthHandler{Config: cfg, Store: store, DB: db, Tenants: tenants, Fetcher: client},
	}, tenants)

	// 404 handler
	app.Use(handlers.NotFound)

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}
