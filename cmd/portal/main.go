package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"meet-registration-portal/config"
	"meet-registration-portal/gateway"
	"meet-registration-portal/handlers"
	"meet-registration-portal/recon"
	"meet-registration-portal/rules"
	"meet-registration-portal/services"
	"meet-registration-portal/store"
	"meet-registration-portal/workers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}
	storeURL := os.Getenv("STORE_SERVER_URL")
	if storeURL == "" {
		log.Fatal("STORE_SERVER_URL environment variable not set")
	}
	serviceToken := os.Getenv("SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("SERVICE_TOKEN environment variable not set")
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	cfg, err := config.Load(os.Getenv("CATALOG_PATH"))
	if err != nil {
		log.Fatal("failed to load catalog:", err)
	}

	local, err := store.Open(dataDir)
	if err != nil {
		log.Fatal("failed to open local store:", err)
	}

	ruleEngine := rules.New(cfg)
	gw := gateway.NewRESTClient(storeURL, serviceToken)
	registry := recon.NewRegistry(gw, local, ruleEngine)

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // photos are capped at 200KB each, batches stay small
	})

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	authService := services.NewAuthService(cfg, []byte(jwtSecret))
	teamService := services.NewTeamService(cfg, ruleEngine, registry, local)
	adminService := services.NewAdminService(cfg, ruleEngine, gw, local)

	handlers.SetupAuthRoutes(app, authService)
	handlers.SetupTeamRoutes(app, teamService, []byte(jwtSecret))
	handlers.SetupAdminRoutes(app, adminService, []byte(jwtSecret))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flushInterval := 30 * time.Second
	if raw := os.Getenv("FLUSH_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			flushInterval = d
		} else {
			log.Printf("⚠️  Invalid FLUSH_INTERVAL %q, using %s", raw, flushInterval)
		}
	}
	flushWorker := workers.NewFlushWorker(registry, flushInterval)
	flushWorker.Start(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5100"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Portal running on http://localhost:%s", port)
	log.Printf("✅ Store server: %s", strings.TrimSuffix(storeURL, "/"))
	log.Printf("✅ Flush worker running (every %s)", flushInterval)

	<-ctx.Done()
	log.Println("Shutting down portal...")
	flushWorker.Stop()
	registry.StopAll()
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
