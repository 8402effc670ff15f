package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"

	"meet-registration-portal/proxy"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	upstream := os.Getenv("STORE_SERVER_URL")
	if upstream == "" {
		log.Println("⚠️  STORE_SERVER_URL not set — proxy will answer 500 until configured")
	}
	serviceToken := os.Getenv("SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("SERVICE_TOKEN environment variable not set")
	}

	app := fiber.New()
	app.Use(cors.New())
	proxy.NewHandler(upstream, serviceToken).SetupRoutes(app)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Proxy running on http://localhost:%s -> %s", port, upstream)

	<-ctx.Done()
	log.Println("Shutting down proxy...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
