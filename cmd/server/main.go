package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // .env loader for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/ducnm/oto-dealer/internal/config"   // Internal config loader
	"github.com/ducnm/oto-dealer/internal/database" // MySQL connection helper
	"github.com/ducnm/oto-dealer/internal/handler"  // HTTP handlers
	"github.com/ducnm/oto-dealer/internal/queue"    // RabbitMQ consumer
	"github.com/ducnm/oto-dealer/internal/repository"
	"github.com/ducnm/oto-dealer/internal/router" // Internal router setup
)

func main() {
	// Load .env if present; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis backs rate limiting and the catalog response cache. A nil
	// client disables both rather than blocking startup.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	bookings := repository.NewBookingRepo(db)
	cars := repository.NewCarRepo(db)
	orders := repository.NewOrderRepo(db)
	contacts := repository.NewContactRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users)
	carHandler := handler.NewCarHandler(cars)
	contactHandler := handler.NewContactHandler(contacts)
	tdHandler := handler.NewTestDriveHandler(bookings, cars)
	orderHandler := handler.NewOrderHandler(orders)

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, cfg.JWTSecret, rdb)
	router.RegisterPublic(e, carHandler, contactHandler, tdHandler, rdb)
	router.RegisterOrders(e, orderHandler, cfg.JWTSecret)
	router.RegisterAdmin(e, tdHandler, cfg.JWTSecret)

	// Consume booking events in the background; the loop reconnects on
	// broker failure and never brings the server down.
	go func() {
		if err := queue.StartTestDriveConsumer(); err != nil {
			log.Printf("testdrive consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
