package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/lab-resource-booking/internal/config"     // Environment config loaders
	"github.com/iliyamo/lab-resource-booking/internal/database"   // MySQL connector
	"github.com/iliyamo/lab-resource-booking/internal/handler"    // HTTP handlers
	"github.com/iliyamo/lab-resource-booking/internal/middleware" // Redis cache and rate limiter
	"github.com/iliyamo/lab-resource-booking/internal/queue"      // Notification consumer
	"github.com/iliyamo/lab-resource-booking/internal/repository" // DB repositories
	"github.com/iliyamo/lab-resource-booking/internal/router"     // Route registration
)

func main() {
	// .env is optional; real deployments set variables directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	defer db.Close()

	// Redis backs the response cache and the rate limiter.  A nil client
	// turns both middlewares into pass-throughs.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; cache and rate limiting disabled")
	}
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Repositories
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	equipment := repository.NewEquipmentRepo(db)
	reservations := repository.NewReservationRepo(db)
	sessions := repository.NewLabSessionRepo(db)
	inventory := repository.NewInventoryRepo(db)
	notifications := repository.NewNotificationRepo(db)

	// Handlers
	authH := handler.NewAuthHandler(cfg, users, tokens)
	equipmentH := handler.NewEquipmentHandler(equipment, reservations)
	reservationH := handler.NewReservationHandler(cfg, reservations, equipment)
	sessionH := handler.NewLabSessionHandler(sessions)
	inventoryH := handler.NewInventoryHandler(inventory)
	notificationH := handler.NewNotificationHandler(notifications)
	slotH := handler.NewSlotHandler(cfg)

	// Drain notification.dispatch into the notifications table in the
	// background; the consumer reconnects on broker failures.
	go func() {
		if err := queue.StartNotificationConsumer(users, notifications); err != nil {
			log.Printf("notification consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e, slotH, cache)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterBooking(e, equipmentH, reservationH, sessionH, notificationH, cfg.JWTSecret, limit, cache)
	router.RegisterStaff(e, equipmentH, reservationH, sessionH, inventoryH, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
