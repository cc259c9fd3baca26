package main // Entry point package

import (
	"log" // Logging library

	"github.com/joho/godotenv"    // Loads .env files into the environment
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/tablewire/restaurant-pos/internal/config"     // Internal config loader
	"github.com/tablewire/restaurant-pos/internal/database"   // MySQL connection
	"github.com/tablewire/restaurant-pos/internal/handler"    // HTTP handlers
	"github.com/tablewire/restaurant-pos/internal/ledger"     // Check engine
	"github.com/tablewire/restaurant-pos/internal/middleware" // Rate limiting and caching
	"github.com/tablewire/restaurant-pos/internal/queue"      // Broker consumer
	"github.com/tablewire/restaurant-pos/internal/repository" // Data access
	"github.com/tablewire/restaurant-pos/internal/router"     // Route registration
	queuepublisher "github.com/tablewire/restaurant-pos/internal/service"
)

func main() {
	// Load .env when present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories over the shared DB handle.
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	tableRepo := repository.NewTableRepo(db)
	menuRepo := repository.NewMenuRepo(db)
	checkRepo := repository.NewCheckRepo(db)

	// The check engine publishes a check.updated event after every
	// accepted mutation so other terminals can re-fetch.
	notifier := &queuepublisher.AMQPNotifier{TaxRateBPS: cfg.TaxRateBPS}
	eng := ledger.New(checkRepo, tableRepo, menuRepo, notifier)

	// Background consumer mirrors accepted revisions into logs/checks.log.
	go func() {
		if err := queue.StartCheckConsumer(); err != nil {
			log.Printf("check-consumer stopped: %v", err)
		}
	}()

	e := echo.New()

	// Redis-backed rate limiting (global) and response caching (catalog
	// reads only). Both degrade to pass-through middleware when Redis
	// is unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and response cache disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, userRepo, tokenRepo), cfg.JWTSecret)
	router.RegisterPOS(e,
		handler.NewTableHandler(tableRepo, eng),
		handler.NewMenuHandler(menuRepo),
		handler.NewCheckHandler(eng, cfg.TaxRateBPS),
		cfg.JWTSecret,
		cacheMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
