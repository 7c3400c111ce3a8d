package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/showtix/salesledger/internal/config"
	"github.com/showtix/salesledger/internal/database"
	"github.com/showtix/salesledger/internal/handler"
	"github.com/showtix/salesledger/internal/queue"
	"github.com/showtix/salesledger/internal/reconcile"
	"github.com/showtix/salesledger/internal/repository"
	"github.com/showtix/salesledger/internal/router"
	queue_publisher "github.com/showtix/salesledger/internal/service"
)

func main() {
	// Local development reads .env; in deployment the variables are set by
	// the environment and the file is simply absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	showRepo := repository.NewShowRepo(db)
	ledgerRepo := repository.NewLedgerRepo(db)
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)

	engine := reconcile.NewEngine(showRepo, ledgerRepo, reconcile.Config{
		ReportingTZ:             cfg.ReportingTZ,
		AutoRegisterPlatforms:   cfg.AutoRegisterPlatforms,
		AutoRegisterMinCapacity: uint32(cfg.AutoRegisterMinCapacity),
	})

	// Nil when Redis is unreachable; caching and rate limiting degrade off.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, userRepo, tokenRepo), cfg.JWTSecret)
	router.RegisterSales(e,
		handler.NewSnapshotHandler(engine),
		handler.NewShowHandler(showRepo),
		handler.NewLedgerHandler(showRepo, ledgerRepo),
		cfg.JWTSecret,
		rdb,
	)

	// Drain the sales.snapshot queue alongside the HTTP server; the
	// consumer reconnects on broker failure and never returns.
	go func() {
		if err := queue.StartSnapshotConsumer(engine, queue_publisher.PublishSalesReconciled); err != nil {
			log.Printf("snapshot consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, tz=%s)", addr, cfg.Env, cfg.ReportingTZ)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
