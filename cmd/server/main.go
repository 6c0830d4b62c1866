package main

import (
    "context"
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/arenadev/ticket-reservation/internal/clock"
    "github.com/arenadev/ticket-reservation/internal/config"
    "github.com/arenadev/ticket-reservation/internal/database"
    "github.com/arenadev/ticket-reservation/internal/handler"
    "github.com/arenadev/ticket-reservation/internal/queue"
    "github.com/arenadev/ticket-reservation/internal/repository"
    "github.com/arenadev/ticket-reservation/internal/router"
    "github.com/arenadev/ticket-reservation/internal/service"
    "github.com/arenadev/ticket-reservation/internal/worker"
)

func main() {
	_ = godotenv.Load() // .env is optional
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	events := repository.NewEventRepo(db)
	ticketTypes := repository.NewTicketTypeRepo(db)
	seats := repository.NewSeatRepo(db)
	reservations := repository.NewReservationRepo(db)
	tx := repository.NewTxRunner(db)
	clk := clock.NewSystem()

	svc := service.NewReservationService(
		events, ticketTypes, seats, reservations, tx, clk,
		service.WithReservationTTL(cfg.ReservationTTL),
	)

	if cfg.SeedData {
		if err := seed(context.Background(), events, ticketTypes, clk); err != nil {
			log.Printf("seed: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.NewCleanupWorker(reservations, svc, clk, cfg.SweepInterval, cfg.Retention).Run(ctx)
	go func() {
		if err := queue.StartReservationConsumer(); err != nil {
			log.Printf("queue consumer: %v", err)
		}
	}()

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable, cache and rate limiting disabled")
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterEvents(e, handler.NewEventHandler(events, ticketTypes, reservations), handler.NewTicketTypeHandler(ticketTypes), handler.NewSeatHandler(ticketTypes, seats), rdb)
	router.RegisterReservations(e, handler.NewReservationHandler(svc), rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
