package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/tournament-auction/internal/auction"
	"github.com/iliyamo/tournament-auction/internal/config"
	"github.com/iliyamo/tournament-auction/internal/database"
	"github.com/iliyamo/tournament-auction/internal/handler"
	"github.com/iliyamo/tournament-auction/internal/middleware"
	"github.com/iliyamo/tournament-auction/internal/queue"
	"github.com/iliyamo/tournament-auction/internal/repository"
	"github.com/iliyamo/tournament-auction/internal/router"
	queue_publisher "github.com/iliyamo/tournament-auction/internal/service"
)

func main() {
	// .env is optional; real deployments set the variables directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	tournaments := repository.NewTournamentRepo(db)
	teams := repository.NewTeamRepo(db)
	players := repository.NewPlayerRepo(db)
	auctions := repository.NewAuctionRepo(db)
	bids := repository.NewBidRepo(db)

	// Auction engine over the ledger, publishing to RabbitMQ.
	ledger := repository.NewLedger(tournaments, teams, players, auctions, bids)
	engine := auction.New(ledger, auction.NotifierFunc(queue_publisher.PublishAuctionEvent))

	// Background consumer mirrors auction events into logs/auction.log.
	go func() {
		if err := queue.StartAuctionConsumer(); err != nil {
			log.Printf("auction consumer stopped: %v", err)
		}
	}()

	// Rate limiter for the bid endpoint; fails open without Redis.
	rdb := config.NewRedisClient()
	bidLimiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, router.Deps{
		JWTSecret:  cfg.JWTSecret,
		Auth:       handler.NewAuthHandler(cfg, users, tokens),
		Admin:      handler.NewAdminHandler(tournaments, teams, players, auctions),
		Auction:    handler.NewAuctionHandler(engine, tournaments, teams, bids),
		BidLimiter: bidLimiter,
	})

	log.Printf("listening on :%s (env=%s)", cfg.Port, cfg.Env)
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("server: %v", err)
	}
}
