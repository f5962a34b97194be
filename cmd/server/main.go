package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/paddleup/auctioneer/internal/auction"
	"github.com/paddleup/auctioneer/internal/config"
	"github.com/paddleup/auctioneer/internal/db/migrations"
	"github.com/paddleup/auctioneer/internal/dbconfig"
	"github.com/paddleup/auctioneer/internal/gateway"
	"github.com/paddleup/auctioneer/internal/settler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	dbCfg := dbconfig.NewConfigFromEnv()
	db, err := sql.Open("pgx", dbCfg.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}
	log.Info().
		Str("host", dbCfg.Host).
		Int("port", dbCfg.Port).
		Str("database", dbCfg.Database).
		Msg("connected to database")

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrations.Up(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	app := auction.NewApp(auction.NewRepository(db), clockwork.NewRealClock(), auction.Config{
		LotDuration:          cfg.LotDuration(),
		AntiSnipeWindow:      cfg.AntiSnipeWindow(),
		AntiSnipeExtension:   cfg.AntiSnipeExtension(),
		ReservePerPlayer:     cfg.Auction.ReservePerPlayer,
		DefaultBudget:        cfg.Auction.DefaultBudget,
		DefaultPlayersNeeded: cfg.Auction.DefaultPlayersNeeded,
	})

	cm := gateway.NewConnectionManager(gateway.DefaultConnectionConfig())
	go cm.Start(ctx)

	consumerCfg := gateway.DefaultJetStreamConsumerConfig()
	if cfg.NATS.URL != "" {
		consumerCfg.URL = cfg.NATS.URL
	}
	consumer, err := gateway.NewEventConsumer(cm, consumerCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create event consumer")
	}
	defer consumer.Close()
	go func() {
		if err := consumer.Start(ctx); err != nil {
			log.Error().Err(err).Msg("event consumer stopped")
		}
	}()

	settlerCfg := settler.DefaultConfig()
	if cfg.Settler.BatchSize > 0 {
		settlerCfg.BatchSize = cfg.Settler.BatchSize
	}
	if cfg.Settler.NumWorkers > 0 {
		settlerCfg.NumWorkers = cfg.Settler.NumWorkers
	}
	go func() {
		if err := settler.New(app, clockwork.NewRealClock(), settlerCfg).Run(ctx); err != nil {
			log.Error().Err(err).Msg("settler stopped")
		}
	}()

	srv := gateway.NewServer(cfg.Server.Port, gateway.NewHandler(app, cm))

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
		log.Info().Msg("graceful shutdown complete")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}
}
