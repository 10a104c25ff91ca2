package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"subasta-auction-service/internal/adapters/db"
	"subasta-auction-service/internal/adapters/httpapi"
	"subasta-auction-service/internal/adapters/redis"
	"subasta-auction-service/internal/adapters/scheduler"
	"subasta-auction-service/internal/adapters/storage"
	"subasta-auction-service/internal/app"
	"subasta-auction-service/internal/config"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	initLogging(cfg)

	log.Info().Msg("Starting Subasta Auction Service...")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	dbConn, err := db.NewConnection(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbConn.Close()

	log.Info().Msg("Database connection established")

	// Create repositories
	repoFactory := db.NewRepositoryFactory(dbConn)
	auctionRepo := repoFactory.GetAuctionRepository()
	userRepo := repoFactory.GetUserRepository()

	log.Info().Msg("Database repositories initialized")

	// Create Redis client
	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	log.Info().Msg("Redis connection established")

	// Create image store
	imageStore, err := storage.NewMinIOImageStore(storage.MinIOImageStoreParams{
		Config: cfg.Storage,
		Logger: log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to image store")
	}
	log.Info().Msg("Image store initialized")

	// Create the engines and the lifecycle service
	biddingEngine := app.NewSlotBiddingEngine(app.SlotBiddingEngineParams{
		Logger: log.Logger,
	})
	finalizationEngine := app.NewFinalizationEngine(app.FinalizationEngineParams{
		Logger: log.Logger,
	})
	auctionService := app.NewAuctionService(app.AuctionServiceParams{
		AuctionRepo: auctionRepo,
		UserRepo:    userRepo,
		Bidding:     biddingEngine,
		Finalizer:   finalizationEngine,
		Logger:      log.Logger,
	})

	log.Info().Msg("Business services initialized")

	// Create and start the expiry sweeper
	expirySweeper := scheduler.NewExpirySweeper(scheduler.ExpirySweeperParams{
		RedisClient: redisClient,
		Finalizer:   auctionService,
		Logger:      log.Logger,
	})
	expirySweeper.Start()
	log.Info().Msg("Expiry sweeper started")

	// Enroll newly created auctions with the sweeper
	auctionService.SetSchedule(expirySweeper)

	handler := httpapi.NewHandler(httpapi.HandlerParams{
		Service:    auctionService,
		ImageStore: imageStore,
		Logger:     log.Logger,
	})
	server := httpapi.NewServer(httpapi.ServerParams{
		Config:  cfg,
		Handler: handler,
		Logger:  log.Logger,
	})

	log.Info().Msg("HTTP server initialized")

	// Start HTTP server
	go func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
			cancel()
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case <-ctx.Done():
		log.Info().Msg("Context cancelled")
	}

	// Graceful shutdown
	log.Info().Msg("Starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	expirySweeper.Stop()
	log.Info().Msg("Expiry sweeper stopped")

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping HTTP server")
	}

	log.Info().Msg("Graceful shutdown completed")
}

func initLogging(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set log format
	if cfg.Logging.Format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		// Console format for development
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		log.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	zerolog.DefaultContextLogger = &log.Logger
}
