package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up
	"os/signal"
	"syscall"

	"github.com/RectiFlex/Market-Maker-Bot/config"
	"github.com/RectiFlex/Market-Maker-Bot/internal/adapters/logger"
	"github.com/RectiFlex/Market-Maker-Bot/internal/adapters/rediscache"
	"github.com/RectiFlex/Market-Maker-Bot/internal/adapters/sqlite"
	"github.com/RectiFlex/Market-Maker-Bot/internal/adapters/uniswap"
	"github.com/RectiFlex/Market-Maker-Bot/internal/engine"
	"github.com/RectiFlex/Market-Maker-Bot/internal/ports"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err) // Also log to stderr
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()

	// 4. Initialize Snapshot Cache (optional)
	var cache ports.SnapshotCache
	if cfg.RedisAddr != "" {
		redisCache, err := rediscache.New(context.Background(), rediscache.Config{
			Addr:   cfg.RedisAddr,
			Logger: appLogger,
		})
		if err != nil {
			appLogger.Error(context.Background(), err, "FATAL: Failed to initialize snapshot cache")
			log.Fatalf("FATAL: Failed to initialize snapshot cache: %v", err)
		}
		defer func() {
			if err := redisCache.Close(); err != nil {
				appLogger.Error(context.Background(), err, "Error closing snapshot cache")
			}
		}()
		cache = redisCache
	}

	// 5. Initialize Venue Dialer (Uniswap Adapter)
	dialer, err := uniswap.NewDialer(uniswap.Config{
		Network:       cfg.Provider,
		RPCURL:        cfg.RPCURL,
		AlchemyAPIKey: cfg.AlchemyAPIKey,
		PrivateKey:    cfg.PrivateKey,
		TokenAddress:  cfg.TokenAddress,
		Logger:        appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize venue dialer")
		log.Fatalf("FATAL: Failed to initialize venue dialer: %v", err)
	}
	appLogger.Info(context.Background(), "Venue dialer initialized", map[string]interface{}{
		"network": cfg.Provider,
		"wallet":  dialer.WalletAddress(),
	})

	// 6. Initialize the Market-Making Engine
	bot, err := engine.New(engine.Deps{
		Config: cfg,
		Logger: appLogger,
		Dialer: dialer,
		Trades: repo,
		Cache:  cache,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize engine")
		log.Fatalf("FATAL: Failed to initialize engine: %v", err)
	}
	defer bot.Close()

	// 7. Start Trading and Wait for Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bot.Start(ctx, engine.StartOptions{}); err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to start trading session")
		log.Fatalf("FATAL: Failed to start trading session: %v", err)
	}

	<-ctx.Done()
	appLogger.Info(context.Background(), "Shutdown signal received")
	bot.Stop(context.Background())
	appLogger.Info(context.Background(), "Application finished gracefully.")
}
