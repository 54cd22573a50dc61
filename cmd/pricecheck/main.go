// Command pricecheck probes the venue for the configured token and prints
// the connection test, the current rate, wallet balances and chain status.
// It never trades.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/RectiFlex/Market-Maker-Bot/config"
	"github.com/RectiFlex/Market-Maker-Bot/internal/adapters/logger"
	"github.com/RectiFlex/Market-Maker-Bot/internal/adapters/uniswap"
	"github.com/RectiFlex/Market-Maker-Bot/internal/engine"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)

	// 3. Initialize Venue Dialer (Uniswap Adapter)
	dialer, err := uniswap.NewDialer(uniswap.Config{
		Network:       cfg.Provider,
		RPCURL:        cfg.RPCURL,
		AlchemyAPIKey: cfg.AlchemyAPIKey,
		PrivateKey:    cfg.PrivateKey,
		TokenAddress:  cfg.TokenAddress,
		Logger:        appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize venue dialer: %v", err)
	}

	// 4. Initialize the Engine Without Persistence
	bot, err := engine.New(engine.Deps{
		Config: cfg,
		Logger: appLogger,
		Dialer: dialer,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize engine: %v", err)
	}
	defer bot.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 5. Connection Test
	check := bot.TestConnection(ctx)
	fmt.Printf("Network:      %s\n", cfg.Provider)
	fmt.Printf("Wallet:       %s\n", dialer.WalletAddress())
	if !check.Success {
		fmt.Printf("Connection:   FAILED (%s)\n", check.Error)
		return
	}
	fmt.Printf("Connection:   OK\n")
	fmt.Printf("Token:        %s (%s), %d decimals\n", check.TokenInfo.Name, check.TokenInfo.Symbol, check.TokenInfo.Decimals)
	fmt.Printf("Pair:         %s\n", check.PairAddress)
	if check.Warning != "" {
		fmt.Printf("Warning:      %s\n", check.Warning)
	}

	// 6. Current Price
	snap := bot.CurrentPrice(ctx)
	fmt.Printf("Rate:         %g %s per base unit\n", snap.Rate, snap.TokenSymbol)
	fmt.Printf("Quote:        %s %s for the configured buy amount\n", snap.CurrentAmount, snap.TokenSymbol)
	if snap.TargetAmountOut != nil {
		fmt.Printf("Target:       %s %s\n", snap.TargetAmount, snap.TokenSymbol)
	}

	// 7. Balances and Chain Status
	balances := bot.Balances(ctx)
	fmt.Printf("Balance:      %s ETH, %s %s\n", balances.Base, balances.Token, balances.TokenSymbol)

	if info, err := bot.BlockInfo(ctx); err == nil {
		fmt.Printf("Block:        %d at %s\n", info.Height, info.Timestamp.UTC().Format(time.RFC3339))
	}
}
