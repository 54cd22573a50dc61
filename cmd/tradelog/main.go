// Command tradelog exports the most recent trades from the bot's database
// to a CSV file for spreadsheet review.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/RectiFlex/Market-Maker-Bot/config"
	"github.com/RectiFlex/Market-Maker-Bot/internal/adapters/logger"
	"github.com/RectiFlex/Market-Maker-Bot/internal/adapters/sqlite"
	"github.com/RectiFlex/Market-Maker-Bot/internal/utils"
)

func main() {
	limit := flag.Int("limit", 100, "maximum number of trades to export, newest first")
	out := flag.String("out", "data/trades.csv", "output CSV path")
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err)
	}
	defer repo.Close()

	// 4. Export
	trades, err := repo.FindRecent(context.Background(), *limit)
	if err != nil {
		log.Fatalf("Error reading trades: %v", err)
	}
	if err := utils.WriteTradesToCSV(trades, *out); err != nil {
		log.Fatalf("Error writing CSV: %v", err)
	}
	fmt.Printf("Exported %d trades to %s\n", len(trades), *out)
}
