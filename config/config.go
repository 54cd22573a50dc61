package config

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/RectiFlex/Market-Maker-Bot/internal/adapters/logger"
	"github.com/RectiFlex/Market-Maker-Bot/internal/ports"
)

// Config holds all application configuration. It is immutable for the
// lifetime of a run.
type Config struct {
	// Network / venue
	Provider      string // network selector: "mainnet" or "goerli"
	RPCURL        string // optional explicit RPC endpoint, overrides the derived one
	AlchemyAPIKey string
	PrivateKey    string // hex-encoded transaction signer key

	// Trading parameters
	TokenAddress         string
	BuyAmount            *big.Int      // base trade amount in wei
	TargetPrice          *big.Int      // raw integer target rate; nil disables autonomous trading
	TradeFrequency       time.Duration // price-check tick interval
	SlippageToleranceBps int64         // basis points, [0, 10000)
	TwapEnabled          bool
	TwapIntervals        int
	TwapSpread           time.Duration
	ApproveMax           bool // approve max uint256 on first sell instead of the exact amount

	// Persistence / cache
	DBPath    string
	RedisAddr string // optional; empty disables the snapshot cache

	// Logging
	LogLevel logger.LogLevel

	// Connection settings
	MaxConnectRetries int
}

// knownProviders mirrors the network catalogue in the uniswap adapter.
var knownProviders = map[string]bool{
	"mainnet": true,
	"goerli":  true,
}

// LoadConfig loads configuration from environment variables (.env file) and
// validates it.
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string

	cfg.Provider = getEnv("PROVIDER", "goerli")
	cfg.RPCURL = getEnv("RPC_URL", "")
	cfg.AlchemyAPIKey = getEnv("ALCHEMY_API_KEY", "")
	cfg.PrivateKey = getEnv("PRIVATE_KEY", "")
	if cfg.PrivateKey == "" {
		errs = append(errs, "PRIVATE_KEY must be set")
	}
	if cfg.RPCURL == "" && cfg.AlchemyAPIKey == "" {
		errs = append(errs, "either RPC_URL or ALCHEMY_API_KEY must be set")
	}

	cfg.TokenAddress = getEnv("TOKEN_ADDRESS", "")

	buyAmountStr := getEnv("BUY_AMOUNT", "0.1")
	buyAmount, err := parseBaseUnits(buyAmountStr)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid BUY_AMOUNT: %v", err))
	} else {
		cfg.BuyAmount = buyAmount
	}

	targetPriceStr := getEnv("TARGET_PRICE", "")
	if targetPriceStr != "" {
		target, ok := new(big.Int).SetString(targetPriceStr, 10)
		if !ok {
			errs = append(errs, fmt.Sprintf("invalid TARGET_PRICE value %q", targetPriceStr))
		} else if target.Sign() > 0 {
			// Zero or negative means monitor-only, same as unset.
			cfg.TargetPrice = target
		}
	}

	tradeFrequencySeconds := getEnvAsInt("TRADE_FREQUENCY", 60)
	if tradeFrequencySeconds <= 0 {
		errs = append(errs, "TRADE_FREQUENCY must be positive")
	}
	cfg.TradeFrequency = time.Duration(tradeFrequencySeconds) * time.Second

	cfg.SlippageToleranceBps = int64(getEnvAsInt("SLIPPAGE_TOLERANCE", 50))
	cfg.TwapEnabled = getEnvAsBool("TWAP_ENABLED", false)
	cfg.TwapIntervals = getEnvAsInt("TWAP_INTERVALS", 4)
	twapSpreadSeconds := getEnvAsInt("TWAP_SPREAD", 3600)
	cfg.TwapSpread = time.Duration(twapSpreadSeconds) * time.Second
	cfg.ApproveMax = getEnvAsBool("APPROVE_MAX", true)

	cfg.DBPath = getEnv("DB_PATH", "./data/market_maker.db")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")

	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))

	cfg.MaxConnectRetries = getEnvAsInt("MAX_CONNECT_RETRIES", 5)
	if cfg.MaxConnectRetries <= 0 {
		errs = append(errs, "MAX_CONNECT_RETRIES must be positive")
	}

	if err := cfg.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) > 0 {
		return nil, &ports.ValidationError{Reason: strings.Join(errs, "; ")}
	}
	return cfg, nil
}

// Validate enforces the trading parameter limits. It is re-run at session
// start so
// a config constructed in code gets the same checks as one from the
// environment.
func (c *Config) Validate() error {
	var errs []string

	if !knownProviders[c.Provider] {
		errs = append(errs, fmt.Sprintf("unknown network provider %q", c.Provider))
	}
	if c.TokenAddress == "" || !common.IsHexAddress(c.TokenAddress) {
		errs = append(errs, "TOKEN_ADDRESS must be a valid token address")
	}
	if c.BuyAmount == nil || c.BuyAmount.Sign() <= 0 {
		errs = append(errs, "BUY_AMOUNT must be greater than 0")
	}
	if c.SlippageToleranceBps < 0 || c.SlippageToleranceBps >= 10000 {
		errs = append(errs, "SLIPPAGE_TOLERANCE must be in [0, 10000) basis points")
	}
	if c.TwapEnabled {
		if c.TwapIntervals < 2 {
			errs = append(errs, "TWAP_INTERVALS must be at least 2")
		}
		if c.TwapSpread < 60*time.Second {
			errs = append(errs, "TWAP_SPREAD must be at least 60 seconds")
		}
	}

	if len(errs) > 0 {
		return &ports.ValidationError{Reason: strings.Join(errs, "; ")}
	}
	return nil
}

// parseBaseUnits converts a decimal base-asset amount (e.g. "0.25") into wei.
func parseBaseUnits(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("not a decimal number: %w", err)
	}
	if d.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be greater than 0")
	}
	wei := d.Shift(18)
	if !wei.IsInteger() {
		return nil, fmt.Errorf("amount %s has more than 18 decimal places", s)
	}
	return wei.BigInt(), nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
