package config

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RectiFlex/Market-Maker-Bot/internal/ports"
)

func validConfig() *Config {
	return &Config{
		Provider:             "goerli",
		TokenAddress:         "0x000000000000000000000000000000000000dEaD",
		BuyAmount:            big.NewInt(100),
		TargetPrice:          big.NewInt(4),
		TradeFrequency:       time.Minute,
		SlippageToleranceBps: 50,
		MaxConnectRetries:    5,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config passes",
			mutate: func(c *Config) {},
		},
		{
			name:   "monitor-only config passes without a target",
			mutate: func(c *Config) { c.TargetPrice = nil },
		},
		{
			name:    "unknown provider",
			mutate:  func(c *Config) { c.Provider = "ropsten" },
			wantErr: "unknown network provider",
		},
		{
			name:    "invalid token address",
			mutate:  func(c *Config) { c.TokenAddress = "0x123" },
			wantErr: "TOKEN_ADDRESS",
		},
		{
			name:    "missing buy amount",
			mutate:  func(c *Config) { c.BuyAmount = nil },
			wantErr: "BUY_AMOUNT",
		},
		{
			name:    "zero buy amount",
			mutate:  func(c *Config) { c.BuyAmount = big.NewInt(0) },
			wantErr: "BUY_AMOUNT",
		},
		{
			name:    "slippage at the full range",
			mutate:  func(c *Config) { c.SlippageToleranceBps = 10000 },
			wantErr: "SLIPPAGE_TOLERANCE",
		},
		{
			name:    "negative slippage",
			mutate:  func(c *Config) { c.SlippageToleranceBps = -1 },
			wantErr: "SLIPPAGE_TOLERANCE",
		},
		{
			name: "twap needs at least two intervals",
			mutate: func(c *Config) {
				c.TwapEnabled = true
				c.TwapIntervals = 1
				c.TwapSpread = time.Hour
			},
			wantErr: "TWAP_INTERVALS",
		},
		{
			name: "twap spread below the minimum",
			mutate: func(c *Config) {
				c.TwapEnabled = true
				c.TwapIntervals = 4
				c.TwapSpread = 30 * time.Second
			},
			wantErr: "TWAP_SPREAD",
		},
		{
			name: "twap limits ignored when disabled",
			mutate: func(c *Config) {
				c.TwapEnabled = false
				c.TwapIntervals = 1
				c.TwapSpread = time.Second
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			var valErr *ports.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Contains(t, valErr.Reason, tt.wantErr)
		})
	}
}

func TestParseBaseUnits(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "fractional amount", in: "0.1", want: "100000000000000000"},
		{name: "whole amount", in: "1", want: "1000000000000000000"},
		{name: "full precision", in: "0.000000000000000001", want: "1"},
		{name: "not a number", in: "abc", wantErr: true},
		{name: "negative", in: "-1", wantErr: true},
		{name: "zero", in: "0", wantErr: true},
		{name: "too many decimal places", in: "0.0000000000000000001", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBaseUnits(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PROVIDER", "mainnet")
	t.Setenv("ALCHEMY_API_KEY", "test-key")
	t.Setenv("PRIVATE_KEY", "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291")
	t.Setenv("TOKEN_ADDRESS", "0x000000000000000000000000000000000000dEaD")
	t.Setenv("BUY_AMOUNT", "0.25")
	t.Setenv("TARGET_PRICE", "400")
	t.Setenv("TRADE_FREQUENCY", "30")
	t.Setenv("SLIPPAGE_TOLERANCE", "100")
	t.Setenv("TWAP_ENABLED", "true")
	t.Setenv("TWAP_INTERVALS", "6")
	t.Setenv("TWAP_SPREAD", "1800")
	t.Setenv("APPROVE_MAX", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "mainnet", cfg.Provider)
	assert.Equal(t, "250000000000000000", cfg.BuyAmount.String())
	assert.Equal(t, "400", cfg.TargetPrice.String())
	assert.Equal(t, 30*time.Second, cfg.TradeFrequency)
	assert.Equal(t, int64(100), cfg.SlippageToleranceBps)
	assert.True(t, cfg.TwapEnabled)
	assert.Equal(t, 6, cfg.TwapIntervals)
	assert.Equal(t, 30*time.Minute, cfg.TwapSpread)
	assert.False(t, cfg.ApproveMax)
}

func TestLoadConfig_CollectsAllErrors(t *testing.T) {
	t.Setenv("PROVIDER", "goerli")
	t.Setenv("ALCHEMY_API_KEY", "")
	t.Setenv("RPC_URL", "")
	t.Setenv("PRIVATE_KEY", "")
	t.Setenv("TOKEN_ADDRESS", "nope")
	t.Setenv("BUY_AMOUNT", "abc")

	_, err := LoadConfig()
	var valErr *ports.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Reason, "PRIVATE_KEY")
	assert.Contains(t, valErr.Reason, "BUY_AMOUNT")
	assert.Contains(t, valErr.Reason, "TOKEN_ADDRESS")
}

func TestLoadConfig_ZeroTargetMeansMonitorOnly(t *testing.T) {
	t.Setenv("PROVIDER", "goerli")
	t.Setenv("ALCHEMY_API_KEY", "test-key")
	t.Setenv("PRIVATE_KEY", "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291")
	t.Setenv("TOKEN_ADDRESS", "0x000000000000000000000000000000000000dEaD")
	t.Setenv("TARGET_PRICE", "0")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg.TargetPrice)
}
