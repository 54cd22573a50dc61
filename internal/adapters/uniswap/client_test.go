package uniswap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RectiFlex/Market-Maker-Bot/internal/adapters/logger"
	"github.com/RectiFlex/Market-Maker-Bot/internal/ports"
)

const (
	testKey   = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"
	testToken = "0x000000000000000000000000000000000000dEaD"
)

func validDialerConfig() Config {
	return Config{
		Network:       "goerli",
		AlchemyAPIKey: "test-key",
		PrivateKey:    testKey,
		TokenAddress:  testToken,
		Logger:        logger.NewStdLogger(logger.LevelError),
	}
}

func TestNetwork_KnownCatalogue(t *testing.T) {
	mainnet, ok := Network("mainnet")
	require.True(t, ok)
	assert.Equal(t, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", mainnet.WETHAddress.Hex())
	assert.Equal(t, "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D", mainnet.RouterV2Address.Hex())
	assert.Equal(t, "https://eth-mainnet.alchemyapi.io/v2/abc", mainnet.RPCURL("abc"))

	goerli, ok := Network("goerli")
	require.True(t, ok)
	assert.Equal(t, "0xB4FBF271143F4FBf7B91A5ded31805e42b2208d6", goerli.WETHAddress.Hex())
	// Router and factory are shared across networks.
	assert.Equal(t, mainnet.RouterV2Address, goerli.RouterV2Address)
	assert.Equal(t, mainnet.FactoryV2Address, goerli.FactoryV2Address)

	_, ok = Network("ropsten")
	assert.False(t, ok)
}

func TestNewDialer_DerivesWalletAddress(t *testing.T) {
	d, err := NewDialer(validDialerConfig())
	require.NoError(t, err)
	// Address derived from the well-known test key.
	assert.Equal(t, "0x970E8128AB834E8EAC17Ab8E3812F010678CF791", d.WalletAddress())
}

func TestNewDialer_AcceptsPrefixedKey(t *testing.T) {
	cfg := validDialerConfig()
	cfg.PrivateKey = "0x" + testKey
	_, err := NewDialer(cfg)
	require.NoError(t, err)
}

func TestNewDialer_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown network", mutate: func(c *Config) { c.Network = "ropsten" }},
		{name: "no endpoint", mutate: func(c *Config) { c.AlchemyAPIKey = ""; c.RPCURL = "" }},
		{name: "bad token address", mutate: func(c *Config) { c.TokenAddress = "0x123" }},
		{name: "bad private key", mutate: func(c *Config) { c.PrivateKey = "zz" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDialerConfig()
			tt.mutate(&cfg)
			_, err := NewDialer(cfg)
			var valErr *ports.ValidationError
			require.ErrorAs(t, err, &valErr)
		})
	}
}

func TestToAddressPath(t *testing.T) {
	path := toAddressPath([]string{testToken, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"})
	require.Len(t, path, 2)
	assert.Equal(t, "0x000000000000000000000000000000000000dEaD", path[0].Hex())
	assert.Equal(t, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", path[1].Hex())
}

func TestIsTransportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "context deadline", err: context.DeadlineExceeded, want: true},
		{name: "context canceled", err: context.Canceled, want: true},
		{name: "connection refused", err: errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"), want: true},
		{name: "dns failure", err: errors.New("no such host"), want: true},
		{name: "gateway error", err: errors.New("503 Service Unavailable"), want: true},
		{name: "contract revert", err: errors.New("execution reverted: UniswapV2Library: INSUFFICIENT_LIQUIDITY"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransportError(tt.err))
		})
	}
}

func TestEmbeddedABIsParse(t *testing.T) {
	// The package-level ABIs are parsed at init; reaching this test means
	// they are valid. Spot-check the methods the client calls.
	_, ok := routerABI.Methods["getAmountsOut"]
	assert.True(t, ok)
	_, ok = routerABI.Methods["swapExactETHForTokens"]
	assert.True(t, ok)
	_, ok = routerABI.Methods["swapExactTokensForETH"]
	assert.True(t, ok)
	_, ok = factoryABI.Methods["getPair"]
	assert.True(t, ok)
	for _, m := range []string{"name", "symbol", "decimals", "balanceOf", "allowance", "approve"} {
		_, ok := erc20ABI.Methods[m]
		assert.True(t, ok, m)
	}
}
