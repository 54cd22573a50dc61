// Package uniswap implements the ports.Venue interface against a
// Uniswap-V2-compatible router over JSON-RPC.
package uniswap

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/RectiFlex/Market-Maker-Bot/internal/domain"
	"github.com/RectiFlex/Market-Maker-Bot/internal/ports"
)

// Minimal ABI fragments for the contracts the bot touches. Keeping them
// inline avoids a code-generation step for three functions per contract.
const routerABIJSON = `[
	{"constant":true,"inputs":[{"name":"amountIn","type":"uint256"},{"name":"path","type":"address[]"}],"name":"getAmountsOut","outputs":[{"name":"amounts","type":"uint256[]"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"amountOutMin","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"name":"swapExactETHForTokens","outputs":[{"name":"amounts","type":"uint256[]"}],"stateMutability":"payable","type":"function"},
	{"constant":false,"inputs":[{"name":"amountIn","type":"uint256"},{"name":"amountOutMin","type":"uint256"},{"name":"path","type":"address[]"},{"name":"to","type":"address"},{"name":"deadline","type":"uint256"}],"name":"swapExactTokensForETH","outputs":[{"name":"amounts","type":"uint256[]"}],"stateMutability":"nonpayable","type":"function"}
]`

const factoryABIJSON = `[
	{"constant":true,"inputs":[{"name":"tokenA","type":"address"},{"name":"tokenB","type":"address"}],"name":"getPair","outputs":[{"name":"pair","type":"address"}],"stateMutability":"view","type":"function"}
]`

const erc20ABIJSON = `[
	{"constant":true,"inputs":[],"name":"name","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"symbol","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[],"name":"decimals","outputs":[{"name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"}],"name":"balanceOf","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":true,"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"name":"allowance","outputs":[{"name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"constant":false,"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"name":"approve","outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable","type":"function"}
]`

var (
	routerABI  = mustParseABI(routerABIJSON)
	factoryABI = mustParseABI(factoryABIJSON)
	erc20ABI   = mustParseABI(erc20ABIJSON)
)

func mustParseABI(src string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(src))
	if err != nil {
		panic(fmt.Sprintf("uniswap: invalid embedded ABI: %v", err))
	}
	return parsed
}

// Config holds the parameters for dialing the venue.
type Config struct {
	Network       string // "mainnet" or "goerli"
	RPCURL        string // optional explicit endpoint; overrides the Alchemy one
	AlchemyAPIKey string
	PrivateKey    string // hex-encoded signer key, with or without 0x prefix
	TokenAddress  string
	Logger        ports.Logger
}

// Dialer validates venue configuration once and produces connected clients.
// It implements ports.VenueDialer.
type Dialer struct {
	cfg     Config
	network NetworkConfig
	key     *ecdsa.PrivateKey
	wallet  common.Address
}

// NewDialer validates the configuration and derives the wallet address. The
// private key is parsed here so a bad key fails at startup rather than on
// the first trade.
func NewDialer(cfg Config) (*Dialer, error) {
	network, ok := Network(cfg.Network)
	if !ok {
		return nil, &ports.ValidationError{Reason: fmt.Sprintf("unknown network %q", cfg.Network)}
	}
	if cfg.RPCURL == "" && cfg.AlchemyAPIKey == "" {
		return nil, &ports.ValidationError{Reason: "either an RPC URL or an Alchemy API key is required"}
	}
	if !common.IsHexAddress(cfg.TokenAddress) {
		return nil, &ports.ValidationError{Reason: fmt.Sprintf("invalid token address %q", cfg.TokenAddress)}
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, &ports.ValidationError{Reason: "invalid private key"}
	}
	return &Dialer{
		cfg:     cfg,
		network: network,
		key:     key,
		wallet:  crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Dial connects to the network and binds the router, factory and token
// contracts.
func (d *Dialer) Dial(ctx context.Context) (ports.Venue, error) {
	url := d.cfg.RPCURL
	if url == "" {
		url = d.network.RPCURL(d.cfg.AlchemyAPIKey)
	}
	eth, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, &ports.ConnectivityError{Err: fmt.Errorf("dialing %s: %w", d.network.Name, err)}
	}

	tokenAddr := common.HexToAddress(d.cfg.TokenAddress)
	return &Client{
		cfg:     d.cfg,
		network: d.network,
		log:     d.cfg.Logger,
		eth:     eth,
		router:  bind.NewBoundContract(d.network.RouterV2Address, routerABI, eth, eth, eth),
		factory: bind.NewBoundContract(d.network.FactoryV2Address, factoryABI, eth, eth, eth),
		token:   bind.NewBoundContract(tokenAddr, erc20ABI, eth, eth, eth),
		key:     d.key,
		wallet:  d.wallet,
	}, nil
}

// WalletAddress returns the signer address derived from the configured key.
func (d *Dialer) WalletAddress() string { return d.wallet.Hex() }

// Client is a connected venue session. Safe for concurrent use; the only
// mutable state is the cached chain ID.
type Client struct {
	cfg     Config
	network NetworkConfig
	log     ports.Logger
	eth     *ethclient.Client
	router  *bind.BoundContract
	factory *bind.BoundContract
	token   *bind.BoundContract
	key     *ecdsa.PrivateKey
	wallet  common.Address

	mu      sync.Mutex
	chainID *big.Int
}

var _ ports.Venue = (*Client)(nil)

// ProbeNetwork checks reachability by fetching the chain ID, which is also
// cached for the transaction signer.
func (c *Client) ProbeNetwork(ctx context.Context) error {
	_, err := c.getChainID(ctx)
	return err
}

func (c *Client) getChainID(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chainID != nil {
		return c.chainID, nil
	}
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, &ports.ConnectivityError{Err: fmt.Errorf("fetching chain id: %w", err)}
	}
	c.chainID = id
	return id, nil
}

// TokenInfo resolves the traded token's metadata from its contract.
func (c *Client) TokenInfo(ctx context.Context) (*domain.TokenInfo, error) {
	opts := &bind.CallOpts{Context: ctx}

	var nameOut []interface{}
	if err := c.token.Call(opts, &nameOut, "name"); err != nil {
		return nil, c.classifyCallError(err, "reading token name")
	}
	var symbolOut []interface{}
	if err := c.token.Call(opts, &symbolOut, "symbol"); err != nil {
		return nil, c.classifyCallError(err, "reading token symbol")
	}
	var decimalsOut []interface{}
	if err := c.token.Call(opts, &decimalsOut, "decimals"); err != nil {
		return nil, c.classifyCallError(err, "reading token decimals")
	}

	return &domain.TokenInfo{
		Name:     *abi.ConvertType(nameOut[0], new(string)).(*string),
		Symbol:   *abi.ConvertType(symbolOut[0], new(string)).(*string),
		Decimals: *abi.ConvertType(decimalsOut[0], new(uint8)).(*uint8),
	}, nil
}

// GetQuote asks the router how much the path yields for amountIn.
func (c *Client) GetQuote(ctx context.Context, amountIn *big.Int, path []string) (*big.Int, error) {
	var out []interface{}
	err := c.router.Call(&bind.CallOpts{Context: ctx}, &out, "getAmountsOut", amountIn, toAddressPath(path))
	if err != nil {
		if isTransportError(err) {
			return nil, &ports.ConnectivityError{Err: fmt.Errorf("quoting swap: %w", err)}
		}
		// getAmountsOut reverts when the path has no pair or no reserves.
		return nil, &ports.LiquidityError{Err: err}
	}
	amounts := *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)
	if len(amounts) == 0 {
		return nil, &ports.LiquidityError{Err: errors.New("router returned an empty amounts array")}
	}
	return amounts[len(amounts)-1], nil
}

// GetPairAddress looks up the factory's pair for the two assets. The zero
// address means no pair has been created.
func (c *Client) GetPairAddress(ctx context.Context, assetA, assetB string) (string, error) {
	var out []interface{}
	err := c.factory.Call(&bind.CallOpts{Context: ctx}, &out, "getPair",
		common.HexToAddress(assetA), common.HexToAddress(assetB))
	if err != nil {
		return "", c.classifyCallError(err, "looking up pair")
	}
	pair := *abi.ConvertType(out[0], new(common.Address)).(*common.Address)
	return pair.Hex(), nil
}

// BaseBalance returns the owner's native balance in wei.
func (c *Client) BaseBalance(ctx context.Context, owner string) (*big.Int, error) {
	balance, err := c.eth.BalanceAt(ctx, common.HexToAddress(owner), nil)
	if err != nil {
		return nil, &ports.ConnectivityError{Err: fmt.Errorf("fetching base balance: %w", err)}
	}
	return balance, nil
}

// TokenBalance returns the owner's traded-token balance in base units.
func (c *Client) TokenBalance(ctx context.Context, owner string) (*big.Int, error) {
	var out []interface{}
	err := c.token.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", common.HexToAddress(owner))
	if err != nil {
		return nil, c.classifyCallError(err, "fetching token balance")
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// Allowance returns how much of the token the spender may move for the owner.
func (c *Client) Allowance(ctx context.Context, owner, spender string) (*big.Int, error) {
	var out []interface{}
	err := c.token.Call(&bind.CallOpts{Context: ctx}, &out, "allowance",
		common.HexToAddress(owner), common.HexToAddress(spender))
	if err != nil {
		return nil, c.classifyCallError(err, "fetching allowance")
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// Approve grants the spender an allowance and waits for the transaction to
// be mined.
func (c *Client) Approve(ctx context.Context, spender string, amount *big.Int) (string, error) {
	opts, err := c.transactOpts(ctx)
	if err != nil {
		return "", err
	}
	tx, err := c.token.Transact(opts, "approve", common.HexToAddress(spender), amount)
	if err != nil {
		return "", &ports.ExecutionError{Stage: "approve", Err: err}
	}
	if c.log != nil {
		c.log.Info(ctx, "approval submitted", map[string]interface{}{
			"tx":      tx.Hash().Hex(),
			"spender": spender,
		})
	}
	return c.awaitReceipt(ctx, tx, "approve")
}

// Swap submits the swap for the given direction and waits for confirmation.
// Buys spend the native asset via the payable entry point; sells spend the
// token and require an allowance in place.
func (c *Client) Swap(ctx context.Context, direction domain.Direction, amountIn, amountOutMin *big.Int, path []string, recipient string, deadline time.Time) (string, error) {
	opts, err := c.transactOpts(ctx)
	if err != nil {
		return "", err
	}
	to := common.HexToAddress(recipient)
	deadlineArg := big.NewInt(deadline.Unix())

	var tx *types.Transaction
	switch direction {
	case domain.Buy:
		opts.Value = amountIn
		tx, err = c.router.Transact(opts, "swapExactETHForTokens",
			amountOutMin, toAddressPath(path), to, deadlineArg)
	case domain.Sell:
		tx, err = c.router.Transact(opts, "swapExactTokensForETH",
			amountIn, amountOutMin, toAddressPath(path), to, deadlineArg)
	default:
		return "", &ports.ExecutionError{Stage: "swap", Err: fmt.Errorf("unknown direction %q", direction)}
	}
	if err != nil {
		return "", &ports.ExecutionError{Stage: "swap", Err: err}
	}
	if c.log != nil {
		c.log.Info(ctx, "swap submitted", map[string]interface{}{
			"tx":        tx.Hash().Hex(),
			"direction": string(direction),
			"explorer":  fmt.Sprintf("%s/tx/%s", c.network.ExplorerURL, tx.Hash().Hex()),
		})
	}
	return c.awaitReceipt(ctx, tx, "swap")
}

// BlockHeight returns the current chain height.
func (c *Client) BlockHeight(ctx context.Context) (uint64, error) {
	height, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return 0, &ports.ConnectivityError{Err: fmt.Errorf("fetching block number: %w", err)}
	}
	return height, nil
}

// BlockTimestamp returns the latest block's timestamp.
func (c *Client) BlockTimestamp(ctx context.Context) (time.Time, error) {
	header, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return time.Time{}, &ports.ConnectivityError{Err: fmt.Errorf("fetching latest header: %w", err)}
	}
	return time.Unix(int64(header.Time), 0), nil
}

// WalletAddress is the signer address.
func (c *Client) WalletAddress() string { return c.wallet.Hex() }

// RouterAddress is the swap router, used as the approval spender.
func (c *Client) RouterAddress() string { return c.network.RouterV2Address.Hex() }

// BaseAssetAddress is the wrapped native asset, the quote leg of every path.
func (c *Client) BaseAssetAddress() string { return c.network.WETHAddress.Hex() }

// Close releases the underlying RPC connection.
func (c *Client) Close() { c.eth.Close() }

func (c *Client) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	chainID, err := c.getChainID(ctx)
	if err != nil {
		return nil, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(c.key, chainID)
	if err != nil {
		return nil, &ports.ExecutionError{Stage: "swap", Err: fmt.Errorf("building transactor: %w", err)}
	}
	opts.Context = ctx
	return opts, nil
}

// awaitReceipt blocks until the transaction is mined and checks its status.
func (c *Client) awaitReceipt(ctx context.Context, tx *types.Transaction, stage string) (string, error) {
	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return "", &ports.ExecutionError{Stage: stage, TxHash: tx.Hash().Hex(), Err: err}
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return "", &ports.ExecutionError{Stage: stage, TxHash: tx.Hash().Hex(), Err: errors.New("transaction reverted")}
	}
	return tx.Hash().Hex(), nil
}

func (c *Client) classifyCallError(err error, action string) error {
	if isTransportError(err) {
		return &ports.ConnectivityError{Err: fmt.Errorf("%s: %w", action, err)}
	}
	return &ports.LiquidityError{Err: fmt.Errorf("%s: %w", action, err)}
}

func toAddressPath(path []string) []common.Address {
	addrs := make([]common.Address, len(path))
	for i, p := range path {
		addrs[i] = common.HexToAddress(p)
	}
	return addrs
}

// isTransportError distinguishes network-level failures from contract
// reverts. RPC clients do not expose a stable error type for transport
// faults, so this falls back to message matching.
func isTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	msg := err.Error()
	for _, probe := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"i/o timeout",
		"EOF",
		"dial tcp",
		"502",
		"503",
	} {
		if strings.Contains(msg, probe) {
			return true
		}
	}
	return false
}
