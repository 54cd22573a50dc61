package engine

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/RectiFlex/Market-Maker-Bot/internal/domain"
	"github.com/RectiFlex/Market-Maker-Bot/internal/ports"
)

const (
	testWallet = "0x1111111111111111111111111111111111111111"
	testRouter = "0x2222222222222222222222222222222222222222"
	testWETH   = "0x3333333333333333333333333333333333333333"
	testPair   = "0x4444444444444444444444444444444444444444"
)

type swapCall struct {
	direction    domain.Direction
	amountIn     *big.Int
	amountOutMin *big.Int
	deadline     time.Time
}

type approveCall struct {
	spender string
	amount  *big.Int
}

// mockVenue is a scriptable in-memory venue. Quotes are keyed off the first
// path element: the base asset selects the buy quote, anything else the
// sell quote.
type mockVenue struct {
	mu sync.Mutex

	tokenInfo    *domain.TokenInfo
	tokenInfoErr error
	buyQuote     *big.Int
	sellQuote    *big.Int
	quoteErr     error
	pairAddr     string
	pairErr      error
	baseBalance  *big.Int
	tokenBalance *big.Int
	allowance    *big.Int
	approveErr   error
	swapErr      error
	probeErr     error

	quoteCalls   int
	swapCalls    []swapCall
	approveCalls []approveCall
	closed       bool
}

func newMockVenue() *mockVenue {
	return &mockVenue{
		tokenInfo:    &domain.TokenInfo{Name: "Test Token", Symbol: "TKN", Decimals: 18},
		buyQuote:     big.NewInt(35),
		sellQuote:    big.NewInt(1),
		pairAddr:     testPair,
		baseBalance:  big.NewInt(1_000_000),
		tokenBalance: big.NewInt(1_000_000),
		allowance:    big.NewInt(1_000_000),
	}
}

func (m *mockVenue) ProbeNetwork(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.probeErr
}

func (m *mockVenue) TokenInfo(ctx context.Context) (*domain.TokenInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokenInfoErr != nil {
		return nil, m.tokenInfoErr
	}
	return m.tokenInfo, nil
}

func (m *mockVenue) GetQuote(ctx context.Context, amountIn *big.Int, path []string) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quoteCalls++
	if m.quoteErr != nil {
		return nil, m.quoteErr
	}
	if len(path) > 0 && path[0] == testWETH {
		return new(big.Int).Set(m.buyQuote), nil
	}
	return new(big.Int).Set(m.sellQuote), nil
}

func (m *mockVenue) GetPairAddress(ctx context.Context, assetA, assetB string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pairAddr, m.pairErr
}

func (m *mockVenue) BaseBalance(ctx context.Context, owner string) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.baseBalance), nil
}

func (m *mockVenue) TokenBalance(ctx context.Context, owner string) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.tokenBalance), nil
}

func (m *mockVenue) Allowance(ctx context.Context, owner, spender string) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return new(big.Int).Set(m.allowance), nil
}

func (m *mockVenue) Approve(ctx context.Context, spender string, amount *big.Int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.approveErr != nil {
		return "", m.approveErr
	}
	m.approveCalls = append(m.approveCalls, approveCall{spender: spender, amount: new(big.Int).Set(amount)})
	return "0xapprove", nil
}

func (m *mockVenue) Swap(ctx context.Context, direction domain.Direction, amountIn, amountOutMin *big.Int, path []string, recipient string, deadline time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.swapErr != nil {
		return "", m.swapErr
	}
	m.swapCalls = append(m.swapCalls, swapCall{
		direction:    direction,
		amountIn:     new(big.Int).Set(amountIn),
		amountOutMin: new(big.Int).Set(amountOutMin),
		deadline:     deadline,
	})
	return "0xswap", nil
}

func (m *mockVenue) BlockHeight(ctx context.Context) (uint64, error)        { return 100, nil }
func (m *mockVenue) BlockTimestamp(ctx context.Context) (time.Time, error) { return time.Unix(0, 0), nil }
func (m *mockVenue) WalletAddress() string                                 { return testWallet }
func (m *mockVenue) RouterAddress() string                                 { return testRouter }
func (m *mockVenue) BaseAssetAddress() string                              { return testWETH }

func (m *mockVenue) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *mockVenue) swapCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.swapCalls)
}

func (m *mockVenue) swaps() []swapCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]swapCall, len(m.swapCalls))
	copy(out, m.swapCalls)
	return out
}

func (m *mockVenue) approveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.approveCalls)
}

func (m *mockVenue) setBuyQuote(v int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buyQuote = big.NewInt(v)
}

func (m *mockVenue) setQuoteErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quoteErr = err
}

// mockDialer hands out a fixed venue, optionally failing the first failures
// attempts.
type mockDialer struct {
	mu        sync.Mutex
	venue     ports.Venue
	failures  int
	dialErr   error
	dialCalls int
}

func (d *mockDialer) Dial(ctx context.Context) (ports.Venue, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialCalls++
	if d.failures > 0 {
		d.failures--
		return nil, d.dialErr
	}
	return d.venue, nil
}

func (d *mockDialer) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dialCalls
}

// gatedDialer blocks inside Dial until released, to hold a Start call in
// its connection phase.
type gatedDialer struct {
	venue   ports.Venue
	entered chan struct{}
	release chan struct{}

	mu        sync.Mutex
	dialCalls int
}

func newGatedDialer(venue ports.Venue) *gatedDialer {
	return &gatedDialer{
		venue:   venue,
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
}

func (d *gatedDialer) Dial(ctx context.Context) (ports.Venue, error) {
	d.mu.Lock()
	d.dialCalls++
	d.mu.Unlock()
	d.entered <- struct{}{}
	<-d.release
	return d.venue, nil
}

func (d *gatedDialer) calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dialCalls
}

// mockTradeRepo records trades in memory.
type mockTradeRepo struct {
	mu     sync.Mutex
	trades []*domain.Trade
	err    error
}

func (r *mockTradeRepo) CreateTrade(ctx context.Context, trade *domain.Trade) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	r.trades = append(r.trades, trade)
	trade.ID = int64(len(r.trades))
	return trade.ID, nil
}

func (r *mockTradeRepo) FindRecent(ctx context.Context, limit int) ([]*domain.Trade, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.trades) {
		limit = len(r.trades)
	}
	out := make([]*domain.Trade, 0, limit)
	for i := len(r.trades) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.trades[i])
	}
	return out, nil
}

func (r *mockTradeRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trades)
}
