package executor

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UdayPandey01/Chartor-Market/internal/api"
	"github.com/UdayPandey01/Chartor-Market/internal/state"
	"github.com/UdayPandey01/Chartor-Market/internal/terminal"
)

const (
	testWait = time.Second
	testTick = 5 * time.Millisecond
)

// fakeTrader scripts backend responses and counts calls.
type fakeTrader struct {
	mu          sync.Mutex
	tradeCalls  int32
	closeCalls  int32
	tradeResult *api.TradeResult
	closeResult *api.ForceCloseResult
	tradeErr    error
	closeErr    error
	block       chan struct{} // if set, ExecuteTrade waits on it
	lastAction  string
	lastSymbol  string
}

func (f *fakeTrader) ExecuteTrade(ctx context.Context, action, symbol string) (*api.TradeResult, error) {
	atomic.AddInt32(&f.tradeCalls, 1)
	f.mu.Lock()
	f.lastAction, f.lastSymbol = action, symbol
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.tradeResult, f.tradeErr
}

func (f *fakeTrader) ForceClose(ctx context.Context) (*api.ForceCloseResult, error) {
	atomic.AddInt32(&f.closeCalls, 1)
	return f.closeResult, f.closeErr
}

func testExecutor(trader *fakeTrader) (*Executor, *terminal.Log, *state.Store, *[]string) {
	term := terminal.NewLog(50)
	store := state.NewStore()
	log := logrus.New()
	log.SetOutput(io.Discard)

	kicked := &[]string{}
	var mu sync.Mutex
	refresh := func(name string) {
		mu.Lock()
		*kicked = append(*kicked, name)
		mu.Unlock()
	}
	return New(trader, term, store, refresh, log), term, store, kicked
}

func countByCategory(term *terminal.Log, cat terminal.Category) int {
	n := 0
	for _, e := range term.Entries() {
		if e.Category == cat {
			n++
		}
	}
	return n
}

func TestAuthorizeSuccess(t *testing.T) {
	trader := &fakeTrader{tradeResult: &api.TradeResult{Status: "success", OrderID: "42", Price: 97000}}
	exec, term, store, kicked := testExecutor(trader)
	store.SetSelectedSymbol("cmt_ethusdt")

	err := exec.Authorize(context.Background(), DecisionBuy)
	require.NoError(t, err)

	assert.Equal(t, "buy", trader.lastAction)
	assert.Equal(t, "cmt_ethusdt", trader.lastSymbol, "executor targets the selected symbol")

	// Exactly one trade entry, zero risk entries.
	assert.Equal(t, 1, countByCategory(term, terminal.CategoryTrade))
	assert.Equal(t, 0, countByCategory(term, terminal.CategoryRisk))
	assert.Contains(t, *kicked, "positions")
}

func TestAuthorizeWellFormedRejection(t *testing.T) {
	trader := &fakeTrader{tradeResult: &api.TradeResult{Status: "error", Msg: "insufficient margin"}}
	exec, term, _, kicked := testExecutor(trader)

	err := exec.Authorize(context.Background(), DecisionSell)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient margin")

	assert.Equal(t, "sell", trader.lastAction)
	assert.Equal(t, 0, countByCategory(term, terminal.CategoryTrade))
	assert.Equal(t, 1, countByCategory(term, terminal.CategoryRisk))
	assert.Empty(t, *kicked, "no feed refresh on failure")

	// No automatic retry happened.
	assert.Equal(t, int32(1), atomic.LoadInt32(&trader.tradeCalls))
}

func TestAuthorizeTransportFailure(t *testing.T) {
	trader := &fakeTrader{tradeErr: errors.New("connection refused")}
	exec, term, _, _ := testExecutor(trader)

	err := exec.Authorize(context.Background(), DecisionBuy)
	require.Error(t, err)
	assert.Equal(t, 1, countByCategory(term, terminal.CategoryRisk))
	assert.Equal(t, 0, countByCategory(term, terminal.CategoryTrade))
}

func TestAuthorizeRejectsConcurrentSameAction(t *testing.T) {
	block := make(chan struct{})
	trader := &fakeTrader{
		tradeResult: &api.TradeResult{Status: "success"},
		block:       block,
	}
	exec, _, _, _ := testExecutor(trader)

	done := make(chan error, 1)
	go func() { done <- exec.Authorize(context.Background(), DecisionBuy) }()

	// Wait until the first call is inside the remote request.
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&trader.tradeCalls) == 1
	}, testWait, testTick)

	err := exec.Authorize(context.Background(), DecisionBuy)
	assert.ErrorIs(t, err, ErrActionInFlight)
	assert.Equal(t, int32(1), atomic.LoadInt32(&trader.tradeCalls), "no second remote call was issued")

	close(block)
	require.NoError(t, <-done)

	// Once resolved, re-invocation goes through.
	trader.mu.Lock()
	trader.block = nil
	trader.mu.Unlock()
	require.NoError(t, exec.Authorize(context.Background(), DecisionBuy))
}

func TestInvalidDecision(t *testing.T) {
	trader := &fakeTrader{}
	exec, term, _, _ := testExecutor(trader)

	err := exec.Authorize(context.Background(), Decision("HOLD"))
	require.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&trader.tradeCalls))
	assert.Equal(t, 0, term.Count())
}

func TestForceCloseSuccess(t *testing.T) {
	trader := &fakeTrader{closeResult: &api.ForceCloseResult{Status: "success", Closed: 3}}
	exec, term, _, _ := testExecutor(trader)

	closed, err := exec.ForceClose(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, closed, "count comes from the backend, not local state")

	// One risk announcement plus one trade outcome.
	assert.Equal(t, 1, countByCategory(term, terminal.CategoryRisk))
	assert.Equal(t, 1, countByCategory(term, terminal.CategoryTrade))
}

func TestForceCloseFailureKeepsAnnouncement(t *testing.T) {
	trader := &fakeTrader{closeResult: &api.ForceCloseResult{Status: "error", Msg: "exchange timeout"}}
	exec, term, _, _ := testExecutor(trader)

	_, err := exec.ForceClose(context.Background())
	require.Error(t, err)

	// Exactly two risk entries (announcement + failure), zero trade entries.
	assert.Equal(t, 2, countByCategory(term, terminal.CategoryRisk))
	assert.Equal(t, 0, countByCategory(term, terminal.CategoryTrade))
}
