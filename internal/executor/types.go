package executor

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/UdayPandey01/Chartor-Market/internal/api"
	"github.com/UdayPandey01/Chartor-Market/internal/state"
	"github.com/UdayPandey01/Chartor-Market/internal/terminal"
)

// Decision is a user trade authorization.
type Decision string

const (
	DecisionBuy  Decision = "BUY"
	DecisionSell Decision = "SELL"
)

// ErrActionInFlight is returned when the same action type is invoked while
// a prior call is still unresolved. The caller retries by re-invoking; the
// executor never queues or silently drops.
var ErrActionInFlight = errors.New("action already in flight")

// TradeAPI is the slice of the backend client the executor needs.
type TradeAPI interface {
	ExecuteTrade(ctx context.Context, action, symbol string) (*api.TradeResult, error)
	ForceClose(ctx context.Context) (*api.ForceCloseResult, error)
}

// RefreshFunc asks the feed scheduler for an immediate out-of-band tick of
// the named feed.
type RefreshFunc func(name string)

// Executor translates discrete user intents into remote calls with accurate
// terminal feedback. It never mutates asset or position state itself; the
// next feed tick reflects the true remote state, so there is no second
// source of truth for positions or P&L.
type Executor struct {
	trader  TradeAPI
	term    *terminal.Log
	store   *state.Store
	refresh RefreshFunc
	log     *logrus.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}
