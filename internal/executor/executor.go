package executor

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/UdayPandey01/Chartor-Market/internal/state"
	"github.com/UdayPandey01/Chartor-Market/internal/symbols"
	"github.com/UdayPandey01/Chartor-Market/internal/terminal"
)

// New creates a command executor. refresh may be nil (no feed kicks).
func New(trader TradeAPI, term *terminal.Log, store *state.Store, refresh RefreshFunc, log *logrus.Logger) *Executor {
	if refresh == nil {
		refresh = func(string) {}
	}
	return &Executor{
		trader:   trader,
		term:     term,
		store:    store,
		refresh:  refresh,
		log:      log,
		inFlight: make(map[string]bool),
	}
}

// begin claims the in-flight slot for an action type.
func (e *Executor) begin(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight[key] {
		return ErrActionInFlight
	}
	e.inFlight[key] = true
	return nil
}

func (e *Executor) end(key string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inFlight, key)
}

// Authorize executes a BUY (long) or SELL (short) for the currently
// selected symbol. Success appends exactly one trade entry; any failure
// appends exactly one risk entry and is not retried automatically.
func (e *Executor) Authorize(ctx context.Context, decision Decision) error {
	var side string
	switch decision {
	case DecisionBuy:
		side = "buy"
	case DecisionSell:
		side = "sell"
	default:
		return fmt.Errorf("unknown decision %q", decision)
	}

	key := "authorize-" + string(decision)
	if err := e.begin(key); err != nil {
		return err
	}
	defer e.end(key)

	symbol := e.store.SelectedSymbol()
	display := symbols.ToDisplay(symbol)
	e.log.WithFields(logrus.Fields{"decision": decision, "symbol": symbol}).Info("trade authorized")

	result, err := e.trader.ExecuteTrade(ctx, side, symbol)
	if err != nil {
		e.term.Append(terminal.CategoryRisk, "Trade %s %s failed: %v", decision, display, err)
		return fmt.Errorf("trade %s failed: %w", decision, err)
	}
	if !result.OK() {
		e.term.Append(terminal.CategoryRisk, "Trade %s %s rejected: %s", decision, display, result.Msg)
		return fmt.Errorf("trade %s rejected: %s", decision, result.Msg)
	}

	e.term.Append(terminal.CategoryTrade, "Trade executed: %s %s @ $%.2f | order %s",
		decision, display, result.Price, result.OrderID)
	e.refreshAfterCommand()
	return nil
}

// ForceClose liquidates all open positions. The emergency announcement is
// appended immediately and stands regardless of outcome; the outcome adds
// exactly one more entry (trade on success, risk on failure).
func (e *Executor) ForceClose(ctx context.Context) (int, error) {
	if err := e.begin("force-close"); err != nil {
		return 0, err
	}
	defer e.end("force-close")

	e.term.Append(terminal.CategoryRisk, "EMERGENCY: force close of all positions triggered")
	e.log.Warn("force close requested")

	result, err := e.trader.ForceClose(ctx)
	if err != nil {
		e.term.Append(terminal.CategoryRisk, "Force close failed: %v", err)
		return 0, fmt.Errorf("force close failed: %w", err)
	}
	if !result.OK() {
		e.term.Append(terminal.CategoryRisk, "Force close failed: %s", result.Msg)
		return 0, fmt.Errorf("force close failed: %s", result.Msg)
	}

	// The closed count is whatever the backend reports, never computed
	// locally.
	e.term.Append(terminal.CategoryTrade, "Force close completed: %d positions closed", result.Closed)
	e.refreshAfterCommand()
	return result.Closed, nil
}

// refreshAfterCommand kicks the feeds whose remote state a command just
// changed.
func (e *Executor) refreshAfterCommand() {
	e.refresh("positions")
	e.refresh("history")
	e.refresh("logs")
}
