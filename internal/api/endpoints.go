package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/UdayPandey01/Chartor-Market/internal/models"
	"github.com/UdayPandey01/Chartor-Market/internal/symbols"
	"github.com/UdayPandey01/Chartor-Market/internal/terminal"
)

// Health pings the backend root and returns the reported system name.
func (c *Client) Health(ctx context.Context) (string, error) {
	data, err := c.get(ctx, "/", nil)
	if err != nil {
		return "", err
	}
	root := gjson.ParseBytes(data)
	if root.Get("status").String() != "online" {
		return "", fmt.Errorf("backend not online: %s", root.Get("status").String())
	}
	return root.Get("system").String(), nil
}

// Watchlist fetches the tradable assets with live 24h quotes.
func (c *Client) Watchlist(ctx context.Context) ([]models.Asset, error) {
	data, err := c.get(ctx, "/api/watchlist", nil)
	if err != nil {
		return nil, err
	}

	assets := make([]models.Asset, 0)
	gjson.ParseBytes(data).ForEach(func(_, row gjson.Result) bool {
		pair := row.Get("symbol").String()
		venue := row.Get("raw_symbol").String()
		if pair == "" && venue != "" {
			pair = symbols.Pair(venue)
		}
		ticker := pair
		if i := strings.Index(ticker, "/"); i >= 0 {
			ticker = ticker[:i]
		}
		assets = append(assets, models.Asset{
			Symbol:      ticker,
			Pair:        pair,
			Price:       row.Get("price").Float(),
			Change24h:   row.Get("change").Float(),
			Volume24h:   row.Get("volume24h").Float(),
			High24h:     row.Get("high24h").Float(),
			Low24h:      row.Get("low24h").Float(),
			VenueSymbol: venue,
		})
		return true
	})
	return assets, nil
}

// Candles fetches the OHLC series for a venue symbol and interval.
func (c *Client) Candles(ctx context.Context, symbol, interval string) ([]models.Candle, error) {
	q := url.Values{"symbol": {symbol}, "interval": {interval}}
	data, err := c.get(ctx, "/api/candles", q)
	if err != nil {
		return nil, err
	}

	candles := make([]models.Candle, 0)
	gjson.ParseBytes(data).ForEach(func(_, row gjson.Result) bool {
		candles = append(candles, models.Candle{
			Time:  row.Get("time").Int(),
			Open:  row.Get("open").Float(),
			High:  row.Get("high").Float(),
			Low:   row.Get("low").Float(),
			Close: row.Get("close").Float(),
		})
		return true
	})
	return candles, nil
}

// Positions fetches all open positions. The backend row shape is ragged
// (field names vary by venue response path), so every field is coerced.
func (c *Client) Positions(ctx context.Context) ([]models.Position, error) {
	data, err := c.get(ctx, "/api/positions", nil)
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(data)
	positions := make([]models.Position, 0)
	root.Get("positions").ForEach(func(_, row gjson.Result) bool {
		positions = append(positions, models.Position{
			ID:            row.Get("id").Int(),
			Symbol:        row.Get("symbol").String(),
			Side:          orDefault(row.Get("side").String(), "buy"),
			Size:          row.Get("size").Float(),
			EntryPrice:    row.Get("entry_price").Float(),
			CurrentPrice:  row.Get("current_price").Float(),
			UnrealizedPnL: firstFloat(row, "unrealized_pnl", "unrealizePnl"),
			Leverage:      int(row.Get("leverage").Int()),
			OpenedAt:      row.Get("opened_at").String(),
		})
		return true
	})
	return positions, nil
}

// TradeHistory fetches up to limit executed trades.
func (c *Client) TradeHistory(ctx context.Context, limit int) ([]models.TradeRecord, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	data, err := c.get(ctx, "/api/trade-history", q)
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(data)
	trades := make([]models.TradeRecord, 0)
	root.Get("trades").ForEach(func(_, row gjson.Result) bool {
		pnl := row.Get("pnl")
		trades = append(trades, models.TradeRecord{
			ID:            row.Get("id").Int(),
			Symbol:        row.Get("symbol").String(),
			Side:          orDefault(row.Get("side").String(), "buy"),
			Size:          row.Get("size").Float(),
			Price:         firstFloat(row, "price", "priceAvg", "price_avg"),
			OrderID:       row.Get("order_id").String(),
			Status:        orDefault(row.Get("status").String(), "filled"),
			PnL:           pnl.Float(),
			HasPnL:        pnl.Exists() && pnl.Type != gjson.Null,
			Fees:          row.Get("fees").Float(),
			ExecutionTime: row.Get("execution_time").String(),
		})
		return true
	})
	return trades, nil
}

// RiskMetrics fetches the aggregate performance stats. A thin trade history
// comes back as a well-formed "error" status; that is an empty state for the
// caller, not a failure.
func (c *Client) RiskMetrics(ctx context.Context) (*models.RiskMetrics, error) {
	data, err := c.get(ctx, "/api/risk-metrics", nil)
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(data)
	m := root.Get("metrics")
	if root.Get("status").String() != "success" || !m.IsObject() {
		return nil, nil
	}
	return &models.RiskMetrics{
		TotalTrades:  int(m.Get("totalTrades").Int()),
		WinRate:      m.Get("winRate").Float(),
		TotalPnL:     m.Get("totalPnL").Float(),
		SharpeRatio:  m.Get("sharpeRatio").Float(),
		MaxDrawdown:  m.Get("maxDrawdown").Float(),
		ProfitFactor: m.Get("profitFactor").Float(),
		AvgTrade:     m.Get("avgTrade").Float(),
		BestTrade:    m.Get("bestTrade").Float(),
		WorstTrade:   m.Get("worstTrade").Float(),
	}, nil
}

// Strategies fetches all user-defined strategies.
func (c *Client) Strategies(ctx context.Context) ([]models.Strategy, error) {
	data, err := c.get(ctx, "/api/strategies", nil)
	if err != nil {
		return nil, err
	}

	strategies := make([]models.Strategy, 0)
	gjson.ParseBytes(data).Get("strategies").ForEach(func(_, row gjson.Result) bool {
		strategies = append(strategies, models.Strategy{
			ID:          row.Get("id").Int(),
			Name:        row.Get("name").String(),
			Description: row.Get("description").String(),
			Logic:       row.Get("logic").String(),
			Action:      row.Get("action").String(),
			IsActive:    row.Get("is_active").Bool(),
			CreatedAt:   row.Get("created_at").String(),
		})
		return true
	})
	return strategies, nil
}

// ToggleStrategy flips a strategy's active flag.
func (c *Client) ToggleStrategy(ctx context.Context, id int64, active bool) error {
	path := fmt.Sprintf("/api/strategies/%d/toggle", id)
	data, err := c.postJSON(ctx, path, map[string]bool{"is_active": active})
	if err != nil {
		return err
	}
	return statusError(data)
}

// CreateStrategy creates a strategy from a plain-English prompt.
func (c *Client) CreateStrategy(ctx context.Context, name, prompt, description string) error {
	body := map[string]string{"name": name, "prompt": prompt, "description": description}
	data, err := c.postJSON(ctx, "/api/create-strategy", body)
	if err != nil {
		return err
	}
	return statusError(data)
}

// TradeSettings fetches the current auto-trading, risk tolerance and active
// symbol settings.
func (c *Client) TradeSettings(ctx context.Context) (models.TradeSettings, error) {
	data, err := c.get(ctx, "/api/trade-settings", nil)
	if err != nil {
		return models.TradeSettings{}, err
	}

	root := gjson.ParseBytes(data)
	return models.TradeSettings{
		AutoTrading:   root.Get("auto_trading").Bool(),
		RiskTolerance: int(root.Get("risk_tolerance").Int()),
		CurrentSymbol: orDefault(root.Get("current_symbol").String(), "cmt_btcusdt"),
	}, nil
}

// UpdateTradeSettings posts changed settings. The backend reads them as
// form/query parameters, so values travel in the query string.
func (c *Client) UpdateTradeSettings(ctx context.Context, values url.Values) error {
	data, err := c.postQuery(ctx, "/api/trade-settings", values)
	if err != nil {
		return err
	}
	return statusError(data)
}

// AIStatus fetches the AI service availability.
func (c *Client) AIStatus(ctx context.Context) (models.AIStatus, error) {
	data, err := c.get(ctx, "/api/ai-status", nil)
	if err != nil {
		return models.AIStatus{}, err
	}

	root := gjson.ParseBytes(data)
	return models.AIStatus{
		Available:      root.Get("available").Bool(),
		UsingFallback:  root.Get("using_fallback").Bool(),
		QuotaExceeded:  root.Get("quota_exceeded").Bool(),
		CallsRemaining: int(root.Get("calls_remaining").Int()),
		CooldownUntil:  root.Get("cooldown_until").String(),
	}, nil
}

// AIAnalysis fetches the latest AI decision for a symbol. The backend
// returns null when no analysis exists yet; that maps to (nil, nil).
func (c *Client) AIAnalysis(ctx context.Context, symbol string) (*models.AIAnalysis, error) {
	q := url.Values{}
	if symbol != "" {
		q.Set("symbol", symbol)
	}
	data, err := c.get(ctx, "/api/ai-analysis", q)
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, nil
	}
	return &models.AIAnalysis{
		Symbol:     root.Get("symbol").String(),
		Decision:   orDefault(root.Get("decision").String(), "UNKNOWN"),
		Confidence: root.Get("confidence").Float(),
		Reasoning:  root.Get("reasoning").String(),
		Price:      root.Get("price").Float(),
		RSI:        root.Get("rsi").Float(),
		Trend:      orDefault(root.Get("trend").String(), "UNKNOWN"),
		Timestamp:  root.Get("timestamp").String(),
	}, nil
}

// TriggerAnalysis asks the backend to run a fresh AI analysis now.
func (c *Client) TriggerAnalysis(ctx context.Context) error {
	data, err := c.postQuery(ctx, "/api/trigger-analysis", nil)
	if err != nil {
		return err
	}
	return statusError(data)
}

// ExecuteTrade places an order for the given action ("buy"/"sell") and
// venue symbol. A non-nil error means transport failure; a well-formed
// rejection comes back in the result's Status/Msg.
func (c *Client) ExecuteTrade(ctx context.Context, action, symbol string) (*TradeResult, error) {
	q := url.Values{"action": {action}, "symbol": {symbol}}
	data, err := c.postQuery(ctx, "/api/trade", q)
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(data)
	return &TradeResult{
		Status:  root.Get("status").String(),
		Msg:     root.Get("msg").String(),
		OrderID: root.Get("order_id").String(),
		Price:   root.Get("price").Float(),
	}, nil
}

// ForceClose liquidates all open positions.
func (c *Client) ForceClose(ctx context.Context) (*ForceCloseResult, error) {
	data, err := c.postQuery(ctx, "/api/force-close", nil)
	if err != nil {
		return nil, err
	}

	root := gjson.ParseBytes(data)
	return &ForceCloseResult{
		Status: root.Get("status").String(),
		Msg:    root.Get("msg").String(),
		Closed: int(root.Get("closed").Int()),
	}, nil
}

// Logs fetches the most recent backend events for the terminal panel. The
// backend serves them newest-first; the batch is reversed so callers always
// receive ascending time order.
func (c *Client) Logs(ctx context.Context, limit int) ([]terminal.Entry, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	data, err := c.get(ctx, "/api/logs", q)
	if err != nil {
		return nil, err
	}

	entries := make([]terminal.Entry, 0)
	gjson.ParseBytes(data).ForEach(func(_, row gjson.Result) bool {
		entries = append(entries, terminal.Entry{
			ID:        row.Get("id").String(),
			Timestamp: parseTime(row.Get("timestamp").String()),
			Category:  logCategory(row.Get("type").String()),
			Message:   row.Get("message").String(),
		})
		return true
	})
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Chat sends a conversational query and returns the assistant's reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	data, err := c.postJSON(ctx, "/api/chat", map[string]string{"message": message})
	if err != nil {
		return "", err
	}
	return gjson.ParseBytes(data).Get("response").String(), nil
}

// statusError turns a well-formed {status, msg} rejection into an error.
func statusError(data []byte) error {
	root := gjson.ParseBytes(data)
	if root.Get("status").String() == "success" {
		return nil
	}
	msg := root.Get("msg").String()
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Errorf("backend rejected request: %s", msg)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// firstFloat returns the first of the named fields that exists, for payloads
// whose field names vary between backend code paths.
func firstFloat(row gjson.Result, names ...string) float64 {
	for _, name := range names {
		if v := row.Get(name); v.Exists() && v.Type != gjson.Null {
			return v.Float()
		}
	}
	return 0
}

func logCategory(t string) terminal.Category {
	switch t {
	case "sentinel":
		return terminal.CategorySentinel
	case "risk":
		return terminal.CategoryRisk
	case "trade":
		return terminal.CategoryTrade
	default:
		return terminal.CategorySystem
	}
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
