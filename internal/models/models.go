package models

import "time"

// Asset is one watchlist row. Price == 0 together with the watchlist feed's
// loading flag means "not yet loaded", not a zero quote.
type Asset struct {
	Symbol      string // display ticker, e.g. "BTC"
	Pair        string // "BTC/USDT"
	Price       float64
	Change24h   float64 // percent
	Volume24h   float64
	High24h     float64
	Low24h      float64
	VenueSymbol string // canonical venue id, e.g. "cmt_btcusdt"; may be empty
}

// Candle is one OHLC bar from the candles feed.
type Candle struct {
	Time  int64 // unix seconds
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// Position is one open position as reported by the backend.
type Position struct {
	ID            int64
	Symbol        string
	Side          string // "buy" or "sell"
	Size          float64
	EntryPrice    float64
	CurrentPrice  float64
	UnrealizedPnL float64
	Leverage      int
	OpenedAt      string
}

// TradeRecord is one executed trade from the history feed.
type TradeRecord struct {
	ID            int64
	Symbol        string
	Side          string
	Size          float64
	Price         float64
	OrderID       string
	Status        string
	PnL           float64
	HasPnL        bool
	Fees          float64
	ExecutionTime string
}

// RiskMetrics holds the aggregate performance stats from /api/risk-metrics.
type RiskMetrics struct {
	TotalTrades  int
	WinRate      float64
	TotalPnL     float64
	SharpeRatio  float64
	MaxDrawdown  float64
	ProfitFactor float64
	AvgTrade     float64
	BestTrade    float64
	WorstTrade   float64
}

// Strategy is one user-defined strategy row.
type Strategy struct {
	ID          int64
	Name        string
	Description string
	Logic       string
	Action      string
	IsActive    bool
	CreatedAt   string
}

// TradeSettings mirrors the backend's trade_settings row.
type TradeSettings struct {
	AutoTrading   bool
	RiskTolerance int
	CurrentSymbol string // venue id
}

// AIStatus reports availability of the backend's AI service.
type AIStatus struct {
	Available      bool
	UsingFallback  bool
	QuotaExceeded  bool
	CallsRemaining int
	CooldownUntil  string
}

// AIAnalysis is the latest AI decision for a symbol.
type AIAnalysis struct {
	Symbol     string
	Decision   string
	Confidence float64
	Reasoning  string
	Price      float64
	RSI        float64
	Trend      string
	Timestamp  string
}

// ChatRole identifies who authored a chat message.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is one immutable entry in the chat transcript.
type ChatMessage struct {
	ID        string
	Role      ChatRole
	Content   string
	Timestamp time.Time
}
