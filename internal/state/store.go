// Package state holds the client's view model. Every slice of it is written
// by exactly one owner (the feed scheduler's apply callbacks, the chat
// sender, the selection setter) and read by the UI through snapshot getters,
// so a reader never observes a partially applied feed result.
package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/UdayPandey01/Chartor-Market/internal/models"
	"github.com/UdayPandey01/Chartor-Market/internal/symbols"
)

// DefaultSymbol is the venue id the client starts on before the first
// trade-settings sync.
const DefaultSymbol = "cmt_btcusdt"

// Store is the single explicit container for all remote-derived view state.
type Store struct {
	mu sync.RWMutex

	assets     []models.Asset
	candles    []models.Candle
	positions  []models.Position
	trades     []models.TradeRecord
	metrics    *models.RiskMetrics
	strategies []models.Strategy
	settings   models.TradeSettings
	aiStatus   models.AIStatus
	aiAnalysis *models.AIAnalysis
	chat       []models.ChatMessage

	selected    string
	chatCounter uint64
}

// NewStore creates an empty store with the default symbol selected.
func NewStore() *Store {
	return &Store{selected: DefaultSymbol}
}

// SetWatchlist replaces the asset list.
func (s *Store) SetWatchlist(assets []models.Asset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets = assets
}

// UpdatePrice patches a single asset's live price, used by the optional
// quote stream between polls. Anything else about the asset stays as the
// last poll left it.
func (s *Store) UpdatePrice(venueSymbol string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.assets {
		if symbols.ToVenueID(s.assets[i]) == venueSymbol {
			s.assets[i].Price = price
			return
		}
	}
}

// SetCandles replaces the candle series.
func (s *Store) SetCandles(candles []models.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candles = candles
}

// SetPositions replaces the open position list.
func (s *Store) SetPositions(positions []models.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = positions
}

// SetTrades replaces the trade history.
func (s *Store) SetTrades(trades []models.TradeRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = trades
}

// SetMetrics replaces the risk metrics. Nil means "not enough history yet".
func (s *Store) SetMetrics(metrics *models.RiskMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = metrics
}

// SetStrategies replaces the strategy list.
func (s *Store) SetStrategies(strategies []models.Strategy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strategies = strategies
}

// SetSettings replaces the synced trade settings and adopts the backend's
// active symbol as the local selection.
func (s *Store) SetSettings(settings models.TradeSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	if settings.CurrentSymbol != "" {
		s.selected = settings.CurrentSymbol
	}
}

// SetAIStatus replaces the AI service status.
func (s *Store) SetAIStatus(status models.AIStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aiStatus = status
}

// SetAIAnalysis replaces the latest AI analysis. Nil means none exists yet.
func (s *Store) SetAIAnalysis(analysis *models.AIAnalysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aiAnalysis = analysis
}

// SetSelectedSymbol updates the single owned active-symbol value that the
// command executor and the candle/AI feeds all read.
func (s *Store) SetSelectedSymbol(venueSymbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = venueSymbol
}

// SelectedSymbol returns the active venue symbol.
func (s *Store) SelectedSymbol() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// SelectedAsset returns the watchlist row matching the active symbol.
func (s *Store) SelectedAsset() (models.Asset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.assets {
		if symbols.ToVenueID(a) == s.selected {
			return a, true
		}
	}
	return models.Asset{}, false
}

// AppendChat appends an immutable message to the transcript and returns it.
func (s *Store) AppendChat(role models.ChatRole, content string) models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chatCounter++
	msg := models.ChatMessage{
		ID:        fmt.Sprintf("chat-%d", s.chatCounter),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	s.chat = append(s.chat, msg)
	return msg
}

// Snapshot getters. Slices are copied so callers cannot alias the store's
// internals.

func (s *Store) Watchlist() []models.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Asset(nil), s.assets...)
}

func (s *Store) Candles() []models.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Candle(nil), s.candles...)
}

func (s *Store) Positions() []models.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Position(nil), s.positions...)
}

func (s *Store) Trades() []models.TradeRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.TradeRecord(nil), s.trades...)
}

func (s *Store) Metrics() *models.RiskMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.metrics == nil {
		return nil
	}
	m := *s.metrics
	return &m
}

func (s *Store) Strategies() []models.Strategy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Strategy(nil), s.strategies...)
}

func (s *Store) Settings() models.TradeSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *Store) AIStatus() models.AIStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aiStatus
}

func (s *Store) AIAnalysis() *models.AIAnalysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.aiAnalysis == nil {
		return nil
	}
	a := *s.aiAnalysis
	return &a
}

func (s *Store) Chat() []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ChatMessage(nil), s.chat...)
}
