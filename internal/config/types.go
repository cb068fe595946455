package config

import "time"

// Config holds all configuration settings.
type Config struct {
	Backend  BackendConfig  `json:"backend"`
	Feeds    FeedsConfig    `json:"feeds"`
	Terminal TerminalConfig `json:"terminal"`
	Stream   StreamConfig   `json:"stream"`
	Log      LogConfig      `json:"log"`
}

// BackendConfig locates the Chartor API server. Callers never hardcode
// host or port; everything goes through BaseURL.
type BackendConfig struct {
	BaseURL           string  `json:"baseUrl"`
	RequestTimeoutSec int     `json:"requestTimeoutSec"`
	RequestsPerSecond float64 `json:"requestsPerSecond"`
}

// FeedsConfig holds per-feed polling periods in seconds. Zero falls back
// to the default for that feed.
type FeedsConfig struct {
	WatchlistSec  int `json:"watchlistSec"`
	CandlesSec    int `json:"candlesSec"`
	PositionsSec  int `json:"positionsSec"`
	LogsSec       int `json:"logsSec"`
	SettingsSec   int `json:"settingsSec"`
	StrategiesSec int `json:"strategiesSec"`
	HistorySec    int `json:"historySec"`
	RiskSec       int `json:"riskSec"`
}

// TerminalConfig sizes the in-memory event history.
type TerminalConfig struct {
	Capacity int `json:"capacity"`
}

// StreamConfig controls the optional live quote websocket.
type StreamConfig struct {
	Enabled bool   `json:"enabled"`
	URL     string `json:"url"`
}

// LogConfig controls diagnostic file logging (stdout belongs to the TUI).
type LogConfig struct {
	File  string `json:"file"`
	Level string `json:"level"`
}

// RequestTimeout returns the per-request timeout as a duration.
func (b BackendConfig) RequestTimeout() time.Duration {
	if b.RequestTimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(b.RequestTimeoutSec) * time.Second
}

func secondsOr(sec, def int) time.Duration {
	if sec <= 0 {
		return time.Duration(def) * time.Second
	}
	return time.Duration(sec) * time.Second
}

// Interval helpers with the catalog defaults.

func (f FeedsConfig) Watchlist() time.Duration  { return secondsOr(f.WatchlistSec, 5) }
func (f FeedsConfig) Candles() time.Duration    { return secondsOr(f.CandlesSec, 5) }
func (f FeedsConfig) Positions() time.Duration  { return secondsOr(f.PositionsSec, 5) }
func (f FeedsConfig) Logs() time.Duration       { return secondsOr(f.LogsSec, 5) }
func (f FeedsConfig) Settings() time.Duration   { return secondsOr(f.SettingsSec, 10) }
func (f FeedsConfig) Strategies() time.Duration { return secondsOr(f.StrategiesSec, 10) }
func (f FeedsConfig) History() time.Duration    { return secondsOr(f.HistorySec, 10) }
func (f FeedsConfig) Risk() time.Duration       { return secondsOr(f.RiskSec, 30) }
