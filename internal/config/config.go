package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadConfig reads the configuration from a JSON file and applies .env /
// environment overrides on top.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyEnv(&config)
	return &config, nil
}

// SaveConfig writes a configuration to a JSON file.
func SaveConfig(filename string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the stock configuration pointed at a local backend.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:           "http://localhost:8000",
			RequestTimeoutSec: 10,
			RequestsPerSecond: 10,
		},
		Feeds: FeedsConfig{
			WatchlistSec:  5,
			CandlesSec:    5,
			PositionsSec:  5,
			LogsSec:       5,
			SettingsSec:   10,
			StrategiesSec: 10,
			HistorySec:    10,
			RiskSec:       30,
		},
		Terminal: TerminalConfig{Capacity: 50},
		Stream: StreamConfig{
			Enabled: false,
			URL:     "wss://stream.binance.com:9443/ws",
		},
		Log: LogConfig{
			File:  "chartor.log",
			Level: "info",
		},
	}
}

// CreateDefaultConfig creates a template configuration file.
func CreateDefaultConfig(filename string) error {
	return SaveConfig(filename, DefaultConfig())
}

// applyEnv overlays environment variables (optionally from a .env file in
// the working directory) onto the loaded config.
func applyEnv(config *Config) {
	_ = godotenv.Load()

	if v := os.Getenv("CHARTOR_API_URL"); v != "" {
		config.Backend.BaseURL = v
	}
	if v := os.Getenv("CHARTOR_LOG_FILE"); v != "" {
		config.Log.File = v
	}
	if v := os.Getenv("CHARTOR_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
}
