package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/UdayPandey01/Chartor-Market/internal/api"
	"github.com/UdayPandey01/Chartor-Market/internal/config"
	"github.com/UdayPandey01/Chartor-Market/internal/executor"
	"github.com/UdayPandey01/Chartor-Market/internal/feed"
	"github.com/UdayPandey01/Chartor-Market/internal/models"
	"github.com/UdayPandey01/Chartor-Market/internal/state"
	"github.com/UdayPandey01/Chartor-Market/internal/stream"
	"github.com/UdayPandey01/Chartor-Market/internal/symbols"
	"github.com/UdayPandey01/Chartor-Market/internal/terminal"
	"github.com/UdayPandey01/Chartor-Market/internal/ui"
)

const configFile = "config.json"

func main() {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		fmt.Println("Creating default config file...")
		if err := config.CreateDefaultConfig(configFile); err != nil {
			fmt.Printf("Error creating default config: %v\n", err)
			return
		}
		fmt.Printf("Default config created at %s, edit it and restart.\n", configFile)
		return
	}

	log := newLogger(cfg.Log)

	client := api.NewClient(cfg.Backend, log)
	store := state.NewStore()
	term := terminal.NewLog(cfg.Terminal.Capacity)
	sched := feed.NewScheduler(cfg.Backend.RequestTimeout(), log)

	if system, err := client.Health(context.Background()); err != nil {
		term.Append(terminal.CategorySystem, "Backend unreachable: %v", err)
		log.WithError(err).Warn("health check failed")
	} else {
		term.Append(terminal.CategorySystem, "Connected to %s", system)
	}

	var quotes *stream.Client
	if cfg.Stream.Enabled {
		quotes = stream.NewClient(cfg.Stream.URL, streamSymbols(store), store.UpdatePrice, log)
		quotes.Connect()
		defer quotes.Close()
	}

	registerFeeds(sched, cfg, client, store, term, quotes, log)
	defer sched.StopAll()

	exec := executor.New(client, term, store, sched.Kick, log)

	deps := ui.Deps{
		Config:   cfg,
		Store:    store,
		Terminal: term,
		Feeds:    sched,
		Executor: exec,
		Chat:     client,
		Settings: client,
		Log:      log,
	}

	p := tea.NewProgram(ui.InitialModel(deps), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

// newLogger routes diagnostics to a file; stdout belongs to the TUI.
func newLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.SetOutput(io.Discard)
		return log
	}
	log.SetOutput(f)
	return log
}

func registerFeeds(sched *feed.Scheduler, cfg *config.Config, client *api.Client, store *state.Store, term *terminal.Log, quotes *stream.Client, log *logrus.Logger) {
	feeds := cfg.Feeds

	start := func(name string, interval time.Duration, fetch feed.FetchFunc, apply feed.ApplyFunc) {
		if err := sched.Start(name, interval, fetch, apply); err != nil {
			log.WithField("feed", name).WithError(err).Error("feed registration failed")
		}
	}

	start("watchlist", feeds.Watchlist(),
		func(ctx context.Context) (interface{}, error) { return client.Watchlist(ctx) },
		func(v interface{}) {
			store.SetWatchlist(v.([]models.Asset))
			if quotes != nil {
				quotes.SetSymbols(streamSymbols(store))
			}
		})

	start("candles", feeds.Candles(),
		func(ctx context.Context) (interface{}, error) {
			return client.Candles(ctx, store.SelectedSymbol(), "1m")
		},
		func(v interface{}) { store.SetCandles(v.([]models.Candle)) })

	start("positions", feeds.Positions(),
		func(ctx context.Context) (interface{}, error) { return client.Positions(ctx) },
		func(v interface{}) { store.SetPositions(v.([]models.Position)) })

	// The fetch limit never exceeds the terminal's capacity; a larger batch
	// would evict part of itself every poll.
	logLimit := cfg.Terminal.Capacity
	if logLimit <= 0 {
		logLimit = terminal.DefaultCapacity
	}
	start("logs", feeds.Logs(),
		func(ctx context.Context) (interface{}, error) { return client.Logs(ctx, logLimit) },
		func(v interface{}) { term.Merge(v.([]terminal.Entry)) })

	start("settings", feeds.Settings(),
		func(ctx context.Context) (interface{}, error) { return client.TradeSettings(ctx) },
		func(v interface{}) { store.SetSettings(v.(models.TradeSettings)) })

	start("strategies", feeds.Strategies(),
		func(ctx context.Context) (interface{}, error) { return client.Strategies(ctx) },
		func(v interface{}) { store.SetStrategies(v.([]models.Strategy)) })

	start("history", feeds.History(),
		func(ctx context.Context) (interface{}, error) { return client.TradeHistory(ctx, 50) },
		func(v interface{}) { store.SetTrades(v.([]models.TradeRecord)) })

	start("risk", feeds.Risk(),
		func(ctx context.Context) (interface{}, error) { return client.RiskMetrics(ctx) },
		func(v interface{}) { store.SetMetrics(v.(*models.RiskMetrics)) })

	// AI status and the latest analysis ride one feed; both are cheap reads
	// and the panel shows them together.
	start("ai", feeds.Settings(),
		func(ctx context.Context) (interface{}, error) {
			status, err := client.AIStatus(ctx)
			if err != nil {
				return nil, err
			}
			analysis, err := client.AIAnalysis(ctx, store.SelectedSymbol())
			if err != nil {
				return nil, err
			}
			return aiSnapshot{status: status, analysis: analysis}, nil
		},
		func(v interface{}) {
			snap := v.(aiSnapshot)
			store.SetAIStatus(snap.status)
			store.SetAIAnalysis(snap.analysis)
		})
}

type aiSnapshot struct {
	status   models.AIStatus
	analysis *models.AIAnalysis
}

// streamSymbols picks which venue symbols the websocket subscribes to. The
// watchlist feed has not necessarily run yet, so fall back to the active
// symbol alone.
func streamSymbols(store *state.Store) []string {
	assets := store.Watchlist()
	if len(assets) == 0 {
		return []string{store.SelectedSymbol()}
	}
	out := make([]string, 0, len(assets))
	for _, a := range assets {
		out = append(out, symbols.ToVenueID(a))
	}
	return out
}
