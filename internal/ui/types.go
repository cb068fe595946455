package ui

import (
	"context"
	"net/url"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/sirupsen/logrus"

	"github.com/UdayPandey01/Chartor-Market/internal/config"
	"github.com/UdayPandey01/Chartor-Market/internal/executor"
	"github.com/UdayPandey01/Chartor-Market/internal/feed"
	"github.com/UdayPandey01/Chartor-Market/internal/state"
	"github.com/UdayPandey01/Chartor-Market/internal/terminal"
)

type Tab int

const (
	TabMarket Tab = iota
	TabPositions
	TabHistory
	TabStrategies
	TabRisk
	TabAI
	TabTerminal
	TabChat
)

type mode int

const (
	modeNormal mode = iota
	modeInput       // chat / strategy prompt input focused
)

// inputTarget says which feature owns the shared input field while in
// modeInput.
type inputTarget int

const (
	targetChat inputTarget = iota
	targetNewStrategy
)

type tickMsg time.Time

// tradeDoneMsg reports the outcome of an authorize command.
type tradeDoneMsg struct {
	decision executor.Decision
	err      error
}

// forceCloseDoneMsg reports the outcome of a force-close command.
type forceCloseDoneMsg struct {
	closed int
	err    error
}

// chatReplyMsg arrives when the assistant answered (the transcript itself
// lives in the store).
type chatReplyMsg struct {
	err error
}

// settingsSavedMsg reports a trade-settings POST (symbol select or
// auto-trading toggle).
type settingsSavedMsg struct {
	what string
	err  error
}

// strategyToggledMsg reports a strategy toggle POST.
type strategyToggledMsg struct {
	name string
	err  error
}

// strategyCreatedMsg reports a create-strategy POST.
type strategyCreatedMsg struct {
	name string
	err  error
}

// analysisTriggeredMsg reports the on-demand AI analysis request.
type analysisTriggeredMsg struct {
	err error
}

// ChatSender is the conversational slice of the backend client.
type ChatSender interface {
	Chat(ctx context.Context, message string) (string, error)
}

// SettingsAPI covers the direct backend writes the dashboard issues outside
// the command executor.
type SettingsAPI interface {
	UpdateTradeSettings(ctx context.Context, values url.Values) error
	ToggleStrategy(ctx context.Context, id int64, active bool) error
	CreateStrategy(ctx context.Context, name, prompt, description string) error
	TriggerAnalysis(ctx context.Context) error
}

// Deps carries everything the dashboard reads or drives. All remote state
// flows in through the store; the model holds only presentation state.
type Deps struct {
	Config   *config.Config
	Store    *state.Store
	Terminal *terminal.Log
	Feeds    *feed.Scheduler
	Executor *executor.Executor
	Chat     ChatSender
	Settings SettingsAPI
	Log      *logrus.Logger
}

type model struct {
	deps Deps

	activeTab Tab
	mode      mode
	width     int
	height    int
	statusMsg string

	// Per-tab cursors and scroll offsets.
	marketCursor   int
	strategyCursor int
	terminalScroll int
	chatScroll     int

	chatInput   textarea.Model
	inputFor    inputTarget
	chatWaiting bool
}
