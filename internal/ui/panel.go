package ui

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/UdayPandey01/Chartor-Market/internal/executor"
	"github.com/UdayPandey01/Chartor-Market/internal/models"
	"github.com/UdayPandey01/Chartor-Market/internal/symbols"
)

// InitialModel builds the dashboard model.
func InitialModel(deps Deps) tea.Model {
	ta := textarea.New()
	ta.Placeholder = "Ask about market context..."
	ta.SetHeight(3)
	ta.CharLimit = 500

	return model{
		deps:      deps,
		activeTab: TabMarket,
		mode:      modeNormal,
		chatInput: ta,
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return tickCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chatInput.SetWidth(msg.Width - 6)
		return m, nil

	case tickMsg:
		// All remote state lives in the store; a tick only forces a
		// repaint and clamps cursors against fresh snapshots.
		if n := len(m.deps.Store.Watchlist()); m.marketCursor >= n && n > 0 {
			m.marketCursor = n - 1
		}
		if n := len(m.deps.Store.Strategies()); m.strategyCursor >= n && n > 0 {
			m.strategyCursor = n - 1
		}
		return m, tickCmd()

	case tradeDoneMsg:
		if msg.err != nil {
			m.statusMsg = errorStyle.Render(fmt.Sprintf("%s failed: %v", msg.decision, msg.err))
		} else {
			m.statusMsg = successStyle.Render(fmt.Sprintf("%s order placed", msg.decision))
		}
		return m, nil

	case forceCloseDoneMsg:
		if msg.err != nil {
			m.statusMsg = errorStyle.Render(fmt.Sprintf("Force close failed: %v", msg.err))
		} else {
			m.statusMsg = successStyle.Render(fmt.Sprintf("Force close: %d positions closed", msg.closed))
		}
		return m, nil

	case chatReplyMsg:
		m.chatWaiting = false
		if msg.err != nil {
			m.statusMsg = errorStyle.Render(fmt.Sprintf("Chat failed: %v", msg.err))
		}
		return m, nil

	case settingsSavedMsg:
		if msg.err != nil {
			m.statusMsg = errorStyle.Render(fmt.Sprintf("Settings update failed: %v", msg.err))
		} else {
			m.statusMsg = successStyle.Render(msg.what)
			m.deps.Feeds.Kick("settings")
			m.deps.Feeds.Kick("candles")
			m.deps.Feeds.Kick("ai")
		}
		return m, nil

	case strategyToggledMsg:
		if msg.err != nil {
			m.statusMsg = errorStyle.Render(fmt.Sprintf("Toggle failed: %v", msg.err))
		} else {
			m.statusMsg = successStyle.Render(fmt.Sprintf("Strategy %q toggled", msg.name))
			m.deps.Feeds.Kick("strategies")
			m.deps.Feeds.Kick("settings")
		}
		return m, nil

	case strategyCreatedMsg:
		if msg.err != nil {
			m.statusMsg = errorStyle.Render(fmt.Sprintf("Create failed: %v", msg.err))
		} else {
			m.statusMsg = successStyle.Render(fmt.Sprintf("Strategy %q created", msg.name))
			m.deps.Feeds.Kick("strategies")
		}
		return m, nil

	case analysisTriggeredMsg:
		if msg.err != nil {
			m.statusMsg = errorStyle.Render(fmt.Sprintf("Analysis request failed: %v", msg.err))
		} else {
			m.statusMsg = successStyle.Render("Analysis requested")
			m.deps.Feeds.Kick("ai")
		}
		return m, nil
	}

	return m, nil
}

func (m model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.mode == modeInput {
		return m.handleInputMode(msg)
	}
	return m.handleNormalMode(msg)
}

func (m model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "a", "left":
		if m.activeTab > TabMarket {
			m.activeTab--
		}
	case "d", "right":
		if m.activeTab < TabChat {
			m.activeTab++
		}
	case "1", "2", "3", "4", "5", "6", "7", "8":
		n, _ := strconv.Atoi(msg.String())
		m.activeTab = Tab(n - 1)

	case "j", "down":
		m = m.cursorDown()
	case "k", "up":
		m = m.cursorUp()

	case "enter":
		return m.handleEnter()

	case "b":
		m.statusMsg = "Authorizing BUY..."
		return m, m.authorizeCmd(executor.DecisionBuy)
	case "s":
		m.statusMsg = "Authorizing SELL..."
		return m, m.authorizeCmd(executor.DecisionSell)
	case "F":
		m.statusMsg = errorStyle.Render("FORCE CLOSING ALL POSITIONS...")
		return m, m.forceCloseCmd()

	case "g":
		return m, m.triggerAnalysisCmd()

	case "t":
		if m.activeTab == TabStrategies {
			return m.toggleSelectedStrategy()
		}
		return m, m.toggleAutoTradingCmd()

	case "n":
		if m.activeTab == TabStrategies {
			m.mode = modeInput
			m.inputFor = targetNewStrategy
			m.chatInput.Placeholder = "name: plain-English trading rule"
			m.chatInput.Focus()
			return m, textarea.Blink
		}

	case "y":
		if err := clipboard.WriteAll(m.deps.Terminal.Export()); err != nil {
			m.statusMsg = errorStyle.Render("Clipboard copy failed")
		} else {
			m.statusMsg = successStyle.Render("Terminal log copied to clipboard")
		}

	case "c":
		m.activeTab = TabChat
		return m.enterChatInput()

	case "i":
		if m.activeTab == TabChat {
			return m.enterChatInput()
		}
	}

	return m, nil
}

func (m model) enterChatInput() (tea.Model, tea.Cmd) {
	m.mode = modeInput
	m.inputFor = targetChat
	m.chatInput.Placeholder = "Ask about market context..."
	m.chatInput.Focus()
	return m, textarea.Blink
}

func (m model) handleInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.chatInput.Blur()
		return m, nil

	case tea.KeyEnter:
		if m.inputFor == targetNewStrategy {
			return m.submitNewStrategy()
		}

		question := m.chatInput.Value()
		if question == "" || m.chatWaiting {
			return m, nil
		}
		m.chatInput.Reset()
		m.chatWaiting = true
		m.deps.Store.AppendChat(models.RoleUser, question)
		return m, m.chatCmd(question)
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

// submitNewStrategy parses the "name: prompt" form and posts it. The name
// before the first colon becomes the strategy name, the rest the
// plain-English rule the backend compiles.
func (m model) submitNewStrategy() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.chatInput.Value())
	if raw == "" {
		return m, nil
	}

	name, prompt, found := strings.Cut(raw, ":")
	name = strings.TrimSpace(name)
	prompt = strings.TrimSpace(prompt)
	if !found || name == "" || prompt == "" {
		m.statusMsg = errorStyle.Render(`Use "name: rule", e.g. "dip buyer: buy when RSI drops below 30"`)
		return m, nil
	}

	m.chatInput.Reset()
	m.chatInput.Blur()
	m.mode = modeNormal
	m.statusMsg = fmt.Sprintf("Creating strategy %q...", name)
	return m, m.createStrategyCmd(name, prompt)
}

func (m model) cursorDown() model {
	switch m.activeTab {
	case TabMarket:
		if m.marketCursor < len(m.deps.Store.Watchlist())-1 {
			m.marketCursor++
		}
	case TabStrategies:
		if m.strategyCursor < len(m.deps.Store.Strategies())-1 {
			m.strategyCursor++
		}
	case TabTerminal:
		m.terminalScroll++
	case TabChat:
		m.chatScroll++
	}
	return m
}

func (m model) cursorUp() model {
	switch m.activeTab {
	case TabMarket:
		if m.marketCursor > 0 {
			m.marketCursor--
		}
	case TabStrategies:
		if m.strategyCursor > 0 {
			m.strategyCursor--
		}
	case TabTerminal:
		if m.terminalScroll > 0 {
			m.terminalScroll--
		}
	case TabChat:
		if m.chatScroll > 0 {
			m.chatScroll--
		}
	}
	return m
}

// handleEnter selects the asset under the cursor on the market tab: the
// backend's active symbol is updated and the symbol-dependent feeds kicked.
func (m model) handleEnter() (tea.Model, tea.Cmd) {
	if m.activeTab != TabMarket {
		return m, nil
	}
	assets := m.deps.Store.Watchlist()
	if m.marketCursor >= len(assets) {
		return m, nil
	}

	venue := symbols.ToVenueID(assets[m.marketCursor])
	m.deps.Store.SetSelectedSymbol(venue)
	m.statusMsg = fmt.Sprintf("Selected %s", assets[m.marketCursor].Pair)

	return m, m.selectSymbolCmd(venue)
}

func (m model) toggleSelectedStrategy() (tea.Model, tea.Cmd) {
	strategies := m.deps.Store.Strategies()
	if m.strategyCursor >= len(strategies) {
		return m, nil
	}
	strat := strategies[m.strategyCursor]
	return m, m.toggleStrategyCmd(strat)
}

//
// Async commands. Each wraps one remote call and reports back as a message.
//

func (m model) authorizeCmd(decision executor.Decision) tea.Cmd {
	return func() tea.Msg {
		err := m.deps.Executor.Authorize(context.Background(), decision)
		return tradeDoneMsg{decision: decision, err: err}
	}
}

func (m model) forceCloseCmd() tea.Cmd {
	return func() tea.Msg {
		closed, err := m.deps.Executor.ForceClose(context.Background())
		return forceCloseDoneMsg{closed: closed, err: err}
	}
}

func (m model) chatCmd(question string) tea.Cmd {
	return func() tea.Msg {
		reply, err := m.deps.Chat.Chat(context.Background(), question)
		if err != nil {
			return chatReplyMsg{err: err}
		}
		m.deps.Store.AppendChat(models.RoleAssistant, reply)
		return chatReplyMsg{}
	}
}

func (m model) selectSymbolCmd(venue string) tea.Cmd {
	return func() tea.Msg {
		values := url.Values{"current_symbol": {venue}}
		err := m.deps.Settings.UpdateTradeSettings(context.Background(), values)
		return settingsSavedMsg{what: "Active symbol updated", err: err}
	}
}

func (m model) toggleAutoTradingCmd() tea.Cmd {
	enabled := !m.deps.Store.Settings().AutoTrading
	return func() tea.Msg {
		values := url.Values{"auto_trading": {strconv.FormatBool(enabled)}}
		err := m.deps.Settings.UpdateTradeSettings(context.Background(), values)
		what := "Auto-trading disabled"
		if enabled {
			what = "Auto-trading enabled"
		}
		return settingsSavedMsg{what: what, err: err}
	}
}

func (m model) createStrategyCmd(name, prompt string) tea.Cmd {
	return func() tea.Msg {
		err := m.deps.Settings.CreateStrategy(context.Background(), name, prompt, "")
		return strategyCreatedMsg{name: name, err: err}
	}
}

func (m model) toggleStrategyCmd(strat models.Strategy) tea.Cmd {
	return func() tea.Msg {
		err := m.deps.Settings.ToggleStrategy(context.Background(), strat.ID, !strat.IsActive)
		return strategyToggledMsg{name: strat.Name, err: err}
	}
}

func (m model) triggerAnalysisCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.deps.Settings.TriggerAnalysis(context.Background())
		return analysisTriggeredMsg{err: err}
	}
}
