package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/UdayPandey01/Chartor-Market/internal/models"
	"github.com/UdayPandey01/Chartor-Market/internal/spans"
	"github.com/UdayPandey01/Chartor-Market/internal/symbols"
	"github.com/UdayPandey01/Chartor-Market/internal/terminal"
)

// Styles
var (
	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true)

	activeTabStyle = tabStyle.
			Foreground(lipgloss.Color("36")).
			Background(lipgloss.Color("235"))

	inactiveTabStyle = tabStyle.
				Foreground(lipgloss.Color("240"))

	contentStyle = lipgloss.NewStyle().
			Padding(1, 2)

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("230")).
			Padding(0, 1)

	commandBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("234")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	currencyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46"))

	percentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	emphasisStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("36")).
			Bold(true)
)

var tabNames = []string{"Market", "Positions", "History", "Strategies", "Risk", "AI", "Terminal", "Chat"}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	tabs := m.renderTabs()
	content := m.renderContent()
	statusBar := m.renderStatusBar()
	commandBar := m.renderCommandBar()

	return lipgloss.JoinVertical(
		lipgloss.Left,
		tabs,
		content,
		statusBar,
		commandBar,
	)
}

func (m model) renderTabs() string {
	tabs := []string{}
	for i, name := range tabNames {
		style := inactiveTabStyle
		if Tab(i) == m.activeTab {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("%d:%s", i+1, name)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m model) renderContent() string {
	contentHeight := m.height - 5

	var content string
	switch m.activeTab {
	case TabMarket:
		content = m.renderMarket()
	case TabPositions:
		content = m.renderPositions()
	case TabHistory:
		content = m.renderHistory()
	case TabStrategies:
		content = m.renderStrategies()
	case TabRisk:
		content = m.renderRisk()
	case TabAI:
		content = m.renderAI()
	case TabTerminal:
		content = m.renderTerminal(contentHeight)
	case TabChat:
		content = m.renderChat(contentHeight)
	}

	return contentStyle.
		Width(m.width - 4).
		Height(contentHeight).
		Render(content)
}

func (m model) renderMarket() string {
	assets := m.deps.Store.Watchlist()
	if len(assets) == 0 {
		if status, ok := m.deps.Feeds.Status("watchlist"); ok && status.LastErr != nil {
			return errorStyle.Render(fmt.Sprintf("Watchlist unavailable: %v", status.LastErr))
		}
		return "Loading watchlist..."
	}

	selected := m.deps.Store.SelectedSymbol()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("  %-10s %12s %9s %14s %12s %12s\n", "Pair", "Price", "Chg 24h", "Volume", "High", "Low"))
	sb.WriteString(strings.Repeat("─", 78) + "\n")

	for i, a := range assets {
		marker := "  "
		if i == m.marketCursor {
			marker = cursorStyle.Render("> ")
		}

		active := " "
		if symbols.ToVenueID(a) == selected {
			active = "*"
		}

		changeStyle := successStyle
		if a.Change24h < 0 {
			changeStyle = errorStyle
		}

		sb.WriteString(fmt.Sprintf("%s%-10s %12.2f %s %14.0f %12.2f %12.2f %s\n",
			marker,
			a.Pair,
			a.Price,
			changeStyle.Render(fmt.Sprintf("%+8.2f%%", a.Change24h)),
			a.Volume24h,
			a.High24h,
			a.Low24h,
			active,
		))
	}

	sb.WriteString("\n")
	sb.WriteString(m.renderSelectedDetail())
	return sb.String()
}

// renderSelectedDetail summarizes the active symbol's latest bars under the
// watchlist table.
func (m model) renderSelectedDetail() string {
	asset, ok := m.deps.Store.SelectedAsset()
	if !ok {
		return dimStyle.Render(fmt.Sprintf("Active symbol: %s", symbols.ToDisplay(m.deps.Store.SelectedSymbol())))
	}

	candles := m.deps.Store.Candles()
	if len(candles) == 0 {
		return dimStyle.Render(fmt.Sprintf("Active: %s, candles loading...", asset.Pair))
	}

	last := candles[len(candles)-1]
	return fmt.Sprintf("Active: %s | last bar O %.2f  H %.2f  L %.2f  C %.2f | %d bars",
		asset.Pair, last.Open, last.High, last.Low, last.Close, len(candles))
}

func (m model) renderPositions() string {
	positions := m.deps.Store.Positions()
	if len(positions) == 0 {
		return "No open positions"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-12s %-6s %10s %12s %12s %5s %s\n", "Symbol", "Side", "Size", "Entry", "Mark", "Lev", "Unrealized"))
	sb.WriteString(strings.Repeat("─", 76) + "\n")

	for _, pos := range positions {
		pnlStyle := successStyle
		if pos.UnrealizedPnL < 0 {
			pnlStyle = errorStyle
		}
		sb.WriteString(fmt.Sprintf("%-12s %-6s %10.4f %12.2f %12.2f %4dx %s\n",
			symbols.ToDisplay(pos.Symbol),
			strings.ToUpper(pos.Side),
			pos.Size,
			pos.EntryPrice,
			pos.CurrentPrice,
			pos.Leverage,
			pnlStyle.Render(fmt.Sprintf("$%.2f", pos.UnrealizedPnL)),
		))
	}

	return sb.String()
}

func (m model) renderHistory() string {
	trades := m.deps.Store.Trades()
	if len(trades) == 0 {
		return "No trade history"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-12s %-6s %10s %12s %-10s %10s %s\n", "Symbol", "Side", "Size", "Price", "Status", "P&L", "Time"))
	sb.WriteString(strings.Repeat("─", 80) + "\n")

	for _, tr := range trades {
		pnl := dimStyle.Render(fmt.Sprintf("%10s", "—"))
		if tr.HasPnL {
			pnlStyle := successStyle
			if tr.PnL < 0 {
				pnlStyle = errorStyle
			}
			pnl = pnlStyle.Render(fmt.Sprintf("%10.2f", tr.PnL))
		}
		sb.WriteString(fmt.Sprintf("%-12s %-6s %10.4f %12.2f %-10s %s %s\n",
			symbols.ToDisplay(tr.Symbol),
			strings.ToUpper(tr.Side),
			tr.Size,
			tr.Price,
			tr.Status,
			pnl,
			tr.ExecutionTime,
		))
	}

	return sb.String()
}

func (m model) renderStrategies() string {
	strategies := m.deps.Store.Strategies()
	settings := m.deps.Store.Settings()

	var sb strings.Builder
	if settings.AutoTrading {
		sb.WriteString(successStyle.Render("Auto-trading: ON"))
	} else {
		sb.WriteString(dimStyle.Render("Auto-trading: OFF"))
	}
	sb.WriteString(fmt.Sprintf("  |  Risk tolerance: %d%%\n\n", settings.RiskTolerance))

	if len(strategies) == 0 {
		sb.WriteString("No strategies defined")
		return sb.String()
	}

	for i, strat := range strategies {
		marker := "  "
		if i == m.strategyCursor {
			marker = cursorStyle.Render("> ")
		}
		state := dimStyle.Render("[off]")
		if strat.IsActive {
			state = successStyle.Render("[on] ")
		}
		sb.WriteString(fmt.Sprintf("%s%s %-24s %s\n", marker, state, strat.Name, dimStyle.Render(strat.Description)))
	}

	if m.mode == modeInput && m.inputFor == targetNewStrategy {
		sb.WriteString("\nNew strategy:\n")
		sb.WriteString(m.chatInput.View())
	} else {
		sb.WriteString("\n" + dimStyle.Render("t=toggle selected strategy, n=new strategy"))
	}
	return sb.String()
}

func (m model) renderRisk() string {
	metrics := m.deps.Store.Metrics()
	if metrics == nil {
		return "Not enough trade history for risk metrics yet"
	}

	pnlStyle := successStyle
	if metrics.TotalPnL < 0 {
		pnlStyle = errorStyle
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-16s %d\n", "Total trades", metrics.TotalTrades))
	sb.WriteString(fmt.Sprintf("%-16s %.1f%%\n", "Win rate", metrics.WinRate))
	sb.WriteString(fmt.Sprintf("%-16s %s\n", "Total P&L", pnlStyle.Render(fmt.Sprintf("$%.2f", metrics.TotalPnL))))
	sb.WriteString(fmt.Sprintf("%-16s %.2f\n", "Sharpe ratio", metrics.SharpeRatio))
	sb.WriteString(fmt.Sprintf("%-16s %.1f%%\n", "Max drawdown", metrics.MaxDrawdown))
	sb.WriteString(fmt.Sprintf("%-16s %.2f\n", "Profit factor", metrics.ProfitFactor))
	sb.WriteString(fmt.Sprintf("%-16s $%.2f\n", "Avg trade", metrics.AvgTrade))
	sb.WriteString(fmt.Sprintf("%-16s %s\n", "Best trade", successStyle.Render(fmt.Sprintf("$%.2f", metrics.BestTrade))))
	sb.WriteString(fmt.Sprintf("%-16s %s\n", "Worst trade", errorStyle.Render(fmt.Sprintf("$%.2f", metrics.WorstTrade))))
	return sb.String()
}

func (m model) renderAI() string {
	status := m.deps.Store.AIStatus()

	var sb strings.Builder
	if status.Available {
		sb.WriteString(successStyle.Render("AI service: available"))
	} else {
		sb.WriteString(errorStyle.Render("AI service: unavailable"))
	}
	if status.UsingFallback {
		sb.WriteString(dimStyle.Render("  (rule-based fallback)"))
	}
	if status.QuotaExceeded {
		sb.WriteString(errorStyle.Render("  quota exceeded"))
		if status.CooldownUntil != "" {
			sb.WriteString(dimStyle.Render(" until " + status.CooldownUntil))
		}
	} else {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  %d calls remaining", status.CallsRemaining)))
	}
	sb.WriteString("\n\n")

	analysis := m.deps.Store.AIAnalysis()
	if analysis == nil {
		sb.WriteString("No analysis yet. Press 'g' to request one.")
		return sb.String()
	}

	decisionStyle := dimStyle
	switch analysis.Decision {
	case "BUY":
		decisionStyle = successStyle
	case "SELL":
		decisionStyle = errorStyle
	}

	sb.WriteString(fmt.Sprintf("%s  %s  confidence %.0f%%\n",
		symbols.ToDisplay(analysis.Symbol),
		decisionStyle.Render(analysis.Decision),
		analysis.Confidence))
	sb.WriteString(fmt.Sprintf("Price $%.2f | RSI %.1f | trend %s | %s\n\n",
		analysis.Price, analysis.RSI, analysis.Trend, analysis.Timestamp))
	sb.WriteString(renderSpans(analysis.Reasoning))
	return sb.String()
}

func (m model) renderTerminal(height int) string {
	entries := m.deps.Terminal.Entries()
	if len(entries) == 0 {
		return "Terminal log empty"
	}

	visible := height - 2
	if visible < 1 {
		visible = 1
	}

	// Scroll offset counts lines up from the tail.
	end := len(entries) - m.terminalScroll
	if end > len(entries) {
		end = len(entries)
	}
	if end < 1 {
		end = 1
	}
	start := end - visible
	if start < 0 {
		start = 0
	}

	var sb strings.Builder
	for _, e := range entries[start:end] {
		sb.WriteString(fmt.Sprintf("%s %s %s\n",
			dimStyle.Render(e.Timestamp.Format("15:04:05")),
			categoryStyle(e.Category).Render(fmt.Sprintf("%-8s", strings.ToUpper(string(e.Category)))),
			renderSpans(e.Message),
		))
	}
	sb.WriteString(dimStyle.Render(fmt.Sprintf("\n%d/%d entries  j/k=scroll  y=copy", end, len(entries))))
	return sb.String()
}

func categoryStyle(c terminal.Category) lipgloss.Style {
	switch c {
	case terminal.CategoryTrade:
		return successStyle
	case terminal.CategoryRisk:
		return errorStyle
	case terminal.CategorySentinel:
		return percentStyle
	default:
		return dimStyle
	}
}

func (m model) renderChat(height int) string {
	messages := m.deps.Store.Chat()

	var sb strings.Builder
	if len(messages) == 0 {
		sb.WriteString(dimStyle.Render("No conversation yet. Press 'i' to ask a question.\n"))
	}
	for _, msg := range messages {
		who := cursorStyle.Render("you")
		if msg.Role == models.RoleAssistant {
			who = successStyle.Render("ai ")
		}
		sb.WriteString(fmt.Sprintf("%s %s %s\n",
			dimStyle.Render(msg.Timestamp.Format("15:04:05")),
			who,
			renderSpans(msg.Content),
		))
	}
	if m.chatWaiting {
		sb.WriteString(dimStyle.Render("thinking...\n"))
	}

	sb.WriteString("\n")
	sb.WriteString(m.chatInput.View())
	return sb.String()
}

// renderSpans styles currency, percentage and emphasized pieces of free-form
// text while leaving everything else untouched.
func renderSpans(s string) string {
	var sb strings.Builder
	for _, seg := range spans.Tokenize(s) {
		switch seg.Kind {
		case spans.KindCurrency:
			sb.WriteString(currencyStyle.Render(seg.Text))
		case spans.KindPercent:
			sb.WriteString(percentStyle.Render(seg.Text))
		case spans.KindEmphasis:
			sb.WriteString(emphasisStyle.Render(seg.Text))
		default:
			sb.WriteString(seg.Text)
		}
	}
	return sb.String()
}

func (m model) renderStatusBar() string {
	settings := m.deps.Store.Settings()

	auto := dimStyle.Render(" [MANUAL]")
	if settings.AutoTrading {
		auto = errorStyle.Render(" [AUTO]")
	}

	conn := successStyle.Render("●")
	if status, ok := m.deps.Feeds.Status("watchlist"); ok && status.LastErr != nil {
		conn = errorStyle.Render("●")
	}

	left := fmt.Sprintf("%s %s%s", conn, symbols.ToDisplay(m.deps.Store.SelectedSymbol()), auto)

	right := ""
	if asset, ok := m.deps.Store.SelectedAsset(); ok {
		changeStyle := successStyle
		if asset.Change24h < 0 {
			changeStyle = errorStyle
		}
		right = fmt.Sprintf("$%.2f %s", asset.Price, changeStyle.Render(fmt.Sprintf("%+.2f%%", asset.Change24h)))
	}

	// Calculate spacing safely to avoid negative repeat counts
	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}
	statusText := left + strings.Repeat(" ", spacing) + right

	if m.statusMsg != "" {
		statusText = m.statusMsg
	}

	return statusBarStyle.Width(m.width).Render(statusText)
}

func (m model) renderCommandBar() string {
	var content string
	switch m.mode {
	case modeInput:
		if m.inputFor == targetNewStrategy {
			content = `Type "name: rule", Enter to create, ESC to cancel`
		} else {
			content = "Type your question, Enter to send, ESC to leave input"
		}
	default:
		switch m.activeTab {
		case TabMarket:
			content = "j/k=move, Enter=select symbol, b=BUY, s=SELL, F=force close, 1-8/a/d=tabs, q=quit"
		case TabStrategies:
			content = "j/k=move, t=toggle strategy, n=new strategy, 1-8/a/d=tabs, q=quit"
		case TabAI:
			content = "g=request analysis, 1-8/a/d=tabs, q=quit"
		case TabChat:
			content = "i=input, j/k=scroll, 1-8/a/d=tabs, q=quit"
		default:
			content = "b=BUY, s=SELL, F=force close, t=auto-trading, y=copy log, 1-8/a/d=tabs, q=quit"
		}
	}

	return commandBarStyle.Width(m.width).Render(content)
}
