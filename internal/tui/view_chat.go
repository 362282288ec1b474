package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"pilot/internal/orchestrator"
)

// Loading messages shown while a backend call is in flight
var loadingMessages = []string{
	"Thinking...",
	"Processing...",
	"Contemplating...",
	"Pondering...",
	"Weighing your words...",
	"Drafting questions...",
	"Engineering prompts...",
	"Connecting neurons...",
}

// Spinner frames for animation
var spinnerFrames = []string{"|", "/", "-", "\\"}

func (a *App) renderChat() string {
	boxWidth := min(70, a.width-4)
	leftPad := (a.width - boxWidth) / 2
	if leftPad < 2 {
		leftPad = 2
	}
	indent := strings.Repeat(" ", leftPad)

	// Calculate fixed heights
	headerHeight := 3 // Title + Model + blank line
	inputHeight := 4  // Input box + status bar
	if !a.inputActive() {
		inputHeight = 2 // Just status bar
	}

	// Available height for messages
	availableHeight := a.height - headerHeight - inputHeight
	if availableHeight < 5 {
		availableHeight = 5
	}

	// === BUILD HEADER ===
	var header strings.Builder
	title := lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Render("Pilot — " + a.phaseLabel())
	header.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	header.WriteString("\n")

	modelInfo := a.getModelDisplayName()
	modelLine := lipgloss.NewStyle().
		Foreground(colorMuted).
		Render(modelInfo)
	header.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, modelLine))
	header.WriteString("\n\n")

	// === BUILD ALL MESSAGE LINES ===
	var messageLines []string

	for _, msg := range a.state.transcript {
		switch msg.role {
		case "user":
			content := wrapText(msg.content, boxWidth-4)
			for j, line := range strings.Split(content, "\n") {
				prefix := "> "
				if j > 0 {
					prefix = "  "
				}
				styled := lipgloss.NewStyle().
					Foreground(colorSecondary).
					Render(prefix + line)
				messageLines = append(messageLines, indent+styled)
			}
		case "note":
			content := wrapText(msg.content, boxWidth-4)
			for _, line := range strings.Split(content, "\n") {
				styled := lipgloss.NewStyle().
					Foreground(colorMuted).
					Italic(true).
					Render("  " + line)
				messageLines = append(messageLines, indent+styled)
			}
		default:
			content := wrapText(msg.content, boxWidth-4)
			for _, line := range strings.Split(content, "\n") {
				styled := lipgloss.NewStyle().
					Foreground(colorWhite).
					Render("  " + line)
				messageLines = append(messageLines, indent+styled)
			}
		}
		messageLines = append(messageLines, "") // Blank line between messages
	}

	// Busy indicator
	if a.state.thinking {
		spinner := spinnerFrames[a.state.spinnerFrame%len(spinnerFrames)]
		elapsed := time.Since(a.state.busyStart).Seconds()
		msgIdx := int(elapsed*2) % len(loadingMessages)
		loadingText := lipgloss.NewStyle().
			Foreground(colorPrimary).
			Render(fmt.Sprintf("%s %s", spinner, loadingMessages[msgIdx]))
		messageLines = append(messageLines, indent+loadingText)
	}

	// === APPLY SCROLL ===
	totalLines := len(messageLines)

	maxScroll := totalLines - availableHeight
	if maxScroll < 0 {
		maxScroll = 0
	}
	if a.state.scrollOffset > maxScroll {
		a.state.scrollOffset = maxScroll
	}
	if a.state.scrollOffset < 0 {
		a.state.scrollOffset = 0
	}

	// Visible range, scrolled from the bottom
	endIdx := totalLines - a.state.scrollOffset
	startIdx := endIdx - availableHeight
	if startIdx < 0 {
		startIdx = 0
	}
	if endIdx > totalLines {
		endIdx = totalLines
	}

	var visibleLines []string
	if startIdx < endIdx && len(messageLines) > 0 {
		visibleLines = messageLines[startIdx:endIdx]
	}

	// === BUILD INPUT/STATUS ===
	var footer strings.Builder

	if a.inputActive() {
		if a.state.orch != nil && a.state.orch.Phase() == orchestrator.AwaitingClarification {
			a.state.input.Placeholder = "Answer the questions above..."
		} else {
			a.state.input.Placeholder = "What do you want AI to help you with?"
		}
		inputBox := styleBox.
			Width(boxWidth).
			BorderForeground(colorMuted).
			Render(a.state.input.View())
		footer.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, inputBox))
		footer.WriteString("\n")
	}

	status := styleStatusBar.Render(a.buildStatusLine())
	footer.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, status))

	// === COMBINE WITH FIXED LAYOUT ===
	headerContent := header.String()
	footerContent := footer.String()

	var messageArea strings.Builder
	for i, line := range visibleLines {
		messageArea.WriteString(line)
		if i < len(visibleLines)-1 {
			messageArea.WriteString("\n")
		}
	}

	// Pad message area to fill available height
	displayedLines := len(visibleLines)
	messagePadding := availableHeight - displayedLines
	if messagePadding > 0 {
		if displayedLines > 0 {
			messageArea.WriteString("\n")
		}
		messageArea.WriteString(strings.Repeat("\n", messagePadding-1))
	}

	return headerContent + messageArea.String() + "\n" + footerContent
}

// inputActive reports whether the chat view should show the text input.
func (a *App) inputActive() bool {
	if a.state.thinking || a.state.orch == nil {
		return false
	}
	switch a.state.orch.Phase() {
	case orchestrator.AwaitingInput, orchestrator.AwaitingClarification:
		return true
	default:
		return false
	}
}

func (a *App) phaseLabel() string {
	if a.state.orch == nil {
		return "Chat"
	}
	switch a.state.orch.Phase() {
	case orchestrator.AwaitingClarification:
		return "Clarifying"
	case orchestrator.Optimizing, orchestrator.Analyzing:
		return "Working"
	case orchestrator.AwaitingExecution:
		return "Prompt Ready"
	case orchestrator.Done:
		return "Done"
	case orchestrator.Failed:
		return "Failed"
	default:
		return "Chat"
	}
}

func (a *App) buildStatusLine() string {
	if a.state.thinking {
		elapsed := time.Since(a.state.busyStart).Seconds()
		return fmt.Sprintf("%s  %.1fs", a.state.thinkingVerb, elapsed)
	}

	var parts []string
	if a.state.scrollOffset > 0 {
		parts = append(parts, fmt.Sprintf("[scroll: %d]", a.state.scrollOffset))
	}

	if a.state.orch != nil {
		switch a.state.orch.Phase() {
		case orchestrator.AwaitingExecution:
			parts = append(parts, "[ctrl+e] Execute  [ctrl+n] New  [Esc] Quit")
		case orchestrator.Done, orchestrator.Failed:
			parts = append(parts, "[ctrl+n] New  [Esc] Quit")
		default:
			parts = append(parts, "[Enter] Submit  [ctrl+n] New  [Esc] Quit")
		}
	}

	return strings.Join(parts, "  ")
}

// wrapText wraps text to fit within maxWidth, preserving words
func wrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = 60
	}

	var result strings.Builder
	for i, paragraph := range strings.Split(text, "\n") {
		if i > 0 {
			result.WriteString("\n")
		}
		result.WriteString(wrapLine(paragraph, maxWidth))
	}
	return result.String()
}

func wrapLine(text string, maxWidth int) string {
	if len(text) <= maxWidth {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		if i > 0 {
			if lineLen+1+len(word) > maxWidth {
				result.WriteString("\n")
				lineLen = 0
			} else {
				result.WriteString(" ")
				lineLen++
			}
		}
		result.WriteString(word)
		lineLen += len(word)
	}

	return result.String()
}

// getModelDisplayName returns a friendly model name for display
func (a *App) getModelDisplayName() string {
	if a.state.config == nil {
		return ""
	}
	model := a.state.config.Model
	provider := a.state.config.Provider

	displayModel := model
	switch {
	case strings.Contains(model, "claude-3-5-sonnet"):
		displayModel = "Claude 3.5 Sonnet"
	case strings.Contains(model, "claude-3-5-haiku"):
		displayModel = "Claude 3.5 Haiku"
	case strings.Contains(model, "gpt-4o-mini"):
		displayModel = "GPT-4o mini"
	case strings.Contains(model, "gpt-4o"):
		displayModel = "GPT-4o"
	case strings.Contains(model, "gpt-4-turbo"):
		displayModel = "GPT-4 Turbo"
	case strings.Contains(model, "llama-3"), strings.Contains(model, "llama3"):
		displayModel = "Llama 3"
	case strings.Contains(model, "mixtral"):
		displayModel = "Mixtral"
	}

	if provider != "" && !strings.Contains(strings.ToLower(displayModel), strings.ToLower(provider)) {
		return fmt.Sprintf("%s via %s", displayModel, provider)
	}
	return displayModel
}
