package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (a *App) renderHelp() string {
	var b strings.Builder

	// Title
	title := lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		Render("Help")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, title))
	b.WriteString("\n\n")

	// How it works
	howItWorks := []string{
		"  1. Tell Pilot what you want AI to do",
		"  2. Answer any clarifying questions it asks",
		"  3. Review the optimized prompt it builds",
		"  4. Execute the prompt to see the result",
	}
	howTitle := styleSubtitle.Render("How it works")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, howTitle))
	b.WriteString("\n\n")
	howBox := styleBox.
		Width(50).
		Render(strings.Join(howItWorks, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, howBox))
	b.WriteString("\n\n")

	// Commands
	commands := []string{
		"  /help, /h      Show this help",
		"  /settings, /s  Open settings",
		"  /reset, /r     Start a new conversation",
		"  /quit, /q      Quit pilot",
	}

	commandsBox := styleBox.
		Width(50).
		Render(strings.Join(commands, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, commandsBox))
	b.WriteString("\n\n")

	// Keyboard shortcuts
	shortcuts := []string{
		"  Enter          Submit input",
		"  ctrl+e         Execute the optimized prompt",
		"  ctrl+n         New conversation",
		"  Up/Down        Scroll the conversation",
		"  Esc            Go back / Quit",
	}

	shortcutsBox := styleBox.
		Width(50).
		Render(strings.Join(shortcuts, "\n"))
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, shortcutsBox))
	b.WriteString("\n\n")

	// Instructions
	instructions := styleStatusBar.Render("[Esc] Back")
	b.WriteString(lipgloss.PlaceHorizontal(a.width, lipgloss.Center, instructions))

	return a.centerVertically(b.String())
}
