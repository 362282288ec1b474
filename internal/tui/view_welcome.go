package tui

import "github.com/charmbracelet/lipgloss"

const logo = `
 ██████╗ ██╗██╗      ██████╗ ████████╗
 ██╔══██╗██║██║     ██╔═══██╗╚══██╔══╝
 ██████╔╝██║██║     ██║   ██║   ██║
 ██╔═══╝ ██║██║     ██║   ██║   ██║
 ██║     ██║███████╗╚██████╔╝   ██║
 ╚═╝     ╚═╝╚══════╝ ╚═════╝    ╚═╝
`

func (a *App) renderWelcome() string {
	// Logo
	logoRendered := styleLogo.Render(logo)

	// Subtitle
	subtitle := styleSubtitle.Render("Automated Prompt Engineering")

	// Instructions
	var instructions string
	if a.state.providerReady {
		instructions = styleSubtitle.Render("\nTell me what you want AI to help you with, and I'll craft the prompt")
	} else {
		instructions = styleSubtitle.Render("\nConnecting to your provider...")
	}

	// Input box
	inputBox := ""
	if a.state.providerReady {
		inputBox = styleBox.
			Width(min(70, a.width-4)).
			BorderForeground(colorMuted).
			Render(a.state.input.View())
	}

	// Status bar
	statusBar := styleStatusBar.Render("[Enter] Submit  /help for commands  [Esc] Quit")

	// Combine main content
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		logoRendered,
		subtitle,
		instructions,
		"",
		inputBox,
	)

	// Center content on screen (leave room for status bar)
	mainArea := lipgloss.Place(
		a.width,
		a.height-2,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)

	// Status bar centered at bottom
	statusLine := lipgloss.PlaceHorizontal(a.width, lipgloss.Center, statusBar)

	return lipgloss.JoinVertical(lipgloss.Left, mainArea, statusLine)
}
