package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"

	"pilot/internal/config"
	"pilot/internal/llm"
	"pilot/internal/orchestrator"
)

type state struct {
	// Config
	config     *config.Config
	needsSetup bool

	// Setup wizard state
	setupStep        int
	selectedProvider int
	apiKeyInput      textinput.Model

	// Settings
	settingsMode     string
	settingsSelected int

	// Conversation
	orch       *orchestrator.Orchestrator
	transcript []chatMessage

	// Busy indicator while a backend call is in flight
	thinking     bool
	thinkingVerb string
	busyStart    time.Time
	spinnerFrame int

	scrollOffset int

	// Input
	input textinput.Model

	// Provider
	provider      llm.Provider
	providerReady bool
	providerError error
}

type chatMessage struct {
	role    string // "user", "assistant", "note"
	content string
}

func newState() *state {
	input := textinput.New()
	input.Placeholder = "What do you want AI to help you with?"
	input.CharLimit = 500
	input.Width = 60

	apiKey := textinput.New()
	apiKey.Placeholder = "Paste your API key here..."
	apiKey.EchoMode = textinput.EchoPassword
	apiKey.CharLimit = 200
	apiKey.Width = 50

	return &state{
		input:       input,
		apiKeyInput: apiKey,
	}
}
