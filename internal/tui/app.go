package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"pilot/internal/analyzer"
	"pilot/internal/config"
	"pilot/internal/executor"
	"pilot/internal/llm"
	"pilot/internal/optimizer"
	"pilot/internal/orchestrator"
)

type view int

const (
	viewWelcome view = iota
	viewSetup
	viewChat
	viewSettings
	viewHelp
	viewError
)

type App struct {
	width    int
	height   int
	view     view
	state    *state
	log      *zap.Logger
	quitting bool
}

func NewApp(log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	s := newState()

	// Check if setup needed
	cfg, _ := config.Load()
	if cfg == nil {
		s.needsSetup = true
		s.config = config.DefaultConfig()
	} else {
		s.config = cfg
	}

	return &App{
		view:  viewWelcome,
		state: s,
		log:   log,
	}
}

func (a *App) Init() tea.Cmd {
	if a.state.needsSetup {
		a.view = viewSetup
		return tea.Batch(tea.WindowSize(), textinput.Blink)
	}

	// Test provider connection
	return tea.Batch(
		tea.WindowSize(),
		textinput.Blink,
		a.testProvider(),
	)
}

func (a *App) testProvider() tea.Cmd {
	return func() tea.Msg {
		provider, err := llm.NewProvider(a.state.config)
		if err != nil {
			return providerErrorMsg{err}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := provider.Ping(ctx); err != nil {
			return providerErrorMsg{err}
		}

		return providerReadyMsg{provider}
	}
}

// buildOrchestrator wires a fresh conversation against the current provider.
func (a *App) buildOrchestrator() {
	cfg := a.state.config
	a.state.orch = orchestrator.New(
		analyzer.New(a.state.provider, cfg.Model, cfg.Policy),
		optimizer.New(a.state.provider, cfg.Model, cfg.Policy),
		executor.New(a.state.provider, cfg.Model, 2*cfg.Policy.Timeout()),
		cfg.Policy,
		a.log,
	)
	a.state.transcript = nil
	a.state.scrollOffset = 0
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := a.handleKey(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case setupCompleteMsg:
		a.state.needsSetup = false
		a.view = viewWelcome
		return a, a.testProvider()

	case setupErrorMsg:
		a.state.providerError = msg.error
		a.view = viewError
		return a, nil

	case providerReadyMsg:
		a.state.provider = msg.provider
		a.state.providerReady = true
		a.state.providerError = nil
		a.buildOrchestrator()
		a.state.input.Focus()
		return a, textinput.Blink

	case providerErrorMsg:
		a.state.providerError = msg.error
		a.view = viewError
		return a, nil

	case turnDoneMsg:
		a.finishTurn(msg)
		return a, nil

	case execDoneMsg:
		a.finishExecution(msg)
		return a, nil

	case tickMsg:
		if a.state.thinking {
			a.state.spinnerFrame++
			return a, a.tick()
		}
		return a, nil
	}

	// Update text inputs based on view
	if (a.view == viewSetup && a.state.setupStep == 1) ||
		(a.view == viewSettings && a.state.settingsMode == "apikey") {
		var cmd tea.Cmd
		a.state.apiKeyInput, cmd = a.state.apiKeyInput.Update(msg)
		cmds = append(cmds, cmd)
	} else if (a.view == viewWelcome || a.view == viewChat) && !a.state.thinking {
		var cmd tea.Cmd
		a.state.input, cmd = a.state.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Quit):
		if a.view == viewSettings || a.view == viewHelp || a.view == viewError {
			if a.state.settingsMode != "" {
				a.state.settingsMode = ""
				return nil
			}
			a.view = a.returnView()
			return nil
		}
		if a.view == viewSetup && a.state.setupStep == 1 {
			// Go back to provider selection
			a.state.setupStep = 0
			a.state.apiKeyInput.Reset()
			return nil
		}
		a.quitting = true
		return tea.Quit

	case key.Matches(msg, keys.Enter):
		switch a.view {
		case viewWelcome, viewChat:
			if a.state.providerReady && !a.state.thinking {
				return a.handleInput()
			}
		}

	case key.Matches(msg, keys.Execute):
		if a.view == viewChat && !a.state.thinking &&
			a.state.orch != nil && a.state.orch.Phase() == orchestrator.AwaitingExecution {
			return a.startExecution()
		}

	case key.Matches(msg, keys.New):
		if a.view == viewChat && !a.state.thinking {
			a.resetConversation()
			return nil
		}

	case key.Matches(msg, keys.Up):
		if a.view == viewChat {
			a.state.scrollOffset++
			return nil
		}

	case key.Matches(msg, keys.Down):
		if a.view == viewChat {
			a.state.scrollOffset--
			return nil
		}
	}

	// View-specific handling
	switch a.view {
	case viewSetup:
		return a.handleSetupKey(msg)
	case viewSettings:
		return a.handleSettingsKey(msg)
	case viewError:
		switch msg.String() {
		case "r":
			a.view = viewWelcome
			return a.testProvider()
		case "s":
			a.view = viewSettings
			a.state.settingsMode = ""
		}
	}

	return nil
}

func (a *App) handleInput() tea.Cmd {
	input := strings.TrimSpace(a.state.input.Value())
	if input == "" {
		return nil
	}

	// Handle slash commands
	if strings.HasPrefix(input, "/") {
		cmd := strings.ToLower(input)
		a.state.input.Reset()
		switch {
		case cmd == "/help" || cmd == "/h":
			a.view = viewHelp
		case cmd == "/settings" || cmd == "/s":
			a.view = viewSettings
			a.state.settingsMode = ""
		case cmd == "/reset" || cmd == "/r":
			a.resetConversation()
		case cmd == "/quit" || cmd == "/q":
			a.quitting = true
			return tea.Quit
		default:
			a.state.transcript = append(a.state.transcript, chatMessage{
				role:    "note",
				content: fmt.Sprintf("Unknown command %s. Try /help.", input),
			})
			a.view = viewChat
		}
		return nil
	}

	if a.state.orch == nil {
		return nil
	}

	phase := a.state.orch.Phase()
	if phase != orchestrator.AwaitingInput && phase != orchestrator.AwaitingClarification {
		a.state.transcript = append(a.state.transcript, chatMessage{
			role:    "note",
			content: "This conversation is finished. Press ctrl+n or type /reset to start a new one.",
		})
		return nil
	}

	a.state.input.Reset()
	a.state.transcript = append(a.state.transcript, chatMessage{role: "user", content: input})
	a.state.thinking = true
	a.state.thinkingVerb = "Analyzing"
	a.state.busyStart = time.Now()
	a.state.scrollOffset = 0
	a.view = viewChat

	return tea.Batch(a.submitTurn(input), a.tick())
}

func (a *App) submitTurn(text string) tea.Cmd {
	orch := a.state.orch
	return func() tea.Msg {
		err := orch.SubmitInput(context.Background(), text)
		return turnDoneMsg{err: err}
	}
}

// finishTurn translates the orchestrator's new phase into transcript output.
func (a *App) finishTurn(msg turnDoneMsg) {
	a.state.thinking = false

	if msg.err != nil {
		a.state.transcript = append(a.state.transcript, chatMessage{
			role:    "note",
			content: msg.err.Error(),
		})
		return
	}

	orch := a.state.orch
	switch orch.Phase() {
	case orchestrator.AwaitingClarification:
		var b strings.Builder
		b.WriteString("To optimize your prompt, I need a bit more information:\n")
		for _, q := range orch.PendingQuestions() {
			b.WriteString(fmt.Sprintf("- %s\n", q))
		}
		b.WriteString("\nAnswer on one line per question.")
		a.state.transcript = append(a.state.transcript, chatMessage{role: "assistant", content: b.String()})

	case orchestrator.AwaitingExecution:
		prompt := orch.PromptPreview()
		var b strings.Builder
		b.WriteString("Here's your optimized prompt:\n\n")
		b.WriteString(prompt.Text)
		if prompt.Explanation != "" {
			b.WriteString(fmt.Sprintf("\n\nExplanation: %s", prompt.Explanation))
		}
		a.state.transcript = append(a.state.transcript, chatMessage{role: "assistant", content: b.String()})
		a.state.transcript = append(a.state.transcript, chatMessage{
			role:    "note",
			content: "Press ctrl+e to see what the AI generates with this prompt.",
		})

	case orchestrator.Failed:
		a.state.transcript = append(a.state.transcript, chatMessage{role: "assistant", content: orch.ErrorMessage()})
	}
}

func (a *App) startExecution() tea.Cmd {
	a.state.thinking = true
	a.state.thinkingVerb = "Executing"
	a.state.busyStart = time.Now()
	a.state.scrollOffset = 0

	orch := a.state.orch
	return tea.Batch(func() tea.Msg {
		result, err := orch.Execute(context.Background())
		if err != nil {
			return execDoneMsg{err: err}
		}

		rendered, rerr := glamour.Render(result, "dark")
		if rerr != nil {
			rendered = result
		}
		return execDoneMsg{result: strings.TrimSpace(rendered)}
	}, a.tick())
}

func (a *App) finishExecution(msg execDoneMsg) {
	a.state.thinking = false

	if msg.err != nil {
		a.state.transcript = append(a.state.transcript, chatMessage{
			role:    "assistant",
			content: a.state.orch.ErrorMessage(),
		})
		return
	}

	a.state.transcript = append(a.state.transcript, chatMessage{
		role:    "assistant",
		content: "AI response to your optimized prompt:\n\n" + msg.result,
	})
	a.state.transcript = append(a.state.transcript, chatMessage{
		role:    "note",
		content: "Press ctrl+n or type /reset to start a new conversation.",
	})
}

func (a *App) resetConversation() {
	if a.state.orch != nil {
		a.state.orch.Reset()
	}
	a.state.transcript = nil
	a.state.scrollOffset = 0
	a.state.input.Reset()
	a.state.input.Focus()
	a.view = viewWelcome
}

// returnView picks where Esc from help/settings lands.
func (a *App) returnView() view {
	if len(a.state.transcript) > 0 {
		return viewChat
	}
	return viewWelcome
}

func (a *App) handleSetupKey(msg tea.KeyMsg) tea.Cmd {
	switch a.state.setupStep {
	case 0: // Provider selection
		switch msg.String() {
		case "up", "k":
			if a.state.selectedProvider > 0 {
				a.state.selectedProvider--
			}
		case "down", "j":
			if a.state.selectedProvider < len(config.Providers)-1 {
				a.state.selectedProvider++
			}
		case "enter":
			provider := config.Providers[a.state.selectedProvider]
			a.state.config.Provider = provider.ID
			a.state.config.Model = provider.DefaultModel

			if provider.NeedsAPIKey {
				a.state.setupStep = 1
				a.state.apiKeyInput.Focus()
				return textinput.Blink
			}
			return a.finishSetup()
		}

	case 1: // API key entry
		if msg.String() == "enter" {
			a.state.config.APIKey = a.state.apiKeyInput.Value()
			return a.finishSetup()
		}
	}

	return nil
}

func (a *App) finishSetup() tea.Cmd {
	return func() tea.Msg {
		if err := a.state.config.Save(); err != nil {
			return setupErrorMsg{err}
		}
		return setupCompleteMsg{}
	}
}

func (a *App) handleSettingsKey(msg tea.KeyMsg) tea.Cmd {
	switch a.state.settingsMode {
	case "":
		switch msg.String() {
		case "p":
			a.state.settingsMode = "provider"
			a.state.settingsSelected = 0
		case "m":
			a.state.settingsMode = "model"
			a.state.settingsSelected = 0
		case "k":
			a.state.settingsMode = "apikey"
			a.state.apiKeyInput.Reset()
			a.state.apiKeyInput.Focus()
			return textinput.Blink
		}

	case "provider":
		switch msg.String() {
		case "up", "k":
			if a.state.settingsSelected > 0 {
				a.state.settingsSelected--
			}
		case "down", "j":
			if a.state.settingsSelected < len(config.Providers)-1 {
				a.state.settingsSelected++
			}
		case "enter":
			p := config.Providers[a.state.settingsSelected]
			a.state.config.Provider = p.ID
			a.state.config.Model = p.DefaultModel
			a.state.settingsMode = ""
			return a.saveAndReconnect()
		}

	case "model":
		provider := config.GetProvider(a.state.config.Provider)
		if provider == nil {
			a.state.settingsMode = ""
			return nil
		}
		switch msg.String() {
		case "up", "k":
			if a.state.settingsSelected > 0 {
				a.state.settingsSelected--
			}
		case "down", "j":
			if a.state.settingsSelected < len(provider.Models)-1 {
				a.state.settingsSelected++
			}
		case "enter":
			a.state.config.Model = provider.Models[a.state.settingsSelected]
			a.state.settingsMode = ""
			return a.saveAndReconnect()
		}

	case "apikey":
		if msg.String() == "enter" {
			a.state.config.APIKey = a.state.apiKeyInput.Value()
			a.state.settingsMode = ""
			return a.saveAndReconnect()
		}
	}

	return nil
}

// saveAndReconnect persists config changes and rebuilds the provider and
// conversation. Changing backends mid-clarification would desync the
// session, so the conversation restarts.
func (a *App) saveAndReconnect() tea.Cmd {
	a.state.providerReady = false
	a.view = viewWelcome
	return tea.Batch(
		func() tea.Msg {
			if err := a.state.config.Save(); err != nil {
				return setupErrorMsg{err}
			}
			return nil
		},
		a.testProvider(),
	)
}

func (a *App) tick() tea.Cmd {
	return tea.Tick(150*time.Millisecond, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

type setupCompleteMsg struct{}
type setupErrorMsg struct{ error }
type providerReadyMsg struct{ provider llm.Provider }
type providerErrorMsg struct{ error }
type turnDoneMsg struct{ err error }
type execDoneMsg struct {
	result string
	err    error
}
type tickMsg struct{}

func (a *App) View() string {
	if a.quitting {
		return ""
	}

	switch a.view {
	case viewWelcome:
		return a.renderWelcome()
	case viewSetup:
		return a.renderSetup()
	case viewChat:
		return a.renderChat()
	case viewSettings:
		return a.renderSettings()
	case viewHelp:
		return a.renderHelp()
	case viewError:
		return a.renderError()
	default:
		return a.renderWelcome()
	}
}
