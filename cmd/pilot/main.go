package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"pilot/internal/config"
	"pilot/internal/logging"
	"pilot/internal/tui"
)

var version = "dev"

func main() {
	debug := os.Getenv("PILOT_DEBUG") != ""
	if cfg, err := config.Load(); err == nil && cfg != nil {
		debug = debug || cfg.Debug
	}

	log, err := logging.New(debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	p := tea.NewProgram(
		tui.NewApp(log),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
