package tui

import (
	"fmt"
	"os"

	"ezswitch/internal/engine"
	"ezswitch/internal/envstore"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"
)

// Run starts the TUI interface
func Run(eng *engine.Engine, envs envstore.Store) error {
	if !IsTerminal() {
		return fmt.Errorf("ezswitch UI requires a terminal. Use subcommands for non-interactive mode")
	}

	m := NewModel(eng, envs)

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// IsTerminal checks if stdin and stdout are terminals
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
