package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	NextField   key.Binding // Tab - next field
	PrevField   key.Binding // Shift+Tab - previous field
	PrevProfile key.Binding // ← - previous profile
	NextProfile key.Binding // → - next profile
	Zai         key.Binding // 1 - select z.ai
	Claude      key.Binding // 2 - select Claude
	Custom      key.Binding // 3 - select custom
	Mode        key.Binding // m - toggle Claude mode
	Apply       key.Binding // Enter / Ctrl+S - apply
	Refresh     key.Binding // r / F5 - refresh status
	Reveal      key.Binding // Ctrl+R - show or hide secrets
	Help        key.Binding // ? - help
	Back        key.Binding // Esc - back to profile row
	Quit        key.Binding // q - quit
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("Tab", "next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("Shift+Tab", "previous field"),
		),
		PrevProfile: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "previous profile"),
		),
		NextProfile: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next profile"),
		),
		Zai: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "z.ai"),
		),
		Claude: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Claude"),
		),
		Custom: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "custom"),
		),
		Mode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "subscription / API key"),
		),
		Apply: key.NewBinding(
			key.WithKeys("enter", "ctrl+s"),
			key.WithHelp("Enter", "apply"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r", "refresh"),
		),
		Reveal: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("Ctrl+R", "show keys"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "profile row"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns short help text
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextProfile, k.NextField, k.Apply, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns full help text
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevProfile, k.NextProfile, k.Zai, k.Claude, k.Custom, k.Mode},
		{k.NextField, k.PrevField, k.Back, k.Reveal},
		{k.Apply, k.Refresh, k.Help, k.Quit},
	}
}
