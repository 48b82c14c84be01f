package tui

import (
	"fmt"
	"strings"

	"ezswitch/config/models"
	"ezswitch/internal/engine"
	"ezswitch/internal/providers"

	"github.com/charmbracelet/lipgloss"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57")).
			Bold(true)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	messageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))

	statusBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)
)

// RenderMainView renders the profile form
func (m Model) RenderMainView() string {
	var b strings.Builder
	width := m.getEffectiveWidth(60)
	edits := m.engine.Edits()

	b.WriteString(titleStyle.Render("EZ Switch"))
	b.WriteString(dimStyle.Render("  Claude Code API configuration"))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n\n")

	b.WriteString(m.RenderStatusPanel())
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Profile"))
	b.WriteString("\n")
	b.WriteString(m.renderProfileRow(edits.Selected))
	b.WriteString("\n")
	if p, err := providers.Get(edits.Selected); err == nil {
		b.WriteString(dimStyle.Render("  " + p.Description()))
		b.WriteString("\n")
	}

	if edits.Selected == models.ProfileClaude {
		b.WriteString(renderClaudeMode(edits.ClaudeMode))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	visible := m.visibleFields()
	if len(visible) > 0 {
		b.WriteString(RenderForm(m.inputs, visible, m.focus))
	} else {
		b.WriteString(dimStyle.Render("Uses your Claude subscription login. Applying removes both variables."))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(m.RenderStatusBar())

	return b.String()
}

// RenderStatusPanel renders the current environment status box
func (m Model) RenderStatusPanel() string {
	var body string
	switch {
	case m.busy:
		body = m.spinner.View() + " Checking environment..."
	case m.statusErr != "":
		body = errorStyle.Render("⚠ Could not determine current status") + "\n" + dimStyle.Render("Error: "+m.statusErr)
	case m.status != nil:
		body = renderStatus(*m.status)
	default:
		body = dimStyle.Render("Checking...")
	}
	return statusBoxStyle.Render(dimStyle.Render("Current Status") + "\n" + body)
}

func renderStatus(s engine.Status) string {
	lines := []string{activeStyle.Render("✓ " + s.Headline())}
	for _, d := range s.Details() {
		lines = append(lines, normalStyle.Render(d))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderProfileRow(selected models.ProfileKind) string {
	var parts []string
	for i, p := range providers.List() {
		label := fmt.Sprintf(" %d %s ", i+1, p.Label())
		if p.Kind() == selected {
			if m.focus < 0 {
				parts = append(parts, selectedStyle.Render("●"+label))
			} else {
				parts = append(parts, activeStyle.Render("●"+label))
			}
		} else {
			parts = append(parts, normalStyle.Render("○"+label))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func renderClaudeMode(mode models.ClaudeMode) string {
	sub, api := "○ Subscription", "○ API Key"
	if mode == models.ClaudeAPIKey {
		api = activeStyle.Render("● API Key")
	} else {
		sub = activeStyle.Render("● Subscription")
	}
	return "  " + dimStyle.Render("Mode (m):") + " " + sub + "  " + api
}

// getEffectiveWidth returns the width to use for separators
func (m Model) getEffectiveWidth(defaultWidth int) int {
	if m.width <= 0 {
		return defaultWidth
	}
	if m.width-2 < defaultWidth {
		if m.width-2 < 20 {
			return 20
		}
		return m.width - 2
	}
	return defaultWidth
}

// RenderHelpView renders the help panel
func (m Model) RenderHelpView() string {
	var b strings.Builder
	width := m.getEffectiveWidth(50)

	b.WriteString(titleStyle.Render("Keyboard shortcuts"))
	b.WriteString("\n")
	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n\n")

	sections := []string{"Profile row", "Fields", "Actions"}
	for i, group := range m.keys.FullHelp() {
		b.WriteString(sectionStyle.Render(sections[i]))
		b.WriteString("\n")
		for _, k := range group {
			b.WriteString(renderHelpLine(k.Help().Key, k.Help().Desc))
		}
		b.WriteString("\n")
	}

	b.WriteString(separatorStyle.Render(strings.Repeat("─", width)))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("?/Esc: back │ q: quit"))

	return b.String()
}

// renderHelpLine renders a single help line with key and description
func renderHelpLine(key, desc string) string {
	keyStyled := helpKeyStyle.Render(fmt.Sprintf("  %-10s", key))
	descStyled := normalStyle.Render(desc)
	return fmt.Sprintf("%s %s\n", keyStyled, descStyled)
}

// RenderStatusBar renders messages and shortcut hints
func (m Model) RenderStatusBar() string {
	var b strings.Builder

	if m.errorMsg != "" {
		b.WriteString(errorStyle.Render("✗ " + m.errorMsg))
		b.WriteString("\n")
	}
	if m.warning != "" {
		b.WriteString(warningStyle.Render("⚠ " + m.warning))
		b.WriteString("\n")
	}
	if m.message != "" {
		b.WriteString(messageStyle.Render("✓ " + m.message))
		b.WriteString("\n")
	}
	if m.busy {
		b.WriteString(m.spinner.View() + dimStyle.Render(" Working..."))
		b.WriteString("\n")
	}

	hints := make([]string, 0, len(m.keys.ShortHelp()))
	for _, k := range m.keys.ShortHelp() {
		hints = append(hints, fmt.Sprintf("%s %s", helpKeyStyle.Render(k.Help().Key), helpStyle.Render(k.Help().Desc)))
	}
	b.WriteString(strings.Join(hints, helpStyle.Render(" │ ")))

	return b.String()
}

func profileLabel(kind models.ProfileKind) string {
	p, err := providers.Get(kind)
	if err != nil {
		return string(kind)
	}
	return p.Label()
}
