// Package tui provides a terminal user interface for ezswitch
package tui

import (
	"strings"

	"ezswitch/config/models"
	"ezswitch/internal/engine"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// FormField represents the index of each form field
const (
	FormFieldZaiKey = iota
	FormFieldClaudeKey
	FormFieldCustomURL
	FormFieldCustomKey
	FormFieldCount // Total number of fields
)

// formFields maps form indexes to engine fields
var formFields = [FormFieldCount]engine.Field{
	FormFieldZaiKey:    engine.FieldZaiKey,
	FormFieldClaudeKey: engine.FieldClaudeKey,
	FormFieldCustomURL: engine.FieldCustomURL,
	FormFieldCustomKey: engine.FieldCustomKey,
}

// Form styles
var (
	formLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(16)

	formFocusedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205")).
				Bold(true).
				Width(16)

	formHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)
)

// FormInputs creates the input fields, filled from settings
func FormInputs(s models.Settings) []textinput.Model {
	inputs := make([]textinput.Model, FormFieldCount)

	secret := func(placeholder string) textinput.Model {
		in := textinput.New()
		in.Placeholder = placeholder
		in.CharLimit = 512
		in.Width = 48
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
		in.Prompt = ""
		return in
	}

	inputs[FormFieldZaiKey] = secret("z.ai API key")
	inputs[FormFieldClaudeKey] = secret("sk-ant-...")
	inputs[FormFieldCustomKey] = secret("API key or auth token")

	inputs[FormFieldCustomURL] = textinput.New()
	inputs[FormFieldCustomURL].Placeholder = "https://api.example.com"
	inputs[FormFieldCustomURL].CharLimit = 512
	inputs[FormFieldCustomURL].Width = 48
	inputs[FormFieldCustomURL].Prompt = ""

	SetFormData(inputs, s)
	return inputs
}

// SetFormData populates form inputs from settings
func SetFormData(inputs []textinput.Model, s models.Settings) {
	inputs[FormFieldZaiKey].SetValue(s.ZaiKey)
	inputs[FormFieldClaudeKey].SetValue(s.ClaudeKey)
	inputs[FormFieldCustomURL].SetValue(s.CustomURL)
	inputs[FormFieldCustomKey].SetValue(s.CustomKey)
}

// SetReveal switches secret fields between masked and plain echo
func SetReveal(inputs []textinput.Model, reveal bool) {
	mode := textinput.EchoPassword
	if reveal {
		mode = textinput.EchoNormal
	}
	for _, i := range []int{FormFieldZaiKey, FormFieldClaudeKey, FormFieldCustomKey} {
		inputs[i].EchoMode = mode
	}
}

// VisibleFields returns the form fields the profile uses, in order
func VisibleFields(kind models.ProfileKind, mode models.ClaudeMode) []int {
	switch kind {
	case models.ProfileZai:
		return []int{FormFieldZaiKey}
	case models.ProfileCustom:
		return []int{FormFieldCustomURL, FormFieldCustomKey}
	case models.ProfileClaude:
		if mode == models.ClaudeAPIKey {
			return []int{FormFieldClaudeKey}
		}
	}
	return nil
}

// FormLabels returns the labels for each form field
func FormLabels() []string {
	return []string{
		"Z.ai API Key:",
		"Claude API Key:",
		"Base URL:",
		"API Key:",
	}
}

// FormHints returns the hint text for each form field
func FormHints() []string {
	return []string{
		"Sent as ANTHROPIC_AUTH_TOKEN to the z.ai endpoint",
		"Sent as ANTHROPIC_AUTH_TOKEN to Anthropic",
		"Written to ANTHROPIC_BASE_URL",
		"Sent as ANTHROPIC_AUTH_TOKEN to the base URL",
	}
}

// FieldLabel returns the human name of an engine field
func FieldLabel(field string) string {
	for i, f := range formFields {
		if string(f) == field {
			return strings.TrimSuffix(FormLabels()[i], ":")
		}
	}
	return field
}

// RenderForm renders the visible inputs. focus is an index into visible,
// or -1 when no field has focus.
func RenderForm(inputs []textinput.Model, visible []int, focus int) string {
	var b strings.Builder
	labels := FormLabels()
	hints := FormHints()

	for pos, i := range visible {
		if pos == focus {
			b.WriteString(formFocusedStyle.Render(labels[i]))
		} else {
			b.WriteString(formLabelStyle.Render(labels[i]))
		}
		b.WriteString(" ")
		b.WriteString(inputs[i].View())
		b.WriteString("\n")

		if pos == focus {
			b.WriteString(formLabelStyle.Render(""))
			b.WriteString(" ")
			b.WriteString(formHintStyle.Render(hints[i]))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// FocusField focuses visible[focus] and blurs every other input
func FocusField(inputs []textinput.Model, visible []int, focus int) {
	for i := range inputs {
		inputs[i].Blur()
	}
	if focus >= 0 && focus < len(visible) {
		inputs[visible[focus]].Focus()
	}
}

// NextFocus cycles profile row (-1) → fields → profile row
func NextFocus(focus, count int) int {
	if count == 0 {
		return -1
	}
	focus++
	if focus >= count {
		return -1
	}
	return focus
}

// PrevFocus cycles in the opposite direction of NextFocus
func PrevFocus(focus, count int) int {
	if count == 0 {
		return -1
	}
	focus--
	if focus < -1 {
		return count - 1
	}
	return focus
}
