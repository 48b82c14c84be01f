// Package engine holds the profile edit state and turns the selected
// profile into environment changes.
package engine

import (
	"fmt"
	"strings"
	"sync"

	"ezswitch/config/models"
	"ezswitch/config/validation"
	"ezswitch/internal/envstore"
	"ezswitch/internal/providers"

	"github.com/rs/zerolog/log"
)

// SettingsStore loads and saves the persisted settings
type SettingsStore interface {
	Load() models.Settings
	Save(models.Settings) error
}

// Field names an editable settings field
type Field string

const (
	FieldZaiKey    Field = validation.FieldZaiKey
	FieldClaudeKey Field = validation.FieldClaudeKey
	FieldCustomURL Field = validation.FieldCustomURL
	FieldCustomKey Field = validation.FieldCustomKey
)

// Fields returns every editable field in form order
func Fields() []Field {
	return []Field{FieldZaiKey, FieldClaudeKey, FieldCustomURL, FieldCustomKey}
}

// ParseField converts a field name to a Field
func ParseField(name string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Fields() {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Engine owns the in-progress edits and the last saved settings. It is safe
// for concurrent use: the interactive surface edits while a background
// apply works on a snapshot.
type Engine struct {
	mu        sync.Mutex
	store     SettingsStore
	validator *validation.Validator
	edits     models.Settings
	saved     models.Settings
}

// New creates an Engine whose edits start from the stored settings
func New(store SettingsStore) *Engine {
	loaded := store.Load()
	return &Engine{
		store:     store,
		validator: validation.NewValidator(),
		edits:     loaded,
		saved:     loaded,
	}
}

// Edits returns the current edit state
func (e *Engine) Edits() models.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.edits
}

// Saved returns the settings as last persisted
func (e *Engine) Saved() models.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saved
}

// SetField changes one field and saves the whole edit state. The edit is
// kept even when saving fails; the store's error is returned so the caller
// can warn.
func (e *Engine) SetField(field Field, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch field {
	case FieldZaiKey:
		e.edits.ZaiKey = value
	case FieldClaudeKey:
		e.edits.ClaudeKey = value
	case FieldCustomURL:
		e.edits.CustomURL = value
	case FieldCustomKey:
		e.edits.CustomKey = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, string(field))
	}

	return e.saveLocked()
}

// Field returns the current edit value of field
func (e *Engine) Field(field Field) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch field {
	case FieldZaiKey:
		return e.edits.ZaiKey
	case FieldClaudeKey:
		return e.edits.ClaudeKey
	case FieldCustomURL:
		return e.edits.CustomURL
	case FieldCustomKey:
		return e.edits.CustomKey
	}
	return ""
}

// Select changes the selected profile. Nothing is written until Apply.
func (e *Engine) Select(kind models.ProfileKind) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown profile %q", kind)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.edits.Selected = kind
	return nil
}

// SetClaudeMode changes the Claude sub-mode. Nothing is written until Apply.
func (e *Engine) SetClaudeMode(mode models.ClaudeMode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown claude mode %q", mode)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.edits.ClaudeMode = mode
	return nil
}

// Save persists the current edit state
func (e *Engine) Save() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saveLocked()
}

func (e *Engine) saveLocked() error {
	if err := e.store.Save(e.edits); err != nil {
		log.Warn().Err(err).Msg("failed to save settings")
		return err
	}
	e.saved = persistedView(e.edits)
	return nil
}

// Profile builds the selected profile from the trimmed edits
func (e *Engine) Profile() models.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return profileOf(e.edits)
}

func profileOf(s models.Settings) models.Profile {
	switch s.Selected {
	case models.ProfileClaude:
		p := models.ClaudeProfile{Mode: s.ClaudeMode}
		if s.ClaudeMode == models.ClaudeAPIKey {
			p.APIKey = strings.TrimSpace(s.ClaudeKey)
		}
		return p
	case models.ProfileCustom:
		return models.CustomProfile{
			BaseURL: strings.TrimSpace(s.CustomURL),
			APIKey:  strings.TrimSpace(s.CustomKey),
		}
	default:
		return models.ZaiProfile{APIKey: strings.TrimSpace(s.ZaiKey)}
	}
}

// Validate checks that p carries every field it needs
func (e *Engine) Validate(p models.Profile) error {
	return e.validator.ValidateProfile(p)
}

// ToEnvOps returns the environment changes that select p. Values are
// trimmed; the result depends only on p.
func ToEnvOps(p models.Profile) []envstore.Op {
	switch p := p.(type) {
	case models.ZaiProfile:
		return []envstore.Op{
			envstore.SetOp(envstore.AuthTokenVar, strings.TrimSpace(p.APIKey)),
			envstore.SetOp(envstore.BaseURLVar, providers.ZaiBaseURL),
		}
	case models.CustomProfile:
		return []envstore.Op{
			envstore.SetOp(envstore.AuthTokenVar, strings.TrimSpace(p.APIKey)),
			envstore.SetOp(envstore.BaseURLVar, strings.TrimSpace(p.BaseURL)),
		}
	case models.ClaudeProfile:
		if p.Mode == models.ClaudeAPIKey {
			return []envstore.Op{
				envstore.SetOp(envstore.AuthTokenVar, strings.TrimSpace(p.APIKey)),
				envstore.UnsetOp(envstore.BaseURLVar),
			}
		}
		return []envstore.Op{
			envstore.UnsetOp(envstore.AuthTokenVar),
			envstore.UnsetOp(envstore.BaseURLVar),
		}
	}
	return nil
}

// Prefill copies credentials already present in the environment into empty
// edit fields. Non-empty fields are never touched and nothing is saved.
// It reports whether any field changed.
func (e *Engine) Prefill(snap models.EnvSnapshot) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	fill := func(dst *string, value string) bool {
		if value == "" || strings.TrimSpace(*dst) != "" {
			return false
		}
		*dst = value
		return true
	}

	changed := false
	switch {
	case snap.BaseURL != "" && strings.Contains(snap.BaseURL, "z.ai"):
		changed = fill(&e.edits.ZaiKey, snap.AuthToken)
	case snap.BaseURL != "" && snap.AuthToken != "":
		urlChanged := fill(&e.edits.CustomURL, snap.BaseURL)
		keyChanged := fill(&e.edits.CustomKey, snap.AuthToken)
		changed = urlChanged || keyChanged
	case snap.AuthToken != "":
		changed = fill(&e.edits.ClaudeKey, snap.AuthToken)
	}
	return changed
}

// persistedView is what Load returns after Save(s)
func persistedView(s models.Settings) models.Settings {
	out := models.Settings{
		ZaiKey:     strings.TrimSpace(s.ZaiKey),
		ClaudeKey:  strings.TrimSpace(s.ClaudeKey),
		CustomURL:  strings.TrimSpace(s.CustomURL),
		CustomKey:  strings.TrimSpace(s.CustomKey),
		ClaudeMode: s.ClaudeMode,
		Selected:   s.Selected,
	}
	out.Normalize()
	return out
}
