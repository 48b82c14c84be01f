package validation

import (
	"fmt"
	"strings"

	"ezswitch/config/models"
)

// Field names as they appear in the settings file
const (
	FieldZaiKey    = "zai_key"
	FieldClaudeKey = "claude_key"
	FieldCustomURL = "custom_url"
	FieldCustomKey = "custom_key"
)

// ValidationError reports the first required field that is missing
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// MissingField builds a ValidationError for field
func MissingField(field string) *ValidationError {
	return &ValidationError{Field: field}
}

// Validator validates profiles before they are applied
type Validator struct {
}

// NewValidator creates a new Validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateProfile checks that every field the profile needs is present.
// Fields are checked in a fixed order so the same input always reports the
// same field.
func (v *Validator) ValidateProfile(p models.Profile) error {
	switch p := p.(type) {
	case models.ZaiProfile:
		if blank(p.APIKey) {
			return MissingField(FieldZaiKey)
		}
	case models.CustomProfile:
		if blank(p.BaseURL) {
			return MissingField(FieldCustomURL)
		}
		if blank(p.APIKey) {
			return MissingField(FieldCustomKey)
		}
	case models.ClaudeProfile:
		switch p.Mode {
		case models.ClaudeSubscription:
		case models.ClaudeAPIKey:
			if blank(p.APIKey) {
				return MissingField(FieldClaudeKey)
			}
		default:
			return fmt.Errorf("unknown claude mode: %q", p.Mode)
		}
	case nil:
		return fmt.Errorf("no profile selected")
	default:
		return fmt.Errorf("unknown profile type: %T", p)
	}
	return nil
}

// RequiredFields lists the fields a profile needs, in validation order
func RequiredFields(kind models.ProfileKind, mode models.ClaudeMode) []string {
	switch kind {
	case models.ProfileZai:
		return []string{FieldZaiKey}
	case models.ProfileCustom:
		return []string{FieldCustomURL, FieldCustomKey}
	case models.ProfileClaude:
		if mode == models.ClaudeAPIKey {
			return []string{FieldClaudeKey}
		}
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
