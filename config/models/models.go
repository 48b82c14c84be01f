package models

// ProfileKind identifies one of the mutually exclusive credential setups
type ProfileKind string

const (
	ProfileZai    ProfileKind = "zai"
	ProfileClaude ProfileKind = "claude"
	ProfileCustom ProfileKind = "custom"
)

// DefaultProfile is selected when nothing else has been saved
const DefaultProfile = ProfileZai

// ProfileKinds returns all profile kinds in display order
func ProfileKinds() []ProfileKind {
	return []ProfileKind{ProfileZai, ProfileClaude, ProfileCustom}
}

// Valid reports whether k is a known profile kind
func (k ProfileKind) Valid() bool {
	switch k {
	case ProfileZai, ProfileClaude, ProfileCustom:
		return true
	}
	return false
}

// ClaudeMode is the Claude profile sub-state
type ClaudeMode string

const (
	ClaudeSubscription ClaudeMode = "subscription"
	ClaudeAPIKey       ClaudeMode = "api"
)

// DefaultClaudeMode is used when nothing else has been saved
const DefaultClaudeMode = ClaudeSubscription

// Valid reports whether m is a known Claude mode
func (m ClaudeMode) Valid() bool {
	return m == ClaudeSubscription || m == ClaudeAPIKey
}

// Profile is a tagged variant, one of ZaiProfile, ClaudeProfile or CustomProfile
type Profile interface {
	Kind() ProfileKind
}

// ZaiProfile points the assistant at the z.ai endpoint
type ZaiProfile struct {
	APIKey string
}

func (ZaiProfile) Kind() ProfileKind { return ProfileZai }

// ClaudeProfile uses either the Claude subscription or a Claude API key.
// APIKey is only meaningful when Mode is ClaudeAPIKey.
type ClaudeProfile struct {
	Mode   ClaudeMode
	APIKey string
}

func (ClaudeProfile) Kind() ProfileKind { return ProfileClaude }

// CustomProfile points the assistant at an arbitrary base URL
type CustomProfile struct {
	BaseURL string
	APIKey  string
}

func (CustomProfile) Kind() ProfileKind { return ProfileCustom }

// Settings is the persisted settings record. The same shape is used for the
// in-progress edit state. Empty strings mean "absent".
type Settings struct {
	ZaiKey     string      `json:"zai_key,omitempty"`
	ClaudeKey  string      `json:"claude_key,omitempty"`
	CustomURL  string      `json:"custom_url,omitempty"`
	CustomKey  string      `json:"custom_key,omitempty"`
	ClaudeMode ClaudeMode  `json:"claude_mode"`
	Selected   ProfileKind `json:"selected_config"`
}

// DefaultSettings returns the settings used when no file exists
func DefaultSettings() Settings {
	return Settings{
		ClaudeMode: DefaultClaudeMode,
		Selected:   DefaultProfile,
	}
}

// Normalize replaces unknown enum values with their defaults
func (s *Settings) Normalize() {
	if !s.ClaudeMode.Valid() {
		s.ClaudeMode = DefaultClaudeMode
	}
	if !s.Selected.Valid() {
		s.Selected = DefaultProfile
	}
}

// EnvSnapshot is a point-in-time read of the user environment.
// Empty strings mean the variable is unset.
type EnvSnapshot struct {
	AuthToken string
	BaseURL   string
}
