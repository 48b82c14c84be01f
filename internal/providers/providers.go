package providers

import (
	"errors"
	"sort"

	"ezswitch/config/models"
	"ezswitch/config/validation"
)

// ZaiBaseURL is the endpoint written for the z.ai profile
const ZaiBaseURL = "https://api.z.ai/api/anthropic"

// Provider describes one selectable profile kind
type Provider interface {
	// Kind returns the profile kind this provider describes
	Kind() models.ProfileKind
	// Label returns the short display name
	Label() string
	// Description returns a one-line explanation for menus and help
	Description() string
	// DefaultBaseURL returns the base URL the profile writes, or "" when
	// the profile leaves ANTHROPIC_BASE_URL unset or takes it from the user
	DefaultBaseURL() string
	// RequiredFields lists the settings fields the profile needs
	RequiredFields(mode models.ClaudeMode) []string
}

// registry stores all registered providers
var registry = make(map[models.ProfileKind]Provider)

// Register registers a new provider
func Register(provider Provider) {
	registry[provider.Kind()] = provider
}

// Get returns a provider by kind
func Get(kind models.ProfileKind) (Provider, error) {
	provider, ok := registry[kind]
	if !ok {
		return nil, errors.New("unknown profile: " + string(kind))
	}
	return provider, nil
}

// List returns registered providers in display order
func List() []Provider {
	order := make(map[models.ProfileKind]int)
	for i, kind := range models.ProfileKinds() {
		order[kind] = i
	}

	list := make([]Provider, 0, len(registry))
	for _, p := range registry {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		oi, iok := order[list[i].Kind()]
		oj, jok := order[list[j].Kind()]
		if iok != jok {
			return iok
		}
		if oi != oj {
			return oi < oj
		}
		return list[i].Kind() < list[j].Kind()
	})
	return list
}

// ZaiProvider routes requests through z.ai
type ZaiProvider struct{}

func (p *ZaiProvider) Kind() models.ProfileKind { return models.ProfileZai }

func (p *ZaiProvider) Label() string { return "Z.ai" }

func (p *ZaiProvider) Description() string {
	return "GLM models through the z.ai Anthropic-compatible endpoint"
}

func (p *ZaiProvider) DefaultBaseURL() string { return ZaiBaseURL }

func (p *ZaiProvider) RequiredFields(mode models.ClaudeMode) []string {
	return validation.RequiredFields(models.ProfileZai, mode)
}

// ClaudeProvider uses Anthropic directly
type ClaudeProvider struct{}

func (p *ClaudeProvider) Kind() models.ProfileKind { return models.ProfileClaude }

func (p *ClaudeProvider) Label() string { return "Claude" }

func (p *ClaudeProvider) Description() string {
	return "Anthropic directly, with a Claude subscription login or an API key"
}

func (p *ClaudeProvider) DefaultBaseURL() string { return "" }

func (p *ClaudeProvider) RequiredFields(mode models.ClaudeMode) []string {
	return validation.RequiredFields(models.ProfileClaude, mode)
}

// CustomProvider targets any Anthropic-compatible endpoint
type CustomProvider struct{}

func (p *CustomProvider) Kind() models.ProfileKind { return models.ProfileCustom }

func (p *CustomProvider) Label() string { return "Custom" }

func (p *CustomProvider) Description() string {
	return "Any Anthropic-compatible endpoint with its own base URL and key"
}

func (p *CustomProvider) DefaultBaseURL() string { return "" }

func (p *CustomProvider) RequiredFields(mode models.ClaudeMode) []string {
	return validation.RequiredFields(models.ProfileCustom, mode)
}

func init() {
	Register(&ZaiProvider{})
	Register(&ClaudeProvider{})
	Register(&CustomProvider{})
}
