package engine

import (
	"fmt"
	"strings"

	"ezswitch/config/models"
	"ezswitch/internal/utils"
)

// StatusKind says which setup the user environment currently selects
type StatusKind int

const (
	UsingSubscription StatusKind = iota
	UsingZai
	UsingCustom
	UsingAPIKey
)

func (k StatusKind) String() string {
	switch k {
	case UsingSubscription:
		return "subscription"
	case UsingZai:
		return "zai"
	case UsingCustom:
		return "custom"
	case UsingAPIKey:
		return "api-key"
	}
	return fmt.Sprintf("StatusKind(%d)", int(k))
}

// Status is the classified environment. MaskedToken is empty when no token
// is set; BaseURL is only filled for UsingCustom.
type Status struct {
	Kind        StatusKind
	BaseURL     string
	MaskedToken string
}

// Headline is the one-line summary of the status
func (s Status) Headline() string {
	switch s.Kind {
	case UsingZai:
		return "Currently using z.ai API"
	case UsingCustom:
		return "Currently using Custom Base URL"
	case UsingAPIKey:
		return "Currently using Claude API Key"
	default:
		return "Currently using Claude Subscription"
	}
}

// Details returns the lines shown under the headline
func (s Status) Details() []string {
	switch s.Kind {
	case UsingZai:
		if s.MaskedToken == "" {
			return nil
		}
		return []string{"API Key: " + s.MaskedToken}
	case UsingCustom:
		return []string{"Base URL: " + s.BaseURL, "API Key: " + s.MaskedToken}
	case UsingAPIKey:
		return []string{"API Key: " + s.MaskedToken}
	default:
		return []string{"(No environment variables set)"}
	}
}

func (s Status) String() string {
	return strings.Join(append([]string{s.Headline()}, s.Details()...), "\n")
}

// ClassifyStatus maps an environment snapshot to a Status. The first
// matching rule wins: a z.ai base URL, then base URL with token, then a
// token alone, else the subscription.
func ClassifyStatus(snap models.EnvSnapshot) Status {
	masked := ""
	if snap.AuthToken != "" {
		masked = utils.MaskToken(snap.AuthToken)
	}

	switch {
	case snap.BaseURL != "" && strings.Contains(snap.BaseURL, "z.ai"):
		return Status{Kind: UsingZai, MaskedToken: masked}
	case snap.BaseURL != "" && snap.AuthToken != "":
		return Status{Kind: UsingCustom, BaseURL: snap.BaseURL, MaskedToken: masked}
	case snap.AuthToken != "":
		return Status{Kind: UsingAPIKey, MaskedToken: masked}
	default:
		return Status{Kind: UsingSubscription}
	}
}
