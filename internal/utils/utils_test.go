package utils

import (
	"strings"
	"testing"
)

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		expected string
	}{
		{
			name:     "Empty token",
			token:    "",
			expected: "***",
		},
		{
			name:     "Short token",
			token:    "abc",
			expected: "***",
		},
		{
			name:     "Exactly 12 chars",
			token:    "123456789012",
			expected: "***",
		},
		{
			name:     "13 chars",
			token:    "1234567890123",
			expected: "12345678...0123",
		},
		{
			name:     "Anthropic style key",
			token:    "sk-ant-1234567890",
			expected: "sk-ant-1...7890",
		},
		{
			name:     "Multibyte characters count as one",
			token:    "ключ-ключ-ключ",
			expected: "ключ-клю...ключ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MaskToken(tt.token)
			if got != tt.expected {
				t.Errorf("MaskToken(%q) = %q, want %q", tt.token, got, tt.expected)
			}
		})
	}
}

func TestMaskTokenHidesMiddle(t *testing.T) {
	key := "sk-ant-supersecretkey1234"
	masked := MaskToken(key)

	if strings.Contains(masked, "supersecret") {
		t.Errorf("Masked token contains sensitive middle part: %q", masked)
	}
	if !strings.HasPrefix(masked, "sk-ant-s") {
		t.Errorf("Masked token should start with first 8 chars: %q", masked)
	}
	if !strings.HasSuffix(masked, "1234") {
		t.Errorf("Masked token should end with last 4 chars: %q", masked)
	}
}

func TestShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "'plain'"},
		{"", "''"},
		{"it's", `'it'\''s'`},
		{"$HOME", "'$HOME'"},
	}
	for _, tt := range tests {
		if got := ShellQuote(tt.in); got != tt.want {
			t.Errorf("ShellQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPowerShellQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sk-123", "'sk-123'"},
		{"o'brien", "'o''brien'"},
		{"$(calc)", "'$(calc)'"},
	}
	for _, tt := range tests {
		if got := PowerShellQuote(tt.in); got != tt.want {
			t.Errorf("PowerShellQuote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestValidateURL tests the ValidateURL function with various URL formats
func TestValidateURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected bool
	}{
		{"Valid HTTPS URL", "https://api.example.com", true},
		{"Valid HTTP URL with port", "http://localhost:8080", true},
		{"z.ai endpoint", "https://api.z.ai/api/anthropic", true},
		{"Empty string", "", false},
		{"No scheme", "api.example.com", false},
		{"No host", "https://", false},
		{"Invalid scheme - ftp", "ftp://files.example.com", false},
		{"Malformed URL", "not a url at all", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateURL(tt.url)
			if got != tt.expected {
				t.Errorf("ValidateURL(%q) = %v, want %v", tt.url, got, tt.expected)
			}
		})
	}
}

func TestExtractHost(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://api.z.ai/api/anthropic", "api.z.ai"},
		{"http://localhost:3000", "localhost:3000"},
		{"not a url", ""},
	}
	for _, tt := range tests {
		if got := ExtractHost(tt.url); got != tt.expected {
			t.Errorf("ExtractHost(%q) = %q, want %q", tt.url, got, tt.expected)
		}
	}
}
