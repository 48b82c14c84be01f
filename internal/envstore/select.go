package envstore

import (
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Backend names accepted by New
const (
	BackendPowerShell     = "powershell"
	BackendRegistry       = "registry"
	BackendDotenv         = "dotenv"
	BackendClaudeSettings = "claude-settings"
	BackendMemory         = "memory"
)

// Options configures backend construction
type Options struct {
	// ConfigDir holds the dotenv file
	ConfigDir string
	// ClaudeSettingsPath overrides ~/.claude/settings.json
	ClaudeSettingsPath string
}

// Backends lists every backend name
func Backends() []string {
	names := []string{BackendPowerShell, BackendRegistry, BackendDotenv, BackendClaudeSettings, BackendMemory}
	sort.Strings(names)
	return names
}

// DefaultBackend returns the backend used when none is configured
func DefaultBackend() string {
	if runtime.GOOS == "windows" {
		return BackendPowerShell
	}
	return BackendDotenv
}

// New builds the named backend. An empty name selects DefaultBackend.
func New(name string, opts Options) (Store, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultBackend()
	}

	switch name {
	case BackendPowerShell:
		return NewPowerShellStore(), nil
	case BackendRegistry:
		store, err := NewRegistryStore()
		if err != nil {
			return nil, err
		}
		return store, nil
	case BackendDotenv:
		if opts.ConfigDir == "" {
			return nil, fmt.Errorf("dotenv backend needs a config directory")
		}
		return NewDotenvStore(filepath.Join(opts.ConfigDir, DotenvFileName)), nil
	case BackendClaudeSettings:
		path := opts.ClaudeSettingsPath
		if path == "" {
			var err error
			if path, err = DefaultClaudeSettingsPath(); err != nil {
				return nil, err
			}
		}
		return NewClaudeSettingsStore(path), nil
	case BackendMemory:
		return NewMemoryStore(nil), nil
	}
	return nil, fmt.Errorf("unknown backend %q (available: %s)", name, strings.Join(Backends(), ", "))
}
