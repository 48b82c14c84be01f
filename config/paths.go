package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// DirName is the per-user config directory under the home directory
	DirName = ".claude_ez_switch"
	// FileName is the settings file inside the config directory
	FileName = "config.json"
	// LegacyFileName is the single dotfile used by early releases
	LegacyFileName = ".claude_code_ez_switch_config.json"
)

// Paths locates the settings file and its legacy predecessor
type Paths struct {
	Dir        string
	File       string
	LegacyFile string
}

// DefaultPaths resolves paths under the user's home directory. A non-empty
// dir overrides the config directory; the legacy file always lives in home.
func DefaultPaths(dir string) (Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("failed to get user home directory: %w", err)
	}
	if dir == "" {
		dir = filepath.Join(homeDir, DirName)
	}
	return PathsIn(dir, filepath.Join(homeDir, LegacyFileName)), nil
}

// PathsIn builds Paths for an explicit config directory and legacy file
func PathsIn(dir, legacyFile string) Paths {
	return Paths{
		Dir:        dir,
		File:       filepath.Join(dir, FileName),
		LegacyFile: legacyFile,
	}
}

// LockFile is the sidecar file used for cross-process locking
func (p Paths) LockFile() string {
	return p.File + ".lock"
}
