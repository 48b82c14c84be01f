// Package logging configures the process-wide zerolog logger.
//
// ezswitch never logs to the terminal: the TUI owns it and CLI output is
// meant for humans. Log lines go to a file in the config directory instead.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FileName is the log file created inside the config directory
const FileName = "ezswitch.log"

// ParseLevel maps a level name to a zerolog level, defaulting to info
func ParseLevel(name string) zerolog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return zerolog.InfoLevel
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// Setup points the global logger at <dir>/ezswitch.log. The returned closer
// must be closed on exit. When the file cannot be opened logging is disabled
// and the error is returned so the caller can mention it once.
func Setup(dir string, level string) (io.Closer, error) {
	zerolog.SetGlobalLevel(ParseLevel(level))

	if err := os.MkdirAll(dir, 0700); err != nil {
		log.Logger = zerolog.Nop()
		return io.NopCloser(nil), fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		log.Logger = zerolog.Nop()
		return io.NopCloser(nil), fmt.Errorf("failed to open log file: %w", err)
	}

	log.Logger = New(f)
	return f, nil
}

// New builds a logger writing JSON lines to w
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Str("app", "ezswitch").Logger()
}
