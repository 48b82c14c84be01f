package envstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	gosync "sync"

	"ezswitch/config/storage"
	"ezswitch/config/sync"
)

// ClaudeSettingsStore keeps variables in the "env" block of Claude Code's
// settings.json. Only the touched keys change; a backup of the previous
// file is kept on every write.
type ClaudeSettingsStore struct {
	path string
	mu   gosync.Mutex
}

// DefaultClaudeSettingsPath returns ~/.claude/settings.json
func DefaultClaudeSettingsPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".claude", "settings.json"), nil
}

// NewClaudeSettingsStore creates a store editing the settings file at path
func NewClaudeSettingsStore(path string) *ClaudeSettingsStore {
	return &ClaudeSettingsStore{path: path}
}

func (s *ClaudeSettingsStore) Name() string { return "claude-settings" }

// Path returns the settings file location
func (s *ClaudeSettingsStore) Path() string { return s.path }

func (s *ClaudeSettingsStore) Get(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := s.read()
	if err != nil {
		return "", false, &EnvError{Kind: OpFailed, Var: name, Err: err}
	}
	value, ok := sync.ReadEnvField(content, name)
	if !ok || value == "" {
		return "", false, nil
	}
	return value, true, nil
}

func (s *ClaudeSettingsStore) Set(ctx context.Context, name, value string) error {
	return s.update(ctx, name, sync.EnvUpdate{Set: map[string]string{name: value}})
}

func (s *ClaudeSettingsStore) Unset(ctx context.Context, name string) error {
	return s.update(ctx, name, sync.EnvUpdate{Unset: []string{name}})
}

func (s *ClaudeSettingsStore) update(ctx context.Context, name string, update sync.EnvUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := s.read()
	if err != nil {
		return &EnvError{Kind: OpFailed, Var: name, Err: err}
	}

	updated, err := sync.UpdateEnvField(content, update)
	if err != nil {
		return &EnvError{Kind: OpFailed, Var: name, Err: err}
	}
	if updated == content {
		return nil
	}

	if err := storage.AtomicFileUpdate(s.path, updated, true); err != nil {
		return &EnvError{Kind: OpFailed, Var: name, Err: err}
	}
	return nil
}

// Restore puts back the most recent backup taken before a write
func (s *ClaudeSettingsStore) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storage.NewBackupManager(storage.DefaultBackupRetention).RestoreFromLatestBackup(s.path)
}

func (s *ClaudeSettingsStore) read() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "{}", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	return string(data), nil
}
