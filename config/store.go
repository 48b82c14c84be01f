package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"ezswitch/config/models"
	"ezswitch/config/storage"

	"github.com/rs/zerolog/log"
)

// Store owns the settings file on disk
type Store struct {
	paths Paths
	mu    sync.Mutex // Mutex to protect concurrent access within the process
}

// NewStore creates a Store for the given paths
func NewStore(paths Paths) *Store {
	return &Store{paths: paths}
}

// Paths returns the file locations used by the store
func (s *Store) Paths() Paths {
	return s.paths
}

// Load returns the saved settings. It never fails: a missing or unreadable
// file yields defaults. When only the legacy file exists it is moved to the
// current location first.
func (s *Store) Load() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	err := s.withLock(false, func() error {
		var readErr error
		data, readErr = os.ReadFile(s.paths.File)
		return readErr
	})
	switch {
	case err == nil:
		settings, decodeErr := decodeSettings(data)
		if decodeErr != nil {
			log.Debug().Err(&IoError{Op: IoParse, Path: s.paths.File, Err: decodeErr}).Msg("settings file unreadable, using defaults")
			return models.DefaultSettings()
		}
		return settings
	case !errors.Is(err, os.ErrNotExist):
		log.Debug().Err(&IoError{Op: IoRead, Path: s.paths.File, Err: err}).Msg("settings file unreadable, using defaults")
		return models.DefaultSettings()
	}

	return s.loadLegacy()
}

// loadLegacy migrates the legacy dotfile if present. The caller holds s.mu.
func (s *Store) loadLegacy() models.Settings {
	if s.paths.LegacyFile == "" || !storage.FileExists(s.paths.LegacyFile) {
		return models.DefaultSettings()
	}

	data, err := os.ReadFile(s.paths.LegacyFile)
	if err != nil {
		log.Debug().Err(&IoError{Op: IoRead, Path: s.paths.LegacyFile, Err: err}).Msg("legacy settings unreadable")
		return models.DefaultSettings()
	}

	settings, err := decodeSettings(data)
	if err != nil {
		// Leave the legacy file alone; there is nothing worth migrating.
		log.Debug().Err(&IoError{Op: IoParse, Path: s.paths.LegacyFile, Err: err}).Msg("legacy settings malformed")
		return models.DefaultSettings()
	}

	err = s.withLock(true, func() error {
		if !storage.ShouldMigrateConfig(s.paths.LegacyFile, s.paths.File) {
			return nil
		}
		_, migrateErr := storage.MigrateLegacy(s.paths.LegacyFile, s.paths.File)
		return migrateErr
	})
	if err != nil {
		log.Warn().Err(err).Str("legacy", s.paths.LegacyFile).Msg("legacy settings migration incomplete")
	} else {
		log.Info().Str("from", s.paths.LegacyFile).Str("to", s.paths.File).Msg("migrated legacy settings")
	}

	return settings
}

// Save writes settings, keeping only non-empty string fields
func (s *Store) Save(settings models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := encodeSettings(settings)
	if err != nil {
		return &IoError{Op: IoWrite, Path: s.paths.File, Err: err}
	}

	err = s.withLock(true, func() error {
		return storage.AtomicWrite(s.paths.File, data, 0600)
	})
	if err != nil {
		return &IoError{Op: IoWrite, Path: s.paths.File, Err: err}
	}
	return nil
}

// withLock runs fn while holding the sidecar lock file. Failing to take the
// lock is only fatal for writers.
func (s *Store) withLock(exclusive bool, fn func() error) error {
	if err := os.MkdirAll(s.paths.Dir, 0700); err != nil {
		if exclusive {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		return fn()
	}

	lock, err := os.OpenFile(s.paths.LockFile(), os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		if exclusive {
			return fmt.Errorf("failed to open lock file: %w", err)
		}
		return fn()
	}
	defer lock.Close()

	lockFn := lockFileShared
	if exclusive {
		lockFn = lockFileExclusive
	}
	if err := lockFn(lock); err != nil {
		return fmt.Errorf("failed to lock settings file: %w", err)
	}
	defer func() {
		if err := unlockFile(lock); err != nil {
			log.Warn().Err(err).Msg("failed to unlock settings file")
		}
	}()

	return fn()
}

func decodeSettings(data []byte) (models.Settings, error) {
	settings := models.DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return models.DefaultSettings(), err
	}
	settings.Normalize()
	return settings, nil
}

func encodeSettings(settings models.Settings) ([]byte, error) {
	out := models.Settings{
		ZaiKey:     strings.TrimSpace(settings.ZaiKey),
		ClaudeKey:  strings.TrimSpace(settings.ClaudeKey),
		CustomURL:  strings.TrimSpace(settings.CustomURL),
		CustomKey:  strings.TrimSpace(settings.CustomKey),
		ClaudeMode: settings.ClaudeMode,
		Selected:   settings.Selected,
	}
	out.Normalize()
	return json.MarshalIndent(out, "", "  ")
}
