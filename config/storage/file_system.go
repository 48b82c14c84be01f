package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// AtomicWrite writes data to a temporary file next to filePath and renames it
// over filePath, so readers never observe a half-written file.
func AtomicWrite(filePath string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(filePath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmpFile.Name()) // no-op after a successful rename

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temporary file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tmpFile.Name(), perm); err != nil {
		return fmt.Errorf("failed to set permissions on temporary file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), filePath); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// AtomicFileUpdate replaces filePath with newContent, optionally keeping a
// timestamped backup of the previous content.
func AtomicFileUpdate(filePath string, newContent string, createBackup bool) error {
	bm := NewBackupManager(DefaultBackupRetention)
	if createBackup && FileExists(filePath) {
		if _, err := bm.CreateBackup(filePath); err != nil {
			return fmt.Errorf("failed to create backup file: %w", err)
		}
	}

	if err := AtomicWrite(filePath, []byte(newContent), 0600); err != nil {
		return err
	}

	if createBackup {
		// Update already succeeded; stale backups are only clutter.
		_ = bm.CleanupOldBackups(filePath)
	}

	return nil
}

// MigrateLegacy copies the legacy file byte-for-byte to newPath and removes
// the legacy file. The copy is written before the legacy file is touched, so
// an interrupted migration leaves the legacy file for the next attempt.
func MigrateLegacy(oldPath, newPath string) ([]byte, error) {
	data, err := os.ReadFile(oldPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read legacy file: %w", err)
	}

	if err := AtomicWrite(newPath, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write migrated file: %w", err)
	}

	if err := os.Remove(oldPath); err != nil && !os.IsNotExist(err) {
		return data, fmt.Errorf("migrated, but failed to remove legacy file: %w", err)
	}

	return data, nil
}

// ShouldMigrateConfig checks if config migration should be performed
func ShouldMigrateConfig(oldPath, newPath string) bool {
	// Migrate if old config exists and new config doesn't
	return FileExists(oldPath) && !FileExists(newPath)
}
