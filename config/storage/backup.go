package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// DefaultBackupRetention is the default number of backups to keep
const DefaultBackupRetention = 3

// BackupManager keeps rotating copies of files that ezswitch edits but does
// not own, such as the Claude Code settings file.
type BackupManager struct {
	// MaxBackups is the maximum number of backups to retain
	MaxBackups int

	now func() time.Time
}

// NewBackupManager creates a new BackupManager
func NewBackupManager(maxBackups int) *BackupManager {
	if maxBackups <= 0 {
		maxBackups = DefaultBackupRetention
	}
	return &BackupManager{
		MaxBackups: maxBackups,
		now:        time.Now,
	}
}

// CreateBackup copies filePath to original.backup-YYYYMMDDHHMMSS-PID
func (bm *BackupManager) CreateBackup(filePath string) (string, error) {
	timestamp := bm.now().Format("20060102150405")
	backupPath := fmt.Sprintf("%s.backup-%s-%d", filePath, timestamp, os.Getpid())

	if err := copyFile(filePath, backupPath); err != nil {
		return "", fmt.Errorf("failed to create backup: %w", err)
	}

	return backupPath, nil
}

// ListBackups returns backup files for filePath, oldest first
func (bm *BackupManager) ListBackups(filePath string) ([]string, error) {
	backupFiles, err := filepath.Glob(filePath + ".backup-*")
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	// Names embed a sortable timestamp; fall back to it when mtimes tie.
	sort.SliceStable(backupFiles, func(i, j int) bool {
		iInfo, err1 := os.Stat(backupFiles[i])
		jInfo, err2 := os.Stat(backupFiles[j])
		if err1 != nil || err2 != nil || iInfo.ModTime().Equal(jInfo.ModTime()) {
			return backupFiles[i] < backupFiles[j]
		}
		return iInfo.ModTime().Before(jInfo.ModTime())
	})

	return backupFiles, nil
}

// CleanupOldBackups removes old backup files, retaining only the most recent MaxBackups
func (bm *BackupManager) CleanupOldBackups(filePath string) error {
	backupFiles, err := bm.ListBackups(filePath)
	if err != nil {
		return err
	}

	numToRemove := len(backupFiles) - bm.MaxBackups
	if numToRemove <= 0 {
		return nil
	}

	for _, oldBackup := range backupFiles[:numToRemove] {
		if err := os.Remove(oldBackup); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", oldBackup, err)
		}
	}

	return nil
}

// RestoreFromLatestBackup restores the file from the most recent backup
func (bm *BackupManager) RestoreFromLatestBackup(filePath string) error {
	backupFiles, err := bm.ListBackups(filePath)
	if err != nil {
		return err
	}

	if len(backupFiles) == 0 {
		return fmt.Errorf("no backup files found for %s", filePath)
	}

	latest := backupFiles[len(backupFiles)-1]
	if err := copyFile(latest, filePath); err != nil {
		return fmt.Errorf("failed to restore from backup: %w", err)
	}
	return nil
}

// copyFile copies src to dst, preserving the permission bits of src
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	return os.Chmod(dst, srcInfo.Mode().Perm())
}
