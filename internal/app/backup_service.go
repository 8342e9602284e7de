package app

import (
	"context"
	"fmt"

	"github.com/example/pnpimport/internal/models"
	"github.com/example/pnpimport/internal/ports/secondary"
)

// BackupServiceImpl implements the BackupService interface.
type BackupServiceImpl struct {
	backups secondary.BackupStore
	locker  secondary.DirLocker
}

// NewBackupService creates a new BackupService with injected dependencies.
func NewBackupService(backups secondary.BackupStore, locker secondary.DirLocker) *BackupServiceImpl {
	return &BackupServiceImpl{
		backups: backups,
		locker:  locker,
	}
}

// Create captures a snapshot of the configuration files. Manual
// snapshots are always fresh, never folded into a session's pending
// snapshot.
func (s *BackupServiceImpl) Create(ctx context.Context, description string) (*models.BackupManifest, error) {
	if description == "" {
		description = "manual backup"
	}
	manifest, err := s.backups.Snapshot(description)
	if err != nil {
		return nil, fmt.Errorf("failed to create backup: %w", err)
	}
	s.backups.CommitSucceeded()
	return manifest, nil
}

// List returns all snapshots, newest first.
func (s *BackupServiceImpl) List(ctx context.Context) ([]*models.BackupManifest, error) {
	return s.backups.List()
}

// Restore brings back a snapshot's files. The directory lock is held so
// a concurrent import session cannot interleave a commit.
func (s *BackupServiceImpl) Restore(ctx context.Context, timestamp string) error {
	if err := s.locker.Acquire(); err != nil {
		return err
	}
	defer s.locker.Release()

	if err := s.backups.Restore(timestamp); err != nil {
		return fmt.Errorf("failed to restore backup %s: %w", timestamp, err)
	}
	return nil
}

// Verify checks a snapshot's files against its manifest checksums.
func (s *BackupServiceImpl) Verify(ctx context.Context, timestamp string) error {
	return s.backups.Verify(timestamp)
}

// Prune removes all but the newest keep snapshots.
func (s *BackupServiceImpl) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, models.Validationf("keep must be non-negative, got %d", keep)
	}
	return s.backups.Prune(keep)
}
