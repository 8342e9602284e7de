package primary

import (
	"context"

	"github.com/example/pnpimport/internal/models"
)

// BackupService defines the primary port for snapshot management.
type BackupService interface {
	// Create captures a snapshot of the configuration files.
	Create(ctx context.Context, description string) (*models.BackupManifest, error)

	// List returns all snapshots, newest first.
	List(ctx context.Context) ([]*models.BackupManifest, error)

	// Restore brings back a snapshot's files, taking the directory
	// lock for the duration.
	Restore(ctx context.Context, timestamp string) error

	// Verify checks a snapshot's files against its manifest checksums.
	Verify(ctx context.Context, timestamp string) error

	// Prune removes all but the newest keep snapshots.
	Prune(ctx context.Context, keep int) (int, error)
}
