package secondary

import "github.com/example/pnpimport/internal/models"

// BackupStore defines the secondary port for configuration snapshots.
type BackupStore interface {
	// Snapshot captures the current configuration files. Repeated
	// calls within one session return the existing snapshot until
	// CommitSucceeded is called.
	Snapshot(description string) (*models.BackupManifest, error)

	// CommitSucceeded marks the current snapshot as consumed so the
	// next Snapshot call creates a fresh one.
	CommitSucceeded()

	// Restore copies a snapshot's files back over the originals after
	// verifying their checksums.
	Restore(timestamp string) error

	// Get loads one snapshot's manifest.
	Get(timestamp string) (*models.BackupManifest, error)

	// List returns all snapshots, newest first.
	List() ([]*models.BackupManifest, error)

	// Verify checks a snapshot's files against its manifest.
	Verify(timestamp string) error

	// Delete removes one snapshot.
	Delete(timestamp string) error

	// Prune removes all but the newest keep snapshots.
	Prune(keep int) (int, error)
}
