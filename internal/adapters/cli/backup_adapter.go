package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/pnpimport/internal/ports/primary"
)

// BackupAdapter is a thin adapter that translates CLI operations to
// BackupService calls.
type BackupAdapter struct {
	service primary.BackupService
	out     io.Writer
}

// NewBackupAdapter creates a new BackupAdapter with the given service.
func NewBackupAdapter(service primary.BackupService, out io.Writer) *BackupAdapter {
	return &BackupAdapter{
		service: service,
		out:     out,
	}
}

// Create takes a fresh snapshot.
func (a *BackupAdapter) Create(ctx context.Context, description string) error {
	manifest, err := a.service.Create(ctx, description)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s Created backup %s (%d files)\n",
		color.New(color.FgGreen).Sprint("✓"), manifest.Timestamp, len(manifest.Files))
	return nil
}

// List prints all snapshots, newest first.
func (a *BackupAdapter) List(ctx context.Context) error {
	manifests, err := a.service.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(manifests) == 0 {
		fmt.Fprintln(a.out, "No backups found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-17s %-6s %s\n", "TIMESTAMP", "FILES", "DESCRIPTION")
	for _, m := range manifests {
		fmt.Fprintf(a.out, "%-17s %-6d %s\n", m.Timestamp, len(m.Files), m.Description)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Restore brings back a snapshot.
func (a *BackupAdapter) Restore(ctx context.Context, timestamp string) error {
	if err := a.service.Restore(ctx, timestamp); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s Restored backup %s\n", color.New(color.FgGreen).Sprint("✓"), timestamp)
	return nil
}

// Verify checks a snapshot's integrity.
func (a *BackupAdapter) Verify(ctx context.Context, timestamp string) error {
	if err := a.service.Verify(ctx, timestamp); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s Backup %s verified\n", color.New(color.FgGreen).Sprint("✓"), timestamp)
	return nil
}

// Prune removes old snapshots.
func (a *BackupAdapter) Prune(ctx context.Context, keep int) error {
	deleted, err := a.service.Prune(ctx, keep)
	if err != nil {
		return err
	}
	if deleted == 0 {
		fmt.Fprintln(a.out, "Nothing to prune")
		return nil
	}
	fmt.Fprintf(a.out, "%s Deleted %d old backups, kept %d\n",
		color.New(color.FgGreen).Sprint("✓"), deleted, keep)
	return nil
}
