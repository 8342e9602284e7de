// Package backup snapshots the persisted OpenPnP documents before a
// session's first commit and restores them verbatim on demand. Each
// snapshot is a timestamped directory holding byte copies of the files
// plus a manifest with sha256 checksums.
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/example/pnpimport/internal/models"
)

const manifestFileName = "manifest.json"

// Manager creates, lists, verifies, restores, and prunes snapshots of
// the configuration files. Not safe for concurrent use; the session's
// directory lock serializes restore against commit.
type Manager struct {
	backupDir string
	sourceDir string
	files     []string // filenames under sourceDir to snapshot

	sessionID string
	current   *models.BackupManifest

	// now is replaceable in tests needing deterministic timestamps.
	now func() time.Time
}

// NewManager creates a manager snapshotting the given filenames from
// sourceDir into backupDir.
func NewManager(backupDir, sourceDir, sessionID string, files []string) *Manager {
	return &Manager{
		backupDir: backupDir,
		sourceDir: sourceDir,
		files:     files,
		sessionID: sessionID,
		now:       time.Now,
	}
}

// Snapshot copies the current files into a new timestamped directory
// and records their checksums. Calling it again in the same session
// before a commit succeeds returns the existing snapshot instead of
// overwriting it.
func (m *Manager) Snapshot(description string) (*models.BackupManifest, error) {
	if m.current != nil {
		return m.current, nil
	}

	timestamp := m.now().Format(models.BackupTimestampLayout)
	dir := filepath.Join(m.backupDir, timestamp)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &models.IOError{Op: "create backup dir", Path: dir, Err: err}
	}

	manifest := &models.BackupManifest{
		Timestamp:   timestamp,
		SessionID:   m.sessionID,
		Description: description,
		SourceDir:   m.sourceDir,
		Files:       make(map[string]string),
	}

	for _, name := range m.files {
		src := filepath.Join(m.sourceDir, name)
		if _, err := os.Stat(src); os.IsNotExist(err) {
			// A file the config never had is simply absent from the
			// snapshot; restore will not touch it either.
			continue
		}
		dst := filepath.Join(dir, name)
		sum, err := copyFile(src, dst)
		if err != nil {
			os.RemoveAll(dir)
			return nil, err
		}
		manifest.Files[name] = sum
	}

	if err := writeManifest(dir, manifest); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	m.current = manifest
	return manifest, nil
}

// CommitSucceeded ends the snapshot's idempotency window: the next
// Snapshot call creates a fresh backup.
func (m *Manager) CommitSucceeded() {
	m.current = nil
}

// Restore copies a snapshot's files back over the originals and
// verifies each restored file against the manifest checksum.
func (m *Manager) Restore(timestamp string) error {
	manifest, err := m.Get(timestamp)
	if err != nil {
		return err
	}

	dir := filepath.Join(m.backupDir, timestamp)
	for name, wantSum := range manifest.Files {
		src := filepath.Join(dir, name)
		dst := filepath.Join(m.sourceDir, name)

		// Verify the backup copy before overwriting anything with it.
		sum, err := fileChecksum(src)
		if err != nil {
			return err
		}
		if sum != wantSum {
			return &models.IOError{Op: "verify", Path: src,
				Err: fmt.Errorf("checksum mismatch: backup is corrupt")}
		}

		gotSum, err := copyFile(src, dst)
		if err != nil {
			return err
		}
		if gotSum != wantSum {
			return &models.IOError{Op: "restore", Path: dst,
				Err: fmt.Errorf("checksum mismatch after restore")}
		}
	}
	return nil
}

// Get loads one snapshot's manifest by timestamp.
func (m *Manager) Get(timestamp string) (*models.BackupManifest, error) {
	path := filepath.Join(m.backupDir, timestamp, manifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.IOError{Op: "read manifest", Path: path, Err: err}
	}
	var manifest models.BackupManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, &models.ParseError{Source: path, Err: err}
	}
	return &manifest, nil
}

// List returns all snapshots, newest first. Directories without a
// readable manifest are skipped.
func (m *Manager) List() ([]*models.BackupManifest, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, &models.IOError{Op: "read backup dir", Path: m.backupDir, Err: err}
	}

	var manifests []*models.BackupManifest
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		manifest, err := m.Get(e.Name())
		if err != nil {
			continue
		}
		manifests = append(manifests, manifest)
	}

	sort.Slice(manifests, func(i, j int) bool {
		return manifests[i].Timestamp > manifests[j].Timestamp
	})
	return manifests, nil
}

// Verify checks every file in a snapshot against its manifest checksum.
func (m *Manager) Verify(timestamp string) error {
	manifest, err := m.Get(timestamp)
	if err != nil {
		return err
	}
	dir := filepath.Join(m.backupDir, timestamp)
	for name, wantSum := range manifest.Files {
		sum, err := fileChecksum(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if sum != wantSum {
			return fmt.Errorf("backup %s: %s checksum mismatch", timestamp, name)
		}
	}
	return nil
}

// Delete removes one snapshot.
func (m *Manager) Delete(timestamp string) error {
	dir := filepath.Join(m.backupDir, timestamp)
	if err := os.RemoveAll(dir); err != nil {
		return &models.IOError{Op: "delete backup", Path: dir, Err: err}
	}
	return nil
}

// Prune removes all but the newest keep snapshots and returns how many
// were deleted.
func (m *Manager) Prune(keep int) (int, error) {
	manifests, err := m.List()
	if err != nil {
		return 0, err
	}
	if len(manifests) <= keep {
		return 0, nil
	}

	deleted := 0
	for _, manifest := range manifests[keep:] {
		if err := m.Delete(manifest.Timestamp); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func writeManifest(dir string, manifest *models.BackupManifest) error {
	path := filepath.Join(dir, manifestFileName)
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &models.IOError{Op: "write manifest", Path: path, Err: err}
	}
	return nil
}

// copyFile copies src to dst byte-for-byte and returns the sha256 of
// the copied content.
func copyFile(src, dst string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", &models.IOError{Op: "open", Path: src, Err: err}
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", &models.IOError{Op: "create", Path: dst, Err: err}
	}

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(out, hasher), in); err != nil {
		out.Close()
		return "", &models.IOError{Op: "copy", Path: dst, Err: err}
	}
	if err := out.Close(); err != nil {
		return "", &models.IOError{Op: "close", Path: dst, Err: err}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// fileChecksum returns the sha256 hex digest of a file's content.
func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", &models.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", &models.IOError{Op: "hash", Path: path, Err: err}
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
