package openpnp

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/pnpimport/internal/models"
)

func TestDirLockAcquireRelease(t *testing.T) {
	dir := t.TempDir()
	lock := NewDirLock(dir, "sess-a")

	if err := lock.Acquire(); err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, lockFileName)); err != nil {
		t.Errorf("lock file missing after acquire: %v", err)
	}

	// Re-acquiring within the same session is a no-op.
	if err := lock.Acquire(); err != nil {
		t.Errorf("re-Acquire() error = %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, lockFileName)); !os.IsNotExist(err) {
		t.Error("lock file still present after release")
	}

	// Releasing again is a no-op.
	if err := lock.Release(); err != nil {
		t.Errorf("double Release() error = %v", err)
	}
}

func TestDirLockContentionFailsFast(t *testing.T) {
	dir := t.TempDir()

	first := NewDirLock(dir, "sess-a")
	if err := first.Acquire(); err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	defer first.Release()

	second := NewDirLock(dir, "sess-b")
	err := second.Acquire()

	var lerr *models.LockedError
	if !errors.As(err, &lerr) {
		t.Fatalf("second Acquire() error = %v, want LockedError", err)
	}
	if lerr.SessionID != "sess-a" {
		t.Errorf("LockedError.SessionID = %q, want sess-a", lerr.SessionID)
	}
}

func TestDirLockBreaksExpiredLock(t *testing.T) {
	dir := t.TempDir()

	// A live PID but an ancient timestamp: past TTL, may be broken.
	stale := lockInfo{
		SessionID:  "sess-old",
		PID:        os.Getpid(),
		AcquiredAt: time.Now().Add(-2 * time.Hour),
	}
	data, _ := json.Marshal(stale)
	if err := os.WriteFile(filepath.Join(dir, lockFileName), data, 0o644); err != nil {
		t.Fatal(err)
	}

	lock := NewDirLock(dir, "sess-new")
	if err := lock.Acquire(); err != nil {
		t.Errorf("Acquire() over expired lock error = %v", err)
	}
	lock.Release()
}

func TestDirLockBreaksDeadProcessLock(t *testing.T) {
	dir := t.TempDir()

	// PID 1 is init and always alive; use an implausible PID instead.
	dead := lockInfo{
		SessionID:  "sess-dead",
		PID:        1 << 30,
		AcquiredAt: time.Now(),
	}
	data, _ := json.Marshal(dead)
	if err := os.WriteFile(filepath.Join(dir, lockFileName), data, 0o644); err != nil {
		t.Fatal(err)
	}

	lock := NewDirLock(dir, "sess-new")
	if err := lock.Acquire(); err != nil {
		t.Errorf("Acquire() over dead-process lock error = %v", err)
	}
	lock.Release()
}

func TestDirLockUnreadableLockFileTreatedAsStale(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, lockFileName), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	lock := NewDirLock(dir, "sess-new")
	if err := lock.Acquire(); err != nil {
		t.Errorf("Acquire() over corrupt lock error = %v", err)
	}
	lock.Release()
}
