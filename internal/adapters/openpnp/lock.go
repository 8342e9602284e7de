package openpnp

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/example/pnpimport/internal/models"
)

const lockFileName = ".pnpimport.lock"

// DefaultLockTTL is how long a lock may live before another session is
// allowed to break it as stale.
const DefaultLockTTL = time.Hour

// lockInfo is the JSON body of the lock file, kept for visibility and
// stale-lock detection.
type lockInfo struct {
	SessionID  string    `json:"session_id"`
	PID        int       `json:"pid"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// DirLock is an advisory exclusive lock on the OpenPnP configuration
// directory, held for the duration of a commit or restore. A concurrent
// session fails fast with LockedError instead of blocking. Locks from
// crashed processes are broken when the owning PID is dead or the TTL
// has expired.
type DirLock struct {
	dir       string
	sessionID string
	ttl       time.Duration
	held      bool
}

// NewDirLock creates a lock for the given configuration directory.
func NewDirLock(dir, sessionID string) *DirLock {
	return &DirLock{dir: dir, sessionID: sessionID, ttl: DefaultLockTTL}
}

func (l *DirLock) path() string {
	return filepath.Join(l.dir, lockFileName)
}

// Acquire takes the lock or fails fast. Re-acquiring a lock this session
// already holds is a no-op.
func (l *DirLock) Acquire() error {
	if l.held {
		return nil
	}

	for attempt := 0; attempt < 2; attempt++ {
		err := l.tryCreate()
		if err == nil {
			l.held = true
			return nil
		}
		if !errors.Is(err, os.ErrExist) {
			return &models.IOError{Op: "lock", Path: l.path(), Err: err}
		}

		info, readErr := l.readInfo()
		if readErr != nil {
			// Unreadable lock file: treat as stale and remove.
			os.Remove(l.path())
			continue
		}
		if l.stale(info) {
			os.Remove(l.path())
			continue
		}
		return &models.LockedError{Path: l.path(), SessionID: info.SessionID, PID: info.PID}
	}

	return &models.LockedError{Path: l.path()}
}

// Release drops the lock. Releasing an unheld lock is a no-op.
func (l *DirLock) Release() error {
	if !l.held {
		return nil
	}
	l.held = false
	if err := os.Remove(l.path()); err != nil && !os.IsNotExist(err) {
		return &models.IOError{Op: "unlock", Path: l.path(), Err: err}
	}
	return nil
}

// tryCreate atomically creates the lock file, failing if it exists.
func (l *DirLock) tryCreate() error {
	f, err := os.OpenFile(l.path(), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	info := lockInfo{
		SessionID:  l.sessionID,
		PID:        os.Getpid(),
		AcquiredAt: time.Now(),
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(info); err != nil {
		os.Remove(l.path())
		return fmt.Errorf("failed to write lock info: %w", err)
	}
	return nil
}

func (l *DirLock) readInfo() (*lockInfo, error) {
	data, err := os.ReadFile(l.path())
	if err != nil {
		return nil, err
	}
	var info lockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// stale reports whether a lock belongs to a dead process or has outlived
// its TTL.
func (l *DirLock) stale(info *lockInfo) bool {
	if time.Since(info.AcquiredAt) > l.ttl {
		return true
	}
	return !processAlive(info.PID)
}

// processAlive probes a PID with signal 0.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
