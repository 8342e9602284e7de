package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/pnpimport/internal/core/geometry"
	"github.com/example/pnpimport/internal/models"
	"github.com/example/pnpimport/internal/ports/primary"
	"github.com/example/pnpimport/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// mockConfigStore implements secondary.ConfigStore for testing.
type mockConfigStore struct {
	packages map[string]*models.Package
	parts    map[string]*models.Part

	stagedPackages []*models.Package
	stagedParts    []*models.Part

	commitErr      error
	commits        int
	discards       int
	stagePkgErr    error
	stagePartErr   error
	committedPkgs  int
	committedParts int
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{
		packages: make(map[string]*models.Package),
		parts:    make(map[string]*models.Part),
	}
}

func (m *mockConfigStore) GetPackage(id string) (*models.Package, bool) {
	pkg, ok := m.packages[id]
	return pkg, ok
}

func (m *mockConfigStore) FindPackageID(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	for id := range m.packages {
		if strings.ToLower(id) == key {
			return id, true
		}
	}
	return "", false
}

func (m *mockConfigStore) GetPart(id string) (*models.Part, bool) {
	part, ok := m.parts[id]
	return part, ok
}

func (m *mockConfigStore) StagePackage(pkg *models.Package) error {
	if m.stagePkgErr != nil {
		return m.stagePkgErr
	}
	m.stagedPackages = append(m.stagedPackages, pkg)
	return nil
}

func (m *mockConfigStore) StagePart(part *models.Part) error {
	if m.stagePartErr != nil {
		return m.stagePartErr
	}
	m.stagedParts = append(m.stagedParts, part)
	return nil
}

func (m *mockConfigStore) StagedCounts() (int, int) {
	return len(m.stagedPackages), len(m.stagedParts)
}

func (m *mockConfigStore) DiscardStaged() {
	m.discards++
	m.stagedPackages = nil
	m.stagedParts = nil
}

func (m *mockConfigStore) Commit() (*models.CommitResult, error) {
	if m.commitErr != nil {
		return nil, m.commitErr
	}
	m.commits++
	m.committedPkgs = len(m.stagedPackages)
	m.committedParts = len(m.stagedParts)
	result := &models.CommitResult{
		PackagesWritten: len(m.stagedPackages),
		PartsWritten:    len(m.stagedParts),
	}
	for _, pkg := range m.stagedPackages {
		m.packages[pkg.ID] = pkg
	}
	for _, part := range m.stagedParts {
		m.parts[part.ID] = part
	}
	m.stagedPackages = nil
	m.stagedParts = nil
	return result, nil
}

func (m *mockConfigStore) PackageIDs() []string {
	ids := make([]string, 0, len(m.packages))
	for id := range m.packages {
		ids = append(ids, id)
	}
	return ids
}

func (m *mockConfigStore) PartIDs() []string {
	ids := make([]string, 0, len(m.parts))
	for id := range m.parts {
		ids = append(ids, id)
	}
	return ids
}

func (m *mockConfigStore) PackageCount() int { return len(m.packages) }
func (m *mockConfigStore) PartCount() int    { return len(m.parts) }

// mockVendorFetcher implements secondary.VendorFetcher for testing.
// Fetches run concurrently, so call recording is synchronized.
type mockVendorFetcher struct {
	mu       sync.Mutex
	payloads map[string][]byte
	errs     map[string]error
	calls    []string
}

func newMockVendorFetcher() *mockVendorFetcher {
	return &mockVendorFetcher{
		payloads: make(map[string][]byte),
		errs:     make(map[string]error),
	}
}

func (m *mockVendorFetcher) Fetch(ctx context.Context, lcscID string) (*secondary.ComponentRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := strings.ToUpper(strings.TrimSpace(lcscID))
	m.calls = append(m.calls, id)
	if err, ok := m.errs[id]; ok {
		return nil, err
	}
	payload, ok := m.payloads[id]
	if !ok {
		return nil, &models.FetchError{LCSCID: id, Err: errors.New("not found")}
	}
	return &secondary.ComponentRecord{LCSCID: id, Title: "part " + id, Payload: payload}, nil
}

// mockBackupStore implements secondary.BackupStore for testing.
type mockBackupStore struct {
	snapshots   int
	consumed    int
	snapshotErr error
}

func (m *mockBackupStore) Snapshot(description string) (*models.BackupManifest, error) {
	if m.snapshotErr != nil {
		return nil, m.snapshotErr
	}
	m.snapshots++
	return &models.BackupManifest{Timestamp: "20260830_120000", Description: description}, nil
}

func (m *mockBackupStore) CommitSucceeded() { m.consumed++ }

func (m *mockBackupStore) Restore(timestamp string) error { return nil }
func (m *mockBackupStore) Get(timestamp string) (*models.BackupManifest, error) {
	return nil, errors.New("not found")
}
func (m *mockBackupStore) List() ([]*models.BackupManifest, error) { return nil, nil }
func (m *mockBackupStore) Verify(timestamp string) error           { return nil }
func (m *mockBackupStore) Delete(timestamp string) error           { return nil }
func (m *mockBackupStore) Prune(keep int) (int, error)             { return 0, nil }

// mockLocker implements secondary.DirLocker for testing.
type mockLocker struct {
	acquireErr error
	acquired   int
	released   int
}

func (m *mockLocker) Acquire() error {
	if m.acquireErr != nil {
		return m.acquireErr
	}
	m.acquired++
	return nil
}

func (m *mockLocker) Release() error {
	m.released++
	return nil
}

// ============================================================================
// Test Setup
// ============================================================================

// decodeStub returns one 2-pad footprint regardless of payload, marking
// the payload so tests can assert which payload reached the decoder.
func decodeStub(payload []byte) ([]geometry.VendorPad, error) {
	if string(payload) == "bad" {
		return nil, &models.ParseError{Source: "payload", Err: errors.New("no pad data")}
	}
	return []geometry.VendorPad{
		{Name: "1", Shape: "RECT", X: -3, Y: 0, Width: 1.2, Height: 0.6},
		{Name: "2", Shape: "RECT", X: 3, Y: 0, Width: 1.2, Height: 0.6},
	}, nil
}

type testEnv struct {
	store   *mockConfigStore
	fetcher *mockVendorFetcher
	backups *mockBackupStore
	locker  *mockLocker
	service *ImportServiceImpl
}

func newTestEnv() *testEnv {
	env := &testEnv{
		store:   newMockConfigStore(),
		fetcher: newMockVendorFetcher(),
		backups: &mockBackupStore{},
		locker:  &mockLocker{},
	}
	env.service = NewImportService(env.store, env.fetcher, env.fetcher, decodeStub, env.backups, env.locker)
	env.service.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return env
}

func entry(reference, value, footprint, lcsc string) models.BomEntry {
	return models.BomEntry{
		Reference:     reference,
		Value:         value,
		FootprintName: footprint,
		LCSCNumber:    lcsc,
		Quantity:      1,
	}
}

// ============================================================================
// Tests
// ============================================================================

func TestRunCreatesNewFootprintAndCommits(t *testing.T) {
	env := newTestEnv()
	env.fetcher.payloads["C60490"] = []byte("payload")

	summary, err := env.service.Run(context.Background(), primary.ImportRequest{
		Entries:     []models.BomEntry{entry("R1", "10K", "R0402_HandSolder", "C60490")},
		SessionID:   "sess-1",
		AutoConfirm: true,
		UseCache:    true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Created != 1 || !summary.Committed {
		t.Errorf("summary = %+v, want 1 created and committed", summary)
	}
	if summary.PackagesWritten != 1 || summary.PartsWritten != 1 {
		t.Errorf("written = %d/%d, want 1/1", summary.PackagesWritten, summary.PartsWritten)
	}
	if summary.BackupTimestamp == "" {
		t.Error("summary should carry the backup timestamp")
	}

	pkg, ok := env.store.GetPackage("R0402")
	if !ok {
		t.Fatal("package R0402 should be committed")
	}
	if pkg.SessionID != "sess-1" || pkg.LCSCID != "C60490" {
		t.Errorf("package provenance = %q/%q", pkg.SessionID, pkg.LCSCID)
	}
	part, ok := env.store.GetPart("R0402-10K")
	if !ok {
		t.Fatal("part R0402-10K should be committed")
	}
	if part.PackageID != "R0402" {
		t.Errorf("part PackageID = %q, want R0402", part.PackageID)
	}
	if part.Height != models.DefaultPartHeight || part.Speed != models.DefaultPartSpeed {
		t.Errorf("part defaults = %v/%v", part.Height, part.Speed)
	}

	if env.locker.acquired != 1 || env.locker.released != 1 {
		t.Errorf("lock acquired/released = %d/%d, want 1/1", env.locker.acquired, env.locker.released)
	}
	if env.backups.snapshots != 1 || env.backups.consumed != 1 {
		t.Errorf("backup snapshots/consumed = %d/%d, want 1/1", env.backups.snapshots, env.backups.consumed)
	}
}

func TestRunFetchesSharedFootprintOnce(t *testing.T) {
	env := newTestEnv()
	env.fetcher.payloads["C100"] = []byte("payload")
	env.fetcher.payloads["C200"] = []byte("payload")

	summary, err := env.service.Run(context.Background(), primary.ImportRequest{
		Entries: []models.BomEntry{
			entry("R1", "10K", "R0402", "C100"),
			entry("R2", "22K", "R0402_Pad", "C200"),
		},
		SessionID:   "sess-1",
		AutoConfirm: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Created != 1 || summary.Reused != 1 {
		t.Errorf("created/reused = %d/%d, want 1/1", summary.Created, summary.Reused)
	}
	if len(env.fetcher.calls) != 1 {
		t.Errorf("fetch calls = %v, want exactly one", env.fetcher.calls)
	}
	if summary.PackagesWritten != 1 || summary.PartsWritten != 2 {
		t.Errorf("written = %d/%d, want 1 package and 2 parts", summary.PackagesWritten, summary.PartsWritten)
	}
}

func TestRunReusesPersistedPackageWithoutFetch(t *testing.T) {
	env := newTestEnv()
	env.store.packages["R0402"] = &models.Package{ID: "R0402"}

	summary, err := env.service.Run(context.Background(), primary.ImportRequest{
		Entries:     []models.BomEntry{entry("R1", "10K", "r0402_HandSolder", "C60490")},
		SessionID:   "sess-1",
		AutoConfirm: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Reused != 1 || summary.Created != 0 {
		t.Errorf("created/reused = %d/%d, want 0/1", summary.Created, summary.Reused)
	}
	if len(env.fetcher.calls) != 0 {
		t.Errorf("fetch calls = %v, want none for reused footprint", env.fetcher.calls)
	}
	part, ok := env.store.GetPart("r0402-10K")
	if !ok {
		t.Fatal("part should be committed")
	}
	if part.PackageID != "R0402" {
		t.Errorf("part references %q, want the persisted package id", part.PackageID)
	}
}

func TestRunSkipsUnchangedExistingPart(t *testing.T) {
	env := newTestEnv()
	env.store.packages["R0402"] = &models.Package{ID: "R0402"}
	env.store.parts["R0402-10K"] = &models.Part{
		ID:          "R0402-10K",
		PackageID:   "R0402",
		Height:      models.DefaultPartHeight,
		HeightUnits: models.UnitsMillimeters,
		Speed:       models.DefaultPartSpeed,
	}

	summary, err := env.service.Run(context.Background(), primary.ImportRequest{
		Entries:     []models.BomEntry{entry("R1", "10K", "R0402", "C60490")},
		SessionID:   "sess-1",
		AutoConfirm: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", summary.Skipped)
	}
	if summary.Committed {
		t.Error("idempotent re-run should not commit")
	}
	if env.store.commits != 0 {
		t.Errorf("commits = %d, want 0", env.store.commits)
	}
	if env.backups.snapshots != 0 {
		t.Errorf("snapshots = %d, want none without a commit", env.backups.snapshots)
	}
}

func TestRunCountsEntriesWithoutLCSC(t *testing.T) {
	env := newTestEnv()
	env.fetcher.payloads["C100"] = []byte("payload")

	summary, err := env.service.Run(context.Background(), primary.ImportRequest{
		Entries: []models.BomEntry{
			entry("J1", "CONN", "HDR-2.54", ""),
			entry("R1", "10K", "R0402", "C100"),
		},
		SessionID:   "sess-1",
		AutoConfirm: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.NoLCSC != 1 || summary.Created != 1 {
		t.Errorf("summary = %+v, want 1 no-lcsc and 1 created", summary)
	}
	if summary.Skipped != 0 {
		t.Errorf("Skipped = %d, entries without LCSC are counted separately", summary.Skipped)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	env := newTestEnv()
	env.fetcher.payloads["C100"] = []byte("payload")

	summary, err := env.service.Run(context.Background(), primary.ImportRequest{
		Entries:   []models.BomEntry{entry("R1", "10K", "R0402", "C100")},
		SessionID: "sess-1",
		DryRun:    true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Created != 1 {
		t.Errorf("Created = %d, dry run still previews the conversion", summary.Created)
	}
	if summary.Committed {
		t.Error("dry run must not commit")
	}
	if env.store.commits != 0 || env.locker.acquired != 0 {
		t.Error("dry run must not touch the lock or the files")
	}
}

func TestRunIsolatesPerItemFailures(t *testing.T) {
	env := newTestEnv()
	env.fetcher.errs["C111"] = &models.FetchError{LCSCID: "C111", Err: errors.New("timeout")}
	env.fetcher.payloads["C222"] = []byte("bad") // decoder rejects
	env.fetcher.payloads["C333"] = []byte("payload")

	summary, err := env.service.Run(context.Background(), primary.ImportRequest{
		Entries: []models.BomEntry{
			entry("R1", "10K", "R0402", "C111"),
			entry("C1", "100nF", "C0603", "C222"),
			entry("R2", "22K", "R0805", "C333"),
		},
		SessionID:   "sess-1",
		AutoConfirm: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(summary.Failures) != 2 {
		t.Fatalf("failures = %d, want 2", len(summary.Failures))
	}
	if summary.Created != 1 || !summary.Committed {
		t.Errorf("summary = %+v, the healthy item should still commit", summary)
	}

	var fetchErr *models.FetchError
	if !errors.As(summary.Failures[0].Err, &fetchErr) {
		t.Errorf("first failure = %v, want FetchError", summary.Failures[0].Err)
	}
	var parseErr *models.ParseError
	if !errors.As(summary.Failures[1].Err, &parseErr) {
		t.Errorf("second failure = %v, want ParseError", summary.Failures[1].Err)
	}
}

func TestRunUserSkipStagesNothing(t *testing.T) {
	env := newTestEnv()
	env.fetcher.payloads["C100"] = []byte("payload")

	summary, err := env.service.Run(context.Background(), primary.ImportRequest{
		Entries:   []models.BomEntry{entry("R1", "10K", "R0402", "C100")},
		SessionID: "sess-1",
		Confirm: func(preview primary.ItemPreview) (bool, error) {
			if preview.Action != primary.ActionCreateFootprint {
				t.Errorf("Action = %q, want create", preview.Action)
			}
			if preview.Package == nil || len(preview.Package.Footprint.Pads) != 2 {
				t.Error("preview should carry the converted footprint")
			}
			return false, nil
		},
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if summary.Skipped != 1 || summary.Committed {
		t.Errorf("summary = %+v, want 1 skipped and no commit", summary)
	}
}

func TestRunConfirmErrorAbortsSession(t *testing.T) {
	env := newTestEnv()
	env.fetcher.payloads["C100"] = []byte("payload")
	env.fetcher.payloads["C200"] = []byte("payload")

	_, err := env.service.Run(context.Background(), primary.ImportRequest{
		Entries: []models.BomEntry{
			entry("R1", "10K", "R0402", "C100"),
			entry("R2", "22K", "R0805", "C200"),
		},
		SessionID: "sess-1",
		Confirm: func(preview primary.ItemPreview) (bool, error) {
			return false, errors.New("terminal gone")
		},
	})
	if err == nil {
		t.Fatal("Run() should propagate the confirm error")
	}
	if env.store.discards == 0 {
		t.Error("aborted session must discard staged entries")
	}
	if env.store.commits != 0 {
		t.Error("aborted session must not commit")
	}
}

func TestRunLockContentionFailsWithoutWriting(t *testing.T) {
	env := newTestEnv()
	env.fetcher.payloads["C100"] = []byte("payload")
	env.locker.acquireErr = &models.LockedError{Path: "/cfg/.pnpimport.lock", SessionID: "other", PID: 42}

	_, err := env.service.Run(context.Background(), primary.ImportRequest{
		Entries:     []models.BomEntry{entry("R1", "10K", "R0402", "C100")},
		SessionID:   "sess-1",
		AutoConfirm: true,
	})
	var lockedErr *models.LockedError
	if !errors.As(err, &lockedErr) {
		t.Fatalf("Run() error = %v, want LockedError", err)
	}
	if env.store.commits != 0 {
		t.Error("lock contention must prevent the commit")
	}
	if env.backups.snapshots != 0 {
		t.Error("no snapshot should be taken without the lock")
	}
}

func TestRunBackupFailureAbortsCommit(t *testing.T) {
	env := newTestEnv()
	env.fetcher.payloads["C100"] = []byte("payload")
	env.backups.snapshotErr = errors.New("disk full")

	_, err := env.service.Run(context.Background(), primary.ImportRequest{
		Entries:     []models.BomEntry{entry("R1", "10K", "R0402", "C100")},
		SessionID:   "sess-1",
		AutoConfirm: true,
	})
	if err == nil {
		t.Fatal("Run() should fail when the snapshot fails")
	}
	if env.store.commits != 0 {
		t.Error("commit must not run without a snapshot")
	}
	if env.locker.released != 1 {
		t.Error("lock must be released on the failure path")
	}
}

func TestRunRejectsEmptyBOM(t *testing.T) {
	env := newTestEnv()
	_, err := env.service.Run(context.Background(), primary.ImportRequest{SessionID: "sess-1", AutoConfirm: true})
	var valErr *models.ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("Run() error = %v, want ValidationError", err)
	}
}

func TestRunRequiresConfirmCallback(t *testing.T) {
	env := newTestEnv()
	_, err := env.service.Run(context.Background(), primary.ImportRequest{
		Entries:   []models.BomEntry{entry("R1", "10K", "R0402", "C100")},
		SessionID: "sess-1",
	})
	if err == nil {
		t.Fatal("Run() should reject interactive import without a confirm callback")
	}
}

func TestRunBoundedWorkers(t *testing.T) {
	env := newTestEnv()
	for _, id := range []string{"C1", "C2", "C3", "C4"} {
		env.fetcher.payloads[id] = []byte("payload")
	}

	summary, err := env.service.Run(context.Background(), primary.ImportRequest{
		Entries: []models.BomEntry{
			entry("R1", "1K", "FP1", "C1"),
			entry("R2", "2K", "FP2", "C2"),
			entry("R3", "3K", "FP3", "C3"),
			entry("R4", "4K", "FP4", "C4"),
		},
		SessionID:   "sess-1",
		AutoConfirm: true,
		Workers:     2,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Created != 4 {
		t.Errorf("Created = %d, want 4", summary.Created)
	}
	if len(env.fetcher.calls) != 4 {
		t.Errorf("fetch calls = %d, want 4", len(env.fetcher.calls))
	}
}
