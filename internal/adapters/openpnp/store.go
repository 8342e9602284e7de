package openpnp

import (
	"os"
	"path/filepath"

	"github.com/example/pnpimport/internal/core/resolve"
	"github.com/example/pnpimport/internal/models"
)

// Store is the authoritative in-memory view of packages.xml and
// parts.xml plus the session's staged entries. It is exclusively owned
// by one session; concurrent mutation is excluded by the directory lock,
// not by internal synchronization.
type Store struct {
	packagesPath string
	partsPath    string

	packagesDoc *document
	partsDoc    *document

	packages map[string]*models.Package // persisted, by id
	parts    map[string]*models.Part    // persisted, by id
	pkgByKey map[string]string          // normalized name -> persisted id

	stagedPackages []*models.Package
	stagedParts    []*models.Part
	stagedPkgByID  map[string]*models.Package
	stagedPartByID map[string]*models.Part

	// renameFn is the final atomic step of a commit; replaceable in tests
	// to simulate write failures.
	renameFn func(oldpath, newpath string) error
}

// Load parses both persisted documents and indexes them by id. Entries
// the schema does not recognize are retained opaquely in the underlying
// documents. A malformed document aborts the load with ParseError.
func Load(packagesPath, partsPath string) (*Store, error) {
	pkgDoc, err := loadDocument(packagesPath, packagesRoot, "package")
	if err != nil {
		return nil, err
	}
	partDoc, err := loadDocument(partsPath, partsRoot, "part")
	if err != nil {
		return nil, err
	}

	s := &Store{
		packagesPath: packagesPath,
		partsPath:    partsPath,
		packagesDoc:  pkgDoc,
		partsDoc:     partDoc,
		packages:     make(map[string]*models.Package),
		parts:        make(map[string]*models.Part),
		pkgByKey:     make(map[string]string),
		renameFn:     os.Rename,
	}
	s.resetStaged()

	for _, id := range pkgDoc.ids() {
		raw, _ := pkgDoc.entryRaw(id)
		pkg, err := parsePackage(raw)
		if err != nil {
			// A recognized element that fails to decode is left as opaque
			// content rather than failing the load, matching how OpenPnP
			// tolerates entries from newer versions.
			continue
		}
		s.packages[pkg.ID] = pkg
		s.pkgByKey[resolve.NormalizeKey(pkg.ID)] = pkg.ID
	}
	for _, id := range partDoc.ids() {
		raw, _ := partDoc.entryRaw(id)
		part, err := parsePart(raw)
		if err != nil {
			continue
		}
		s.parts[part.ID] = part
	}

	return s, nil
}

func (s *Store) resetStaged() {
	s.stagedPackages = nil
	s.stagedParts = nil
	s.stagedPkgByID = make(map[string]*models.Package)
	s.stagedPartByID = make(map[string]*models.Part)
}

// PackagesPath returns the path of the packages document.
func (s *Store) PackagesPath() string { return s.packagesPath }

// PartsPath returns the path of the parts document.
func (s *Store) PartsPath() string { return s.partsPath }

// GetPackage returns a persisted package by id.
func (s *Store) GetPackage(id string) (*models.Package, bool) {
	pkg, ok := s.packages[id]
	return pkg, ok
}

// FindPackageID looks up a persisted package id by case-insensitive
// footprint name.
func (s *Store) FindPackageID(name string) (string, bool) {
	id, ok := s.pkgByKey[resolve.NormalizeKey(name)]
	return id, ok
}

// GetPart returns a persisted part by id.
func (s *Store) GetPart(id string) (*models.Part, bool) {
	part, ok := s.parts[id]
	return part, ok
}

// PackageCount returns the number of persisted packages.
func (s *Store) PackageCount() int { return len(s.packages) }

// PartCount returns the number of persisted parts.
func (s *Store) PartCount() int { return len(s.parts) }

// PackageIDs returns persisted package ids in document order.
func (s *Store) PackageIDs() []string { return s.packagesDoc.ids() }

// PartIDs returns persisted part ids in document order.
func (s *Store) PartIDs() []string { return s.partsDoc.ids() }

// StagePackage adds a package to the pending set without touching disk.
// Staging an entry identical to a persisted or already-staged one is a
// no-op; a colliding id with different content is a ConflictError.
func (s *Store) StagePackage(pkg *models.Package) error {
	if existing, ok := s.packages[pkg.ID]; ok {
		if existing.Equal(pkg) {
			return nil
		}
		return &models.ConflictError{Kind: "package", ID: pkg.ID}
	}
	if staged, ok := s.stagedPkgByID[pkg.ID]; ok {
		if staged.Equal(pkg) {
			return nil
		}
		return &models.ConflictError{Kind: "package", ID: pkg.ID}
	}
	s.stagedPackages = append(s.stagedPackages, pkg)
	s.stagedPkgByID[pkg.ID] = pkg
	return nil
}

// StagePart adds a part to the pending set. The referenced package must
// be persisted or staged already: the foreign key is checked again at
// commit, but failing here keeps the error on the offending item.
func (s *Store) StagePart(part *models.Part) error {
	if _, ok := s.packages[part.PackageID]; !ok {
		if _, staged := s.stagedPkgByID[part.PackageID]; !staged {
			return models.Validationf("part %s references unknown package %s", part.ID, part.PackageID)
		}
	}
	if existing, ok := s.parts[part.ID]; ok {
		if existing.Equal(part) {
			return nil
		}
		return &models.ConflictError{Kind: "part", ID: part.ID}
	}
	if staged, ok := s.stagedPartByID[part.ID]; ok {
		if staged.Equal(part) {
			return nil
		}
		return &models.ConflictError{Kind: "part", ID: part.ID}
	}
	s.stagedParts = append(s.stagedParts, part)
	s.stagedPartByID[part.ID] = part
	return nil
}

// StagedCounts returns the number of pending packages and parts.
func (s *Store) StagedCounts() (packages, parts int) {
	return len(s.stagedPackages), len(s.stagedParts)
}

// DiscardStaged drops all pending entries. Nothing was written, so the
// persisted state is untouched.
func (s *Store) DiscardStaged() {
	s.resetStaged()
}

// Commit writes both documents: every previously persisted byte
// unchanged, staged entries appended before the root close tag. Both
// files are fully written to temp files in the destination directory
// first, then atomically renamed, so a failure before the first rename
// leaves the persisted documents exactly as they were. Each rename is
// atomic per file, not across the pair: if the second rename fails,
// packages.xml is already the new generation while parts.xml is the
// old one, and the caller recovers by restoring the pre-commit
// snapshot. The caller holds the directory lock.
func (s *Store) Commit() (*models.CommitResult, error) {
	for _, part := range s.stagedParts {
		if _, ok := s.packages[part.PackageID]; ok {
			continue
		}
		if _, ok := s.stagedPkgByID[part.PackageID]; ok {
			continue
		}
		return nil, models.Validationf("part %s references unknown package %s", part.ID, part.PackageID)
	}

	pkgEntries := make([]string, 0, len(s.stagedPackages))
	for _, pkg := range s.stagedPackages {
		pkgEntries = append(pkgEntries, renderPackage(pkg, "  "))
	}
	partEntries := make([]string, 0, len(s.stagedParts))
	for _, part := range s.stagedParts {
		partEntries = append(partEntries, renderPart(part, "  "))
	}

	pkgBytes := s.packagesDoc.render(pkgEntries)
	partBytes := s.partsDoc.render(partEntries)

	pkgTmp, err := writeTemp(s.packagesPath, pkgBytes)
	if err != nil {
		return nil, err
	}
	partTmp, err := writeTemp(s.partsPath, partBytes)
	if err != nil {
		os.Remove(pkgTmp)
		return nil, err
	}

	if err := s.renameFn(pkgTmp, s.packagesPath); err != nil {
		os.Remove(pkgTmp)
		os.Remove(partTmp)
		return nil, &models.IOError{Op: "rename", Path: s.packagesPath, Err: err}
	}
	if err := s.renameFn(partTmp, s.partsPath); err != nil {
		os.Remove(partTmp)
		return nil, &models.IOError{Op: "rename", Path: s.partsPath, Err: err}
	}

	result := &models.CommitResult{
		PackagesWritten: len(s.stagedPackages),
		PartsWritten:    len(s.stagedParts),
	}

	// Fold the write into the in-memory view so the store stays
	// authoritative for the rest of the session.
	if err := s.packagesDoc.parse(pkgBytes); err != nil {
		return nil, &models.ParseError{Source: s.packagesPath, Err: err}
	}
	if err := s.partsDoc.parse(partBytes); err != nil {
		return nil, &models.ParseError{Source: s.partsPath, Err: err}
	}
	for _, pkg := range s.stagedPackages {
		s.packages[pkg.ID] = pkg
		s.pkgByKey[resolve.NormalizeKey(pkg.ID)] = pkg.ID
	}
	for _, part := range s.stagedParts {
		s.parts[part.ID] = part
	}
	s.resetStaged()

	return result, nil
}

// writeTemp writes content to a temp file in the destination's
// directory and syncs it, returning the temp path.
func writeTemp(destPath string, content []byte) (string, error) {
	dir := filepath.Dir(destPath)
	f, err := os.CreateTemp(dir, "."+filepath.Base(destPath)+".tmp-*")
	if err != nil {
		return "", &models.IOError{Op: "create temp for", Path: destPath, Err: err}
	}
	tmpPath := f.Name()

	cleanup := func(err error) (string, error) {
		f.Close()
		os.Remove(tmpPath)
		return "", &models.IOError{Op: "write", Path: tmpPath, Err: err}
	}

	if _, err := f.Write(content); err != nil {
		return cleanup(err)
	}
	if err := f.Sync(); err != nil {
		return cleanup(err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", &models.IOError{Op: "close", Path: tmpPath, Err: err}
	}
	return tmpPath, nil
}
