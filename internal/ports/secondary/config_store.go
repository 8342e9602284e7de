// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import "github.com/example/pnpimport/internal/models"

// ConfigStore defines the secondary port for the OpenPnP configuration
// files. Staged entries are held in memory until Commit writes both
// files atomically; entries the store did not create are passed through
// byte for byte.
type ConfigStore interface {
	// GetPackage returns a persisted package by id.
	GetPackage(id string) (*models.Package, bool)

	// FindPackageID resolves a footprint name to an existing package id
	// using case-insensitive trimmed matching.
	FindPackageID(name string) (string, bool)

	// GetPart returns a persisted part by id.
	GetPart(id string) (*models.Part, bool)

	// StagePackage stages a new package for the next commit. Staging an
	// identical duplicate is a no-op; a conflicting definition for an
	// existing id is an error.
	StagePackage(pkg *models.Package) error

	// StagePart stages a new part. Its package must already be
	// persisted or staged.
	StagePart(part *models.Part) error

	// StagedCounts reports how many packages and parts are staged.
	StagedCounts() (packages, parts int)

	// DiscardStaged drops all staged entries without writing.
	DiscardStaged()

	// Commit writes staged entries to both files atomically.
	Commit() (*models.CommitResult, error)

	// PackageIDs returns persisted package ids in document order.
	PackageIDs() []string

	// PartIDs returns persisted part ids in document order.
	PartIDs() []string

	// PackageCount returns the number of persisted packages.
	PackageCount() int

	// PartCount returns the number of persisted parts.
	PartCount() int
}
