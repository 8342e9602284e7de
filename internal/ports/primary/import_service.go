// Package primary defines the primary ports (driving adapters) for the
// application. These are the interfaces through which the CLI drives
// the application services.
package primary

import (
	"context"

	"github.com/example/pnpimport/internal/models"
)

// Item actions as presented to the user.
const (
	ActionCreateFootprint = "create_footprint"
	ActionReuseFootprint  = "reuse_footprint"
	ActionReuseStaged     = "reuse_staged"
	ActionSkipExisting    = "skip_existing"
)

// ImportService defines the primary port for the BOM import workflow.
type ImportService interface {
	// Run executes a full import session: build the work queue from
	// the BOM entries, resolve each against the existing config, fetch
	// vendor data where a new footprint is needed, confirm each item
	// through the request's Confirm callback, and commit.
	Run(ctx context.Context, req ImportRequest) (*ImportSummary, error)
}

// ConfirmFunc decides one previewed item: true stages it, false skips
// it. An error aborts the whole session and discards staged work.
type ConfirmFunc func(preview ItemPreview) (bool, error)

// ImportRequest contains parameters for an import session.
type ImportRequest struct {
	Entries     []models.BomEntry
	SessionID   string
	Description string

	// DryRun previews every item but never stages or commits.
	DryRun bool

	// AutoConfirm stages every previewable item without asking.
	AutoConfirm bool

	// Workers bounds concurrent vendor fetches. Zero means one.
	Workers int

	// UseCache consults the local payload cache before the network.
	UseCache bool

	// Confirm is called for each previewable item unless AutoConfirm
	// is set. Required when AutoConfirm and DryRun are both false.
	Confirm ConfirmFunc
}

// ItemPreview is one resolved BOM line presented for confirmation.
type ItemPreview struct {
	Entry     models.BomEntry
	Action    string
	PackageID string

	// Package is the newly converted footprint. Nil unless Action is
	// ActionCreateFootprint.
	Package *models.Package

	// Part is the part that would be staged. Nil for ActionSkipExisting.
	Part *models.Part
}

// ItemFailure is one BOM line that could not be imported.
type ItemFailure struct {
	Entry models.BomEntry
	Err   error
}

// ImportSummary reports the outcome of an import session.
type ImportSummary struct {
	Total     int
	Created   int
	Reused    int
	Skipped   int
	NoLCSC    int
	Failures  []ItemFailure
	Committed bool

	PackagesWritten int
	PartsWritten    int
	BackupTimestamp string
}
