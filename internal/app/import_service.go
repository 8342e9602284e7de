package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/pnpimport/internal/core/geometry"
	"github.com/example/pnpimport/internal/core/resolve"
	"github.com/example/pnpimport/internal/core/workqueue"
	"github.com/example/pnpimport/internal/models"
	"github.com/example/pnpimport/internal/ports/primary"
	"github.com/example/pnpimport/internal/ports/secondary"
)

// generatorName tags every entry this tool writes so sessions can be
// audited and bulk-removed later.
const generatorName = "pnpimport"

// ImportServiceImpl implements the ImportService interface.
type ImportServiceImpl struct {
	store   secondary.ConfigStore
	fetcher secondary.VendorFetcher
	cached  secondary.VendorFetcher // cache-backed variant, may equal fetcher
	decode  secondary.PayloadDecoder
	backups secondary.BackupStore
	locker  secondary.DirLocker

	now func() time.Time
}

// NewImportService creates a new ImportService with injected dependencies.
// cached may equal fetcher when no cache is configured.
func NewImportService(
	store secondary.ConfigStore,
	fetcher secondary.VendorFetcher,
	cached secondary.VendorFetcher,
	decode secondary.PayloadDecoder,
	backups secondary.BackupStore,
	locker secondary.DirLocker,
) *ImportServiceImpl {
	return &ImportServiceImpl{
		store:   store,
		fetcher: fetcher,
		cached:  cached,
		decode:  decode,
		backups: backups,
		locker:  locker,
		now:     time.Now,
	}
}

// Run executes a full import session over the given BOM entries.
func (s *ImportServiceImpl) Run(ctx context.Context, req primary.ImportRequest) (*primary.ImportSummary, error) {
	if len(req.Entries) == 0 {
		return nil, models.Validationf("no BOM entries to import")
	}
	if !req.DryRun && !req.AutoConfirm && req.Confirm == nil {
		return nil, fmt.Errorf("confirmation callback required for interactive import")
	}

	queue := workqueue.New(req.Entries)
	session := resolve.NewSession()

	s.resolveAll(queue, session, req.SessionID)

	if err := s.fetchAll(ctx, queue, req); err != nil {
		queue.Discard()
		return nil, err
	}

	if err := s.confirmAll(queue, session, req); err != nil {
		queue.Discard()
		s.store.DiscardStaged()
		return nil, err
	}

	summary := s.summarize(queue, req.DryRun)
	if req.DryRun {
		s.store.DiscardStaged()
		return summary, nil
	}

	confirmed := queue.Confirmed()
	if len(confirmed) == 0 {
		return summary, nil
	}

	if err := s.commit(queue, confirmed, req, summary); err != nil {
		queue.Discard()
		s.store.DiscardStaged()
		return nil, err
	}
	return summary, nil
}

// resolveAll runs the dedup decision table over the queue in BOM order.
// Footprints the session will create are marked in the session index
// immediately so later entries sharing them reuse instead of re-fetching.
func (s *ImportServiceImpl) resolveAll(queue *workqueue.Queue, session *resolve.Session, sessionID string) {
	for _, item := range queue.Items {
		if !item.Entry.HasLCSC() {
			s.move(item, workqueue.StatusSkipped)
			continue
		}

		base := item.Entry.BaseFootprint()
		rctx := resolve.Context{FootprintName: base}
		rctx.PackageID, _ = s.store.FindPackageID(base)
		rctx.StagedID = session.StagedID(base)

		if existing, ok := s.store.GetPart(item.Entry.PartID()); ok {
			rctx.PartExists = true
			candidateID := rctx.PackageID
			if candidateID == "" {
				candidateID = rctx.StagedID
			}
			if candidateID == "" {
				candidateID = strings.TrimSpace(base)
			}
			rctx.PartUnchanged = existing.Equal(s.buildPart(item.Entry, candidateID, sessionID))
		}

		item.Decision = resolve.Resolve(rctx)

		switch item.Decision.Action {
		case resolve.ActionSkipExisting:
			s.move(item, workqueue.StatusSkipped)
		case resolve.ActionCreateFootprint:
			item.Part = s.buildPart(item.Entry, item.Decision.PackageID, sessionID)
			session.MarkStaged(base, item.Decision.PackageID)
		default:
			item.Part = s.buildPart(item.Entry, item.Decision.PackageID, sessionID)
			s.move(item, workqueue.StatusPreviewReady)
		}
	}
}

// fetchAll fetches and converts vendor footprints for every item that
// creates one, with bounded concurrency. Per-item failures are recorded
// on the item; only context cancellation aborts the session.
func (s *ImportServiceImpl) fetchAll(ctx context.Context, queue *workqueue.Queue, req primary.ImportRequest) error {
	fetcher := s.fetcher
	if req.UseCache && s.cached != nil {
		fetcher = s.cached
	}

	workers := req.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, item := range queue.Items {
		if item.Status != workqueue.StatusPending || item.Decision.Action != resolve.ActionCreateFootprint {
			continue
		}
		s.move(item, workqueue.StatusFetching)
		item := item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pkg, err := s.buildPackage(gctx, fetcher, item, req.SessionID)
			if err != nil {
				slog.Warn("footprint import failed",
					"reference", item.Entry.Reference,
					"lcsc_id", item.Entry.LCSCNumber,
					"error", err)
				item.Fail(err)
				return nil
			}
			item.Package = pkg
			s.move(item, workqueue.StatusPreviewReady)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("import interrupted: %w", err)
	}
	return nil
}

// buildPackage fetches the vendor payload and converts it to an OpenPnP
// package under the item's decided id.
func (s *ImportServiceImpl) buildPackage(ctx context.Context, fetcher secondary.VendorFetcher, item *workqueue.Item, sessionID string) (*models.Package, error) {
	record, err := fetcher.Fetch(ctx, item.Entry.LCSCNumber)
	if err != nil {
		return nil, err
	}

	pads, err := s.decode(record.Payload)
	if err != nil {
		return nil, err
	}

	footprint, err := geometry.Convert(pads, geometry.DefaultUnitScale)
	if err != nil {
		return nil, err
	}

	return &models.Package{
		ID:          item.Decision.PackageID,
		Description: packageDescription(len(footprint.Pads)),
		Footprint:   *footprint,
		Generator:   generatorName,
		ImportDate:  s.now().Format(time.RFC3339),
		SessionID:   sessionID,
		LCSCID:      record.LCSCID,
	}, nil
}

// confirmAll walks previewable items in BOM order, asks the caller to
// confirm each, and stages confirmed entries. An error from the confirm
// callback aborts the whole session.
func (s *ImportServiceImpl) confirmAll(queue *workqueue.Queue, session *resolve.Session, req primary.ImportRequest) error {
	for _, item := range queue.Items {
		if item.Status != workqueue.StatusPreviewReady {
			continue
		}
		if req.DryRun {
			continue
		}

		confirmed := req.AutoConfirm
		if !confirmed {
			ok, err := req.Confirm(primary.ItemPreview{
				Entry:     item.Entry,
				Action:    string(item.Decision.Action),
				PackageID: item.Decision.PackageID,
				Package:   item.Package,
				Part:      item.Part,
			})
			if err != nil {
				return fmt.Errorf("import aborted: %w", err)
			}
			confirmed = ok
		}
		if !confirmed {
			s.move(item, workqueue.StatusSkipped)
			continue
		}

		if item.Package != nil {
			if err := s.store.StagePackage(item.Package); err != nil {
				item.Fail(err)
				continue
			}
			session.MarkStaged(item.Entry.BaseFootprint(), item.Package.ID)
		}
		if err := s.store.StagePart(item.Part); err != nil {
			item.Fail(err)
			continue
		}
		s.move(item, workqueue.StatusConfirmed)
	}
	return nil
}

// commit takes the directory lock, snapshots the configuration, and
// writes both documents atomically.
func (s *ImportServiceImpl) commit(queue *workqueue.Queue, confirmed []*workqueue.Item, req primary.ImportRequest, summary *primary.ImportSummary) error {
	if err := s.locker.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := s.locker.Release(); err != nil {
			slog.Warn("failed to release directory lock", "error", err)
		}
	}()

	description := req.Description
	if description == "" {
		description = "before import session " + req.SessionID
	}
	manifest, err := s.backups.Snapshot(description)
	if err != nil {
		return fmt.Errorf("failed to back up configuration: %w", err)
	}
	summary.BackupTimestamp = manifest.Timestamp

	result, err := s.store.Commit()
	if err != nil {
		return err
	}
	s.backups.CommitSucceeded()

	for _, item := range confirmed {
		s.move(item, workqueue.StatusWritten)
	}
	summary.PackagesWritten = result.PackagesWritten
	summary.PartsWritten = result.PartsWritten
	summary.Committed = true
	return nil
}

// summarize tallies the queue into the session outcome.
func (s *ImportServiceImpl) summarize(queue *workqueue.Queue, dryRun bool) *primary.ImportSummary {
	summary := &primary.ImportSummary{Total: len(queue.Items)}
	for _, item := range queue.Items {
		switch {
		case item.Err != nil:
			summary.Failures = append(summary.Failures, primary.ItemFailure{Entry: item.Entry, Err: item.Err})
		case item.Status == workqueue.StatusSkipped && !item.Entry.HasLCSC():
			summary.NoLCSC++
		case item.Status == workqueue.StatusSkipped:
			summary.Skipped++
		case item.Status == workqueue.StatusConfirmed,
			item.Status == workqueue.StatusWritten,
			dryRun && item.Status == workqueue.StatusPreviewReady:
			if item.Decision.Action == resolve.ActionCreateFootprint {
				summary.Created++
			} else {
				summary.Reused++
			}
		}
	}
	return summary
}

// buildPart constructs the part a BOM entry would stage. Placement
// height and speed start at conservative defaults the operator tunes in
// OpenPnP afterwards.
func (s *ImportServiceImpl) buildPart(entry models.BomEntry, packageID, sessionID string) *models.Part {
	partID := entry.PartID()
	return &models.Part{
		ID:          partID,
		Name:        partID,
		HeightUnits: models.UnitsMillimeters,
		Height:      models.DefaultPartHeight,
		PackageID:   packageID,
		Speed:       models.DefaultPartSpeed,
		Generator:   generatorName,
		ImportDate:  s.now().Format(time.RFC3339),
		SessionID:   sessionID,
		LCSCID:      strings.ToUpper(strings.TrimSpace(entry.LCSCNumber)),
	}
}

// move applies a statically legal transition. The queue rejects only
// programmer errors here, so a refusal is recorded on the item instead
// of propagating.
func (s *ImportServiceImpl) move(item *workqueue.Item, to workqueue.Status) {
	if err := item.Transition(to); err != nil {
		item.Fail(err)
	}
}

func packageDescription(padCount int) string {
	switch {
	case padCount == 2:
		return "2-pad SMD component"
	case padCount == 3:
		return "3-pin component (SOT-23 style)"
	case padCount <= 8:
		return fmt.Sprintf("%d-pin SMD component", padCount)
	default:
		return fmt.Sprintf("%d-pin IC", padCount)
	}
}
