package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/pnpimport/internal/ports/primary"
)

// ImportAdapter is a thin adapter that translates CLI operations to
// ImportService calls. It owns the interactive confirmation prompt and
// the summary output.
type ImportAdapter struct {
	service primary.ImportService
	out     io.Writer
	in      io.Reader
}

// NewImportAdapter creates a new ImportAdapter with the given service.
func NewImportAdapter(service primary.ImportService, out io.Writer, in io.Reader) *ImportAdapter {
	return &ImportAdapter{
		service: service,
		out:     out,
		in:      in,
	}
}

// Run executes an import session and prints the summary. The request's
// Confirm callback is filled in with the interactive prompt unless the
// caller set AutoConfirm or DryRun.
func (a *ImportAdapter) Run(ctx context.Context, req primary.ImportRequest) error {
	if !req.AutoConfirm && !req.DryRun && req.Confirm == nil {
		scanner := bufio.NewScanner(a.in)
		req.Confirm = func(preview primary.ItemPreview) (bool, error) {
			a.printPreview(preview)
			fmt.Fprint(a.out, "Import this part? [Y/n] ")
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return false, err
				}
				return false, fmt.Errorf("input closed")
			}
			answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
			return answer == "" || answer == "y" || answer == "yes", nil
		}
	}

	summary, err := a.service.Run(ctx, req)
	if err != nil {
		return err
	}

	a.printSummary(summary)
	return nil
}

func (a *ImportAdapter) printPreview(preview primary.ItemPreview) {
	fmt.Fprintf(a.out, "\n%s %s (%s)\n", color.New(color.Bold).Sprint(preview.Entry.Reference),
		preview.Entry.Value, preview.Entry.FootprintName)

	switch preview.Action {
	case primary.ActionCreateFootprint:
		fmt.Fprintf(a.out, "  %s new footprint %s from %s\n",
			color.New(color.FgGreen).Sprint("create"), preview.PackageID, preview.Entry.LCSCNumber)
		if preview.Package != nil {
			fp := preview.Package.Footprint
			fmt.Fprintf(a.out, "  %d pads, body %.2f x %.2f mm\n", len(fp.Pads), fp.BodyWidth, fp.BodyHeight)
			for _, pad := range fp.Pads {
				fmt.Fprintf(a.out, "    pad %-4s (%.4f, %.4f) %.4f x %.4f mm roundness %.0f\n",
					pad.Name, pad.X, pad.Y, pad.Width, pad.Height, pad.Roundness)
			}
		}
	case primary.ActionReuseFootprint:
		fmt.Fprintf(a.out, "  %s existing footprint %s\n",
			color.New(color.FgCyan).Sprint("reuse"), preview.PackageID)
	case primary.ActionReuseStaged:
		fmt.Fprintf(a.out, "  %s footprint %s staged earlier this session\n",
			color.New(color.FgCyan).Sprint("reuse"), preview.PackageID)
	}
	if preview.Part != nil {
		fmt.Fprintf(a.out, "  part %s\n", preview.Part.ID)
	}
}

func (a *ImportAdapter) printSummary(summary *primary.ImportSummary) {
	fmt.Fprintln(a.out)
	if summary.Committed {
		fmt.Fprintf(a.out, "%s wrote %d packages and %d parts\n",
			color.New(color.FgGreen).Sprint("✓"), summary.PackagesWritten, summary.PartsWritten)
		if summary.BackupTimestamp != "" {
			fmt.Fprintf(a.out, "  backup: %s\n", summary.BackupTimestamp)
		}
	} else {
		fmt.Fprintln(a.out, "No changes written")
	}

	fmt.Fprintf(a.out, "  %d entries: %d created, %d reused, %d skipped",
		summary.Total, summary.Created, summary.Reused, summary.Skipped)
	if summary.NoLCSC > 0 {
		fmt.Fprintf(a.out, ", %d without LCSC number", summary.NoLCSC)
	}
	fmt.Fprintln(a.out)

	if len(summary.Failures) > 0 {
		fmt.Fprintf(a.out, "\n%s %d entries failed:\n",
			color.New(color.FgRed).Sprint("✗"), len(summary.Failures))
		for _, failure := range summary.Failures {
			fmt.Fprintf(a.out, "  %s (%s): %v\n", failure.Entry.Reference, failure.Entry.LCSCNumber, failure.Err)
		}
	}
}
