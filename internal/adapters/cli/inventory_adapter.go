package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/pnpimport/internal/ports/primary"
)

// InventoryAdapter is a thin adapter that translates CLI operations to
// InventoryService calls.
type InventoryAdapter struct {
	service primary.InventoryService
	out     io.Writer
}

// NewInventoryAdapter creates a new InventoryAdapter with the given service.
func NewInventoryAdapter(service primary.InventoryService, out io.Writer) *InventoryAdapter {
	return &InventoryAdapter{
		service: service,
		out:     out,
	}
}

// Packages lists the configured packages.
func (a *InventoryAdapter) Packages(ctx context.Context) error {
	packages, err := a.service.Packages(ctx)
	if err != nil {
		return fmt.Errorf("failed to list packages: %w", err)
	}

	if len(packages) == 0 {
		fmt.Fprintln(a.out, "No packages found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-24s %-5s %-10s %s\n", "ID", "PADS", "LCSC", "IMPORTED")
	for _, pkg := range packages {
		fmt.Fprintf(a.out, "%-24s %-5d %-10s %s\n",
			pkg.ID, len(pkg.Footprint.Pads), pkg.LCSCID, pkg.ImportDate)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Parts lists the configured parts.
func (a *InventoryAdapter) Parts(ctx context.Context) error {
	parts, err := a.service.Parts(ctx)
	if err != nil {
		return fmt.Errorf("failed to list parts: %w", err)
	}

	if len(parts) == 0 {
		fmt.Fprintln(a.out, "No parts found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-28s %-24s %-8s %s\n", "ID", "PACKAGE", "HEIGHT", "LCSC")
	for _, part := range parts {
		fmt.Fprintf(a.out, "%-28s %-24s %-8.2f %s\n",
			part.ID, part.PackageID, part.Height, part.LCSCID)
	}
	fmt.Fprintln(a.out)
	return nil
}
