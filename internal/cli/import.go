package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/pnpimport/internal/adapters/cli"
	"github.com/example/pnpimport/internal/ports/primary"
	"github.com/example/pnpimport/internal/wire"
)

// ImportCmd returns the import command.
func ImportCmd() *cobra.Command {
	var (
		yes         bool
		dryRun      bool
		noCache     bool
		workers     int
		description string
	)

	cmd := &cobra.Command{
		Use:   "import <bom.csv>",
		Short: "Import footprints and parts from a BOM",
		Long: `Import reads a BOM CSV (reference, value, footprint, lcsc columns),
fetches vendor footprint data for parts not yet configured, converts it
to OpenPnP geometry, and appends the new packages and parts to
packages.xml and parts.xml. Existing entries are never modified.

A backup of both files is taken before anything is written.

Examples:
  pnpimport import bom.csv               # interactive, confirm each part
  pnpimport import bom.csv --yes         # confirm everything
  pnpimport import bom.csv --dry-run     # preview only, write nothing`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := cliadapter.LoadBOM(args[0])
			if err != nil {
				return fmt.Errorf("failed to load BOM: %w", err)
			}

			if workers < 1 {
				workers = wire.Config().Workers
			}

			return wire.ImportAdapter().Run(cmd.Context(), primary.ImportRequest{
				Entries:     entries,
				SessionID:   wire.SessionID(),
				Description: description,
				DryRun:      dryRun,
				AutoConfirm: yes,
				Workers:     workers,
				UseCache:    !noCache,
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm every part without prompting")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview the import without writing anything")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the local payload cache")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent vendor fetches (default from config)")
	cmd.Flags().StringVar(&description, "description", "", "Description recorded on the pre-import backup")

	return cmd
}
