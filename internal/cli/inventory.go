package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/pnpimport/internal/wire"
)

// PackagesCmd returns the packages command group.
func PackagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packages",
		Short: "Inspect configured packages",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List packages from packages.xml",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.InventoryAdapter().Packages(cmd.Context())
		},
	})
	return cmd
}

// PartsCmd returns the parts command group.
func PartsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parts",
		Short: "Inspect configured parts",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List parts from parts.xml",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.InventoryAdapter().Parts(cmd.Context())
		},
	})
	return cmd
}
