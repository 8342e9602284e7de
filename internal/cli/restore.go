package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/pnpimport/internal/wire"
)

// RestoreCmd returns the restore command.
func RestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <timestamp>",
		Short: "Restore the configuration files from a backup",
		Long: `Restore copies a backup's packages.xml and parts.xml back over the
live configuration, byte for byte, after verifying the backup's
checksums. Use 'pnpimport backup list' to find the timestamp.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.BackupAdapter().Restore(cmd.Context(), args[0])
		},
	}
}
