package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/pnpimport/internal/wire"
)

// BackupCmd returns the backup command group.
func BackupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage configuration backups",
		Long:  "Create, list, verify, and prune snapshots of packages.xml and parts.xml",
	}

	cmd.AddCommand(backupCreateCmd())
	cmd.AddCommand(backupListCmd())
	cmd.AddCommand(backupVerifyCmd())
	cmd.AddCommand(backupPruneCmd())
	return cmd
}

func backupCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a backup of the configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.BackupAdapter().Create(cmd.Context(), description)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Description stored in the manifest")
	return cmd
}

func backupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.BackupAdapter().List(cmd.Context())
		},
	}
}

func backupVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <timestamp>",
		Short: "Verify a backup against its manifest checksums",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.BackupAdapter().Verify(cmd.Context(), args[0])
		},
	}
}

func backupPruneCmd() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("keep") {
				keep = wire.Config().KeepBackups
			}
			return wire.BackupAdapter().Prune(cmd.Context(), keep)
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 0, "Number of backups to keep (default from config)")
	return cmd
}
