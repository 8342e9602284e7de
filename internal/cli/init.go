package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/pnpimport/internal/config"
)

// InitCmd returns the init command.
func InitCmd() *cobra.Command {
	var openpnpDir string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the pnpimport configuration",
		Long: `Init discovers the OpenPnP configuration directory and writes
~/.pnpimport/config.json with the defaults. Safe to re-run; an existing
config is not overwritten unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			configDir, err := config.ConfigDir()
			if err != nil {
				return err
			}

			if _, err := config.LoadConfig(configDir); err == nil && !force {
				fmt.Println("Config already exists. Use --force to overwrite.")
				return nil
			}

			cfg, err := config.Default()
			if err != nil {
				return err
			}
			if openpnpDir != "" {
				cfg.OpenPnPDir = openpnpDir
			}

			if _, err := os.Stat(cfg.OpenPnPDir); err != nil {
				fmt.Printf("⚠ OpenPnP directory %s not found; set it with --openpnp-dir\n", cfg.OpenPnPDir)
			}

			if err := config.SaveConfig(configDir, cfg); err != nil {
				return err
			}

			fmt.Printf("✓ Wrote %s/config.json\n", configDir)
			fmt.Printf("  OpenPnP dir: %s\n", cfg.OpenPnPDir)
			fmt.Printf("  Backups:     %s\n", cfg.BackupDir)
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Overwrite an existing config")
	cmd.Flags().StringVar(&openpnpDir, "openpnp-dir", "", "OpenPnP configuration directory")
	return cmd
}
