package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/pnpimport/internal/cli"
	"github.com/example/pnpimport/internal/version"
)

func main() {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "pnpimport",
		Short:   "pnpimport - vendor footprint importer for OpenPnP",
		Version: version.String(),
		Long: `pnpimport imports vendor footprint data into an OpenPnP configuration.
It fetches package geometry by LCSC part number, converts it to OpenPnP
coordinates, and splices new packages and parts into packages.xml and
parts.xml without disturbing the rest of the configuration.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
				&slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.ImportCmd())
	rootCmd.AddCommand(cli.BackupCmd())
	rootCmd.AddCommand(cli.RestoreCmd())
	rootCmd.AddCommand(cli.PackagesCmd())
	rootCmd.AddCommand(cli.PartsCmd())
	rootCmd.AddCommand(cli.CacheCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
