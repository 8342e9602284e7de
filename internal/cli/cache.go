package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/pnpimport/internal/wire"
)

// CacheCmd returns the cache command group.
func CacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the vendor payload cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all cached vendor payloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache := wire.FetchCache()
			if cache == nil {
				fmt.Println("Cache is not available")
				return nil
			}
			deleted, err := cache.Clear(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to clear cache: %w", err)
			}
			fmt.Printf("✓ Removed %d cached payloads\n", deleted)
			return nil
		},
	})
	return cmd
}
