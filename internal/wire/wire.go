// Package wire provides dependency injection for the pnpimport
// application. It creates singleton services with lazy initialization.
package wire

import (
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/pnpimport/internal/adapters/backup"
	cliadapter "github.com/example/pnpimport/internal/adapters/cli"
	"github.com/example/pnpimport/internal/adapters/easyeda"
	"github.com/example/pnpimport/internal/adapters/openpnp"
	"github.com/example/pnpimport/internal/adapters/sqlite"
	"github.com/example/pnpimport/internal/app"
	"github.com/example/pnpimport/internal/config"
	"github.com/example/pnpimport/internal/core/geometry"
	"github.com/example/pnpimport/internal/db"
	"github.com/example/pnpimport/internal/ports/primary"
	"github.com/example/pnpimport/internal/ports/secondary"
)

var (
	cfg              *config.Config
	sessionID        string
	importService    primary.ImportService
	backupService    primary.BackupService
	inventoryService primary.InventoryService
	fetchCache       secondary.FetchCache
	once             sync.Once
)

// SessionID returns this process's session identifier. Every entry
// written during the run carries it.
func SessionID() string {
	once.Do(initServices)
	return sessionID
}

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// ImportService returns the singleton ImportService instance.
func ImportService() primary.ImportService {
	once.Do(initServices)
	return importService
}

// BackupService returns the singleton BackupService instance.
func BackupService() primary.BackupService {
	once.Do(initServices)
	return backupService
}

// InventoryService returns the singleton InventoryService instance.
func InventoryService() primary.InventoryService {
	once.Do(initServices)
	return inventoryService
}

// FetchCache returns the singleton payload cache.
func FetchCache() secondary.FetchCache {
	once.Do(initServices)
	return fetchCache
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	sessionID = uuid.NewString()

	configDir, err := config.ConfigDir()
	if err != nil {
		log.Fatalf("failed to locate config directory: %v", err)
	}
	cfg, err = config.LoadConfig(configDir)
	if err != nil {
		// First run without `pnpimport init`: fall back to defaults.
		cfg, err = config.Default()
		if err != nil {
			log.Fatalf("failed to build default config: %v", err)
		}
	}

	// Config store over the OpenPnP documents (secondary port).
	store, err := openpnp.Load(cfg.PackagesPath(), cfg.PartsPath())
	if err != nil {
		log.Fatalf("failed to load OpenPnP configuration: %v", err)
	}

	// Vendor fetcher, with a SQLite payload cache on top.
	fetcher := easyeda.NewFetcher(easyeda.NewClient())
	var cached secondary.VendorFetcher = fetcher
	database, err := db.GetDB()
	if err != nil {
		log.Printf("warning: fetch cache unavailable: %v", err)
	} else {
		fetchCache = sqlite.NewCacheRepository(database)
		ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
		cached = easyeda.NewCachingFetcher(fetcher, fetchCache, ttl)
	}

	backups := backup.NewManager(cfg.BackupDir, cfg.OpenPnPDir, sessionID,
		[]string{config.PackagesFileName, config.PartsFileName})
	locker := openpnp.NewDirLock(cfg.OpenPnPDir, sessionID)

	decode := func(payload []byte) ([]geometry.VendorPad, error) {
		return easyeda.DecodePads(payload)
	}

	// Create services (primary ports implementation)
	importService = app.NewImportService(store, fetcher, cached, decode, backups, locker)
	backupService = app.NewBackupService(backups, locker)
	inventoryService = app.NewInventoryService(store)
}

// ImportAdapter returns a new ImportAdapter reading from stdin and
// writing to stdout.
func ImportAdapter() *cliadapter.ImportAdapter {
	once.Do(initServices)
	return cliadapter.NewImportAdapter(importService, os.Stdout, os.Stdin)
}

// BackupAdapter returns a new BackupAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func BackupAdapter() *cliadapter.BackupAdapter {
	return BackupAdapterWithOutput(os.Stdout)
}

// BackupAdapterWithOutput returns a new BackupAdapter writing to the given output.
// This variant allows testing or alternate output destinations.
func BackupAdapterWithOutput(out io.Writer) *cliadapter.BackupAdapter {
	once.Do(initServices)
	return cliadapter.NewBackupAdapter(backupService, out)
}

// InventoryAdapter returns a new InventoryAdapter writing to stdout.
func InventoryAdapter() *cliadapter.InventoryAdapter {
	once.Do(initServices)
	return cliadapter.NewInventoryAdapter(inventoryService, os.Stdout)
}
