package secondary

import (
	"context"
	"time"

	"github.com/example/pnpimport/internal/core/geometry"
)

// ComponentRecord is a raw vendor footprint payload for one LCSC part.
type ComponentRecord struct {
	LCSCID  string
	Title   string
	Payload []byte
}

// VendorFetcher defines the secondary port for retrieving vendor
// footprint data by LCSC part number.
type VendorFetcher interface {
	// Fetch retrieves the footprint payload for a part.
	Fetch(ctx context.Context, lcscID string) (*ComponentRecord, error)
}

// PayloadDecoder extracts vendor pads from a raw footprint payload.
type PayloadDecoder func(payload []byte) ([]geometry.VendorPad, error)

// FetchCache defines the secondary port for the local payload cache.
type FetchCache interface {
	// Get returns a cached payload no older than maxAge, or nil on a
	// miss. A zero maxAge disables the age check.
	Get(ctx context.Context, lcscID string, maxAge time.Duration) (*ComponentRecord, error)

	// Put stores or refreshes a payload.
	Put(ctx context.Context, record *ComponentRecord) error

	// Clear removes all cached payloads and returns how many were
	// deleted.
	Clear(ctx context.Context) (int, error)
}
