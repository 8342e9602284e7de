package easyeda

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/pnpimport/internal/models"
	"github.com/example/pnpimport/internal/ports/secondary"
)

// Fetcher implements secondary.VendorFetcher over the EasyEDA API.
type Fetcher struct {
	client *Client
}

// NewFetcher creates a vendor fetcher backed by the public API.
func NewFetcher(client *Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch retrieves the footprint payload for a part.
func (f *Fetcher) Fetch(ctx context.Context, lcscID string) (*secondary.ComponentRecord, error) {
	comp, err := f.client.Fetch(ctx, lcscID)
	if err != nil {
		return nil, &models.FetchError{LCSCID: NormalizeLCSCID(lcscID), Err: err}
	}
	return &secondary.ComponentRecord{
		LCSCID:  comp.LCSCID,
		Title:   comp.Title,
		Payload: comp.Payload,
	}, nil
}

// CachingFetcher wraps a VendorFetcher with a payload cache. Hits
// younger than maxAge skip the network; every successful fetch
// refreshes the cache.
type CachingFetcher struct {
	fetcher secondary.VendorFetcher
	cache   secondary.FetchCache
	maxAge  time.Duration
}

// NewCachingFetcher composes a fetcher with a cache.
func NewCachingFetcher(fetcher secondary.VendorFetcher, cache secondary.FetchCache, maxAge time.Duration) *CachingFetcher {
	return &CachingFetcher{fetcher: fetcher, cache: cache, maxAge: maxAge}
}

// Fetch consults the cache first and falls through to the wrapped
// fetcher on a miss. Cache errors degrade to a fetch, never fail it.
func (f *CachingFetcher) Fetch(ctx context.Context, lcscID string) (*secondary.ComponentRecord, error) {
	lcscID = NormalizeLCSCID(lcscID)

	cached, err := f.cache.Get(ctx, lcscID, f.maxAge)
	if err != nil {
		slog.Warn("cache read failed, fetching from vendor", "lcsc_id", lcscID, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	record, err := f.fetcher.Fetch(ctx, lcscID)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Put(ctx, record); err != nil {
		slog.Warn("cache write failed", "lcsc_id", lcscID, "error", err)
	}
	return record, nil
}
