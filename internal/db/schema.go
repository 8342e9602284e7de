package db

// SchemaSQL is the complete schema for the local fetch cache.
//
// The cache holds raw vendor API payloads keyed by LCSC part number so
// repeated imports of the same part skip the network. It is a pure
// cache: deleting the database file is always safe.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS vendor_cache (
	lcsc_id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	payload BLOB NOT NULL,
	fetched_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_vendor_cache_fetched_at ON vendor_cache(fetched_at);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
