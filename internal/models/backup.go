package models

import "time"

// BackupTimestampLayout names snapshot directories, e.g. "20260830_142501".
const BackupTimestampLayout = "20060102_150405"

// BackupManifest records the contents of one snapshot: which files were
// copied and their content checksums. Manifests are immutable once
// written.
type BackupManifest struct {
	Timestamp   string            `json:"timestamp"`
	SessionID   string            `json:"session_id,omitempty"`
	Description string            `json:"description,omitempty"`
	SourceDir   string            `json:"source_dir"`
	Files       map[string]string `json:"files"` // filename -> sha256 hex digest
}

// Time parses the manifest timestamp. Returns the zero time if the
// timestamp is malformed.
func (m *BackupManifest) Time() time.Time {
	t, err := time.ParseInLocation(BackupTimestampLayout, m.Timestamp, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}
