// Package resolve contains the pure cross-reference logic that decides,
// per BOM entry, whether a footprint must be created, reused, or skipped.
// No I/O; the caller gathers store facts and passes them in.
package resolve

import "strings"

// Action classifies what the session must do for one entry.
type Action string

const (
	// ActionCreateFootprint: footprint is unknown everywhere; fetch,
	// convert, and stage both a package and a part.
	ActionCreateFootprint Action = "create_footprint"

	// ActionReuseFootprint: package already persisted; stage only the
	// part if it is absent.
	ActionReuseFootprint Action = "reuse_footprint"

	// ActionReuseStaged: an earlier entry in this session already staged
	// the footprint; no duplicate fetch or conversion is needed.
	ActionReuseStaged Action = "reuse_staged"

	// ActionSkipExisting: the part already exists unchanged; an
	// idempotent re-run produces no new writes.
	ActionSkipExisting Action = "skip_existing"
)

// NormalizeKey is the dedup key for footprint names: trimmed and
// case-folded. Matching is case-insensitive, but the created footprint
// id keeps the first occurrence's trimmed spelling.
func NormalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Context carries the facts the decision table needs.
type Context struct {
	FootprintName string // raw vendor package name, already suffix-stripped
	PackageID     string // persisted package id matching the key, "" if none
	StagedID      string // package id staged earlier this session, "" if none
	PartExists    bool
	PartUnchanged bool // only meaningful when PartExists
}

// Decision is the resolver outcome: the action plus the package id the
// part must reference.
type Decision struct {
	Action    Action
	PackageID string
}

// Resolve applies the dedup decision table. Entries must be resolved in
// BOM input order so the first occurrence of a shared footprint is the
// one that performs the create.
func Resolve(ctx Context) Decision {
	if ctx.PartExists && ctx.PartUnchanged {
		id := ctx.PackageID
		if id == "" {
			id = ctx.StagedID
		}
		return Decision{Action: ActionSkipExisting, PackageID: id}
	}
	if ctx.PackageID != "" {
		return Decision{Action: ActionReuseFootprint, PackageID: ctx.PackageID}
	}
	if ctx.StagedID != "" {
		return Decision{Action: ActionReuseStaged, PackageID: ctx.StagedID}
	}
	return Decision{Action: ActionCreateFootprint, PackageID: strings.TrimSpace(ctx.FootprintName)}
}

// Session tracks footprints staged during the running session, keyed by
// normalized name. It is updated by the resolver's caller after each
// successful stage so later entries reuse instead of re-fetching.
type Session struct {
	staged map[string]string
}

// NewSession returns an empty staged-footprint index.
func NewSession() *Session {
	return &Session{staged: make(map[string]string)}
}

// StagedID returns the package id staged for the given footprint name,
// or "" if none.
func (s *Session) StagedID(name string) string {
	return s.staged[NormalizeKey(name)]
}

// MarkStaged records that a package was staged for the given footprint
// name.
func (s *Session) MarkStaged(name, packageID string) {
	s.staged[NormalizeKey(name)] = packageID
}
