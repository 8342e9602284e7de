// Package workqueue contains the session work queue: finite-state
// tracking of each BOM entry from fetch through commit. Transition
// rules are pure; the application service drives them.
package workqueue

import (
	"fmt"

	"github.com/example/pnpimport/internal/core/resolve"
	"github.com/example/pnpimport/internal/models"
)

// Status is the processing state of one work item.
type Status string

const (
	StatusPending         Status = "pending"
	StatusFetching        Status = "fetching"
	StatusPreviewReady    Status = "preview_ready"
	StatusConfirmed       Status = "confirmed"
	StatusSkipped         Status = "skipped"
	StatusFetchError      Status = "fetch_error"
	StatusValidationError Status = "validation_error"
	StatusWritten         Status = "written"
	StatusDiscarded       Status = "discarded"
)

// transitions is the legal edge set. Discarded is additionally reachable
// from every non-written state (handled in CanTransition).
var transitions = map[Status][]Status{
	StatusPending:      {StatusFetching, StatusPreviewReady, StatusFetchError, StatusValidationError, StatusSkipped},
	StatusFetching:     {StatusPreviewReady, StatusFetchError, StatusValidationError},
	StatusPreviewReady: {StatusConfirmed, StatusSkipped, StatusFetchError, StatusValidationError},
	StatusConfirmed:    {StatusWritten},
}

// CanTransition reports whether moving from one status to another is
// legal. Error states and Skipped are terminal for the item; Written is
// terminal absolutely.
func CanTransition(from, to Status) bool {
	if to == StatusDiscarded {
		return from != StatusWritten && from != StatusDiscarded
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether a status ends processing for the item.
func Terminal(s Status) bool {
	switch s {
	case StatusSkipped, StatusFetchError, StatusValidationError, StatusWritten, StatusDiscarded:
		return true
	}
	return false
}

// Item wraps one BOM entry with its processing state. An item is created
// when the entry enters the queue and discarded when the session ends.
type Item struct {
	Entry    models.BomEntry
	Status   Status
	Decision resolve.Decision
	Package  *models.Package // converted footprint, nil unless the item creates one
	Part     *models.Part    // staged part, nil for skip outcomes
	Err      error           // set for fetch_error / validation_error
}

// Transition moves the item to a new status, rejecting illegal edges.
func (it *Item) Transition(to Status) error {
	if !CanTransition(it.Status, to) {
		return fmt.Errorf("illegal transition %s -> %s for %s", it.Status, to, it.Entry.Reference)
	}
	it.Status = to
	return nil
}

// Fail marks the item with a terminal error status derived from the
// error type: FetchError for fetch failures, ValidationError for
// geometry/payload problems. The error is recorded even when the item
// is already terminal; the status only moves along a declared edge.
// Sibling items are unaffected.
func (it *Item) Fail(err error) {
	it.Err = err
	to := StatusValidationError
	if _, ok := err.(*models.FetchError); ok {
		to = StatusFetchError
	}
	if CanTransition(it.Status, to) {
		it.Status = to
	}
}

// Queue is the ordered set of work items for one session. Order is BOM
// input order and is never reordered.
type Queue struct {
	Items []*Item
}

// New builds a queue from normalized BOM entries, all Pending.
func New(entries []models.BomEntry) *Queue {
	items := make([]*Item, len(entries))
	for i, e := range entries {
		items[i] = &Item{Entry: e, Status: StatusPending}
	}
	return &Queue{Items: items}
}

// Confirmed returns the items staged for commit, in queue order.
func (q *Queue) Confirmed() []*Item {
	var out []*Item
	for _, it := range q.Items {
		if it.Status == StatusConfirmed {
			out = append(out, it)
		}
	}
	return out
}

// Discard aborts the session: every non-written item becomes Discarded.
func (q *Queue) Discard() {
	for _, it := range q.Items {
		if CanTransition(it.Status, StatusDiscarded) {
			it.Status = StatusDiscarded
		}
	}
}

// CountByStatus tallies items per status for summary output.
func (q *Queue) CountByStatus() map[Status]int {
	counts := make(map[Status]int)
	for _, it := range q.Items {
		counts[it.Status]++
	}
	return counts
}
