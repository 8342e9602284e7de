package workqueue

import (
	"errors"
	"testing"

	"github.com/example/pnpimport/internal/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		want bool
	}{
		{"pending to fetching", StatusPending, StatusFetching, true},
		{"pending straight to preview (no fetch needed)", StatusPending, StatusPreviewReady, true},
		{"fetching to preview", StatusFetching, StatusPreviewReady, true},
		{"fetching to fetch error", StatusFetching, StatusFetchError, true},
		{"preview to confirmed", StatusPreviewReady, StatusConfirmed, true},
		{"preview to skipped", StatusPreviewReady, StatusSkipped, true},
		{"preview to validation error (staging rejected)", StatusPreviewReady, StatusValidationError, true},
		{"preview to fetch error", StatusPreviewReady, StatusFetchError, true},
		{"confirmed to written", StatusConfirmed, StatusWritten, true},
		{"pending cannot be written", StatusPending, StatusWritten, false},
		{"written is terminal", StatusWritten, StatusDiscarded, false},
		{"skipped cannot confirm", StatusSkipped, StatusConfirmed, false},
		{"fetch error cannot retry into preview", StatusFetchError, StatusPreviewReady, false},
		{"any non-written state can discard", StatusConfirmed, StatusDiscarded, true},
		{"fetch error can discard", StatusFetchError, StatusDiscarded, true},
		{"discarded stays discarded", StatusDiscarded, StatusDiscarded, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestItemTransitionRejectsIllegalEdge(t *testing.T) {
	it := &Item{Status: StatusPending}

	if err := it.Transition(StatusWritten); err == nil {
		t.Error("Transition(pending -> written) succeeded, want error")
	}
	if it.Status != StatusPending {
		t.Errorf("status after rejected transition = %s, want pending", it.Status)
	}

	if err := it.Transition(StatusFetching); err != nil {
		t.Errorf("Transition(pending -> fetching) error = %v", err)
	}
}

func TestItemFailClassifiesErrors(t *testing.T) {
	fetchItem := &Item{Status: StatusFetching}
	fetchItem.Fail(&models.FetchError{LCSCID: "C60490", Err: errors.New("timeout")})
	if fetchItem.Status != StatusFetchError {
		t.Errorf("status = %s, want fetch_error", fetchItem.Status)
	}

	valItem := &Item{Status: StatusFetching}
	valItem.Fail(models.Validationf("footprint has no pads"))
	if valItem.Status != StatusValidationError {
		t.Errorf("status = %s, want validation_error", valItem.Status)
	}
}

func TestItemFailFollowsDeclaredEdges(t *testing.T) {
	// Staging can be rejected after preview, so failure from
	// PreviewReady must be a legal edge.
	it := &Item{Status: StatusPreviewReady}
	it.Fail(models.Validationf("part references unknown package"))
	if it.Status != StatusValidationError {
		t.Errorf("status = %s, want validation_error", it.Status)
	}
	if !CanTransition(StatusPreviewReady, StatusValidationError) {
		t.Error("preview_ready -> validation_error not in the declared edge set")
	}

	// A terminal item keeps its status but records the error.
	written := &Item{Status: StatusWritten}
	written.Fail(models.Validationf("late failure"))
	if written.Status != StatusWritten {
		t.Errorf("status = %s, want written unchanged", written.Status)
	}
	if written.Err == nil {
		t.Error("Err not recorded on terminal item")
	}
}

func TestQueuePreservesBomOrder(t *testing.T) {
	q := New([]models.BomEntry{
		{Reference: "R1"},
		{Reference: "C5"},
		{Reference: "U2"},
	})

	want := []string{"R1", "C5", "U2"}
	for i, ref := range want {
		if q.Items[i].Entry.Reference != ref {
			t.Errorf("Items[%d] = %q, want %q", i, q.Items[i].Entry.Reference, ref)
		}
		if q.Items[i].Status != StatusPending {
			t.Errorf("Items[%d].Status = %s, want pending", i, q.Items[i].Status)
		}
	}
}

func TestQueueDiscardSparesWritten(t *testing.T) {
	q := New([]models.BomEntry{{Reference: "R1"}, {Reference: "R2"}, {Reference: "R3"}})
	q.Items[0].Status = StatusWritten
	q.Items[1].Status = StatusConfirmed
	q.Items[2].Status = StatusFetchError

	q.Discard()

	if q.Items[0].Status != StatusWritten {
		t.Errorf("written item discarded: status = %s", q.Items[0].Status)
	}
	if q.Items[1].Status != StatusDiscarded || q.Items[2].Status != StatusDiscarded {
		t.Errorf("statuses = %s, %s, want both discarded", q.Items[1].Status, q.Items[2].Status)
	}
}

func TestQueueConfirmed(t *testing.T) {
	q := New([]models.BomEntry{{Reference: "R1"}, {Reference: "R2"}, {Reference: "R3"}})
	q.Items[0].Status = StatusConfirmed
	q.Items[2].Status = StatusConfirmed

	got := q.Confirmed()
	if len(got) != 2 {
		t.Fatalf("len(Confirmed()) = %d, want 2", len(got))
	}
	if got[0].Entry.Reference != "R1" || got[1].Entry.Reference != "R3" {
		t.Errorf("confirmed order = %q, %q, want R1, R3", got[0].Entry.Reference, got[1].Entry.Reference)
	}
}
