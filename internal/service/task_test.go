package service

import (
	"testing"

	"github.com/dtammam/tasksync/internal/store"
)

func ptrStatus(s store.TaskStatus) *store.TaskStatus { return &s }
func ptrInt64(n int64) *int64                         { return &n }

// TestResolveCompletedTs exercises the completion-timestamp rule (§4.3),
// including the recurring roll-forward exception where an explicit
// completed_ts survives alongside a status="pending" transition.
func TestResolveCompletedTs(t *testing.T) {
	existingTs := int64(1000)

	tests := []struct {
		name      string
		existing  *store.Task
		patch     TaskMetaPatch
		wantTs    *int64
		wantClear bool
	}{
		{
			name:      "no status and no explicit ts leaves unchanged",
			existing:  &store.Task{},
			patch:     TaskMetaPatch{},
			wantTs:    nil,
			wantClear: false,
		},
		{
			name:      "explicit completed_ts is kept verbatim regardless of status",
			existing:  &store.Task{},
			patch:     TaskMetaPatch{Status: ptrStatus(store.StatusPending), CompletedTs: ptrInt64(42)},
			wantTs:    ptrInt64(42),
			wantClear: false,
		},
		{
			name:      "marking done with no prior completion stamps now",
			existing:  &store.Task{CompletedTs: nil},
			patch:     TaskMetaPatch{Status: ptrStatus(store.StatusDone)},
			wantTs:    nil, // stamped with syncx.NowMs(), can't compare exactly; checked separately below
			wantClear: false,
		},
		{
			name:      "marking done when already completed preserves existing value",
			existing:  &store.Task{CompletedTs: &existingTs},
			patch:     TaskMetaPatch{Status: ptrStatus(store.StatusDone)},
			wantTs:    nil,
			wantClear: false,
		},
		{
			name:      "reverting to pending with no explicit ts clears completion",
			existing:  &store.Task{CompletedTs: &existingTs},
			patch:     TaskMetaPatch{Status: ptrStatus(store.StatusPending)},
			wantTs:    nil,
			wantClear: true,
		},
		{
			name:      "cancelling with no explicit ts clears completion",
			existing:  &store.Task{CompletedTs: &existingTs},
			patch:     TaskMetaPatch{Status: ptrStatus(store.StatusCancelled)},
			wantTs:    nil,
			wantClear: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotTs, gotClear := resolveCompletedTs(tt.existing, tt.patch)
			if gotClear != tt.wantClear {
				t.Errorf("clear = %v, want %v", gotClear, tt.wantClear)
			}
			if tt.name == "marking done with no prior completion stamps now" {
				if gotTs == nil {
					t.Fatal("expected a freshly stamped completed_ts, got nil")
				}
				return
			}
			if tt.name == "marking done when already completed preserves existing value" {
				if gotTs != nil {
					t.Errorf("expected nil ts (preserve existing), got %v", *gotTs)
				}
				return
			}
			switch {
			case tt.wantTs == nil && gotTs != nil:
				t.Errorf("ts = %v, want nil", *gotTs)
			case tt.wantTs != nil && (gotTs == nil || *gotTs != *tt.wantTs):
				t.Errorf("ts = %v, want %v", gotTs, *tt.wantTs)
			}
		})
	}
}
