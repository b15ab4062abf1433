package service

import (
	"errors"
	"testing"

	"github.com/dtammam/tasksync/internal/apperr"
)

func TestStatusAndMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"bad request", apperr.BadRequest("bad"), 400},
		{"unauthorized", apperr.Unauthorized("nope"), 401},
		{"forbidden", apperr.Forbidden("no"), 403},
		{"not found", apperr.NotFound("missing"), 404},
		{"conflict", apperr.Conflict("taken"), 409},
		{"internal", apperr.Internal(errors.New("boom")), 500},
		{"unmapped plain error", errors.New("plain"), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := statusAndMessage(tt.err)
			if code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			if msg == "" {
				t.Error("expected a non-empty message")
			}
		})
	}
}

func TestPush_RejectsOversizedBatch(t *testing.T) {
	s := Sync{}
	changes := make([]Change, maxPushChanges+1)
	_, err := s.Push(nil, nil, changes) //nolint:staticcheck // nil ctx/c never dereferenced before the size check
	if err == nil {
		t.Fatal("expected an error for an oversized batch")
	}
	ae, ok := apperr.As(err)
	if !ok || ae.Kind != apperr.KindBadRequest {
		t.Errorf("expected a bad_request error, got %v", err)
	}
}
