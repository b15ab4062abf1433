package service

import (
	"context"

	"github.com/dtammam/tasksync/internal/apperr"
	"github.com/dtammam/tasksync/internal/reqctx"
	"github.com/dtammam/tasksync/internal/store"
	"github.com/dtammam/tasksync/internal/syncx"
)

// maxPushChanges is the hard cap on a single Push batch (§4.5).
const maxPushChanges = 500

// Sync wraps the Store for the delta-v1 pull/push protocol (§4.5). It
// reuses Lists and Tasks internally so a Push change goes through the
// exact same authorization and state-transition logic a single-entity
// endpoint would.
type Sync struct {
	DB    store.Execer
	Lists Lists
	Tasks Tasks
}

const Protocol = "delta-v1"

// PullResult is the payload of POST /sync/pull.
type PullResult struct {
	Protocol string
	CursorTs int64
	Lists    []store.List
	Tasks    []store.Task
}

// Pull returns the caller's visible lists in full and the subset of
// visible tasks updated at or after sinceTs, plus a cursor computed
// over the *entire* visible set (§4.5) so it stays monotone even when
// the delta page is empty.
func (s Sync) Pull(ctx context.Context, c *reqctx.Ctx, sinceTs *int64) (*PullResult, error) {
	lists, err := s.Lists.ListVisible(ctx, c)
	if err != nil {
		return nil, err
	}
	visible, err := s.Tasks.ListVisible(ctx, c)
	if err != nil {
		return nil, err
	}

	var cursor int64
	delta := make([]store.Task, 0, len(visible))
	for _, t := range visible {
		cursor = syncx.MaxMs(cursor, t.UpdatedTs)
		if sinceTs == nil || t.UpdatedTs >= *sinceTs {
			delta = append(delta, t)
		}
	}

	return &PullResult{Protocol: Protocol, CursorTs: cursor, Lists: lists, Tasks: delta}, nil
}

// ChangeKind tags a Push batch entry (§9 "tagged-variant messages with
// explicit kind/op_id — no dynamic dispatch").
type ChangeKind string

const (
	ChangeCreateTask       ChangeKind = "CreateTask"
	ChangeUpdateTask       ChangeKind = "UpdateTask"
	ChangeUpdateTaskStatus ChangeKind = "UpdateTaskStatus"
)

// Change is one entry of a Push batch.
type Change struct {
	Kind   ChangeKind
	OpID   string
	TaskID string // used by UpdateTask / UpdateTaskStatus
	Create CreateTaskInput
	Meta   TaskMetaPatch
	Status store.TaskStatus
}

// Rejection is one entry of Push's rejected[] array.
type Rejection struct {
	OpID       string
	StatusCode int
	Error      string
}

// PushResult is the payload of POST /sync/push.
type PushResult struct {
	Protocol string
	CursorTs int64
	Applied  []store.Task
	Rejected []Rejection
}

// Push applies changes in submitted order with no rollback between
// them (§4.5): each change is independently authorized and a failure
// only rejects that one change. The op_id is echoed verbatim so the
// client can map rejections back to local operations.
func (s Sync) Push(ctx context.Context, c *reqctx.Ctx, changes []Change) (*PushResult, error) {
	if len(changes) > maxPushChanges {
		return nil, apperr.BadRequest("too many changes in one batch")
	}

	applied := make([]store.Task, 0, len(changes))
	rejected := make([]Rejection, 0)

	for _, ch := range changes {
		task, err := s.applyOne(ctx, c, ch)
		if err != nil {
			code, msg := statusAndMessage(err)
			rejected = append(rejected, Rejection{OpID: ch.OpID, StatusCode: code, Error: msg})
			continue
		}
		applied = append(applied, *task)
	}

	pull, err := s.Pull(ctx, c, nil)
	if err != nil {
		return nil, err
	}

	return &PushResult{Protocol: Protocol, CursorTs: pull.CursorTs, Applied: applied, Rejected: rejected}, nil
}

func (s Sync) applyOne(ctx context.Context, c *reqctx.Ctx, ch Change) (*store.Task, error) {
	switch ch.Kind {
	case ChangeCreateTask:
		res, err := s.Tasks.Create(ctx, c, ch.Create)
		if err != nil {
			return nil, err
		}
		return res.Task, nil
	case ChangeUpdateTask:
		return s.Tasks.UpdateMeta(ctx, c, ch.TaskID, ch.Meta)
	case ChangeUpdateTaskStatus:
		return s.Tasks.UpdateStatus(ctx, c, ch.TaskID, ch.Status)
	default:
		return nil, apperr.BadRequest("unknown change kind")
	}
}

func statusAndMessage(err error) (int, string) {
	ae, ok := apperr.As(err)
	if !ok {
		return 500, "internal error"
	}
	switch ae.Kind {
	case apperr.KindBadRequest:
		return 400, ae.Message
	case apperr.KindUnauthorized:
		return 401, ae.Message
	case apperr.KindForbidden:
		return 403, ae.Message
	case apperr.KindNotFound:
		return 404, ae.Message
	case apperr.KindConflict:
		return 409, ae.Message
	default:
		return 500, "internal error"
	}
}
