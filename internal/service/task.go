package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/dtammam/tasksync/internal/apperr"
	"github.com/dtammam/tasksync/internal/authz"
	"github.com/dtammam/tasksync/internal/reqctx"
	"github.com/dtammam/tasksync/internal/store"
	"github.com/dtammam/tasksync/internal/syncx"
)

// Tasks wraps the Store for the Task service (§4.3), the largest and
// most invariant-heavy component in the system.
type Tasks struct {
	DB store.Execer
}

// CreateTaskInput carries the fields of POST /tasks. ID is the
// idempotency anchor (§4.3 step 4): the client may supply one, or leave
// it blank to have the server generate a UUID.
type CreateTaskInput struct {
	ID             string
	Title          string
	ListID         string
	MyDay          bool
	TaskOrder      *string
	URL            *string
	RecurRule      *string
	Attachments    *string
	DueDate        *string
	Notes          *string
	AssigneeUserID *string
}

// CreateResult distinguishes a freshly inserted row from a replayed
// idempotent create (§4.3 step 7, §7 status code 200 vs 201).
type CreateResult struct {
	Task    *store.Task
	Created bool
}

func (s Tasks) Create(ctx context.Context, c *reqctx.Ctx, in CreateTaskInput) (*CreateResult, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.BadRequest("title is required")
	}

	list, err := store.GetList(ctx, s.DB, c.SpaceID, in.ListID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if list == nil {
		return nil, apperr.NotFound("list not found")
	}

	if !c.IsAdmin() {
		ok, err := store.HasGrant(ctx, s.DB, c.SpaceID, in.ListID, c.UserID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if !ok {
			return nil, apperr.Forbidden("no grant on list")
		}
	}

	assignee := in.AssigneeUserID
	if assignee == nil || strings.TrimSpace(*assignee) == "" {
		uid := c.UserID
		assignee = &uid
	}
	if _, ok, err := store.GetRole(ctx, s.DB, c.SpaceID, *assignee); err != nil {
		return nil, apperr.Internal(err)
	} else if !ok {
		return nil, apperr.NotFound("assignee is not a member of this space")
	}

	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}

	myDay := in.MyDay
	if !c.IsAdmin() {
		myDay = false // contributors may never set my_day at creation (§4.3 step 5)
	}

	order := "z"
	if in.TaskOrder != nil && strings.TrimSpace(*in.TaskOrder) != "" {
		order = *in.TaskOrder
	}

	now := syncx.NowMs()
	createdBy := c.UserID
	t := store.Task{
		ID:                   id,
		SpaceID:              c.SpaceID,
		Title:                title,
		Status:               store.StatusPending,
		ListID:               in.ListID,
		MyDay:                myDay,
		TaskOrder:            order,
		UpdatedTs:            now,
		CreatedTs:            now,
		CompletedTs:          nil,
		URL:                  in.URL,
		RecurRule:            in.RecurRule,
		Attachments:          in.Attachments,
		DueDate:              in.DueDate,
		OccurrencesCompleted: 0,
		Notes:                in.Notes,
		AssigneeUserID:       assignee,
		CreatedByUserID:      &createdBy,
	}

	created, err := store.CreateTask(ctx, s.DB, t)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if created {
		return &CreateResult{Task: &t, Created: true}, nil
	}

	// id already existed: fetch it and report Existed instead of Created.
	existing, err := store.GetTask(ctx, s.DB, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if existing == nil {
		return nil, apperr.Internal(nil)
	}
	if existing.SpaceID != c.SpaceID {
		return nil, apperr.Conflict("id already used in another space")
	}
	return &CreateResult{Task: existing, Created: false}, nil
}

// TaskMetaPatch carries the PATCH /tasks/:id fields with coalesce
// semantics: a nil pointer means "leave unchanged" (§9).
type TaskMetaPatch struct {
	Title                *string
	Status               *store.TaskStatus
	ListID               *string
	MyDay                *bool
	URL                  *string
	RecurRule            *string
	Attachments          *string
	DueDate              *string
	OccurrencesCompleted *int
	Notes                *string
	AssigneeUserID       *string
	CompletedTs          *int64
}

func (s Tasks) UpdateMeta(ctx context.Context, c *reqctx.Ctx, id string, p TaskMetaPatch) (*store.Task, error) {
	existing, err := store.GetTask(ctx, s.DB, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if existing == nil || existing.SpaceID != c.SpaceID {
		return nil, apperr.NotFound("task not found")
	}

	if p.Status != nil && !p.Status.Valid() {
		return nil, apperr.BadRequest("invalid status")
	}
	if p.ListID != nil {
		l, err := store.GetList(ctx, s.DB, c.SpaceID, *p.ListID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if l == nil {
			return nil, apperr.NotFound("list not found")
		}
	}

	if !c.IsAdmin() {
		if existing.CreatedByUserID == nil || *existing.CreatedByUserID != c.UserID {
			return nil, apperr.Forbidden("not task owner")
		}
		if p.MyDay != nil && *p.MyDay {
			return nil, apperr.Forbidden("contributors may not set my_day")
		}
		p.MyDay = nil // stripped from patch either way (§4.3: reject or strip)
		if p.AssigneeUserID != nil {
			current := ""
			if existing.AssigneeUserID != nil {
				current = *existing.AssigneeUserID
			}
			if *p.AssigneeUserID != current {
				return nil, apperr.Forbidden("contributors may not reassign tasks")
			}
		}
		if p.ListID != nil && *p.ListID != existing.ListID {
			ok, err := store.HasGrant(ctx, s.DB, c.SpaceID, *p.ListID, c.UserID)
			if err != nil {
				return nil, apperr.Internal(err)
			}
			if !ok {
				return nil, apperr.Forbidden("no grant on target list")
			}
		}
	}

	if p.AssigneeUserID != nil {
		if _, ok, err := store.GetRole(ctx, s.DB, c.SpaceID, *p.AssigneeUserID); err != nil {
			return nil, apperr.Internal(err)
		} else if !ok {
			return nil, apperr.NotFound("assignee is not a member of this space")
		}
	}

	completedTs, clearCompletedTs := resolveCompletedTs(existing, p)

	now := syncx.NowMs()
	updated, err := store.UpdateTaskMeta(ctx, s.DB, id, store.TaskMetaUpdate{
		Title:                p.Title,
		Status:               p.Status,
		ListID:               p.ListID,
		MyDay:                p.MyDay,
		URL:                  p.URL,
		RecurRule:            p.RecurRule,
		Attachments:          p.Attachments,
		DueDate:              p.DueDate,
		OccurrencesCompleted: p.OccurrencesCompleted,
		Notes:                p.Notes,
		AssigneeUserID:       p.AssigneeUserID,
		CompletedTs:          completedTs,
		ClearCompletedTs:     clearCompletedTs,
		UpdatedTs:            now,
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return updated, nil
}

// resolveCompletedTs implements the completion-timestamp rule verbatim
// from §4.3, including the recurring roll-forward exception: an
// explicit completed_ts supplied alongside status="pending" and an
// advanced due_date must be retained rather than cleared.
func resolveCompletedTs(existing *store.Task, p TaskMetaPatch) (ts *int64, clear bool) {
	if p.CompletedTs != nil {
		// Covers the recurring roll-forward exception too: status=pending
		// with an advanced due_date still keeps the supplied completed_ts
		// rather than falling through to the clear-on-pending branch below.
		return p.CompletedTs, false
	}
	if p.Status == nil || *p.Status == existing.Status {
		return nil, false // status not changing: leave unchanged
	}
	if *p.Status == store.StatusDone {
		if existing.CompletedTs != nil {
			return nil, false // preserve existing
		}
		now := syncx.NowMs()
		return &now, false
	}
	return nil, true // pending or cancelled with no explicit ts: clear
}

func (s Tasks) UpdateStatus(ctx context.Context, c *reqctx.Ctx, id string, status store.TaskStatus) (*store.Task, error) {
	if !status.Valid() {
		return nil, apperr.BadRequest("invalid status")
	}
	existing, err := store.GetTask(ctx, s.DB, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if existing == nil || existing.SpaceID != c.SpaceID {
		return nil, apperr.NotFound("task not found")
	}
	if !c.IsAdmin() && !authz.OwnsTask(c, existing) {
		return nil, apperr.Forbidden("not task owner")
	}

	completedTs, clearCompletedTs := resolveCompletedTs(existing, TaskMetaPatch{Status: &status})
	now := syncx.NowMs()
	updated, err := store.UpdateTaskStatus(ctx, s.DB, id, status, completedTs, clearCompletedTs, now)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return updated, nil
}

func (s Tasks) Delete(ctx context.Context, c *reqctx.Ctx, id string) error {
	existing, err := store.GetTask(ctx, s.DB, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if existing == nil || existing.SpaceID != c.SpaceID {
		return apperr.NotFound("task not found")
	}
	if !c.IsAdmin() && !authz.OwnsTask(c, existing) {
		return apperr.Forbidden("not task owner")
	}
	deleted, err := store.DeleteTask(ctx, s.DB, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if !deleted {
		return apperr.NotFound("task not found")
	}
	return nil
}

// ListVisible returns the tasks c may see, sorted by task_order (§4.3
// list_tasks).
func (s Tasks) ListVisible(ctx context.Context, c *reqctx.Ctx) ([]store.Task, error) {
	all, err := store.ListVisibleTasksForSpace(ctx, s.DB, c.SpaceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if c.IsAdmin() {
		return all, nil
	}
	granted, err := store.ListListIDsGrantedTo(ctx, s.DB, c.SpaceID, c.UserID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	out := make([]store.Task, 0, len(all))
	for _, t := range all {
		if authz.VisibleTask(c, granted, &t) {
			out = append(out, t)
		}
	}
	return out, nil
}
