// Package service implements the List, Task, Member/Grant, Sync, and
// Backup components (§4.2-§4.6): the business logic that sits between
// the HTTP layer and the Store, enforcing every invariant the
// transport and persistence layers don't know about.
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

// Lists wraps the Store for the List service (§4.2).
type Lists struct {
	DB store.Execer
}

// ListVisible returns the lists c may see: every list in the space for
// an admin, only granted lists for a contributor.
func (s Lists) ListVisible(ctx context.Context, c *reqctx.Ctx) ([]store.List, error) {
	all, err := store.ListListsForSpace(ctx, s.DB, c.SpaceID)
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
	out := make([]store.List, 0, len(all))
	for _, l := range all {
		if authz.VisibleList(c, granted, &l) {
			out = append(out, l)
		}
	}
	return out, nil
}

// CreateListInput carries the fields of POST /lists.
type CreateListInput struct {
	Name  string
	Icon  *string
	Color *string
	Order *string
}

// Create creates a list; admin-only (§4.2).
func (s Lists) Create(ctx context.Context, c *reqctx.Ctx, in CreateListInput) (*store.List, error) {
	if !authz.IsAdmin(c) {
		return nil, apperr.Forbidden("admin required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.BadRequest("name is required")
	}
	order := "z"
	if in.Order != nil && strings.TrimSpace(*in.Order) != "" {
		order = *in.Order
	}
	l := store.List{
		ID:        uuid.NewString(),
		SpaceID:   c.SpaceID,
		Name:      name,
		Icon:      in.Icon,
		Color:     in.Color,
		ListOrder: order,
	}
	if err := store.CreateList(ctx, s.DB, l); err != nil {
		return nil, apperr.Internal(err)
	}
	_ = store.RecordAudit(ctx, s.DB, uuid.NewString(), c.SpaceID, c.UserID, "list.create", l.ID, syncx.NowMs())
	return &l, nil
}

// UpdateListInput carries the PATCH /lists/:id fields; nil means "keep".
type UpdateListInput struct {
	Name  *string
	Icon  *string
	Color *string
	Order *string
}

func (s Lists) Update(ctx context.Context, c *reqctx.Ctx, id string, in UpdateListInput) (*store.List, error) {
	if !authz.IsAdmin(c) {
		return nil, apperr.Forbidden("admin required")
	}
	existing, err := store.GetList(ctx, s.DB, c.SpaceID, id)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if existing == nil {
		return nil, apperr.NotFound("list not found")
	}
	updated, err := store.UpdateList(ctx, s.DB, c.SpaceID, id, in.Name, in.Icon, in.Color, in.Order)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	_ = store.RecordAudit(ctx, s.DB, uuid.NewString(), c.SpaceID, c.UserID, "list.update", id, syncx.NowMs())
	return updated, nil
}

// Delete deletes a list; forbidden while any task still references it
// (§4.2 delete-is-empty invariant).
func (s Lists) Delete(ctx context.Context, c *reqctx.Ctx, id string) error {
	if !authz.IsAdmin(c) {
		return apperr.Forbidden("admin required")
	}
	existing, err := store.GetList(ctx, s.DB, c.SpaceID, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if existing == nil {
		return apperr.NotFound("list not found")
	}
	n, err := store.CountTasksInList(ctx, s.DB, c.SpaceID, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if n > 0 {
		return apperr.Conflict("list has tasks")
	}
	deleted, err := store.DeleteList(ctx, s.DB, c.SpaceID, id)
	if err != nil {
		return apperr.Internal(err)
	}
	if !deleted {
		return apperr.NotFound("list not found")
	}
	_ = store.RecordAudit(ctx, s.DB, uuid.NewString(), c.SpaceID, c.UserID, "list.delete", id, syncx.NowMs())
	return nil
}
