package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dtammam/tasksync/internal/apperr"
	"github.com/dtammam/tasksync/internal/authz"
	"github.com/dtammam/tasksync/internal/reqctx"
	"github.com/dtammam/tasksync/internal/store"
	"github.com/dtammam/tasksync/internal/syncx"
)

// BackupSchema is the literal schema tag every bundle carries (§6).
const BackupSchema = "tasksync-space-backup-v1"

// Backup wraps the Store's transactional WithTx helper for the atomic
// export/restore component (§4.6). It needs the concrete *store.Store,
// not the Execer interface the other services use, because restore
// must run every statement inside one transaction.
type Backup struct {
	Store *store.Store
}

// Bundle is the self-describing snapshot shape (§4.6 Export, §6 Backup
// schema tag).
type Bundle struct {
	Schema       string             `json:"schema"`
	ExportedAtTs int64              `json:"exported_at_ts"`
	ExportedAt   string             `json:"exported_at"`
	Space        store.Space        `json:"space"`
	Users        []store.User       `json:"users"`
	Memberships  []store.Membership `json:"memberships"`
	Lists        []store.List       `json:"lists"`
	Grants       []store.ListGrant  `json:"grants"`
	Tasks        []store.Task       `json:"tasks"`
}

// Export snapshots every row belonging to ctx.space_id, admin-only.
func (b Backup) Export(ctx context.Context, c *reqctx.Ctx) (*Bundle, error) {
	if !authz.IsAdmin(c) {
		return nil, apperr.Forbidden("admin required")
	}

	space, err := store.GetSpace(ctx, b.Store.Pool, c.SpaceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if space == nil {
		return nil, apperr.NotFound("space not found")
	}
	users, err := store.ListUsersInSpace(ctx, b.Store.Pool, c.SpaceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	memberships, err := store.ListMemberships(ctx, b.Store.Pool, c.SpaceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	lists, err := store.ListListsForSpace(ctx, b.Store.Pool, c.SpaceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	grants, err := store.ListGrantsForSpace(ctx, b.Store.Pool, c.SpaceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	tasks, err := store.ListVisibleTasksForSpace(ctx, b.Store.Pool, c.SpaceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	exportedAtTs := syncx.NowMs()
	return &Bundle{
		Schema:       BackupSchema,
		ExportedAtTs: exportedAtTs,
		ExportedAt:   syncx.RFC3339(exportedAtTs),
		Space:        *space,
		Users:        users,
		Memberships:  memberships,
		Lists:        lists,
		Grants:       grants,
		Tasks:        tasks,
	}, nil
}

// RestoreCounts reports how many rows of each kind were restored.
type RestoreCounts struct {
	Users        int   `json:"users"`
	Memberships  int   `json:"memberships"`
	Lists        int   `json:"lists"`
	Grants       int   `json:"grants"`
	Tasks        int   `json:"tasks"`
	RestoredAtTs int64 `json:"restored_at_ts"`
}

// Restore atomically replaces ctx.space_id's data with bundle's
// contents (§4.6 Restore). Admin-only, same-space-only, and validated
// structurally before the transaction opens.
func (b Backup) Restore(ctx context.Context, c *reqctx.Ctx, bundle Bundle) (*RestoreCounts, error) {
	if !authz.IsAdmin(c) {
		return nil, apperr.Forbidden("admin required")
	}
	if bundle.Schema != BackupSchema {
		return nil, apperr.BadRequest("unrecognized backup schema")
	}
	if bundle.Space.ID != c.SpaceID {
		return nil, apperr.BadRequest("bundle does not belong to this space")
	}
	if err := validateBundle(c, bundle); err != nil {
		return nil, err
	}

	var counts RestoreCounts
	err := b.Store.WithTx(ctx, func(tx pgx.Tx) error {
		if err := store.UpsertSpace(ctx, tx, bundle.Space); err != nil {
			return err
		}
		for _, u := range bundle.Users {
			if err := store.UpsertUser(ctx, tx, u); err != nil {
				return err
			}
		}
		// Delete in FK-safe order: Task -> ListGrant -> List -> Membership.
		if err := store.DeleteAllTasksForSpace(ctx, tx, c.SpaceID); err != nil {
			return err
		}
		if err := store.DeleteAllGrantsForSpace(ctx, tx, c.SpaceID); err != nil {
			return err
		}
		if err := store.DeleteAllListsForSpace(ctx, tx, c.SpaceID); err != nil {
			return err
		}
		if err := store.DeleteAllMembershipsForSpace(ctx, tx, c.SpaceID); err != nil {
			return err
		}
		for _, m := range bundle.Memberships {
			if err := store.CreateMembership(ctx, tx, m); err != nil {
				return err
			}
		}
		for _, l := range bundle.Lists {
			if err := store.CreateList(ctx, tx, l); err != nil {
				return err
			}
		}
		for _, g := range bundle.Grants {
			if err := store.CreateGrant(ctx, tx, g); err != nil {
				return err
			}
		}
		for _, t := range bundle.Tasks {
			if _, err := store.CreateTask(ctx, tx, t); err != nil {
				return err
			}
		}
		counts = RestoreCounts{
			Users:       len(bundle.Users),
			Memberships: len(bundle.Memberships),
			Lists:       len(bundle.Lists),
			Grants:      len(bundle.Grants),
			Tasks:       len(bundle.Tasks),
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	counts.RestoredAtTs = syncx.NowMs()

	_ = store.RecordAudit(ctx, b.Store.Pool, uuid.NewString(), c.SpaceID, c.UserID, "backup.restore", c.SpaceID, counts.RestoredAtTs)
	return &counts, nil
}

// validateBundle applies the structural checks of §4.6 step 2-3 before
// any transaction opens, so an invalid bundle never touches the store.
func validateBundle(c *reqctx.Ctx, bundle Bundle) error {
	adminPresent := false
	for _, m := range bundle.Memberships {
		if m.SpaceID != bundle.Space.ID {
			return apperr.BadRequest("membership references another space")
		}
		if !m.Role.Valid() {
			return apperr.BadRequest("invalid role in bundle")
		}
		if m.UserID == "" || m.ID == "" {
			return apperr.BadRequest("empty id in bundle")
		}
		if m.SpaceID == c.SpaceID && m.UserID == c.UserID && m.Role == store.RoleAdmin {
			adminPresent = true
		}
	}
	if !adminPresent {
		return apperr.BadRequest("restoring admin must remain an admin in the bundle")
	}
	for _, l := range bundle.Lists {
		if l.SpaceID != bundle.Space.ID || l.ID == "" {
			return apperr.BadRequest("invalid list in bundle")
		}
	}
	for _, g := range bundle.Grants {
		if g.SpaceID != bundle.Space.ID || g.ID == "" {
			return apperr.BadRequest("invalid grant in bundle")
		}
	}
	for _, t := range bundle.Tasks {
		if t.SpaceID != bundle.Space.ID || t.ID == "" {
			return apperr.BadRequest("invalid task in bundle")
		}
		if !t.Status.Valid() {
			return apperr.BadRequest("invalid task status in bundle")
		}
	}
	for _, u := range bundle.Users {
		if u.ID == "" || strings.TrimSpace(u.Email) == "" {
			return apperr.BadRequest("invalid user in bundle")
		}
		if u.SoundVolume < 0 || u.SoundVolume > 100 {
			return apperr.BadRequest("sound volume out of range in bundle")
		}
		if !store.SoundThemes[u.SoundTheme] {
			return apperr.BadRequest("invalid sound theme in bundle")
		}
		if u.ProfileAttachments != "" {
			var v any
			if err := json.Unmarshal([]byte(u.ProfileAttachments), &v); err != nil {
				return apperr.BadRequest("profile_attachments is not valid JSON")
			}
		}
	}
	return nil
}
