package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/dtammam/tasksync/internal/apperr"
	"github.com/dtammam/tasksync/internal/authz"
	"github.com/dtammam/tasksync/internal/password"
	"github.com/dtammam/tasksync/internal/reqctx"
	"github.com/dtammam/tasksync/internal/store"
	"github.com/dtammam/tasksync/internal/syncx"
)

// Members wraps the Store for Member & Grant administration (§4.4). All
// writes are admin-only.
type Members struct {
	DB store.Execer
}

type memberRow struct {
	UserID  string     `json:"user_id"`
	Email   string     `json:"email"`
	Display string     `json:"display"`
	Role    store.Role `json:"role"`
}

// List returns every member of the space, admin-only (mirrors §4.1's
// "reading grants list" admin gate, applied the same way to members).
func (s Members) List(ctx context.Context, c *reqctx.Ctx) ([]memberRow, error) {
	if !authz.IsAdmin(c) {
		return nil, apperr.Forbidden("admin required")
	}
	memberships, err := store.ListMemberships(ctx, s.DB, c.SpaceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	out := make([]memberRow, 0, len(memberships))
	for _, m := range memberships {
		u, err := store.GetUserByID(ctx, s.DB, m.UserID)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if u == nil {
			continue
		}
		out = append(out, memberRow{UserID: u.ID, Email: u.Email, Display: u.Display, Role: m.Role})
	}
	return out, nil
}

// CreateMemberInput carries POST /auth/members.
type CreateMemberInput struct {
	Email      string
	Display    string
	Role       store.Role
	Password   string
	AvatarIcon *string
}

// CreateMember rebinds an existing user by email if one exists
// (§4.4: "Creating a member with an email that already exists ...
// rebinds that user to the space via a new Membership row"), or creates
// a brand new user otherwise.
func (s Members) CreateMember(ctx context.Context, c *reqctx.Ctx, in CreateMemberInput) (*store.User, error) {
	if !authz.IsAdmin(c) {
		return nil, apperr.Forbidden("admin required")
	}
	if !in.Role.Valid() {
		return nil, apperr.BadRequest("invalid role")
	}
	pw := strings.TrimSpace(in.Password)
	if len(pw) < password.MinLength {
		return nil, apperr.BadRequest("password too short")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, apperr.BadRequest("email is required")
	}

	existing, err := store.GetUserByEmail(ctx, s.DB, email)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	hash, err := password.Hash(pw)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var u *store.User
	if existing != nil {
		if existing.PasswordHash == "" {
			if err := store.UpdateUserPasswordHash(ctx, s.DB, existing.ID, hash); err != nil {
				return nil, apperr.Internal(err)
			}
			existing.PasswordHash = hash
		}
		u = existing
	} else {
		u = &store.User{
			ID:                 uuid.NewString(),
			Email:              email,
			Display:            strings.TrimSpace(in.Display),
			AvatarIcon:         in.AvatarIcon,
			PasswordHash:       hash,
			SoundEnabled:       true,
			SoundVolume:        80,
			SoundTheme:         "chime",
			ProfileAttachments: "{}",
		}
		if err := store.CreateUser(ctx, s.DB, *u); err != nil {
			return nil, apperr.Internal(err)
		}
	}

	if err := store.CreateMembership(ctx, s.DB, store.Membership{
		ID:      uuid.NewString(),
		SpaceID: c.SpaceID,
		UserID:  u.ID,
		Role:    in.Role,
	}); err != nil {
		return nil, apperr.Internal(err)
	}
	if err := store.RecordAudit(ctx, s.DB, uuid.NewString(), c.SpaceID, c.UserID, "member.create", u.ID, syncx.NowMs()); err != nil {
		// audit write failure never unwinds a successful member create
		_ = err
	}
	return u, nil
}

// DeleteMember removes userID's Membership and grants from the space.
// Cannot delete self or the sole remaining admin (§4.4).
func (s Members) DeleteMember(ctx context.Context, c *reqctx.Ctx, userID string) error {
	if !authz.IsAdmin(c) {
		return apperr.Forbidden("admin required")
	}
	if userID == c.UserID {
		return apperr.BadRequest("cannot delete self")
	}
	m, err := store.GetMembership(ctx, s.DB, c.SpaceID, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if m == nil {
		return apperr.NotFound("member not found")
	}
	if m.Role == store.RoleAdmin {
		n, err := store.CountAdmins(ctx, s.DB, c.SpaceID)
		if err != nil {
			return apperr.Internal(err)
		}
		if n <= 1 {
			return apperr.Conflict("cannot delete the sole admin")
		}
	}
	if err := store.DeleteGrantsForUser(ctx, s.DB, c.SpaceID, userID); err != nil {
		return apperr.Internal(err)
	}
	if err := store.DeleteMembership(ctx, s.DB, c.SpaceID, userID); err != nil {
		return apperr.Internal(err)
	}
	_ = store.RecordAudit(ctx, s.DB, uuid.NewString(), c.SpaceID, c.UserID, "member.delete", userID, syncx.NowMs())
	return nil
}

// ResetPassword sets a new password hash for userID, admin-only.
func (s Members) ResetPassword(ctx context.Context, c *reqctx.Ctx, userID, newPassword string) error {
	if !authz.IsAdmin(c) {
		return apperr.Forbidden("admin required")
	}
	pw := strings.TrimSpace(newPassword)
	if len(pw) < password.MinLength {
		return apperr.BadRequest("password too short")
	}
	m, err := store.GetMembership(ctx, s.DB, c.SpaceID, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if m == nil {
		return apperr.NotFound("member not found")
	}
	hash, err := password.Hash(pw)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := store.UpdateUserPasswordHash(ctx, s.DB, userID, hash); err != nil {
		return apperr.Internal(err)
	}
	_ = store.RecordAudit(ctx, s.DB, uuid.NewString(), c.SpaceID, c.UserID, "member.password_reset", userID, syncx.NowMs())
	return nil
}

// Grants wraps the Store for the per-list grant surface of §4.4.
type Grants struct {
	DB store.Execer
}

func (g Grants) List(ctx context.Context, c *reqctx.Ctx) ([]store.ListGrant, error) {
	if !authz.IsAdmin(c) {
		return nil, apperr.Forbidden("admin required")
	}
	grants, err := store.ListGrantsForSpace(ctx, g.DB, c.SpaceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return grants, nil
}

// Set grants or revokes userID's access to listID, idempotently
// (§4.4 set_grant). Target must be a contributor; the list must exist
// in this space.
func (g Grants) Set(ctx context.Context, c *reqctx.Ctx, userID, listID string, granted bool) error {
	if !authz.IsAdmin(c) {
		return apperr.Forbidden("admin required")
	}
	role, ok, err := store.GetRole(ctx, g.DB, c.SpaceID, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !ok || role != store.RoleContributor {
		return apperr.NotFound("user is not a contributor in this space")
	}
	l, err := store.GetList(ctx, g.DB, c.SpaceID, listID)
	if err != nil {
		return apperr.Internal(err)
	}
	if l == nil {
		return apperr.NotFound("list not found")
	}
	if granted {
		err = store.CreateGrant(ctx, g.DB, store.ListGrant{
			ID: uuid.NewString(), SpaceID: c.SpaceID, ListID: listID, UserID: userID,
		})
	} else {
		err = store.DeleteGrant(ctx, g.DB, c.SpaceID, listID, userID)
	}
	if err != nil {
		return apperr.Internal(err)
	}
	_ = store.RecordAudit(ctx, g.DB, uuid.NewString(), c.SpaceID, c.UserID, "grant.set", listID, syncx.NowMs())
	return nil
}
