// Package reqctx implements the Context resolver (§4.1): it turns
// request credentials into an authenticated (space, user, role) triple
// without ever trusting a role claim baked into a token.
package reqctx

import (
	"context"
	"strings"

	"github.com/dtammam/tasksync/internal/apperr"
	"github.com/dtammam/tasksync/internal/authn"
	"github.com/dtammam/tasksync/internal/store"
)

// Ctx is the resolved identity attached to every authenticated request.
type Ctx struct {
	SpaceID string
	UserID  string
	Role    store.Role
}

func (c *Ctx) IsAdmin() bool { return c.Role == store.RoleAdmin }

// Resolve implements the resolver order from §4.1: if a bearer token is
// present and decodes, use its (sub, space_id); otherwise fall back to
// the explicit x-space-id / x-user-id headers. Either way, the role is
// looked up fresh from Membership, not trusted from the token, so a
// revoked member loses access within one request (testable property 4).
func Resolve(ctx context.Context, db store.Execer, issuer *authn.Issuer, bearerToken, headerSpaceID, headerUserID string) (*Ctx, error) {
	var spaceID, userID string
	var tokenErr error

	if bearerToken != "" {
		sub, sid, err := issuer.Parse(bearerToken)
		if err == nil {
			userID, spaceID = sub, sid
		}
		tokenErr = err
	}
	if userID == "" {
		spaceID = strings.TrimSpace(headerSpaceID)
		userID = strings.TrimSpace(headerUserID)
		if spaceID == "" || userID == "" {
			if tokenErr != nil {
				return nil, apperr.Unauthorized("invalid or expired token")
			}
			return nil, apperr.Unauthorized("missing credentials")
		}
	}

	role, ok, err := store.GetRole(ctx, db, spaceID, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !ok {
		return nil, apperr.Unauthorized("no membership in space")
	}

	return &Ctx{SpaceID: spaceID, UserID: userID, Role: role}, nil
}
