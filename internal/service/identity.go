package service

import (
	"context"
	"strings"

	"github.com/dtammam/tasksync/internal/apperr"
	"github.com/dtammam/tasksync/internal/authn"
	"github.com/dtammam/tasksync/internal/password"
	"github.com/dtammam/tasksync/internal/store"
)

// Identity wraps login and legacy-password-upgrade logic (§2 Identity,
// §8 S1-S3).
type Identity struct {
	DB     store.Execer
	Issuer *authn.Issuer
	// DevLoginPassword is the legacy fallback password (§6 Environment):
	// a user with an empty password_hash authenticates against this value
	// instead, and on success the hash is upgraded to bcrypt (§8 S3).
	DevLoginPassword string
}

// LoginResult is the payload of POST /auth/login.
type LoginResult struct {
	Token      string
	UserID     string
	Email      string
	Display    string
	AvatarIcon *string
	SpaceID    string
	Role       store.Role
}

func (id Identity) Login(ctx context.Context, email, plainPassword, spaceID string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || plainPassword == "" {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	if spaceID == "" {
		spaceID = "s1" // default space when omitted, per the original login handler
	}

	u, err := store.GetUserByEmail(ctx, id.DB, email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if u == nil {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	if !password.IsHashed(u.PasswordHash) {
		if id.DevLoginPassword == "" || plainPassword != id.DevLoginPassword {
			return nil, apperr.Unauthorized("invalid credentials")
		}
		hash, err := password.Hash(plainPassword)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		if err := store.UpdateUserPasswordHash(ctx, id.DB, u.ID, hash); err != nil {
			return nil, apperr.Internal(err)
		}
		u.PasswordHash = hash
	} else if !password.Verify(u.PasswordHash, plainPassword) {
		return nil, apperr.Unauthorized("invalid credentials")
	}

	role, ok, err := store.GetRole(ctx, id.DB, spaceID, u.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !ok {
		return nil, apperr.Unauthorized("no membership in space")
	}

	token, err := id.Issuer.Issue(u.ID, spaceID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &LoginResult{
		Token:      token,
		UserID:     u.ID,
		Email:      u.Email,
		Display:    u.Display,
		AvatarIcon: u.AvatarIcon,
		SpaceID:    spaceID,
		Role:       role,
	}, nil
}
