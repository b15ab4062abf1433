package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// GetRole looks up a user's role in a space fresh from the Membership
// table — never from a cached token claim — so that a revoked member
// loses access within one request (§4.1, testable property 4).
func GetRole(ctx context.Context, ex Execer, spaceID, userID string) (Role, bool, error) {
	var role string
	err := ex.QueryRow(ctx, `SELECT role FROM membership WHERE space_id = $1 AND user_id = $2`, spaceID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return Role(role), true, nil
}

func GetMembership(ctx context.Context, ex Execer, spaceID, userID string) (*Membership, error) {
	var m Membership
	err := ex.QueryRow(ctx, `SELECT id, space_id, user_id, role FROM membership WHERE space_id = $1 AND user_id = $2`,
		spaceID, userID).Scan(&m.ID, &m.SpaceID, &m.UserID, &m.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func CountAdmins(ctx context.Context, ex Execer, spaceID string) (int, error) {
	var n int
	err := ex.QueryRow(ctx, `SELECT COUNT(1) FROM membership WHERE space_id = $1 AND role = 'admin'`, spaceID).Scan(&n)
	return n, err
}

func ListMemberships(ctx context.Context, ex Execer, spaceID string) ([]Membership, error) {
	rows, err := ex.Query(ctx, `SELECT id, space_id, user_id, role FROM membership WHERE space_id = $1 ORDER BY id`, spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Membership
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.ID, &m.SpaceID, &m.UserID, &m.Role); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func CreateMembership(ctx context.Context, ex Execer, m Membership) error {
	_, err := ex.Exec(ctx, `INSERT INTO membership (id, space_id, user_id, role) VALUES ($1,$2,$3,$4)`,
		m.ID, m.SpaceID, m.UserID, m.Role)
	return err
}

func DeleteMembership(ctx context.Context, ex Execer, spaceID, userID string) error {
	_, err := ex.Exec(ctx, `DELETE FROM membership WHERE space_id = $1 AND user_id = $2`, spaceID, userID)
	return err
}

func DeleteAllMembershipsForSpace(ctx context.Context, ex Execer, spaceID string) error {
	_, err := ex.Exec(ctx, `DELETE FROM membership WHERE space_id = $1`, spaceID)
	return err
}
