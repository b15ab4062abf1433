package store

import "context"

func HasGrant(ctx context.Context, ex Execer, spaceID, listID, userID string) (bool, error) {
	var n int
	err := ex.QueryRow(ctx, `
		SELECT COUNT(1) FROM list_grant WHERE space_id = $1 AND list_id = $2 AND user_id = $3
	`, spaceID, listID, userID).Scan(&n)
	return n > 0, err
}

func ListGrantsForSpace(ctx context.Context, ex Execer, spaceID string) ([]ListGrant, error) {
	rows, err := ex.Query(ctx, `SELECT id, space_id, list_id, user_id FROM list_grant WHERE space_id = $1 ORDER BY id`, spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ListGrant
	for rows.Next() {
		var g ListGrant
		if err := rows.Scan(&g.ID, &g.SpaceID, &g.ListID, &g.UserID); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func CreateGrant(ctx context.Context, ex Execer, g ListGrant) error {
	_, err := ex.Exec(ctx, `
		INSERT INTO list_grant (id, space_id, list_id, user_id) VALUES ($1,$2,$3,$4)
		ON CONFLICT (space_id, list_id, user_id) DO NOTHING
	`, g.ID, g.SpaceID, g.ListID, g.UserID)
	return err
}

func DeleteGrant(ctx context.Context, ex Execer, spaceID, listID, userID string) error {
	_, err := ex.Exec(ctx, `
		DELETE FROM list_grant WHERE space_id = $1 AND list_id = $2 AND user_id = $3
	`, spaceID, listID, userID)
	return err
}

func DeleteGrantsForUser(ctx context.Context, ex Execer, spaceID, userID string) error {
	_, err := ex.Exec(ctx, `DELETE FROM list_grant WHERE space_id = $1 AND user_id = $2`, spaceID, userID)
	return err
}

func DeleteAllGrantsForSpace(ctx context.Context, ex Execer, spaceID string) error {
	_, err := ex.Exec(ctx, `DELETE FROM list_grant WHERE space_id = $1`, spaceID)
	return err
}
