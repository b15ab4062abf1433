package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

func scanList(row pgx.Row) (*List, error) {
	var l List
	err := row.Scan(&l.ID, &l.SpaceID, &l.Name, &l.Icon, &l.Color, &l.ListOrder)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const listCols = `id, space_id, name, icon, color, list_order`

func GetList(ctx context.Context, ex Execer, spaceID, id string) (*List, error) {
	row := ex.QueryRow(ctx, `SELECT `+listCols+` FROM list WHERE id = $1 AND space_id = $2`, id, spaceID)
	return scanList(row)
}

func ListListsForSpace(ctx context.Context, ex Execer, spaceID string) ([]List, error) {
	rows, err := ex.Query(ctx, `SELECT `+listCols+` FROM list WHERE space_id = $1 ORDER BY list_order ASC`, spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// ListListIDsGrantedTo returns the ids of lists a contributor has a
// grant on, used to build the visible_list predicate set (§4.1).
func ListListIDsGrantedTo(ctx context.Context, ex Execer, spaceID, userID string) (map[string]bool, error) {
	rows, err := ex.Query(ctx, `SELECT list_id FROM list_grant WHERE space_id = $1 AND user_id = $2`, spaceID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func CreateList(ctx context.Context, ex Execer, l List) error {
	_, err := ex.Exec(ctx, `
		INSERT INTO list (id, space_id, name, icon, color, list_order) VALUES ($1,$2,$3,$4,$5,$6)
	`, l.ID, l.SpaceID, l.Name, l.Icon, l.Color, l.ListOrder)
	return err
}

// UpdateList applies field-level coalesce semantics (§4.2): a nil
// pointer leaves the column untouched.
func UpdateList(ctx context.Context, ex Execer, spaceID, id string, name, icon, color, order *string) (*List, error) {
	row := ex.QueryRow(ctx, `
		UPDATE list SET
			name = COALESCE($3, name),
			icon = COALESCE($4, icon),
			color = COALESCE($5, color),
			list_order = COALESCE($6, list_order)
		WHERE id = $1 AND space_id = $2
		RETURNING `+listCols+`
	`, id, spaceID, name, icon, color, order)
	return scanList(row)
}

func DeleteList(ctx context.Context, ex Execer, spaceID, id string) (bool, error) {
	tag, err := ex.Exec(ctx, `DELETE FROM list WHERE id = $1 AND space_id = $2`, id, spaceID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func CountTasksInList(ctx context.Context, ex Execer, spaceID, listID string) (int, error) {
	var n int
	err := ex.QueryRow(ctx, `SELECT COUNT(1) FROM task WHERE space_id = $1 AND list_id = $2`, spaceID, listID).Scan(&n)
	return n, err
}

func DeleteAllListsForSpace(ctx context.Context, ex Execer, spaceID string) error {
	_, err := ex.Exec(ctx, `DELETE FROM list WHERE space_id = $1`, spaceID)
	return err
}
