package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

func GetSpace(ctx context.Context, ex Execer, id string) (*Space, error) {
	var s Space
	err := ex.QueryRow(ctx, `SELECT id, name FROM space WHERE id = $1`, id).Scan(&s.ID, &s.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertSpace inserts the space or updates its name if it already
// exists, the same insert-or-update-on-id idiom the restore path (§4.6
// step 4) uses for users (UpsertUser); the other tables are deleted and
// re-inserted there instead.
func UpsertSpace(ctx context.Context, ex Execer, s Space) error {
	_, err := ex.Exec(ctx, `
		INSERT INTO space (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name
	`, s.ID, s.Name)
	return err
}
