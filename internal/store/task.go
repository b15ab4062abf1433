package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

const taskCols = `id, space_id, title, status, list_id, my_day, task_order,
	updated_ts, created_ts, completed_ts, url, recur_rule, attachments, due_date,
	occurrences_completed, notes, assignee_user_id, created_by_user_id`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.SpaceID, &t.Title, &t.Status, &t.ListID, &t.MyDay, &t.TaskOrder,
		&t.UpdatedTs, &t.CreatedTs, &t.CompletedTs, &t.URL, &t.RecurRule, &t.Attachments, &t.DueDate,
		&t.OccurrencesCompleted, &t.Notes, &t.AssigneeUserID, &t.CreatedByUserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func GetTask(ctx context.Context, ex Execer, id string) (*Task, error) {
	row := ex.QueryRow(ctx, `SELECT `+taskCols+` FROM task WHERE id = $1`, id)
	return scanTask(row)
}

// CreateTask inserts t and reports whether it actually created the row.
// When id already exists the insert is a no-op (ON CONFLICT DO NOTHING);
// the caller then fetches the existing row and decides Created vs
// Existed per §4.3 step 7.
func CreateTask(ctx context.Context, ex Execer, t Task) (created bool, err error) {
	tag, err := ex.Exec(ctx, `
		INSERT INTO task (`+taskCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		ON CONFLICT (id) DO NOTHING
	`, t.ID, t.SpaceID, t.Title, t.Status, t.ListID, t.MyDay, t.TaskOrder,
		t.UpdatedTs, t.CreatedTs, t.CompletedTs, t.URL, t.RecurRule, t.Attachments, t.DueDate,
		t.OccurrencesCompleted, t.Notes, t.AssigneeUserID, t.CreatedByUserID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListVisibleTasksForSpace returns every task in a space; the caller
// filters for visible_task / since_ts (§4.1, §4.5) because both the cap
// used for cursor_ts and the page returned to the client are derived
// from the same visible set and it's cheaper to scan it once.
func ListVisibleTasksForSpace(ctx context.Context, ex Execer, spaceID string) ([]Task, error) {
	rows, err := ex.Query(ctx, `SELECT `+taskCols+` FROM task WHERE space_id = $1 ORDER BY task_order ASC`, spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// TaskMetaUpdate carries every nullable field of update_task_meta as a
// pointer with coalesce semantics (§9 coalesce-semantics note): a nil
// pointer leaves the column unchanged, so no field can be set to NULL
// through it. completed_ts is the one exception, cleared when
// ClearCompletedTs is true.
type TaskMetaUpdate struct {
	Title                *string
	Status               *TaskStatus
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
	ClearCompletedTs     bool
	UpdatedTs            int64
}

func UpdateTaskMeta(ctx context.Context, ex Execer, id string, u TaskMetaUpdate) (*Task, error) {
	var my *bool
	if u.MyDay != nil {
		my = u.MyDay
	}
	row := ex.QueryRow(ctx, `
		UPDATE task SET
			title = COALESCE($2, title),
			status = COALESCE($3, status),
			list_id = COALESCE($4, list_id),
			my_day = COALESCE($5, my_day),
			url = COALESCE($6, url),
			recur_rule = COALESCE($7, recur_rule),
			attachments = COALESCE($8, attachments),
			due_date = COALESCE($9, due_date),
			occurrences_completed = COALESCE($10, occurrences_completed),
			notes = COALESCE($11, notes),
			assignee_user_id = COALESCE($12, assignee_user_id),
			completed_ts = CASE WHEN $13 THEN NULL ELSE COALESCE($14, completed_ts) END,
			updated_ts = $15
		WHERE id = $1
		RETURNING `+taskCols+`
	`, id, u.Title, u.Status, u.ListID, my, u.URL, u.RecurRule, u.Attachments, u.DueDate,
		u.OccurrencesCompleted, u.Notes, u.AssigneeUserID, u.ClearCompletedTs, u.CompletedTs, u.UpdatedTs)
	return scanTask(row)
}

func UpdateTaskStatus(ctx context.Context, ex Execer, id string, status TaskStatus, completedTs *int64, clearCompletedTs bool, updatedTs int64) (*Task, error) {
	row := ex.QueryRow(ctx, `
		UPDATE task SET
			status = $2,
			completed_ts = CASE WHEN $3 THEN NULL ELSE COALESCE($4, completed_ts) END,
			updated_ts = $5
		WHERE id = $1
		RETURNING `+taskCols+`
	`, id, status, clearCompletedTs, completedTs, updatedTs)
	return scanTask(row)
}

func DeleteTask(ctx context.Context, ex Execer, id string) (bool, error) {
	tag, err := ex.Exec(ctx, `DELETE FROM task WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func DeleteAllTasksForSpace(ctx context.Context, ex Execer, spaceID string) error {
	_, err := ex.Exec(ctx, `DELETE FROM task WHERE space_id = $1`, spaceID)
	return err
}
