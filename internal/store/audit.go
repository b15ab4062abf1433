package store

import "context"

// RecordAudit appends a row to the audit log (§4.7, supplemented). It
// returns the insert error, but callers run it after their mutation has
// been written and discard that error, so an audit failure never aborts
// or reverses the mutation.
func RecordAudit(ctx context.Context, ex Execer, id, spaceID, actorUserID, action, targetID string, atTs int64) error {
	_, err := ex.Exec(ctx, `
		INSERT INTO audit_log (id, space_id, actor_user_id, action, target_id, at_ts)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, id, spaceID, actorUserID, action, targetID, atTs)
	return err
}
