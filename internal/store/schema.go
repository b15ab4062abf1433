// Package store is the sole source of truth for every entity in the
// system: Space, User, Membership, List, ListGrant, Task, and the
// supplemented audit log. No caller outside this package may cache
// entity state; every read goes back to Postgres.
package store

import "context"

// EnsureSchema creates the tables this service needs if they do not
// already exist. There is no migration runner in scope (§1 Out of
// scope) — a fresh database is assumed, mirroring the teacher pack's
// own ensureSchema idiom of exec'ing a literal DDL string at startup.
func EnsureSchema(ctx context.Context, db Execer) error {
	_, err := db.Exec(ctx, schemaSQL)
	return err
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS space (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS app_user (
	id                     TEXT PRIMARY KEY,
	email                  TEXT NOT NULL,
	email_lower            TEXT NOT NULL UNIQUE,
	display                TEXT NOT NULL,
	avatar_icon            TEXT,
	password_hash          TEXT NOT NULL DEFAULT '',
	sound_enabled          BOOLEAN NOT NULL DEFAULT TRUE,
	sound_volume           INTEGER NOT NULL DEFAULT 80,
	sound_theme            TEXT NOT NULL DEFAULT 'chime',
	custom_sound_file_id   TEXT,
	custom_sound_file_name TEXT,
	custom_sound_data_url  TEXT,
	profile_attachments    TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS membership (
	id       TEXT PRIMARY KEY,
	space_id TEXT NOT NULL REFERENCES space(id),
	user_id  TEXT NOT NULL REFERENCES app_user(id),
	role     TEXT NOT NULL CHECK (role IN ('admin','contributor')),
	UNIQUE (space_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_membership_space ON membership(space_id);
CREATE INDEX IF NOT EXISTS idx_membership_user ON membership(user_id);

CREATE TABLE IF NOT EXISTS list (
	id         TEXT PRIMARY KEY,
	space_id   TEXT NOT NULL REFERENCES space(id),
	name       TEXT NOT NULL,
	icon       TEXT,
	color      TEXT,
	list_order TEXT NOT NULL DEFAULT 'z'
);
CREATE INDEX IF NOT EXISTS idx_list_space ON list(space_id, list_order);

CREATE TABLE IF NOT EXISTS list_grant (
	id       TEXT PRIMARY KEY,
	space_id TEXT NOT NULL REFERENCES space(id),
	list_id  TEXT NOT NULL REFERENCES list(id) ON DELETE CASCADE,
	user_id  TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
	UNIQUE (space_id, list_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_grant_user ON list_grant(space_id, user_id);

CREATE TABLE IF NOT EXISTS task (
	id                     TEXT PRIMARY KEY,
	space_id               TEXT NOT NULL REFERENCES space(id),
	title                  TEXT NOT NULL,
	status                 TEXT NOT NULL CHECK (status IN ('pending','done','cancelled')),
	list_id                TEXT NOT NULL REFERENCES list(id),
	my_day                 BOOLEAN NOT NULL DEFAULT FALSE,
	task_order             TEXT NOT NULL DEFAULT 'z',
	updated_ts             BIGINT NOT NULL,
	created_ts             BIGINT NOT NULL,
	completed_ts           BIGINT,
	url                    TEXT,
	recur_rule             TEXT,
	attachments            TEXT,
	due_date               TEXT,
	occurrences_completed  INTEGER NOT NULL DEFAULT 0,
	notes                  TEXT,
	assignee_user_id       TEXT REFERENCES app_user(id),
	created_by_user_id     TEXT REFERENCES app_user(id)
);
CREATE INDEX IF NOT EXISTS idx_task_space_updated ON task(space_id, updated_ts);
CREATE INDEX IF NOT EXISTS idx_task_space_list ON task(space_id, list_id);

CREATE TABLE IF NOT EXISTS audit_log (
	id            TEXT PRIMARY KEY,
	space_id      TEXT NOT NULL,
	actor_user_id TEXT NOT NULL,
	action        TEXT NOT NULL,
	target_id     TEXT,
	at_ts         BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_space ON audit_log(space_id, at_ts);
`
