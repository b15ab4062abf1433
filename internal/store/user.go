package store

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
)

const userCols = `id, email, display, avatar_icon, password_hash,
	sound_enabled, sound_volume, sound_theme,
	custom_sound_file_id, custom_sound_file_name, custom_sound_data_url, profile_attachments`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Display, &u.AvatarIcon, &u.PasswordHash,
		&u.SoundEnabled, &u.SoundVolume, &u.SoundTheme,
		&u.CustomSoundFileID, &u.CustomSoundFileName, &u.CustomSoundDataURL, &u.ProfileAttachments)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func GetUserByID(ctx context.Context, ex Execer, id string) (*User, error) {
	row := ex.QueryRow(ctx, `SELECT `+userCols+` FROM app_user WHERE id = $1`, id)
	return scanUser(row)
}

// GetUserByEmail looks up a user by case-insensitive email (§3 User
// "email case-insensitive unique").
func GetUserByEmail(ctx context.Context, ex Execer, email string) (*User, error) {
	row := ex.QueryRow(ctx, `SELECT `+userCols+` FROM app_user WHERE email_lower = $1`, strings.ToLower(email))
	return scanUser(row)
}

func CreateUser(ctx context.Context, ex Execer, u User) error {
	_, err := ex.Exec(ctx, `
		INSERT INTO app_user (id, email, email_lower, display, avatar_icon, password_hash,
			sound_enabled, sound_volume, sound_theme,
			custom_sound_file_id, custom_sound_file_name, custom_sound_data_url, profile_attachments)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, u.ID, u.Email, strings.ToLower(u.Email), u.Display, u.AvatarIcon, u.PasswordHash,
		u.SoundEnabled, u.SoundVolume, u.SoundTheme,
		u.CustomSoundFileID, u.CustomSoundFileName, u.CustomSoundDataURL, u.ProfileAttachments)
	return err
}

// UpsertUser inserts the user or overwrites every column on conflict,
// used verbatim by the backup restore path (§4.6 step 4: "Upsert every
// User (insert-or-update on id)").
func UpsertUser(ctx context.Context, ex Execer, u User) error {
	_, err := ex.Exec(ctx, `
		INSERT INTO app_user (id, email, email_lower, display, avatar_icon, password_hash,
			sound_enabled, sound_volume, sound_theme,
			custom_sound_file_id, custom_sound_file_name, custom_sound_data_url, profile_attachments)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			email_lower = excluded.email_lower,
			display = excluded.display,
			avatar_icon = excluded.avatar_icon,
			password_hash = excluded.password_hash,
			sound_enabled = excluded.sound_enabled,
			sound_volume = excluded.sound_volume,
			sound_theme = excluded.sound_theme,
			custom_sound_file_id = excluded.custom_sound_file_id,
			custom_sound_file_name = excluded.custom_sound_file_name,
			custom_sound_data_url = excluded.custom_sound_data_url,
			profile_attachments = excluded.profile_attachments
	`, u.ID, u.Email, strings.ToLower(u.Email), u.Display, u.AvatarIcon, u.PasswordHash,
		u.SoundEnabled, u.SoundVolume, u.SoundTheme,
		u.CustomSoundFileID, u.CustomSoundFileName, u.CustomSoundDataURL, u.ProfileAttachments)
	return err
}

// ProfilePatch carries the PATCH /auth/me fields. AvatarIcon nil with
// ClearAvatarIcon false means "leave unchanged"; ClearAvatarIcon true
// (the request's clear_avatar_icon flag) sets the column to NULL,
// mirroring SoundPatch.ClearCustomSound.
type ProfilePatch struct {
	Display         *string
	AvatarIcon      *string
	ClearAvatarIcon bool
}

func UpdateUserProfile(ctx context.Context, ex Execer, id string, p ProfilePatch) error {
	if p.ClearAvatarIcon {
		_, err := ex.Exec(ctx, `
			UPDATE app_user SET
				display = COALESCE($2, display),
				avatar_icon = NULL
			WHERE id = $1
		`, id, p.Display)
		return err
	}
	_, err := ex.Exec(ctx, `
		UPDATE app_user SET
			display = COALESCE($2, display),
			avatar_icon = COALESCE($3, avatar_icon)
		WHERE id = $1
	`, id, p.Display, p.AvatarIcon)
	return err
}

func UpdateUserPasswordHash(ctx context.Context, ex Execer, id, hash string) error {
	_, err := ex.Exec(ctx, `UPDATE app_user SET password_hash = $2 WHERE id = $1`, id, hash)
	return err
}

// SoundPatch carries the PATCH /auth/sound fields with coalesce
// semantics (§9): a nil pointer leaves the column unchanged.
// ClearCustomSound is the explicit clear-flag that sets the three
// custom-sound columns to NULL.
type SoundPatch struct {
	Enabled                *bool
	Volume                 *int
	Theme                  *string
	CustomSoundFileID      *string
	CustomSoundFileName    *string
	CustomSoundDataURL     *string
	ProfileAttachmentsJSON *string
	ClearCustomSound       bool
}

func UpdateUserSound(ctx context.Context, ex Execer, id string, p SoundPatch) error {
	if p.ClearCustomSound {
		var none *string
		p.CustomSoundFileID, p.CustomSoundFileName, p.CustomSoundDataURL = none, none, none
		_, err := ex.Exec(ctx, `
			UPDATE app_user SET
				sound_enabled = COALESCE($2, sound_enabled),
				sound_volume = COALESCE($3, sound_volume),
				sound_theme = COALESCE($4, sound_theme),
				custom_sound_file_id = NULL,
				custom_sound_file_name = NULL,
				custom_sound_data_url = NULL,
				profile_attachments = COALESCE($5, profile_attachments)
			WHERE id = $1
		`, id, p.Enabled, p.Volume, p.Theme, p.ProfileAttachmentsJSON)
		return err
	}
	_, err := ex.Exec(ctx, `
		UPDATE app_user SET
			sound_enabled = COALESCE($2, sound_enabled),
			sound_volume = COALESCE($3, sound_volume),
			sound_theme = COALESCE($4, sound_theme),
			custom_sound_file_id = COALESCE($5, custom_sound_file_id),
			custom_sound_file_name = COALESCE($6, custom_sound_file_name),
			custom_sound_data_url = COALESCE($7, custom_sound_data_url),
			profile_attachments = COALESCE($8, profile_attachments)
		WHERE id = $1
	`, id, p.Enabled, p.Volume, p.Theme,
		p.CustomSoundFileID, p.CustomSoundFileName, p.CustomSoundDataURL, p.ProfileAttachmentsJSON)
	return err
}

// ListUsersInSpace returns every user with a Membership in spaceID,
// ordered by user id, for the backup engine (§4.6 Export ordering).
func ListUsersInSpace(ctx context.Context, ex Execer, spaceID string) ([]User, error) {
	rows, err := ex.Query(ctx, `
		SELECT `+prefixCols("u", userCols)+`
		FROM app_user u
		JOIN membership m ON m.user_id = u.id
		WHERE m.space_id = $1
		ORDER BY u.id
	`, spaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func prefixCols(alias, cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
