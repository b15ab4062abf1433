package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dtammam/tasksync/internal/apperr"
	"github.com/dtammam/tasksync/internal/password"
	"github.com/dtammam/tasksync/internal/service"
	"github.com/dtammam/tasksync/internal/store"
)

type loginReq struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	SpaceID  *string `json:"space_id"`
}

type loginResp struct {
	Token      string  `json:"token"`
	UserID     string  `json:"user_id"`
	Email      string  `json:"email"`
	Display    string  `json:"display"`
	AvatarIcon *string `json:"avatar_icon,omitempty"`
	SpaceID    string  `json:"space_id"`
	Role       string  `json:"role"`
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	spaceID := ""
	if body.SpaceID != nil {
		spaceID = *body.SpaceID
	}
	res, err := s.Identity.Login(r.Context(), body.Email, body.Password, spaceID)
	if err != nil {
		writeAppErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResp{
		Token:      res.Token,
		UserID:     res.UserID,
		Email:      res.Email,
		Display:    res.Display,
		AvatarIcon: res.AvatarIcon,
		SpaceID:    res.SpaceID,
		Role:       string(res.Role),
	})
}

type meResp struct {
	UserID     string  `json:"user_id"`
	Email      string  `json:"email"`
	Display    string  `json:"display"`
	AvatarIcon *string `json:"avatar_icon,omitempty"`
	SpaceID    string  `json:"space_id"`
	Role       string  `json:"role"`
}

func (s *Server) GetMe(w http.ResponseWriter, r *http.Request) {
	c := ctxFrom(r)
	u, err := store.GetUserByID(r.Context(), s.DB, c.UserID)
	if err != nil {
		writeAppErr(w, r, apperr.Internal(err))
		return
	}
	if u == nil {
		writeAppErr(w, r, apperr.NotFound("user not found"))
		return
	}
	writeJSON(w, http.StatusOK, meResp{
		UserID: u.ID, Email: u.Email, Display: u.Display, AvatarIcon: u.AvatarIcon,
		SpaceID: c.SpaceID, Role: string(c.Role),
	})
}

type patchMeReq struct {
	Display         *string `json:"display"`
	AvatarIcon      *string `json:"avatar_icon"`
	ClearAvatarIcon bool    `json:"clear_avatar_icon"`
}

func (s *Server) PatchMe(w http.ResponseWriter, r *http.Request) {
	c := ctxFrom(r)
	var body patchMeReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	patch := store.ProfilePatch{Display: body.Display, AvatarIcon: body.AvatarIcon, ClearAvatarIcon: body.ClearAvatarIcon}
	if err := store.UpdateUserProfile(r.Context(), s.DB, c.UserID, patch); err != nil {
		writeAppErr(w, r, apperr.Internal(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type patchPasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) PatchPassword(w http.ResponseWriter, r *http.Request) {
	c := ctxFrom(r)
	var body patchPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	u, err := store.GetUserByID(r.Context(), s.DB, c.UserID)
	if err != nil {
		writeAppErr(w, r, apperr.Internal(err))
		return
	}
	if u == nil || !password.Verify(u.PasswordHash, body.CurrentPassword) {
		writeAppErr(w, r, apperr.Unauthorized("current password is incorrect"))
		return
	}
	newPw := strings.TrimSpace(body.NewPassword)
	if len(newPw) < password.MinLength {
		writeAppErr(w, r, apperr.BadRequest("password too short"))
		return
	}
	hash, err := password.Hash(newPw)
	if err != nil {
		writeAppErr(w, r, apperr.Internal(err))
		return
	}
	if err := store.UpdateUserPasswordHash(r.Context(), s.DB, c.UserID, hash); err != nil {
		writeAppErr(w, r, apperr.Internal(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type soundResp struct {
	Enabled             bool    `json:"enabled"`
	Volume              int     `json:"volume"`
	Theme               string  `json:"theme"`
	CustomSoundFileID   *string `json:"customSoundFileId,omitempty"`
	CustomSoundFileName *string `json:"customSoundFileName,omitempty"`
	CustomSoundDataURL  *string `json:"customSoundDataUrl,omitempty"`
	ProfileAttachments  string  `json:"profileAttachmentsJson"`
}

func (s *Server) GetSound(w http.ResponseWriter, r *http.Request) {
	c := ctxFrom(r)
	u, err := store.GetUserByID(r.Context(), s.DB, c.UserID)
	if err != nil {
		writeAppErr(w, r, apperr.Internal(err))
		return
	}
	if u == nil {
		writeAppErr(w, r, apperr.NotFound("user not found"))
		return
	}
	writeJSON(w, http.StatusOK, soundResp{
		Enabled: u.SoundEnabled, Volume: u.SoundVolume, Theme: u.SoundTheme,
		CustomSoundFileID: u.CustomSoundFileID, CustomSoundFileName: u.CustomSoundFileName,
		CustomSoundDataURL: u.CustomSoundDataURL, ProfileAttachments: u.ProfileAttachments,
	})
}

type patchSoundReq struct {
	Enabled                *bool   `json:"enabled"`
	Volume                 *int    `json:"volume"`
	Theme                  *string `json:"theme"`
	CustomSoundFileID      *string `json:"customSoundFileId"`
	CustomSoundFileName    *string `json:"customSoundFileName"`
	CustomSoundDataURL     *string `json:"customSoundDataUrl"`
	ProfileAttachmentsJSON *string `json:"profileAttachmentsJson"`
	ClearCustomSound       bool    `json:"clearCustomSound"`
}

const maxCustomSoundDataURLLen = 3_000_000

func (s *Server) PatchSound(w http.ResponseWriter, r *http.Request) {
	c := ctxFrom(r)
	var body patchSoundReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	if body.Volume != nil {
		v := *body.Volume
		if v < 0 {
			v = 0
		}
		if v > 100 {
			v = 100
		}
		body.Volume = &v
	}
	if body.Theme != nil && !store.SoundThemes[*body.Theme] {
		writeAppErr(w, r, apperr.BadRequest("unknown sound theme"))
		return
	}
	if body.CustomSoundDataURL != nil {
		if !strings.HasPrefix(*body.CustomSoundDataURL, "data:audio/") {
			writeAppErr(w, r, apperr.BadRequest("custom sound must be a data:audio/ URL"))
			return
		}
		if len(*body.CustomSoundDataURL) > maxCustomSoundDataURLLen {
			writeAppErr(w, r, apperr.BadRequest("custom sound payload too large"))
			return
		}
	}
	if body.ProfileAttachmentsJSON != nil {
		var v any
		if err := json.Unmarshal([]byte(*body.ProfileAttachmentsJSON), &v); err != nil {
			writeAppErr(w, r, apperr.BadRequest("profile_attachments_json must be valid JSON"))
			return
		}
	}

	err := store.UpdateUserSound(r.Context(), s.DB, c.UserID, store.SoundPatch{
		Enabled: body.Enabled, Volume: body.Volume, Theme: body.Theme,
		CustomSoundFileID: body.CustomSoundFileID, CustomSoundFileName: body.CustomSoundFileName,
		CustomSoundDataURL: body.CustomSoundDataURL, ProfileAttachmentsJSON: body.ProfileAttachmentsJSON,
		ClearCustomSound: body.ClearCustomSound,
	})
	if err != nil {
		writeAppErr(w, r, apperr.Internal(err))
		return
	}
	s.GetSound(w, r)
}

func (s *Server) GetBackup(w http.ResponseWriter, r *http.Request) {
	bundle, err := s.Backup.Export(r.Context(), ctxFrom(r))
	if err != nil {
		writeAppErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

func (s *Server) PostBackup(w http.ResponseWriter, r *http.Request) {
	var bundle service.Bundle
	if err := json.NewDecoder(r.Body).Decode(&bundle); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed backup bundle")
		return
	}
	counts, err := s.Backup.Restore(r.Context(), ctxFrom(r), bundle)
	if err != nil {
		writeAppErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func (s *Server) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.Members.List(r.Context(), ctxFrom(r))
	if err != nil {
		writeAppErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

type createMemberReq struct {
	Email      string     `json:"email"`
	Display    string     `json:"display"`
	Role       store.Role `json:"role"`
	Password   string     `json:"password"`
	AvatarIcon *string    `json:"avatar_icon"`
}

func (s *Server) CreateMember(w http.ResponseWriter, r *http.Request) {
	var body createMemberReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	u, err := s.Members.CreateMember(r.Context(), ctxFrom(r), service.CreateMemberInput{
		Email: body.Email, Display: body.Display, Role: body.Role,
		Password: body.Password, AvatarIcon: body.AvatarIcon,
	})
	if err != nil {
		writeAppErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) DeleteMember(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Members.DeleteMember(r.Context(), ctxFrom(r), id); err != nil {
		writeAppErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetPasswordReq struct {
	NewPassword string `json:"new_password"`
}

func (s *Server) ResetMemberPassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body resetPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.Members.ResetPassword(r.Context(), ctxFrom(r), id, body.NewPassword); err != nil {
		writeAppErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ListGrants(w http.ResponseWriter, r *http.Request) {
	grants, err := s.Grants.List(r.Context(), ctxFrom(r))
	if err != nil {
		writeAppErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, grants)
}

type putGrantReq struct {
	UserID  string `json:"user_id"`
	ListID  string `json:"list_id"`
	Granted bool   `json:"granted"`
}

func (s *Server) PutGrant(w http.ResponseWriter, r *http.Request) {
	var body putGrantReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.Grants.Set(r.Context(), ctxFrom(r), body.UserID, body.ListID, body.Granted); err != nil {
		writeAppErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
