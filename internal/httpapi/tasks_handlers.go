package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dtammam/tasksync/internal/service"
	"github.com/dtammam/tasksync/internal/store"
)

func (s *Server) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.Tasks.ListVisible(r.Context(), ctxFrom(r))
	if err != nil {
		writeAppErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

type createTaskReq struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	ListID         string  `json:"list_id"`
	MyDay          bool    `json:"my_day"`
	Order          *string `json:"order"`
	URL            *string `json:"url"`
	RecurRule      *string `json:"recur_rule"`
	Attachments    *string `json:"attachments"`
	DueDate        *string `json:"due_date"`
	Notes          *string `json:"notes"`
	AssigneeUserID *string `json:"assignee_user_id"`
}

func (s *Server) CreateTask(w http.ResponseWriter, r *http.Request) {
	var body createTaskReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	res, err := s.Tasks.Create(r.Context(), ctxFrom(r), service.CreateTaskInput{
		ID: body.ID, Title: body.Title, ListID: body.ListID, MyDay: body.MyDay,
		TaskOrder: body.Order, URL: body.URL, RecurRule: body.RecurRule,
		Attachments: body.Attachments, DueDate: body.DueDate, Notes: body.Notes,
		AssigneeUserID: body.AssigneeUserID,
	})
	if err != nil {
		writeAppErr(w, r, err)
		return
	}
	// Idempotent replay of an existing id returns 200, a fresh row 201 (§4.3 step 7, §7).
	code := http.StatusCreated
	if !res.Created {
		code = http.StatusOK
	}
	writeJSON(w, code, res.Task)
}

type patchTaskReq struct {
	Title                *string           `json:"title"`
	Status               *store.TaskStatus `json:"status"`
	ListID               *string           `json:"list_id"`
	MyDay                *bool             `json:"my_day"`
	URL                  *string           `json:"url"`
	RecurRule            *string           `json:"recur_rule"`
	Attachments          *string           `json:"attachments"`
	DueDate              *string           `json:"due_date"`
	OccurrencesCompleted *int              `json:"occurrences_completed"`
	Notes                *string           `json:"notes"`
	AssigneeUserID       *string           `json:"assignee_user_id"`
	CompletedTs          *int64            `json:"completed_ts"`
}

func (s *Server) PatchTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body patchTaskReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	t, err := s.Tasks.UpdateMeta(r.Context(), ctxFrom(r), id, service.TaskMetaPatch{
		Title: body.Title, Status: body.Status, ListID: body.ListID, MyDay: body.MyDay,
		URL: body.URL, RecurRule: body.RecurRule, Attachments: body.Attachments,
		DueDate: body.DueDate, OccurrencesCompleted: body.OccurrencesCompleted,
		Notes: body.Notes, AssigneeUserID: body.AssigneeUserID, CompletedTs: body.CompletedTs,
	})
	if err != nil {
		writeAppErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type postStatusReq struct {
	Status store.TaskStatus `json:"status"`
}

func (s *Server) PostTaskStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body postStatusReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	t, err := s.Tasks.UpdateStatus(r.Context(), ctxFrom(r), id, body.Status)
	if err != nil {
		writeAppErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Tasks.Delete(r.Context(), ctxFrom(r), id); err != nil {
		writeAppErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
