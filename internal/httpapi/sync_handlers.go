package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/dtammam/tasksync/internal/service"
	"github.com/dtammam/tasksync/internal/store"
)

type pullReq struct {
	SinceTs *int64 `json:"since_ts"`
}

type pullResp struct {
	Protocol string       `json:"protocol"`
	CursorTs int64        `json:"cursor_ts"`
	Lists    []store.List `json:"lists"`
	Tasks    []store.Task `json:"tasks"`
}

func (s *Server) SyncPull(w http.ResponseWriter, r *http.Request) {
	var body pullReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, r, http.StatusBadRequest, "malformed request body")
			return
		}
	}
	res, err := s.Sync.Pull(r.Context(), ctxFrom(r), body.SinceTs)
	if err != nil {
		writeAppErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pullResp{
		Protocol: res.Protocol, CursorTs: res.CursorTs, Lists: res.Lists, Tasks: res.Tasks,
	})
}

// rawChange mirrors the tagged-variant wire shape of a Push batch entry
// (§9: explicit kind/op_id, no dynamic dispatch) before it is decoded
// into a typed service.Change.
type rawChange struct {
	Kind   service.ChangeKind `json:"kind"`
	OpID   string             `json:"op_id"`
	TaskID string             `json:"task_id"`
	Body   json.RawMessage    `json:"body"`
	Status store.TaskStatus   `json:"status"`
}

type pushReq struct {
	Changes []rawChange `json:"changes"`
}

type rejectionResp struct {
	OpID       string `json:"op_id"`
	StatusCode int    `json:"status_code"`
	Error      string `json:"error_text"`
}

type pushResp struct {
	Protocol string          `json:"protocol"`
	CursorTs int64           `json:"cursor_ts"`
	Applied  []store.Task    `json:"applied"`
	Rejected []rejectionResp `json:"rejected"`
}

func (s *Server) SyncPush(w http.ResponseWriter, r *http.Request) {
	var body pushReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}

	changes := make([]service.Change, 0, len(body.Changes))
	for _, rc := range body.Changes {
		ch := service.Change{Kind: rc.Kind, OpID: rc.OpID, TaskID: rc.TaskID, Status: rc.Status}
		switch rc.Kind {
		case service.ChangeCreateTask:
			var in createTaskReq
			if err := json.Unmarshal(rc.Body, &in); err != nil {
				writeError(w, r, http.StatusBadRequest, "malformed CreateTask body")
				return
			}
			ch.Create = service.CreateTaskInput{
				ID: in.ID, Title: in.Title, ListID: in.ListID, MyDay: in.MyDay,
				TaskOrder: in.Order, URL: in.URL, RecurRule: in.RecurRule,
				Attachments: in.Attachments, DueDate: in.DueDate, Notes: in.Notes,
				AssigneeUserID: in.AssigneeUserID,
			}
		case service.ChangeUpdateTask:
			var in patchTaskReq
			if err := json.Unmarshal(rc.Body, &in); err != nil {
				writeError(w, r, http.StatusBadRequest, "malformed UpdateTask body")
				return
			}
			ch.Meta = service.TaskMetaPatch{
				Title: in.Title, Status: in.Status, ListID: in.ListID, MyDay: in.MyDay,
				URL: in.URL, RecurRule: in.RecurRule, Attachments: in.Attachments,
				DueDate: in.DueDate, OccurrencesCompleted: in.OccurrencesCompleted,
				Notes: in.Notes, AssigneeUserID: in.AssigneeUserID, CompletedTs: in.CompletedTs,
			}
		case service.ChangeUpdateTaskStatus:
			// status already decoded into rc.Status
		default:
			writeError(w, r, http.StatusBadRequest, "unknown change kind: "+string(rc.Kind))
			return
		}
		changes = append(changes, ch)
	}

	res, err := s.Sync.Push(r.Context(), ctxFrom(r), changes)
	if err != nil {
		writeAppErr(w, r, err)
		return
	}

	rejected := make([]rejectionResp, 0, len(res.Rejected))
	for _, rej := range res.Rejected {
		rejected = append(rejected, rejectionResp{OpID: rej.OpID, StatusCode: rej.StatusCode, Error: rej.Error})
	}
	writeJSON(w, http.StatusOK, pushResp{
		Protocol: res.Protocol, CursorTs: res.CursorTs, Applied: res.Applied, Rejected: rejected,
	})
}
