package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dtammam/tasksync/internal/service"
)

func (s *Server) ListLists(w http.ResponseWriter, r *http.Request) {
	lists, err := s.Lists.ListVisible(r.Context(), ctxFrom(r))
	if err != nil {
		writeAppErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

type createListReq struct {
	Name  string  `json:"name"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
	Order *string `json:"order"`
}

func (s *Server) CreateList(w http.ResponseWriter, r *http.Request) {
	var body createListReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	l, err := s.Lists.Create(r.Context(), ctxFrom(r), service.CreateListInput{
		Name: body.Name, Icon: body.Icon, Color: body.Color, Order: body.Order,
	})
	if err != nil {
		writeAppErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

type patchListReq struct {
	Name  *string `json:"name"`
	Icon  *string `json:"icon"`
	Color *string `json:"color"`
	Order *string `json:"order"`
}

func (s *Server) PatchList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body patchListReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "malformed request body")
		return
	}
	l, err := s.Lists.Update(r.Context(), ctxFrom(r), id, service.UpdateListInput{
		Name: body.Name, Icon: body.Icon, Color: body.Color, Order: body.Order,
	})
	if err != nil {
		writeAppErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) DeleteList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Lists.Delete(r.Context(), ctxFrom(r), id); err != nil {
		writeAppErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
