package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/eleven-am/todolist/internal/todo"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// decode reads the request body into dst and returns the raw bytes so the
// handler can echo them back unchanged.
func decode(w http.ResponseWriter, r *http.Request, dst any) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, todo.ValidationErrors{{Field: "body", Message: err.Error()}}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return nil, todo.ValidationErrors{{Field: "body", Message: fmt.Sprintf("invalid JSON: %v", err)}}
	}
	return body, nil
}

func pathID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, todo.ValidationErrors{{Field: param, Message: fmt.Sprintf("%q is not a positive integer", raw)}}
	}
	return id, nil
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ready(r.Context()); err != nil {
		h.log.Warn("readiness check failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "database unreachable", requestIDFromContext(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) getList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "list_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.service.GetList(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) createList(w http.ResponseWriter, r *http.Request) {
	var req todo.CreateListRequest
	body, err := decode(w, r, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.service.CreateList(r.Context(), req); err != nil {
		h.fail(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (h *Handler) deleteList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "list_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.DeleteList(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (h *Handler) updateList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "list_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req todo.UpdateCompletionRequest
	body, err := decode(w, r, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.UpdateList(r.Context(), id, req); err != nil {
		h.fail(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req todo.CreateItemRequest
	body, err := decode(w, r, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if _, err := h.service.CreateItem(r.Context(), req); err != nil {
		h.fail(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "todo_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req todo.UpdateCompletionRequest
	body, err := decode(w, r, &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.UpdateItem(r.Context(), id, req); err != nil {
		h.fail(w, r, err)
		return
	}
	writeRaw(w, http.StatusOK, body)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "todo_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
