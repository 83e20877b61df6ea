package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/eleven-am/todolist/internal/model"
	"github.com/eleven-am/todolist/internal/todo"
)

//go:embed templates/*.html
var templateFS embed.FS

var listPage = template.Must(template.ParseFS(templateFS, "templates/list.html"))

type listView struct {
	*todo.Page
	Done  int
	Total int
}

func (h *Handler) viewList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "list_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page, err := h.service.View(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	view := listView{
		Page:  page,
		Done:  model.List{Items: page.Items}.Done(),
		Total: len(page.Items),
	}

	var buf bytes.Buffer
	if err := listPage.Execute(&buf, view); err != nil {
		h.log.Error("render list page", "list_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", requestIDFromContext(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
