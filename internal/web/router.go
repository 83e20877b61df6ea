// Package web exposes the todo operations over HTTP.
package web

import (
	"net/http"

	"github.com/eleven-am/todolist/internal/logger"
	"github.com/eleven-am/todolist/internal/todo"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *todo.Service
	log     logger.Logger
}

func NewHandler(service *todo.Service) *Handler {
	return &Handler{service: service, log: logger.HTTP()}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(handler.log))
	r.Use(recoverMiddleware(handler.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", handler.ready)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/todo-list/1", http.StatusFound)
	})

	r.Route("/todo-list", func(r chi.Router) {
		r.Post("/create", handler.createList)
		r.Get("/{list_id}", handler.viewList)
		r.Get("/{list_id}/json", handler.getList)
		r.Post("/{list_id}/update", handler.updateList)
		r.Delete("/{list_id}/delete", handler.deleteList)
	})

	r.Route("/todo-item", func(r chi.Router) {
		r.Post("/create", handler.createItem)
		r.Post("/{todo_id}/update", handler.updateItem)
		r.Delete("/{todo_id}/delete", handler.deleteItem)
	})
	return r
}
