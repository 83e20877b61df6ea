package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/eleven-am/todolist/internal/model"
	"github.com/eleven-am/todolist/internal/store"
	"github.com/eleven-am/todolist/internal/todo"
	"github.com/eleven-am/todolist/internal/todo/todotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t      *testing.T
	mem    *todotest.Memory
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mem := todotest.NewMemory()
	return &testServer{t: t, mem: mem, router: NewRouter(NewHandler(todo.NewService(mem)))}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.NotEmpty(t, resp.RequestID)
	return resp
}

func TestRootRedirects(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/todo-list/1", rec.Header().Get("Location"))
}

func TestCreateListEchoesBody(t *testing.T) {
	s := newTestServer(t)
	body := `{"name": "Groceries"}`

	rec := s.do(http.MethodPost, "/todo-list/create", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	l, ok := s.mem.List(1)
	require.True(t, ok)
	assert.Equal(t, "Groceries", l.Name)
	assert.False(t, l.Completed)

	page := s.do(http.MethodGet, "/todo-list/1", "")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, page.Body.String(), "Groceries")
	assert.Contains(t, page.Body.String(), "(0/0 done)")
}

func TestCreateListValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{}`},
		{"blank name", `{"name": " "}`},
		{"malformed json", `{"name":`},
		{"wrong type", `{"name": 5}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/todo-list/create", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
		})
	}

	_, ok := s.mem.List(1)
	assert.False(t, ok)
}

func TestBadPathIDs(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/todo-list/abc", "/todo-list/0", "/todo-list/-3/json"} {
		t.Run(path, func(t *testing.T) {
			rec := s.do(http.MethodGet, path, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rec).Code)
		})
	}

	rec := s.do(http.MethodDelete, "/todo-item/x/delete", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteList(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/todo-list/create", `{"name":"Home"}`)
	s.do(http.MethodPost, "/todo-item/create", `{"description":"Dishes","listId":1}`)

	rec := s.do(http.MethodDelete, "/todo-list/1/delete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success": true}`, rec.Body.String())

	_, ok := s.mem.Item(1)
	assert.False(t, ok)

	rec = s.do(http.MethodDelete, "/todo-list/1/delete", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)

	page := s.do(http.MethodGet, "/todo-list/1", "")
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "List not found")
}

func TestUpdateListCascade(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/todo-list/create", `{"name":"Home"}`)
	s.do(http.MethodPost, "/todo-list/create", `{"name":"Work"}`)
	s.do(http.MethodPost, "/todo-item/create", `{"description":"Dishes","listId":1}`)
	s.do(http.MethodPost, "/todo-item/create", `{"description":"Ship report","listId":2}`)

	rec := s.do(http.MethodPost, "/todo-list/1/update", `{"completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"completed":true}`, rec.Body.String())

	home, _ := s.mem.Item(1)
	work, _ := s.mem.Item(2)
	assert.True(t, home.Completed)
	assert.False(t, work.Completed)

	rec = s.do(http.MethodPost, "/todo-list/1/update", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/todo-list/9/update", `{"completed":false}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestItemRoutes(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/todo-list/create", `{"name":"Home"}`)
	s.do(http.MethodPost, "/todo-list/create", `{"name":"Work"}`)

	body := `{"description":"Ship report","listId":2}`
	rec := s.do(http.MethodPost, "/todo-item/create", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, rec.Body.String())

	rec = s.do(http.MethodPost, "/todo-item/1/update", `{"completed":true}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/todo-list/2/json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list model.List
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, "Work", list.Name)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Ship report", list.Items[0].Description)
	assert.True(t, list.Items[0].Completed)
	assert.Equal(t, int64(2), list.Items[0].ListID)

	page := s.do(http.MethodGet, "/todo-list/2", "")
	assert.Contains(t, page.Body.String(), "(1/1 done)")

	rec = s.do(http.MethodDelete, "/todo-item/1/delete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = s.do(http.MethodDelete, "/todo-item/1/delete", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/todo-item/1/update", `{"completed":false}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateItemErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/todo-item/create", `{"description":"Dishes","listId":42}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Code)

	rec = s.do(http.MethodPost, "/todo-item/create", `{"description":"Dishes"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "listId")
}

func TestStorageErrors(t *testing.T) {
	s := newTestServer(t)

	s.mem.FailOn["InsertList"] = errors.New("disk on fire")
	rec := s.do(http.MethodPost, "/todo-list/create", `{"name":"Home"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", resp.Code)
	assert.NotContains(t, resp.Message, "disk on fire")

	s.mem.FailOn["FindLists"] = &store.Error{Op: "find", Err: store.ErrConnectionFailed}
	rec = s.do(http.MethodGet, "/todo-list/1", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "SERVICE_UNAVAILABLE", decodeError(t, rec).Code)
}

func TestHealthAndReadiness(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	s.mem.PingErr = &store.Error{Op: "ping", Err: store.ErrConnectionFailed}
	rec = s.do(http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/todo-list/oops", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "req-123", decodeError(t, rec).RequestID)

	rec = s.do(http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRecoverMiddleware(t *testing.T) {
	h := requestIDMiddleware(recoverMiddleware(NewHandler(nil).log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, rec).Code)
}

func TestStatusRecorderDefaultsToOK(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	_, err := rec.Write([]byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.status)
	assert.Equal(t, 2, rec.bytes)

	rec.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusOK, rec.status)
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{todo.ValidationErrors{{Field: "name", Message: "is required"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{todo.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{todo.ErrStorageUnavailable, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{todo.ErrStorage, http.StatusInternalServerError, "INTERNAL_ERROR"},
		{errors.New("unknown"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		status, code, _ := mapDomainError(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}

func TestIDsBeyondInt32(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodPost, "/todo-list/create", `{"name":"Home"}`)

	page := s.do(http.MethodGet, "/todo-list/3000000000", "")
	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "List not found")

	rec := s.do(http.MethodDelete, "/todo-list/3000000000/delete", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/todo-list/3000000000/update", `{"completed":true}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/todo-item/create", `{"description":"Dishes","listId":3000000000}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodDelete, "/todo-item/3000000000/delete", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEchoMatchesStoredName(t *testing.T) {
	s := newTestServer(t)
	body := `{"name":"  Groceries "}`

	rec := s.do(http.MethodPost, "/todo-list/create", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, rec.Body.String())

	rec = s.do(http.MethodGet, "/todo-list/1/json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list model.List
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Equal(t, "  Groceries ", list.Name)
}
