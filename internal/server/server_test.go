package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todolite/todolite/internal/models"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeTask(t *testing.T, w *httptest.ResponseRecorder) models.Task {
	t.Helper()
	var task models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	return task
}

func TestListEmptyReturnsArray(t *testing.T) {
	h := New(NewMemoryStore()).Handler()

	w := do(t, h, http.MethodGet, "/todos", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCreateThenList(t *testing.T) {
	h := New(NewMemoryStore()).Handler()

	w := do(t, h, http.MethodPost, "/todos", `{"title":"Buy milk","description":null,"completed":false}`)
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeTask(t, w)
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "Buy milk", created.Title)

	w = do(t, h, http.MethodGet, "/todos", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":1,"title":"Buy milk","description":null,"completed":false}]`, w.Body.String())
}

func TestCreateRejectsBlankTitle(t *testing.T) {
	h := New(NewMemoryStore()).Handler()

	w := do(t, h, http.MethodPost, "/todos", `{"title":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "title is required")

	w = do(t, h, http.MethodPost, "/todos", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateReplacesRecord(t *testing.T) {
	store := NewMemoryStore()
	created, err := store.Create(context.Background(), models.Task{Title: "A"}.WithDescription("old"))
	require.NoError(t, err)
	h := New(store).Handler()

	w := do(t, h, http.MethodPut, "/todos/1", `{"title":"B","description":"new","completed":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeTask(t, w)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "B", updated.Title)
	assert.Equal(t, "new", updated.DescriptionText())
	assert.True(t, updated.Completed)

	w = do(t, h, http.MethodGet, "/todos/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, updated, decodeTask(t, w))
}

func TestUnknownIDReturns404(t *testing.T) {
	h := New(NewMemoryStore()).Handler()

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			body := ""
			if method == http.MethodPut {
				body = `{"title":"x"}`
			}
			w := do(t, h, method, "/todos/42", body)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Contains(t, w.Body.String(), "todo not found")
		})
	}
}

func TestInvalidIDReturns400(t *testing.T) {
	h := New(NewMemoryStore()).Handler()

	w := do(t, h, http.MethodGet, "/todos/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, h, http.MethodDelete, "/todos/0", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteReturns204(t *testing.T) {
	store := NewMemoryStore()
	_, _ = store.Create(context.Background(), models.Task{Title: "A"})
	h := New(store).Handler()

	w := do(t, h, http.MethodDelete, "/todos/1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())

	w = do(t, h, http.MethodDelete, "/todos/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestIDAndCORSHeaders(t *testing.T) {
	h := New(NewMemoryStore()).Handler()

	r := httptest.NewRequest(http.MethodGet, "/todos", nil)
	r.Header.Set("X-Request-ID", "req-123")
	r.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(t, h, http.MethodGet, "/todos", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHealthz(t *testing.T) {
	w := do(t, New(NewMemoryStore()).Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, New(failingStore{}).Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStoreFailureReturns500(t *testing.T) {
	h := New(failingStore{}).Handler()

	w := do(t, h, http.MethodGet, "/todos", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "disk on fire", "internal errors stay internal")
}

func TestServerAgainstSQLiteAndRedis(t *testing.T) {
	for _, b := range backends[1:] {
		t.Run(b.name, func(t *testing.T) {
			h := New(b.open(t)).Handler()

			w := do(t, h, http.MethodPost, "/todos", `{"title":"A","description":"notes"}`)
			require.Equal(t, http.StatusCreated, w.Code)

			w = do(t, h, http.MethodGet, "/todos", "")
			require.Equal(t, http.StatusOK, w.Code)
			var list []models.Task
			require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&list))
			require.Len(t, list, 1)
			assert.Equal(t, "notes", list[0].DescriptionText())
		})
	}
}

type failingStore struct{}

var errDisk = errors.New("disk on fire")

func (failingStore) List(context.Context) ([]models.Task, error) { return nil, errDisk }
func (failingStore) Get(context.Context, int64) (models.Task, error) {
	return models.Task{}, errDisk
}
func (failingStore) Create(context.Context, models.Task) (models.Task, error) {
	return models.Task{}, errDisk
}
func (failingStore) Update(context.Context, int64, models.Task) (models.Task, error) {
	return models.Task{}, errDisk
}
func (failingStore) Delete(context.Context, int64) error { return errDisk }
func (failingStore) Close() error                        { return nil }
