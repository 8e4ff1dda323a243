package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alfagnish/simple-crud/internal/config"
	"github.com/alfagnish/simple-crud/internal/events"
	"github.com/alfagnish/simple-crud/internal/logging"
	"github.com/alfagnish/simple-crud/internal/middleware"
	"github.com/alfagnish/simple-crud/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) (http.Handler, *users.Store) {
	t.Helper()
	cfg := &config.Config{
		ListenAddr:      ":0",
		CORSOrigins:     []string{"*"},
		ShutdownTimeout: time.Second,
	}
	if mutate != nil {
		mutate(cfg)
	}

	hub := events.NewHub(4)
	t.Cleanup(hub.Close)
	store, err := users.NewStore(users.DefaultSeed(),
		users.WithPublisher(hub),
		users.WithUniqueEmailOnUpdate(cfg.UniqueEmailOnUpdate),
	)
	require.NoError(t, err)

	return New(cfg, store, hub, logging.Nop(), time.Now()), store
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Scenario(t *testing.T) {
	h, store := newTestServer(t, nil)

	rec := serve(h, http.MethodPost, "/users", `{"name":"Ann","email":"ann@x.com","age":22}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{
		"success": true,
		"data": {"id": 4, "name": "Ann", "email": "ann@x.com", "age": 22},
		"message": "User created successfully"
	}`, rec.Body.String())
	assert.Equal(t, 4, store.Count())

	rec = serve(h, http.MethodPost, "/users", `{"name":"Dup","email":"john@example.com","age":40}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Email already exists"}`, rec.Body.String())

	rec = serve(h, http.MethodPut, "/users/2", `{"age":26}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"success": true,
		"data": {"id": 2, "name": "Jane Smith", "email": "jane@example.com", "age": 26},
		"message": "User updated successfully"
	}`, rec.Body.String())

	rec = serve(h, http.MethodDelete, "/users/1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodGet, "/users", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"success": true,
		"data": [
			{"id": 2, "name": "Jane Smith", "email": "jane@example.com", "age": 26},
			{"id": 3, "name": "Bob Johnson", "email": "bob@example.com", "age": 35},
			{"id": 4, "name": "Ann", "email": "ann@x.com", "age": 22}
		],
		"count": 3
	}`, rec.Body.String())
}

func TestServer_RouteNotFound(t *testing.T) {
	h, _ := newTestServer(t, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodGet, "/api/users"},
		{http.MethodGet, "/users/1/extra"},
		{http.MethodPatch, "/users/1"},
		{http.MethodPost, "/health"},
		{http.MethodPost, "/admin/reset"},
	} {
		rec := serve(h, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
		assert.JSONEq(t, `{"success":false,"message":"Route not found"}`, rec.Body.String())
	}
}

func TestServer_EventsWithoutUpgrade(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := serve(h, http.MethodGet, "/users/events", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":false,"message":"User not found"}`, rec.Body.String())
}

func TestServer_HeadFollowsGet(t *testing.T) {
	h, _ := newTestServer(t, nil)

	for _, path := range []string{"/users", "/users/1", "/health"} {
		rec := serve(h, http.MethodHead, path, "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := serve(h, http.MethodHead, "/users/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = serve(h, http.MethodHead, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Health(t *testing.T) {
	h, _ := newTestServer(t, nil)

	rec := serve(h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success   bool    `json:"success"`
		Message   string  `json:"message"`
		Timestamp string  `json:"timestamp"`
		Uptime    float64 `json:"uptime"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Simple CRUD API is running", body.Message)
	_, err := time.Parse(time.RFC3339Nano, body.Timestamp)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, body.Uptime, 0.0)
}

func TestServer_AdminResetWhenEnabled(t *testing.T) {
	h, store := newTestServer(t, func(cfg *config.Config) { cfg.EnableAdmin = true })

	serve(h, http.MethodDelete, "/users/1", "")
	require.Equal(t, 2, store.Count())

	rec := serve(h, http.MethodPost, "/admin/reset", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, store.Count())
}

func TestServer_UniqueEmailOnUpdate(t *testing.T) {
	h, _ := newTestServer(t, func(cfg *config.Config) { cfg.UniqueEmailOnUpdate = true })

	rec := serve(h, http.MethodPut, "/users/3", `{"email":"jane@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Email already exists"}`, rec.Body.String())
}

func TestServer_RequestIDAndCORS(t *testing.T) {
	h, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_Preflight(t *testing.T) {
	h, _ := newTestServer(t, func(cfg *config.Config) { cfg.CORSOrigins = []string{"https://app.example"} })

	req := httptest.NewRequest(http.MethodOptions, "/users/1", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}
