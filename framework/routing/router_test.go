package routing_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/logging"
	"github.com/km-arc/go-inject/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func do(t *testing.T, router *routing.Router, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func newRouter() *routing.Router { return routing.New(logging.Discard()) }

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func TestRouter_Verbs(t *testing.T) {
	t.Parallel()

	r := newRouter()
	r.Get("/hello", okHandler)
	r.Post("/users", okHandler)
	r.Delete("/users/{id}", okHandler)

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/hello").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/users").Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodDelete, "/users/1").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, r, http.MethodPost, "/hello").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/missing").Code)
}

// ── Groups & Prefixes ────────────────────────────────────────────────────────

func TestRouter_Prefix(t *testing.T) {
	t.Parallel()

	r := newRouter()
	r.Prefix("/api", func(api *routing.Router) {
		api.Get("/users", okHandler)
	})

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/users").Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/users").Code)
}

func TestRouter_GroupMiddleware(t *testing.T) {
	t.Parallel()

	r := newRouter()
	r.Group(func(g *routing.Router) {
		g.Middleware(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.Header().Set("X-Group", "yes")
				next.ServeHTTP(w, req)
			})
		})
		g.Get("/inside", okHandler)
	})
	r.Get("/outside", okHandler)

	assert.Equal(t, "yes", do(t, r, http.MethodGet, "/inside").Header().Get("X-Group"))
	assert.Empty(t, do(t, r, http.MethodGet, "/outside").Header().Get("X-Group"))
}

// ── Params ───────────────────────────────────────────────────────────────────

func TestRouter_Param(t *testing.T) {
	t.Parallel()

	r := newRouter()
	r.Get("/providers/{name}", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(routing.Param(req, "name")))
	})

	assert.Equal(t, "mailer", do(t, r, http.MethodGet, "/providers/mailer").Body.String())
}

// ── Introspection ────────────────────────────────────────────────────────────

func TestRouter_Routes(t *testing.T) {
	t.Parallel()

	r := newRouter()
	r.Get("/b", okHandler)
	r.Post("/a", okHandler)
	r.Get("/a", okHandler)

	assert.Equal(t, []routing.Route{
		{Method: http.MethodGet, Pattern: "/a"},
		{Method: http.MethodPost, Pattern: "/a"},
		{Method: http.MethodGet, Pattern: "/b"},
	}, r.Routes())
}

// ── Middleware ───────────────────────────────────────────────────────────────

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	r := routing.New(logger)
	r.Get("/ok", okHandler)
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	require.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/ok").Code)
	assert.Contains(t, buf.String(), "request handled")
	assert.Contains(t, buf.String(), "path=/ok")
	assert.Contains(t, buf.String(), "component=http")

	buf.Reset()
	require.Equal(t, http.StatusInternalServerError, do(t, r, http.MethodGet, "/boom").Code)
	assert.Contains(t, buf.String(), "request failed")
	assert.Contains(t, buf.String(), "status=500")
}
