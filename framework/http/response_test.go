package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gohttp "github.com/km-arc/go-inject/framework/http"
	"github.com/km-arc/go-inject/framework/validation"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newResponse(t *testing.T) (*gohttp.Response, *httptest.ResponseRecorder) {
	t.Helper()
	rr := httptest.NewRecorder()
	return gohttp.NewResponse(rr), rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &m))
	return m
}

// ── JSON ─────────────────────────────────────────────────────────────────────

func TestResponse_JSON(t *testing.T) {
	t.Parallel()

	res, rr := newResponse(t)
	res.JSON(http.StatusOK, map[string]any{"key": "val"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "val", decodeJSON(t, rr)["key"])
}

func TestResponse_JSON_Unencodable(t *testing.T) {
	t.Parallel()

	res, rr := newResponse(t)
	res.JSON(http.StatusOK, map[string]any{"ch": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestResponse_SuccessAndCreated(t *testing.T) {
	t.Parallel()

	res, rr := newResponse(t)
	res.Success(map[string]any{"id": 1})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"id": float64(1)}, decodeJSON(t, rr)["data"])

	res, rr = newResponse(t)
	res.Created(map[string]any{"name": "Alice"})
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, map[string]any{"name": "Alice"}, decodeJSON(t, rr)["data"])
}

func TestResponse_NoContent(t *testing.T) {
	t.Parallel()

	res, rr := newResponse(t)
	res.NoContent()

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Zero(t, rr.Body.Len())
}

// ── Errors ───────────────────────────────────────────────────────────────────

func TestResponse_ErrorHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		call    func(res *gohttp.Response)
		status  int
		message string
	}{
		{"Error", func(res *gohttp.Response) { res.Error(http.StatusTeapot, "short and stout") }, http.StatusTeapot, "short and stout"},
		{"NotFound default", func(res *gohttp.Response) { res.NotFound() }, http.StatusNotFound, "Not found."},
		{"NotFound custom", func(res *gohttp.Response) { res.NotFound("no provider") }, http.StatusNotFound, "no provider"},
		{"ServerError default", func(res *gohttp.Response) { res.ServerError() }, http.StatusInternalServerError, "Server Error."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, rr := newResponse(t)
			tt.call(res)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.message, decodeJSON(t, rr)["message"])
		})
	}
}

func TestResponse_Unavailable(t *testing.T) {
	t.Parallel()

	res, rr := newResponse(t)
	res.Unavailable(map[string]any{"status": "down"})

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "down", decodeJSON(t, rr)["status"])
}

func TestResponse_ValidationError(t *testing.T) {
	t.Parallel()

	v := validation.Make(map[string]string{"email": ""}, validation.Rules{"email": "required"})
	require.True(t, v.Fails())

	res, rr := newResponse(t)
	res.ValidationError(v.Errors())

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	errs, ok := decodeJSON(t, rr)["errors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{"The email field is required."}, errs["email"])
}

func TestResponse_Text(t *testing.T) {
	t.Parallel()

	res, rr := newResponse(t)
	res.Text(http.StatusOK, "text/vnd.graphviz", "digraph {}")

	assert.Equal(t, "text/vnd.graphviz", rr.Header().Get("Content-Type"))
	assert.Equal(t, "digraph {}", rr.Body.String())
}
