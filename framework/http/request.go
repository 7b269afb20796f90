package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/samber/lo"
)

// ErrEmptyBody is returned by Bind when a JSON request has no body.
var ErrEmptyBody = errors.New("empty request body")

// Request wraps *http.Request with input helpers.
type Request struct {
	raw *http.Request
}

func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Bind decodes the body into v: JSON for application/json, form values
// otherwise. Form fields are matched through the `json:"name"` tags of v, and
// a field sent more than once becomes a list.
func (req *Request) Bind(v any) error {
	if req.ContentType() == "application/json" {
		defer req.raw.Body.Close()
		err := json.NewDecoder(req.raw.Body).Decode(v)
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return err
	}

	if err := req.raw.ParseForm(); err != nil {
		return err
	}
	fields := lo.MapValues(req.raw.PostForm, func(vals []string, _ string) any {
		if len(vals) == 1 {
			return vals[0]
		}
		return vals
	})
	b, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// Input returns a query or form value, or fallback when it is empty.
func (req *Request) Input(key string, fallback ...string) string {
	return orFallback(req.raw.FormValue(key), fallback)
}

// Query returns a query-string value, or fallback when it is empty.
func (req *Request) Query(key string, fallback ...string) string {
	return orFallback(req.raw.URL.Query().Get(key), fallback)
}

// All returns the first value of every query and form field.
func (req *Request) All() map[string]string {
	_ = req.raw.ParseForm()
	return lo.MapValues(req.raw.Form, func(vals []string, _ string) string {
		return lo.FirstOrEmpty(vals)
	})
}

// RouteParam returns a chi URL parameter.
func (req *Request) RouteParam(key string) string {
	return chi.URLParam(req.raw, key)
}

// ContentType returns the media type of the body, without parameters.
func (req *Request) ContentType() string {
	mediaType, _, err := mime.ParseMediaType(req.raw.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return mediaType
}

// WantsJSON reports whether the client accepts a JSON answer. A missing
// Accept header counts as yes.
func (req *Request) WantsJSON() bool {
	accept := req.raw.Header.Get("Accept")
	return accept == "" || strings.Contains(accept, "application/json") || strings.Contains(accept, "*/*")
}

func orFallback(v string, fallback []string) string {
	if v != "" {
		return v
	}
	return lo.FirstOrEmpty(fallback)
}
