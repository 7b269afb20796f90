// Package inspect serves an HTTP view of a container: its providers, their
// dependencies and the validation state of the graph.
//
//	GET  /healthz             200 when the graph validates, 503 otherwise
//	GET  /providers           every registered identity
//	GET  /providers/{name}    one identity, by key name or display name
//	POST /providers/{name}    resolve one identity, warming its singleton
//	GET  /graph               Graphviz DOT, or ?format=json
package inspect

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/graph"
	gohttp "github.com/km-arc/go-inject/framework/http"
	"github.com/km-arc/go-inject/framework/routing"
	"github.com/km-arc/go-inject/framework/token"
)

// ProviderView is the JSON shape of one graph node.
type ProviderView struct {
	Name       string   `json:"name"`
	Provide    string   `json:"provide"`
	Kind       string   `json:"kind"`
	Scope      string   `json:"scope,omitempty"`
	Inject     []string `json:"inject"`
	Dependents []string `json:"dependents"`
	Resolved   bool     `json:"resolved"`
}

// Inspector holds the handlers. Only Resolve builds anything in the container.
type Inspector struct {
	app    *container.Container
	logger logrus.FieldLogger
}

// New creates an Inspector for app.
func New(app *container.Container, logger logrus.FieldLogger) *Inspector {
	return &Inspector{app: app, logger: logger.WithField("component", "inspect")}
}

// Register mounts the routes on r.
func (i *Inspector) Register(r *routing.Router) {
	r.Get("/healthz", i.Health)
	r.Get("/providers", i.List)
	r.Get("/providers/*", i.Show)
	r.Post("/providers/*", i.Resolve)
	r.Get("/graph", i.Graph)
}

// Providers returns a view of every node in registration order.
func (i *Inspector) Providers() []ProviderView {
	g := i.app.Graph()
	return lo.Map(g.Nodes(), func(n *graph.Node, _ int) ProviderView {
		return i.view(g, n)
	})
}

func (i *Inspector) view(g *graph.Graph, n *graph.Node) ProviderView {
	v := ProviderView{
		Name:       n.ID.Key().Name(),
		Provide:    n.ID.String(),
		Kind:       n.Kind.String(),
		Inject:     lo.Map(n.Deps, func(id token.Identity, _ int) string { return id.String() }),
		Dependents: lo.Map(g.Dependents(n.ID), func(d *graph.Node, _ int) string { return d.ID.String() }),
		Resolved:   i.app.Resolved(n.ID),
	}
	if n.Kind == graph.KindProvider {
		v.Scope = n.Provider.Scope.String()
	}
	return v
}

// ── Handlers ─────────────────────────────────────────────────────────────────

// Health validates the container graph.
func (i *Inspector) Health(w http.ResponseWriter, _ *http.Request) {
	res := gohttp.NewResponse(w)
	if err := i.app.Validate(); err != nil {
		i.logger.WithError(err).Warn("container graph is invalid")
		res.Unavailable(map[string]any{
			"status": "unhealthy",
			"errors": strings.Split(err.Error(), "\n"),
		})
		return
	}
	res.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"providers": len(i.app.Bindings()),
	})
}

// List returns every provider view.
func (i *Inspector) List(w http.ResponseWriter, _ *http.Request) {
	gohttp.NewResponse(w).Success(i.Providers())
}

// Show returns the view whose Name or Provide equals the path tail.
func (i *Inspector) Show(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	g, n, ok := i.find(r)
	if !ok {
		res.NotFound("No provider named " + pathName(r) + ".")
		return
	}
	res.Success(i.view(g, n))
}

// Resolve builds the identity named by the path tail. Clients that do not
// accept JSON get a plain text line.
func (i *Inspector) Resolve(w http.ResponseWriter, r *http.Request) {
	req, res := gohttp.NewRequest(r), gohttp.NewResponse(w)
	g, n, ok := i.find(r)
	if !ok {
		res.NotFound("No provider named " + pathName(r) + ".")
		return
	}
	if _, err := i.app.Make(n.ID); err != nil {
		i.logger.WithError(err).WithField("provide", n.ID.String()).Warn("resolve failed")
		res.ServerError(err.Error())
		return
	}
	i.logger.WithField("provide", n.ID.String()).Info("resolved")

	if !req.WantsJSON() {
		res.Text(http.StatusOK, "text/plain; charset=utf-8", "resolved "+n.ID.String()+"\n")
		return
	}
	res.Success(i.view(g, n))
}

func (i *Inspector) find(r *http.Request) (*graph.Graph, *graph.Node, bool) {
	name := pathName(r)
	g := i.app.Graph()
	n, ok := lo.Find(g.Nodes(), func(n *graph.Node) bool {
		return n.ID.Key().Name() == name || n.ID.String() == name
	})
	return g, n, ok
}

func pathName(r *http.Request) string {
	name := gohttp.NewRequest(r).RouteParam("*")
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

// Graph writes the dependency graph as DOT, or as JSON with ?format=json.
func (i *Inspector) Graph(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	g := i.app.Graph()

	if gohttp.NewRequest(r).Query("format", "dot") == "json" {
		payload := map[string]any{
			"nodes": lo.Map(g.Nodes(), func(n *graph.Node, _ int) ProviderView { return i.view(g, n) }),
		}
		order, err := g.Order()
		if err != nil {
			payload["error"] = err.Error()
		} else {
			payload["order"] = lo.Map(order, func(id token.Identity, _ int) string { return id.String() })
		}
		res.Success(payload)
		return
	}

	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	if err := g.WriteDOT(res.Raw()); err != nil {
		i.logger.WithError(err).Warn("write graph")
	}
}
