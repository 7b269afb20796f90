// Package graph models the dependencies between registered providers.
package graph

import (
	"errors"
	"strings"

	"github.com/km-arc/go-inject/framework/provider"
	"github.com/km-arc/go-inject/framework/token"
)

// ErrCycle is matched by every CycleError.
var ErrCycle = errors.New("graph: dependency cycle")

// CycleError reports a dependency loop. Path starts and ends with the same
// identity.
type CycleError struct {
	Path []token.Identity
}

// Error implements the error interface.
func (e CycleError) Error() string {
	// Example: graph: dependency cycle: *app.A -> *app.B -> *app.A
	names := make([]string, len(e.Path))
	for i, id := range e.Path {
		names[i] = id.String()
	}
	return ErrCycle.Error() + ": " + strings.Join(names, " -> ")
}

// Unwrap makes errors.Is(err, ErrCycle) true.
func (e CycleError) Unwrap() error { return ErrCycle }

// Kind tells how a node is satisfied.
type Kind int

const (
	// KindProvider nodes are built by a provider's factory.
	KindProvider Kind = iota
	// KindInstance nodes hold a pre-built value.
	KindInstance
	// KindAlias nodes forward to another identity.
	KindAlias
	// KindDeferred nodes are provided by a module that has not loaded yet.
	KindDeferred
)

func (k Kind) String() string {
	switch k {
	case KindInstance:
		return "instance"
	case KindAlias:
		return "alias"
	case KindDeferred:
		return "deferred"
	}
	return "provider"
}

// Node is one registered identity.
type Node struct {
	ID   token.Identity
	Kind Kind

	// Provider is set for KindProvider nodes.
	Provider provider.Provider

	// Deps are the identities the node needs, in injection order.
	Deps []token.Identity
}

// Edge points from a node to one of its dependencies.
type Edge struct {
	From token.Identity
	To   token.Identity
}

// Graph is an immutable snapshot built by Build.
type Graph struct {
	order []token.Key
	nodes map[token.Key]*Node
}

// Option adds non-provider nodes to a Graph.
type Option func(g *Graph)

// Instances marks ids as bound to pre-built values.
func Instances(ids ...token.Identity) Option {
	return func(g *Graph) {
		for _, id := range ids {
			g.add(&Node{ID: id, Kind: KindInstance})
		}
	}
}

// Deferred marks ids as provided by a module loaded on first use.
func Deferred(ids ...token.Identity) Option {
	return func(g *Graph) {
		for _, id := range ids {
			g.add(&Node{ID: id, Kind: KindDeferred})
		}
	}
}

// Alias marks alias as forwarding to target.
func Alias(alias, target token.Identity) Option {
	return func(g *Graph) {
		g.add(&Node{ID: alias, Kind: KindAlias, Deps: []token.Identity{target}})
	}
}

// Build creates a graph from providers. A later provider for the same
// identity replaces an earlier one, as it does in a container.
func Build(providers []provider.Provider, opts ...Option) *Graph {
	g := &Graph{nodes: make(map[token.Key]*Node, len(providers))}
	for _, p := range providers {
		if p.Provide == nil {
			continue
		}
		g.add(&Node{ID: p.Provide, Kind: KindProvider, Provider: p, Deps: p.Inject})
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Graph) add(n *Node) {
	key := token.KeyOf(n.ID)
	if key.IsZero() {
		return
	}
	if _, ok := g.nodes[key]; !ok {
		g.order = append(g.order, key)
	}
	g.nodes[key] = n
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// Node returns the node registered for id.
func (g *Graph) Node(id token.Identity) (*Node, bool) {
	n, ok := g.nodes[token.KeyOf(id)]
	return n, ok
}

// Nodes returns the nodes in registration order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, g.nodes[k])
	}
	return out
}

// Dependents returns the nodes that inject id directly.
func (g *Graph) Dependents(id token.Identity) []*Node {
	key := token.KeyOf(id)
	var out []*Node
	for _, n := range g.Nodes() {
		for _, dep := range n.Deps {
			if token.KeyOf(dep) == key {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// Missing returns the edges whose target has no node.
func (g *Graph) Missing() []Edge {
	var out []Edge
	for _, n := range g.Nodes() {
		for _, dep := range n.Deps {
			if _, ok := g.nodes[token.KeyOf(dep)]; !ok {
				out = append(out, Edge{From: n.ID, To: dep})
			}
		}
	}
	return out
}

// Order returns every node with its dependencies before it. Missing
// dependencies are skipped; a loop returns a CycleError.
func (g *Graph) Order() ([]token.Identity, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[token.Key]int, len(g.order))
	out := make([]token.Identity, 0, len(g.order))
	var stack []token.Identity

	var visit func(n *Node) error
	visit = func(n *Node) error {
		key := token.KeyOf(n.ID)
		switch state[key] {
		case done:
			return nil
		case visiting:
			return cycleFrom(stack, n.ID)
		}
		state[key] = visiting
		stack = append(stack, n.ID)
		for _, dep := range n.Deps {
			next, ok := g.nodes[token.KeyOf(dep)]
			if !ok {
				continue
			}
			if err := visit(next); err != nil {
				return err
			}
		}
		stack = stack[:len(stack)-1]
		state[key] = done
		out = append(out, n.ID)
		return nil
	}

	for _, k := range g.order {
		if err := visit(g.nodes[k]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func cycleFrom(stack []token.Identity, id token.Identity) CycleError {
	key := token.KeyOf(id)
	for i, s := range stack {
		if token.KeyOf(s) == key {
			path := append([]token.Identity{}, stack[i:]...)
			return CycleError{Path: append(path, id)}
		}
	}
	return CycleError{Path: []token.Identity{id, id}}
}
