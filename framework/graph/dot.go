package graph

import (
	"fmt"
	"io"
	"strings"

	"github.com/km-arc/go-inject/framework/token"
)

// WriteDOT writes the graph in Graphviz format. Edges point from a
// dependency to the node that injects it. Missing dependencies are drawn in
// red.
func (g *Graph) WriteDOT(w io.Writer) error {
	if _, err := io.WriteString(w, "digraph providers {\n"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "  rankdir=LR;\n"); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "  node [shape=box, style=filled, fillcolor=lightblue];\n"); err != nil {
		return err
	}

	for _, n := range g.Nodes() {
		label := fmt.Sprintf("%s\\n%s", n.ID.String(), n.Kind)
		if n.Kind == KindProvider {
			label += " " + n.Provider.Scope.String()
		}
		if _, err := fmt.Fprintf(w, "  %s [label=%s];\n", quote(nodeName(n.ID)), quote(label)); err != nil {
			return err
		}
	}

	for _, e := range g.Missing() {
		if _, err := fmt.Fprintf(w, "  %s [label=%s, fillcolor=tomato];\n",
			quote(nodeName(e.To)), quote(token.KeyOf(e.To).String()+"\\nmissing")); err != nil {
			return err
		}
	}

	for _, n := range g.Nodes() {
		for _, dep := range n.Deps {
			if _, err := fmt.Fprintf(w, "  %s -> %s;\n", quote(nodeName(dep)), quote(nodeName(n.ID))); err != nil {
				return err
			}
		}
	}

	_, err := io.WriteString(w, "}\n")
	return err
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func nodeName(id token.Identity) string {
	if name := token.KeyOf(id).Name(); name != "" {
		return name
	}
	return "<nil>"
}
