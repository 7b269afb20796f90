package container

import (
	"errors"

	"github.com/reusee/e5"

	"github.com/km-arc/go-inject/framework/graph"
	"github.com/km-arc/go-inject/framework/token"
)

var (
	// ErrNotBound is returned when nothing is registered for an identity.
	ErrNotBound = errors.New("container: no provider bound")

	// ErrCycle is returned when resolving an identity needs itself.
	ErrCycle = graph.ErrCycle

	// ErrWrongType is returned by Resolve when the instance is not a T.
	ErrWrongType = errors.New("container: resolved value has the wrong type")

	// ErrSelfAlias is returned when an identity is aliased to itself.
	ErrSelfAlias = errors.New("container: identity aliased to itself")

	// ErrInvalidProvider wraps provider.Provider.Validate failures.
	ErrInvalidProvider = errors.New("container: invalid provider")
)

var we = e5.Wrap

func describePath(path []token.Identity) string {
	if len(path) == 0 {
		return "<root>"
	}
	out := ""
	for i := len(path) - 1; i >= 0; i-- {
		if out != "" {
			out += " <- "
		}
		out += path[i].String()
	}
	return out
}
