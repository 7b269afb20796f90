// Package bridge installs provider descriptors into a samber/do injector,
// so the same descriptors can run on a host other than framework/container.
//
// Every descriptor becomes a named do service. The name is the identity's
// key name (token.Key.Name), which is unique per identity. Dependencies are
// invoked by the same names, in Inject order.
//
//	inj := do.New()
//	err := bridge.Install(inj,
//	    provider.Create(accounts.NewInMemoryRepository, provider.As(accounts.RepositoryToken)),
//	    provider.Create3(accounts.NewForgotPasswordUseCase, ...),
//	)
//	uc, err := bridge.Invoke(inj, token.ClassOf[*accounts.ForgotPasswordUseCase]())
package bridge

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/samber/do"
	"github.com/samber/lo"

	"github.com/km-arc/go-inject/framework/graph"
	"github.com/km-arc/go-inject/framework/provider"
	"github.com/km-arc/go-inject/framework/token"
)

var (
	// ErrNotInstalled is returned when no service is installed for an identity.
	ErrNotInstalled = errors.New("bridge: identity not installed")

	// ErrWrongType is returned by Invoke when the service is not a T.
	ErrWrongType = errors.New("bridge: service has the wrong type")
)

// transient services are stored as their build function and called on
// every resolution, since do only keeps lazy singletons.
type transient func() (any, error)

// registryName is the do service holding the descriptors installed so far.
const registryName = "inject:#installed"

// registry remembers every descriptor installed in one injector, so cycles
// spanning several Install calls are caught.
type registry struct {
	order     []token.Key
	providers map[token.Key]provider.Provider
}

func (r *registry) merged(providers []provider.Provider) []provider.Provider {
	byKey := maps.Clone(r.providers)
	order := slices.Clone(r.order)
	for _, p := range providers {
		if _, ok := byKey[p.Key()]; !ok {
			order = append(order, p.Key())
		}
		byKey[p.Key()] = p
	}
	return lo.Map(order, func(k token.Key, _ int) provider.Provider { return byKey[k] })
}

func (r *registry) add(providers []provider.Provider) {
	for _, p := range providers {
		if _, ok := r.providers[p.Key()]; !ok {
			r.order = append(r.order, p.Key())
		}
		r.providers[p.Key()] = p
	}
}

// installMu serializes Install so the registry check and the registration
// happen together.
var installMu sync.Mutex

func registryOf(inj *do.Injector) (*registry, error) {
	if !lo.Contains(inj.ListProvidedServices(), registryName) {
		reg := &registry{providers: make(map[token.Key]provider.Provider)}
		do.ProvideNamedValue(inj, registryName, reg)
		return reg, nil
	}
	return do.InvokeNamed[*registry](inj, registryName)
}

// Install validates providers and registers them in inj, replacing any
// service with the same name. Providers that depend on each other in a loop,
// directly or through services installed by earlier calls, are rejected,
// because do would deadlock resolving them. A rejected call installs nothing.
func Install(inj *do.Injector, providers ...provider.Provider) error {
	for _, p := range providers {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("bridge: %s: %w", p, err)
		}
	}

	installMu.Lock()
	defer installMu.Unlock()

	reg, err := registryOf(inj)
	if err != nil {
		return fmt.Errorf("bridge: %w", err)
	}
	if _, err := graph.Build(reg.merged(providers)).Order(); err != nil {
		return fmt.Errorf("bridge: %w", err)
	}
	reg.add(providers)

	for _, p := range providers {
		build := func() (any, error) {
			args := make([]any, len(p.Inject))
			for i, dep := range p.Inject {
				v, err := resolve(inj, dep)
				if err != nil {
					return nil, fmt.Errorf("%s: %w", p.Provide, err)
				}
				args[i] = v
			}
			return p.UseFactory(args...)
		}

		if p.Scope == provider.Transient {
			do.OverrideNamed[any](inj, Name(p.Provide), func(*do.Injector) (any, error) {
				return transient(build), nil
			})
			continue
		}
		do.OverrideNamed[any](inj, Name(p.Provide), func(*do.Injector) (any, error) {
			return build()
		})
	}
	return nil
}

// Invoke resolves id from inj.
func Invoke[T any](inj *do.Injector, id token.Injectable[T]) (T, error) {
	var zero T
	v, err := resolve(inj, id)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s is %T, want %s", ErrWrongType, id, v, reflect.TypeFor[T]())
	}
	return typed, nil
}

// MustInvoke is like Invoke but panics on error.
func MustInvoke[T any](inj *do.Injector, id token.Injectable[T]) T {
	return lo.Must(Invoke(inj, id))
}

// Name returns the do service name used for id.
func Name(id token.Identity) string {
	return "inject:" + token.KeyOf(id).Name()
}

// Installed reports whether a service is installed for id.
func Installed(inj *do.Injector, id token.Identity) bool {
	return lo.Contains(inj.ListProvidedServices(), Name(id))
}

func resolve(inj *do.Injector, id token.Identity) (any, error) {
	if !Installed(inj, id) {
		return nil, fmt.Errorf("%w: %s", ErrNotInstalled, token.Describe([]token.Identity{id}))
	}
	v, err := do.InvokeNamed[any](inj, Name(id))
	if err != nil {
		return nil, err
	}
	if t, ok := v.(transient); ok {
		return t()
	}
	return v, nil
}
