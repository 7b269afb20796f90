package container

import (
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-inject/framework/provider"
	"github.com/km-arc/go-inject/framework/token"
)

// ── Module interface ─────────────────────────────────────────────────────────

// Module groups related providers, like a Laravel service provider.
//
// Register binds providers into the container and must not resolve anything.
// Boot runs after every eager module has been registered, so it may resolve
// any binding.
//
//	type MailModule struct{ container.BaseModule }
//
//	func (m *MailModule) Register(app *container.Container) error {
//	    return app.Register(provider.Create1(NewMailer, token.ClassOf[*config.Config]()))
//	}
type Module interface {
	Register(app *Container) error
	Boot(app *Container) error

	// Provides lists the identities a deferred module registers. The module
	// is loaded the first time one of them is resolved.
	Provides() []token.Identity

	IsDeferred() bool
}

// BaseModule is an embeddable struct with no-op Boot, Provides and
// IsDeferred.
type BaseModule struct{}

func (BaseModule) Boot(_ *Container) error     { return nil }
func (BaseModule) Provides() []token.Identity { return nil }
func (BaseModule) IsDeferred() bool           { return false }

// ── ProviderModule ───────────────────────────────────────────────────────────

// ProviderModule is a Module made of a fixed list of providers.
//
//	accounts := container.Providers("accounts",
//	    provider.Create(NewInMemoryAccounts, provider.As(AccountRepositoryToken)),
//	    provider.Create1(NewForgotPasswordUseCase, AccountRepositoryToken),
//	)
type ProviderModule struct {
	BaseModule
	Name      string
	Providers []provider.Provider
	Deferred  bool
}

// Providers creates a ProviderModule.
func Providers(name string, providers ...provider.Provider) *ProviderModule {
	return &ProviderModule{Name: name, Providers: providers}
}

// Defer marks the module as deferred and returns it.
func (m *ProviderModule) Defer() *ProviderModule {
	m.Deferred = true
	return m
}

func (m *ProviderModule) Register(app *Container) error {
	if err := app.RegisterAll(m.Providers...); err != nil {
		return fmt.Errorf("module %s: %w", m.Name, err)
	}
	return nil
}

func (m *ProviderModule) Provides() []token.Identity {
	return lo.Map(m.Providers, func(p provider.Provider, _ int) token.Identity { return p.Provide })
}

func (m *ProviderModule) IsDeferred() bool { return m.Deferred }

func (m *ProviderModule) String() string { return m.Name }

// ── ModuleRegistry ───────────────────────────────────────────────────────────

// ModuleRegistry registers and boots modules, loading deferred modules on
// first use.
type ModuleRegistry struct {
	app    *Container
	logger logrus.FieldLogger

	mu         sync.Mutex
	eager      []Module
	registered map[Module]bool
	loads      map[Module]*moduleLoad
	booted     bool
}

// NewModuleRegistry creates a registry bound to app.
func NewModuleRegistry(app *Container) *ModuleRegistry {
	return &ModuleRegistry{
		app:        app,
		logger:     app.logger.WithField("component", "modules"),
		registered: make(map[Module]bool),
		loads:      make(map[Module]*moduleLoad),
	}
}

// Register adds a module. Eager modules are registered at once, and booted
// at once when the registry has already booted. Registering the same module
// twice is a no-op.
func (r *ModuleRegistry) Register(m Module) error {
	r.mu.Lock()
	if r.registered[m] {
		r.mu.Unlock()
		return nil
	}
	r.registered[m] = true
	r.mu.Unlock()

	if m.IsDeferred() {
		return r.registerDeferred(m)
	}

	if err := r.load(m); err != nil {
		return err
	}
	r.mu.Lock()
	r.eager = append(r.eager, m)
	r.mu.Unlock()
	return nil
}

// registerDeferred binds a loader for each provided identity. The first
// resolution of any of them registers the module.
func (r *ModuleRegistry) registerDeferred(m Module) error {
	for _, id := range m.Provides() {
		r.app.deferTo(id, func() error { return r.load(m) })
	}
	r.logger.WithField("provides", token.Describe(m.Provides())).Debug("module deferred")
	return nil
}

// moduleLoad registers one module once. Every caller waits for the first
// one and gets its error.
type moduleLoad struct {
	once sync.Once
	err  error
}

func (r *ModuleRegistry) load(m Module) error {
	r.mu.Lock()
	l, ok := r.loads[m]
	if !ok {
		l = &moduleLoad{}
		r.loads[m] = l
	}
	r.mu.Unlock()

	first := false
	l.once.Do(func() {
		first = true
		l.err = m.Register(r.app)
	})
	if !first || l.err != nil {
		return l.err
	}
	r.logger.WithField("module", moduleName(m)).Debug("module registered")

	r.mu.Lock()
	booted := r.booted
	if !booted && m.IsDeferred() {
		// Loaded before Boot: boot it with the eager modules.
		r.eager = append(r.eager, m)
	}
	r.mu.Unlock()

	if booted {
		return m.Boot(r.app)
	}
	return nil
}

// Boot calls Boot on every eager module, in registration order. It runs
// once; later calls return nil.
func (r *ModuleRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	modules := append([]Module(nil), r.eager...)
	r.mu.Unlock()

	for _, m := range modules {
		if err := m.Boot(r.app); err != nil {
			return fmt.Errorf("boot %s: %w", moduleName(m), err)
		}
	}
	return nil
}

// Booted reports whether Boot has been called.
func (r *ModuleRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Modules returns the loaded modules in boot order. Deferred modules appear
// once they have been loaded.
func (r *ModuleRegistry) Modules() []Module {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Module(nil), r.eager...)
}

func moduleName(m Module) string {
	if s, ok := m.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", m)
}
