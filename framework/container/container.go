package container

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/dolthub/swiss"
	"github.com/reusee/e5"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-inject/framework/graph"
	"github.com/km-arc/go-inject/framework/provider"
	"github.com/km-arc/go-inject/framework/token"
)

// ── Types ────────────────────────────────────────────────────────────────────

// Extender wraps an already-built instance with decorator logic.
type Extender func(instance any, c *Container) any

type alias struct {
	id     token.Identity
	target token.Identity
}

// Container is the host injector for provider descriptors.
//
// It supports:
//   - Register / Instance / Alias
//   - Make / Resolve (generic)
//   - Tags (group several identities under one name)
//   - Extend (decorate resolved instances)
//   - Contextual binding (when A needs B, give it C)
//   - Rebinding and after-resolving callbacks
//   - Validate, a startup check of the whole dependency graph
//
// A Container is safe for concurrent use. Two goroutines racing to build the
// same singleton may both run its factory; the first stored instance wins and
// is returned to both.
type Container struct {
	mu sync.RWMutex

	// key → provider
	bindings *swiss.Map[token.Key, provider.Provider]

	// key → cached singleton or pre-built instance
	instances *swiss.Map[token.Key, any]

	// registration order and the identity each key was registered with
	order []token.Key
	ids   map[token.Key]token.Identity

	// alias key → target, and alias keys in the order they were added
	aliases    map[token.Key]alias
	aliasOrder []token.Key

	extenders  map[token.Key][]Extender
	tags       map[string][]token.Identity
	contextual map[token.Key]map[token.Key]provider.Provider

	// key → loader of a deferred module
	loaders map[token.Key]*loader

	reboundCallbacks map[token.Key][]func(any)
	afterResolving   []func(token.Identity, any)

	logger logrus.FieldLogger
}

// Option configures a Container.
type Option func(c *Container)

// WithLogger sets the logger used for registration and resolution events.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger.WithField("component", "container")
		}
	}
}

// New creates an empty container. The container is bound to itself under
// token.ClassOf[*Container](), so constructors can inject it.
func New(opts ...Option) *Container {
	c := &Container{
		bindings:         swiss.NewMap[token.Key, provider.Provider](16),
		instances:        swiss.NewMap[token.Key, any](16),
		ids:              make(map[token.Key]token.Identity),
		aliases:          make(map[token.Key]alias),
		extenders:        make(map[token.Key][]Extender),
		tags:             make(map[string][]token.Identity),
		contextual:       make(map[token.Key]map[token.Key]provider.Provider),
		loaders:          make(map[token.Key]*loader),
		reboundCallbacks: make(map[token.Key][]func(any)),
		logger:           logrus.StandardLogger().WithField("component", "container"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Instance(token.ClassOf[*Container](), c)
	return c
}

// ── Registration ─────────────────────────────────────────────────────────────

// Register binds a provider under its Provide identity. A previous binding
// for the same identity is replaced and its cached instance dropped; if that
// instance had been resolved, rebinding callbacks receive the new one.
//
//	c.Register(provider.Create1(NewForgotPasswordUseCase, AccountRepositoryToken))
func (c *Container) Register(p provider.Provider) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidProvider, err)
	}
	key := p.Key()

	c.mu.Lock()
	_, wasResolved := c.instances.Get(key)
	c.instances.Delete(key)
	c.bindings.Put(key, p)
	delete(c.loaders, key)
	c.dropAlias(key)
	c.remember(key, p.Provide)
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"provide": p.Provide.String(),
		"inject":  token.Describe(p.Inject),
		"scope":   p.Scope.String(),
	}).Debug("provider registered")

	if wasResolved {
		instance, err := c.Make(p.Provide)
		if err != nil {
			return err
		}
		c.fireRebound(key, instance)
	}
	return nil
}

// RegisterAll registers providers in order and stops at the first error.
func (c *Container) RegisterAll(providers ...provider.Provider) error {
	for _, p := range providers {
		if err := c.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// Instance binds a pre-built value.
//
//	c.Instance(token.ClassOf[*config.Config](), cfg)
func (c *Container) Instance(id token.Identity, instance any) {
	key := token.KeyOf(id)
	if key.IsZero() {
		return
	}
	c.mu.Lock()
	c.bindings.Delete(key)
	c.instances.Put(key, instance)
	delete(c.loaders, key)
	c.dropAlias(key)
	c.remember(key, id)
	c.mu.Unlock()

	c.fireRebound(key, instance)
}

// deferTo binds id to a loader that registers its real provider on first
// resolution.
func (c *Container) deferTo(id token.Identity, load func() error) {
	key := token.KeyOf(id)
	if key.IsZero() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.bindings.Has(key) || c.instances.Has(key) {
		return
	}
	c.loaders[key] = &loader{load: load}
	c.remember(key, id)
}

// remember must hold mu.Lock.
func (c *Container) remember(key token.Key, id token.Identity) {
	if _, ok := c.ids[key]; !ok {
		c.order = append(c.order, key)
	}
	c.ids[key] = id
}

// Alias makes aliasID resolve to whatever target resolves to.
//
//	c.Alias(token.ClassOf[*PostgresAccounts](), AccountRepositoryToken)
func (c *Container) Alias(target, aliasID token.Identity) error {
	targetKey, aliasKey := token.KeyOf(target), token.KeyOf(aliasID)
	if targetKey.IsZero() || aliasKey.IsZero() {
		return we.With(e5.Info("alias %v -> %v", aliasID, target))(ErrNotBound)
	}
	if targetKey == aliasKey {
		return we.With(e5.Info("alias %s", aliasID))(ErrSelfAlias)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.aliases[aliasKey]; !ok {
		c.aliasOrder = append(c.aliasOrder, aliasKey)
	}
	c.aliases[aliasKey] = alias{id: aliasID, target: target}
	return nil
}

// dropAlias removes an alias replaced by a direct binding. Must hold mu.Lock.
func (c *Container) dropAlias(key token.Key) {
	if _, ok := c.aliases[key]; !ok {
		return
	}
	delete(c.aliases, key)
	c.aliasOrder = slices.DeleteFunc(c.aliasOrder, func(k token.Key) bool { return k == key })
}

// canonical follows aliases. Must hold mu (read or write).
func (c *Container) canonical(key token.Key) token.Key {
	seen := 0
	for {
		a, ok := c.aliases[key]
		if !ok || seen > len(c.aliases) {
			return key
		}
		key = a.target.Key()
		seen++
	}
}

// ── Contextual Binding ───────────────────────────────────────────────────────

// When starts a contextual binding chain.
//
//	c.When(token.ClassOf[*ReportJob]()).
//	    Needs(StorageToken).
//	    Give(provider.Create(NewS3Storage, provider.As(StorageToken)))
func (c *Container) When(concrete token.Identity) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: concrete}
}

func (c *Container) getContextual(concrete, needs token.Key) (provider.Provider, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.contextual[c.canonical(concrete)]
	if !ok {
		return provider.Provider{}, false
	}
	p, ok := m[needs]
	return p, ok
}

// ── Extend ───────────────────────────────────────────────────────────────────

// Extend decorates the instance built for id. A singleton that is already
// cached is decorated immediately and rebinding callbacks fire.
//
//	c.Extend(LoggerToken, func(instance any, c *container.Container) any {
//	    return instance.(logrus.FieldLogger).WithField("app", "demo")
//	})
func (c *Container) Extend(id token.Identity, fn Extender) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	key := c.canonical(token.KeyOf(id))
	c.extenders[key] = append(c.extenders[key], fn)
	inst, cached := c.instances.Get(key)
	c.mu.Unlock()

	if !cached {
		return
	}
	extended := fn(inst, c)
	c.mu.Lock()
	c.instances.Put(key, extended)
	c.mu.Unlock()
	c.fireRebound(key, extended)
}

func (c *Container) applyExtenders(key token.Key, instance any) any {
	c.mu.RLock()
	exts := slices.Clone(c.extenders[key])
	c.mu.RUnlock()
	for _, ext := range exts {
		instance = ext(instance, c)
	}
	return instance
}

// ── Tags ─────────────────────────────────────────────────────────────────────

// Tag groups identities under a name. Identities already in the tag are not
// added twice.
//
//	c.Tag([]token.Identity{CPUReportToken, MemoryReportToken}, "reports")
func (c *Container) Tag(ids []token.Identity, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	all := append(c.tags[tag], lo.Filter(ids, func(id token.Identity, _ int) bool {
		return !token.KeyOf(id).IsZero()
	})...)
	c.tags[tag] = lo.UniqBy(all, func(id token.Identity) token.Key { return id.Key() })
}

// Tagged resolves every identity in a tag, in tagging order.
func (c *Container) Tagged(tag string) ([]any, error) {
	c.mu.RLock()
	ids := slices.Clone(c.tags[tag])
	c.mu.RUnlock()

	out := make([]any, 0, len(ids))
	for _, id := range ids {
		instance, err := c.Make(id)
		if err != nil {
			return nil, we.With(e5.Info("tag %q", tag))(err)
		}
		out = append(out, instance)
	}
	return out, nil
}

// ── Resolution ───────────────────────────────────────────────────────────────

// Make resolves id: its Inject identities first, in order, then its factory.
// Singletons are cached after the first call.
func (c *Container) Make(id token.Identity) (any, error) {
	return c.make(id, nil)
}

func (c *Container) make(id token.Identity, path []token.Identity) (any, error) {
	if token.KeyOf(id).IsZero() {
		return nil, we.With(
			e5.Info("nil identity"),
			e5.Info("path: %s", describePath(path)),
		)(ErrNotBound)
	}

	c.mu.RLock()
	key := c.canonical(id.Key())
	c.mu.RUnlock()

	for _, step := range path {
		c.mu.RLock()
		stepKey := c.canonical(step.Key())
		c.mu.RUnlock()
		if stepKey == key {
			return nil, we.With(
				e5.Info("resolving %s", id),
				e5.Info("path: %s", describePath(append(slices.Clone(path), id))),
			)(graph.CycleError{Path: append(slices.Clone(path), id)})
		}
	}

	if len(path) > 0 {
		if p, ok := c.getContextual(path[len(path)-1].Key(), key); ok {
			return c.build(id, key, p, path, false)
		}
	}

	c.mu.RLock()
	if inst, ok := c.instances.Get(key); ok {
		c.mu.RUnlock()
		return inst, nil
	}
	p, ok := c.bindings.Get(key)
	l := c.loaders[key]
	c.mu.RUnlock()

	if !ok && l != nil {
		if err := l.run(); err != nil {
			return nil, we.With(e5.Info("loading module for %s", id))(err)
		}
		c.mu.Lock()
		if c.loaders[key] == l {
			delete(c.loaders, key)
		}
		c.mu.Unlock()
		return c.make(id, path)
	}
	if !ok {
		return nil, we.With(
			e5.Info("no provider for %s", id),
			e5.Info("path: %s", describePath(path)),
		)(ErrNotBound)
	}
	return c.build(id, key, p, path, p.Scope == provider.Singleton)
}

func (c *Container) build(id token.Identity, key token.Key, p provider.Provider, path []token.Identity, cache bool) (any, error) {
	next := append(path[:len(path):len(path)], id)

	args := make([]any, len(p.Inject))
	for i, dep := range p.Inject {
		v, err := c.make(dep, next)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	instance, err := p.UseFactory(args...)
	if err != nil {
		return nil, we.With(
			e5.Info("building %s", id),
			e5.Info("path: %s", describePath(path)),
		)(err)
	}
	instance = c.applyExtenders(key, instance)

	if cache {
		c.mu.Lock()
		if existing, ok := c.instances.Get(key); ok {
			instance = existing
		} else {
			c.instances.Put(key, instance)
		}
		c.mu.Unlock()
	}

	c.logger.WithFields(logrus.Fields{
		"provide": id.String(),
		"scope":   p.Scope.String(),
	}).Debug("provider resolved")

	c.fireAfterResolving(id, instance)
	return instance, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// Bound reports whether id (or the identity it aliases) has a provider or
// instance.
func (c *Container) Bound(id token.Identity) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(token.KeyOf(id))
	_, deferred := c.loaders[key]
	return c.bindings.Has(key) || c.instances.Has(key) || deferred
}

// Resolved reports whether id has a cached instance.
func (c *Container) Resolved(id token.Identity) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.instances.Has(c.canonical(token.KeyOf(id)))
}

// Forget removes the provider and instance registered for id.
func (c *Container) Forget(id token.Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(token.KeyOf(id))
	c.bindings.Delete(key)
	c.instances.Delete(key)
	delete(c.loaders, key)
	delete(c.ids, key)
	c.order = slices.DeleteFunc(c.order, func(k token.Key) bool { return k == key })
}

// Flush resets the container, keeping only its binding to itself.
func (c *Container) Flush() {
	c.mu.Lock()
	c.bindings = swiss.NewMap[token.Key, provider.Provider](16)
	c.instances = swiss.NewMap[token.Key, any](16)
	c.order = nil
	c.ids = make(map[token.Key]token.Identity)
	c.aliases = make(map[token.Key]alias)
	c.aliasOrder = nil
	c.extenders = make(map[token.Key][]Extender)
	c.tags = make(map[string][]token.Identity)
	c.contextual = make(map[token.Key]map[token.Key]provider.Provider)
	c.loaders = make(map[token.Key]*loader)
	c.mu.Unlock()

	c.Instance(token.ClassOf[*Container](), c)
}

// Bindings returns every registered identity in registration order.
func (c *Container) Bindings() []token.Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]token.Identity, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.ids[k])
	}
	return out
}

// Providers returns the registered providers in registration order.
func (c *Container) Providers() []provider.Provider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]provider.Provider, 0, len(c.order))
	for _, k := range c.order {
		if p, ok := c.bindings.Get(k); ok {
			out = append(out, p)
		}
	}
	return out
}

// Provider returns the provider registered for id.
func (c *Container) Provider(id token.Identity) (provider.Provider, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bindings.Get(c.canonical(token.KeyOf(id)))
}

// Graph returns a snapshot of the dependency graph.
func (c *Container) Graph() *graph.Graph {
	providers := c.Providers()

	c.mu.RLock()
	var instanceIDs, deferredIDs []token.Identity
	for _, k := range c.order {
		switch {
		case c.bindings.Has(k):
		case c.loaders[k] != nil:
			deferredIDs = append(deferredIDs, c.ids[k])
		default:
			instanceIDs = append(instanceIDs, c.ids[k])
		}
	}
	opts := []graph.Option{graph.Instances(instanceIDs...), graph.Deferred(deferredIDs...)}
	for _, k := range c.aliasOrder {
		a := c.aliases[k]
		opts = append(opts, graph.Alias(a.id, a.target))
	}
	c.mu.RUnlock()

	return graph.Build(providers, opts...)
}

// Validate checks the whole graph without building anything: every injected
// identity must be bound, or given to its dependent by a contextual binding,
// and no provider may depend on itself. All problems are returned joined.
func (c *Container) Validate() error {
	g := c.Graph()

	var errs []error
	for _, e := range g.Missing() {
		if c.givenInContext(e.From, e.To) {
			continue
		}
		errs = append(errs, we.With(e5.Info("%s needs %s", e.From, e.To))(ErrNotBound))
	}
	errs = append(errs, c.validateContextual(g)...)
	if _, err := g.Order(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (c *Container) givenInContext(concrete, needs token.Identity) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.contextual[c.canonical(token.KeyOf(concrete))][c.canonical(token.KeyOf(needs))]
	return ok
}

// validateContextual checks the dependencies of every contextual provider.
func (c *Container) validateContextual(g *graph.Graph) []error {
	c.mu.RLock()
	var given []provider.Provider
	for _, byNeeds := range c.contextual {
		given = append(given, slices.Collect(maps.Values(byNeeds))...)
	}
	c.mu.RUnlock()
	slices.SortFunc(given, func(a, b provider.Provider) int {
		return strings.Compare(a.Key().Name(), b.Key().Name())
	})

	var errs []error
	for _, p := range given {
		for _, dep := range p.Inject {
			if _, ok := g.Node(dep); ok || c.givenInContext(p.Provide, dep) {
				continue
			}
			errs = append(errs, we.With(e5.Info("contextual %s needs %s", p.Provide, dep))(ErrNotBound))
		}
	}
	return errs
}

// ── Deferred loading ─────────────────────────────────────────────────────────

type loader struct {
	once sync.Once
	load func() error
	err  error
}

func (l *loader) run() error {
	l.once.Do(func() { l.err = l.load() })
	return l.err
}

// ── Callbacks ────────────────────────────────────────────────────────────────

// Rebinding registers a callback fired whenever id is bound to a new
// instance after having been resolved.
func (c *Container) Rebinding(id token.Identity, cb func(any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := token.KeyOf(id)
	c.reboundCallbacks[key] = append(c.reboundCallbacks[key], cb)
}

// AfterResolving registers a callback fired after any identity is built.
func (c *Container) AfterResolving(cb func(id token.Identity, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireRebound(key token.Key, instance any) {
	c.mu.RLock()
	cbs := slices.Clone(c.reboundCallbacks[key])
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(instance)
	}
}

func (c *Container) fireAfterResolving(id token.Identity, instance any) {
	c.mu.RLock()
	cbs := slices.Clone(c.afterResolving)
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(id, instance)
	}
}

// ── Generics helper ──────────────────────────────────────────────────────────

// Resolve calls Make and type-asserts the result.
//
//	uc, err := container.Resolve(c, token.ClassOf[*ForgotPasswordUseCase]())
func Resolve[T any](c *Container, id token.Injectable[T]) (T, error) {
	var zero T
	instance, err := c.Make(id)
	if err != nil {
		return zero, err
	}
	if instance == nil {
		return zero, nil
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, we.With(e5.Info("%s resolved to %T, want %s", id, instance, reflect.TypeFor[T]()))(ErrWrongType)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, id token.Injectable[T]) T {
	typed, err := Resolve(c, id)
	if err != nil {
		panic(err)
	}
	return typed
}
