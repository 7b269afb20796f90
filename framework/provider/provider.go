// Package provider builds the descriptors a container registers.
//
// A descriptor names the identity it is registered under, the ordered
// identities the container must resolve for it and a factory that receives
// those values positionally:
//
//	var AccountRepositoryToken = token.NewToken[AccountRepository]("AccountRepository")
//
//	type ForgotPasswordUseCase struct{ accounts AccountRepository }
//
//	func NewForgotPasswordUseCase(accounts AccountRepository) *ForgotPasswordUseCase {
//	    return &ForgotPasswordUseCase{accounts: accounts}
//	}
//
//	p := provider.Create1(NewForgotPasswordUseCase, AccountRepositoryToken)
//
// Create1 only compiles when the token resolves to the constructor's
// parameter type, so a token for the wrong interface is rejected at the call
// site rather than when the container runs the factory.
package provider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/km-arc/go-inject/framework/token"
)

var (
	// ErrNoIdentity is returned for a descriptor without a registration identity.
	ErrNoIdentity = errors.New("provider: missing registration identity")

	// ErrNoFactory is returned for a descriptor without a factory.
	ErrNoFactory = errors.New("provider: missing factory")

	// ErrNilDependency is returned when an injected identity is nil.
	ErrNilDependency = errors.New("provider: nil dependency identity")
)

// Factory builds an instance from resolved dependency values, passed in the
// same order as Provider.Inject.
type Factory func(args ...any) (any, error)

// Scope decides whether a container caches what a factory returns.
type Scope int

const (
	// Singleton instances are built once and cached.
	Singleton Scope = iota
	// Transient instances are rebuilt on every resolution.
	Transient
)

func (s Scope) String() string {
	switch s {
	case Singleton:
		return "singleton"
	case Transient:
		return "transient"
	}
	return fmt.Sprintf("scope(%d)", int(s))
}

// Provider is a registration record for a container.
type Provider struct {
	// Provide is the identity the provider is registered under.
	Provide token.Identity

	// UseFactory builds the instance.
	UseFactory Factory

	// Inject lists the identities to resolve and pass to UseFactory, in order.
	Inject []token.Identity

	Scope Scope
}

// Key returns the registration key.
func (p Provider) Key() token.Key { return token.KeyOf(p.Provide) }

// Validate reports descriptors that no container can register.
func (p Provider) Validate() error {
	if p.Provide == nil || p.Provide.Key().IsZero() {
		return ErrNoIdentity
	}
	if p.UseFactory == nil {
		return fmt.Errorf("%w for %s", ErrNoFactory, p.Provide)
	}
	for i, id := range p.Inject {
		if id == nil || id.Key().IsZero() {
			return fmt.Errorf("%w: %s at position %d", ErrNilDependency, p.Provide, i)
		}
	}
	return nil
}

func (p Provider) String() string {
	var b strings.Builder
	if p.Provide == nil {
		b.WriteString("<nil>")
	} else {
		b.WriteString(p.Provide.String())
	}
	if len(p.Inject) > 0 {
		b.WriteString(" <- ")
		b.WriteString(token.Describe(p.Inject))
	}
	b.WriteString(" (")
	b.WriteString(p.Scope.String())
	b.WriteString(")")
	return b.String()
}

// ── Options ──────────────────────────────────────────────────────────────────

// Option adjusts a descriptor built by Create*, Value or Existing.
type Option func(*Provider)

// As registers the provider under id instead of its class identity.
//
//	provider.Create(NewPostgresAccounts, provider.As(AccountRepositoryToken))
func As(id token.Identity) Option {
	return func(p *Provider) {
		if id != nil {
			p.Provide = id
		}
	}
}

// WithScope sets the provider's scope.
func WithScope(s Scope) Option {
	return func(p *Provider) { p.Scope = s }
}
