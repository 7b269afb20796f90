// Package token defines the identities a container registers and resolves
// providers under.
//
// There are two kinds of identity:
//
//   - Token[T]: a branded Symbol for abstract dependencies (interfaces, values
//     with several possible implementations).
//   - Class[T]: the concrete type itself, for dependencies that are injected
//     by type without a separate token.
//
// Both satisfy Injectable[T], which is how provider.Create* checks at compile
// time that each token matches the constructor parameter at its position.
package token

import (
	"reflect"
	"strings"
)

// Key is the comparable lookup key behind an Identity.
type Key struct {
	sym *symbol
	typ reflect.Type
}

// IsZero reports whether k identifies nothing.
func (k Key) IsZero() bool { return k.sym == nil && k.typ == nil }

// Name returns a string that is unique per key. Hosts that index providers
// by string (see framework/bridge) use it as the registration name.
func (k Key) Name() string {
	switch {
	case k.sym != nil:
		return k.sym.description + "#" + k.sym.id.String()
	case k.typ != nil:
		return qualifiedName(k.typ)
	}
	return ""
}

func (k Key) String() string {
	switch {
	case k.sym != nil:
		return Symbol{k.sym}.String()
	case k.typ != nil:
		return k.typ.String()
	}
	return "<nil>"
}

// Identity is anything a provider can be registered or resolved under.
type Identity interface {
	Key() Key
	String() string
}

// Injectable is an Identity that resolves to a T. Only Token[T] and Class[T]
// implement it.
type Injectable[T any] interface {
	Identity
	resolves(*T)
}

// ── Token ────────────────────────────────────────────────────────────────────

// Token is a symbol branded with the type of value it resolves to.
//
//	var AccountRepositoryToken = token.NewToken[AccountRepository]("AccountRepository")
type Token[T any] struct {
	Branded[Symbol, T]
}

// NewToken creates a token over a fresh symbol.
func NewToken[T any](description string) Token[T] {
	return TokenFor[T](NewSymbol(description))
}

// TokenFor brands an existing symbol. Tokens for the same symbol share a Key
// at runtime whatever their T; the compiler still treats Token[A] and
// Token[B] as unrelated types.
func TokenFor[T any](sym Symbol) Token[T] {
	return Token[T]{Brand[T](sym)}
}

// Symbol returns the underlying symbol.
func (t Token[T]) Symbol() Symbol { return t.Unbrand() }

func (t Token[T]) Key() Key { return Key{sym: t.Unbrand().symbol} }

func (t Token[T]) String() string { return t.Unbrand().String() }

func (Token[T]) resolves(*T) {}

// ── Class ────────────────────────────────────────────────────────────────────

// Class identifies a concrete type. It lets a constructor parameter of type
// *Mailer be satisfied by the provider registered for *Mailer itself.
type Class[T any] struct {
	_ [0]*T
}

// ClassOf returns the class identity of T.
func ClassOf[T any]() Class[T] { return Class[T]{} }

// Type returns T's reflect type.
func (Class[T]) Type() reflect.Type { return reflect.TypeFor[T]() }

func (c Class[T]) Key() Key { return Key{typ: c.Type()} }

func (c Class[T]) String() string { return c.Type().String() }

func (Class[T]) resolves(*T) {}

// ── Helpers ──────────────────────────────────────────────────────────────────

// Describe joins the identities' String values, for logs and errors.
func Describe(ids []Identity) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		if id == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = id.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// KeyOf returns id's key, or the zero Key for a nil identity.
func KeyOf(id Identity) Key {
	if id == nil {
		return Key{}
	}
	return id.Key()
}

func qualifiedName(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + qualifiedName(t.Elem())
	case reflect.Slice:
		return "[]" + qualifiedName(t.Elem())
	}
	return t.String()
}
