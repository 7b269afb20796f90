package provider

import (
	"fmt"
	"reflect"

	"github.com/km-arc/go-inject/framework/token"
)

// Value builds a descriptor that always yields v.
//
//	provider.Value(DSNToken, "postgres://localhost/app")
func Value[T any](id token.Injectable[T], v T, opts ...Option) Provider {
	p := Provider{
		Provide: id,
		Inject:  []token.Identity{},
		UseFactory: factory(0, func(_ []any) (any, error) {
			return v, nil
		}),
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Existing builds a descriptor that yields whatever target resolves to.
// It is transient so it always follows target's own scope.
//
//	provider.Existing(LegacyAccountsToken, AccountRepositoryToken)
//
// Both identities resolve to the same T, so an alias to an unrelated type does
// not compile. Use Bind to expose a concrete class under an interface token.
func Existing[T any](id token.Injectable[T], target token.Injectable[T], opts ...Option) Provider {
	p := Provider{
		Provide: id,
		Inject:  []token.Identity{target},
		Scope:   Transient,
		UseFactory: factory(1, func(args []any) (any, error) {
			v, err := arg[T](args, 0)
			if err != nil {
				return nil, err
			}
			return v, nil
		}),
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// Bind builds a descriptor that exposes the instance of target under id:
//
//	provider.Bind(AccountRepositoryToken, token.ClassOf[*PostgresAccounts]())
//
// Go cannot constrain C to implement I at compile time, so Bind panics when
// C is not assignable to I. It is meant to be called while declaring modules,
// where such a mismatch is a programming error.
func Bind[I, C any](id token.Injectable[I], target token.Injectable[C], opts ...Option) Provider {
	want, have := reflect.TypeFor[I](), reflect.TypeFor[C]()
	if !have.AssignableTo(want) {
		panic(fmt.Sprintf("provider: Bind: %s is not assignable to %s", have, want))
	}
	p := Provider{
		Provide: id,
		Inject:  []token.Identity{target},
		Scope:   Transient,
		UseFactory: factory(1, func(args []any) (any, error) {
			v, err := arg[C](args, 0)
			if err != nil {
				return nil, err
			}
			bound, _ := any(v).(I)
			return bound, nil
		}),
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}
