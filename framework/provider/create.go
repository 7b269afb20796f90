package provider

import (
	"github.com/km-arc/go-inject/framework/token"
)

// Create builds a descriptor for a constructor without dependencies.
// The descriptor is registered under token.ClassOf[T]() unless As is given.
//
// Create1 through Create6 do the same for constructors with one to six
// parameters. Each parameter P is paired with a token.Injectable[P] at the
// same position, either a Token[P] or the Class[P] of a concrete type:
//
//	provider.Create2(NewForgotPasswordUseCase,
//	    AccountRepositoryToken,   // token.Token[AccountRepository]
//	    token.ClassOf[*Mailer](), // concrete class
//	)
//
// The resulting factory forwards its arguments to the constructor in the
// order of Inject.
func Create[T any](ctor func() T, opts ...Option) Provider {
	var fn func() (T, error)
	if ctor != nil {
		fn = func() (T, error) { return ctor(), nil }
	}
	return CreateErr(fn, opts...)
}

// Create1 builds a descriptor for a constructor with one parameter.
func Create1[T, A any](ctor func(A) T, a token.Injectable[A], opts ...Option) Provider {
	var fn func(A) (T, error)
	if ctor != nil {
		fn = func(vA A) (T, error) { return ctor(vA), nil }
	}
	return CreateErr1(fn, a, opts...)
}

// Create2 builds a descriptor for a constructor with two parameters.
func Create2[T, A, B any](ctor func(A, B) T, a token.Injectable[A], b token.Injectable[B], opts ...Option) Provider {
	var fn func(A, B) (T, error)
	if ctor != nil {
		fn = func(vA A, vB B) (T, error) { return ctor(vA, vB), nil }
	}
	return CreateErr2(fn, a, b, opts...)
}

// Create3 builds a descriptor for a constructor with three parameters.
func Create3[T, A, B, C any](ctor func(A, B, C) T, a token.Injectable[A], b token.Injectable[B], c token.Injectable[C], opts ...Option) Provider {
	var fn func(A, B, C) (T, error)
	if ctor != nil {
		fn = func(vA A, vB B, vC C) (T, error) { return ctor(vA, vB, vC), nil }
	}
	return CreateErr3(fn, a, b, c, opts...)
}

// Create4 builds a descriptor for a constructor with four parameters.
func Create4[T, A, B, C, D any](ctor func(A, B, C, D) T, a token.Injectable[A], b token.Injectable[B], c token.Injectable[C], d token.Injectable[D], opts ...Option) Provider {
	var fn func(A, B, C, D) (T, error)
	if ctor != nil {
		fn = func(vA A, vB B, vC C, vD D) (T, error) { return ctor(vA, vB, vC, vD), nil }
	}
	return CreateErr4(fn, a, b, c, d, opts...)
}

// Create5 builds a descriptor for a constructor with five parameters.
func Create5[T, A, B, C, D, E any](ctor func(A, B, C, D, E) T, a token.Injectable[A], b token.Injectable[B], c token.Injectable[C], d token.Injectable[D], e token.Injectable[E], opts ...Option) Provider {
	var fn func(A, B, C, D, E) (T, error)
	if ctor != nil {
		fn = func(vA A, vB B, vC C, vD D, vE E) (T, error) { return ctor(vA, vB, vC, vD, vE), nil }
	}
	return CreateErr5(fn, a, b, c, d, e, opts...)
}

// Create6 builds a descriptor for a constructor with six parameters.
func Create6[T, A, B, C, D, E, F any](ctor func(A, B, C, D, E, F) T, a token.Injectable[A], b token.Injectable[B], c token.Injectable[C], d token.Injectable[D], e token.Injectable[E], f token.Injectable[F], opts ...Option) Provider {
	var fn func(A, B, C, D, E, F) (T, error)
	if ctor != nil {
		fn = func(vA A, vB B, vC C, vD D, vE E, vF F) (T, error) { return ctor(vA, vB, vC, vD, vE, vF), nil }
	}
	return CreateErr6(fn, a, b, c, d, e, f, opts...)
}

// CreateErr is Create for a constructor that can fail. The constructor's
// error is returned by the factory unchanged.
func CreateErr[T any](ctor func() (T, error), opts ...Option) Provider {
	p := build[T]([]token.Identity{}, opts)
	if ctor == nil {
		return p
	}
	p.UseFactory = factory(0, func(_ []any) (any, error) {
		instance, err := ctor()
		return result(instance, err)
	})
	return p
}

// CreateErr1 is Create1 for a constructor that can fail.
func CreateErr1[T, A any](ctor func(A) (T, error), a token.Injectable[A], opts ...Option) Provider {
	p := build[T]([]token.Identity{a}, opts)
	if ctor == nil {
		return p
	}
	p.UseFactory = factory(1, func(args []any) (any, error) {
		vA, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		instance, err := ctor(vA)
		return result(instance, err)
	})
	return p
}

// CreateErr2 is Create2 for a constructor that can fail.
func CreateErr2[T, A, B any](ctor func(A, B) (T, error), a token.Injectable[A], b token.Injectable[B], opts ...Option) Provider {
	p := build[T]([]token.Identity{a, b}, opts)
	if ctor == nil {
		return p
	}
	p.UseFactory = factory(2, func(args []any) (any, error) {
		vA, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		vB, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		instance, err := ctor(vA, vB)
		return result(instance, err)
	})
	return p
}

// CreateErr3 is Create3 for a constructor that can fail.
func CreateErr3[T, A, B, C any](ctor func(A, B, C) (T, error), a token.Injectable[A], b token.Injectable[B], c token.Injectable[C], opts ...Option) Provider {
	p := build[T]([]token.Identity{a, b, c}, opts)
	if ctor == nil {
		return p
	}
	p.UseFactory = factory(3, func(args []any) (any, error) {
		vA, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		vB, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		vC, err := arg[C](args, 2)
		if err != nil {
			return nil, err
		}
		instance, err := ctor(vA, vB, vC)
		return result(instance, err)
	})
	return p
}

// CreateErr4 is Create4 for a constructor that can fail.
func CreateErr4[T, A, B, C, D any](ctor func(A, B, C, D) (T, error), a token.Injectable[A], b token.Injectable[B], c token.Injectable[C], d token.Injectable[D], opts ...Option) Provider {
	p := build[T]([]token.Identity{a, b, c, d}, opts)
	if ctor == nil {
		return p
	}
	p.UseFactory = factory(4, func(args []any) (any, error) {
		vA, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		vB, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		vC, err := arg[C](args, 2)
		if err != nil {
			return nil, err
		}
		vD, err := arg[D](args, 3)
		if err != nil {
			return nil, err
		}
		instance, err := ctor(vA, vB, vC, vD)
		return result(instance, err)
	})
	return p
}

// CreateErr5 is Create5 for a constructor that can fail.
func CreateErr5[T, A, B, C, D, E any](ctor func(A, B, C, D, E) (T, error), a token.Injectable[A], b token.Injectable[B], c token.Injectable[C], d token.Injectable[D], e token.Injectable[E], opts ...Option) Provider {
	p := build[T]([]token.Identity{a, b, c, d, e}, opts)
	if ctor == nil {
		return p
	}
	p.UseFactory = factory(5, func(args []any) (any, error) {
		vA, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		vB, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		vC, err := arg[C](args, 2)
		if err != nil {
			return nil, err
		}
		vD, err := arg[D](args, 3)
		if err != nil {
			return nil, err
		}
		vE, err := arg[E](args, 4)
		if err != nil {
			return nil, err
		}
		instance, err := ctor(vA, vB, vC, vD, vE)
		return result(instance, err)
	})
	return p
}

// CreateErr6 is Create6 for a constructor that can fail.
func CreateErr6[T, A, B, C, D, E, F any](ctor func(A, B, C, D, E, F) (T, error), a token.Injectable[A], b token.Injectable[B], c token.Injectable[C], d token.Injectable[D], e token.Injectable[E], f token.Injectable[F], opts ...Option) Provider {
	p := build[T]([]token.Identity{a, b, c, d, e, f}, opts)
	if ctor == nil {
		return p
	}
	p.UseFactory = factory(6, func(args []any) (any, error) {
		vA, err := arg[A](args, 0)
		if err != nil {
			return nil, err
		}
		vB, err := arg[B](args, 1)
		if err != nil {
			return nil, err
		}
		vC, err := arg[C](args, 2)
		if err != nil {
			return nil, err
		}
		vD, err := arg[D](args, 3)
		if err != nil {
			return nil, err
		}
		vE, err := arg[E](args, 4)
		if err != nil {
			return nil, err
		}
		vF, err := arg[F](args, 5)
		if err != nil {
			return nil, err
		}
		instance, err := ctor(vA, vB, vC, vD, vE, vF)
		return result(instance, err)
	})
	return p
}

func build[T any](inject []token.Identity, opts []Option) Provider {
	p := Provider{
		Provide: token.ClassOf[T](),
		Inject:  inject,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func factory(arity int, call func(args []any) (any, error)) Factory {
	return func(args ...any) (any, error) {
		if len(args) != arity {
			return nil, ArgumentCountError{Want: arity, Got: len(args)}
		}
		return call(args)
	}
}

func result[T any](instance T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return instance, nil
}
