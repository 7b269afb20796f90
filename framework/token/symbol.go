package token

import (
	"github.com/google/uuid"
)

// Symbol is a unique opaque handle. A Symbol is equal only to itself,
// even when two symbols share a description.
type Symbol struct {
	*symbol
}

type symbol struct {
	id          uuid.UUID
	description string
}

// NewSymbol creates a fresh symbol.
//
//	sym := token.NewSymbol("AccountRepository")
func NewSymbol(description string) Symbol {
	return Symbol{&symbol{id: uuid.New(), description: description}}
}

// IsZero reports whether s was never created with NewSymbol.
func (s Symbol) IsZero() bool { return s.symbol == nil }

// Description returns the label given to NewSymbol.
func (s Symbol) Description() string {
	if s.symbol == nil {
		return ""
	}
	return s.description
}

// ID returns the symbol's unique id.
func (s Symbol) ID() uuid.UUID {
	if s.symbol == nil {
		return uuid.Nil
	}
	return s.id
}

func (s Symbol) String() string {
	return "Symbol(" + s.Description() + ")"
}
