package provider

import (
	"reflect"
	"strconv"
)

// ArgumentCountError is returned by a factory called with the wrong number
// of values.
type ArgumentCountError struct {
	Want int
	Got  int
}

// Error implements the error interface.
func (e ArgumentCountError) Error() string {
	// Example: provider: factory wants 2 arguments, got 1
	return "provider: factory wants " + strconv.Itoa(e.Want) + " arguments, got " + strconv.Itoa(e.Got)
}

// ArgumentTypeError is returned by a factory when a value does not have the
// type of the constructor parameter at its position.
type ArgumentTypeError struct {
	// Position is the zero-based parameter index.
	Position int

	Want string
	Got  string
}

// Error implements the error interface.
func (e ArgumentTypeError) Error() string {
	// Example: provider: argument 0 is string, want *accounts.Mailer
	return "provider: argument " + strconv.Itoa(e.Position) + " is " + e.Got + ", want " + e.Want
}

func arg[T any](args []any, i int) (T, error) {
	if v, ok := args[i].(T); ok {
		return v, nil
	}
	var zero T
	want := reflect.TypeFor[T]()
	if args[i] == nil && nilable(want) {
		return zero, nil
	}
	got := "<nil>"
	if args[i] != nil {
		got = reflect.TypeOf(args[i]).String()
	}
	return zero, ArgumentTypeError{Position: i, Want: want.String(), Got: got}
}

func nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}
