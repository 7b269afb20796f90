package token

// Branded pairs a base value with a compile-time-only Brand type.
//
// Two Branded types that share a base but carry different brands are
// distinct Go types, so one can never be passed where the other is expected:
//
//	type UserID  = token.Branded[int, struct{ user struct{} }]
//	type OrderID = token.Branded[int, struct{ order struct{} }]
//
//	var u UserID = token.Brand[struct{ user struct{} }](123)
//	// var o OrderID = u   // compile error
//
// The brand has no runtime representation: the phantom field is a zero-length
// array and a Branded value is as large as its base.
type Branded[T any, Brand any] struct {
	_     [0]*Brand
	value T
}

// Brand tags v with Brand.
func Brand[Brand any, T any](v T) Branded[T, Brand] {
	return Branded[T, Brand]{value: v}
}

// Unbrand returns the underlying value.
func (b Branded[T, Brand]) Unbrand() T { return b.value }
