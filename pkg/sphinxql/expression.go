package sphinxql

// Expression marks a piece of SQL as safe. Compilers emit its text verbatim
// and never quote or escape it.
type Expression struct {
	value string
}

// Expr wraps raw SQL in an Expression.
func Expr(raw string) Expression {
	return Expression{value: raw}
}

// Value returns the wrapped text.
func (e Expression) Value() string {
	return e.value
}

// String implements fmt.Stringer.
func (e Expression) String() string {
	return e.value
}
