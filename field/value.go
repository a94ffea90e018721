// Package field gives the merge engine a way to talk about a single CSV
// cell that may or may not exist for a given file, distinct from a cell
// that exists and happens to be the empty string.
package field

// Value is a single cell's text after it has been projected into the
// merged schema. A nil Value means the column (or the whole row) simply
// does not exist on that side; a non-nil Value pointing at "" means the
// cell is present and empty. Callers must not compare Values with == —
// use Equal.
type Value = *string

// Some wraps s as a present Value.
func Some(s string) Value {
	v := s
	return &v
}

// Equal reports whether a and b represent the same cell: both absent, or
// both present with identical text.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// StringOrNone renders v for diagnostic output: the cell's text, or the
// literal "None" when v is absent.
func StringOrNone(v Value) string {
	if v == nil {
		return "None"
	}
	return *v
}
