// Package rowmerge resolves one row's worth of per-column field conflicts
// and formats a conflict block when resolution isn't possible without
// picking a winner.
package rowmerge

import (
	"github.com/carlodf/csvmerge3/csvio"
	"github.com/carlodf/csvmerge3/field"
)

// FieldConflict is one output column whose A and B values disagree and
// can't be resolved against the LCA.
type FieldConflict struct {
	Column string
	ValueA field.Value
	ValueB field.Value
}

// Conflict describes a whole row that couldn't be merged automatically.
type Conflict struct {
	Key    string
	LineL  int
	LineA  int
	LineB  int
	RawA   []byte
	RawB   []byte
	Fields []FieldConflict
	// DeletedA/DeletedB mark a side as having no row at all for this key
	// (a delete-vs-modify conflict), rather than a row with disagreeing
	// field values.
	DeletedA bool
	DeletedB bool
}

// Extract reads the value at column index idx out of row, returning an
// absent Value if row is nil or idx is out of range (column not present
// on that side).
func Extract(row *csvio.Row, idx int) field.Value {
	if row == nil || idx < 0 || idx >= len(row.Fields) {
		return nil
	}
	return field.Some(row.Fields[idx])
}

// MergeRow resolves one row across up to three aligned sources. Any of
// rowL, rowA, rowB may be nil, meaning that side has no row for this key.
// It returns the merged field values, or, if any column's values can't be
// resolved, a Conflict describing the whole row instead.
func MergeRow(key string, outCols []string, idxL, idxA, idxB []int, rowL, rowA, rowB *csvio.Row) ([]string, *Conflict) {
	out := make([]string, len(outCols))
	var fcs []FieldConflict

	for i, col := range outCols {
		vL := Extract(rowL, idxL[i])
		vA := Extract(rowA, idxA[i])
		vB := Extract(rowB, idxB[i])

		val, ok := resolveField(vL, vA, vB)
		if !ok {
			fcs = append(fcs, FieldConflict{Column: col, ValueA: vA, ValueB: vB})
			continue
		}
		if val != nil {
			out[i] = *val
		}
	}

	if len(fcs) == 0 {
		return out, nil
	}
	return nil, buildConflict(key, rowL, rowA, rowB, fcs)
}

// resolveField applies the three-way field rule: agreement wins outright;
// a column absent from the LCA (a column newly added by one or both
// sides) resolves to whichever side has it, or conflicts if both sides
// added it with different values; otherwise whichever side changed the
// LCA value wins, and disagreeing changes on both sides conflict.
func resolveField(vL, vA, vB field.Value) (field.Value, bool) {
	if field.Equal(vA, vB) {
		return vA, true
	}
	if vL == nil {
		switch {
		case vA == nil:
			return vB, true
		case vB == nil:
			return vA, true
		default:
			return nil, false
		}
	}
	switch {
	case field.Equal(vB, vL) && !field.Equal(vA, vL):
		return vA, true
	case field.Equal(vA, vL) && !field.Equal(vB, vL):
		return vB, true
	default:
		return nil, false
	}
}

func buildConflict(key string, rowL, rowA, rowB *csvio.Row, fcs []FieldConflict) *Conflict {
	c := &Conflict{Key: key, Fields: fcs}
	if rowL != nil {
		c.LineL = rowL.Line
	}
	if rowA != nil {
		c.LineA, c.RawA = rowA.Line, rowA.Raw
	} else {
		c.DeletedA = true
	}
	if rowB != nil {
		c.LineB, c.RawB = rowB.Line, rowB.Raw
	} else {
		c.DeletedB = true
	}
	return c
}
