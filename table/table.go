// Package table loads one CSV file fully into memory and indexes its rows
// by key column, the way each of the three merge inputs (LCA, A, B) needs
// to be held before the merge driver can walk them.
package table

import (
	"fmt"
	"io"

	"github.com/carlodf/csvmerge3/csvio"
	"github.com/carlodf/csvmerge3/merrors"
)

// Table is one fully-decoded, key-indexed CSV file.
type Table struct {
	Header    []string
	Rows      []csvio.Row
	FieldIdx  map[string]int
	KeyColumn string
	KeyIdx    int

	index map[string]int // key value -> position in Rows
}

// Load reads r in full and indexes every row by keyColumn.
func Load(r io.Reader, keyColumn string) (*Table, error) {
	cr := csvio.NewReader(r)
	header, err := cr.ReadHeader()
	if err != nil {
		return nil, err
	}
	if len(header) == 0 {
		return nil, merrors.New(merrors.KindHeaderEmpty, "header row has no columns")
	}

	fieldIdx, err := buildFieldIndex(header)
	if err != nil {
		return nil, err
	}
	keyIdx, ok := fieldIdx[keyColumn]
	if !ok {
		return nil, merrors.New(merrors.KindMissingKeyColumn,
			fmt.Sprintf("key column %q not present in header", keyColumn))
	}

	t := &Table{
		Header:    header,
		FieldIdx:  fieldIdx,
		KeyColumn: keyColumn,
		KeyIdx:    keyIdx,
		index:     make(map[string]int),
	}

	for {
		row, err := cr.ReadRow(len(header))
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		key := row.Fields[keyIdx]
		if pos, dup := t.index[key]; dup {
			return nil, merrors.New(merrors.KindDuplicateKey,
				fmt.Sprintf("key %q at line %d repeats the key of line %d", key, row.Line, t.Rows[pos].Line))
		}
		t.index[key] = len(t.Rows)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func buildFieldIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := idx[name]; dup {
			return nil, merrors.New(merrors.KindMalformedRow,
				fmt.Sprintf("duplicate column name %q in header", name))
		}
		idx[name] = i
	}
	return idx, nil
}

// Len reports how many data rows the table holds.
func (t *Table) Len() int { return len(t.Rows) }

// RowAt returns the row at position pos.
func (t *Table) RowAt(pos int) csvio.Row { return t.Rows[pos] }

// Key returns row's key value.
func (t *Table) Key(row csvio.Row) string { return row.Fields[t.KeyIdx] }

// KeyAt returns the key of the row at position pos.
func (t *Table) KeyAt(pos int) string { return t.Rows[pos].Fields[t.KeyIdx] }

// PosOf returns the row position for key, regardless of whether a cursor
// has already consumed it.
func (t *Table) PosOf(key string) (int, bool) {
	pos, ok := t.index[key]
	return pos, ok
}
