// Package csvio wraps encoding/csv with the two things the merge engine
// needs that the stdlib decoder doesn't give you: the exact verbatim byte
// span each record occupied in its source (so an unchanged row can be
// written back out byte-for-byte, quoting and all), and a writer whose
// quoting policy and line terminator are configurable instead of fixed.
package csvio

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/carlodf/csvmerge3/merrors"
)

// Row is one decoded CSV record together with the raw bytes it came from.
type Row struct {
	// Line is the 1-based line number of the row's first physical line
	// (the header is line 1).
	Line int
	// Fields holds the decoded cell values, in file order.
	Fields []string
	// Raw holds the exact bytes the record occupied in the source,
	// including its original quoting and trailing line break(s). It is
	// nil for a synthesized row with no backing source text.
	Raw []byte
}

// Reader decodes CSV records while tracking each one's raw byte span.
type Reader struct {
	csv  *csv.Reader
	buf  *bytes.Buffer
	off  int64
	line int
}

// NewReader wraps r. The entire stream is buffered as it's read so that
// raw byte spans remain valid for the lifetime of the Reader; callers
// load whole files into Tables anyway (see package table), so this costs
// nothing beyond what's already resident.
func NewReader(r io.Reader) *Reader {
	buf := &bytes.Buffer{}
	cr := csv.NewReader(io.TeeReader(r, buf))
	cr.FieldsPerRecord = -1 // width is validated by the caller, not here
	return &Reader{csv: cr, buf: buf, line: 1}
}

// ReadHeader reads the first record as a header row.
func (r *Reader) ReadHeader() ([]string, error) {
	row, err := r.readRaw()
	if err == io.EOF {
		return nil, merrors.New(merrors.KindHeaderEmpty, "no header row: input is empty")
	}
	if err != nil {
		return nil, err
	}
	return row.Fields, nil
}

// ReadRow reads the next data record. If width is >= 0, a record whose
// field count doesn't match it is a fatal malformed-row error; pass -1 to
// skip the check.
func (r *Reader) ReadRow(width int) (Row, error) {
	row, err := r.readRaw()
	if err != nil {
		return Row{}, err
	}
	if width >= 0 && len(row.Fields) != width {
		return Row{}, merrors.New(merrors.KindMalformedRow,
			fmt.Sprintf("line %d: expected %d fields, got %d", row.Line, width, len(row.Fields)))
	}
	return row, nil
}

func (r *Reader) readRaw() (Row, error) {
	startOffset := r.off
	startLine := r.line

	fields, err := r.csv.Read()
	if err == io.EOF {
		return Row{}, io.EOF
	}
	if err != nil {
		return Row{}, merrors.Wrap(merrors.KindMalformedRow, fmt.Sprintf("line %d", startLine), err)
	}

	endOffset := r.csv.InputOffset()
	raw := append([]byte(nil), r.buf.Bytes()[startOffset:endOffset]...)
	r.off = endOffset

	lineBreaks := bytes.Count(raw, []byte("\n"))
	if lineBreaks < 1 {
		lineBreaks = 1
	}
	r.line = startLine + lineBreaks

	return Row{Line: startLine, Fields: fields, Raw: raw}, nil
}
