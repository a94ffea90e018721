package rowmerge

import (
	"fmt"
	"strings"

	"github.com/carlodf/csvmerge3/field"
)

// LineWriter is the narrow surface FormatConflict needs: writing a marker
// line (with the writer's configured line terminator appended) and
// writing a row's raw bytes verbatim. *csvio.Writer satisfies this.
type LineWriter interface {
	WriteLine(s string) error
	WriteRaw(raw []byte) error
}

// FormatConflict writes c as a conflict block:
//
//	>>>>>> input @<lineA> (<key>)
//	>>>>>> <col> = <valueA>
//	<row A verbatim>
//	====== input @<lineB> (<key>)
//	====== <col> = <valueB>
//	<row B verbatim>
//	<<<<<<
//
// A side with no row at all (DeletedA/DeletedB) reports "Deleted @<lineL>"
// instead of its own line number, and contributes no row text.
func FormatConflict(w LineWriter, c Conflict) error {
	if err := writeSide(w, ">>>>>>", c.Key, c.LineL, c.LineA, c.DeletedA, c.RawA, c.Fields, func(fc FieldConflict) field.Value { return fc.ValueA }); err != nil {
		return err
	}
	if err := writeSide(w, "======", c.Key, c.LineL, c.LineB, c.DeletedB, c.RawB, c.Fields, func(fc FieldConflict) field.Value { return fc.ValueB }); err != nil {
		return err
	}
	return w.WriteLine("<<<<<<")
}

func writeSide(w LineWriter, marker, key string, lineL, line int, deleted bool, raw []byte, fcs []FieldConflict, pick func(FieldConflict) field.Value) error {
	if deleted {
		if err := w.WriteLine(fmt.Sprintf("%s input Deleted @%d", marker, lineL)); err != nil {
			return err
		}
	} else {
		if err := w.WriteLine(fmt.Sprintf("%s input @%d (%s)", marker, line, key)); err != nil {
			return err
		}
	}
	for _, fc := range fcs {
		if err := w.WriteLine(fmt.Sprintf("%s %s = %s", marker, fc.Column, escapeMarkerValue(pick(fc)))); err != nil {
			return err
		}
	}
	if !deleted {
		return w.WriteRaw(raw)
	}
	return nil
}

func escapeMarkerValue(v field.Value) string {
	if v == nil {
		return "None"
	}
	s := strings.ReplaceAll(*v, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", `\n`)
}
