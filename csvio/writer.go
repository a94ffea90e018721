package csvio

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/carlodf/csvmerge3/config"
)

// Writer encodes CSV records under a configurable quoting policy and line
// terminator. encoding/csv.Writer only ever implements "minimal" quoting,
// so fields are encoded by hand here; everything else about the shape of
// this type (a bufio.Writer underneath, Flush at the end) follows the
// stdlib writer's own idiom.
type Writer struct {
	w     *bufio.Writer
	quote config.QuotePolicy
	term  []byte
}

// NewWriter wraps w.
func NewWriter(w io.Writer, quote config.QuotePolicy, term config.LineTerminator) *Writer {
	return &Writer{w: bufio.NewWriter(w), quote: quote, term: term.Bytes()}
}

// WriteRaw emits raw verbatim, with no re-encoding. Used to pass an
// unchanged row through byte-for-byte.
func (wr *Writer) WriteRaw(raw []byte) error {
	_, err := wr.w.Write(raw)
	return err
}

// WriteLine writes s followed by the configured line terminator, with no
// quoting or escaping. Used for conflict marker lines.
func (wr *Writer) WriteLine(s string) error {
	if _, err := wr.w.WriteString(s); err != nil {
		return err
	}
	_, err := wr.w.Write(wr.term)
	return err
}

// WriteFields encodes one record under the writer's quoting policy,
// followed by the configured line terminator.
func (wr *Writer) WriteFields(fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if err := wr.w.WriteByte(','); err != nil {
				return err
			}
		}
		if err := wr.writeField(f); err != nil {
			return err
		}
	}
	_, err := wr.w.Write(wr.term)
	return err
}

func (wr *Writer) writeField(f string) error {
	if !wr.needsQuote(f) {
		_, err := wr.w.WriteString(f)
		return err
	}
	if err := wr.w.WriteByte('"'); err != nil {
		return err
	}
	if strings.ContainsRune(f, '"') {
		f = strings.ReplaceAll(f, `"`, `""`)
	}
	if _, err := wr.w.WriteString(f); err != nil {
		return err
	}
	return wr.w.WriteByte('"')
}

func (wr *Writer) needsQuote(f string) bool {
	switch wr.quote {
	case config.QuoteAll:
		return true
	case config.QuoteNone:
		return false
	case config.QuoteNonNumeric:
		_, err := strconv.ParseFloat(f, 64)
		return err != nil
	default: // QuoteMinimal
		return strings.ContainsAny(f, ",\"\r\n")
	}
}

// Flush flushes any buffered output to the underlying writer.
func (wr *Writer) Flush() error {
	return wr.w.Flush()
}
