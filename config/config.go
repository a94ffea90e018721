// Package config carries the merge engine's ambient settings: which
// column identifies a row, how the writer quotes and terminates output
// lines, and where diagnostic logging goes. It is the same kind of small,
// dependency-light options struct the rest of the pack threads through a
// decoder or transformer constructor.
package config

import (
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"
)

// Logger is the narrow logging surface the merge driver needs. A
// *logrus.Logger or logrus.FieldLogger satisfies it without any adapter.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// QuotePolicy controls which output fields csvio.Writer quotes, mirroring
// the dialect vocabulary of Python's csv module that the ancestor tool's
// CLI flags were named after.
type QuotePolicy int

const (
	// QuoteMinimal quotes only fields that need it to round-trip: those
	// containing the delimiter, a quote character, or a line break.
	QuoteMinimal QuotePolicy = iota
	// QuoteAll quotes every field unconditionally.
	QuoteAll
	// QuoteNonNumeric quotes every field that doesn't parse as a number.
	QuoteNonNumeric
	// QuoteNone never quotes, even when the result is ambiguous.
	QuoteNone
)

func (q QuotePolicy) String() string {
	switch q {
	case QuoteAll:
		return "all"
	case QuoteNonNumeric:
		return "nonnumeric"
	case QuoteNone:
		return "none"
	default:
		return "minimal"
	}
}

// ParseQuotePolicy parses the --quoting flag value.
func ParseQuotePolicy(s string) (QuotePolicy, error) {
	switch s {
	case "", "minimal":
		return QuoteMinimal, nil
	case "all":
		return QuoteAll, nil
	case "nonnumeric":
		return QuoteNonNumeric, nil
	case "none":
		return QuoteNone, nil
	default:
		return QuoteMinimal, fmt.Errorf("config: unknown quoting policy %q", s)
	}
}

// LineTerminator controls the byte sequence csvio.Writer emits at the end
// of each output row.
type LineTerminator int

const (
	// LineNative picks "\r\n" on Windows and "\n" everywhere else.
	LineNative LineTerminator = iota
	LineUnix
	LineDOS
)

// ParseLineTerminator parses the --line-terminator flag value.
func ParseLineTerminator(s string) (LineTerminator, error) {
	switch s {
	case "", "native":
		return LineNative, nil
	case "unix", "lf":
		return LineUnix, nil
	case "dos", "crlf":
		return LineDOS, nil
	default:
		return LineNative, fmt.Errorf("config: unknown line terminator %q", s)
	}
}

// Bytes returns the literal terminator to write.
func (lt LineTerminator) Bytes() []byte {
	switch lt {
	case LineDOS:
		return []byte("\r\n")
	case LineUnix:
		return []byte("\n")
	default:
		if runtime.GOOS == "windows" {
			return []byte("\r\n")
		}
		return []byte("\n")
	}
}

// Config is the full set of knobs a merge run takes.
type Config struct {
	// KeyColumn names the column that identifies a row across all three
	// files. Required.
	KeyColumn string
	// Quote selects the output writer's quoting policy.
	Quote QuotePolicy
	// LineTerminator selects the output writer's line terminator.
	LineTerminator LineTerminator
	// ReformatAll, when true, always re-encodes every field through the
	// writer's quoting policy instead of passing unchanged rows through
	// verbatim.
	ReformatAll bool
	// Logger receives diagnostic messages. Nil falls back to logrus's
	// standard logger.
	Logger Logger
}

// EffectiveLogger returns c.Logger, or logrus's standard logger if none
// was set.
func (c Config) EffectiveLogger() Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}
