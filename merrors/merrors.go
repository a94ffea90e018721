// Package merrors defines the merge engine's fatal error taxonomy and the
// process exit codes each one maps to, plus a diagnostics accumulator for
// the non-fatal conditions (header reorder conflicts, row conflicts) that
// a merge run should report without aborting.
package merrors

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Kind classifies a fatal merge error.
type Kind int

const (
	// KindMalformedRow covers unparsable CSV (ragged rows, unterminated
	// quotes, a duplicate column name within one file's header).
	KindMalformedRow Kind = iota
	// KindDuplicateKey covers two rows in the same file sharing a key.
	KindDuplicateKey
	// KindMissingKeyColumn covers a key column absent from one file's header.
	KindMissingKeyColumn
	// KindHeaderEmpty covers a file with no header row at all.
	KindHeaderEmpty
	// KindIOError covers failures reading or writing the underlying streams.
	KindIOError
	// KindInternalInvariant covers a merge driver state the algorithm
	// should never reach; surfacing it beats silently producing wrong output.
	KindInternalInvariant

	// KindHeaderReorderConflict, KindRowFieldConflict and
	// KindDeleteModifyConflict are non-fatal: they are reported through
	// Diagnostics, never returned as a standalone error from a Merge3 call.
	KindHeaderReorderConflict
	KindRowFieldConflict
	KindDeleteModifyConflict
)

func (k Kind) String() string {
	switch k {
	case KindMalformedRow:
		return "malformed row"
	case KindDuplicateKey:
		return "duplicate key"
	case KindMissingKeyColumn:
		return "missing key column"
	case KindHeaderEmpty:
		return "empty header"
	case KindIOError:
		return "I/O error"
	case KindInternalInvariant:
		return "internal invariant violation"
	case KindHeaderReorderConflict:
		return "header reorder conflict"
	case KindRowFieldConflict:
		return "row field conflict"
	case KindDeleteModifyConflict:
		return "delete/modify conflict"
	default:
		return "error"
	}
}

// MergeError is the concrete error type returned for every fatal
// condition. Use errors.As to recover the Kind.
type MergeError struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *MergeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func (e *MergeError) Unwrap() error { return e.Err }

// New builds a fatal MergeError with no wrapped cause.
func New(kind Kind, detail string) error {
	return &MergeError{Kind: kind, Detail: detail}
}

// Wrap builds a fatal MergeError around an underlying cause.
func Wrap(kind Kind, detail string, err error) error {
	return &MergeError{Kind: kind, Detail: detail, Err: err}
}

// Exit codes, one per distinguishable fatal condition plus the
// conflicts-present case a successful-but-unclean merge reports.
const (
	ExitOK                = 0
	ExitConflicts         = 1
	ExitMalformedInput    = 2
	ExitDuplicateKey      = 3
	ExitMissingKeyColumn  = 4
	ExitIOError           = 5
	ExitInternalInvariant = 6
)

// ExitCode maps a fatal error returned from Merge3 to the process exit
// code it should produce. A nil err with no conflicts should exit ExitOK;
// a nil err with conflicts present should exit ExitConflicts — callers
// decide that from the Result, not from this function.
func ExitCode(err error) int {
	var me *MergeError
	if errors.As(err, &me) {
		switch me.Kind {
		case KindMalformedRow, KindHeaderEmpty:
			return ExitMalformedInput
		case KindDuplicateKey:
			return ExitDuplicateKey
		case KindMissingKeyColumn:
			return ExitMissingKeyColumn
		case KindInternalInvariant:
			return ExitInternalInvariant
		case KindIOError:
			return ExitIOError
		}
	}
	return ExitIOError
}

// Diagnostics accumulates non-fatal notices over the course of a merge
// run: header reorder conflicts and per-row conflict/deletion notices.
// It never causes a merge to abort; Err reports the accumulated set for
// logging or for a caller that wants to treat any diagnostic as an error.
type Diagnostics struct {
	errs *multierror.Error
}

// NewDiagnostics returns an empty accumulator.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

// Add records a non-fatal note of the given kind.
func (d *Diagnostics) Add(kind Kind, detail string) {
	d.errs = multierror.Append(d.errs, &MergeError{Kind: kind, Detail: detail})
}

// Err returns the accumulated diagnostics as a single error, or nil if
// none were recorded.
func (d *Diagnostics) Err() error {
	if d.errs == nil || len(d.errs.Errors) == 0 {
		return nil
	}
	return d.errs.ErrorOrNil()
}
