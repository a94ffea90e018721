// Package csvmerge3 performs a three-way merge of CSV files: given a
// common ancestor (LCA) and two descendants (A and B), it produces a
// merged CSV stream, emitting inline conflict blocks for anything it
// can't resolve automatically instead of aborting.
package csvmerge3

import (
	"context"
	"io"

	"github.com/carlodf/csvmerge3/config"
	"github.com/carlodf/csvmerge3/csvio"
	"github.com/carlodf/csvmerge3/header"
	"github.com/carlodf/csvmerge3/merge"
	"github.com/carlodf/csvmerge3/merrors"
	"github.com/carlodf/csvmerge3/table"
)

// Result reports how a merge went: how many conflict blocks were
// emitted, plus any non-fatal diagnostics (header reorder conflicts,
// delete/modify notices) gathered along the way.
type Result = merge.Result

// Merge3 reads lca, a and b in full, reconciles their headers, merges
// their rows, and streams the result to w. It returns a non-nil error
// only for the fatal conditions in package merrors — malformed CSV or an
// empty input, a duplicate key within one file, a missing key column, an
// I/O failure or a canceled ctx, or an internal invariant violation. Conflicts between A and B are not fatal: they are reported in
// Result.ConflictCount and written inline as conflict blocks.
func Merge3(ctx context.Context, cfg config.Config, lca, a, b io.Reader, w io.Writer) (Result, error) {
	if cfg.KeyColumn == "" {
		return Result{}, merrors.New(merrors.KindMissingKeyColumn, "config: KeyColumn is required")
	}

	tL, err := table.Load(lca, cfg.KeyColumn)
	if err != nil {
		return Result{}, err
	}
	tA, err := table.Load(a, cfg.KeyColumn)
	if err != nil {
		return Result{}, err
	}
	tB, err := table.Load(b, cfg.KeyColumn)
	if err != nil {
		return Result{}, err
	}

	hm, reorderConflict, err := header.Merge(tL.Header, tA.Header, tB.Header)
	if err != nil {
		return Result{}, err
	}

	out := csvio.NewWriter(w, cfg.Quote, cfg.LineTerminator)
	drv := merge.NewDriver(cfg, hm, tL, tA, tB, out)
	if reorderConflict {
		drv.NoteHeaderReorderConflict()
	}
	return drv.Run(ctx)
}

// ExitCode maps a fatal error returned from Merge3 to the process exit
// code it corresponds to. Call it only when err != nil; for a
// successful run, exit merrors.ExitConflicts if result.ConflictCount > 0
// and merrors.ExitOK otherwise.
func ExitCode(err error) int {
	return merrors.ExitCode(err)
}
