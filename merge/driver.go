// Package merge implements the three-way merge driver: it walks three
// cursors in lockstep, picking at each step the first of a small set of
// alignment rules that applies, and falls back to a relevance-weighted
// resync when none of them do.
package merge

import (
	"bytes"
	"context"
	"fmt"

	"github.com/carlodf/csvmerge3/config"
	"github.com/carlodf/csvmerge3/csvio"
	"github.com/carlodf/csvmerge3/cursor"
	"github.com/carlodf/csvmerge3/header"
	"github.com/carlodf/csvmerge3/merrors"
	"github.com/carlodf/csvmerge3/relevance"
	"github.com/carlodf/csvmerge3/rowmerge"
	"github.com/carlodf/csvmerge3/table"
)

// Result reports how a merge run went: it always completes unless a
// fatal error occurs, and reports conflicts through ConflictCount and
// Warnings rather than failing.
type Result struct {
	ConflictCount int
	Warnings      error
}

// Driver runs the merge loop over three already-loaded tables.
type Driver struct {
	cfg  config.Config
	hm   header.Maps
	tL   *table.Table
	tA   *table.Table
	tB   *table.Table
	curL *cursor.Cursor
	curA *cursor.Cursor
	curB *cursor.Cursor
	w    *csvio.Writer
	log  config.Logger
	diag *merrors.Diagnostics

	conflictCount int
}

// NewDriver builds a driver that writes merged output to w.
func NewDriver(cfg config.Config, hm header.Maps, tL, tA, tB *table.Table, w *csvio.Writer) *Driver {
	return &Driver{
		cfg:  cfg,
		hm:   hm,
		tL:   tL,
		tA:   tA,
		tB:   tB,
		curL: cursor.New(tL),
		curA: cursor.New(tA),
		curB: cursor.New(tB),
		w:    w,
		log:  cfg.EffectiveLogger(),
		diag: merrors.NewDiagnostics(),
	}
}

// NoteHeaderReorderConflict records that header reconciliation had to
// pick A's column order over a disagreeing B. Call before Run.
func (d *Driver) NoteHeaderReorderConflict() {
	d.log.Warnf("header: A and B reordered the same surviving columns differently; keeping A's order")
	d.diag.Add(merrors.KindHeaderReorderConflict, "A and B disagree on the order of surviving columns; A's order was kept")
}

// head is a cursor's current row, if any.
type head struct {
	row csvio.Row
	key string
	ok  bool
}

func peekHead(t *table.Table, c *cursor.Cursor) head {
	row, ok := c.Peek()
	if !ok {
		return head{}
	}
	return head{row: row, key: t.Key(row), ok: true}
}

// Run drives the merge to completion, writing the merged header and rows
// (and any conflict blocks) to the configured writer.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	if err := d.w.WriteFields(d.hm.Output); err != nil {
		return Result{}, merrors.Wrap(merrors.KindIOError, "writing merged header", err)
	}

	for {
		select {
		case <-ctx.Done():
			return Result{}, merrors.Wrap(merrors.KindIOError, "merge canceled", ctx.Err())
		default:
		}

		hL := peekHead(d.tL, d.curL)
		hA := peekHead(d.tA, d.curA)
		hB := peekHead(d.tB, d.curB)
		if !hL.ok && !hA.ok && !hB.ok {
			break
		}
		if err := d.step(hL, hA, hB); err != nil {
			return Result{}, err
		}
	}

	if err := d.finalizeBacklogs(); err != nil {
		return Result{}, err
	}
	if err := d.w.Flush(); err != nil {
		return Result{}, merrors.Wrap(merrors.KindIOError, "flushing merged output", err)
	}

	return Result{ConflictCount: d.conflictCount, Warnings: d.diag.Err()}, nil
}

// step applies the first rule whose guard holds, falling back to resync.
func (d *Driver) step(hL, hA, hB head) error {
	if handled, err := d.ruleAllAligned(hL, hA, hB); handled || err != nil {
		return err
	}
	if handled, err := d.ruleABAligned(hL, hA, hB); handled || err != nil {
		return err
	}
	if handled, err := d.ruleLCAAlignedWithA(hL, hA, hB); handled || err != nil {
		return err
	}
	if handled, err := d.ruleLCAAlignedWithB(hL, hA, hB); handled || err != nil {
		return err
	}
	return d.resync(hL, hA, hB)
}

// ruleAllAligned: k_L = k_A = k_B. Straightforward three-way merge.
func (d *Driver) ruleAllAligned(hL, hA, hB head) (bool, error) {
	if !(hL.ok && hA.ok && hB.ok && hL.key == hA.key && hA.key == hB.key) {
		return false, nil
	}
	d.curL.Advance()
	d.curA.Advance()
	d.curB.Advance()
	return true, d.mergeAndEmit(hL.key, &hL.row, &hA.row, &hB.row)
}

// ruleABAligned: A and B aligned, LCA elsewhere (or drained). If LCA's
// current key still has a plausible future match on A or B, it's not
// truly gone yet — defer it and retry. Otherwise the row is new on both
// sides.
func (d *Driver) ruleABAligned(hL, hA, hB head) (bool, error) {
	if !(hA.ok && hB.ok && hA.key == hB.key) {
		return false, nil
	}
	if hL.ok && hL.key == hA.key {
		return false, nil // rule 1's territory
	}
	if hL.ok {
		rA := relevance.Distance(hL.key, d.curA)
		rB := relevance.Distance(hL.key, d.curB)
		if rA < relevance.Infinity || rB < relevance.Infinity {
			d.curL.Defer()
			return true, nil
		}
	}
	d.curA.Advance()
	d.curB.Advance()
	return true, d.mergeAndEmit(hA.key, nil, &hA.row, &hB.row)
}

// ruleLCAAlignedWithA: k_L = k_A != k_B. A is unchanged at this position;
// B has reordered (or deleted, or never had this key).
func (d *Driver) ruleLCAAlignedWithA(hL, hA, hB head) (bool, error) {
	if !(hL.ok && hA.ok && hL.key == hA.key) {
		return false, nil
	}
	if hB.ok && hB.key == hA.key {
		return false, nil
	}
	if !hB.ok {
		d.curL.Advance()
		d.curA.Advance()
		return true, d.mergeAndEmit(hL.key, &hL.row, &hA.row, nil)
	}
	if _, existsInL := d.tL.PosOf(hB.key); existsInL {
		// B moved this key forward. Defer L's and A's current rows for
		// when B reaches them, and resolve B's current key now.
		d.curL.Defer()
		d.curA.Defer()
		var rowLPtr, rowAPtr *csvio.Row
		if r, ok := d.curL.Take(hB.key); ok {
			rowLPtr = &r
		}
		if r, ok := d.curA.Take(hB.key); ok {
			rowAPtr = &r
		}
		d.curB.Advance()
		return true, d.mergeAndEmit(hB.key, rowLPtr, rowAPtr, &hB.row)
	}
	// B's current key is new to the LCA: an insertion by B alone.
	d.curB.Advance()
	return true, d.mergeAndEmit(hB.key, nil, nil, &hB.row)
}

// ruleLCAAlignedWithB is ruleLCAAlignedWithA with A and B's roles swapped.
func (d *Driver) ruleLCAAlignedWithB(hL, hA, hB head) (bool, error) {
	if !(hL.ok && hB.ok && hL.key == hB.key) {
		return false, nil
	}
	if hA.ok && hA.key == hB.key {
		return false, nil
	}
	if !hA.ok {
		d.curL.Advance()
		d.curB.Advance()
		return true, d.mergeAndEmit(hL.key, &hL.row, nil, &hB.row)
	}
	if _, existsInL := d.tL.PosOf(hA.key); existsInL {
		d.curL.Defer()
		d.curB.Defer()
		var rowLPtr, rowBPtr *csvio.Row
		if r, ok := d.curL.Take(hA.key); ok {
			rowLPtr = &r
		}
		if r, ok := d.curB.Take(hA.key); ok {
			rowBPtr = &r
		}
		d.curA.Advance()
		return true, d.mergeAndEmit(hA.key, rowLPtr, &hA.row, rowBPtr)
	}
	d.curA.Advance()
	return true, d.mergeAndEmit(hA.key, nil, &hA.row, nil)
}

// resync handles everything rules 1-3 didn't: no two of the three cursors
// currently agree on a key.
func (d *Driver) resync(hL, hA, hB head) error {
	if hL.ok {
		rL := relevance.Infinity
		if dd := relevance.Distance(hL.key, d.curA); dd < rL {
			rL = dd
		}
		if dd := relevance.Distance(hL.key, d.curB); dd < rL {
			rL = dd
		}
		rA, rB := relevance.Infinity, relevance.Infinity
		if hA.ok {
			rA = relevance.Distance(hA.key, d.curL)
		}
		if hB.ok {
			rB = relevance.Distance(hB.key, d.curL)
		}
		maxAB := rA
		if rB > maxAB {
			maxAB = rB
		}
		if rL > maxAB {
			d.curL.Defer()
			return nil
		}
	}

	switch {
	case hA.ok && hB.ok:
		rAB := relevance.Distance(hA.key, d.curB)
		rBA := relevance.Distance(hB.key, d.curA)
		if rAB < rBA {
			return d.emitSingleA(hA)
		}
		return d.emitSingleB(hB)
	case hA.ok:
		return d.emitSingleA(hA)
	case hB.ok:
		return d.emitSingleB(hB)
	case hL.ok:
		return d.handleLCAOnly(hL)
	default:
		return merrors.New(merrors.KindInternalInvariant, "resync reached with no cursor head")
	}
}

// emitSingleA chooses A's current row, pulling in its LCA/B counterparts
// if either is reachable (backlog or ahead), and advances A.
func (d *Driver) emitSingleA(hA head) error {
	d.curA.Advance()
	var rowLPtr, rowBPtr *csvio.Row
	if r, ok := d.curL.Take(hA.key); ok {
		rowLPtr = &r
	}
	if r, ok := d.curB.Take(hA.key); ok {
		rowBPtr = &r
	}
	return d.mergeAndEmit(hA.key, rowLPtr, &hA.row, rowBPtr)
}

// emitSingleB is emitSingleA with A and B swapped.
func (d *Driver) emitSingleB(hB head) error {
	d.curB.Advance()
	var rowLPtr, rowAPtr *csvio.Row
	if r, ok := d.curL.Take(hB.key); ok {
		rowLPtr = &r
	}
	if r, ok := d.curA.Take(hB.key); ok {
		rowAPtr = &r
	}
	return d.mergeAndEmit(hB.key, rowLPtr, rowAPtr, &hB.row)
}

// handleLCAOnly is reached when neither A nor B has a current head at
// all. If the LCA's key is reachable in A's or B's backlog, resolve it;
// otherwise it's gone from both sides and is dropped silently.
func (d *Driver) handleLCAOnly(hL head) error {
	d.curL.Advance()
	rowA, okA := d.curA.Take(hL.key)
	rowB, okB := d.curB.Take(hL.key)
	if !okA && !okB {
		return nil
	}
	var rowAPtr, rowBPtr *csvio.Row
	if okA {
		rowAPtr = &rowA
	}
	if okB {
		rowBPtr = &rowB
	}
	return d.mergeAndEmit(hL.key, &hL.row, rowAPtr, rowBPtr)
}

// finalizeBacklogs resolves anything left deferred once both cursors'
// heads have run dry: a key deferred on both A and B is merged as a
// pair; a key deferred on only one side is emitted as a single-side
// survivor (checked against the LCA for a delete-vs-modify conflict); a
// key left in the LCA's own backlog with no taker anywhere was deleted on
// both sides and is dropped silently.
func (d *Driver) finalizeBacklogs() error {
	seen := make(map[string]bool)
	keys := append(append([]string{}, d.curA.BacklogKeys()...), d.curB.BacklogKeys()...)
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		rowA, okA := d.curA.BacklogTake(key)
		rowB, okB := d.curB.BacklogTake(key)
		if !okA && !okB {
			continue
		}
		var rowLPtr, rowAPtr, rowBPtr *csvio.Row
		if pos, ok := d.tL.PosOf(key); ok {
			r := d.tL.RowAt(pos)
			rowLPtr = &r
		}
		if okA {
			rowAPtr = &rowA
		}
		if okB {
			rowBPtr = &rowB
		}
		if err := d.mergeAndEmit(key, rowLPtr, rowAPtr, rowBPtr); err != nil {
			return err
		}
	}
	for _, key := range d.curL.BacklogKeys() {
		d.curL.BacklogTake(key)
	}
	return nil
}

// mergeAndEmit resolves one key's aligned rows (any of which may be nil)
// and writes the result: a plain deletion drops silently, a delete-vs-
// modify disagreement becomes a conflict block, and everything else goes
// through the per-column field merge.
func (d *Driver) mergeAndEmit(key string, rowL, rowA, rowB *csvio.Row) error {
	if rowL != nil && rowA == nil && rowB == nil {
		return nil
	}
	if rowL != nil && rowA == nil {
		if _, conflict := rowmerge.MergeRow(key, d.hm.Output, d.hm.IdxL, d.hm.IdxA, d.hm.IdxB, rowL, nil, rowB); conflict != nil {
			return d.emitConflictBlock(*conflict)
		}
		return nil
	}
	if rowL != nil && rowB == nil {
		if _, conflict := rowmerge.MergeRow(key, d.hm.Output, d.hm.IdxL, d.hm.IdxA, d.hm.IdxB, rowL, rowA, nil); conflict != nil {
			return d.emitConflictBlock(*conflict)
		}
		return nil
	}

	out, conflict := rowmerge.MergeRow(key, d.hm.Output, d.hm.IdxL, d.hm.IdxA, d.hm.IdxB, rowL, rowA, rowB)
	if conflict != nil {
		return d.emitConflictBlock(*conflict)
	}

	unchanged := rowL != nil && rowA != nil && rowB != nil &&
		bytes.Equal(rowA.Raw, rowL.Raw) && bytes.Equal(rowB.Raw, rowL.Raw)
	var raw []byte
	if unchanged {
		raw = rowL.Raw
	}
	return d.emitRow(out, raw, unchanged)
}

func (d *Driver) emitConflictBlock(c rowmerge.Conflict) error {
	d.conflictCount++
	kind := merrors.KindRowFieldConflict
	if c.DeletedA || c.DeletedB {
		kind = merrors.KindDeleteModifyConflict
	}
	d.diag.Add(kind, fmt.Sprintf("key %q: %d field(s) in conflict", c.Key, len(c.Fields)))
	if err := rowmerge.FormatConflict(d.w, c); err != nil {
		return merrors.Wrap(merrors.KindIOError, "writing conflict block", err)
	}
	return nil
}

func (d *Driver) emitRow(fields []string, raw []byte, unchanged bool) error {
	if unchanged && !d.cfg.ReformatAll {
		if err := d.w.WriteRaw(raw); err != nil {
			return merrors.Wrap(merrors.KindIOError, "writing row", err)
		}
		return nil
	}
	if err := d.w.WriteFields(fields); err != nil {
		return merrors.Wrap(merrors.KindIOError, "writing row", err)
	}
	return nil
}
