package merge

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/carlodf/csvmerge3/config"
	"github.com/carlodf/csvmerge3/csvio"
	"github.com/carlodf/csvmerge3/header"
	"github.com/carlodf/csvmerge3/table"
)

func runMerge(t *testing.T, lca, a, b string) (string, Result) {
	t.Helper()
	tL, err := table.Load(strings.NewReader(lca), "id")
	if err != nil {
		t.Fatalf("load lca: %v", err)
	}
	tA, err := table.Load(strings.NewReader(a), "id")
	if err != nil {
		t.Fatalf("load a: %v", err)
	}
	tB, err := table.Load(strings.NewReader(b), "id")
	if err != nil {
		t.Fatalf("load b: %v", err)
	}
	hm, reorderConflict, err := header.Merge(tL.Header, tA.Header, tB.Header)
	if err != nil {
		t.Fatalf("header.Merge: %v", err)
	}
	var buf bytes.Buffer
	w := csvio.NewWriter(&buf, config.QuoteMinimal, config.LineUnix)
	drv := NewDriver(config.Config{KeyColumn: "id"}, hm, tL, tA, tB, w)
	if reorderConflict {
		drv.NoteHeaderReorderConflict()
	}
	result, err := drv.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return buf.String(), result
}

func TestDriver_UnchangedPassesThroughVerbatim(t *testing.T) {
	csvText := "id,name\n1,apple\n2,banana\n"
	out, result := runMerge(t, csvText, csvText, csvText)
	if out != csvText {
		t.Fatalf("out = %q, want %q", out, csvText)
	}
	if result.ConflictCount != 0 {
		t.Fatalf("ConflictCount = %d, want 0", result.ConflictCount)
	}
}

func TestDriver_OneSideModifies(t *testing.T) {
	lca := "id,name\n1,apple\n"
	a := "id,name\n1,green apple\n"
	b := "id,name\n1,apple\n"
	out, result := runMerge(t, lca, a, b)
	want := "id,name\n1,green apple\n"
	if out != want {
		t.Fatalf("out = %q, want %q", out, want)
	}
	if result.ConflictCount != 0 {
		t.Fatalf("ConflictCount = %d, want 0", result.ConflictCount)
	}
}

func TestDriver_BothSidesModifyDifferentlyConflicts(t *testing.T) {
	lca := "id,name\n1,apple\n"
	a := "id,name\n1,red apple\n"
	b := "id,name\n1,green apple\n"
	out, result := runMerge(t, lca, a, b)
	if result.ConflictCount != 1 {
		t.Fatalf("ConflictCount = %d, want 1", result.ConflictCount)
	}
	if !strings.Contains(out, ">>>>>>") || !strings.Contains(out, "======") || !strings.Contains(out, "<<<<<<") {
		t.Fatalf("out missing conflict markers:\n%s", out)
	}
	if !strings.Contains(out, "red apple") || !strings.Contains(out, "green apple") {
		t.Fatalf("out missing both sides' values:\n%s", out)
	}
}

func TestDriver_ColumnAddedByOneSide(t *testing.T) {
	lca := "id,name\n1,apple\n"
	a := "id,name,price\n1,apple,1.50\n"
	b := "id,name\n1,apple\n"
	out, _ := runMerge(t, lca, a, b)
	want := "id,name,price\n1,apple,1.50\n"
	if out != want {
		t.Fatalf("out = %q, want %q", out, want)
	}
}

func TestDriver_RowDeletedOnOneSideUnchangedOnOther(t *testing.T) {
	lca := "id,name\n1,apple\n2,banana\n"
	a := "id,name\n2,banana\n" // A deleted row 1
	b := "id,name\n1,apple\n2,banana\n"
	out, result := runMerge(t, lca, a, b)
	want := "id,name\n2,banana\n"
	if out != want {
		t.Fatalf("out = %q, want %q", out, want)
	}
	if result.ConflictCount != 0 {
		t.Fatalf("ConflictCount = %d, want 0 (plain deletion)", result.ConflictCount)
	}
}

func TestDriver_DeleteVsModifyConflicts(t *testing.T) {
	lca := "id,name\n1,apple\n"
	a := "id,name\n" // A deleted row 1
	b := "id,name\n1,green apple\n" // B modified it
	out, result := runMerge(t, lca, a, b)
	if result.ConflictCount != 1 {
		t.Fatalf("ConflictCount = %d, want 1", result.ConflictCount)
	}
	if !strings.Contains(out, "Deleted") {
		t.Fatalf("out missing Deleted marker:\n%s", out)
	}
}

func TestDriver_RowInsertedByOneSide(t *testing.T) {
	lca := "id,name\n1,apple\n"
	a := "id,name\n1,apple\n2,banana\n"
	b := "id,name\n1,apple\n"
	out, _ := runMerge(t, lca, a, b)
	want := "id,name\n1,apple\n2,banana\n"
	if out != want {
		t.Fatalf("out = %q, want %q", out, want)
	}
}

func TestDriver_RowInsertedByBothSidesSameValue(t *testing.T) {
	lca := "id,name\n1,apple\n"
	a := "id,name\n1,apple\n2,banana\n"
	b := "id,name\n1,apple\n2,banana\n"
	out, result := runMerge(t, lca, a, b)
	want := "id,name\n1,apple\n2,banana\n"
	if out != want {
		t.Fatalf("out = %q, want %q", out, want)
	}
	if result.ConflictCount != 0 {
		t.Fatalf("ConflictCount = %d, want 0", result.ConflictCount)
	}
}

func TestDriver_OneSideReordersRows(t *testing.T) {
	lca := "id,name\n1,apple\n2,banana\n3,cherry\n"
	a := "id,name\n2,banana\n3,cherry\n1,apple\n" // A moved row 1 to the end
	b := "id,name\n1,apple\n2,banana\n3,cherry\n"
	out, result := runMerge(t, lca, a, b)
	if result.ConflictCount != 0 {
		t.Fatalf("ConflictCount = %d, want 0", result.ConflictCount)
	}
	wantRows := []string{"2,banana", "3,cherry", "1,apple"}
	for _, want := range wantRows {
		if !strings.Contains(out, want) {
			t.Fatalf("out missing %q:\n%s", want, out)
		}
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines:\n%s", len(lines), out)
	}
}
