package rowmerge

import (
	"bytes"
	"testing"

	"github.com/carlodf/csvmerge3/csvio"
)

func row(fields ...string) *csvio.Row {
	return &csvio.Row{Fields: fields, Line: 2, Raw: []byte("raw\n")}
}

func TestMergeRow_Agreement(t *testing.T) {
	cols := []string{"id", "name"}
	idx := []int{0, 1}
	l := row("1", "apple")
	a := row("1", "apple")
	b := row("1", "apple")
	out, conflict := MergeRow("1", cols, idx, idx, idx, l, a, b)
	if conflict != nil {
		t.Fatalf("unexpected conflict: %+v", conflict)
	}
	if out[1] != "apple" {
		t.Fatalf("out = %v", out)
	}
}

func TestMergeRow_OneSideChanged(t *testing.T) {
	cols := []string{"id", "name"}
	idx := []int{0, 1}
	l := row("1", "apple")
	a := row("1", "apple")
	b := row("1", "green apple")
	out, conflict := MergeRow("1", cols, idx, idx, idx, l, a, b)
	if conflict != nil {
		t.Fatalf("unexpected conflict: %+v", conflict)
	}
	if out[1] != "green apple" {
		t.Fatalf("out = %v, want B's change to win", out)
	}
}

func TestMergeRow_BothSidesChangedDifferentlyConflicts(t *testing.T) {
	cols := []string{"id", "name"}
	idx := []int{0, 1}
	l := row("1", "apple")
	a := row("1", "red apple")
	b := row("1", "green apple")
	out, conflict := MergeRow("1", cols, idx, idx, idx, l, a, b)
	if out != nil {
		t.Fatalf("expected nil row on conflict, got %v", out)
	}
	if conflict == nil || len(conflict.Fields) != 1 || conflict.Fields[0].Column != "name" {
		t.Fatalf("conflict = %+v", conflict)
	}
}

func TestMergeRow_NewColumnBothAddedSameValue(t *testing.T) {
	cols := []string{"id", "price"}
	idxL := []int{0, -1}
	idxA := []int{0, 1}
	idxB := []int{0, 1}
	l := row("1")
	a := row("1", "9.99")
	b := row("1", "9.99")
	out, conflict := MergeRow("1", cols, idxL, idxA, idxB, l, a, b)
	if conflict != nil {
		t.Fatalf("unexpected conflict: %+v", conflict)
	}
	if out[1] != "9.99" {
		t.Fatalf("out = %v", out)
	}
}

func TestMergeRow_NewColumnBothAddedDifferentValuesConflicts(t *testing.T) {
	cols := []string{"id", "price"}
	idxL := []int{0, -1}
	idxA := []int{0, 1}
	idxB := []int{0, 1}
	l := row("1")
	a := row("1", "9.99")
	b := row("1", "8.99")
	_, conflict := MergeRow("1", cols, idxL, idxA, idxB, l, a, b)
	if conflict == nil {
		t.Fatal("expected a conflict")
	}
}

func TestFormatConflict(t *testing.T) {
	c := Conflict{
		Key:   "1",
		LineL: 2, LineA: 2, LineB: 2,
		RawA: []byte("1,red apple\n"),
		RawB: []byte("1,green apple\n"),
		Fields: []FieldConflict{
			{Column: "name", ValueA: strPtr("red apple"), ValueB: strPtr("green apple")},
		},
	}
	var buf bytes.Buffer
	w := &fakeLineWriter{buf: &buf}
	if err := FormatConflict(w, c); err != nil {
		t.Fatalf("FormatConflict: %v", err)
	}
	want := ">>>>>> input @2 (1)\n" +
		">>>>>> name = red apple\n" +
		"1,red apple\n" +
		"====== input @2 (1)\n" +
		"====== name = green apple\n" +
		"1,green apple\n" +
		"<<<<<<\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestFormatConflict_DeletedSide(t *testing.T) {
	c := Conflict{
		Key:      "1",
		LineL:    5,
		DeletedA: true,
		LineB:    6,
		RawB:     []byte("1,changed\n"),
		Fields: []FieldConflict{
			{Column: "name", ValueA: nil, ValueB: strPtr("changed")},
		},
	}
	var buf bytes.Buffer
	w := &fakeLineWriter{buf: &buf}
	if err := FormatConflict(w, c); err != nil {
		t.Fatalf("FormatConflict: %v", err)
	}
	want := ">>>>>> input Deleted @5\n" +
		">>>>>> name = None\n" +
		"====== input @6 (1)\n" +
		"====== name = changed\n" +
		"1,changed\n" +
		"<<<<<<\n"
	if buf.String() != want {
		t.Fatalf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

type fakeLineWriter struct{ buf *bytes.Buffer }

func (f *fakeLineWriter) WriteLine(s string) error {
	f.buf.WriteString(s)
	f.buf.WriteByte('\n')
	return nil
}

func (f *fakeLineWriter) WriteRaw(raw []byte) error {
	f.buf.Write(raw)
	return nil
}

func strPtr(s string) *string { return &s }
