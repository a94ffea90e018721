// Package header reconciles three CSV headers (LCA, A, B) into one merged
// output schema: columns both sides kept survive in an order both sides
// can agree on, columns either side added are interspersed next to their
// nearest surviving neighbor, and columns either side dropped disappear
// entirely.
package header

// Maps is the result of reconciling three headers: the merged column
// order, plus, for each output column, the index of that column in each
// input header (or -1 if that file doesn't have it).
type Maps struct {
	Output []string
	IdxL   []int
	IdxA   []int
	IdxB   []int
}

// Merge reconciles hl (LCA), ha (A) and hb (B). The second return value
// reports whether A and B reordered the same surviving run of columns
// differently — never fatal, A's ordering wins, but worth a diagnostic.
func Merge(hl, ha, hb []string) (Maps, bool, error) {
	inHL := toSet(hl)
	inHA := toSet(ha)
	inHB := toSet(hb)

	// Columns added fresh by each side, in that side's order.
	addedA := diffOrder(ha, inHL)
	addedB := diffOrder(hb, inHL)

	// LCA columns that survive in both files.
	var survivors []string
	for _, c := range hl {
		if inHA[c] && inHB[c] {
			survivors = append(survivors, c)
		}
	}

	ordered, conflict := reconcileOrder(survivors, ha, hb)

	out := append([]string(nil), ordered...)
	out = insertAll(out, addedA, ha, inHL)
	out = insertAll(out, addedB, hb, inHL)

	return Maps{
		Output: out,
		IdxL:   mapIndices(out, hl),
		IdxA:   mapIndices(out, ha),
		IdxB:   mapIndices(out, hb),
	}, conflict, nil
}

// reconcileOrder decides the final order of the surviving LCA columns.
// If neither side reordered them relative to the LCA, the LCA order wins.
// If exactly one side reordered them, that side's order wins. If both
// reordered them and disagree, A's order wins and conflict is true.
func reconcileOrder(survivors, ha, hb []string) (ordered []string, conflict bool) {
	orderA := filterToSet(ha, survivors)
	orderB := filterToSet(hb, survivors)
	unchangedA := equalSlices(orderA, survivors)
	unchangedB := equalSlices(orderB, survivors)

	switch {
	case unchangedA && unchangedB:
		return survivors, false
	case unchangedA:
		return orderB, false
	case unchangedB:
		return orderA, false
	default:
		return orderA, !equalSlices(orderA, orderB)
	}
}

// insertAll inserts each column of added (which all come from src, in
// src's order) into out at the position nearest its neighbor in src. A
// column whose nearest neighbors were themselves deleted from the
// output is dropped instead of drifting to some more distant survivor:
// deletions propagate to the additions anchored on them.
func insertAll(out []string, added []string, src []string, inHL map[string]bool) []string {
	if len(added) == 0 {
		return out
	}
	present := toSet(out)
	srcPos := make(map[string]int, len(src))
	for i, c := range src {
		srcPos[c] = i
	}
	for _, c := range added {
		if present[c] {
			continue
		}
		at, ok := anchorPosition(out, c, src, srcPos, inHL)
		if !ok {
			continue
		}
		out = append(out[:at], append([]string{c}, out[at:]...)...)
		present[c] = true
	}
	return out
}

// anchorPosition finds where c should land in out: right after the
// nearest column preceding it in src that's already in out, or right
// before the nearest one following it. Each search stops as soon as it
// reaches an LCA column that didn't make it into out — that column was
// deleted, and the search doesn't skip past a deletion to find some
// earlier, unrelated survivor. ok is false when neither direction finds
// a usable anchor, meaning c should be dropped from the output entirely.
func anchorPosition(out []string, c string, src []string, srcPos map[string]int, inHL map[string]bool) (int, bool) {
	p, ok := srcPos[c]
	if !ok {
		return len(out), true
	}
	outPos := make(map[string]int, len(out))
	for i, o := range out {
		outPos[o] = i
	}
	for i := p - 1; i >= 0; i-- {
		if idx, ok := outPos[src[i]]; ok {
			return idx + 1, true
		}
		if inHL[src[i]] {
			break
		}
	}
	for i := p + 1; i < len(src); i++ {
		if idx, ok := outPos[src[i]]; ok {
			return idx, true
		}
		if inHL[src[i]] {
			break
		}
	}
	return 0, false
}

func mapIndices(out []string, src []string) []int {
	pos := make(map[string]int, len(src))
	for i, c := range src {
		pos[c] = i
	}
	idx := make([]int, len(out))
	for i, c := range out {
		if p, ok := pos[c]; ok {
			idx[i] = p
		} else {
			idx[i] = -1
		}
	}
	return idx
}

func toSet(h []string) map[string]bool {
	s := make(map[string]bool, len(h))
	for _, c := range h {
		s[c] = true
	}
	return s
}

func diffOrder(h []string, exclude map[string]bool) []string {
	var d []string
	for _, c := range h {
		if !exclude[c] {
			d = append(d, c)
		}
	}
	return d
}

func filterToSet(h []string, keep []string) []string {
	keepSet := toSet(keep)
	var out []string
	for _, c := range h {
		if keepSet[c] {
			out = append(out, c)
		}
	}
	return out
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
