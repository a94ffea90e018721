// Package relevance answers the merge driver's one recurring question:
// how far away, in rows, is a given key from showing up on a cursor that
// hasn't reached it yet. The driver uses this distance to decide which of
// several plausible realignments is most likely correct.
package relevance

import (
	"math"

	"github.com/carlodf/csvmerge3/cursor"
)

// Infinity represents "key does not occur ahead of (or is already behind)
// this cursor at all".
const Infinity = math.MaxInt

// Distance returns key's distance from cur's head: 0 if key sits in cur's
// backlog, the row-count lookahead if key is unseen ahead of cur, or
// Infinity otherwise. Each case is a single map lookup, so this is O(1).
func Distance(key string, cur *cursor.Cursor) int {
	if cur.BacklogHas(key) {
		return 0
	}
	if d, ok := cur.FindAhead(key); ok {
		return d
	}
	return Infinity
}
