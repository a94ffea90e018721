// Package cursor walks one table's rows in file order while letting the
// merge driver defer a row for later (when its counterpart hasn't been
// reached on another side yet) and later retrieve it out of order.
package cursor

import (
	"github.com/carlodf/csvmerge3/csvio"
	"github.com/carlodf/csvmerge3/table"
)

// Cursor tracks the read position into one table, plus a backlog of
// deferred rows that can be retrieved by key once their match shows up
// elsewhere.
type Cursor struct {
	t        *table.Table
	pos      int
	backlog  *orderedBacklog
	consumed map[string]bool
}

// New returns a cursor positioned at the start of t.
func New(t *table.Table) *Cursor {
	return &Cursor{t: t, backlog: newOrderedBacklog(), consumed: make(map[string]bool)}
}

func (c *Cursor) skipConsumed() {
	for c.pos < c.t.Len() && c.consumed[c.t.KeyAt(c.pos)] {
		c.pos++
	}
}

// Peek returns the row at the cursor head, skipping rows already marked
// consumed, or ok=false if nothing remains at the head (the backlog may
// still hold rows; see Drained).
func (c *Cursor) Peek() (csvio.Row, bool) {
	c.skipConsumed()
	if c.pos < c.t.Len() {
		return c.t.RowAt(c.pos), true
	}
	return csvio.Row{}, false
}

// Advance marks the row at the cursor head consumed and moves past it.
func (c *Cursor) Advance() {
	c.skipConsumed()
	if c.pos >= c.t.Len() {
		return
	}
	c.consumed[c.t.KeyAt(c.pos)] = true
	c.pos++
}

// Defer moves the row at the cursor head into the backlog and advances
// past it, so it can be retrieved later by key via Take.
func (c *Cursor) Defer() {
	c.skipConsumed()
	if c.pos >= c.t.Len() {
		return
	}
	key := c.t.KeyAt(c.pos)
	c.backlog.put(key, c.t.RowAt(c.pos))
	c.pos++
}

// IsConsumed reports whether key has already been marked consumed.
func (c *Cursor) IsConsumed(key string) bool { return c.consumed[key] }

// FindAhead returns the row-count distance from the cursor head to key's
// position, if key is still reachable (not already consumed, not already
// behind the cursor). It costs one map lookup, O(1).
func (c *Cursor) FindAhead(key string) (int, bool) {
	pos, ok := c.t.PosOf(key)
	if !ok || c.consumed[key] || pos < c.pos {
		return 0, false
	}
	return pos - c.pos, true
}

// BacklogHas reports whether key is currently deferred in the backlog.
func (c *Cursor) BacklogHas(key string) bool { return c.backlog.has(key) }

// BacklogKeys returns the keys currently deferred, oldest first.
func (c *Cursor) BacklogKeys() []string { return c.backlog.allKeys() }

// BacklogTake removes and returns key from the backlog, if present.
func (c *Cursor) BacklogTake(key string) (csvio.Row, bool) { return c.backlog.take(key) }

// Take retrieves key's row: from the backlog if it's deferred there, or
// else by locating it among the not-yet-consumed rows ahead of the
// cursor, deferring every row strictly between the cursor and it (so
// they remain reachable later instead of being silently skipped), and
// marking key itself consumed. Returns ok=false if key is neither
// deferred nor reachable ahead.
func (c *Cursor) Take(key string) (csvio.Row, bool) {
	if row, ok := c.backlog.take(key); ok {
		return row, true
	}
	pos, ok := c.t.PosOf(key)
	if !ok || c.consumed[key] || pos < c.pos {
		return csvio.Row{}, false
	}
	row := c.t.RowAt(pos)
	for i := c.pos; i < pos; i++ {
		k := c.t.KeyAt(i)
		if !c.consumed[k] {
			c.backlog.put(k, c.t.RowAt(i))
		}
	}
	c.consumed[key] = true
	if pos >= c.pos {
		c.pos = pos + 1
	}
	return row, true
}

// Drained reports whether the cursor has nothing left: no unconsumed row
// ahead, and nothing deferred in the backlog.
func (c *Cursor) Drained() bool {
	c.skipConsumed()
	return c.pos >= c.t.Len() && c.backlog.len() == 0
}
