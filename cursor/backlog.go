package cursor

import "github.com/carlodf/csvmerge3/csvio"

// orderedBacklog holds deferred rows keyed by their merge key, while
// remembering insertion order, so BacklogKeys is deterministic; the merge
// driver emits rows still deferred at the end in that order.
type orderedBacklog struct {
	keys []string
	rows map[string]csvio.Row
}

func newOrderedBacklog() *orderedBacklog {
	return &orderedBacklog{rows: make(map[string]csvio.Row)}
}

func (b *orderedBacklog) put(key string, row csvio.Row) {
	if _, exists := b.rows[key]; !exists {
		b.keys = append(b.keys, key)
	}
	b.rows[key] = row
}

func (b *orderedBacklog) take(key string) (csvio.Row, bool) {
	row, ok := b.rows[key]
	if !ok {
		return csvio.Row{}, false
	}
	delete(b.rows, key)
	for i, k := range b.keys {
		if k == key {
			b.keys = append(b.keys[:i], b.keys[i+1:]...)
			break
		}
	}
	return row, true
}

func (b *orderedBacklog) has(key string) bool {
	_, ok := b.rows[key]
	return ok
}

func (b *orderedBacklog) allKeys() []string {
	return append([]string(nil), b.keys...)
}

func (b *orderedBacklog) len() int { return len(b.keys) }
