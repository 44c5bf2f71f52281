package drift

import (
	"strconv"
	"strings"
)

// Baseline is the ordered set of accepted rows a detector compares against.
// Rows keep the order they were added in so a saved detector document lists
// them the way operators accepted them; membership checks use a hashed key
// over the full row, so lookup cost does not grow with baseline size.
type Baseline struct {
	rows [][]string
	keys map[string]struct{}
}

// NewBaseline builds a baseline from rows in the given order. Rows are kept
// verbatim, duplicates included, so a loaded document round-trips unchanged.
func NewBaseline(rows [][]string) *Baseline {
	b := &Baseline{
		rows: make([][]string, 0, len(rows)),
		keys: make(map[string]struct{}, len(rows)),
	}
	for _, row := range rows {
		b.rows = append(b.rows, row)
		b.keys[rowKey(row)] = struct{}{}
	}
	return b
}

// Contains reports whether the baseline accepts the row. Two rows match only
// when they have the same length and equal elements at every position.
func (b *Baseline) Contains(row []string) bool {
	if b == nil || len(b.keys) == 0 {
		return false
	}
	_, ok := b.keys[rowKey(row)]
	return ok
}

// Add appends the row unless an equal row is already present. It reports
// whether the baseline changed.
func (b *Baseline) Add(row []string) bool {
	key := rowKey(row)
	if _, ok := b.keys[key]; ok {
		return false
	}
	b.rows = append(b.rows, row)
	b.keys[key] = struct{}{}
	return true
}

// Replace discards every accepted row and installs rows in their given
// order. Duplicate rows collapse to their first occurrence.
func (b *Baseline) Replace(rows [][]string) {
	b.rows = b.rows[:0]
	b.keys = make(map[string]struct{}, len(rows))
	for _, row := range rows {
		key := rowKey(row)
		if _, ok := b.keys[key]; ok {
			continue
		}
		b.rows = append(b.rows, row)
		b.keys[key] = struct{}{}
	}
}

// Rows returns the accepted rows in insertion order. The slice is a copy;
// mutating it does not affect the baseline.
func (b *Baseline) Rows() [][]string {
	out := make([][]string, len(b.rows))
	copy(out, b.rows)
	return out
}

// Len returns the number of accepted rows, duplicates included.
func (b *Baseline) Len() int {
	return len(b.rows)
}

// Diff compares this baseline against next and returns the rows only next
// has (added) and the rows only this baseline has (missing), each in their
// source order with duplicates collapsed.
func (b *Baseline) Diff(next *Baseline) (added, missing [][]string) {
	seen := make(map[string]struct{})
	for _, row := range next.rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if !b.Contains(row) {
			added = append(added, row)
		}
	}
	seen = make(map[string]struct{})
	for _, row := range b.rows {
		key := rowKey(row)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if !next.Contains(row) {
			missing = append(missing, row)
		}
	}
	return added, missing
}

// rowKey builds a collision-free composite key for a row. Each element is
// quoted so element boundaries survive elements that contain the separator.
func rowKey(row []string) string {
	var sb strings.Builder
	for i, el := range row {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Quote(el))
	}
	return sb.String()
}
