package state

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// FilterText returns the current filter query.
func (l *Level) FilterText() string { return l.Query.String() }

// Filtering reports whether the outline is narrowed by a query.
func (l *Level) Filtering() bool { return !l.Query.Blank() }

// SetFilter replaces the query and leaves the caret at its end.
func (l *Level) SetFilter(text string) {
	l.refilter(func(q *Query) bool {
		*q = NewQuery(text)
		return true
	})
}

// TypeFilter inserts text at the caret.
func (l *Level) TypeFilter(text string) bool {
	return l.refilter(func(q *Query) bool { return q.Insert(text) })
}

// EditFilter applies e to the query, refiltering when the text changed.
func (l *Level) EditFilter(e Edit) bool {
	if !e.Changes() {
		return l.Query.Apply(e)
	}
	return l.refilter(func(q *Query) bool { return q.Apply(e) })
}

// refilter runs edit and recomputes the visible rows. The row under the
// cursor when filtering starts is restored once the query is blank again.
func (l *Level) refilter(edit func(*Query) bool) bool {
	wasFiltering := l.Filtering()
	if !wasFiltering {
		l.parked = ""
		if row := l.Current(); row != nil {
			l.parked = row.Key
		}
	}
	if !edit(&l.Query) {
		return false
	}
	l.applyFilter()
	switch {
	case l.Filtering():
		l.Cursor = max(BestMatchIndex(l.Items, l.Query.String()), 0)
	case wasFiltering:
		if idx := l.IndexOf(l.parked); idx >= 0 {
			l.Cursor = idx
		}
		l.parked = ""
	}
	return true
}

func (l *Level) applyFilter() {
	l.Items = FilterItems(l.Full, l.Query.String())
	n := len(l.Items)
	if n == 0 {
		l.Cursor, l.ViewportOffset = 0, 0
		return
	}
	l.Cursor = clamp(l.Cursor, 0, n-1)
	if l.ViewportOffset >= n {
		l.ViewportOffset = 0
	}
}

// noMatch ranks a row the query does not reach at all.
const noMatch = 6

// rank orders how closely a row answers q; lower is closer. Exact and prefix
// hits beat substring hits, which beat fuzzy ones. The label is preferred
// over the path at each tier.
func rank(row Row, q string) int {
	label := strings.ToLower(row.Label)
	path := strings.ToLower(row.PathText())
	switch {
	case label == q || path == q:
		return 0
	case strings.HasPrefix(label, q):
		return 1
	case strings.HasPrefix(path, q):
		return 2
	case strings.Contains(path, q):
		return 3
	case fuzzy.MatchNormalizedFold(q, row.Label):
		return 4
	case fuzzy.MatchNormalizedFold(q, row.PathText()):
		return 5
	}
	return noMatch
}

// FilterItems returns, in outline order, the rows whose label or path
// matches query. The result never aliases items.
func FilterItems(items []Row, query string) []Row {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]Row(nil), items...)
	}
	out := make([]Row, 0, len(items))
	for _, row := range items {
		if rank(row, q) < noMatch {
			out = append(out, row)
		}
	}
	return out
}

// BestMatchIndex returns the closest row for query, the first row when
// nothing matches, or -1 for no rows.
func BestMatchIndex(items []Row, query string) int {
	if len(items) == 0 {
		return -1
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}
	best, bestRank := 0, noMatch
	for i, row := range items {
		if r := rank(row, q); r < bestRank {
			best, bestRank = i, r
		}
	}
	return best
}

// PathText renders the row key as a slash separated path.
func (r Row) PathText() string {
	segs := strings.Split(r.Key, "\x00")
	for i, seg := range segs {
		segs[i], _, _ = strings.Cut(seg, dupMark)
	}
	return strings.Join(segs, "/")
}
