package state

import (
	"strings"
	"unicode"
)

// Edit is a caret operation on a Query.
type Edit int

const (
	EditClear Edit = iota + 1
	EditDeleteRune
	EditDeleteWord
	EditHome
	EditEnd
	EditLeft
	EditRight
	EditWordLeft
	EditWordRight
)

var editNames = map[Edit]string{
	EditClear:      "clear",
	EditDeleteRune: "delete-rune",
	EditDeleteWord: "delete-word",
	EditHome:       "home",
	EditEnd:        "end",
	EditLeft:       "left",
	EditRight:      "right",
	EditWordLeft:   "word-left",
	EditWordRight:  "word-right",
}

func (e Edit) String() string {
	if name, ok := editNames[e]; ok {
		return name
	}
	return "unknown"
}

// Query is a single line of text with a caret counted in runes.
type Query struct {
	text []rune
	pos  int
}

// NewQuery places the caret at the end of text.
func NewQuery(text string) Query {
	r := []rune(text)
	return Query{text: r, pos: len(r)}
}

func (q Query) String() string { return string(q.text) }

// Pos returns the caret offset in runes.
func (q Query) Pos() int { return clamp(q.pos, 0, len(q.text)) }

// Blank reports whether the query has no visible characters.
func (q Query) Blank() bool { return strings.TrimSpace(string(q.text)) == "" }

// Insert adds s at the caret.
func (q *Query) Insert(s string) bool {
	ins := []rune(s)
	if len(ins) == 0 {
		return false
	}
	pos := q.Pos()
	text := make([]rune, 0, len(q.text)+len(ins))
	text = append(text, q.text[:pos]...)
	text = append(text, ins...)
	q.text = append(text, q.text[pos:]...)
	q.pos = pos + len(ins)
	return true
}

// Apply runs e and reports whether the text or the caret moved.
func (q *Query) Apply(e Edit) bool {
	pos := q.Pos()
	switch e {
	case EditClear:
		if len(q.text) == 0 {
			return false
		}
		q.text, q.pos = nil, 0
		return true
	case EditDeleteRune:
		return q.cut(pos-1, pos)
	case EditDeleteWord:
		return q.cut(wordLeft(q.text, pos), pos)
	case EditHome:
		return q.moveTo(0)
	case EditEnd:
		return q.moveTo(len(q.text))
	case EditLeft:
		return q.moveTo(pos - 1)
	case EditRight:
		return q.moveTo(pos + 1)
	case EditWordLeft:
		return q.moveTo(wordLeft(q.text, pos))
	case EditWordRight:
		return q.moveTo(wordRight(q.text, pos))
	}
	return false
}

// Changes reports whether e would alter the text rather than only the caret.
func (e Edit) Changes() bool {
	return e == EditClear || e == EditDeleteRune || e == EditDeleteWord
}

func (q *Query) cut(from, to int) bool {
	from = max(from, 0)
	if from >= to {
		return false
	}
	q.text = append(q.text[:from:from], q.text[to:]...)
	q.pos = from
	return true
}

func (q *Query) moveTo(pos int) bool {
	pos = clamp(pos, 0, len(q.text))
	if pos == q.Pos() {
		return false
	}
	q.pos = pos
	return true
}

func wordLeft(r []rune, i int) int {
	for i > 0 && unicode.IsSpace(r[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(r[i-1]) {
		i--
	}
	return i
}

func wordRight(r []rune, i int) int {
	for i < len(r) && !unicode.IsSpace(r[i]) {
		i++
	}
	for i < len(r) && unicode.IsSpace(r[i]) {
		i++
	}
	return i
}
