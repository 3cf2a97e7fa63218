package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatPadsColumns(t *testing.T) {
	lines := Format([][]string{
		{"id", "name"},
		{"1", "users"},
		{"12", "orders"},
	}, []Alignment{AlignRight, AlignLeft})

	assert.Equal(t, []string{
		"id  name",
		" 1  users",
		"12  orders",
	}, lines)
}

func TestFormatUsesDisplayWidth(t *testing.T) {
	lines := Format([][]string{
		{"日本", "x"},
		{"ab", "y"},
	}, nil)

	assert.Equal(t, []string{"日本  x", "ab    y"}, lines)
}

func TestFormatHandlesRaggedRows(t *testing.T) {
	lines := Format([][]string{{"a"}, {"b", "c"}}, nil)
	assert.Equal(t, []string{"a", "b  c"}, lines)
	assert.Nil(t, Format(nil, nil))
}

func TestRenderAddsRule(t *testing.T) {
	out := Render([]string{"col", "type"}, [][]string{{"id", "INTEGER"}}, nil)
	assert.Equal(t, "col  type\n------------\nid   INTEGER", out)
}
