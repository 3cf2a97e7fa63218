package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/node-browser/internal/testutil"
	"github.com/atomicstack/node-browser/internal/tree"
)

func testNodes(t *testing.T) (*tree.Node, *tree.Node) {
	t.Helper()
	tr := tree.New("doc", testutil.Branch("R", "", testutil.Leaf("X", "x"), testutil.Leaf("Y", "y")))
	kids := tr.Root().Children()
	require.Len(t, kids, 2)
	return kids[0], kids[1]
}

func TestSetSelectedBumpsGeneration(t *testing.T) {
	x, y := testNodes(t)
	r := NewRegistry()

	assert.Nil(t, r.GetSelected("A"))
	assert.Zero(t, r.Generation("A"))

	require.True(t, r.SetSelected("A", x))
	assert.Same(t, x, r.GetSelected("A"))
	assert.Equal(t, uint64(1), r.Generation("A"))

	require.True(t, r.SetSelected("A", y))
	assert.Same(t, y, r.GetSelected("A"))
	assert.Equal(t, uint64(2), r.Generation("A"))
}

func TestSelectingSameNodeIsNoOp(t *testing.T) {
	x, _ := testNodes(t)
	r := NewRegistry()

	require.True(t, r.SetSelected("A", x))
	assert.False(t, r.SetSelected("A", x))
	assert.Equal(t, uint64(1), r.Generation("A"))
}

func TestViewsAreIsolated(t *testing.T) {
	x, y := testNodes(t)
	r := NewRegistry()

	r.SetSelected("A", x)
	r.SetSelected("B", y)
	r.SetSelected("A", y)

	assert.Same(t, y, r.GetSelected("B"))
	assert.Equal(t, uint64(1), r.Generation("B"))
	assert.Equal(t, uint64(2), r.Generation("A"))
	assert.Equal(t, []string{"A", "B"}, r.Views())
}

func TestClearSelection(t *testing.T) {
	x, _ := testNodes(t)
	r := NewRegistry()

	assert.False(t, r.Clear("A"), "clearing an empty view changes nothing")
	r.SetSelected("A", x)
	require.True(t, r.Clear("A"))
	assert.Nil(t, r.GetSelected("A"))
	assert.False(t, r.IsSelected("A", x))
	assert.Equal(t, uint64(2), r.Generation("A"))
}

func TestSnapshotAndForget(t *testing.T) {
	x, _ := testNodes(t)
	r := NewRegistry()
	r.SetSelected("A", x)

	snap := r.Snapshot("A")
	assert.Equal(t, Selection{ViewID: "A", Node: x, Generation: 1}, snap)
	assert.True(t, r.IsSelected("A", x))

	r.Forget("A")
	assert.Nil(t, r.GetSelected("A"))
	assert.Empty(t, r.Views())
}
