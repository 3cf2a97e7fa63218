package tree_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/node-browser/internal/testutil"
	"github.com/atomicstack/node-browser/internal/tree"
)

func TestDetailTextIsMemoized(t *testing.T) {
	leaf := testutil.Leaf("leaf", "leaf-content")
	tr := tree.New("doc", leaf)
	n := tr.Root()

	assert.Equal(t, "leaf-content", n.DetailText())
	assert.Equal(t, "leaf-content", n.DetailText())
	assert.Equal(t, 1, leaf.DetailCalls())

	st := n.DetailState()
	assert.Equal(t, tree.DetailReady, st.Status)
	assert.Equal(t, "leaf-content", st.Text)
	assert.Equal(t, tree.CacheStats{Computed: 1, Hits: 1}, tr.Stats())
}

func TestConcurrentDetailTextCallsProviderOnce(t *testing.T) {
	gate := make(chan struct{})
	leaf := &testutil.Static{Name: "slow", Text: "done", Gate: gate}
	n := tree.New("doc", leaf).Root()

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = n.DetailText()
		}(i)
	}
	close(gate)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "done", r)
	}
	assert.Equal(t, 1, leaf.DetailCalls())
}

func TestDetailFailureIsCachedAsText(t *testing.T) {
	leaf := &testutil.Static{Name: "broken", DetailErr: testutil.ErrFake}
	n := tree.New("doc", leaf).Root()

	text := n.DetailText()
	require.NotEmpty(t, text)
	assert.Contains(t, text, testutil.ErrFake.Error())
	assert.Equal(t, tree.DetailFailed, n.DetailState().Status)

	assert.Equal(t, text, n.DetailText())
	assert.Equal(t, 1, leaf.DetailCalls(), "failures must not be retried automatically")
}

func TestDetailPanicBecomesFailure(t *testing.T) {
	leaf := &testutil.Static{Name: "panicky", PanicDetail: true}
	n := tree.New("doc", leaf).Root()

	text := n.DetailText()
	assert.Contains(t, text, "fake detail panic")
	assert.Equal(t, tree.DetailFailed, n.DetailState().Status)
}

func TestInvalidateRecomputes(t *testing.T) {
	leaf := testutil.Leaf("leaf", "v1")
	n := tree.New("doc", leaf).Root()

	require.Equal(t, "v1", n.DetailText())
	leaf.Text = "v2"
	n.Invalidate()
	assert.Equal(t, tree.DetailUnresolved, n.DetailState().Status)
	assert.Equal(t, "v2", n.DetailText())
	assert.Equal(t, 2, leaf.DetailCalls())
}

func TestMarkPendingLeavesResolvedNodesAlone(t *testing.T) {
	n := tree.New("doc", testutil.Leaf("leaf", "text")).Root()

	require.True(t, n.MarkPending(3))
	st := n.DetailState()
	assert.Equal(t, tree.DetailPending, st.Status)
	assert.Equal(t, uint64(3), st.Generation)

	n.DetailText()
	assert.False(t, n.MarkPending(4))
	assert.Equal(t, tree.DetailReady, n.DetailState().Status)
}

func TestChildrenResolvedOnce(t *testing.T) {
	x := testutil.Leaf("X", "x")
	y := testutil.Leaf("Y", "y")
	root := testutil.Branch("R", "r", x, y)
	n := tree.New("doc", root).Root()

	first := n.Children()
	second := n.Children()
	require.Len(t, first, 2)
	assert.Same(t, first[0], second[0])
	assert.Equal(t, 1, root.ChildrenCalls())
	assert.Equal(t, "X", first[0].Label())
	assert.Equal(t, 1, first[0].Depth())
	assert.Same(t, n, first[0].Parent())
	assert.Equal(t, []string{"R", "Y"}, first[1].Path())
	assert.NotEqual(t, first[0].ID(), first[1].ID())
}

func TestChildrenFailureYieldsLeaf(t *testing.T) {
	testutil.QuietLogs(t)
	root := &testutil.Static{Name: "R", ChildErr: testutil.ErrFake}
	n := tree.New("doc", root).Root()

	assert.Empty(t, n.Children())
	assert.False(t, n.HasChildren())
	assert.ErrorIs(t, n.ChildrenErr(), testutil.ErrFake)
	assert.Equal(t, 1, root.ChildrenCalls())
}

func TestFindOnlyWalksMaterialisedNodes(t *testing.T) {
	deep := testutil.Leaf("deep", "")
	mid := testutil.Branch("mid", "", deep)
	root := testutil.Branch("root", "", mid)
	tr := tree.New("doc", root)

	assert.Nil(t, tr.Find(tr.Root().ID()).Parent())
	assert.Equal(t, 0, root.ChildrenCalls())

	midNode := tr.Root().Children()[0]
	assert.Same(t, midNode, tr.Find(midNode.ID()))
	assert.Equal(t, 0, mid.ChildrenCalls())
}

func TestBlankLabelIsReplaced(t *testing.T) {
	n := tree.New("doc", testutil.Leaf("  ", "")).Root()
	assert.Equal(t, "(unnamed)", n.Label())
}

func TestCloseMarksTree(t *testing.T) {
	tr := tree.New("doc", testutil.Leaf("leaf", ""))
	assert.False(t, tr.Closed())
	tr.Close()
	assert.True(t, tr.Closed())
	assert.Equal(t, "doc", tr.Source())
}
