package loader

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atomicstack/node-browser/internal/data/dispatcher"
	"github.com/atomicstack/node-browser/internal/state"
	"github.com/atomicstack/node-browser/internal/testutil"
	"github.com/atomicstack/node-browser/internal/tree"
)

type harness struct {
	registry *state.Registry
	queue    *dispatcher.Queue
	spawner  *testutil.Spawner
	loader   *Loader
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	h := &harness{
		registry: state.NewRegistry(),
		queue:    dispatcher.New(),
		spawner:  &testutil.Spawner{},
	}
	if opts.Spawn == nil {
		opts.Spawn = h.spawner.Spawn
	}
	h.loader = New(h.registry, h.queue, opts)
	t.Cleanup(func() {
		h.loader.Close()
		h.spawner.RunAll()
		h.loader.Wait()
	})
	return h
}

// frame mirrors one render pass: react to selection, then apply deliveries.
func (h *harness) frame(viewID string) Display {
	h.loader.Tick(viewID)
	h.queue.DrainAndRun()
	return h.loader.Display(viewID)
}

func twoLeaves(t *testing.T) (*tree.Node, *tree.Node, *testutil.Static, *testutil.Static) {
	t.Helper()
	xp := testutil.Leaf("X", "x-content")
	yp := testutil.Leaf("Y", "y-content")
	kids := tree.New("doc", testutil.Branch("R", "", xp, yp)).Root().Children()
	require.Len(t, kids, 2)
	return kids[0], kids[1], xp, yp
}

func TestSelectionDeliversAfterPlaceholder(t *testing.T) {
	h := newHarness(t, Options{})
	x, _, _, _ := twoLeaves(t)

	h.registry.SetSelected("A", x)
	d := h.frame("A")
	assert.True(t, d.Loading)
	assert.Equal(t, DefaultPlaceholder, d.Text)
	assert.Same(t, x, d.Node)
	assert.Equal(t, StatusAwaiting, h.loader.Status("A"))
	assert.Equal(t, tree.DetailPending, x.DetailState().Status)

	require.Equal(t, 1, h.spawner.Len())
	h.spawner.RunAll()
	d = h.frame("A")
	assert.False(t, d.Loading)
	assert.Equal(t, "x-content", d.Text)
	assert.Equal(t, StatusDelivered, h.loader.Status("A"))

	h.frame("A")
	assert.Equal(t, StatusIdle, h.loader.Status("A"))
	assert.Equal(t, "x-content", h.loader.Display("A").Text)
}

func TestStaleResultIsNeverShown(t *testing.T) {
	h := newHarness(t, Options{})
	x, y, _, _ := twoLeaves(t)

	h.registry.SetSelected("A", x)
	h.frame("A")
	xPending := h.loader.Pending("A")
	require.NotNil(t, xPending)

	// X finishes only after the user has moved on to Y.
	h.registry.SetSelected("A", y)
	h.loader.Tick("A")
	assert.True(t, xPending.Cancelled())
	assert.Equal(t, StatusSuperseded, xPending.Status())

	h.spawner.RunAll()
	d := h.frame("A")
	assert.Same(t, y, d.Node)
	assert.NotEqual(t, "x-content", d.Text)
	assert.Equal(t, "y-content", d.Text)

	// The superseded worker still warmed the cache for X.
	assert.Equal(t, tree.DetailReady, x.DetailState().Status)
	assert.Equal(t, "x-content", x.DetailState().Text)
}

func TestLateSupersededWorkerAfterDelivery(t *testing.T) {
	h := newHarness(t, Options{})
	x, y, _, _ := twoLeaves(t)

	h.registry.SetSelected("A", x)
	h.frame("A")
	h.registry.SetSelected("A", y)
	h.frame("A")
	require.Equal(t, 2, h.spawner.Len())

	// Y completes first and is shown.
	h.spawner.Run(1)
	require.Equal(t, "y-content", h.frame("A").Text)

	// X straggles in afterwards.
	h.spawner.Run(0)
	for i := 0; i < 3; i++ {
		d := h.frame("A")
		assert.Same(t, y, d.Node)
		assert.Equal(t, "y-content", d.Text)
	}
	assert.Equal(t, "x-content", x.DetailState().Text)
}

func TestSlowSupersededWorkerWithRealGoroutines(t *testing.T) {
	xp := &testutil.Static{Name: "X", Text: "x-content", Delay: 200 * time.Millisecond}
	yp := testutil.Leaf("Y", "y-content")
	kids := tree.New("doc", testutil.Branch("R", "", xp, yp)).Root().Children()

	registry := state.NewRegistry()
	queue := dispatcher.New()
	l := New(registry, queue, Options{})
	defer func() {
		l.Close()
		l.Wait()
	}()

	frame := func() Display {
		l.Tick("A")
		queue.DrainAndRun()
		return l.Display("A")
	}

	registry.SetSelected("A", kids[0])
	require.True(t, frame().Loading)
	time.Sleep(20 * time.Millisecond)
	registry.SetSelected("A", kids[1])

	deadline := time.Now().Add(2 * time.Second)
	for kids[0].DetailState().Status != tree.DetailReady {
		d := frame()
		assert.NotEqual(t, "x-content", d.Text)
		if time.Now().After(deadline) {
			t.Fatalf("X never finished")
		}
		time.Sleep(5 * time.Millisecond)
	}
	l.Wait()
	for i := 0; i < 3; i++ {
		d := frame()
		assert.Same(t, kids[1], d.Node)
		assert.Equal(t, "y-content", d.Text)
	}
}

func TestSwitchingNeverRegresses(t *testing.T) {
	h := newHarness(t, Options{})
	x, y, _, _ := twoLeaves(t)

	var shown []string
	record := func(d Display) {
		if len(shown) == 0 || shown[len(shown)-1] != d.Text {
			shown = append(shown, d.Text)
		}
	}

	h.registry.SetSelected("A", x)
	record(h.frame("A"))
	h.spawner.RunAll()
	record(h.frame("A"))

	h.registry.SetSelected("A", y)
	record(h.frame("A"))
	record(h.frame("A"))
	h.spawner.RunAll()
	record(h.frame("A"))
	record(h.frame("A"))

	assert.Equal(t, []string{DefaultPlaceholder, "x-content", DefaultPlaceholder, "y-content"}, shown)
}

func TestCachedNodeDeliversSynchronously(t *testing.T) {
	h := newHarness(t, Options{})
	x, y, xp, _ := twoLeaves(t)
	require.Equal(t, "x-content", x.DetailText())

	h.registry.SetSelected("A", y)
	h.frame("A")
	h.registry.SetSelected("A", x)
	h.loader.Tick("A")

	assert.Equal(t, StatusDelivered, h.loader.Status("A"))
	d := h.loader.Display("A")
	assert.Equal(t, "x-content", d.Text)
	assert.False(t, d.Loading)
	assert.Equal(t, 1, h.spawner.Len(), "only Y needed a worker")
	assert.Equal(t, 1, xp.DetailCalls())
}

func TestFailedDetailIsDelivered(t *testing.T) {
	h := newHarness(t, Options{})
	n := tree.New("doc", &testutil.Static{Name: "bad", DetailErr: testutil.ErrFake}).Root()

	h.registry.SetSelected("A", n)
	h.frame("A")
	h.spawner.RunAll()
	d := h.frame("A")

	assert.True(t, d.Failed)
	assert.NotEmpty(t, d.Text)
	assert.Contains(t, d.Text, testutil.ErrFake.Error())
}

func TestSameNodeReselectDoesNotDispatch(t *testing.T) {
	h := newHarness(t, Options{})
	x, _, _, _ := twoLeaves(t)

	h.registry.SetSelected("A", x)
	h.frame("A")
	h.registry.SetSelected("A", x)
	h.frame("A")

	assert.Equal(t, 1, h.spawner.Len())
	assert.Equal(t, StatusAwaiting, h.loader.Status("A"))
}

func TestClearSelectionEmptiesDisplay(t *testing.T) {
	h := newHarness(t, Options{})
	x, _, _, _ := twoLeaves(t)

	h.registry.SetSelected("A", x)
	h.frame("A")
	p := h.loader.Pending("A")
	h.registry.Clear("A")
	d := h.frame("A")

	assert.True(t, p.Cancelled())
	assert.Nil(t, d.Node)
	assert.Empty(t, d.Text)
	assert.Equal(t, StatusIdle, h.loader.Status("A"))
}

func TestRefreshRecomputes(t *testing.T) {
	h := newHarness(t, Options{Placeholder: "wait"})
	x, _, xp, _ := twoLeaves(t)

	h.registry.SetSelected("A", x)
	h.frame("A")
	h.spawner.RunAll()
	require.Equal(t, "x-content", h.frame("A").Text)

	xp.Text = "x-updated"
	h.loader.Refresh("A")
	assert.Equal(t, "wait", h.loader.Display("A").Text)

	h.spawner.RunAll()
	assert.Equal(t, "x-updated", h.frame("A").Text)
	assert.Equal(t, 2, xp.DetailCalls())
}

func TestViewsProgressIndependently(t *testing.T) {
	h := newHarness(t, Options{})
	x, y, _, _ := twoLeaves(t)

	h.registry.SetSelected("A", x)
	h.registry.SetSelected("B", y)
	h.loader.Tick("A")
	h.loader.Tick("B")
	h.spawner.RunAll()
	h.queue.DrainAndRun()

	assert.Equal(t, "x-content", h.loader.Display("A").Text)
	assert.Equal(t, "y-content", h.loader.Display("B").Text)
}

func TestInvalidateFromOtherViewRestarts(t *testing.T) {
	h := newHarness(t, Options{})
	x, _, xp, _ := twoLeaves(t)

	h.registry.SetSelected("A", x)
	h.registry.SetSelected("B", x)
	h.loader.Tick("A")
	h.loader.Tick("B")
	h.spawner.RunAll()

	// B refreshes before A's delivery is drained.
	xp.Text = "x-again"
	h.loader.Refresh("B")
	h.queue.DrainAndRun()
	assert.Equal(t, StatusAwaiting, h.loader.Status("A"))

	h.spawner.RunAll()
	h.queue.DrainAndRun()
	assert.Equal(t, "x-again", h.loader.Display("A").Text)
	assert.Equal(t, "x-again", h.loader.Display("B").Text)
}

func TestForgottenViewDropsDelivery(t *testing.T) {
	h := newHarness(t, Options{})
	x, _, _, _ := twoLeaves(t)

	h.registry.SetSelected("A", x)
	h.loader.Tick("A")
	h.loader.Forget("A")
	h.registry.Forget("A")
	h.spawner.RunAll()

	assert.NotPanics(t, func() { h.queue.DrainAndRun() })
	assert.Equal(t, Display{}, h.loader.Display("A"))
	assert.Equal(t, StatusIdle, h.loader.Status("A"))
}

func TestCloseSuppressesDeliveries(t *testing.T) {
	h := newHarness(t, Options{})
	x, _, _, _ := twoLeaves(t)

	h.registry.SetSelected("A", x)
	h.loader.Tick("A")
	h.loader.Close()
	h.spawner.RunAll()
	h.loader.Wait()

	assert.Zero(t, h.queue.Len())
	assert.Equal(t, StatusAwaiting, h.loader.Status("A"))
}

func TestMaxWorkersBoundsConcurrency(t *testing.T) {
	gateX := make(chan struct{})
	gateY := make(chan struct{})
	xp := &testutil.Static{Name: "X", Text: "x", Gate: gateX}
	yp := &testutil.Static{Name: "Y", Text: "y", Gate: gateY}
	kids := tree.New("doc", testutil.Branch("R", "", xp, yp)).Root().Children()

	registry := state.NewRegistry()
	queue := dispatcher.New()
	l := New(registry, queue, Options{MaxWorkers: 1})
	defer func() {
		l.Close()
		l.Wait()
	}()

	registry.SetSelected("A", kids[0])
	registry.SetSelected("B", kids[1])
	l.Tick("A")
	l.Tick("B")

	calls := func() int { return xp.DetailCalls() + yp.DetailCalls() }
	require.Eventually(t, func() bool { return calls() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, calls(), "second worker must wait for the first")

	first, second := gateX, gateY
	if yp.DetailCalls() == 1 {
		first, second = gateY, gateX
	}
	close(first)
	require.Eventually(t, func() bool { return calls() == 2 }, time.Second, time.Millisecond)
	close(second)
	l.Wait()
	queue.DrainAndRun()
	assert.Equal(t, "x", l.Display("A").Text)
	assert.Equal(t, "y", l.Display("B").Text)
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "awaiting", StatusAwaiting.String())
	assert.Equal(t, "Status(42)", Status(42).String())
}
