// Package loader computes node detail texts off the render goroutine and
// applies only the result matching a view's latest selection.
package loader

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/atomicstack/node-browser/internal/data/dispatcher"
	"github.com/atomicstack/node-browser/internal/logging/events"
	"github.com/atomicstack/node-browser/internal/state"
	"github.com/atomicstack/node-browser/internal/tree"
)

// DefaultPlaceholder is shown while a detail text is being computed.
const DefaultPlaceholder = "Loading…"

// Status is the per-view state of the loader.
type Status int

const (
	StatusIdle Status = iota
	StatusDispatching
	StatusAwaiting
	StatusDelivered
	StatusSuperseded
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusDispatching:
		return "dispatching"
	case StatusAwaiting:
		return "awaiting"
	case StatusDelivered:
		return "delivered"
	case StatusSuperseded:
		return "superseded"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Pending describes one issued background computation.
type Pending struct {
	ViewID     string
	Generation uint64
	Node       *tree.Node

	request   uint64
	cancelled atomic.Bool
	status    atomic.Int32
}

// Cancel marks the computation as superseded. The worker keeps running; only
// its delivery is suppressed.
func (p *Pending) Cancel() {
	p.cancelled.Store(true)
	p.status.Store(int32(StatusSuperseded))
}

func (p *Pending) Cancelled() bool {
	return p.cancelled.Load()
}

// Status reports the lifecycle position of this computation.
func (p *Pending) Status() Status {
	return Status(p.status.Load())
}

// Display is what the render surface shows for a view.
type Display struct {
	Node       *tree.Node
	Text       string
	Failed     bool
	Loading    bool
	Generation uint64
}

// Spawner starts fn on another goroutine. Tests substitute it to control
// scheduling.
type Spawner func(fn func())

type viewState struct {
	generation uint64
	request    uint64
	node       *tree.Node
	status     Status
	pending    *Pending
	display    Display
}

// Options tunes a Loader.
type Options struct {
	// Placeholder replaces DefaultPlaceholder while awaiting a result.
	Placeholder string
	// MaxWorkers caps concurrently running computations; zero means unbounded.
	MaxWorkers int
	Spawn      Spawner
}

// Loader owns the per-view async state machine. Tick, Refresh, Display and
// Status must be called from the render goroutine.
type Loader struct {
	registry    *state.Registry
	queue       *dispatcher.Queue
	placeholder string
	spawn       Spawner
	sem         *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	views map[string]*viewState
}

func New(registry *state.Registry, queue *dispatcher.Queue, opts Options) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader{
		registry:    registry,
		queue:       queue,
		placeholder: opts.Placeholder,
		spawn:       opts.Spawn,
		ctx:         ctx,
		cancel:      cancel,
		views:       make(map[string]*viewState),
	}
	if l.placeholder == "" {
		l.placeholder = DefaultPlaceholder
	}
	if l.spawn == nil {
		l.spawn = func(fn func()) { go fn() }
	}
	if opts.MaxWorkers > 0 {
		l.sem = semaphore.NewWeighted(int64(opts.MaxWorkers))
	}
	return l
}

func (l *Loader) view(viewID string) *viewState {
	vs, ok := l.views[viewID]
	if !ok {
		vs = &viewState{}
		l.views[viewID] = vs
	}
	return vs
}

// Tick reacts to a selection change in viewID. It is called once per frame.
func (l *Loader) Tick(viewID string) {
	sel := l.registry.Snapshot(viewID)
	vs := l.view(viewID)
	if sel.Generation == vs.generation && sel.Node == vs.node {
		if vs.status == StatusDelivered {
			vs.status = StatusIdle
		}
		return
	}
	l.supersede(viewID, vs)
	vs.generation = sel.Generation
	vs.node = sel.Node
	l.start(viewID, vs)
}

// Refresh invalidates the selected node of viewID and recomputes it without
// touching the selection.
func (l *Loader) Refresh(viewID string) {
	vs, ok := l.views[viewID]
	if !ok || vs.node == nil {
		return
	}
	l.supersede(viewID, vs)
	vs.node.Invalidate()
	l.start(viewID, vs)
}

func (l *Loader) supersede(viewID string, vs *viewState) {
	if vs.pending == nil {
		return
	}
	if vs.status == StatusAwaiting {
		vs.pending.Cancel()
		events.Loader.Supersede(viewID, vs.pending.Generation)
	}
	vs.pending = nil
}

func (l *Loader) start(viewID string, vs *viewState) {
	vs.request++
	node := vs.node
	if node == nil {
		vs.status = StatusIdle
		vs.display = Display{Generation: vs.generation}
		return
	}
	vs.status = StatusDispatching
	if st := node.DetailState(); st.Resolved() {
		events.Loader.CacheHit(viewID, node.ID().String(), vs.generation)
		vs.display = displayFor(node, st, vs.generation)
		vs.status = StatusDelivered
		return
	}
	node.MarkPending(vs.generation)
	p := &Pending{
		ViewID:     viewID,
		Generation: vs.generation,
		Node:       node,
		request:    vs.request,
	}
	p.status.Store(int32(StatusAwaiting))
	vs.pending = p
	vs.status = StatusAwaiting
	vs.display = Display{Node: node, Text: l.placeholder, Loading: true, Generation: vs.generation}
	events.Loader.Dispatch(viewID, node.ID().String(), vs.generation)
	l.dispatch(p)
}

func (l *Loader) dispatch(p *Pending) {
	l.wg.Add(1)
	l.spawn(func() {
		defer l.wg.Done()
		if l.sem != nil {
			if err := l.sem.Acquire(l.ctx, 1); err != nil {
				return
			}
			defer l.sem.Release(1)
		}
		p.Node.DetailText()
		if l.ctx.Err() != nil {
			return
		}
		l.queue.Enqueue(func() { l.deliver(p) })
	})
}

// deliver runs on the render goroutine during a queue drain.
func (l *Loader) deliver(p *Pending) {
	current := l.registry.Generation(p.ViewID)
	vs, ok := l.views[p.ViewID]
	if !ok || p.Cancelled() || current != p.Generation || vs.generation != p.Generation || vs.request != p.request {
		events.Loader.Stale(p.ViewID, p.Generation, current)
		return
	}
	st := p.Node.DetailState()
	if !st.Resolved() {
		// The node was invalidated from another view while this worker ran.
		vs.pending = nil
		l.start(p.ViewID, vs)
		return
	}
	vs.display = displayFor(p.Node, st, p.Generation)
	vs.status = StatusDelivered
	vs.pending = nil
	p.status.Store(int32(StatusDelivered))
	events.Loader.Deliver(p.ViewID, p.Node.ID().String(), p.Generation)
}

func displayFor(node *tree.Node, st tree.DetailState, generation uint64) Display {
	return Display{
		Node:       node,
		Text:       st.Text,
		Failed:     st.Status == tree.DetailFailed,
		Generation: generation,
	}
}

// Display returns what should currently be rendered for viewID.
func (l *Loader) Display(viewID string) Display {
	if vs, ok := l.views[viewID]; ok {
		return vs.display
	}
	return Display{}
}

// Status returns the loader state for viewID.
func (l *Loader) Status(viewID string) Status {
	if vs, ok := l.views[viewID]; ok {
		return vs.status
	}
	return StatusIdle
}

// Pending returns the in-flight computation for viewID, if any.
func (l *Loader) Pending(viewID string) *Pending {
	if vs, ok := l.views[viewID]; ok && vs.status == StatusAwaiting {
		return vs.pending
	}
	return nil
}

// Forget drops the state of a closed view. A late delivery for it is stale.
func (l *Loader) Forget(viewID string) {
	if vs, ok := l.views[viewID]; ok {
		l.supersede(viewID, vs)
		delete(l.views, viewID)
	}
}

// Close stops workers from enqueueing further deliveries.
func (l *Loader) Close() {
	l.cancel()
}

// Wait blocks until every dispatched worker has returned.
func (l *Loader) Wait() {
	l.wg.Wait()
}
