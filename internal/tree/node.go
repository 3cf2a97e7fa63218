package tree

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/atomicstack/node-browser/internal/logging"
	"github.com/atomicstack/node-browser/internal/logging/events"
)

const unknownLabel = "(unnamed)"

// Node wraps a Provider with a stable identity, lazily populated children and
// a memoized detail text.
type Node struct {
	id       uuid.UUID
	label    string
	provider Provider
	parent   *Node
	depth    int
	tree     *Tree

	childrenOnce   sync.Once
	childrenLoaded atomic.Bool
	children       []*Node
	childrenErr    error

	detail atomic.Pointer[DetailState]
}

func newNode(t *Tree, parent *Node, p Provider) *Node {
	n := &Node{
		id:       uuid.New(),
		provider: p,
		parent:   parent,
		tree:     t,
	}
	if parent != nil {
		n.depth = parent.depth + 1
	}
	n.label = callLabel(p)
	n.detail.Store(&DetailState{})
	return n
}

// ID returns the node identity.
func (n *Node) ID() uuid.UUID {
	return n.id
}

// Label returns the display label resolved at construction.
func (n *Node) Label() string {
	return n.label
}

func (n *Node) Depth() int {
	return n.depth
}

func (n *Node) Parent() *Node {
	return n.parent
}

func (n *Node) Tree() *Tree {
	return n.tree
}

func (n *Node) Provider() Provider {
	return n.provider
}

// Path returns the labels from the root down to this node.
func (n *Node) Path() []string {
	var labels []string
	for cur := n; cur != nil; cur = cur.parent {
		labels = append(labels, cur.label)
	}
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}
	return labels
}

// Children resolves the child nodes on first use and returns the cached slice
// afterwards. A provider failure is logged and the node becomes a leaf.
func (n *Node) Children() []*Node {
	n.childrenOnce.Do(n.loadChildren)
	return n.children
}

// ChildrenErr reports the enumeration failure absorbed by Children, if any.
func (n *Node) ChildrenErr() error {
	n.childrenOnce.Do(n.loadChildren)
	return n.childrenErr
}

// ChildrenLoaded reports whether Children has already been resolved.
func (n *Node) ChildrenLoaded() bool {
	return n.childrenLoaded.Load()
}

// HasChildren reports whether the node has at least one child.
func (n *Node) HasChildren() bool {
	return len(n.Children()) > 0
}

func (n *Node) loadChildren() {
	defer n.childrenLoaded.Store(true)
	providers, err := callChildren(n.provider)
	if err != nil {
		n.childrenErr = err
		events.Node.ChildrenFailed(n.id.String(), n.label, err)
		logging.Error(fmt.Errorf("enumerate children of %q: %w", n.label, err))
		return
	}
	children := make([]*Node, 0, len(providers))
	for _, p := range providers {
		if p == nil {
			continue
		}
		children = append(children, newNode(n.tree, n, p))
	}
	n.children = children
}

// DetailState returns the current detail snapshot.
func (n *Node) DetailState() DetailState {
	return *n.detail.Load()
}

// MarkPending records that a computation was requested for the given view
// generation. Resolved nodes are left untouched.
func (n *Node) MarkPending(generation uint64) bool {
	for {
		cur := n.detail.Load()
		if cur.Resolved() {
			return false
		}
		next := &DetailState{Status: DetailPending, Generation: generation, epoch: cur.epoch}
		if n.detail.CompareAndSwap(cur, next) {
			return true
		}
	}
}

// DetailText computes the detail text synchronously, at most once per node.
// Concurrent callers share a single provider call. Failures are converted into
// a cached error surrogate, so the returned text is never empty for a failed
// node.
func (n *Node) DetailText() string {
	cur := n.detail.Load()
	if cur.Resolved() {
		n.tree.stats.hits.Add(1)
		return cur.Text
	}
	key := fmt.Sprintf("%s/%d", n.id, cur.epoch)
	v, _, _ := n.tree.flight.Do(key, func() (interface{}, error) {
		return n.compute().Text, nil
	})
	text, _ := v.(string)
	return text
}

func (n *Node) compute() *DetailState {
	cur := n.detail.Load()
	if cur.Resolved() {
		n.tree.stats.hits.Add(1)
		return cur
	}
	epoch := cur.epoch
	n.tree.stats.computed.Add(1)
	text, err := callDetail(n.provider)
	next := &DetailState{Status: DetailReady, Text: text, epoch: epoch}
	if err != nil {
		n.tree.stats.failed.Add(1)
		next = &DetailState{Status: DetailFailed, Text: failureText(n.label, err), epoch: epoch}
		events.Node.DetailFailed(n.id.String(), n.label, err)
	}
	return n.publish(next)
}

// publish stores next unless another result landed first or the node was
// invalidated while computing.
func (n *Node) publish(next *DetailState) *DetailState {
	for {
		cur := n.detail.Load()
		if cur.epoch != next.epoch {
			return next
		}
		if cur.Resolved() {
			return cur
		}
		if n.detail.CompareAndSwap(cur, next) {
			return next
		}
	}
}

// Invalidate drops the memoized detail text. A computation already running
// finishes but its result is not cached.
func (n *Node) Invalidate() {
	for {
		cur := n.detail.Load()
		next := &DetailState{epoch: cur.epoch + 1}
		if n.detail.CompareAndSwap(cur, next) {
			events.Node.Invalidate(n.id.String(), n.label)
			return
		}
	}
}

func failureText(label string, err error) string {
	msg := ""
	if err != nil {
		msg = strings.TrimSpace(err.Error())
	}
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Sprintf("error: unable to describe %s: %s", label, msg)
}

var errPanic = errors.New("provider panic")

func recoverError(r interface{}) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", errPanic, err)
	}
	return fmt.Errorf("%w: %v", errPanic, r)
}

func callLabel(p Provider) (label string) {
	defer func() {
		if r := recover(); r != nil {
			label = unknownLabel
		}
	}()
	label = p.Label()
	if strings.TrimSpace(label) == "" {
		label = unknownLabel
	}
	return label
}

func callChildren(p Provider) (children []Provider, err error) {
	defer func() {
		if r := recover(); r != nil {
			children, err = nil, recoverError(r)
		}
	}()
	return p.Children()
}

func callDetail(p Provider) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", recoverError(r)
		}
	}()
	return p.DetailText()
}
