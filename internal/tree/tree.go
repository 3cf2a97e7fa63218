package tree

import (
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Tree owns every node built from one opened document.
type Tree struct {
	source string
	root   *Node
	flight singleflight.Group
	closed atomic.Bool
	stats  cacheCounters
}

type cacheCounters struct {
	computed atomic.Uint64
	failed   atomic.Uint64
	hits     atomic.Uint64
}

// CacheStats summarises detail text cache activity for a tree.
type CacheStats struct {
	Computed uint64
	Failed   uint64
	Hits     uint64
}

// New builds a tree rooted at the given provider. Only the root is
// materialised; descendants appear as Children is called.
func New(source string, root Provider) *Tree {
	t := &Tree{source: source}
	t.root = newNode(t, nil, root)
	return t
}

// Source returns the document identifier the tree was opened from.
func (t *Tree) Source() string {
	return t.source
}

func (t *Tree) Root() *Node {
	return t.root
}

// Close marks the tree as discarded. Computations in flight still complete.
func (t *Tree) Close() {
	t.closed.Store(true)
}

func (t *Tree) Closed() bool {
	return t.closed.Load()
}

func (t *Tree) Stats() CacheStats {
	return CacheStats{
		Computed: t.stats.computed.Load(),
		Failed:   t.stats.failed.Load(),
		Hits:     t.stats.hits.Load(),
	}
}

// Walk visits materialised nodes depth-first without forcing any lazy
// children. Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(*Node) bool) {
	var visit func(*Node) bool
	visit = func(n *Node) bool {
		if !fn(n) {
			return false
		}
		if !n.childrenLoaded.Load() {
			return true
		}
		for _, child := range n.children {
			if !visit(child) {
				return false
			}
		}
		return true
	}
	visit(t.root)
}

// Find looks up a materialised node by identity.
func (t *Tree) Find(id uuid.UUID) *Node {
	var found *Node
	t.Walk(func(n *Node) bool {
		if n.id == id {
			found = n
			return false
		}
		return true
	})
	return found
}
