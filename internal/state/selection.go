package state

import (
	"sort"
	"weak"

	"github.com/google/uuid"

	"github.com/atomicstack/node-browser/internal/logging/events"
	"github.com/atomicstack/node-browser/internal/tree"
)

// Selection is a point-in-time view of one view's selection.
type Selection struct {
	ViewID     string
	Node       *tree.Node
	Generation uint64
}

type viewSelection struct {
	id         uuid.UUID
	node       weak.Pointer[tree.Node]
	selected   bool
	generation uint64
}

// Registry tracks the single selected node of every named view. Nodes are
// referenced weakly; ownership stays with their tree.
//
// A Registry is confined to the render goroutine and is not safe for
// concurrent use.
type Registry struct {
	views map[string]*viewSelection
}

func NewRegistry() *Registry {
	return &Registry{views: make(map[string]*viewSelection)}
}

func (r *Registry) view(viewID string) *viewSelection {
	v, ok := r.views[viewID]
	if !ok {
		v = &viewSelection{}
		r.views[viewID] = v
	}
	return v
}

// SetSelected replaces the selection for viewID and bumps its generation.
// Selecting the node that is already selected is a no-op and returns false.
func (r *Registry) SetSelected(viewID string, node *tree.Node) bool {
	v := r.view(viewID)
	if v.holds(node) {
		events.Selection.Unchanged(viewID, nodeID(node))
		return false
	}
	if node == nil {
		v.id = uuid.Nil
		v.node = weak.Pointer[tree.Node]{}
		v.selected = false
	} else {
		v.id = node.ID()
		v.node = weak.Make(node)
		v.selected = true
	}
	v.generation++
	events.Selection.Change(viewID, nodeID(node), v.generation)
	return true
}

func (v *viewSelection) holds(node *tree.Node) bool {
	if node == nil {
		return !v.selected
	}
	return v.selected && v.id == node.ID()
}

// GetSelected returns the node selected in viewID, or nil.
func (r *Registry) GetSelected(viewID string) *tree.Node {
	v, ok := r.views[viewID]
	if !ok || !v.selected {
		return nil
	}
	return v.node.Value()
}

// IsSelected reports whether node is the current selection of viewID.
func (r *Registry) IsSelected(viewID string, node *tree.Node) bool {
	if node == nil {
		return false
	}
	v, ok := r.views[viewID]
	return ok && v.selected && v.id == node.ID()
}

// Generation returns the selection generation for viewID. Unknown views
// report zero.
func (r *Registry) Generation(viewID string) uint64 {
	if v, ok := r.views[viewID]; ok {
		return v.generation
	}
	return 0
}

func (r *Registry) Snapshot(viewID string) Selection {
	return Selection{
		ViewID:     viewID,
		Node:       r.GetSelected(viewID),
		Generation: r.Generation(viewID),
	}
}

// Clear removes the selection of viewID.
func (r *Registry) Clear(viewID string) bool {
	return r.SetSelected(viewID, nil)
}

// Forget drops all state for a closed view.
func (r *Registry) Forget(viewID string) {
	delete(r.views, viewID)
}

// Views lists known view identifiers in sorted order.
func (r *Registry) Views() []string {
	ids := make([]string, 0, len(r.views))
	for id := range r.views {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func nodeID(node *tree.Node) string {
	if node == nil {
		return ""
	}
	return node.ID().String()
}
