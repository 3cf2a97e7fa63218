package state

import (
	"strconv"

	"github.com/atomicstack/node-browser/internal/tree"
)

// Row is one visible line of a view's outline.
type Row struct {
	// ID is the node identity; it changes when a tree is reloaded.
	ID string
	// Key is the label path, see KeyOf; it survives reloads.
	Key        string
	Label      string
	Depth      int
	Node       *tree.Node
	Expandable bool
	Expanded   bool
}

// Level encapsulates per-view outline state such as cursor position, filter,
// expansion and viewport.
type Level struct {
	ID             string
	Title          string
	Items          []Row
	Full           []Row
	Query          Query
	Cursor         int
	ViewportOffset int
	Root           *tree.Node

	expanded map[string]struct{}
	// parked is the key of the row to return to when the filter clears.
	parked string
}

// NewLevel builds the outline for root with only the root expanded.
func NewLevel(id, title string, root *tree.Node) *Level {
	l := &Level{
		ID:       id,
		Title:    title,
		Cursor:   -1,
		expanded: make(map[string]struct{}),
	}
	l.SetRoot(root)
	if root != nil {
		l.expanded[KeyOf(root)] = struct{}{}
		l.Rebuild()
		l.Cursor = 0
	}
	return l
}

// KeyOf returns the reload-stable key of n: its label path, with siblings
// that share a label told apart by their position among those siblings.
func KeyOf(n *tree.Node) string {
	parent := n.Parent()
	if parent == nil {
		return n.Label()
	}
	return childKey(KeyOf(parent), parent.Children(), n)
}

const dupMark = "\x01"

func childKey(parentKey string, siblings []*tree.Node, n *tree.Node) string {
	seen := 0
	for _, s := range siblings {
		if s == n {
			break
		}
		if s.Label() == n.Label() {
			seen++
		}
	}
	seg := n.Label()
	if seen > 0 {
		seg += dupMark + strconv.Itoa(seen)
	}
	return parentKey + "\x00" + seg
}

// SetRoot swaps in a new tree root, keeping expansion and the cursor row
// where their keys still exist.
func (l *Level) SetRoot(root *tree.Node) {
	var key string
	if row := l.Current(); row != nil {
		key = row.Key
	}
	l.Root = root
	l.Rebuild()
	if idx := l.IndexOf(key); idx >= 0 {
		l.Cursor = idx
	}
}

// IndexOf returns the row index for a node ID, falling back to the key.
func (l *Level) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, row := range l.Items {
		if row.ID == id {
			return i
		}
	}
	for i, row := range l.Items {
		if row.Key == id {
			return i
		}
	}
	return -1
}

// IndexOfNode returns the row showing n, or -1.
func (l *Level) IndexOfNode(n *tree.Node) int {
	for i, row := range l.Items {
		if row.Node == n {
			return i
		}
	}
	return -1
}

// Current returns the row under the cursor.
func (l *Level) Current() *Row {
	if l.Cursor < 0 || l.Cursor >= len(l.Items) {
		return nil
	}
	return &l.Items[l.Cursor]
}

// IsExpanded reports whether n shows its children.
func (l *Level) IsExpanded(n *tree.Node) bool {
	_, ok := l.expanded[KeyOf(n)]
	return ok
}

// SetExpanded opens or closes n. Opening resolves its children on rebuild.
func (l *Level) SetExpanded(n *tree.Node, open bool) bool {
	if n == nil || l.IsExpanded(n) == open {
		return false
	}
	key := KeyOf(n)
	if open {
		l.expanded[key] = struct{}{}
	} else {
		delete(l.expanded, key)
	}
	id := ""
	if row := l.Current(); row != nil {
		id = row.ID
	}
	l.Rebuild()
	if idx := l.IndexOf(id); idx >= 0 {
		l.Cursor = idx
	}
	return true
}

// Toggle flips the expansion of n.
func (l *Level) Toggle(n *tree.Node) bool {
	return l.SetExpanded(n, !l.IsExpanded(n))
}

// Rebuild flattens the expanded part of the tree and reapplies the filter.
func (l *Level) Rebuild() {
	prevOffset := l.ViewportOffset
	l.Full = flatten(l.Root, l.expanded)
	l.applyFilter()
	if len(l.Items) == 0 || prevOffset < 0 || prevOffset > len(l.Items)-1 {
		l.ViewportOffset = 0
		return
	}
	l.ViewportOffset = prevOffset
}

func flatten(root *tree.Node, expanded map[string]struct{}) []Row {
	if root == nil {
		return nil
	}
	var rows []Row
	var walk func(n *tree.Node, key string)
	walk = func(n *tree.Node, key string) {
		_, open := expanded[key]
		var kids []*tree.Node
		if open || n.ChildrenLoaded() {
			kids = n.Children()
		}
		expandable := !n.ChildrenLoaded() || len(kids) > 0
		rows = append(rows, Row{
			ID:         n.ID().String(),
			Key:        key,
			Label:      n.Label(),
			Depth:      n.Depth(),
			Node:       n,
			Expandable: expandable,
			Expanded:   open && expandable,
		})
		if !open {
			return
		}
		seen := make(map[string]int, len(kids))
		for _, child := range kids {
			seg := child.Label()
			if k := seen[seg]; k > 0 {
				seg += dupMark + strconv.Itoa(k)
			}
			seen[child.Label()]++
			walk(child, key+"\x00"+seg)
		}
	}
	walk(root, KeyOf(root))
	return rows
}
