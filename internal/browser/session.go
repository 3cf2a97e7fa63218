// Package browser ties opened trees, per-view selection and the detail loader
// into one render-goroutine session.
package browser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/atomicstack/node-browser/internal/data/dispatcher"
	"github.com/atomicstack/node-browser/internal/loader"
	"github.com/atomicstack/node-browser/internal/logging"
	"github.com/atomicstack/node-browser/internal/logging/events"
	"github.com/atomicstack/node-browser/internal/provider"
	"github.com/atomicstack/node-browser/internal/state"
	"github.com/atomicstack/node-browser/internal/tree"
)

var (
	// ErrUnknownView is returned for view IDs the session does not hold.
	ErrUnknownView = errors.New("unknown view")
	// ErrForeignNode is returned when selecting a node from another view's tree.
	ErrForeignNode = errors.New("node does not belong to view")
)

// Opener turns a source into a provider.
type Opener func(ctx context.Context, source string) (tree.Provider, error)

// Options configures a Session.
type Options struct {
	Loader loader.Options
	// Open defaults to provider.Open.
	Open Opener
}

// View is one open document with its own selection.
type View struct {
	ID     string
	Source string
	tree   *tree.Tree
}

// Tree returns the tree currently shown by the view. Reload replaces it.
func (v *View) Tree() *tree.Tree {
	return v.tree
}

// Session is confined to the render goroutine except for Close and Wait.
type Session struct {
	registry *state.Registry
	queue    *dispatcher.Queue
	loader   *loader.Loader
	open     Opener

	views []*View
	seq   int
}

func New(opts Options) *Session {
	s := &Session{
		registry: state.NewRegistry(),
		queue:    dispatcher.New(),
		open:     opts.Open,
	}
	if s.open == nil {
		s.open = provider.Open
	}
	s.loader = loader.New(s.registry, s.queue, opts.Loader)
	return s
}

// Queue exposes the delivery queue so other producers can hand work to the
// render goroutine.
func (s *Session) Queue() *dispatcher.Queue {
	return s.queue
}

// Open opens source in a new view. Every call yields a fresh view ID, even
// for a source that is already open.
func (s *Session) Open(ctx context.Context, source string) (*View, error) {
	p, err := s.open(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", source, err)
	}
	return s.Attach(source, p), nil
}

// Attach adds a view over an already opened provider.
func (s *Session) Attach(source string, p tree.Provider) *View {
	s.seq++
	v := &View{
		ID:     fmt.Sprintf("%s#%d", displayName(source), s.seq),
		Source: source,
		tree:   tree.New(source, p),
	}
	s.views = append(s.views, v)
	return v
}

func displayName(source string) string {
	trimmed := strings.TrimRight(source, string(filepath.Separator))
	if base := filepath.Base(trimmed); base != "." && base != "" && base != string(filepath.Separator) {
		return base
	}
	return source
}

// Views returns the open views in opening order.
func (s *Session) Views() []*View {
	return append([]*View(nil), s.views...)
}

func (s *Session) View(viewID string) (*View, error) {
	for _, v := range s.views {
		if v.ID == viewID {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", viewID, ErrUnknownView)
}

// CloseView discards a view, its selection and its tree. A computation still
// running for it completes but is never shown.
func (s *Session) CloseView(viewID string) error {
	for i, v := range s.views {
		if v.ID != viewID {
			continue
		}
		s.views = append(s.views[:i], s.views[i+1:]...)
		s.loader.Forget(viewID)
		s.registry.Forget(viewID)
		closeTree(v.tree)
		return nil
	}
	return fmt.Errorf("%q: %w", viewID, ErrUnknownView)
}

func closeTree(t *tree.Tree) {
	t.Close()
	if err := provider.Close(t.Root().Provider()); err != nil {
		logging.Error(fmt.Errorf("close %s: %w", t.Source(), err))
	}
}

// Select makes node the selection of viewID. It reports whether the
// selection changed.
func (s *Session) Select(viewID string, node *tree.Node) (bool, error) {
	v, err := s.View(viewID)
	if err != nil {
		return false, err
	}
	if node != nil && node.Tree() != v.tree {
		return false, ErrForeignNode
	}
	if node == nil {
		return s.registry.Clear(viewID), nil
	}
	return s.registry.SetSelected(viewID, node), nil
}

// ClearSelection empties the selection of viewID.
func (s *Session) ClearSelection(viewID string) (bool, error) {
	if _, err := s.View(viewID); err != nil {
		return false, err
	}
	return s.registry.Clear(viewID), nil
}

func (s *Session) Selected(viewID string) *tree.Node {
	return s.registry.GetSelected(viewID)
}

func (s *Session) IsSelected(viewID string, node *tree.Node) bool {
	return s.registry.IsSelected(viewID, node)
}

// Refresh recomputes the selected node's detail text in viewID.
func (s *Session) Refresh(viewID string) error {
	if _, err := s.View(viewID); err != nil {
		return err
	}
	s.loader.Refresh(viewID)
	return nil
}

// Frame runs one render step: every view reacts to its selection, then
// pending deliveries are applied. It returns how many deliveries ran.
func (s *Session) Frame() int {
	for _, v := range s.views {
		s.loader.Tick(v.ID)
	}
	return s.queue.DrainAndRun()
}

// Display returns the detail pane content of viewID.
func (s *Session) Display(viewID string) loader.Display {
	return s.loader.Display(viewID)
}

// Status returns the loader state of viewID.
func (s *Session) Status(viewID string) loader.Status {
	return s.loader.Status(viewID)
}

// OpenProvider runs the session opener without touching any view. It is
// safe to call off the render goroutine.
func (s *Session) OpenProvider(ctx context.Context, source string) (tree.Provider, error) {
	return s.open(ctx, source)
}

// Reload reopens the document behind viewID and swaps in a fresh tree. The
// selection follows the previously selected path as far as it still exists.
func (s *Session) Reload(ctx context.Context, viewID string) error {
	v, err := s.View(viewID)
	if err != nil {
		return err
	}
	p, err := s.open(ctx, v.Source)
	if err != nil {
		events.Backend.Reload(viewID, v.Source, err)
		return fmt.Errorf("reload %s: %w", v.Source, err)
	}
	return s.Replace(viewID, p)
}

// Replace swaps the tree of viewID for one over p and releases the old tree.
func (s *Session) Replace(viewID string, p tree.Provider) error {
	v, err := s.View(viewID)
	if err != nil {
		provider.Close(p)
		return err
	}
	var path []pathStep
	if sel := s.registry.GetSelected(viewID); sel != nil {
		path = stepsTo(sel)
	}
	old := v.tree
	v.tree = tree.New(v.Source, p)
	if node := resolvePath(v.tree.Root(), path); node != nil {
		s.registry.SetSelected(viewID, node)
	} else {
		s.registry.Clear(viewID)
	}
	closeTree(old)
	events.Backend.Reload(viewID, v.Source, nil)
	return nil
}

// pathStep locates a child by label and by its rank among siblings sharing
// that label.
type pathStep struct {
	label string
	nth   int
}

func stepsTo(n *tree.Node) []pathStep {
	var steps []pathStep
	for ; n != nil; n = n.Parent() {
		step := pathStep{label: n.Label()}
		if parent := n.Parent(); parent != nil {
			for _, sib := range parent.Children() {
				if sib == n {
					break
				}
				if sib.Label() == step.label {
					step.nth++
				}
			}
		}
		steps = append(steps, step)
	}
	slices.Reverse(steps)
	return steps
}

// resolvePath walks steps from root and returns the deepest match. The
// first step names the root itself.
func resolvePath(root *tree.Node, path []pathStep) *tree.Node {
	if len(path) == 0 || root.Label() != path[0].label {
		return nil
	}
	node := root
	for _, step := range path[1:] {
		var next *tree.Node
		seen := 0
		for _, child := range node.Children() {
			if child.Label() != step.label {
				continue
			}
			if seen == step.nth {
				next = child
				break
			}
			seen++
		}
		if next == nil {
			break
		}
		node = next
	}
	return node
}

// ViewsForPath returns the IDs of views whose source is path or contains it.
func (s *Session) ViewsForPath(path string) []string {
	changed := absPath(path)
	var ids []string
	for _, v := range s.views {
		src := absPath(v.Source)
		if changed == src || strings.HasPrefix(changed, src+string(filepath.Separator)) {
			ids = append(ids, v.ID)
		}
	}
	return ids
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

// Close stops background deliveries and releases every tree.
func (s *Session) Close() {
	s.loader.Close()
	for _, v := range s.views {
		closeTree(v.tree)
	}
}

// Wait blocks until background workers have returned.
func (s *Session) Wait() {
	s.loader.Wait()
}
