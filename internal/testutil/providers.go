package testutil

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atomicstack/node-browser/internal/tree"
)

// ErrFake is returned by failing fakes.
var ErrFake = errors.New("fake provider failure")

// Static is an in-memory provider with call counters.
type Static struct {
	Name        string
	Text        string
	Kids        []tree.Provider
	ChildErr    error
	DetailErr   error
	PanicDetail bool
	Delay       time.Duration
	// Gate, when set, blocks DetailText until it is closed.
	Gate chan struct{}

	detailCalls   atomic.Int64
	childrenCalls atomic.Int64
}

// Leaf returns a provider without children.
func Leaf(name, text string) *Static {
	return &Static{Name: name, Text: text}
}

// Branch returns a provider with the given children.
func Branch(name, text string, kids ...tree.Provider) *Static {
	return &Static{Name: name, Text: text, Kids: kids}
}

func (s *Static) Label() string {
	return s.Name
}

func (s *Static) Children() ([]tree.Provider, error) {
	s.childrenCalls.Add(1)
	if s.ChildErr != nil {
		return nil, s.ChildErr
	}
	return s.Kids, nil
}

func (s *Static) DetailText() (string, error) {
	s.detailCalls.Add(1)
	if s.Gate != nil {
		<-s.Gate
	}
	if s.Delay > 0 {
		time.Sleep(s.Delay)
	}
	if s.PanicDetail {
		panic("fake detail panic")
	}
	if s.DetailErr != nil {
		return "", s.DetailErr
	}
	return s.Text, nil
}

// DetailCalls reports how many times DetailText ran.
func (s *Static) DetailCalls() int {
	return int(s.detailCalls.Load())
}

// ChildrenCalls reports how many times Children ran.
func (s *Static) ChildrenCalls() int {
	return int(s.childrenCalls.Load())
}

// Spawner collects spawned functions so tests decide when workers run.
type Spawner struct {
	mu    sync.Mutex
	funcs []func()
}

// Spawn records fn without running it.
func (s *Spawner) Spawn(fn func()) {
	s.mu.Lock()
	s.funcs = append(s.funcs, fn)
	s.mu.Unlock()
}

// Len returns the number of spawned but not yet run functions.
func (s *Spawner) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, fn := range s.funcs {
		if fn != nil {
			n++
		}
	}
	return n
}

// Run executes the i-th spawned function synchronously, counting in spawn
// order. A function runs at most once.
func (s *Spawner) Run(i int) {
	s.mu.Lock()
	fn := s.funcs[i]
	s.funcs[i] = nil
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// RunAll executes every recorded function in spawn order.
func (s *Spawner) RunAll() {
	s.mu.Lock()
	funcs := append([]func(){}, s.funcs...)
	s.funcs = nil
	s.mu.Unlock()
	for _, fn := range funcs {
		if fn != nil {
			fn()
		}
	}
}
