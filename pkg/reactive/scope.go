package reactive

import (
	"sync"
	"sync/atomic"
)

// Disposable is anything that releases resources on Dispose.
// Derived values, compiled objects, and subscription handles all qualify.
type Disposable interface {
	Dispose()
}

// DisposeFunc adapts a plain function to the Disposable interface.
type DisposeFunc func()

// Dispose implements Disposable.
func (f DisposeFunc) Dispose() { f() }

// Scope aggregates disposables so they can be torn down atomically.
// Everything a scope-bound compile creates — widgets, subscriptions,
// derived values, child scopes — registers here.
//
// Scopes form a hierarchy: disposing a parent disposes its children first.
type Scope struct {
	id uint64

	// parent is the parent scope, nil for roots.
	parent *Scope

	// children are child scopes, disposed before this scope's own items.
	children   []*Scope
	childrenMu sync.Mutex

	// tracked are the disposables, in registration order.
	tracked   []Disposable
	trackedMu sync.Mutex

	// disposed flips exactly once; a second Cleanup is a no-op.
	disposed atomic.Bool
}

// NewScope creates a root scope.
func NewScope() *Scope {
	return &Scope{id: nextID()}
}

// ID returns the unique identifier for this scope.
func (s *Scope) ID() uint64 {
	return s.id
}

// Child creates a scope owned by s. Cleaning up s cleans the child first.
func (s *Scope) Child() *Scope {
	child := &Scope{id: nextID(), parent: s}
	s.childrenMu.Lock()
	s.children = append(s.children, child)
	s.childrenMu.Unlock()
	return child
}

// IsDisposed reports whether Cleanup has already run.
func (s *Scope) IsDisposed() bool {
	return s.disposed.Load()
}

// Track registers d for disposal when the scope is cleaned up.
// If the scope is already disposed, d is disposed immediately.
func (s *Scope) Track(d Disposable) {
	if d == nil {
		return
	}
	if s.disposed.Load() {
		d.Dispose()
		return
	}

	s.trackedMu.Lock()
	s.tracked = append(s.tracked, d)
	s.trackedMu.Unlock()
}

// OnCleanup registers a function to run when the scope is cleaned up.
func (s *Scope) OnCleanup(fn func()) {
	s.Track(DisposeFunc(fn))
}

// Cleanup disposes every tracked item exactly once, children first, then
// tracked items in reverse registration order. Idempotent: a second call
// is a no-op.
func (s *Scope) Cleanup() {
	if s.disposed.Swap(true) {
		return
	}

	if s.parent != nil {
		s.parent.removeChild(s)
	}

	s.childrenMu.Lock()
	children := make([]*Scope, len(s.children))
	copy(children, s.children)
	s.children = nil
	s.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Cleanup()
	}

	s.trackedMu.Lock()
	tracked := s.tracked
	s.tracked = nil
	s.trackedMu.Unlock()

	for i := len(tracked) - 1; i >= 0; i-- {
		tracked[i].Dispose()
	}
}

// Dispose implements Disposable so scopes can be tracked by other scopes.
func (s *Scope) Dispose() {
	s.Cleanup()
}

func (s *Scope) removeChild(child *Scope) {
	s.childrenMu.Lock()
	defer s.childrenMu.Unlock()
	for i, c := range s.children {
		if c == child {
			s.children = append(s.children[:i], s.children[i+1:]...)
			return
		}
	}
}
