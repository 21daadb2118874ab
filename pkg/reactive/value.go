package reactive

import "sync"

// subscription pairs a callback with a stable identifier so it can be
// removed without disturbing the order of the remaining subscribers.
type subscription[T any] struct {
	id uint64
	fn func(T)
}

// Value is a mutable reactive cell. Setting it notifies every subscriber,
// in subscription order, before Set returns.
//
// The reactive graph is single-timeline: Set/notify/derive chains execute
// synchronously on the calling goroutine. The subscriber list itself is
// guarded so read-only consumers (devtools snapshots) can attach from other
// goroutines, but there is no concurrent-writer contract on the value.
//
// A subscriber may call Set on the same or another Value; such recursive
// sets run depth-first, not batched. No cycle detection is performed, so
// two values that set each other unconditionally will recurse until stack
// exhaustion.
type Value[T any] struct {
	id uint64

	// value is the current cell content.
	value T

	// subs are the listeners, in subscription order.
	subs []subscription[T]

	// mu protects value and subs.
	mu sync.Mutex

	// parent is the source this value was derived from.
	// Diagnostics only; it never owns and is never traversed for cleanup.
	parent Source

	// detach unsubscribes a derived value from its source(s).
	// nil for root values.
	detach func()

	// disposed marks a derived value whose source subscription was detached.
	disposed bool
}

// New creates a root reactive value holding initial.
func New[T any](initial T) *Value[T] {
	return &Value[T]{
		id:    nextID(),
		value: initial,
	}
}

// ID returns the unique identifier for this value.
func (v *Value[T]) ID() uint64 {
	return v.id
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.value
}

// Set stores val and notifies all current subscribers with it, in
// subscription order. Every Set notifies, even when val equals the current
// value; callers rely on this for force-refresh semantics.
//
// Notification iterates a snapshot of the subscriber list: subscribing or
// unsubscribing from inside a callback affects only later notifications.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	v.value = val
	subs := make([]subscription[T], len(v.subs))
	copy(subs, v.subs)
	v.mu.Unlock()

	for _, s := range subs {
		s.fn(val)
	}
}

// Subscribe registers fn to be called with every value passed to Set.
// It returns an unsubscribe function; calling it more than once is harmless.
func (v *Value[T]) Subscribe(fn func(T)) func() {
	id := nextID()

	v.mu.Lock()
	v.subs = append(v.subs, subscription[T]{id: id, fn: fn})
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		for i, s := range v.subs {
			if s.id == id {
				// Preserve order: later subscribers keep their position.
				v.subs = append(v.subs[:i], v.subs[i+1:]...)
				return
			}
		}
	}
}

// Bind invokes setter with the current value once, then subscribes it to
// every subsequent change. It returns the unsubscribe function.
func (v *Value[T]) Bind(setter func(T)) func() {
	setter(v.Get())
	return v.Subscribe(setter)
}

// Map returns a derived value that re-derives via fn on every source
// notification. Dispose the result to detach it from its source.
// For derivations that change the element type, use MapTo.
func (v *Value[T]) Map(fn func(T) T) *Value[T] {
	return MapTo(v, fn)
}

// Filter returns a derived value that follows the source only while pred
// accepts the emitted value. Rejected emissions keep the prior value and do
// not notify the derived value's subscribers.
//
// If the source's current value fails pred, the derived value starts at the
// zero value of T.
func (v *Value[T]) Filter(pred func(T) bool) *Value[T] {
	var initial T
	if cur := v.Get(); pred(cur) {
		initial = cur
	}

	derived := New(initial)
	derived.parent = v
	derived.detach = v.Subscribe(func(val T) {
		if pred(val) {
			derived.Set(val)
		}
	})
	return derived
}

// Parent returns the source this value was derived from, or nil for root
// values. Diagnostics only.
func (v *Value[T]) Parent() Source {
	return v.parent
}

// Dispose detaches a derived value from its source. Root values have no
// source subscription, so Dispose is a no-op for them. Idempotent.
func (v *Value[T]) Dispose() {
	v.mu.Lock()
	if v.disposed {
		v.mu.Unlock()
		return
	}
	v.disposed = true
	detach := v.detach
	v.detach = nil
	v.mu.Unlock()

	if detach != nil {
		detach()
	}
}

// MapTo returns a derived value computed by fn from src, re-deriving on
// every source notification. Dispose the result to detach it.
func MapTo[T, U any](src *Value[T], fn func(T) U) *Value[U] {
	derived := New(fn(src.Get()))
	derived.parent = src
	derived.detach = src.Subscribe(func(val T) {
		derived.Set(fn(val))
	})
	return derived
}

// Computed returns a derived value that recomputes via fn whenever any of
// the listed dependencies notifies. fn may read arbitrary captured values;
// deps declares which sources trigger recomputation.
func Computed[U any](fn func() U, deps ...Source) *Value[U] {
	derived := New(fn())

	detachers := make([]func(), 0, len(deps))
	for _, dep := range deps {
		detachers = append(detachers, dep.Watch(func(any) {
			derived.Set(fn())
		}))
	}
	if len(deps) == 1 {
		derived.parent = deps[0]
	}
	derived.detach = func() {
		for _, d := range detachers {
			d()
		}
	}
	return derived
}
