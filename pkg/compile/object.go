package compile

import (
	"sync"

	"github.com/cascade-ui/cascade/internal/observe"
	"github.com/cascade-ui/cascade/pkg/animate"
	"github.com/cascade-ui/cascade/pkg/host"
	"github.com/cascade-ui/cascade/pkg/registry"
)

// Object is a compiled configuration node: a live widget plus the
// subscriptions, animations, and children opened for it. Objects form a
// tree mirroring the spawn structure; disposing a parent disposes its
// children first.
type Object struct {
	compiler *Compiler
	widget   host.Handle
	node     string
	class    string

	// original is the raw configuration the object was compiled from,
	// kept for Edit and component re-application.
	original registry.Config

	// resolved is the flattened property table after style resolution.
	resolved registry.Config

	states  *animate.StateMachine
	ambient animate.SpringSpec

	mu       sync.Mutex
	children map[string]*Object
	// bindings hold per-application teardown (reactive subscriptions,
	// animation ticks, event connections). They are rebuilt on every
	// re-application; disposers live for the object's whole lifetime.
	bindings  []func()
	disposers []func()
	disposed  bool
}

func newObject(c *Compiler, widget host.Handle, node, class string, original registry.Config) *Object {
	return &Object{
		compiler: c,
		widget:   widget,
		node:     node,
		class:    class,
		original: original,
		states:   animate.NewStateMachine(node),
		children: make(map[string]*Object),
	}
}

// Widget returns the host widget handle.
func (o *Object) Widget() host.Handle { return o.widget }

// Node returns the object's identifying name within its parent's spawn
// table, or the class name for a root object.
func (o *Object) Node() string { return o.node }

// Class returns the widget kind the object was created with.
func (o *Object) Class() string { return o.class }

// Original returns the raw configuration the object was compiled from.
func (o *Object) Original() registry.Config { return o.original.DeepCopy() }

// Resolved returns the flattened property table the object was compiled
// from, after style resolution. The caller must not mutate it.
func (o *Object) Resolved() registry.Config { return o.resolved }

// Child returns the named spawn child.
func (o *Object) Child(name string) (*Object, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	ch, ok := o.children[name]
	return ch, ok
}

// Children returns the object's spawn children keyed by name.
func (o *Object) Children() map[string]*Object {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(map[string]*Object, len(o.children))
	for k, v := range o.children {
		out[k] = v
	}
	return out
}

// States returns the object's state machine.
func (o *Object) States() *animate.StateMachine { return o.states }

// AddDisposer registers per-application teardown. It runs on the next
// re-application or on disposal, whichever comes first.
func (o *Object) AddDisposer(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disposed {
		fn()
		return
	}
	o.bindings = append(o.bindings, fn)
}

// addPermanent registers teardown that survives re-application.
func (o *Object) addPermanent(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.disposed {
		fn()
		return
	}
	o.disposers = append(o.disposers, fn)
}

func (o *Object) addChild(name string, child *Object) {
	o.mu.Lock()
	o.children[name] = child
	o.mu.Unlock()
}

// dropBindings closes the current per-application teardown, in reverse
// order. Called before re-applying properties so no stale subscription
// keeps writing to the widget.
func (o *Object) dropBindings() {
	o.mu.Lock()
	bindings := o.bindings
	o.bindings = nil
	o.mu.Unlock()

	for i := len(bindings) - 1; i >= 0; i-- {
		bindings[i]()
	}
}

// Alive reports whether the object still owns a live widget.
func (o *Object) Alive() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return !o.disposed
}

// Reapply re-resolves the object against new source properties, preserving
// the widget's identity. The object's own inline properties still win over
// the incoming table. Existing spawn children are kept; new names in the
// incoming table compile as additional children.
func (o *Object) Reapply(source registry.Config) error {
	merged := mergeInto(source.DeepCopy(), o.inline())
	return o.compiler.reapply(o, merged)
}

// inline returns the object's own properties minus the style-chain keys, the
// layer that wins every merge.
func (o *Object) inline() registry.Config {
	out := make(registry.Config, len(o.original))
	for k, v := range o.original {
		if k == "style" || k == "multistyle" {
			continue
		}
		out[k] = v
	}
	return out
}

// Dispose tears the object down: children first (in no particular order),
// then bindings and permanent disposers in reverse, then the widget itself.
// Idempotent.
func (o *Object) Dispose() {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return
	}
	o.disposed = true
	children := o.children
	o.children = nil
	bindings := o.bindings
	o.bindings = nil
	disposers := o.disposers
	o.disposers = nil
	o.mu.Unlock()

	for _, child := range children {
		child.Dispose()
	}
	for i := len(bindings) - 1; i >= 0; i-- {
		bindings[i]()
	}
	for i := len(disposers) - 1; i >= 0; i-- {
		disposers[i]()
	}

	o.compiler.forget(o.widget)
	o.compiler.host.DestroyWidget(o.widget)
}

var _ registry.Instance = (*Object)(nil)
var _ animate.Target = (*Object)(nil)

// trackBinding wraps a reactive unsubscribe so the live-binding gauge stays
// accurate.
func trackBinding(unsubscribe func()) func() {
	observe.BindingOpened()
	var once sync.Once
	return func() {
		once.Do(func() {
			observe.BindingClosed()
			unsubscribe()
		})
	}
}
