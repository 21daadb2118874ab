// Package registry holds the named, shared building blocks a configuration
// can reference: environment values (process-wide reactive values), styles
// (reusable flat property tables), and components (structured definitions
// with reload/update fan-out to live instances).
//
// A Registry is a constructed context object, not a true global: the
// compiler receives one explicitly, and tests create isolated instances.
// The package-level default lives in the root cascade package.
package registry

import (
	"log/slog"
	"sort"
	"sync"

	cerr "github.com/cascade-ui/cascade/pkg/errors"
	"github.com/cascade-ui/cascade/pkg/host"
	"github.com/cascade-ui/cascade/pkg/reactive"
)

// Config is a raw property table: the declarative description of a widget
// or style. Values may be scalars, nested Configs, slices, reactive
// sources, or callback functions.
type Config map[string]any

// DeepCopy returns a copy of c with nested Configs and slices copied too.
// Reactive sources and functions are shared, not cloned; everything else is
// treated as an immutable scalar.
func (c Config) DeepCopy() Config {
	if c == nil {
		return nil
	}
	out := make(Config, len(c))
	for k, v := range c {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case Config:
		return val.DeepCopy()
	case map[string]any:
		return Config(val).DeepCopy()
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}

// Registry is the named-entry store consulted during compilation.
type Registry struct {
	log *slog.Logger

	mu         sync.RWMutex
	env        map[string]*reactive.Value[any]
	styles     map[string]Config
	components map[string]*Component

	// intro is the optional host capability for snapshotting widget-backed
	// component sources. Set by the runtime when the host supports it.
	intro host.Introspector
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		log:        slog.Default().With("component", "registry"),
		env:        make(map[string]*reactive.Value[any]),
		styles:     make(map[string]Config),
		components: make(map[string]*Component),
	}
}

// SetIntrospector wires the host's optional property-snapshot capability,
// enabling widget handles as component sources.
func (r *Registry) SetIntrospector(in host.Introspector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.intro = in
}

// Reset drops every entry. Test isolation only.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.env = make(map[string]*reactive.Value[any])
	r.styles = make(map[string]Config)
	r.components = make(map[string]*Component)
}

// AddEnv registers a named environment value with the given initial value.
// Registration is fail-fast: a second AddEnv under the same name returns a
// RegistryError wrapping ErrDuplicateKey rather than silently aliasing.
func (r *Registry) AddEnv(name string, initial any) (*reactive.Value[any], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.env[name]; exists {
		return nil, &cerr.RegistryError{Op: "registry.AddEnv", Name: name, Err: cerr.ErrDuplicateKey}
	}
	v := reactive.New[any](initial)
	r.env[name] = v
	return v, nil
}

// Env looks up a registered environment value by name.
func (r *Registry) Env(name string) (*reactive.Value[any], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.env[name]
	return v, ok
}

// EnvNames returns the registered environment keys, sorted.
func (r *Registry) EnvNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.env)
}

// AddStyle stores a named style. The table is deep-copied on the way in, so
// later mutation of props does not leak into resolved objects.
// Re-registering a name replaces the stored table.
func (r *Registry) AddStyle(name string, props Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.styles[name] = props.DeepCopy()
}

// Style returns a copy of the stored table for name. Component entries made
// global via MakeGlobal resolve here too, and any component name resolves
// as a style of last resort.
func (r *Registry) Style(name string) (Config, bool) {
	r.mu.RLock()
	if props, ok := r.styles[name]; ok {
		r.mu.RUnlock()
		return props.DeepCopy(), true
	}
	comp, ok := r.components[name]
	r.mu.RUnlock()

	if !ok {
		return nil, false
	}
	props, err := comp.Resolve()
	if err != nil {
		r.log.Warn("component source resolution failed", "name", name, "error", err)
		return nil, false
	}
	return props, true
}

// StyleNames returns the registered style keys, sorted.
func (r *Registry) StyleNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.styles)
}

// Component looks up a registered component by name.
func (r *Registry) Component(name string) (*Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.components[name]
	return c, ok
}

// ComponentNames returns the registered component keys, sorted.
func (r *Registry) ComponentNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.components)
}

// ReloadAll re-resolves every component source and fans the result out to
// live instances. Individual failures are logged and skipped.
func (r *Registry) ReloadAll() {
	r.mu.RLock()
	comps := make([]*Component, 0, len(r.components))
	for _, c := range r.components {
		comps = append(comps, c)
	}
	r.mu.RUnlock()

	for _, c := range comps {
		if err := c.Reload(); err != nil {
			r.log.Warn("component reload failed", "name", c.Name(), "error", err)
		}
	}
}

func (r *Registry) removeComponent(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.components, name)
}

func (r *Registry) aliasGlobal(name string, props Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.styles[name] = props.DeepCopy()
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
