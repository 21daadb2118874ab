package registry

import (
	"fmt"
	"sync"

	cerr "github.com/cascade-ui/cascade/pkg/errors"
	"github.com/cascade-ui/cascade/pkg/host"
)

// SourceLoader resolves an external component source on demand. Resolution
// is deferred until first use; Reload re-runs the loader.
type SourceLoader func() (Config, error)

// Instance is a live compiled object tracked by a component. Reload and
// Update fan out through this interface so the registry stays decoupled
// from the compiler.
type Instance interface {
	// Reapply re-resolves the instance's configuration against the new
	// source properties, preserving the widget's identity.
	Reapply(props Config) error

	// Alive reports whether the instance's widget still exists. Dead
	// instances are dropped from the tracking set.
	Alive() bool
}

// Component is a named, reusable structured definition. Unlike a style, a
// component remembers the instances compiled from it and can push source
// changes to them without recreating their widgets.
type Component struct {
	reg  *Registry
	name string

	mu        sync.Mutex
	table     Config       // resolved source, nil while a loader is pending
	loader    SourceLoader // non-nil for deferred sources
	handle    host.Handle  // non-nil for widget-backed sources
	resolved  bool
	instances []Instance
}

// AddComponent registers a component under name. data may be:
//   - a Config (or map[string]any): stored directly as the resolved source;
//   - a SourceLoader: resolution deferred until first use;
//   - a widget handle: properties snapshotted one-way through the host's
//     Introspector capability (an error if the host has none).
//
// Registration is fail-fast on duplicate names, matching AddEnv.
func (r *Registry) AddComponent(name string, data any) (*Component, error) {
	r.mu.Lock()
	if _, exists := r.components[name]; exists {
		r.mu.Unlock()
		return nil, &cerr.RegistryError{Op: "registry.AddComponent", Name: name, Err: cerr.ErrDuplicateKey}
	}
	intro := r.intro
	r.mu.Unlock()

	c := &Component{reg: r, name: name}
	if err := c.setSource(data, intro); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.components[name] = c
	r.mu.Unlock()
	return c, nil
}

func (c *Component) setSource(data any, intro host.Introspector) error {
	switch src := data.(type) {
	case Config:
		c.table = src.DeepCopy()
		c.loader = nil
		c.handle = nil
		c.resolved = true
	case map[string]any:
		c.table = Config(src).DeepCopy()
		c.loader = nil
		c.handle = nil
		c.resolved = true
	case SourceLoader:
		c.table = nil
		c.loader = src
		c.handle = nil
		c.resolved = false
	case func() (Config, error):
		c.table = nil
		c.loader = src
		c.handle = nil
		c.resolved = false
	case nil:
		return fmt.Errorf("registry: component %q: nil source", c.name)
	default:
		// Anything else is treated as a widget handle to snapshot.
		if intro == nil {
			return fmt.Errorf("registry: component %q: host cannot introspect widget sources", c.name)
		}
		props, ok := intro.Properties(src)
		if !ok {
			return fmt.Errorf("registry: component %q: unknown widget handle", c.name)
		}
		c.table = toConfig(props)
		c.loader = nil
		c.handle = src
		c.resolved = true
	}
	return nil
}

// Name returns the component's registry key.
func (c *Component) Name() string {
	return c.name
}

// Resolve returns a copy of the component's source properties, running a
// deferred loader on first use.
func (c *Component) Resolve() (Config, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resolveLocked()
}

func (c *Component) resolveLocked() (Config, error) {
	if !c.resolved {
		if c.loader == nil {
			return nil, &cerr.RegistryError{Op: "registry.Resolve", Name: c.name, Err: cerr.ErrUnknownComponent}
		}
		table, err := c.loader()
		if err != nil {
			return nil, fmt.Errorf("registry: component %q: loading source: %w", c.name, err)
		}
		c.table = table.DeepCopy()
		c.resolved = true
	}
	return c.table.DeepCopy(), nil
}

// MakeGlobal aliases the component into the style namespace, so a plain
// `style = name` resolves it ahead of component fallback.
func (c *Component) MakeGlobal() error {
	props, err := c.Resolve()
	if err != nil {
		return err
	}
	c.reg.aliasGlobal(c.name, props)
	return nil
}

// Destroy removes the component's registry entry. Previously compiled
// instances keep their widgets; only future lookups are affected.
func (c *Component) Destroy() {
	c.reg.removeComponent(c.name)

	c.mu.Lock()
	c.instances = nil
	c.mu.Unlock()
}

// Track registers a compiled instance for Reload/Update fan-out.
func (c *Component) Track(inst Instance) {
	if inst == nil {
		return
	}
	c.mu.Lock()
	c.instances = append(c.instances, inst)
	c.mu.Unlock()
}

// Reload re-resolves the source (re-running a deferred loader or
// re-snapshotting a widget source) and re-applies the result to every live
// instance, preserving widget identity. Dead instances are dropped.
func (c *Component) Reload() error {
	c.mu.Lock()
	if c.loader != nil {
		c.resolved = false // force the loader to run again
	} else if c.handle != nil {
		if intro := c.reg.introspector(); intro != nil {
			if props, ok := intro.Properties(c.handle); ok {
				c.table = toConfig(props)
			}
		}
	}
	props, err := c.resolveLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	return c.fanOut(props)
}

// Update replaces the component's source and triggers the same fan-out as
// Reload.
func (c *Component) Update(data any) error {
	c.mu.Lock()
	intro := c.reg.introspector()
	if err := c.setSource(data, intro); err != nil {
		c.mu.Unlock()
		return err
	}
	props, err := c.resolveLocked()
	c.mu.Unlock()
	if err != nil {
		return err
	}

	return c.fanOut(props)
}

// Inspect returns the component's current resolved properties. Debug-only:
// it never triggers fan-out, but it will run a pending loader.
func (c *Component) Inspect() (Config, error) {
	return c.Resolve()
}

func (c *Component) fanOut(props Config) error {
	c.mu.Lock()
	live := c.instances[:0]
	targets := make([]Instance, 0, len(c.instances))
	for _, inst := range c.instances {
		if inst.Alive() {
			live = append(live, inst)
			targets = append(targets, inst)
		}
	}
	c.instances = live
	c.mu.Unlock()

	var firstErr error
	for _, inst := range targets {
		if err := inst.Reapply(props.DeepCopy()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Registry) introspector() host.Introspector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.intro
}

func toConfig(m map[string]any) Config {
	out := make(Config, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
