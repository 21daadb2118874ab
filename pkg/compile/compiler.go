// Package compile turns raw configuration tables into live widgets. It
// resolves the style chain against the registry, translates property values
// into host form, opens reactive bindings for environment references and
// value handles, and routes directives to the animation engine.
package compile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cascade-ui/cascade/internal/observe"
	"github.com/cascade-ui/cascade/pkg/animate"
	cerr "github.com/cascade-ui/cascade/pkg/errors"
	"github.com/cascade-ui/cascade/pkg/host"
	"github.com/cascade-ui/cascade/pkg/props"
	"github.com/cascade-ui/cascade/pkg/reactive"
	"github.com/cascade-ui/cascade/pkg/registry"
)

// Compiler resolves configuration tables into compiled objects. It is safe
// to share one compiler across call sites; the descriptor table is built
// once at construction.
type Compiler struct {
	reg    *registry.Registry
	host   host.Host
	engine *animate.Engine
	log    *slog.Logger

	descriptors map[string]descriptor

	mu      sync.Mutex
	objects map[host.Handle]*Object
}

// New creates a compiler over the given registry and host.
func New(reg *registry.Registry, h host.Host) *Compiler {
	return &Compiler{
		reg:         reg,
		host:        h,
		engine:      animate.New(h, nil),
		log:         slog.Default().With("component", "compile"),
		descriptors: buildDescriptors(),
		objects:     make(map[host.Handle]*Object),
	}
}

// Compile builds a widget tree from cfg. Node failures are collected into
// the returned diagnostics; a nil Object with a non-nil error means the root
// itself could not be built. Sibling children always compile best-effort.
// Diagnostics are collected unconditionally; there is no toggle to discard
// them.
func (c *Compiler) Compile(cfg registry.Config) (*Object, *cerr.Diagnostics, error) {
	start := time.Now()
	class, _ := cfg["class"].(string)
	ctx, span := observe.StartCompile(context.Background(), class)
	defer span.End()

	diags := &cerr.Diagnostics{}
	obj, err := c.compileNode(ctx, nil, "", cfg, diags)
	observe.CompileSeconds(time.Since(start).Seconds())
	return obj, diags, err
}

// Object returns the compiled object owning the given widget handle.
func (c *Compiler) Object(h host.Handle) (*Object, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	obj, ok := c.objects[h]
	return obj, ok
}

// State switches the named state on the object owning h. Unknown handles
// and unknown state names are logged, never fatal.
func (c *Compiler) State(h host.Handle, name string) {
	obj, ok := c.Object(h)
	if !ok {
		c.log.Warn("state change for unknown widget", "state", name)
		return
	}
	if err := obj.states.Set(name); err != nil {
		c.log.Warn("state apply failed", "node", obj.node, "state", name, "error", err)
	}
}

// Edit merges cfg into the object owning h and re-applies the result,
// preserving the widget. Open bindings from the previous application are
// closed first.
func (c *Compiler) Edit(h host.Handle, cfg registry.Config) error {
	obj, ok := c.Object(h)
	if !ok {
		return fmt.Errorf("compile: edit of unknown widget handle %T", h)
	}

	obj.original = mergeInto(obj.original, cfg.DeepCopy())
	merged, err := c.resolveStyles(obj.node, obj.original)
	if err != nil {
		return err
	}
	return c.reapply(obj, merged)
}

func (c *Compiler) remember(obj *Object) {
	c.mu.Lock()
	c.objects[obj.widget] = obj
	c.mu.Unlock()
}

func (c *Compiler) forget(h host.Handle) {
	c.mu.Lock()
	delete(c.objects, h)
	c.mu.Unlock()
}

func (c *Compiler) compileNode(ctx context.Context, parent *Object, name string, cfg registry.Config, diags *cerr.Diagnostics) (*Object, error) {
	class, _ := cfg["class"].(string)
	if class == "" {
		err := &cerr.ConfigError{Op: "compile.node", Node: name, Key: "class", Err: cerr.ErrMissingClass}
		diags.Add(err)
		observe.NodeError()
		return nil, err
	}
	node := name
	if node == "" {
		node = class
	}

	ctx, span := observe.StartNode(ctx, node, class)
	defer span.End()

	merged, err := c.resolveStyles(node, cfg)
	if err != nil {
		diags.Add(err)
		observe.NodeError()
		return nil, err
	}

	widget, err := c.host.CreateWidget(class)
	if err != nil {
		werr := &cerr.ConfigError{Op: "compile.node", Node: node, Key: "class", Err: err}
		diags.Add(werr)
		observe.NodeError()
		return nil, werr
	}

	obj := newObject(c, widget, node, class, cfg.DeepCopy())
	obj.resolved = merged
	c.remember(obj)

	if parent != nil {
		if err := c.host.SetProperty(widget, "Parent", parent.widget); err != nil {
			diags.Add(&cerr.ConfigError{Op: "compile.node", Node: node, Err: err})
		}
		c.host.SetProperty(widget, "Name", node)
		parent.addChild(node, obj)
	}

	c.applyNode(ctx, obj, merged, diags)
	observe.NodeCompiled(class)

	// Any style reference to a component registers the object for that
	// component's Reload/Update fan-out: the plain style string, a
	// (name, overrides) tuple, or a multistyle entry in either form.
	for _, name := range styleRefNames(cfg) {
		if comp, ok := c.reg.Component(name); ok {
			comp.Track(obj)
		}
	}
	return obj, nil
}

// reapply closes the previous application's bindings and applies merged to
// the existing widget.
func (c *Compiler) reapply(obj *Object, merged registry.Config) error {
	obj.dropBindings()
	obj.resolved = merged

	diags := &cerr.Diagnostics{}
	c.applyNode(context.Background(), obj, merged, diags)
	return errors.Join(diags.Errors()...)
}

// applyNode applies a flattened property table: direct and reactive
// properties first, then directives.
func (c *Compiler) applyNode(ctx context.Context, obj *Object, merged registry.Config, diags *cerr.Diagnostics) {
	directiveKeys := make(map[string]any)

	for _, key := range sortedConfigKeys(merged) {
		if key == "class" {
			continue
		}
		v := merged[key]
		lower := strings.ToLower(key)
		d, known := c.descriptors[lower]
		if known && d.kind == kindDirective {
			directiveKeys[lower] = v
			continue
		}
		c.applyProperty(obj, key, d, v, diags)
	}

	c.applyDirectives(ctx, obj, merged, directiveKeys, diags)
}

// applyProperty writes one direct property, opening a reactive binding when
// the value is a value handle or an environment reference. An unknown key
// falls through with its raw name and the generic string pipeline.
func (c *Compiler) applyProperty(obj *Object, key string, d descriptor, v any, diags *cerr.Diagnostics) {
	hostKey := d.hostKey
	if hostKey == "" {
		hostKey = key
	}

	// A reactive value handle binds directly: the current value applies
	// immediately, then every emission re-runs the translation.
	if src, ok := v.(reactive.Source); ok {
		c.setTranslated(obj, hostKey, d, src.Load(), false, diags)
		unsubscribe := src.Watch(func(nv any) {
			c.setTranslated(obj, hostKey, d, nv, false, diags)
		})
		obj.AddDisposer(trackBinding(unsubscribe))
		return
	}

	c.setTranslated(obj, hostKey, d, v, true, diags)
}

// setTranslated translates v and assigns it, or opens an environment
// binding when translation resolves to a registered env key. allowEnv is
// false when the value already arrived through a binding, so an env value
// whose content is a string never chains into a second lookup.
func (c *Compiler) setTranslated(obj *Object, hostKey string, d descriptor, v any, allowEnv bool, diags *cerr.Diagnostics) {
	out, envName, err := c.translateValue(d, v, allowEnv)
	if err != nil {
		diags.Add(&cerr.ConfigError{Op: "compile.apply", Node: obj.node, Key: hostKey, Err: err})
		observe.NodeError()
		return
	}

	if envName != "" {
		env, ok := c.reg.Env(envName)
		if !ok {
			diags.Add(&cerr.BindingError{Op: "compile.apply", Node: obj.node, Key: hostKey, Ref: envName, Err: cerr.ErrUnknownEnvRef})
			observe.NodeError()
			return
		}
		unsubscribe := env.Bind(func(nv any) {
			c.setTranslated(obj, hostKey, d, nv, false, diags)
		})
		obj.AddDisposer(trackBinding(unsubscribe))
		return
	}

	if err := c.host.SetProperty(obj.widget, hostKey, out); err != nil {
		diags.Add(&cerr.ConfigError{Op: "compile.apply", Node: obj.node, Key: hostKey, Err: err})
		observe.NodeError()
	}
}

// translateValue converts a raw value into host form. The non-empty second
// return names an environment key the value resolves through instead.
//
// String values follow a fixed precedence: color parse first, then
// environment lookup, then raw pass-through. A string that is both a color
// name and an env key is therefore always a color.
func (c *Compiler) translateValue(d descriptor, v any, allowEnv bool) (any, string, error) {
	if d.translate != nil {
		out, err := d.translate(v)
		if err == nil {
			return out, "", nil
		}
		if s, ok := v.(string); ok && allowEnv {
			if _, found := c.reg.Env(s); found {
				return nil, s, nil
			}
		}
		if errors.Is(err, errNotAColor) {
			// Unmatched color-key strings pass through untranslated.
			return v, "", nil
		}
		return nil, "", err
	}

	if s, ok := v.(string); ok {
		if col, ok := props.ParseColor(s); ok {
			return col, "", nil
		}
		if allowEnv {
			if _, found := c.reg.Env(s); found {
				return nil, s, nil
			}
		}
		return s, "", nil
	}
	return v, "", nil
}

func sortedConfigKeys(cfg registry.Config) []string {
	out := make([]string, 0, len(cfg))
	for k := range cfg {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
