package compile

import (
	"context"
	"fmt"
	"strings"

	"github.com/cascade-ui/cascade/internal/observe"
	"github.com/cascade-ui/cascade/pkg/animate"
	cerr "github.com/cascade-ui/cascade/pkg/errors"
	"github.com/cascade-ui/cascade/pkg/host"
	"github.com/cascade-ui/cascade/pkg/props"
	"github.com/cascade-ui/cascade/pkg/registry"
)

// applyDirectives routes the node's directive keys to the animation engine
// and to child compilation. Order matters: fitToDevice sets geometry before
// animations read it, target/animate establish the ambient spring parameters
// hover falls back to, states must exist before the initial state applies,
// and run fires after the children are attached.
func (c *Compiler) applyDirectives(ctx context.Context, obj *Object, merged registry.Config, directives map[string]any, diags *cerr.Diagnostics) {
	if v, ok := directives["fittodevice"]; ok {
		if enabled, _ := v.(bool); enabled {
			observe.Directive("fitToDevice")
			full := host.Dim2{X: host.Dim{Scale: 1}, Y: host.Dim{Scale: 1}}
			if err := c.host.SetProperty(obj.widget, "Size", full); err != nil {
				diags.Add(&cerr.ConfigError{Op: "compile.directive", Node: obj.node, Key: "fitToDevice", Err: err})
			}
		}
	}

	for _, key := range []string{"target", "animate"} {
		if v, ok := directives[key]; ok {
			c.applyTarget(obj, key, v, diags)
		}
	}

	c.applyHover(obj, directives, diags)
	c.applyCallbacks(obj, directives, diags)
	c.applyStates(obj, directives, diags)
	c.applyEntrances(obj, merged, directives, diags)

	if v, ok := directives["spawn"]; ok {
		c.applySpawn(ctx, obj, v, diags)
	}

	if v, ok := directives["run"]; ok {
		observe.Directive("run")
		if fn, ok := v.(func(host.Handle)); ok {
			fn(obj.widget)
		} else {
			diags.Add(&cerr.ConfigError{Op: "compile.directive", Node: obj.node, Key: "run",
				Err: fmt.Errorf("expected func(host.Handle), got %T", v)})
		}
	}
}

// applyTarget handles the target/animate directives: one spring table or a
// list of them. Each table names a property, a destination value, and
// optional damping/frequency. The last explicit spring parameters become the
// node's ambient parameters for hover transitions.
func (c *Compiler) applyTarget(obj *Object, key string, v any, diags *cerr.Diagnostics) {
	tables := []any{v}
	if list, ok := v.([]any); ok && len(list) > 0 {
		if _, isTable := props.Table(list[0]); isTable {
			tables = list
		}
	}

	for _, entry := range tables {
		table, ok := props.Table(entry)
		if !ok {
			diags.Add(&cerr.ConfigError{Op: "compile.directive", Node: obj.node, Key: key, Err: cerr.ErrInvalidShape})
			observe.NodeError()
			continue
		}
		observe.Directive(key)

		propName, _ := table["property"].(string)
		if propName == "" {
			diags.Add(&cerr.ConfigError{Op: "compile.directive", Node: obj.node, Key: key,
				Err: fmt.Errorf("spring table needs a property name")})
			observe.NodeError()
			continue
		}

		spring := c.springParams(table)
		if _, hasD := table["damping"]; hasD {
			obj.ambient = spring
		} else if _, hasF := table["frequency"]; hasF {
			obj.ambient = spring
		}

		d, hostKey := c.lookupProp(propName)
		to, _, err := c.translateValue(d, table["value"], false)
		if err != nil {
			if alt, ok := alignmentShortcut(d, table["value"]); ok {
				to, err = alt, nil
			}
		}
		if err != nil {
			diags.Add(&cerr.ConfigError{Op: "compile.directive", Node: obj.node, Key: key, Err: err})
			observe.NodeError()
			continue
		}

		spec := animate.TargetSpec{Key: hostKey, To: to, Spring: spring}
		if from, ok := merged4From(obj, propName, d, c); ok {
			spec.From = from
		}
		if err := c.engine.Drive(obj, spec); err != nil {
			diags.Add(&cerr.ConfigError{Op: "compile.directive", Node: obj.node, Key: key, Err: err})
			observe.NodeError()
		}
	}
}

// merged4From resolves the spring's starting value from the node's own
// resolved property, when it has one.
func merged4From(obj *Object, propName string, d descriptor, c *Compiler) (any, bool) {
	raw, ok := obj.resolved[propName]
	if !ok {
		return nil, false
	}
	from, _, err := c.translateValue(d, raw, false)
	if err != nil {
		return nil, false
	}
	return from, true
}

// alignmentShortcut resolves named destination values like "center" or
// "bottomleft" for spring targets, shaping the keyword's (x, y) pair to the
// driven property: alignment-typed properties take it as-is, two-axis
// dimension properties take it as per-axis scales.
func alignmentShortcut(d descriptor, v any) (any, bool) {
	if d.translate == nil {
		return nil, false
	}
	s, ok := v.(string)
	if !ok {
		return nil, false
	}
	a, ok := host.AlignmentByName(strings.ToLower(s))
	if !ok {
		return nil, false
	}
	if out, err := d.translate(a); err == nil {
		return out, true
	}
	d2 := host.Dim2{X: host.Dim{Scale: a.X}, Y: host.Dim{Scale: a.Y}}
	if out, err := d.translate(d2); err == nil {
		return out, true
	}
	return nil, false
}

// lookupProp maps a directive's property name onto its descriptor, falling
// back to the raw name for unlisted keys.
func (c *Compiler) lookupProp(name string) (descriptor, string) {
	if d, ok := c.descriptors[name]; ok && d.hostKey != "" {
		return d, d.hostKey
	}
	return descriptor{}, name
}

// springParams reads damping/frequency out of a directive table, falling
// back to the engine defaults.
func (c *Compiler) springParams(table map[string]any) animate.SpringSpec {
	spec := animate.SpringSpec{}
	if n, ok := props.Number(table["damping"]); ok {
		spec.Damping = n
	}
	if n, ok := props.Number(table["frequency"]); ok {
		spec.Frequency = n
	}
	return spec
}

// applyHover wires hovercolor/leavecolor and the structured hover table.
// hovercolor/leavecolor snap the background color on enter/leave; the hover
// table picks its own property, values, and spring behavior. Spring
// parameters resolve directive-first, then the node's ambient ones.
func (c *Compiler) applyHover(obj *Object, directives map[string]any, diags *cerr.Diagnostics) {
	enter, hasEnter := directives["hovercolor"]
	leave, hasLeave := directives["leavecolor"]
	if hasEnter || hasLeave {
		observe.Directive("hovercolor")
		spec := animate.HoverSpec{Key: "BackgroundColor", Spring: obj.ambient}
		if hasEnter {
			if col, _, err := c.translateValue(c.descriptors["groundcolor"], enter, true); err == nil {
				spec.Enter = col
			}
		}
		if hasLeave {
			if col, _, err := c.translateValue(c.descriptors["groundcolor"], leave, true); err == nil {
				spec.Leave = col
			}
		}
		c.engine.Hover(obj, spec)
	}

	v, ok := directives["hover"]
	if !ok {
		return
	}
	table, ok := props.Table(v)
	if !ok {
		diags.Add(&cerr.ConfigError{Op: "compile.directive", Node: obj.node, Key: "hover", Err: cerr.ErrInvalidShape})
		observe.NodeError()
		return
	}
	observe.Directive("hover")

	propName, _ := table["property"].(string)
	if propName == "" {
		propName = "groundcolor"
	}
	d, hostKey := c.lookupProp(propName)

	spec := animate.HoverSpec{Key: hostKey, Spring: obj.ambient}
	if animated, ok := table["animated"].(bool); ok {
		spec.Animated = animated
	}
	if own := c.springParams(table); own != (animate.SpringSpec{}) {
		spec.Spring = own
	}
	if raw, ok := table["enter"]; ok {
		if out, _, err := c.translateValue(d, raw, false); err == nil {
			spec.Enter = out
		}
	}
	if raw, ok := table["leave"]; ok {
		if out, _, err := c.translateValue(d, raw, false); err == nil {
			spec.Leave = out
		}
	}
	c.engine.Hover(obj, spec)
}

// applyCallbacks wires the clicked/hovered/left function directives. Call
// signature is func(widgetHandle), preserved exactly.
func (c *Compiler) applyCallbacks(obj *Object, directives map[string]any, diags *cerr.Diagnostics) {
	callback := func(key string, v any) (func(host.Handle), bool) {
		fn, ok := v.(func(host.Handle))
		if !ok {
			diags.Add(&cerr.ConfigError{Op: "compile.directive", Node: obj.node, Key: key,
				Err: fmt.Errorf("expected func(host.Handle), got %T", v)})
			observe.NodeError()
			return nil, false
		}
		observe.Directive(key)
		return fn, true
	}

	if v, ok := directives["clicked"]; ok {
		if fn, ok := callback("clicked", v); ok {
			c.engine.OnClick(obj, fn)
		}
	}

	var enter, leave func(host.Handle)
	if v, ok := directives["hovered"]; ok {
		enter, _ = callback("hovered", v)
	}
	if v, ok := directives["left"]; ok {
		leave, _ = callback("left", v)
	}
	if enter != nil || leave != nil {
		c.engine.OnPointer(obj, enter, leave)
	}
}

// applyStates defines the node's named states and applies the initial one.
// A state's value is either an apply function or a property table re-applied
// through the direct translation path.
func (c *Compiler) applyStates(obj *Object, directives map[string]any, diags *cerr.Diagnostics) {
	if v, ok := directives["states"]; ok {
		table, ok := props.Table(v)
		if !ok {
			diags.Add(&cerr.ConfigError{Op: "compile.directive", Node: obj.node, Key: "states", Err: cerr.ErrInvalidShape})
			observe.NodeError()
		} else {
			observe.Directive("states")
			for name, def := range table {
				obj.states.Define(name, c.stateApplier(obj, name, def, diags))
			}
		}
	}

	if v, ok := directives["state"]; ok {
		name, ok := v.(string)
		if !ok {
			diags.Add(&cerr.ConfigError{Op: "compile.directive", Node: obj.node, Key: "state", Err: cerr.ErrInvalidShape})
			observe.NodeError()
			return
		}
		if err := obj.states.Set(name); err != nil {
			diags.Add(err)
		}
	}
}

func (c *Compiler) stateApplier(obj *Object, name string, def any, diags *cerr.Diagnostics) func() error {
	if fn, ok := def.(func(host.Handle)); ok {
		return func() error {
			fn(obj.widget)
			return nil
		}
	}
	if table, ok := props.Table(def); ok {
		cfg := registry.Config(table).DeepCopy()
		return func() error {
			for _, key := range sortedConfigKeys(cfg) {
				d, known := c.descriptors[strings.ToLower(key)]
				if known && d.kind == kindDirective {
					continue
				}
				c.applyProperty(obj, key, d, cfg[key], diags)
			}
			return nil
		}
	}
	return func() error {
		return &cerr.ConfigError{Op: "compile.state", Node: obj.node, Key: name, Err: cerr.ErrInvalidShape}
	}
}

// applyEntrances handles fadeIn/fadeOut/slideIn. fadeIn springs transparency
// from fully transparent down to the node's resolved value; fadeOut springs
// it to fully transparent; slideIn brings the node in from below its resolved
// position.
func (c *Compiler) applyEntrances(obj *Object, merged registry.Config, directives map[string]any, diags *cerr.Diagnostics) {
	resolvedTransparency := 0.0
	if raw, ok := merged["transparency"]; ok {
		if n, ok := props.Number(raw); ok {
			resolvedTransparency = n
		}
	}

	drive := func(key string, spec animate.TargetSpec) {
		observe.Directive(key)
		if err := c.engine.Drive(obj, spec); err != nil {
			diags.Add(&cerr.ConfigError{Op: "compile.directive", Node: obj.node, Key: key, Err: err})
			observe.NodeError()
		}
	}

	if enabled(directives["fadein"]) {
		drive("fadeIn", animate.TargetSpec{
			Key:    "Transparency",
			From:   1.0,
			To:     resolvedTransparency,
			Spring: obj.ambient,
		})
	}
	if enabled(directives["fadeout"]) {
		drive("fadeOut", animate.TargetSpec{
			Key:    "Transparency",
			From:   resolvedTransparency,
			To:     1.0,
			Spring: obj.ambient,
		})
	}

	if enabled(directives["slidein"]) {
		to := host.Dim2{}
		if raw, ok := merged["position"]; ok {
			if d2, err := props.ToDim2(raw); err == nil {
				to = d2
			}
		}
		from := to
		from.Y.Scale += 1 // start one screen below
		drive("slideIn", animate.TargetSpec{
			Key:    "Position",
			From:   from,
			To:     to,
			Spring: obj.ambient,
		})
	}
}

func enabled(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

// applySpawn compiles each child config under its table key and attaches the
// widget as a child of the current node. A failing child is reported in the
// diagnostics but never blocks its siblings.
func (c *Compiler) applySpawn(ctx context.Context, obj *Object, v any, diags *cerr.Diagnostics) {
	table, ok := props.Table(v)
	if !ok {
		diags.Add(&cerr.ConfigError{Op: "compile.directive", Node: obj.node, Key: "spawn", Err: cerr.ErrInvalidShape})
		observe.NodeError()
		return
	}
	observe.Directive("spawn")

	for _, name := range sortedKeys(table) {
		if _, exists := obj.Child(name); exists {
			// Re-application keeps existing children.
			continue
		}
		childCfg, ok := props.Table(table[name])
		if !ok {
			diags.Add(&cerr.ConfigError{Op: "compile.spawn", Node: name, Err: cerr.ErrInvalidShape})
			observe.NodeError()
			continue
		}
		// Child errors land in diags inside compileNode; siblings continue.
		c.compileNode(ctx, obj, name, registry.Config(childCfg), diags)
	}
}

func sortedKeys(m map[string]any) []string {
	return sortedConfigKeys(registry.Config(m))
}
