// Package animate is the binding and animation engine: it executes the
// directive half of a compiled configuration. Springs drive properties
// toward targets on host frame ticks, hover directives react to pointer
// events, and named states re-style a widget on demand.
//
// The engine never resolves configuration values itself; the compiler
// hands it fully translated specs. Every subscription or event connection
// the engine opens is registered on the target's disposer list.
package animate

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/cascade-ui/cascade/pkg/host"
)

// Spring defaults, used when a directive omits damping or frequency.
const (
	DefaultDamping   = 1.0
	DefaultFrequency = 4.0
)

// SpringSpec parameterizes one spring-driven transition.
type SpringSpec struct {
	Damping   float64
	Frequency float64
}

// orDefaults fills zero fields with the engine defaults.
func (s SpringSpec) orDefaults() SpringSpec {
	if s.Damping == 0 {
		s.Damping = DefaultDamping
	}
	if s.Frequency == 0 {
		s.Frequency = DefaultFrequency
	}
	return s
}

// Target is the engine's view of a compiled object: a widget to mutate and
// a disposer list to register teardown on.
type Target interface {
	// Widget returns the host widget handle.
	Widget() host.Handle

	// Node identifies the configuration node, for diagnostics.
	Node() string

	// AddDisposer registers teardown to run when the object is disposed.
	AddDisposer(fn func())
}

// Engine applies directives to compiled objects.
type Engine struct {
	host   host.Host
	spring host.SpringFunc
	log    *slog.Logger
}

// New creates an engine over the given host. A nil spring falls back to
// host.DefaultSpring.
func New(h host.Host, spring host.SpringFunc) *Engine {
	if spring == nil {
		spring = host.DefaultSpring
	}
	return &Engine{
		host:   h,
		spring: spring,
		log:    slog.Default().With("component", "animate"),
	}
}

// Snap assigns a property immediately, without animation.
func (e *Engine) Snap(t Target, key string, value any) error {
	return e.host.SetProperty(t.Widget(), key, value)
}

// TargetSpec describes one spring-driven property transition.
type TargetSpec struct {
	// Key is the host property to drive.
	Key string

	// From is the starting value. When nil the transition starts at To,
	// which degenerates to a snap.
	From any

	// To is the destination value: float64, host.Dim, host.Dim2,
	// host.Color, or host.Alignment.
	To any

	Spring SpringSpec
}

// convergence threshold per spring component, in the component's own units.
const springEps = 1e-3

// Drive springs a property from From toward To, advancing one solver step
// per host frame tick. The tick subscription cancels itself once every
// component has converged, and is registered on the target's disposers so
// disposal stops in-flight animations.
func (e *Engine) Drive(t Target, spec TargetSpec) error {
	toVec, rebuild, err := vectorize(spec.To)
	if err != nil {
		return fmt.Errorf("animate: node %q key %q: %w", t.Node(), spec.Key, err)
	}

	current := make([]float64, len(toVec))
	if spec.From != nil {
		fromVec, _, err := vectorize(spec.From)
		if err == nil && len(fromVec) == len(toVec) {
			copy(current, fromVec)
		} else {
			copy(current, toVec)
		}
	} else {
		copy(current, toVec)
	}

	params := spec.Spring.orDefaults()
	widget := t.Widget()

	var cancel func()
	cancel = e.host.OnFrameTick(func(dt float64) {
		done := true
		for i := range current {
			current[i] = e.spring(current[i], toVec[i], params.Damping, params.Frequency, dt)
			if math.Abs(current[i]-toVec[i]) > springEps {
				done = false
			}
		}
		if done {
			copy(current, toVec)
		}
		e.host.SetProperty(widget, spec.Key, rebuild(current))
		if done {
			cancel()
		}
	})
	t.AddDisposer(cancel)

	// Apply the starting value immediately so the property is never
	// unset between compilation and the first frame.
	return e.host.SetProperty(widget, spec.Key, rebuild(current))
}

// HoverSpec describes a pointer enter/leave property pair.
type HoverSpec struct {
	// Key is the host property to change.
	Key string

	// Enter is the value on pointer enter; Leave on pointer leave.
	// A nil Leave leaves the property untouched on exit.
	Enter any
	Leave any

	// Animated selects spring transitions instead of snapping.
	Animated bool

	Spring SpringSpec
}

// Hover wires pointer enter/leave events to property changes.
func (e *Engine) Hover(t Target, spec HoverSpec) {
	apply := func(value any) {
		if value == nil {
			return
		}
		if spec.Animated {
			if err := e.Drive(t, TargetSpec{Key: spec.Key, To: value, Spring: spec.Spring}); err != nil {
				e.log.Warn("hover transition failed", "node", t.Node(), "key", spec.Key, "error", err)
			}
			return
		}
		if err := e.Snap(t, spec.Key, value); err != nil {
			e.log.Warn("hover snap failed", "node", t.Node(), "key", spec.Key, "error", err)
		}
	}

	cancelEnter := e.host.OnPointerEnter(t.Widget(), func() { apply(spec.Enter) })
	cancelLeave := e.host.OnPointerLeave(t.Widget(), func() { apply(spec.Leave) })
	t.AddDisposer(cancelEnter)
	t.AddDisposer(cancelLeave)
}

// OnClick wires a click callback. The callback receives the widget handle.
func (e *Engine) OnClick(t Target, fn func(host.Handle)) {
	widget := t.Widget()
	cancel := e.host.OnClick(widget, func() { fn(widget) })
	t.AddDisposer(cancel)
}

// OnPointer wires enter/leave callbacks. Either may be nil.
func (e *Engine) OnPointer(t Target, enter, leave func(host.Handle)) {
	widget := t.Widget()
	if enter != nil {
		cancel := e.host.OnPointerEnter(widget, func() { enter(widget) })
		t.AddDisposer(cancel)
	}
	if leave != nil {
		cancel := e.host.OnPointerLeave(widget, func() { leave(widget) })
		t.AddDisposer(cancel)
	}
}

// vectorize flattens an animatable value into float components plus a
// function rebuilding the value from (possibly interpolated) components.
func vectorize(v any) ([]float64, func([]float64) any, error) {
	switch val := v.(type) {
	case float64:
		return []float64{val}, func(c []float64) any { return c[0] }, nil
	case int:
		return []float64{float64(val)}, func(c []float64) any { return c[0] }, nil
	case host.Dim:
		return []float64{val.Scale, val.Offset}, func(c []float64) any {
			return host.Dim{Scale: c[0], Offset: c[1]}
		}, nil
	case host.Dim2:
		return []float64{val.X.Scale, val.X.Offset, val.Y.Scale, val.Y.Offset}, func(c []float64) any {
			return host.Dim2{
				X: host.Dim{Scale: c[0], Offset: c[1]},
				Y: host.Dim{Scale: c[2], Offset: c[3]},
			}
		}, nil
	case host.Color:
		return []float64{float64(val.R), float64(val.G), float64(val.B), float64(val.A)}, func(c []float64) any {
			return host.Color{R: clampByte(c[0]), G: clampByte(c[1]), B: clampByte(c[2]), A: clampByte(c[3])}
		}, nil
	case host.Alignment:
		return []float64{val.X, val.Y}, func(c []float64) any {
			return host.Alignment{X: c[0], Y: c[1]}
		}, nil
	}
	return nil, nil, fmt.Errorf("value %T is not animatable", v)
}

func clampByte(f float64) uint8 {
	if f < 0 {
		return 0
	}
	if f > 255 {
		return 255
	}
	return uint8(f + 0.5)
}
