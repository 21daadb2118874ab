package host

import (
	"fmt"
	"sync"
)

// Widget is a node in the MemoryHost tree. Tests and the CLI read it
// directly; real hosts have their own widget representation behind Handle.
type Widget struct {
	id       uint64
	kind     string
	name     string
	parent   *Widget
	children []*Widget
	props    map[string]any

	enter map[uint64]func()
	leave map[uint64]func()
	click map[uint64]func()
}

// Kind returns the widget kind passed to CreateWidget.
func (w *Widget) Kind() string { return w.kind }

// Name returns the widget's assigned name, or "".
func (w *Widget) Name() string { return w.name }

// Prop returns the last value assigned for key.
func (w *Widget) Prop(key string) (any, bool) {
	v, ok := w.props[key]
	return v, ok
}

// Children returns the widget's children in attachment order.
func (w *Widget) Children() []*Widget {
	out := make([]*Widget, len(w.children))
	copy(out, w.children)
	return out
}

// ChildNamed returns the first child with the given name.
func (w *Widget) ChildNamed(name string) (*Widget, bool) {
	for _, c := range w.children {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// MemoryHost is an in-process Host implementation. It records every widget
// and property assignment and lets callers fire pointer, click, and frame
// events manually. The CLI compiles against it to lint configurations
// without a GUI; tests use it as the host fake.
type MemoryHost struct {
	mu      sync.Mutex
	nextID  uint64
	widgets map[uint64]*Widget
	ticks   map[uint64]func(dt float64)
}

// NewMemoryHost creates an empty in-memory host.
func NewMemoryHost() *MemoryHost {
	return &MemoryHost{
		widgets: make(map[uint64]*Widget),
		ticks:   make(map[uint64]func(float64)),
	}
}

// CreateWidget implements Host.
func (m *MemoryHost) CreateWidget(kind string) (Handle, error) {
	if kind == "" {
		return nil, fmt.Errorf("memory host: empty widget kind")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	w := &Widget{
		id:    m.nextID,
		kind:  kind,
		props: make(map[string]any),
		enter: make(map[uint64]func()),
		leave: make(map[uint64]func()),
		click: make(map[uint64]func()),
	}
	m.widgets[w.id] = w
	return w, nil
}

// SetProperty implements Host. "Parent" reparents the widget; "Name" names it.
func (m *MemoryHost) SetProperty(h Handle, key string, value any) error {
	w, err := m.widget(h)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch key {
	case "Parent":
		parent, ok := value.(*Widget)
		if !ok {
			return fmt.Errorf("memory host: Parent value must be a widget handle, got %T", value)
		}
		if w.parent != nil {
			w.parent.detachChild(w)
		}
		w.parent = parent
		parent.children = append(parent.children, w)
	case "Name":
		name, ok := value.(string)
		if !ok {
			return fmt.Errorf("memory host: Name value must be a string, got %T", value)
		}
		w.name = name
	}

	w.props[key] = value
	return nil
}

// DestroyWidget implements Host. Descendants are destroyed with the widget.
func (m *MemoryHost) DestroyWidget(h Handle) {
	w, err := m.widget(h)
	if err != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if w.parent != nil {
		w.parent.detachChild(w)
		w.parent = nil
	}
	m.destroyLocked(w)
}

func (m *MemoryHost) destroyLocked(w *Widget) {
	for _, c := range w.children {
		m.destroyLocked(c)
	}
	w.children = nil
	delete(m.widgets, w.id)
}

// OnPointerEnter implements Host.
func (m *MemoryHost) OnPointerEnter(h Handle, fn func()) func() {
	return m.listen(h, fn, func(w *Widget) map[uint64]func() { return w.enter })
}

// OnPointerLeave implements Host.
func (m *MemoryHost) OnPointerLeave(h Handle, fn func()) func() {
	return m.listen(h, fn, func(w *Widget) map[uint64]func() { return w.leave })
}

// OnClick implements Host.
func (m *MemoryHost) OnClick(h Handle, fn func()) func() {
	return m.listen(h, fn, func(w *Widget) map[uint64]func() { return w.click })
}

func (m *MemoryHost) listen(h Handle, fn func(), table func(*Widget) map[uint64]func()) func() {
	w, err := m.widget(h)
	if err != nil {
		return func() {}
	}

	m.mu.Lock()
	m.nextID++
	id := m.nextID
	table(w)[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(table(w), id)
		m.mu.Unlock()
	}
}

// OnFrameTick implements Host.
func (m *MemoryHost) OnFrameTick(fn func(dt float64)) func() {
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.ticks[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.ticks, id)
		m.mu.Unlock()
	}
}

// Properties implements the Introspector capability.
func (m *MemoryHost) Properties(h Handle) (map[string]any, bool) {
	w, err := m.widget(h)
	if err != nil {
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]any, len(w.props))
	for k, v := range w.props {
		if k == "Parent" {
			continue // handles don't snapshot
		}
		out[k] = v
	}
	return out, true
}

// PointerEnter fires the pointer-enter listeners on h.
func (m *MemoryHost) PointerEnter(h Handle) { m.fire(h, func(w *Widget) map[uint64]func() { return w.enter }) }

// PointerLeave fires the pointer-leave listeners on h.
func (m *MemoryHost) PointerLeave(h Handle) { m.fire(h, func(w *Widget) map[uint64]func() { return w.leave }) }

// Click fires the click listeners on h.
func (m *MemoryHost) Click(h Handle) { m.fire(h, func(w *Widget) map[uint64]func() { return w.click }) }

func (m *MemoryHost) fire(h Handle, table func(*Widget) map[uint64]func()) {
	w, err := m.widget(h)
	if err != nil {
		return
	}

	m.mu.Lock()
	fns := make([]func(), 0, len(table(w)))
	for _, fn := range table(w) {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Tick advances the frame clock, invoking every frame listener with dt.
func (m *MemoryHost) Tick(dt float64) {
	m.mu.Lock()
	fns := make([]func(float64), 0, len(m.ticks))
	for _, fn := range m.ticks {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(dt)
	}
}

// Alive reports whether h still exists in the tree.
func (m *MemoryHost) Alive(h Handle) bool {
	_, err := m.widget(h)
	if err != nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	w := h.(*Widget)
	_, ok := m.widgets[w.id]
	return ok
}

func (m *MemoryHost) widget(h Handle) (*Widget, error) {
	w, ok := h.(*Widget)
	if !ok || w == nil {
		return nil, fmt.Errorf("memory host: foreign handle %T", h)
	}
	return w, nil
}

func (w *Widget) detachChild(child *Widget) {
	for i, c := range w.children {
		if c == child {
			w.children = append(w.children[:i], w.children[i+1:]...)
			return
		}
	}
}

var (
	_ Host         = (*MemoryHost)(nil)
	_ Introspector = (*MemoryHost)(nil)
)
