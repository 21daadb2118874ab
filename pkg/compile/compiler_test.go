package compile

import (
	"errors"
	"testing"

	cerr "github.com/cascade-ui/cascade/pkg/errors"
	"github.com/cascade-ui/cascade/pkg/host"
	"github.com/cascade-ui/cascade/pkg/props"
	"github.com/cascade-ui/cascade/pkg/reactive"
	"github.com/cascade-ui/cascade/pkg/registry"
)

func newCompiler(t *testing.T) (*Compiler, *registry.Registry, *host.MemoryHost) {
	t.Helper()
	reg := registry.New()
	mem := host.NewMemoryHost()
	reg.SetIntrospector(mem)
	return New(reg, mem), reg, mem
}

func widgetOf(t *testing.T, obj *Object) *host.Widget {
	t.Helper()
	w, ok := obj.Widget().(*host.Widget)
	if !ok {
		t.Fatalf("expected memory host widget, got %T", obj.Widget())
	}
	return w
}

func prop(t *testing.T, obj *Object, key string) any {
	t.Helper()
	v, ok := widgetOf(t, obj).Prop(key)
	if !ok {
		t.Fatalf("property %q never set", key)
	}
	return v
}

func TestCompileMissingClass(t *testing.T) {
	c, _, _ := newCompiler(t)
	obj, diags, err := c.Compile(registry.Config{"text": "hi"})
	if obj != nil {
		t.Fatal("expected nil object")
	}
	if !errors.Is(err, cerr.ErrMissingClass) {
		t.Errorf("expected ErrMissingClass, got %v", err)
	}
	if diags.Len() != 1 {
		t.Errorf("expected one diagnostic, got %d", diags.Len())
	}
}

func TestCompileDirectProperties(t *testing.T) {
	c, _, _ := newCompiler(t)
	obj, diags, err := c.Compile(registry.Config{
		"class":       "Frame",
		"groundcolor": "#3498db",
		"size":        []any{0.5, 1.0},
		"rounded":     8,
		"text":        "hello",
	})
	if err != nil || !diags.Empty() {
		t.Fatalf("compile failed: %v / %v", err, diags.Errors())
	}

	if got := prop(t, obj, "BackgroundColor"); got != (host.Color{R: 0x34, G: 0x98, B: 0xdb, A: 0xff}) {
		t.Errorf("BackgroundColor = %v", got)
	}
	want := host.Dim2{X: host.Dim{Scale: 0.5}, Y: host.Dim{Scale: 1.0}}
	if got := prop(t, obj, "Size"); got != want {
		t.Errorf("Size = %v, want %v", got, want)
	}
	if got := prop(t, obj, "CornerRadius"); got != (host.Dim{Offset: 8}) {
		t.Errorf("CornerRadius = %v", got)
	}
	if got := prop(t, obj, "Text"); got != "hello" {
		t.Errorf("Text = %v", got)
	}
}

func TestCompileStyleResolution(t *testing.T) {
	c, reg, _ := newCompiler(t)
	reg.AddStyle("btn", registry.Config{"groundcolor": "#3498db", "rounded": 4})

	obj, diags, err := c.Compile(registry.Config{"class": "TextButton", "style": "btn"})
	if err != nil || !diags.Empty() {
		t.Fatalf("compile failed: %v / %v", err, diags.Errors())
	}
	if got := prop(t, obj, "BackgroundColor"); got != (host.Color{R: 0x34, G: 0x98, B: 0xdb, A: 0xff}) {
		t.Errorf("BackgroundColor = %v", got)
	}
}

func TestCompileUnknownStyle(t *testing.T) {
	c, _, _ := newCompiler(t)
	_, diags, err := c.Compile(registry.Config{"class": "Frame", "style": "nope"})
	if !errors.Is(err, cerr.ErrUnknownStyle) {
		t.Errorf("expected ErrUnknownStyle, got %v", err)
	}
	if diags.Empty() {
		t.Error("expected a diagnostic")
	}
}

func TestStyleOverrideTuple(t *testing.T) {
	c, reg, _ := newCompiler(t)
	reg.AddStyle("base", registry.Config{"text": "base", "rounded": 4})

	obj, diags, err := c.Compile(registry.Config{
		"class": "Frame",
		"style": []any{"base", map[string]any{"text": "overridden"}},
	})
	if err != nil || !diags.Empty() {
		t.Fatalf("compile failed: %v / %v", err, diags.Errors())
	}
	// Override keys win; absent keys pass through from the base.
	if got := prop(t, obj, "Text"); got != "overridden" {
		t.Errorf("Text = %v", got)
	}
	if got := prop(t, obj, "CornerRadius"); got != (host.Dim{Offset: 4}) {
		t.Errorf("CornerRadius = %v", got)
	}
}

func TestMultistyleLastWriteWins(t *testing.T) {
	c, reg, _ := newCompiler(t)
	reg.AddStyle("a", registry.Config{"text": "a", "rounded": 1})
	reg.AddStyle("b", registry.Config{"text": "b"})

	obj, diags, err := c.Compile(registry.Config{
		"class":      "Frame",
		"multistyle": []any{"a", "b"},
	})
	if err != nil || !diags.Empty() {
		t.Fatalf("compile failed: %v / %v", err, diags.Errors())
	}
	if got := prop(t, obj, "Text"); got != "b" {
		t.Errorf("later style must win, Text = %v", got)
	}
	if got := prop(t, obj, "CornerRadius"); got != (host.Dim{Offset: 1}) {
		t.Errorf("unshadowed key must survive, CornerRadius = %v", got)
	}
}

func TestInlineWinsOverStyles(t *testing.T) {
	c, reg, _ := newCompiler(t)
	reg.AddStyle("a", registry.Config{"text": "styled"})

	obj, _, err := c.Compile(registry.Config{
		"class":      "Frame",
		"multistyle": []any{"a"},
		"text":       "inline",
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := prop(t, obj, "Text"); got != "inline" {
		t.Errorf("inline must win, Text = %v", got)
	}
}

func TestNestedTablesReplacedWholesale(t *testing.T) {
	c, reg, _ := newCompiler(t)
	reg.AddStyle("base", registry.Config{
		"grid": map[string]any{"columns": 3, "gap": 4},
	})

	obj, _, err := c.Compile(registry.Config{
		"class": "Frame",
		"style": "base",
		"grid":  map[string]any{"columns": 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	layout := prop(t, obj, "Layout").(props.Layout)
	if layout.Options["columns"] != 2 {
		t.Errorf("columns = %v", layout.Options["columns"])
	}
	// Shallow merge: the inline table replaces the styled one wholesale,
	// so the base's gap does not survive.
	if _, ok := layout.Options["gap"]; ok {
		t.Error("nested table must be replaced wholesale, gap leaked through")
	}
}

func TestEnvBindingLiveUpdate(t *testing.T) {
	c, reg, _ := newCompiler(t)
	bg, err := reg.AddEnv("bg", host.Color{R: 255, A: 255})
	if err != nil {
		t.Fatal(err)
	}

	obj, diags, err := c.Compile(registry.Config{"class": "Frame", "groundcolor": "bg"})
	if err != nil || !diags.Empty() {
		t.Fatalf("compile failed: %v / %v", err, diags.Errors())
	}
	if got := prop(t, obj, "BackgroundColor"); got != (host.Color{R: 255, A: 255}) {
		t.Errorf("initial bound color = %v", got)
	}

	// Updating the env value reaches the widget without recompiling.
	bg.Set(host.Color{B: 255, A: 255})
	if got := prop(t, obj, "BackgroundColor"); got != (host.Color{B: 255, A: 255}) {
		t.Errorf("updated bound color = %v", got)
	}
}

func TestColorNameBeatsEnvKey(t *testing.T) {
	c, reg, _ := newCompiler(t)
	red, _ := reg.AddEnv("red", host.Color{G: 255, A: 255})

	obj, _, err := c.Compile(registry.Config{"class": "Frame", "groundcolor": "red"})
	if err != nil {
		t.Fatal(err)
	}
	// "red" is a color name first; the same-named env value never binds.
	if got := prop(t, obj, "BackgroundColor"); got != (host.Color{R: 255, A: 255}) {
		t.Errorf("expected named color, got %v", got)
	}
	red.Set(host.Color{B: 255, A: 255})
	if got := prop(t, obj, "BackgroundColor"); got != (host.Color{R: 255, A: 255}) {
		t.Errorf("env update must not affect color-named property, got %v", got)
	}
}

func TestUnmatchedStringPassesThrough(t *testing.T) {
	c, _, _ := newCompiler(t)
	obj, diags, err := c.Compile(registry.Config{"class": "Frame", "groundcolor": "mystery"})
	if err != nil || !diags.Empty() {
		t.Fatalf("compile failed: %v / %v", err, diags.Errors())
	}
	if got := prop(t, obj, "BackgroundColor"); got != "mystery" {
		t.Errorf("expected raw pass-through, got %v", got)
	}
}

func TestReactiveValueBinding(t *testing.T) {
	c, _, _ := newCompiler(t)
	label := reactive.New[any]("first")

	obj, diags, err := c.Compile(registry.Config{"class": "TextLabel", "text": label})
	if err != nil || !diags.Empty() {
		t.Fatalf("compile failed: %v / %v", err, diags.Errors())
	}
	if got := prop(t, obj, "Text"); got != "first" {
		t.Errorf("initial bound text = %v", got)
	}
	label.Set("second")
	if got := prop(t, obj, "Text"); got != "second" {
		t.Errorf("updated bound text = %v", got)
	}
}

func TestDisposeClosesBindings(t *testing.T) {
	c, reg, mem := newCompiler(t)
	bg, _ := reg.AddEnv("bg", host.Color{R: 255, A: 255})

	obj, _, err := c.Compile(registry.Config{"class": "Frame", "groundcolor": "bg"})
	if err != nil {
		t.Fatal(err)
	}
	w := widgetOf(t, obj)
	obj.Dispose()

	if mem.Alive(w) {
		t.Error("widget must be destroyed with its object")
	}
	// The binding is closed; further env updates must not panic or write.
	bg.Set(host.Color{B: 255, A: 255})
}

func TestSpawnChildren(t *testing.T) {
	c, _, _ := newCompiler(t)
	obj, diags, err := c.Compile(registry.Config{
		"class": "Frame",
		"spawn": map[string]any{
			"Header": map[string]any{"class": "TextLabel"},
		},
	})
	if err != nil || !diags.Empty() {
		t.Fatalf("compile failed: %v / %v", err, diags.Errors())
	}

	children := widgetOf(t, obj).Children()
	if len(children) != 1 {
		t.Fatalf("expected one child widget, got %d", len(children))
	}
	if children[0].Name() != "Header" || children[0].Kind() != "TextLabel" {
		t.Errorf("child = %s/%s", children[0].Name(), children[0].Kind())
	}
	if _, ok := obj.Child("Header"); !ok {
		t.Error("child object not tracked on parent")
	}
}

func TestSpawnSiblingsBestEffort(t *testing.T) {
	c, _, _ := newCompiler(t)
	obj, diags, err := c.Compile(registry.Config{
		"class": "Frame",
		"spawn": map[string]any{
			"Broken": map[string]any{"text": "no class"},
			"Good":   map[string]any{"class": "TextLabel"},
		},
	})
	if err != nil {
		t.Fatalf("root must compile: %v", err)
	}
	if diags.Empty() {
		t.Error("expected child diagnostic")
	}
	found := false
	for _, e := range diags.Errors() {
		if errors.Is(e, cerr.ErrMissingClass) {
			found = true
		}
	}
	if !found {
		t.Error("expected ErrMissingClass in diagnostics")
	}
	if _, ok := obj.Child("Good"); !ok {
		t.Error("sibling must compile despite broken child")
	}
	if _, ok := obj.Child("Broken"); ok {
		t.Error("broken child must not be tracked")
	}
}

func TestDisposeParentDestroysChildren(t *testing.T) {
	c, _, mem := newCompiler(t)
	obj, _, err := c.Compile(registry.Config{
		"class": "Frame",
		"spawn": map[string]any{"Header": map[string]any{"class": "TextLabel"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	child, _ := obj.Child("Header")
	childWidget := widgetOf(t, child)

	obj.Dispose()
	if mem.Alive(childWidget) {
		t.Error("child widget must die with its parent")
	}
	if child.Alive() {
		t.Error("child object must be disposed with its parent")
	}
}

func TestStatesAndStateSwitch(t *testing.T) {
	c, _, _ := newCompiler(t)
	obj, diags, err := c.Compile(registry.Config{
		"class": "Frame",
		"states": map[string]any{
			"idle":   map[string]any{"groundcolor": "#ffffff"},
			"active": map[string]any{"groundcolor": "#000000"},
		},
		"state": "idle",
	})
	if err != nil || !diags.Empty() {
		t.Fatalf("compile failed: %v / %v", err, diags.Errors())
	}
	if got := prop(t, obj, "BackgroundColor"); got != (host.Color{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("initial state color = %v", got)
	}

	c.State(obj.Widget(), "active")
	if got := prop(t, obj, "BackgroundColor"); got != (host.Color{A: 255}) {
		t.Errorf("switched state color = %v", got)
	}

	// Unknown names are logged and ignored.
	c.State(obj.Widget(), "missing")
	if obj.States().Current() != "active" {
		t.Errorf("unknown state changed current to %q", obj.States().Current())
	}
}

func TestStateFunctionApplier(t *testing.T) {
	c, _, _ := newCompiler(t)
	var gotHandle host.Handle
	obj, _, err := c.Compile(registry.Config{
		"class": "Frame",
		"states": map[string]any{
			"custom": func(h host.Handle) { gotHandle = h },
		},
		"state": "custom",
	})
	if err != nil {
		t.Fatal(err)
	}
	if gotHandle != obj.Widget() {
		t.Error("state function must receive the widget handle")
	}
}

func TestClickedCallback(t *testing.T) {
	c, _, mem := newCompiler(t)
	var clicked host.Handle
	obj, _, err := c.Compile(registry.Config{
		"class":   "TextButton",
		"clicked": func(h host.Handle) { clicked = h },
	})
	if err != nil {
		t.Fatal(err)
	}
	mem.Click(obj.Widget())
	if clicked != obj.Widget() {
		t.Error("clicked callback must fire with the widget handle")
	}
}

func TestHoverColorSnap(t *testing.T) {
	c, _, mem := newCompiler(t)
	obj, _, err := c.Compile(registry.Config{
		"class":       "Frame",
		"groundcolor": "#ffffff",
		"hovercolor":  "#ff0000",
		"leavecolor":  "#ffffff",
	})
	if err != nil {
		t.Fatal(err)
	}

	mem.PointerEnter(obj.Widget())
	if got := prop(t, obj, "BackgroundColor"); got != (host.Color{R: 255, A: 255}) {
		t.Errorf("hover color = %v", got)
	}
	mem.PointerLeave(obj.Widget())
	if got := prop(t, obj, "BackgroundColor"); got != (host.Color{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("leave color = %v", got)
	}
}

func TestTargetDirectiveConverges(t *testing.T) {
	c, _, mem := newCompiler(t)
	obj, diags, err := c.Compile(registry.Config{
		"class":        "Frame",
		"transparency": 1.0,
		"target": map[string]any{
			"property": "transparency",
			"value":    0.0,
		},
	})
	if err != nil || !diags.Empty() {
		t.Fatalf("compile failed: %v / %v", err, diags.Errors())
	}

	for i := 0; i < 600; i++ {
		mem.Tick(1.0 / 60.0)
	}
	if got := prop(t, obj, "Transparency"); got != 0.0 {
		t.Errorf("Transparency = %v, want 0", got)
	}
}

func TestTargetAlignmentShortcutForPosition(t *testing.T) {
	c, _, mem := newCompiler(t)
	obj, diags, err := c.Compile(registry.Config{
		"class":    "Frame",
		"position": []any{0.0, 0.0},
		"target": map[string]any{
			"property": "position",
			"value":    "center",
		},
	})
	if err != nil || !diags.Empty() {
		t.Fatalf("compile failed: %v / %v", err, diags.Errors())
	}

	for i := 0; i < 600; i++ {
		mem.Tick(1.0 / 60.0)
	}
	want := host.Dim2{X: host.Dim{Scale: 0.5}, Y: host.Dim{Scale: 0.5}}
	if got := prop(t, obj, "Position"); got != want {
		t.Errorf("Position = %v, want %v", got, want)
	}
}

func TestTargetAlignmentShortcutForAnchor(t *testing.T) {
	c, _, mem := newCompiler(t)
	obj, diags, err := c.Compile(registry.Config{
		"class": "Frame",
		"target": map[string]any{
			"property": "anchor",
			"value":    "bottomright",
		},
	})
	if err != nil || !diags.Empty() {
		t.Fatalf("compile failed: %v / %v", err, diags.Errors())
	}

	for i := 0; i < 600; i++ {
		mem.Tick(1.0 / 60.0)
	}
	if got := prop(t, obj, "AnchorPoint"); got != (host.Alignment{X: 1, Y: 1}) {
		t.Errorf("AnchorPoint = %v", got)
	}
}

func TestFadeInDirective(t *testing.T) {
	c, _, mem := newCompiler(t)
	obj, _, err := c.Compile(registry.Config{
		"class":  "Frame",
		"fadeIn": true,
	})
	if err != nil {
		t.Fatal(err)
	}
	// Starts fully transparent.
	if got := prop(t, obj, "Transparency"); got != 1.0 {
		t.Errorf("fadeIn must start transparent, got %v", got)
	}
	for i := 0; i < 600; i++ {
		mem.Tick(1.0 / 60.0)
	}
	if got := prop(t, obj, "Transparency"); got != 0.0 {
		t.Errorf("fadeIn must converge to opaque, got %v", got)
	}
}

func TestFitToDevice(t *testing.T) {
	c, _, _ := newCompiler(t)
	obj, _, err := c.Compile(registry.Config{"class": "Frame", "fitToDevice": true})
	if err != nil {
		t.Fatal(err)
	}
	want := host.Dim2{X: host.Dim{Scale: 1}, Y: host.Dim{Scale: 1}}
	if got := prop(t, obj, "Size"); got != want {
		t.Errorf("Size = %v, want full extent", got)
	}
}

func TestRunDirective(t *testing.T) {
	c, _, _ := newCompiler(t)
	var ran host.Handle
	obj, _, err := c.Compile(registry.Config{
		"class": "Frame",
		"run":   func(h host.Handle) { ran = h },
	})
	if err != nil {
		t.Fatal(err)
	}
	if ran != obj.Widget() {
		t.Error("run must fire immediately with the widget handle")
	}
}

func TestInvalidShapeDiagnostic(t *testing.T) {
	c, _, _ := newCompiler(t)
	obj, diags, err := c.Compile(registry.Config{
		"class": "Frame",
		"size":  []any{1, 2, 3},
		"text":  "still applied",
	})
	if err != nil {
		t.Fatalf("node errors must recover locally: %v", err)
	}
	found := false
	for _, e := range diags.Errors() {
		if errors.Is(e, cerr.ErrInvalidShape) {
			found = true
		}
	}
	if !found {
		t.Error("expected ErrInvalidShape diagnostic")
	}
	if got := prop(t, obj, "Text"); got != "still applied" {
		t.Error("other properties must still apply")
	}
}

func TestEditPreservesWidget(t *testing.T) {
	c, _, _ := newCompiler(t)
	obj, _, err := c.Compile(registry.Config{"class": "Frame", "text": "before"})
	if err != nil {
		t.Fatal(err)
	}
	w := widgetOf(t, obj)

	if err := c.Edit(obj.Widget(), registry.Config{"text": "after", "rounded": 2}); err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if widgetOf(t, obj) != w {
		t.Error("Edit must not recreate the widget")
	}
	if got := prop(t, obj, "Text"); got != "after" {
		t.Errorf("Text = %v", got)
	}
	if got := prop(t, obj, "CornerRadius"); got != (host.Dim{Offset: 2}) {
		t.Errorf("CornerRadius = %v", got)
	}
}

func TestComponentReloadFanOut(t *testing.T) {
	c, reg, _ := newCompiler(t)
	comp, err := reg.AddComponent("card", registry.Config{"class": "Frame", "text": "v1"})
	if err != nil {
		t.Fatal(err)
	}

	obj, diags, err := c.Compile(registry.Config{"class": "Frame", "style": "card"})
	if err != nil || !diags.Empty() {
		t.Fatalf("compile failed: %v / %v", err, diags.Errors())
	}
	w := widgetOf(t, obj)
	if got := prop(t, obj, "Text"); got != "v1" {
		t.Errorf("Text = %v", got)
	}

	if err := comp.Update(registry.Config{"class": "Frame", "text": "v2"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if widgetOf(t, obj) != w {
		t.Error("fan-out must preserve widget identity")
	}
	if got := prop(t, obj, "Text"); got != "v2" {
		t.Errorf("Text after fan-out = %v", got)
	}
}

func TestComponentFanOutViaMultistyle(t *testing.T) {
	c, reg, _ := newCompiler(t)
	comp, err := reg.AddComponent("card", registry.Config{"class": "Frame", "text": "v1"})
	if err != nil {
		t.Fatal(err)
	}

	obj, diags, err := c.Compile(registry.Config{
		"class":      "Frame",
		"multistyle": []any{"card"},
	})
	if err != nil || !diags.Empty() {
		t.Fatalf("compile failed: %v / %v", err, diags.Errors())
	}

	if err := comp.Update(registry.Config{"class": "Frame", "text": "v2"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := prop(t, obj, "Text"); got != "v2" {
		t.Errorf("multistyle instance missed fan-out, Text = %v", got)
	}
}

func TestComponentFanOutViaOverrideTuple(t *testing.T) {
	c, reg, _ := newCompiler(t)
	comp, err := reg.AddComponent("card", registry.Config{"class": "Frame", "text": "v1", "rounded": 4})
	if err != nil {
		t.Fatal(err)
	}

	obj, _, err := c.Compile(registry.Config{
		"class": "Frame",
		"style": []any{"card", map[string]any{"rounded": 8}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := comp.Update(registry.Config{"class": "Frame", "text": "v2", "rounded": 4}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got := prop(t, obj, "Text"); got != "v2" {
		t.Errorf("tuple instance missed fan-out, Text = %v", got)
	}
}

func TestReapplyInlineStillWins(t *testing.T) {
	c, reg, _ := newCompiler(t)
	comp, err := reg.AddComponent("card", registry.Config{"class": "Frame", "text": "component", "rounded": 4})
	if err != nil {
		t.Fatal(err)
	}

	obj, _, err := c.Compile(registry.Config{"class": "Frame", "style": "card", "text": "inline"})
	if err != nil {
		t.Fatal(err)
	}
	if err := comp.Update(registry.Config{"class": "Frame", "text": "v2", "rounded": 9}); err != nil {
		t.Fatal(err)
	}
	if got := prop(t, obj, "Text"); got != "inline" {
		t.Errorf("inline override must survive fan-out, Text = %v", got)
	}
	if got := prop(t, obj, "CornerRadius"); got != (host.Dim{Offset: 9}) {
		t.Errorf("non-overridden key must update, CornerRadius = %v", got)
	}
}
