// Package host defines the interface Cascade consumes from the underlying
// GUI host, the value types properties are translated into, and an
// in-memory host implementation used by the CLI and tests.
//
// Cascade never renders anything itself: it creates widgets, assigns
// properties, and listens for pointer and frame events exclusively through
// the Host interface.
package host

// Handle is an opaque reference to a host widget. Hosts return handles from
// CreateWidget and accept them back unchanged; Cascade never inspects them
// beyond equality.
type Handle any

// Host is the widget API consumed by the compiler and the binding engine.
//
// All event registration methods return a cancel function that detaches the
// listener. Cancel functions must be idempotent.
type Host interface {
	// CreateWidget instantiates a widget of the given kind ("Frame",
	// "TextLabel", "TextButton", ...). Kind names are host-defined.
	CreateWidget(kind string) (Handle, error)

	// SetProperty assigns a single property on a widget. The reserved keys
	// "Parent" (a Handle) and "Name" (a string) place the widget in the
	// host's tree; everything else is host-defined.
	SetProperty(h Handle, key string, value any) error

	// DestroyWidget removes a widget and its descendants.
	DestroyWidget(h Handle)

	// OnPointerEnter registers fn for pointer-enter events on h.
	OnPointerEnter(h Handle, fn func()) (cancel func())

	// OnPointerLeave registers fn for pointer-leave events on h.
	OnPointerLeave(h Handle, fn func()) (cancel func())

	// OnClick registers fn for click/activate events on h.
	OnClick(h Handle, fn func()) (cancel func())

	// OnFrameTick registers fn to run once per host frame with the elapsed
	// seconds since the previous frame. Spring integration runs here.
	OnFrameTick(fn func(dt float64)) (cancel func())
}

// Introspector is an optional host capability: reading back the properties
// of an existing widget. The component registry uses it to snapshot a live
// widget into a property table. Hosts that cannot enumerate properties
// simply don't implement it.
type Introspector interface {
	// Properties returns a one-way snapshot of h's assigned properties.
	// The second return is false if h is unknown.
	Properties(h Handle) (map[string]any, bool)
}
