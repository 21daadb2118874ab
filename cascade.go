// Package cascade is a declarative UI configuration and reactivity layer.
// A widget tree is described as nested property tables; CompileObject turns
// each table into a live host widget plus a bound set of reactive data
// flows: environment values, style resolution, spring animations, and named
// states. The GUI host itself is external, consumed through the small
// interface in pkg/host.
//
// The package-level functions operate on a default runtime backed by an
// in-memory host; call SetHost to attach a real one, or construct isolated
// runtimes with NewRuntime.
package cascade

import (
	"sync"

	"github.com/cascade-ui/cascade/internal/devtools"
	"github.com/cascade-ui/cascade/pkg/compile"
	cerr "github.com/cascade-ui/cascade/pkg/errors"
	"github.com/cascade-ui/cascade/pkg/host"
	"github.com/cascade-ui/cascade/pkg/reactive"
	"github.com/cascade-ui/cascade/pkg/registry"
)

// Config is a raw property table, re-exported for call-site convenience.
type Config = registry.Config

var (
	defaultMu      sync.Mutex
	defaultRuntime = NewRuntime(host.NewMemoryHost())
)

func runtime() *Runtime {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultRuntime
}

// SetHost replaces the default runtime with one over h. Registry contents
// and compiled-object records do not carry over.
func SetHost(h host.Host) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultRuntime = NewRuntime(h)
}

// CompileObject builds a widget tree from cfg on the default runtime.
// Per-node diagnostics are always collected and returned; callers decide
// whether to log them.
func CompileObject(cfg Config) (*compile.Object, *cerr.Diagnostics, error) {
	return runtime().CompileObject(cfg)
}

// Edit merges cfg into the object owning the widget and re-applies it.
func Edit(h host.Handle, cfg Config) error {
	return runtime().Edit(h, cfg)
}

// Style registers a named reusable property table.
func Style(name string, props Config) {
	runtime().Style(name, props)
}

// Component registers a named structured definition.
func Component(name string, data any) (*registry.Component, error) {
	return runtime().Component(name, data)
}

// AddEnvValue registers a named environment value.
func AddEnvValue(name string, initial any) (*reactive.Value[any], error) {
	return runtime().AddEnvValue(name, initial)
}

// NewValue creates a standalone reactive value.
func NewValue[T any](initial T) *reactive.Value[T] {
	return reactive.New(initial)
}

// NewScope creates a scope on the default runtime.
func NewScope() *Scope {
	return runtime().NewScope()
}

// State switches the named state on the object owning the widget.
func State(h host.Handle, name string) {
	runtime().State(h, name)
}

// ReloadAll re-resolves every registered component and fans out the result.
func ReloadAll() {
	runtime().ReloadAll()
}

// Reset clears the default runtime's registries. Test isolation only.
func Reset() {
	runtime().Reset()
}

// Devtools creates the read-only inspection server over the default
// runtime's registry. Start it explicitly; nothing runs otherwise.
func Devtools() *devtools.Server {
	return devtools.New(runtime().Registry())
}
