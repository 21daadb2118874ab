package cascade

import (
	"log/slog"

	"github.com/cascade-ui/cascade/internal/observe"
	"github.com/cascade-ui/cascade/pkg/compile"
	cerr "github.com/cascade-ui/cascade/pkg/errors"
	"github.com/cascade-ui/cascade/pkg/host"
	"github.com/cascade-ui/cascade/pkg/reactive"
	"github.com/cascade-ui/cascade/pkg/registry"
)

// Runtime binds a registry, a host, and a compiler into one usable unit.
// The package-level functions operate on a default runtime; construct
// additional runtimes for isolated registries (parallel tests, multiple
// hosts).
type Runtime struct {
	reg      *registry.Registry
	host     host.Host
	compiler *compile.Compiler
	logger   *slog.Logger
}

// NewRuntime creates a runtime over the given host. A host that implements
// the Introspector capability enables widget handles as component sources.
func NewRuntime(h host.Host) *Runtime {
	reg := registry.New()
	if intro, ok := h.(host.Introspector); ok {
		reg.SetIntrospector(intro)
	}
	return &Runtime{
		reg:      reg,
		host:     h,
		compiler: compile.New(reg, h),
		logger:   slog.Default().With("component", "cascade"),
	}
}

// Registry returns the runtime's registry, for devtools and direct access.
func (r *Runtime) Registry() *registry.Registry { return r.reg }

// Host returns the runtime's host.
func (r *Runtime) Host() host.Host { return r.host }

// CompileObject builds a widget tree from cfg. Node failures land in the
// diagnostics; the error is non-nil only when the root node itself failed.
func (r *Runtime) CompileObject(cfg registry.Config) (*compile.Object, *cerr.Diagnostics, error) {
	return r.compiler.Compile(cfg)
}

// Edit merges cfg into the compiled object owning the widget and re-applies
// it, preserving the widget.
func (r *Runtime) Edit(h host.Handle, cfg registry.Config) error {
	return r.compiler.Edit(h, cfg)
}

// Style registers a named reusable property table.
func (r *Runtime) Style(name string, props registry.Config) {
	r.reg.AddStyle(name, props)
}

// Component registers a named structured definition. data may be a property
// table, a widget handle, or a loader function; see registry.AddComponent.
func (r *Runtime) Component(name string, data any) (*registry.Component, error) {
	return r.reg.AddComponent(name, data)
}

// AddEnvValue registers a named environment value usable as an indirect
// property reference. Duplicate names fail.
func (r *Runtime) AddEnvValue(name string, initial any) (*reactive.Value[any], error) {
	return r.reg.AddEnv(name, initial)
}

// State switches the named state on the object owning the widget. Unknown
// handles and names log, never fail.
func (r *Runtime) State(h host.Handle, name string) {
	r.compiler.State(h, name)
}

// ReloadAll re-resolves every registered component and fans the result out
// to live instances.
func (r *Runtime) ReloadAll() {
	r.reg.ReloadAll()
}

// Reset drops every registry entry and compiled-object record. Test
// isolation only; live widgets are not destroyed.
func (r *Runtime) Reset() {
	r.reg.Reset()
	r.compiler = compile.New(r.reg, r.host)
}

// Scope aggregates compiled objects and other disposables for atomic
// cleanup. Objects compiled through a scope are disposed, in reverse order
// of creation, by a single Cleanup call.
type Scope struct {
	runtime *Runtime
	inner   *reactive.Scope
}

// NewScope creates a scope on the runtime.
func (r *Runtime) NewScope() *Scope {
	observe.ScopeOpened()
	s := &Scope{runtime: r, inner: reactive.NewScope()}
	s.inner.OnCleanup(observe.ScopeClosed)
	return s
}

// CompileObject compiles cfg and tracks the resulting object for cleanup.
func (s *Scope) CompileObject(cfg registry.Config) (*compile.Object, *cerr.Diagnostics, error) {
	obj, diags, err := s.runtime.CompileObject(cfg)
	if obj != nil {
		s.inner.Track(obj)
	}
	return obj, diags, err
}

// Track registers any disposable with the scope.
func (s *Scope) Track(d reactive.Disposable) { s.inner.Track(d) }

// OnCleanup registers a function to run during Cleanup.
func (s *Scope) OnCleanup(fn func()) { s.inner.OnCleanup(fn) }

// Cleanup disposes everything the scope tracked, exactly once. Idempotent.
func (s *Scope) Cleanup() { s.inner.Cleanup() }
