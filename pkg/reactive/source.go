package reactive

// Source is the type-erased view of a reactive value. Configuration tables
// carry values as any, so the compiler and registries work against Source
// instead of the generic Value type.
type Source interface {
	// Load returns the current value.
	Load() any

	// Watch subscribes fn to every emission and returns the unsubscribe
	// function. Emission order and snapshot semantics match Subscribe.
	Watch(fn func(any)) func()

	// Dispose detaches a derived source from its upstream. No-op for roots.
	Dispose()
}

// Load implements Source.
func (v *Value[T]) Load() any {
	return v.Get()
}

// Watch implements Source.
func (v *Value[T]) Watch(fn func(any)) func() {
	return v.Subscribe(func(val T) {
		fn(val)
	})
}

var _ Source = (*Value[int])(nil)
