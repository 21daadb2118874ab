package errors

import "sync"

// Diagnostics accumulates per-node errors during a best-effort compile.
// A failing node is skipped; its error lands here instead of aborting the
// surrounding tree.
type Diagnostics struct {
	mu   sync.Mutex
	errs []error
}

// Add appends err; nil errors are ignored.
func (d *Diagnostics) Add(err error) {
	if err == nil {
		return
	}
	d.mu.Lock()
	d.errs = append(d.errs, err)
	d.mu.Unlock()
}

// Errors returns the collected errors in arrival order.
func (d *Diagnostics) Errors() []error {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]error, len(d.errs))
	copy(out, d.errs)
	return out
}

// Len returns the number of collected errors.
func (d *Diagnostics) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.errs)
}

// Empty reports whether no errors were collected.
func (d *Diagnostics) Empty() bool {
	return d.Len() == 0
}
