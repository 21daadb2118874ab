package host

import "math"

// SpringFunc advances current one step toward target under a damped
// harmonic model. damping is the damping ratio (1 = critically damped),
// frequency the natural frequency in Hz, dt the step in seconds. The
// binding engine calls this once per host frame.
type SpringFunc func(current, target, damping, frequency, dt float64) float64

// DefaultSpring is the built-in solver: an analytic damped-harmonic step
// without persistent velocity state. Critically and over-damped springs
// decay exponentially toward the target; under-damped springs overshoot
// and oscillate.
func DefaultSpring(current, target, damping, frequency, dt float64) float64 {
	if dt <= 0 {
		return current
	}
	omega := 2 * math.Pi * frequency
	displaced := current - target
	decay := math.Exp(-damping * omega * dt)

	if damping >= 1 {
		return target + displaced*decay
	}

	osc := math.Cos(omega * math.Sqrt(1-damping*damping) * dt)
	return target + displaced*decay*osc
}
