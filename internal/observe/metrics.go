// Package observe centralizes the library's metrics and tracing. Everything
// here is cheap enough to call unconditionally; consumers that never scrape
// or export simply pay a counter increment.
package observe

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	compilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cascade",
			Name:      "compiles_total",
			Help:      "Configuration nodes compiled, by widget class.",
		},
		[]string{"class"},
	)

	compileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cascade",
			Name:      "compile_duration_seconds",
			Help:      "Wall time of a full CompileObject call, including children.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
	)

	compileErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cascade",
			Name:      "compile_errors_total",
			Help:      "Node errors collected into compile diagnostics.",
		},
	)

	activeBindings = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cascade",
			Name:      "active_bindings",
			Help:      "Reactive property bindings currently open.",
		},
	)

	activeScopes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cascade",
			Name:      "active_scopes",
			Help:      "Scopes created and not yet cleaned up.",
		},
	)

	directivesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cascade",
			Name:      "directives_total",
			Help:      "Directives routed to the animation engine, by kind.",
		},
		[]string{"kind"},
	)
)

// NodeCompiled records one compiled node of the given widget class.
func NodeCompiled(class string) { compilesTotal.WithLabelValues(class).Inc() }

// CompileSeconds records the duration of a full compile call.
func CompileSeconds(s float64) { compileDuration.Observe(s) }

// NodeError records one diagnostics entry.
func NodeError() { compileErrors.Inc() }

// BindingOpened and BindingClosed track the live reactive binding count.
func BindingOpened() { activeBindings.Inc() }
func BindingClosed() { activeBindings.Dec() }

// ScopeOpened and ScopeClosed track the live scope count.
func ScopeOpened() { activeScopes.Inc() }
func ScopeClosed() { activeScopes.Dec() }

// Directive records one directive dispatch of the given kind.
func Directive(kind string) { directivesTotal.WithLabelValues(kind).Inc() }
