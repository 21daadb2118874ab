package props

import (
	cerr "github.com/cascade-ui/cascade/pkg/errors"
)

// LayoutMode identifies a host layout primitive selected by a shorthand key.
type LayoutMode string

const (
	LayoutList       LayoutMode = "list"
	LayoutGrid       LayoutMode = "grid"
	LayoutFlexRow    LayoutMode = "flexrow"
	LayoutFlexColumn LayoutMode = "flexcolumn"
)

// Layout is the translated form of the list/grid/flexrow/flexcolumn
// shorthands, passed through to the host as a single "Layout" property.
type Layout struct {
	Mode LayoutMode

	// Options carries the shorthand's table verbatim (gap, columns,
	// wrap, ...). The host interprets them; Cascade only validates shape.
	Options map[string]any
}

// ToLayout translates a layout shorthand value. `true` enables the mode
// with defaults; a table supplies host options; anything else is an
// ErrInvalidShape.
func ToLayout(mode LayoutMode, v any) (Layout, error) {
	if enabled, ok := v.(bool); ok {
		if !enabled {
			return Layout{}, cerr.ErrInvalidShape
		}
		return Layout{Mode: mode}, nil
	}
	if table, ok := Table(v); ok {
		opts := make(map[string]any, len(table))
		for k, e := range table {
			opts[k] = e
		}
		return Layout{Mode: mode, Options: opts}, nil
	}
	return Layout{}, cerr.ErrInvalidShape
}
