package compile

import (
	"fmt"

	"github.com/cascade-ui/cascade/pkg/props"
)

// propKind classifies a configuration key.
type propKind int

const (
	// kindDirect values translate straight to a host property.
	kindDirect propKind = iota

	// kindDirective keys route to the animation engine or to child
	// compilation instead of the host.
	kindDirective
)

// translateFunc converts a raw configuration value into the host's form.
type translateFunc func(v any) (any, error)

// descriptor is one entry of the closed key table: what kind the key is,
// which host property it writes, and how its value translates. The table is
// built once at compiler construction; per-node dispatch is a map lookup,
// not string matching.
type descriptor struct {
	kind      propKind
	hostKey   string
	translate translateFunc
}

func buildDescriptors() map[string]descriptor {
	d := map[string]descriptor{
		// Colors. A string value that fails color parsing falls back to
		// environment lookup, then raw pass-through; that fallback lives in
		// the apply layer, shared by every descriptor.
		"groundcolor": {kind: kindDirect, hostKey: "BackgroundColor", translate: translateColor},
		"textcolor":   {kind: kindDirect, hostKey: "TextColor", translate: translateColor},
		"bordercolor": {kind: kindDirect, hostKey: "BorderColor", translate: translateColor},

		// Geometry shorthands. Two-number tuples are per-axis scales, four
		// numbers are (scale, offset) pairs.
		"size":     {kind: kindDirect, hostKey: "Size", translate: wrapDim2},
		"position": {kind: kindDirect, hostKey: "Position", translate: wrapDim2},

		"anchor":    {kind: kindDirect, hostKey: "AnchorPoint", translate: wrapAlignment},
		"alignment": {kind: kindDirect, hostKey: "Alignment", translate: wrapAlignment},

		"rounded":       {kind: kindDirect, hostKey: "CornerRadius", translate: wrapDim},
		"padding":       {kind: kindDirect, hostKey: "Padding", translate: wrapDim},
		"paddingtop":    {kind: kindDirect, hostKey: "PaddingTop", translate: wrapDim},
		"paddingbottom": {kind: kindDirect, hostKey: "PaddingBottom", translate: wrapDim},
		"paddingleft":   {kind: kindDirect, hostKey: "PaddingLeft", translate: wrapDim},
		"paddingright":  {kind: kindDirect, hostKey: "PaddingRight", translate: wrapDim},

		"transparency": {kind: kindDirect, hostKey: "Transparency", translate: translateNumber},
		"text":         {kind: kindDirect, hostKey: "Text"},
		"textsize":     {kind: kindDirect, hostKey: "TextSize", translate: translateNumber},
		"font":         {kind: kindDirect, hostKey: "Font"},
		"visible":      {kind: kindDirect, hostKey: "Visible"},
		"name":         {kind: kindDirect, hostKey: "Name"},

		// Directives.
		"animate":     {kind: kindDirective},
		"target":      {kind: kindDirective},
		"hover":       {kind: kindDirective},
		"hovercolor":  {kind: kindDirective},
		"leavecolor":  {kind: kindDirective},
		"states":      {kind: kindDirective},
		"state":       {kind: kindDirective},
		"clicked":     {kind: kindDirective},
		"hovered":     {kind: kindDirective},
		"left":        {kind: kindDirective},
		"run":         {kind: kindDirective},
		"fadein":      {kind: kindDirective},
		"fadeout":     {kind: kindDirective},
		"slidein":     {kind: kindDirective},
		"spawn":       {kind: kindDirective},
		"fittodevice": {kind: kindDirective},
	}

	for _, mode := range []props.LayoutMode{props.LayoutList, props.LayoutGrid, props.LayoutFlexRow, props.LayoutFlexColumn} {
		mode := mode
		d[string(mode)] = descriptor{
			kind:    kindDirect,
			hostKey: "Layout",
			translate: func(v any) (any, error) {
				return props.ToLayout(mode, v)
			},
		}
	}
	return d
}

func translateColor(v any) (any, error) {
	if c, ok := props.ParseColor(v); ok {
		return c, nil
	}
	return nil, errNotAColor
}

// errNotAColor signals the apply layer to try environment lookup next.
var errNotAColor = fmt.Errorf("not a color")

func translateNumber(v any) (any, error) {
	if n, ok := props.Number(v); ok {
		return n, nil
	}
	return nil, fmt.Errorf("expected a number, got %T", v)
}

func wrapDim2(v any) (any, error)      { return props.ToDim2(v) }
func wrapDim(v any) (any, error)       { return props.ToDim(v) }
func wrapAlignment(v any) (any, error) { return props.ToAlignment(v) }
