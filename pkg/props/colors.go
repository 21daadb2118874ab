// Package props translates raw configuration values — color literals, hex
// and named color strings, dimension tuples, alignment keywords, layout
// shorthands — into the typed values the host consumes.
package props

import (
	"strings"

	"golang.org/x/image/colornames"

	"github.com/cascade-ui/cascade/pkg/host"
)

// ParseColor resolves the three color forms, in precedence order:
// a host.Color literal as-is, a "#hex" string (rgb, rgba, rrggbb or
// rrggbbaa), then a case-insensitive named color. It reports false for
// anything else; callers fall back to environment lookup.
func ParseColor(v any) (host.Color, bool) {
	switch val := v.(type) {
	case host.Color:
		return val, true
	case string:
		if strings.HasPrefix(val, "#") {
			return parseHex(val[1:])
		}
		if c, ok := colornames.Map[strings.ToLower(val)]; ok {
			return host.Color{R: c.R, G: c.G, B: c.B, A: c.A}, true
		}
	}
	return host.Color{}, false
}

func parseHex(s string) (host.Color, bool) {
	switch len(s) {
	case 3:
		r, ok1 := hexNibble(s[0])
		g, ok2 := hexNibble(s[1])
		b, ok3 := hexNibble(s[2])
		if !ok1 || !ok2 || !ok3 {
			return host.Color{}, false
		}
		return host.Color{R: r * 17, G: g * 17, B: b * 17, A: 0xff}, true
	case 4:
		c, ok := parseHex(s[:3])
		if !ok {
			return host.Color{}, false
		}
		a, ok := hexNibble(s[3])
		if !ok {
			return host.Color{}, false
		}
		c.A = a * 17
		return c, true
	case 6:
		r, ok1 := hexByte(s[0:2])
		g, ok2 := hexByte(s[2:4])
		b, ok3 := hexByte(s[4:6])
		if !ok1 || !ok2 || !ok3 {
			return host.Color{}, false
		}
		return host.Color{R: r, G: g, B: b, A: 0xff}, true
	case 8:
		c, ok := parseHex(s[:6])
		if !ok {
			return host.Color{}, false
		}
		a, ok := hexByte(s[6:8])
		if !ok {
			return host.Color{}, false
		}
		c.A = a
		return c, true
	}
	return host.Color{}, false
}

func hexByte(s string) (uint8, bool) {
	hi, ok1 := hexNibble(s[0])
	lo, ok2 := hexNibble(s[1])
	if !ok1 || !ok2 {
		return 0, false
	}
	return hi<<4 | lo, true
}

func hexNibble(b byte) (uint8, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
