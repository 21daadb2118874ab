package host

import "fmt"

// Dim is a single-axis dimension: a fraction of the parent extent plus a
// fixed offset in host units.
type Dim struct {
	Scale  float64
	Offset float64
}

// Dim2 is a two-axis dimension used for sizes and positions.
type Dim2 struct {
	X Dim
	Y Dim
}

// String returns a compact representation, mainly for diagnostics.
func (d Dim2) String() string {
	return fmt.Sprintf("{%g, %g}, {%g, %g}", d.X.Scale, d.X.Offset, d.Y.Scale, d.Y.Offset)
}

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// String returns the color as a #rrggbb or #rrggbbaa literal.
func (c Color) String() string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// Alignment positions content within its parent. Components range over
// [0, 1]: 0 is the leading edge (left/top), 0.5 the center, 1 the trailing
// edge (right/bottom).
type Alignment struct {
	X, Y float64
}

// Named alignments, matching the keyword table used by the "alignment"
// property and by named animation shortcut values.
var alignmentsByName = map[string]Alignment{
	"center":      {0.5, 0.5},
	"middle":      {0.5, 0.5},
	"top":         {0.5, 0},
	"bottom":      {0.5, 1},
	"left":        {0, 0.5},
	"right":       {1, 0.5},
	"topleft":     {0, 0},
	"topright":    {1, 0},
	"bottomleft":  {0, 1},
	"bottomright": {1, 1},
}

// AlignmentByName resolves an alignment keyword such as "center" or
// "bottomleft". Lookup is case-sensitive on the lowercase form; callers
// normalize.
func AlignmentByName(name string) (Alignment, bool) {
	a, ok := alignmentsByName[name]
	return a, ok
}
