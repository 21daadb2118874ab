package props

import (
	"strings"

	cerr "github.com/cascade-ui/cascade/pkg/errors"
	"github.com/cascade-ui/cascade/pkg/host"
)

// Number coerces the numeric types that reach us from Go literals and YAML
// decoding into a float64.
func Number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	}
	return 0, false
}

// numbers flattens a tuple value ([]any, []float64, []int, or a bare
// number) into its numeric components.
func numbers(v any) ([]float64, bool) {
	switch t := v.(type) {
	case []any:
		out := make([]float64, len(t))
		for i, e := range t {
			n, ok := Number(e)
			if !ok {
				return nil, false
			}
			out[i] = n
		}
		return out, true
	case []float64:
		return t, true
	case []int:
		out := make([]float64, len(t))
		for i, e := range t {
			out[i] = float64(e)
		}
		return out, true
	default:
		if n, ok := Number(v); ok {
			return []float64{n}, true
		}
	}
	return nil, false
}

// ToDim2 translates a size/position shorthand into a two-axis dimension.
// Two numbers are the per-axis scales with offsets defaulting to 0; four
// numbers are (xScale, xOffset, yScale, yOffset). Any other arity is an
// ErrInvalidShape.
func ToDim2(v any) (host.Dim2, error) {
	if d, ok := v.(host.Dim2); ok {
		return d, nil
	}
	nums, ok := numbers(v)
	if !ok {
		return host.Dim2{}, cerr.ErrInvalidShape
	}
	switch len(nums) {
	case 2:
		return host.Dim2{
			X: host.Dim{Scale: nums[0]},
			Y: host.Dim{Scale: nums[1]},
		}, nil
	case 4:
		return host.Dim2{
			X: host.Dim{Scale: nums[0], Offset: nums[1]},
			Y: host.Dim{Scale: nums[2], Offset: nums[3]},
		}, nil
	}
	return host.Dim2{}, cerr.ErrInvalidShape
}

// ToDim translates a single-axis shorthand (rounded, padding*). One number
// is a bare offset; two are (scale, offset).
func ToDim(v any) (host.Dim, error) {
	if d, ok := v.(host.Dim); ok {
		return d, nil
	}
	nums, ok := numbers(v)
	if !ok {
		return host.Dim{}, cerr.ErrInvalidShape
	}
	switch len(nums) {
	case 1:
		return host.Dim{Offset: nums[0]}, nil
	case 2:
		return host.Dim{Scale: nums[0], Offset: nums[1]}, nil
	}
	return host.Dim{}, cerr.ErrInvalidShape
}

// ToAlignment translates an alignment keyword ("center", "bottomleft", ...)
// or a two-number tuple into an Alignment.
func ToAlignment(v any) (host.Alignment, error) {
	switch val := v.(type) {
	case host.Alignment:
		return val, nil
	case string:
		if a, ok := host.AlignmentByName(strings.ToLower(val)); ok {
			return a, nil
		}
		return host.Alignment{}, cerr.ErrInvalidShape
	}
	nums, ok := numbers(v)
	if !ok || len(nums) != 2 {
		return host.Alignment{}, cerr.ErrInvalidShape
	}
	return host.Alignment{X: nums[0], Y: nums[1]}, nil
}
