package props

import "reflect"

// Table coerces map-typed values into a plain map[string]any. Configuration
// tables reach us under named map types (registry.Config, YAML decodings),
// so a bare type assertion is not enough.
func Table(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, true
	}
	return nil, false
}
