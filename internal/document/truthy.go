package document

import (
	"encoding/json"
	"math"
)

// Truthy reports whether a decoded JSON value counts as set.
//
// null, false, the empty string and numeric zero are falsy. Every other
// value is truthy, including empty arrays and empty objects.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			// out of float64 range, so certainly not zero
			return true
		}
		return f != 0
	case float64:
		return t != 0 && !math.IsNaN(t)
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}
