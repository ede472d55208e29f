// Package briefing turns raw weather, calendar, and news data into the
// rendered HTML briefing document. It contains the presentation formatters,
// the template renderer, and the document builder that ties them together.
package briefing

import (
	"fmt"
	"strconv"
)

// Context maps template field names to values. A value is either a scalar
// (string, bool, int, float64) or a []Context rendered once per element by
// an iteration section. Contexts are built fresh for each render and are
// never mutated by the renderer.
type Context map[string]any

// truthy reports whether a looked-up value makes a section visible.
// Absent, nil, false, zero, empty string, and empty sequence are all falsy.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	case []Context:
		return len(val) > 0
	case []map[string]any:
		return len(val) > 0
	case Context:
		return len(val) > 0
	case map[string]any:
		return len(val) > 0
	default:
		return true
	}
}

// asList extracts an iteration sequence from a context value.
func asList(v any) ([]Context, bool) {
	switch val := v.(type) {
	case []Context:
		return val, true
	case []map[string]any:
		items := make([]Context, len(val))
		for i, m := range val {
			items[i] = Context(m)
		}
		return items, true
	default:
		return nil, false
	}
}

// stringify coerces a scalar to its display text. Absent and nil values
// interpolate as the empty string.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}
