package notation

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/localnerve/transform-studio/internal/ordered"
)

// undefined marks an attribute that is absent, as opposed to present and null.
type undefined struct{}

var absent = undefined{}

// attr returns the value stored under key, or absent.
func attr(attrs *ordered.Map, key string) any {
	if v, ok := attrs.Get(key); ok {
		return v
	}
	return absent
}

// truthy mirrors JavaScript truthiness for decoded JSON values.
func truthy(v any) bool {
	switch t := v.(type) {
	case undefined, nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String() != ""
		}
		return f != 0 && !math.IsNaN(f)
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

// nullish reports whether v is absent or null.
func nullish(v any) bool {
	switch v.(type) {
	case undefined, nil:
		return true
	}
	return false
}

// or returns js(v) when v is truthy, fallback otherwise.
func or(v any, fallback string) string {
	if truthy(v) {
		return js(v)
	}
	return fallback
}

// orNullish returns js(v) unless v is absent or null.
func orNullish(v any, fallback string) string {
	if nullish(v) {
		return fallback
	}
	return js(v)
}

// isObject reports whether v is a JSON object or array.
func isObject(v any) bool {
	switch t := v.(type) {
	case *ordered.Map:
		return t != nil
	case []any:
		return true
	}
	return false
}

// js converts a value to text the way template-literal interpolation does.
func js(v any) string {
	switch t := v.(type) {
	case undefined:
		return "undefined"
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return jsNumber(f)
	case float64:
		return jsNumber(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			if nullish(e) {
				continue
			}
			parts[i] = js(e)
		}
		return strings.Join(parts, ",")
	case *ordered.Map:
		return "[object Object]"
	default:
		return ordered.Text(v)
	}
}

func jsNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	// Go pads the exponent to two digits; JavaScript does not.
	if i := strings.IndexAny(s, "+-"); i > 0 && s[i-1] == 'e' {
		exp := strings.TrimLeft(s[i+1:], "0")
		if exp == "" {
			exp = "0"
		}
		s = s[:i+1] + exp
	}
	return s
}

// literalText is JSON.stringify for the primitive values a literal record holds.
func literalText(v any) string {
	switch t := v.(type) {
	case undefined:
		return "undefined"
	case json.Number, float64:
		return js(t)
	default:
		return ordered.Text(v)
	}
}

func indent(level int) string {
	if level <= 0 {
		return ""
	}
	return strings.Repeat("  ", level)
}
