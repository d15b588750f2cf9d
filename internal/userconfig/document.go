package userconfig

import (
	"strings"
)

// Well-known keys.
const (
	KeyOnboarded = "desktop.onboarded"
	KeyFilters   = "desktop.filters"
)

// Lookup returns the value at the dotted key.
func Lookup(doc map[string]any, key string) (any, bool) {
	var cur any = doc
	for _, part := range strings.Split(key, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Bool returns the boolean at key, false when missing or of another type.
func Bool(doc map[string]any, key string) bool {
	v, _ := Lookup(doc, key)
	b, _ := v.(bool)
	return b
}

// Float returns the number at key, 0 when missing.
func Float(doc map[string]any, key string) float64 {
	v, _ := Lookup(doc, key)
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	}
	return 0
}

// Int returns the integer at key, 0 when missing.
func Int(doc map[string]any, key string) int {
	return int(Float(doc, key))
}

// String returns the string at key, "" when missing.
func String(doc map[string]any, key string) string {
	v, _ := Lookup(doc, key)
	s, _ := v.(string)
	return s
}

// setPath stores value at the dotted key, creating intermediate maps.
func setPath(doc map[string]any, key string, value any) {
	parts := strings.Split(key, ".")
	cur := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := asMap(cur[part])
		if !ok {
			next = map[string]any{}
		}
		cur[part] = next
		cur = next
	}
	cur[parts[len(parts)-1]] = value
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// clone deep-copies nested maps so callers can't alias store state.
func clone(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		if m, ok := asMap(v); ok {
			out[k] = clone(m)
			continue
		}
		out[k] = v
	}
	return out
}
