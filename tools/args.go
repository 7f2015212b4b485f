package tools

import (
	"math"
	"strconv"
)

// Args are the decoded arguments of one tool call. JSON null is treated as
// absent.
type Args map[string]any

// String returns the string argument key, or def when it is absent.
func (a Args) String(key, def string) (string, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", invalidArg("Argument '%s' must be a string", key)
	}
	return s, nil
}

// Int returns the integer argument key, or def when it is absent. Whole
// JSON numbers and numeric strings are accepted.
func (a Args) Int(key string, def int) (int, error) {
	v, ok := a[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) || n >= -math.MinInt || n < math.MinInt {
			return 0, invalidArg("Argument '%s' must be an integer", key)
		}
		return int(n), nil
	case int:
		return n, nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, invalidArg("Argument '%s' must be an integer", key)
		}
		return i, nil
	default:
		return 0, invalidArg("Argument '%s' must be an integer", key)
	}
}

// OptionalInt returns the integer argument key and whether it was present.
func (a Args) OptionalInt(key string) (int, bool, error) {
	if v, ok := a[key]; !ok || v == nil {
		return 0, false, nil
	}
	n, err := a.Int(key, 0)
	return n, err == nil, err
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}
