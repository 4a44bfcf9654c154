package engine

import "encoding/json"

// Args carries a move's positional arguments as decoded from the wire.
// JSON numbers arrive as float64; the accessors coerce them back. A failed
// lookup reports ok=false so handlers can bail into the silent no-op path.
type Args []any

// String returns the argument at index i as a string.
func (a Args) String(i int) (string, bool) {
	if i < 0 || i >= len(a) {
		return "", false
	}
	s, ok := a[i].(string)
	return s, ok
}

// Int returns the argument at index i as an int.
func (a Args) Int(i int) (int, bool) {
	if i < 0 || i >= len(a) {
		return 0, false
	}
	return toInt(a[i])
}

// Ints returns the argument at index i as a slice of ints.
func (a Args) Ints(i int) ([]int, bool) {
	if i < 0 || i >= len(a) {
		return nil, false
	}
	raw, ok := a[i].([]any)
	if !ok {
		return nil, false
	}
	out := make([]int, len(raw))
	for j, v := range raw {
		n, ok := toInt(v)
		if !ok {
			return nil, false
		}
		out[j] = n
	}
	return out, true
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	default:
		return 0, false
	}
}
