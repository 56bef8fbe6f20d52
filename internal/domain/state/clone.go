package state

import "github.com/bytedance/sonic"

// deepClone copies maps and lists recursively. Other values are shared.
func deepClone(v any) any {
	switch n := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, child := range n {
			out[k] = deepClone(child)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, child := range n {
			out[i] = deepClone(child)
		}
		return out
	default:
		return v
	}
}

// Clone returns a deep copy of a JSON-shaped value.
func Clone(v any) any {
	return deepClone(v)
}

// Normalize converts v to its JSON shape (map[string]any, []any, float64,
// string, bool or nil) by round-tripping it through the encoder. Values that
// are already JSON-shaped come back equal.
func Normalize(v any) (any, error) {
	switch v.(type) {
	case nil, string, bool, float64:
		return v, nil
	}
	data, err := sonic.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
