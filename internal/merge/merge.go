// Package merge implements the recursive structural merge used to
// combine configuration documents.
package merge

// Merge combines decoded JSON values left to right and returns a deep
// copy of the result. Two objects merge recursively with their key sets
// unioned, two arrays concatenate, and in every other case the later
// value wins outright. A nil never overrides an existing value.
func Merge(values ...any) any {
	if len(values) == 0 {
		return nil
	}
	out := clone(values[0])
	for _, v := range values[1:] {
		out = merge2(out, clone(v))
	}
	return out
}

func merge2(a, b any) any {
	if b == nil {
		return a
	}
	if a == nil {
		return b
	}

	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok {
			return b
		}
		out := map[string]any{}
		for k, v := range av {
			out[k] = v
		}
		for k, v := range bv {
			out[k] = merge2(out[k], v)
		}
		return out
	case []any:
		bv, ok := b.([]any)
		if !ok {
			return b
		}
		out := make([]any, 0, len(av)+len(bv))
		out = append(out, av...)
		out = append(out, bv...)
		return out
	default:
		return b
	}
}

func clone(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			out[k] = clone(e)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = clone(e)
		}
		return out
	default:
		return v
	}
}
