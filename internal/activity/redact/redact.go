// Package redact masks sensitive values inside arbitrary action payloads
// before they leave the process.
package redact

// Marker replaces every value found under a sensitive key.
const Marker = "*** Redacted ***"

// FieldSet builds the sensitive-key lookup from a configured list of
// field names.
func FieldSet(fields []string) map[string]struct{} {
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Clean returns a deep copy of v in which every value under a sensitive
// key, at any nesting depth, is replaced by Marker. The input is never
// mutated; other listeners may still be reading it. Traversal is
// iterative so depth is bounded only by the payload itself.
func Clean(v map[string]any, sensitive map[string]struct{}) map[string]any {
	if v == nil {
		return map[string]any{}
	}
	out := cloneMap(v)
	stack := []map[string]any{out}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for key, value := range current {
			if _, ok := sensitive[key]; ok {
				current[key] = Marker
				continue
			}
			switch child := value.(type) {
			case map[string]any:
				stack = append(stack, child)
			case []any:
				stack = append(stack, mapsIn(child)...)
			}
		}
	}
	return out
}

// mapsIn collects the object elements of a list, descending through
// nested lists so sensitive keys inside array-of-array payloads are
// still reached.
func mapsIn(list []any) []map[string]any {
	var found []map[string]any
	pending := [][]any{list}
	for len(pending) > 0 {
		current := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		for _, item := range current {
			switch child := item.(type) {
			case map[string]any:
				found = append(found, child)
			case []any:
				pending = append(pending, child)
			}
		}
	}
	return found
}

func cloneMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = cloneValue(v)
	}
	return dst
}

func cloneList(src []any) []any {
	dst := make([]any, len(src))
	for i, v := range src {
		dst[i] = cloneValue(v)
	}
	return dst
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		return cloneList(typed)
	default:
		return v
	}
}
